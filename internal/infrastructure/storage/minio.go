package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/meetnotes-team/meetnotes/pkg/config"
)

// TranscriptArchive stores raw transcripts and generated minutes in object
// storage so they survive beyond the processing pipeline.
type TranscriptArchive struct {
	client *minio.Client
	bucket string
}

// NewTranscriptArchive creates the MinIO client and ensures the bucket exists.
func NewTranscriptArchive(cfg *config.StorageConfig) (*TranscriptArchive, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	archive := &TranscriptArchive{
		client: minioClient,
		bucket: cfg.BucketName,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := archive.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	return archive, nil
}

func (a *TranscriptArchive) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// ArchiveTranscript stores the raw transcript body for a meeting. Returns the
// object name under which it was stored.
func (a *TranscriptArchive) ArchiveTranscript(ctx context.Context, meetingID string, content []byte) (string, error) {
	objectName := fmt.Sprintf("transcripts/%s/%d.vtt", meetingID, time.Now().UTC().UnixNano())
	if err := a.putObject(ctx, objectName, content, "text/vtt"); err != nil {
		return "", err
	}
	return objectName, nil
}

// ArchiveMinutes stores the generated minutes JSON for a meeting.
func (a *TranscriptArchive) ArchiveMinutes(ctx context.Context, meetingID string, minutesJSON []byte) (string, error) {
	objectName := fmt.Sprintf("minutes/%s/%d.json", meetingID, time.Now().UTC().UnixNano())
	if err := a.putObject(ctx, objectName, minutesJSON, "application/json"); err != nil {
		return "", err
	}
	return objectName, nil
}

func (a *TranscriptArchive) putObject(ctx context.Context, objectName string, content []byte, contentType string) error {
	_, err := a.client.PutObject(ctx, a.bucket, objectName, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

// ListArchived lists archived object names under a prefix, such as
// "transcripts/<meetingID>/".
func (a *TranscriptArchive) ListArchived(ctx context.Context, prefix string) ([]string, error) {
	var files []string

	objectCh := a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("error listing objects: %w", object.Err)
		}
		files = append(files, object.Key)
	}

	return files, nil
}

// GetObjectURL returns a presigned download URL for an archived object.
func (a *TranscriptArchive) GetObjectURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	url, err := a.client.PresignedGetObject(ctx, a.bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return url.String(), nil
}
