package vtt

import (
	"strings"
	"testing"
)

const sampleDoc = `WEBVTT

1
00:00:01.000 --> 00:00:03.500
Alice: hi everyone

2
00:00:04.000 --> 00:00:06.000
Bob: hey

3
00:00:06.500 --> 00:00:09.250
Alice: bye
`

func TestParse_DurationIsLastCueEnd(t *testing.T) {
	tr, err := Parse(sampleDoc)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(tr.Cues) != 3 {
		t.Fatalf("expected 3 cues, got %d", len(tr.Cues))
	}
	if tr.Duration != 9.25 {
		t.Errorf("duration = %v, want 9.25", tr.Duration)
	}
}

func TestParse_EmptyDocumentHasZeroDuration(t *testing.T) {
	tr, err := Parse("WEBVTT\n")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(tr.Cues) != 0 {
		t.Fatalf("expected no cues, got %d", len(tr.Cues))
	}
	if tr.Duration != 0 {
		t.Errorf("duration = %v, want 0", tr.Duration)
	}
}

func TestParse_StripsMarkupTags(t *testing.T) {
	doc := "WEBVTT\n\n00:00:00.000 --> 00:00:01.000\n<b>hi</b>\n"
	tr, err := Parse(doc)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if tr.Text != "hi" {
		t.Errorf("text = %q, want %q", tr.Text, "hi")
	}
}

func TestParse_VoiceTagBecomesSpeakerPrefix(t *testing.T) {
	doc := "WEBVTT\n\n00:00:00.000 --> 00:00:02.000\n<v Carol Jones>we should ship on Friday</v>\n"
	tr, err := Parse(doc)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if tr.Text != "Carol Jones: we should ship on Friday" {
		t.Errorf("text = %q", tr.Text)
	}
	if len(tr.Speakers) != 1 || tr.Speakers[0] != "Carol Jones" {
		t.Errorf("speakers = %v, want [Carol Jones]", tr.Speakers)
	}
}

func TestParse_SpeakerSetIsDeduplicated(t *testing.T) {
	tr, err := Parse(sampleDoc)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := map[string]bool{"Alice": true, "Bob": true}
	if len(tr.Speakers) != len(want) {
		t.Fatalf("speakers = %v, want set {Alice, Bob}", tr.Speakers)
	}
	for _, s := range tr.Speakers {
		if !want[s] {
			t.Errorf("unexpected speaker %q", s)
		}
	}

	// Order of cues must not change the speaker set.
	reordered := `WEBVTT

00:00:00.000 --> 00:00:01.000
Bob: hey

00:00:01.000 --> 00:00:02.000
Alice: hi

00:00:02.000 --> 00:00:03.000
Alice: bye
`
	tr2, err := Parse(reordered)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(tr2.Speakers) != 2 {
		t.Errorf("speakers = %v, want 2 distinct", tr2.Speakers)
	}
}

func TestParse_CollapsesWhitespace(t *testing.T) {
	doc := "WEBVTT\n\n00:00:00.000 --> 00:00:01.000\nhello    there\tfriend\n"
	tr, err := Parse(doc)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if tr.Text != "hello there friend" {
		t.Errorf("text = %q", tr.Text)
	}
}

func TestParse_RejectsMissingHeader(t *testing.T) {
	if _, err := Parse("00:00:00.000 --> 00:00:01.000\nhello\n"); err == nil {
		t.Fatal("expected error for document without WEBVTT header")
	}
}

func TestParse_RejectsMalformedTiming(t *testing.T) {
	docs := []string{
		"WEBVTT\n\nnot-a-time --> 00:00:01.000\nhello\n",
		"WEBVTT\n\n00:00:02.000 --> 00:00:01.000\nends before start\n",
		"WEBVTT\n\nid-line\nanother-line\nno timing here\n",
	}
	for _, doc := range docs {
		if _, err := Parse(doc); err == nil {
			t.Errorf("expected error for %q", doc)
		}
	}
}

func TestFormatWithTimestamps(t *testing.T) {
	doc := "WEBVTT\n\n01:01:01.000 --> 01:01:02.000\nAlice: deep into the meeting\n"
	out, err := FormatWithTimestamps(doc)
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	if !strings.HasPrefix(out, "[01:01:01] ") {
		t.Errorf("output = %q, want prefix [01:01:01]", out)
	}
}

func TestFormatWithTimestamps_FractionalStart(t *testing.T) {
	// 3661.0 seconds is 1h 1m 1s.
	if got := formatOffset(3661.0); got != "01:01:01" {
		t.Errorf("formatOffset(3661.0) = %q, want 01:01:01", got)
	}
}

func TestFilterBySpeaker(t *testing.T) {
	out, err := FilterBySpeaker(sampleDoc, "Alice")
	if err != nil {
		t.Fatalf("filter failed: %v", err)
	}
	if out != "hi everyone bye" {
		t.Errorf("filtered = %q, want %q", out, "hi everyone bye")
	}

	out, err = FilterBySpeaker(sampleDoc, "Mallory")
	if err != nil {
		t.Fatalf("filter failed: %v", err)
	}
	if out != "" {
		t.Errorf("filtered = %q, want empty", out)
	}
}

func TestParseOffset(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"00:00:01.000", 1},
		{"00:01:01.500", 61.5},
		{"01:01:01.000", 3661},
		{"02:30.250", 150.25},
		{"00:00:00", 0},
	}
	for _, tt := range tests {
		got, err := parseOffset(tt.in)
		if err != nil {
			t.Errorf("parseOffset(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseOffset(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
