package minutes

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/meetnotes-team/meetnotes/errors"
	"github.com/meetnotes-team/meetnotes/internal/domain/entities"
	pkgai "github.com/meetnotes-team/meetnotes/pkg/ai"
)

const (
	// maxTranscriptChars bounds the transcript text sent to the model.
	// Longer transcripts are cut here and flagged with truncationMarker.
	maxTranscriptChars = 15000
	truncationMarker   = "\n[... transcript truncated ...]"

	defaultLanguage    = "es"
	defaultStyle       = "detailed"
	defaultMaxTokens   = 2000
	defaultTemperature = 0.7
)

// Options tune one minutes generation run. The zero value is usable; Normalize
// fills in defaults.
type Options struct {
	IncludeTimestamps bool
	Language          string
	Style             string
	MaxTokens         int
	Temperature       float64
}

// Normalize fills unset fields with defaults.
func (o *Options) Normalize() {
	if o.Language == "" {
		o.Language = defaultLanguage
	}
	if o.Style == "" {
		o.Style = defaultStyle
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = defaultMaxTokens
	}
	if o.Temperature <= 0 {
		o.Temperature = defaultTemperature
	}
}

// Generator turns a meeting transcript into a structured minutes document
// using the chat-completion collaborator.
type Generator struct {
	client *pkgai.Client
	parser *Parser
	logger *zap.Logger
}

// NewGenerator creates a minutes generator.
func NewGenerator(client *pkgai.Client, logger *zap.Logger) *Generator {
	return &Generator{
		client: client,
		parser: NewParser(),
		logger: logger,
	}
}

// GenerateMinutes produces a minutes document from transcript text. A model
// response that cannot be parsed as the expected JSON is not an error: the
// raw text is preserved as the document summary so the pipeline always ends
// with a document.
func (g *Generator) GenerateMinutes(ctx context.Context, meetingID, transcript string, opts Options) (*entities.MinutesDocument, error) {
	opts.Normalize()

	prompt := transcript
	if len(prompt) > maxTranscriptChars {
		prompt = prompt[:maxTranscriptChars] + truncationMarker
		if g.logger != nil {
			g.logger.Info("transcript truncated for generation",
				zap.String("meeting_id", meetingID),
				zap.Int("original_chars", len(transcript)),
				zap.Int("sent_chars", maxTranscriptChars),
			)
		}
	}

	messages := []pkgai.Message{
		{Role: "system", Content: buildSystemPrompt(opts)},
		{Role: "user", Content: fmt.Sprintf("Transcripción de la reunión:\n\n%s", prompt)},
	}

	raw, err := g.client.CreateChatCompletion(ctx, messages, opts.MaxTokens, opts.Temperature)
	if err != nil {
		return nil, errors.ErrGenerationFailed(err)
	}

	doc := g.parser.ParseMinutesResponse(meetingID, raw)

	// Participants come from the transcript itself, not the model output.
	doc.Participants = ExtractParticipants(transcript)

	if g.logger != nil {
		g.logger.Info("✅ Minutes generated",
			zap.String("meeting_id", meetingID),
			zap.String("title", doc.Title),
			zap.Int("key_points", len(doc.KeyPoints)),
			zap.Int("action_items", len(doc.ActionItems)),
			zap.Int("participants", len(doc.Participants)),
		)
	}
	return doc, nil
}

// GenerateSummary produces a short free-text summary bounded by maxWords.
// Returns an empty string for empty input.
func (g *Generator) GenerateSummary(ctx context.Context, text string, maxWords int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if maxWords <= 0 {
		maxWords = 100
	}

	prompt := text
	if len(prompt) > maxTranscriptChars {
		prompt = prompt[:maxTranscriptChars] + truncationMarker
	}

	messages := []pkgai.Message{
		{
			Role: "system",
			Content: fmt.Sprintf(
				"Eres un asistente que resume reuniones. Resume el siguiente texto en un máximo de %d palabras. Responde solo con el resumen, sin encabezados.",
				maxWords),
		},
		{Role: "user", Content: prompt},
	}

	// Roughly two tokens per word keeps headroom for the requested length.
	raw, err := g.client.CreateChatCompletion(ctx, messages, maxWords*2, defaultTemperature)
	if stdErrors.Is(err, pkgai.ErrNoContent) {
		return "", nil
	}
	if err != nil {
		return "", errors.ErrGenerationFailed(err)
	}
	return strings.TrimSpace(raw), nil
}

func buildSystemPrompt(opts Options) string {
	var sb strings.Builder

	sb.WriteString("Eres un asistente experto en redactar actas de reuniones. ")
	sb.WriteString(fmt.Sprintf("Redacta el acta en %s con un estilo %s.\n\n", languageName(opts.Language), styleName(opts.Style)))

	if opts.IncludeTimestamps {
		sb.WriteString("La transcripción incluye marcas de tiempo; úsalas para situar los puntos clave.\n\n")
	}

	sb.WriteString(`Responde ÚNICAMENTE con un objeto JSON válido, sin bloques de código ni texto adicional, con esta estructura exacta:
{
  "title": "título de la reunión",
  "summary": "resumen general de la reunión",
  "keyPoints": ["punto clave 1", "punto clave 2"],
  "decisions": ["decisión 1"],
  "actionItems": [{"task": "tarea", "assignedTo": "responsable", "priority": "high|medium|low"}],
  "nextSteps": ["siguiente paso 1"]
}`)

	return sb.String()
}

func languageName(code string) string {
	switch strings.ToLower(code) {
	case "es":
		return "español"
	case "en":
		return "inglés"
	case "pt":
		return "portugués"
	case "fr":
		return "francés"
	default:
		return code
	}
}

func styleName(style string) string {
	switch strings.ToLower(style) {
	case "detailed":
		return "detallado"
	case "summary":
		return "resumido"
	case "executive":
		return "ejecutivo"
	default:
		return style
	}
}
