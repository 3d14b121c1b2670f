package minutes

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/meetnotes-team/meetnotes/internal/domain/entities"
)

// Parser turns raw model replies into minutes documents. It owns the fence
// stripping and the field defaulting so generation never depends on the model
// honoring the schema exactly.
type Parser struct{}

// NewParser creates a parser.
func NewParser() *Parser {
	return &Parser{}
}

// minutesResponse mirrors the JSON structure the model is instructed to emit.
type minutesResponse struct {
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	KeyPoints   []string `json:"keyPoints"`
	Decisions   []string `json:"decisions"`
	ActionItems []struct {
		Task       string `json:"task"`
		AssignedTo string `json:"assignedTo"`
		Priority   string `json:"priority"`
	} `json:"actionItems"`
	NextSteps []string `json:"nextSteps"`
}

// ParseMinutesResponse converts a raw model response into a minutes document.
// A response that is not valid JSON degrades to a minimal document carrying
// the raw text as the summary; this never fails.
func (p *Parser) ParseMinutesResponse(meetingID, raw string) *entities.MinutesDocument {
	doc := entities.NewMinutesDocument(meetingID)

	jsonString := extractJSON(raw)

	var resp minutesResponse
	if err := json.Unmarshal([]byte(jsonString), &resp); err != nil {
		doc.Title = "Untitled Meeting"
		doc.Summary = strings.TrimSpace(raw)
		return doc
	}

	doc.Title = resp.Title
	if doc.Title == "" {
		doc.Title = "Untitled Meeting"
	}
	doc.Summary = resp.Summary
	if resp.KeyPoints != nil {
		doc.KeyPoints = resp.KeyPoints
	}
	if resp.Decisions != nil {
		doc.Decisions = resp.Decisions
	}
	if resp.NextSteps != nil {
		doc.NextSteps = resp.NextSteps
	}
	for _, item := range resp.ActionItems {
		if strings.TrimSpace(item.Task) == "" {
			continue
		}
		doc.ActionItems = append(doc.ActionItems, entities.ActionItem{
			Task:       item.Task,
			AssignedTo: item.AssignedTo,
			Priority:   item.Priority,
		})
	}

	return doc
}

// speakerLineRe matches "Name:" at the start of a line, optionally preceded
// by a bracketed timestamp like "[00:01:02]".
var speakerLineRe = regexp.MustCompile(`^(?:\[[^\]]*\]\s*)?([^:\n]+):`)

// numericRe matches labels that are purely digits, which are timing artifacts
// rather than names.
var numericRe = regexp.MustCompile(`^\d+$`)

// ExtractParticipants collects distinct speaker names from transcript lines of
// the form "Name: said something". Labels of two characters or fewer and
// purely numeric labels are skipped. Order of first appearance is preserved.
func ExtractParticipants(transcript string) []string {
	participants := make([]string, 0)
	seen := make(map[string]struct{})

	for _, line := range strings.Split(transcript, "\n") {
		match := speakerLineRe.FindStringSubmatch(strings.TrimSpace(line))
		if match == nil {
			continue
		}
		name := strings.TrimSpace(match[1])
		if len(name) <= 2 || numericRe.MatchString(name) {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		participants = append(participants, name)
	}

	return participants
}

// extractJSON strips a markdown code fence when the model wraps its JSON in
// one.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}
