package minutes

import (
	"strings"
	"testing"
)

func TestParseMinutesResponseFullDocument(t *testing.T) {
	raw := "```json\n" + `{
		"title": "Revisión de sprint",
		"summary": "Se revisó el avance del sprint.",
		"keyPoints": ["avance al 80%"],
		"decisions": ["extender el sprint una semana"],
		"actionItems": [
			{"task": "actualizar el tablero", "assignedTo": "Ana", "priority": "high"},
			{"task": "", "assignedTo": "nadie", "priority": "low"}
		],
		"nextSteps": ["demo el viernes"]
	}` + "\n```"

	doc := NewParser().ParseMinutesResponse("meeting-1", raw)

	if doc.Title != "Revisión de sprint" {
		t.Errorf("unexpected title: %q", doc.Title)
	}
	if doc.MeetingID != "meeting-1" {
		t.Errorf("unexpected meeting ID: %q", doc.MeetingID)
	}
	if len(doc.KeyPoints) != 1 || len(doc.Decisions) != 1 || len(doc.NextSteps) != 1 {
		t.Errorf("unexpected list lengths: %d/%d/%d", len(doc.KeyPoints), len(doc.Decisions), len(doc.NextSteps))
	}
	if len(doc.ActionItems) != 1 {
		t.Fatalf("empty-task action item should be dropped, got %d items", len(doc.ActionItems))
	}
	if doc.ActionItems[0].AssignedTo != "Ana" {
		t.Errorf("unexpected assignee: %q", doc.ActionItems[0].AssignedTo)
	}
}

func TestParseMinutesResponseInvalidJSONDegrades(t *testing.T) {
	raw := "Lo siento, no puedo generar un JSON ahora mismo."

	doc := NewParser().ParseMinutesResponse("meeting-1", raw)

	if doc.Title != "Untitled Meeting" {
		t.Errorf("expected fallback title, got %q", doc.Title)
	}
	if doc.Summary != raw {
		t.Errorf("raw response should be preserved as summary, got %q", doc.Summary)
	}
	if doc.KeyPoints == nil || doc.ActionItems == nil {
		t.Error("list fields must stay non-nil on degradation")
	}
}

func TestParseMinutesResponseMissingFieldsDefaulted(t *testing.T) {
	doc := NewParser().ParseMinutesResponse("meeting-1", `{"summary": "solo resumen"}`)

	if doc.Title != "Untitled Meeting" {
		t.Errorf("expected default title, got %q", doc.Title)
	}
	if doc.Summary != "solo resumen" {
		t.Errorf("unexpected summary: %q", doc.Summary)
	}
	if doc.KeyPoints == nil || len(doc.KeyPoints) != 0 {
		t.Errorf("expected empty key points, got %v", doc.KeyPoints)
	}
}

func TestExtractParticipants(t *testing.T) {
	transcript := strings.Join([]string{
		"[00:00:05] Ana García: buenos días a todos",
		"Luis: hola",
		"Ana García: empecemos con la agenda",
		"42: timing artifact",
		"ok: too short",
		"no speaker on this line",
		"[00:01:10] Marta: de acuerdo",
	}, "\n")

	got := ExtractParticipants(transcript)

	want := []string{"Ana García", "Luis", "Marta"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestExtractParticipantsEmptyTranscript(t *testing.T) {
	got := ExtractParticipants("")
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}

func TestExtractJSONFenceVariants(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}\n```":     `{"a":1}`,
		`{"a":1}`:                 `{"a":1}`,
	}
	for in, want := range cases {
		if got := extractJSON(in); got != want {
			t.Errorf("extractJSON(%q) = %q, want %q", in, got, want)
		}
	}
}
