// Package vtt decodes WebVTT caption-track documents into ordered cues and
// derives a speaker-attributed plain-text transcript from them.
package vtt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Cue is one timed caption unit from the source document.
type Cue struct {
	ID    string  `json:"id,omitempty"`
	Start float64 `json:"start"` // seconds
	End   float64 `json:"end"`   // seconds
	Text  string  `json:"text"`
}

// Transcript is the parsed form of a caption-track document.
type Transcript struct {
	Cues     []Cue    `json:"cues"`
	Text     string   `json:"text"`
	Duration float64  `json:"duration"` // end offset of the last cue, 0 if empty
	Speakers []string `json:"speakers"`
}

var (
	tagRe       = regexp.MustCompile(`<[^>]*>`)
	voiceRe     = regexp.MustCompile(`^<v\s+([^>]+)>`)
	speakerRe   = regexp.MustCompile(`^([^:\n]{1,64}):`)
	whitespace  = regexp.MustCompile(`\s+`)
	timestampRe = regexp.MustCompile(`^(?:(\d+):)?(\d{1,2}):(\d{1,2})(?:[.,](\d{1,3}))?$`)
)

// Parse decodes a WebVTT document. Markup tags are stripped from cue text,
// whitespace is collapsed, and speakers are collected via the "Label:" prefix
// heuristic. A structurally invalid document fails the whole parse.
func Parse(document string) (*Transcript, error) {
	blocks, err := splitBlocks(document)
	if err != nil {
		return nil, err
	}

	t := &Transcript{
		Cues:     make([]Cue, 0, len(blocks)),
		Speakers: make([]string, 0),
	}
	seen := make(map[string]bool)
	var parts []string

	for _, block := range blocks {
		cue, ok, err := parseCueBlock(block)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		t.Cues = append(t.Cues, cue)
		if cue.Text != "" {
			parts = append(parts, cue.Text)
		}
		if m := speakerRe.FindStringSubmatch(cue.Text); m != nil {
			name := strings.TrimSpace(m[1])
			if name != "" && !seen[name] {
				seen[name] = true
				t.Speakers = append(t.Speakers, name)
			}
		}
	}

	t.Text = strings.Join(parts, " ")
	if n := len(t.Cues); n > 0 {
		t.Duration = t.Cues[n-1].End
	}
	return t, nil
}

// FormatWithTimestamps renders the document as one line per cue, each prefixed
// with the cue's start offset as [HH:MM:SS].
func FormatWithTimestamps(document string) (string, error) {
	t, err := Parse(document)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(t.Cues))
	for _, cue := range t.Cues {
		lines = append(lines, fmt.Sprintf("[%s] %s", formatOffset(cue.Start), cue.Text))
	}
	return strings.Join(lines, "\n"), nil
}

// FilterBySpeaker keeps only cues spoken by the given label, strips the label
// prefix and joins the remaining text with single spaces.
func FilterBySpeaker(document, speaker string) (string, error) {
	t, err := Parse(document)
	if err != nil {
		return "", err
	}

	prefix := speaker + ":"
	var parts []string
	for _, cue := range t.Cues {
		if strings.HasPrefix(cue.Text, prefix) {
			text := strings.TrimSpace(strings.TrimPrefix(cue.Text, prefix))
			if text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, " "), nil
}

// splitBlocks validates the document header and returns its non-header blocks.
func splitBlocks(document string) ([][]string, error) {
	document = strings.TrimPrefix(document, "\ufeff")
	document = strings.ReplaceAll(document, "\r\n", "\n")
	document = strings.ReplaceAll(document, "\r", "\n")

	trimmed := strings.TrimSpace(document)
	if !strings.HasPrefix(trimmed, "WEBVTT") {
		return nil, fmt.Errorf("not a WebVTT document: missing WEBVTT header")
	}

	var blocks [][]string
	var current []string
	for i, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimRight(line, " \t")
		if i == 0 {
			// header line, may carry trailing metadata
			continue
		}
		if line == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks, nil
}

// parseCueBlock decodes a single cue. Non-cue blocks (NOTE, STYLE, REGION)
// return ok=false; malformed timing lines are structural errors.
func parseCueBlock(lines []string) (Cue, bool, error) {
	switch {
	case strings.HasPrefix(lines[0], "NOTE"),
		strings.HasPrefix(lines[0], "STYLE"),
		strings.HasPrefix(lines[0], "REGION"):
		return Cue{}, false, nil
	}

	timingIdx := -1
	for i, line := range lines {
		if strings.Contains(line, "-->") {
			timingIdx = i
			break
		}
	}
	if timingIdx < 0 || timingIdx > 1 {
		return Cue{}, false, fmt.Errorf("malformed cue block: no timing line in %q", lines[0])
	}

	var cue Cue
	if timingIdx == 1 {
		cue.ID = lines[0]
	}

	timing := lines[timingIdx]
	// Cue settings after the end timestamp are ignored.
	fields := strings.Fields(timing)
	arrow := -1
	for i, f := range fields {
		if f == "-->" {
			arrow = i
			break
		}
	}
	if arrow != 1 || len(fields) < 3 {
		return Cue{}, false, fmt.Errorf("malformed cue timing line: %q", timing)
	}

	start, err := parseOffset(fields[0])
	if err != nil {
		return Cue{}, false, err
	}
	end, err := parseOffset(fields[2])
	if err != nil {
		return Cue{}, false, err
	}
	if end < start {
		return Cue{}, false, fmt.Errorf("cue end %v precedes start %v", fields[2], fields[0])
	}
	cue.Start = start
	cue.End = end
	cue.Text = cleanCueText(strings.Join(lines[timingIdx+1:], " "))
	return cue, true, nil
}

// cleanCueText lifts a leading WebVTT voice tag into a "Name:" prefix, strips
// all remaining markup and collapses whitespace runs.
func cleanCueText(text string) string {
	if m := voiceRe.FindStringSubmatch(text); m != nil {
		name := strings.TrimSpace(m[1])
		rest := text[len(m[0]):]
		if name != "" && !speakerRe.MatchString(rest) {
			text = name + ": " + rest
		} else {
			text = rest
		}
	}
	text = tagRe.ReplaceAllString(text, "")
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

// parseOffset decodes a WebVTT timestamp (HH:MM:SS.mmm or MM:SS.mmm) into
// fractional seconds.
func parseOffset(ts string) (float64, error) {
	m := timestampRe.FindStringSubmatch(ts)
	if m == nil {
		return 0, fmt.Errorf("malformed cue timestamp: %q", ts)
	}

	hours := 0
	if m[1] != "" {
		hours, _ = strconv.Atoi(m[1])
	}
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])

	millis := 0
	if m[4] != "" {
		frac := m[4]
		for len(frac) < 3 {
			frac += "0"
		}
		millis, _ = strconv.Atoi(frac)
	}

	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000.0, nil
}

func formatOffset(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
