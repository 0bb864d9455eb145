package stream

import (
	"encoding/json"
	"strings"
)

// GeminiParser handles the Gemini CLI, which in non-interactive mode emits
// mostly plain text, optionally followed by a single JSON stats object when
// run with --output-format json.
type GeminiParser struct{}

// NewGeminiParser creates a GeminiParser.
func NewGeminiParser() *GeminiParser {
	return &GeminiParser{}
}

// Vendor implements LineParser.
func (p *GeminiParser) Vendor() string { return "gemini" }

type geminiSummary struct {
	Response string `json:"response"`
	Error    *struct {
		Message string `json:"message"`
	} `json:"error"`
	Stats *struct {
		Models map[string]struct {
			Tokens struct {
				Prompt     int64 `json:"prompt"`
				Candidates int64 `json:"candidates"`
			} `json:"tokens"`
		} `json:"models"`
	} `json:"stats"`
}

// ParseLine treats JSON summary lines as results and everything else as
// plain assistant text.
func (p *GeminiParser) ParseLine(line string) []Event {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}

	if strings.HasPrefix(trimmed, "{") {
		var summary geminiSummary
		if err := json.Unmarshal([]byte(trimmed), &summary); err == nil &&
			(summary.Response != "" || summary.Stats != nil || summary.Error != nil) {
			var events []Event

			ev := Event{Kind: KindResult, Text: summary.Response}
			if summary.Stats != nil {
				for model, stats := range summary.Stats.Models {
					ev.Model = model
					ev.InputTokens += stats.Tokens.Prompt
					ev.OutputTokens += stats.Tokens.Candidates
				}
			}
			events = append(events, ev)

			if summary.Error != nil && summary.Error.Message != "" {
				events = append(events, Event{Kind: KindError, Text: summary.Error.Message})
			}
			return events
		}
	}

	return []Event{{Kind: KindAssistant, Text: line + "\n"}}
}

var _ LineParser = (*GeminiParser)(nil)
