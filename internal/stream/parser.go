// Package stream decodes vendor line-oriented output protocols into a
// common event model and accumulates events into execution results.
package stream

import "fmt"

// EventKind classifies one decoded stream event.
type EventKind string

const (
	// KindSystem is vendor housekeeping (init, configuration).
	KindSystem EventKind = "system"
	// KindAssistant is narrative agent text.
	KindAssistant EventKind = "assistant"
	// KindUser is input echoed back by the vendor.
	KindUser EventKind = "user"
	// KindToolUse is an agent tool invocation.
	KindToolUse EventKind = "tool_use"
	// KindToolResult is the output of a tool invocation.
	KindToolResult EventKind = "tool_result"
	// KindResult is the terminal event carrying totals and final output.
	KindResult EventKind = "result"
	// KindError is a vendor-reported error. Parsing continues after it:
	// vendors may still emit trailing metrics.
	KindError EventKind = "error"
)

// Event is one decoded unit from a provider's output protocol.
// A malformed line is represented as a KindAssistant event carrying the raw
// text: tolerance is deliberate, not all vendor output is structured.
type Event struct {
	Kind EventKind
	// Text is the message content for assistant/user/system/error events,
	// and the final output for result events.
	Text string
	// ToolName/ToolInput/ToolOutput are set for tool events.
	ToolName   string
	ToolInput  string
	ToolOutput string
	// SessionID is set when the vendor reports one.
	SessionID string
	// Model and token/cost totals arrive with result events (and, for
	// some vendors, incrementally).
	Model        string
	InputTokens  int64
	OutputTokens int64
	CostUSD      float64
}

// LineParser decodes one raw output line into zero or more events.
// Implementations must never fail: undecodable input degrades to plain
// assistant text.
type LineParser interface {
	// Vendor returns the vendor name the parser understands.
	Vendor() string
	// ParseLine decodes a single line. An empty slice means the line
	// carried nothing worth reporting (blank line, ignorable event).
	ParseLine(line string) []Event
}

// ForVendor returns the line parser for a vendor name.
func ForVendor(vendor string) (LineParser, error) {
	switch vendor {
	case "claude":
		return NewClaudeParser(), nil
	case "codex":
		return NewCodexParser(), nil
	case "gemini":
		return NewGeminiParser(), nil
	default:
		return nil, fmt.Errorf("no stream parser for vendor %q", vendor)
	}
}
