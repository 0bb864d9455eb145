package stream

import (
	"encoding/json"
	"strings"
)

// ClaudeParser decodes the Claude Code CLI's stream-json protocol: one JSON
// object per line with a top-level "type" of system, assistant, user,
// result, or error. Assistant and user messages carry content-block arrays.
type ClaudeParser struct{}

// NewClaudeParser creates a ClaudeParser.
func NewClaudeParser() *ClaudeParser {
	return &ClaudeParser{}
}

// Vendor implements LineParser.
func (p *ClaudeParser) Vendor() string { return "claude" }

// claudeLine is the decodable surface of one stream-json line.
type claudeLine struct {
	Type      string `json:"type"`
	Subtype   string `json:"subtype"`
	SessionID string `json:"session_id"`
	Model     string `json:"model"`
	Message   *struct {
		Model   string               `json:"model"`
		Content []claudeContentBlock `json:"content"`
		Usage   *claudeUsage         `json:"usage"`
	} `json:"message"`
	Result       string       `json:"result"`
	IsError      bool         `json:"is_error"`
	Error        string       `json:"error"`
	TotalCostUSD float64      `json:"total_cost_usd"`
	Usage        *claudeUsage `json:"usage"`
}

type claudeContentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
	Content   json.RawMessage `json:"content"`
	ToolUseID string          `json:"tool_use_id"`
	IsError   bool            `json:"is_error"`
}

type claudeUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// ParseLine decodes a single stream-json line. Undecodable lines degrade to
// plain assistant text.
func (p *ClaudeParser) ParseLine(line string) []Event {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}

	var decoded claudeLine
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil || decoded.Type == "" {
		return []Event{{Kind: KindAssistant, Text: line + "\n"}}
	}

	switch decoded.Type {
	case "system":
		ev := Event{Kind: KindSystem, SessionID: decoded.SessionID, Model: decoded.Model}
		if decoded.Subtype != "" {
			ev.Text = decoded.Subtype
		}
		return []Event{ev}

	case "assistant":
		return p.messageEvents(decoded, KindAssistant)

	case "user":
		return p.messageEvents(decoded, KindUser)

	case "result":
		ev := Event{
			Kind:      KindResult,
			Text:      decoded.Result,
			SessionID: decoded.SessionID,
			CostUSD:   decoded.TotalCostUSD,
		}
		if decoded.Usage != nil {
			ev.InputTokens = decoded.Usage.InputTokens
			ev.OutputTokens = decoded.Usage.OutputTokens
		}
		events := []Event{ev}
		if decoded.IsError {
			text := decoded.Result
			if text == "" {
				text = "execution reported an error result"
			}
			events = append(events, Event{Kind: KindError, Text: text})
		}
		return events

	case "error":
		text := decoded.Error
		if text == "" {
			text = decoded.Result
		}
		if text == "" {
			text = trimmed
		}
		return []Event{{Kind: KindError, Text: text}}

	default:
		// Unknown event types are vendor drift; ignore rather than fail.
		return nil
	}
}

// messageEvents expands one message's content blocks: text blocks become
// assistant/user events, tool_use and tool_result blocks become their own
// event kinds, in block order.
func (p *ClaudeParser) messageEvents(decoded claudeLine, textKind EventKind) []Event {
	base := Event{SessionID: decoded.SessionID}
	if decoded.Message != nil && decoded.Message.Model != "" {
		base.Model = decoded.Message.Model
	}

	if decoded.Message == nil {
		return nil
	}

	var events []Event
	for _, block := range decoded.Message.Content {
		ev := base
		switch block.Type {
		case "text":
			if block.Text == "" {
				continue
			}
			ev.Kind = textKind
			ev.Text = block.Text
		case "tool_use":
			ev.Kind = KindToolUse
			ev.ToolName = block.Name
			ev.ToolInput = string(block.Input)
			ev.Text = describeToolUse(block.Name, block.Input)
		case "tool_result":
			ev.Kind = KindToolResult
			ev.ToolOutput = flattenToolContent(block.Content)
			ev.Text = ev.ToolOutput
			if block.IsError {
				events = append(events, ev)
				ev = base
				ev.Kind = KindError
				ev.Text = "tool failed: " + flattenToolContent(block.Content)
			}
		default:
			continue
		}
		events = append(events, ev)
	}

	// Attach usage from the wrapping message to the last event so token
	// counts are not lost when no result event arrives.
	if decoded.Message.Usage != nil && len(events) > 0 {
		events[len(events)-1].InputTokens = decoded.Message.Usage.InputTokens
		events[len(events)-1].OutputTokens = decoded.Message.Usage.OutputTokens
	}

	return events
}

// flattenToolContent renders a tool_result content field, which may be a
// bare string or an array of content blocks.
func flattenToolContent(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var blocks []claudeContentBlock
	if err := json.Unmarshal(raw, &blocks); err == nil {
		var b strings.Builder
		for _, blk := range blocks {
			if blk.Type == "text" {
				b.WriteString(blk.Text)
			}
		}
		return b.String()
	}
	return string(raw)
}

// describeToolUse renders a short human-readable action for a tool call.
func describeToolUse(name string, input json.RawMessage) string {
	var fields map[string]interface{}
	_ = json.Unmarshal(input, &fields)

	pick := func(key string) string {
		if v, ok := fields[key].(string); ok {
			return v
		}
		return ""
	}

	switch name {
	case "Read":
		if path := pick("file_path"); path != "" {
			return "Reading " + baseName(path)
		}
		return "Reading file"
	case "Edit":
		if path := pick("file_path"); path != "" {
			return "Editing " + baseName(path)
		}
		return "Editing file"
	case "Write":
		if path := pick("file_path"); path != "" {
			return "Writing " + baseName(path)
		}
		return "Writing file"
	case "Bash":
		if cmd := pick("command"); cmd != "" {
			return "Running " + firstWord(cmd)
		}
		return "Running command"
	case "Glob", "Grep":
		if pattern := pick("pattern"); pattern != "" {
			return "Searching " + truncate(pattern, 20)
		}
		return "Searching"
	default:
		if name == "" {
			return "Using tool"
		}
		return name
	}
}

func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		path = path[i+1:]
	}
	return truncate(path, 24)
}

func firstWord(s string) string {
	if i := strings.IndexAny(s, " \n"); i >= 0 {
		s = s[:i]
	}
	return truncate(s, 24)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

var _ LineParser = (*ClaudeParser)(nil)
