package stream

import (
	"encoding/json"
	"strings"
)

// CodexParser decodes the Codex CLI's `exec --json` protocol: one JSON
// object per line wrapping a typed "msg" payload.
type CodexParser struct{}

// NewCodexParser creates a CodexParser.
func NewCodexParser() *CodexParser {
	return &CodexParser{}
}

// Vendor implements LineParser.
func (p *CodexParser) Vendor() string { return "codex" }

type codexLine struct {
	ID  string `json:"id"`
	Msg *struct {
		Type string `json:"type"`

		// session_configured
		SessionID string `json:"session_id"`
		Model     string `json:"model"`

		// agent_message / error / stream_error
		Message string `json:"message"`

		// agent_reasoning
		Text string `json:"text"`

		// exec_command_begin / end
		Command       []string `json:"command"`
		AggregatedOut string   `json:"aggregated_output"`
		ExitCode      *int     `json:"exit_code"`

		// token_count
		Info *struct {
			TotalTokenUsage *struct {
				InputTokens  int64 `json:"input_tokens"`
				OutputTokens int64 `json:"output_tokens"`
			} `json:"total_token_usage"`
		} `json:"info"`

		// task_complete
		LastAgentMessage string `json:"last_agent_message"`
	} `json:"msg"`
}

// ParseLine decodes a single codex JSON line. Undecodable lines degrade to
// plain assistant text.
func (p *CodexParser) ParseLine(line string) []Event {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}

	var decoded codexLine
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil || decoded.Msg == nil {
		return []Event{{Kind: KindAssistant, Text: line + "\n"}}
	}

	msg := decoded.Msg
	switch msg.Type {
	case "session_configured":
		return []Event{{Kind: KindSystem, Text: "session configured", SessionID: msg.SessionID, Model: msg.Model}}

	case "agent_message":
		if msg.Message == "" {
			return nil
		}
		return []Event{{Kind: KindAssistant, Text: msg.Message}}

	case "agent_reasoning":
		// Reasoning is progress-worthy but not transcript text.
		if msg.Text == "" {
			return nil
		}
		return []Event{{Kind: KindSystem, Text: msg.Text}}

	case "exec_command_begin":
		return []Event{{
			Kind:      KindToolUse,
			ToolName:  "shell",
			ToolInput: strings.Join(msg.Command, " "),
			Text:      "Running " + firstWord(strings.Join(msg.Command, " ")),
		}}

	case "exec_command_end":
		// A non-zero exit here is tool output, not an execution error:
		// agents routinely run failing commands on purpose.
		return []Event{{Kind: KindToolResult, ToolName: "shell", ToolOutput: msg.AggregatedOut, Text: msg.AggregatedOut}}

	case "token_count":
		if msg.Info == nil || msg.Info.TotalTokenUsage == nil {
			return nil
		}
		return []Event{{
			Kind:         KindSystem,
			InputTokens:  msg.Info.TotalTokenUsage.InputTokens,
			OutputTokens: msg.Info.TotalTokenUsage.OutputTokens,
		}}

	case "task_complete":
		return []Event{{Kind: KindResult, Text: msg.LastAgentMessage}}

	case "error", "stream_error":
		text := msg.Message
		if text == "" {
			text = trimmed
		}
		return []Event{{Kind: KindError, Text: text}}

	default:
		return nil
	}
}

var _ LineParser = (*CodexParser)(nil)
