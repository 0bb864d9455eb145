package stream

import (
	"testing"
)

func TestClaudeParseResultLine(t *testing.T) {
	p := NewClaudeParser()

	events := p.ParseLine(`{"type":"result","result":"ok","session_id":"abc","total_cost_usd":0.042,"usage":{"input_tokens":1200,"output_tokens":88}}`)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	ev := events[0]
	if ev.Kind != KindResult {
		t.Errorf("Kind = %q, want %q", ev.Kind, KindResult)
	}
	if ev.Text != "ok" {
		t.Errorf("Text = %q, want %q", ev.Text, "ok")
	}
	if ev.SessionID != "abc" {
		t.Errorf("SessionID = %q, want %q", ev.SessionID, "abc")
	}
	if ev.InputTokens != 1200 || ev.OutputTokens != 88 {
		t.Errorf("tokens = %d/%d, want 1200/88", ev.InputTokens, ev.OutputTokens)
	}
	if ev.CostUSD != 0.042 {
		t.Errorf("CostUSD = %v, want 0.042", ev.CostUSD)
	}
}

func TestClaudeParseErrorResult(t *testing.T) {
	p := NewClaudeParser()

	events := p.ParseLine(`{"type":"result","subtype":"error_during_execution","is_error":true,"result":"boom"}`)
	if len(events) != 2 {
		t.Fatalf("got %d events, want result+error", len(events))
	}
	if events[0].Kind != KindResult || events[1].Kind != KindError {
		t.Errorf("kinds = %q,%q, want result,error", events[0].Kind, events[1].Kind)
	}
	if events[1].Text != "boom" {
		t.Errorf("error text = %q, want %q", events[1].Text, "boom")
	}
}

func TestClaudeParseAssistantBlocks(t *testing.T) {
	p := NewClaudeParser()

	line := `{"type":"assistant","message":{"model":"claude-sonnet-4-20250514","content":[` +
		`{"type":"text","text":"let me look"},` +
		`{"type":"tool_use","name":"Read","input":{"file_path":"/tmp/auth.go"}}]}}`

	events := p.ParseLine(line)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Kind != KindAssistant || events[0].Text != "let me look" {
		t.Errorf("event 0 = %+v, want assistant text", events[0])
	}
	if events[1].Kind != KindToolUse {
		t.Fatalf("event 1 kind = %q, want tool_use", events[1].Kind)
	}
	if events[1].ToolName != "Read" {
		t.Errorf("ToolName = %q, want Read", events[1].ToolName)
	}
	if events[1].Text != "Reading auth.go" {
		t.Errorf("tool action = %q, want %q", events[1].Text, "Reading auth.go")
	}
	if events[0].Model != "claude-sonnet-4-20250514" {
		t.Errorf("Model = %q, want model from message", events[0].Model)
	}
}

func TestClaudeParseToolResult(t *testing.T) {
	p := NewClaudeParser()

	events := p.ParseLine(`{"type":"user","message":{"content":[{"type":"tool_result","tool_use_id":"t1","content":"file contents"}]}}`)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Kind != KindToolResult {
		t.Errorf("Kind = %q, want tool_result", events[0].Kind)
	}
	if events[0].ToolOutput != "file contents" {
		t.Errorf("ToolOutput = %q, want %q", events[0].ToolOutput, "file contents")
	}
}

func TestClaudeParseSystemInit(t *testing.T) {
	p := NewClaudeParser()

	events := p.ParseLine(`{"type":"system","subtype":"init","session_id":"s-1","model":"claude-sonnet-4-20250514"}`)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Kind != KindSystem || events[0].SessionID != "s-1" {
		t.Errorf("event = %+v, want system with session id", events[0])
	}
}

func TestClaudeMalformedLineBecomesText(t *testing.T) {
	p := NewClaudeParser()

	tests := []string{
		"not json at all",
		`{"truncated": "js`,
		`{"no_type_field": true}`,
	}
	for _, line := range tests {
		events := p.ParseLine(line)
		if len(events) != 1 {
			t.Fatalf("ParseLine(%q) = %d events, want 1", line, len(events))
		}
		if events[0].Kind != KindAssistant {
			t.Errorf("ParseLine(%q) kind = %q, want assistant text", line, events[0].Kind)
		}
	}
}

func TestClaudeBlankAndUnknownLines(t *testing.T) {
	p := NewClaudeParser()

	if events := p.ParseLine("   "); len(events) != 0 {
		t.Errorf("blank line produced %d events", len(events))
	}
	if events := p.ParseLine(`{"type":"some_future_event"}`); len(events) != 0 {
		t.Errorf("unknown event type produced %d events", len(events))
	}
}
