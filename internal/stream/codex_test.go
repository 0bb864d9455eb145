package stream

import "testing"

func TestCodexParseAgentMessage(t *testing.T) {
	p := NewCodexParser()

	events := p.ParseLine(`{"id":"1","msg":{"type":"agent_message","message":"working on it"}}`)
	if len(events) != 1 || events[0].Kind != KindAssistant {
		t.Fatalf("got %+v, want one assistant event", events)
	}
	if events[0].Text != "working on it" {
		t.Errorf("Text = %q", events[0].Text)
	}
}

func TestCodexParseSessionConfigured(t *testing.T) {
	p := NewCodexParser()

	events := p.ParseLine(`{"msg":{"type":"session_configured","session_id":"0199-abc","model":"gpt-5.1-codex"}}`)
	if len(events) != 1 || events[0].Kind != KindSystem {
		t.Fatalf("got %+v, want one system event", events)
	}
	if events[0].SessionID != "0199-abc" {
		t.Errorf("SessionID = %q", events[0].SessionID)
	}
	if events[0].Model != "gpt-5.1-codex" {
		t.Errorf("Model = %q", events[0].Model)
	}
}

func TestCodexParseExecCommand(t *testing.T) {
	p := NewCodexParser()

	begin := p.ParseLine(`{"msg":{"type":"exec_command_begin","command":["git","status"]}}`)
	if len(begin) != 1 || begin[0].Kind != KindToolUse {
		t.Fatalf("begin = %+v, want tool_use", begin)
	}
	if begin[0].ToolInput != "git status" {
		t.Errorf("ToolInput = %q", begin[0].ToolInput)
	}

	end := p.ParseLine(`{"msg":{"type":"exec_command_end","exit_code":1,"aggregated_output":"fatal: not a git repository"}}`)
	if len(end) != 1 || end[0].Kind != KindToolResult {
		t.Fatalf("end = %+v, want tool_result (command failure is not an execution error)", end)
	}
}

func TestCodexParseTokenCountAndComplete(t *testing.T) {
	p := NewCodexParser()

	count := p.ParseLine(`{"msg":{"type":"token_count","info":{"total_token_usage":{"input_tokens":900,"output_tokens":150}}}}`)
	if len(count) != 1 || count[0].InputTokens != 900 || count[0].OutputTokens != 150 {
		t.Fatalf("token count = %+v", count)
	}

	done := p.ParseLine(`{"msg":{"type":"task_complete","last_agent_message":"all done"}}`)
	if len(done) != 1 || done[0].Kind != KindResult || done[0].Text != "all done" {
		t.Fatalf("task_complete = %+v", done)
	}
}

func TestCodexMalformedLineBecomesText(t *testing.T) {
	p := NewCodexParser()

	events := p.ParseLine("plain progress output")
	if len(events) != 1 || events[0].Kind != KindAssistant {
		t.Fatalf("got %+v, want assistant text fallback", events)
	}
}

func TestGeminiParse(t *testing.T) {
	p := NewGeminiParser()

	text := p.ParseLine("thinking about the change")
	if len(text) != 1 || text[0].Kind != KindAssistant {
		t.Fatalf("plain line = %+v", text)
	}

	result := p.ParseLine(`{"response":"done","stats":{"models":{"gemini-2.5-pro":{"tokens":{"prompt":400,"candidates":60}}}}}`)
	if len(result) != 1 || result[0].Kind != KindResult {
		t.Fatalf("summary = %+v", result)
	}
	if result[0].Model != "gemini-2.5-pro" {
		t.Errorf("Model = %q", result[0].Model)
	}
	if result[0].InputTokens != 400 || result[0].OutputTokens != 60 {
		t.Errorf("tokens = %d/%d", result[0].InputTokens, result[0].OutputTokens)
	}

	failed := p.ParseLine(`{"response":"","error":{"message":"quota exceeded"}}`)
	if len(failed) != 2 || failed[1].Kind != KindError {
		t.Fatalf("error summary = %+v", failed)
	}
}

func TestForVendor(t *testing.T) {
	for _, vendor := range []string{"claude", "codex", "gemini"} {
		p, err := ForVendor(vendor)
		if err != nil {
			t.Errorf("ForVendor(%q) error = %v", vendor, err)
			continue
		}
		if p.Vendor() != vendor {
			t.Errorf("Vendor() = %q, want %q", p.Vendor(), vendor)
		}
	}

	if _, err := ForVendor("cursor"); err == nil {
		t.Error("ForVendor(unknown) error = nil, want error")
	}
}
