package stream

import (
	"sync"
	"testing"

	"github.com/ShayCichocki/drover/pkg/models"
)

func TestCollectorFlushesTextBeforeToolUse(t *testing.T) {
	c := NewCollector(nil)

	c.OnEvent(Event{Kind: KindAssistant, Text: "first I will "})
	c.OnEvent(Event{Kind: KindAssistant, Text: "read the file"})
	c.OnEvent(Event{Kind: KindToolUse, ToolName: "Read", Text: "Reading auth.go"})
	c.OnEvent(Event{Kind: KindToolResult, ToolOutput: "contents"})

	res := c.Finalize()
	if len(res.Messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(res.Messages))
	}

	if res.Messages[0].Role != models.RoleAssistant {
		t.Errorf("message 0 role = %q, want assistant", res.Messages[0].Role)
	}
	if res.Messages[0].Content != "first I will read the file" {
		t.Errorf("message 0 content = %q: buffer was not accumulated", res.Messages[0].Content)
	}
	if res.Messages[1].Role != models.RoleToolUse {
		t.Errorf("message 1 role = %q, want tool_use after flushed text", res.Messages[1].Role)
	}
	if res.Messages[2].Role != models.RoleToolResult {
		t.Errorf("message 2 role = %q, want tool_result", res.Messages[2].Role)
	}
}

func TestCollectorErrorDoesNotStopParsing(t *testing.T) {
	c := NewCollector(nil)

	c.OnEvent(Event{Kind: KindError, Text: "rate limited"})
	c.OnEvent(Event{Kind: KindSystem, InputTokens: 500, OutputTokens: 20})
	c.OnEvent(Event{Kind: KindResult, Text: "partial"})

	res := c.Finalize()
	if c.StreamError() != "rate limited" {
		t.Errorf("StreamError() = %q, want %q", c.StreamError(), "rate limited")
	}
	// Trailing metrics after the error must still land.
	if res.InputTokens != 500 || res.OutputTokens != 20 {
		t.Errorf("tokens = %d/%d, want 500/20 captured after error", res.InputTokens, res.OutputTokens)
	}
	if res.Output != "partial" {
		t.Errorf("Output = %q, want %q", res.Output, "partial")
	}
	if len(res.Messages) == 0 || res.Messages[0].Role != models.RoleError {
		t.Error("error event did not append an error message")
	}
}

func TestCollectorResultScenario(t *testing.T) {
	// Stub CLI writes a single result line and exits 0.
	p := NewClaudeParser()
	c := NewCollector(nil)

	for _, ev := range p.ParseLine(`{"type":"result","result":"ok","session_id":"abc"}`) {
		c.OnEvent(ev)
	}

	res := c.Finalize()
	if res.Output != "ok" {
		t.Errorf("Output = %q, want %q", res.Output, "ok")
	}
	if res.SessionID != "abc" {
		t.Errorf("SessionID = %q, want %q", res.SessionID, "abc")
	}
	if c.StreamError() != "" {
		t.Errorf("StreamError() = %q, want empty", c.StreamError())
	}
}

func TestCollectorFinalizeFlushesTrailingText(t *testing.T) {
	c := NewCollector(nil)

	c.OnEvent(Event{Kind: KindAssistant, Text: "dangling narrative"})
	res := c.Finalize()

	if len(res.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(res.Messages))
	}
	if res.Messages[0].Content != "dangling narrative" {
		t.Errorf("content = %q", res.Messages[0].Content)
	}
}

func TestCollectorPublishesToQueue(t *testing.T) {
	var mu sync.Mutex
	var got []Notification

	q := NewQueue(func(n Notification) {
		mu.Lock()
		got = append(got, n)
		mu.Unlock()
	})
	c := NewCollector(q)

	c.OnEvent(Event{Kind: KindAssistant, Text: "a"})
	c.OnEvent(Event{Kind: KindToolUse, ToolName: "Bash"})
	c.OnEvent(Event{Kind: KindError, Text: "bad"})
	q.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 3 {
		t.Fatalf("sink saw %d notifications, want 3", len(got))
	}
	wantKinds := []string{"assistant", "tool_use", "error"}
	for i, k := range wantKinds {
		if got[i].Kind != k {
			t.Errorf("notification %d kind = %q, want %q (order must hold)", i, got[i].Kind, k)
		}
	}
}

func TestQueuePublishNeverBlocks(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue(func(n Notification) {
		<-block
	})

	// Far more than the buffer size; Publish must drop, not block.
	for i := 0; i < 10000; i++ {
		q.Publish(Notification{Kind: "assistant", Text: "x"})
	}
	close(block)
	q.Close()
}

func TestCollectorSnapshotDoesNotFlush(t *testing.T) {
	c := NewCollector(nil)
	c.OnEvent(Event{Kind: KindAssistant, Text: "pending"})

	snap := c.Snapshot()
	if len(snap.Messages) != 0 {
		t.Errorf("snapshot has %d messages, want 0 (text still buffered)", len(snap.Messages))
	}

	res := c.Finalize()
	if len(res.Messages) != 1 {
		t.Errorf("finalize has %d messages, want 1", len(res.Messages))
	}
}
