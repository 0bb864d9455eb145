package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShayCichocki/drover/internal/stream"
	"github.com/ShayCichocki/drover/pkg/models"
)

func TestRingBufferAppendAndLast(t *testing.T) {
	rb := NewRingBuffer(3)
	for _, s := range []string{"a", "b", "c"} {
		rb.Append(s)
	}
	if got := rb.Last(3); len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("Last(3) = %v", got)
	}

	rb.Append("d")
	got := rb.Last(3)
	if got[0] != "b" || got[2] != "d" {
		t.Errorf("Last(3) after overflow = %v, want oldest discarded", got)
	}
	if rb.Count() != 3 {
		t.Errorf("Count() = %d", rb.Count())
	}
}

func TestRingBufferLastPartial(t *testing.T) {
	rb := NewRingBuffer(10)
	rb.Append("x")
	rb.Append("y")

	if got := rb.Last(1); len(got) != 1 || got[0] != "y" {
		t.Errorf("Last(1) = %v, want newest line", got)
	}
	if got := rb.Last(5); len(got) != 2 {
		t.Errorf("Last(5) = %v, want only stored lines", got)
	}
	if got := rb.Last(0); got != nil {
		t.Errorf("Last(0) = %v", got)
	}
}

func TestRunModelIngestsNotifications(t *testing.T) {
	m := NewRunModel("claude", "fix the bug")

	updated, _ := m.Update(NoteMsg(stream.Notification{Kind: "assistant", Text: "thinking\nabout it"}))
	m = updated.(RunModel)
	updated, _ = m.Update(NoteMsg(stream.Notification{Kind: "tool_use", Text: "Reading main.go"}))
	m = updated.(RunModel)

	view := m.View()
	for _, want := range []string{"thinking", "about it", "Reading main.go", "running"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestRunModelDoneQuits(t *testing.T) {
	m := NewRunModel("claude", "task")

	updated, cmd := m.Update(DoneMsg{Result: &models.ExecutionResult{
		Success:      true,
		SessionID:    "sess-7",
		InputTokens:  100,
		OutputTokens: 20,
		CostUSD:      0.05,
	}})
	m = updated.(RunModel)

	if cmd == nil {
		t.Fatal("DoneMsg produced no command, want tea.Quit")
	}

	view := m.View()
	for _, want := range []string{"done", "sess-7", "120 tok", "$0.0500"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestRunModelQuitKey(t *testing.T) {
	m := NewRunModel("claude", "task")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c produced no command")
	}
}

func TestRunModelFailureFooter(t *testing.T) {
	m := NewRunModel("claude", "task")
	updated, _ := m.Update(DoneMsg{Result: &models.ExecutionResult{Success: false}})
	m = updated.(RunModel)

	if !strings.Contains(m.View(), "failed") {
		t.Errorf("view missing failure status:\n%s", m.View())
	}
}
