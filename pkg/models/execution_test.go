package models

import (
	"testing"
	"time"
)

func TestAddMessagePreservesOrder(t *testing.T) {
	var r ExecutionResult

	r.AddMessage(RoleAssistant, "planning the change")
	r.AddMessage(RoleToolUse, "Edit")
	r.AddMessage(RoleToolResult, "ok")

	if len(r.Messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(r.Messages))
	}

	wantRoles := []MessageRole{RoleAssistant, RoleToolUse, RoleToolResult}
	for i, role := range wantRoles {
		if r.Messages[i].Role != role {
			t.Errorf("message %d role = %q, want %q", i, r.Messages[i].Role, role)
		}
	}

	for i, msg := range r.Messages {
		if msg.Timestamp.IsZero() {
			t.Errorf("message %d has zero timestamp", i)
		}
	}
}

func TestTotalTokens(t *testing.T) {
	r := ExecutionResult{InputTokens: 1200, OutputTokens: 340}
	if got := r.TotalTokens(); got != 1540 {
		t.Errorf("TotalTokens() = %d, want 1540", got)
	}
}

func TestDiffComparisonIdentical(t *testing.T) {
	tests := []struct {
		name string
		cmp  DiffComparison
		want bool
	}{
		{"empty", DiffComparison{}, true},
		{"missing file", DiffComparison{Missing: []string{"a.go"}}, false},
		{"extra file", DiffComparison{Extra: []string{"b.go"}}, false},
		{"modified file", DiffComparison{Modified: []string{"c.go"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cmp.Identical(); got != tt.want {
				t.Errorf("Identical() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompletionCriteriaZeroValuesDisable(t *testing.T) {
	var c CompletionCriteria
	if c.MaxExecutionTime != 0 || c.MaxCostUSD != 0 || c.MaxTokens != 0 {
		t.Error("zero-value criteria should disable all limits")
	}
	if c.StallTimeout != time.Duration(0) {
		t.Error("zero-value stall timeout should be disabled")
	}
}
