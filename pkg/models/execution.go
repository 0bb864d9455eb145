// Package models contains the shared data model for drover executions,
// usage limits, and git automation results.
package models

import (
	"time"
)

// MessageRole identifies who (or what) produced an ExecutionMessage.
type MessageRole string

const (
	// RoleUser is a message supplied to the agent.
	RoleUser MessageRole = "user"
	// RoleAssistant is narrative text produced by the agent.
	RoleAssistant MessageRole = "assistant"
	// RoleToolUse records the agent invoking a tool.
	RoleToolUse MessageRole = "tool_use"
	// RoleToolResult records the output of a tool invocation.
	RoleToolResult MessageRole = "tool_result"
	// RoleError records a failure reported mid-stream.
	RoleError MessageRole = "error"
)

// OutputFormat selects how a provider renders its output stream.
type OutputFormat string

const (
	// OutputStreamJSON requests the vendor's line-oriented JSON protocol.
	OutputStreamJSON OutputFormat = "stream-json"
	// OutputText requests plain text output.
	OutputText OutputFormat = "text"
)

// ExecutionOptions describes a single agent execution request.
// Options are treated as immutable once passed to a provider.
type ExecutionOptions struct {
	// Prompt is the task given to the agent.
	Prompt string
	// SessionID resumes a prior vendor session when non-empty.
	SessionID string
	// WorkDir is the working directory for the spawned tool.
	WorkDir string
	// Model selects the vendor model (empty means the tool's default).
	Model string
	// Agent selects a named sub-agent where the vendor supports one.
	Agent string
	// AllowedTools restricts the agent to the listed tools.
	AllowedTools []string
	// DisallowedTools excludes specific tools.
	DisallowedTools []string
	// SystemPrompt overrides the vendor's system prompt when supported.
	SystemPrompt string
	// MaxTurns caps agent turns (0 means unlimited).
	MaxTurns int
	// MaxBudgetUSD caps spend for the execution (0 means unlimited).
	MaxBudgetUSD float64
	// MaxDuration caps wall-clock time (0 means no cap; liveness is
	// judged by the stall heuristic instead).
	MaxDuration time.Duration
	// AddDirs grants the agent access to additional directories.
	AddDirs []string
	// Format selects the output protocol.
	Format OutputFormat
}

// ExecutionMessage is one chronological entry in an execution transcript.
// The message list is append-only and never reordered.
type ExecutionMessage struct {
	Role       MessageRole `json:"role"`
	Content    string      `json:"content"`
	ToolName   string      `json:"tool_name,omitempty"`
	ToolInput  string      `json:"tool_input,omitempty"`
	ToolOutput string      `json:"tool_output,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

// ExecutionResult is the consolidated outcome of one agent execution.
// It is built incrementally while the process streams and frozen once the
// process exits and the output readers drain.
type ExecutionResult struct {
	// Success is true only for exit code 0 with no unresolved stream error.
	Success bool
	// Output is the final output string reported by the vendor, distinct
	// from the incremental message transcript.
	Output string
	// ErrorMessage carries diagnostic context whenever Success is false.
	ErrorMessage string
	// SessionID is the vendor-assigned session identifier, if any.
	SessionID string
	// Messages is the ordered transcript.
	Messages []ExecutionMessage
	// InputTokens and OutputTokens are vendor-reported counts.
	InputTokens  int64
	OutputTokens int64
	// CostUSD is the vendor-reported cost, when available.
	CostUSD float64
	// Model is the model that actually served the execution.
	Model string
	// PID is the OS process id of the spawned tool (0 for REST mode).
	PID int
	// Command records the full command line used, for transparency.
	Command string
	// Paused reports that the execution was paused awaiting interaction.
	Paused bool
	// Limits carries any usage-limit state detected during the run.
	Limits *UsageLimits
	// Duration is the wall-clock time of the execution.
	Duration time.Duration
}

// AddMessage appends a message with the current timestamp.
func (r *ExecutionResult) AddMessage(role MessageRole, content string) {
	r.Messages = append(r.Messages, ExecutionMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// TotalTokens returns input plus output tokens.
func (r *ExecutionResult) TotalTokens() int64 {
	return r.InputTokens + r.OutputTokens
}

// CompletionCriteria is the limit set an external orchestrator attaches to a
// job. The engine reports against these; it does not enforce scheduling.
type CompletionCriteria struct {
	// MaxExecutionTime ends the run when exceeded (0 disables).
	MaxExecutionTime time.Duration
	// MaxCostUSD ends the run when vendor-reported cost exceeds it.
	MaxCostUSD float64
	// MaxTokens ends the run when total tokens exceed it.
	MaxTokens int64
	// StallTimeout is the threshold for the no-output liveness heuristic.
	StallTimeout time.Duration
	// SuccessPattern, when set, must match the output for success.
	SuccessPattern string
	// FailurePattern, when set, forces failure on match.
	FailurePattern string
}
