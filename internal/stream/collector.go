package stream

import (
	"strings"
	"sync"
	"time"

	"github.com/ShayCichocki/drover/pkg/models"
)

// Collector folds a stream of events into a models.ExecutionResult.
//
// It owns the transcript ordering invariant: in-progress assistant text is
// always flushed into a completed message before a tool_use message is
// appended, so narrative text never interleaves mid-buffer with the tool
// call it preceded.
type Collector struct {
	mu      sync.Mutex
	res     models.ExecutionResult
	textBuf strings.Builder
	// streamErr is the first unresolved error event. Its presence makes
	// the execution a failure regardless of exit code.
	streamErr string
	queue     *Queue
}

// NewCollector creates a collector. The queue may be nil when no live
// progress feed is wanted.
func NewCollector(queue *Queue) *Collector {
	return &Collector{queue: queue}
}

// OnEvent consumes one decoded event. Safe for use from a single reader
// goroutine; the lock exists because Snapshot and Finalize may be called
// from other goroutines while the stream is live.
func (c *Collector) OnEvent(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ev.SessionID != "" {
		c.res.SessionID = ev.SessionID
	}
	if ev.Model != "" {
		c.res.Model = ev.Model
	}
	// Token and cost totals can arrive incrementally (some vendors emit a
	// running token_count) or with the terminal result; latest wins.
	if ev.InputTokens > 0 {
		c.res.InputTokens = ev.InputTokens
	}
	if ev.OutputTokens > 0 {
		c.res.OutputTokens = ev.OutputTokens
	}
	if ev.CostUSD > 0 {
		c.res.CostUSD = ev.CostUSD
	}

	switch ev.Kind {
	case KindSystem:
		c.publish("system", ev.Text)

	case KindAssistant:
		if ev.Text != "" {
			c.textBuf.WriteString(ev.Text)
			c.publish("assistant", ev.Text)
		}

	case KindUser:
		if ev.Text != "" {
			c.appendMessage(models.RoleUser, ev.Text)
		}

	case KindToolUse:
		// Flush pending narrative first so the transcript reads
		// text-then-tool in stream order.
		c.flushTextLocked()
		c.res.Messages = append(c.res.Messages, models.ExecutionMessage{
			Role:      models.RoleToolUse,
			Content:   ev.Text,
			ToolName:  ev.ToolName,
			ToolInput: ev.ToolInput,
			Timestamp: time.Now(),
		})
		c.publish("tool_use", ev.ToolName)

	case KindToolResult:
		// Already a complete unit, no buffering needed.
		c.res.Messages = append(c.res.Messages, models.ExecutionMessage{
			Role:       models.RoleToolResult,
			Content:    ev.Text,
			ToolName:   ev.ToolName,
			ToolOutput: ev.ToolOutput,
			Timestamp:  time.Now(),
		})

	case KindResult:
		c.flushTextLocked()
		if ev.Text != "" {
			c.res.Output = ev.Text
		}

	case KindError:
		// Mark failed but keep consuming: trailing metrics may follow.
		if c.streamErr == "" {
			c.streamErr = ev.Text
		}
		c.appendMessage(models.RoleError, ev.Text)
		c.publish("error", ev.Text)
	}
}

// StreamError returns the first unresolved error event text, if any.
func (c *Collector) StreamError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.streamErr
}

// Snapshot returns a copy of the result built so far, with pending text
// still buffered (not flushed).
func (c *Collector) Snapshot() models.ExecutionResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.res
	out.Messages = append([]models.ExecutionMessage(nil), c.res.Messages...)
	return out
}

// Finalize flushes any pending text and returns the accumulated result.
// The collector must not receive further events afterwards.
func (c *Collector) Finalize() models.ExecutionResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushTextLocked()
	return c.res
}

func (c *Collector) appendMessage(role models.MessageRole, content string) {
	c.res.Messages = append(c.res.Messages, models.ExecutionMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// flushTextLocked moves the pending assistant text buffer into a completed
// message. Caller holds the lock.
func (c *Collector) flushTextLocked() {
	if c.textBuf.Len() == 0 {
		return
	}
	c.appendMessage(models.RoleAssistant, c.textBuf.String())
	c.textBuf.Reset()
}

func (c *Collector) publish(kind, text string) {
	if c.queue != nil {
		c.queue.Publish(Notification{Kind: kind, Text: text, Time: time.Now()})
	}
}
