package limits

import (
	"net/http"
	"testing"
	"time"

	"github.com/ShayCichocki/drover/pkg/models"
)

func TestScanNoSignal(t *testing.T) {
	d := NewDetector()

	got := d.Scan("Compiled 14 packages in 3.2s, all tests passing")
	if got.Kind != models.LimitNone {
		t.Errorf("Kind = %q, want none", got.Kind)
	}
	if got.Message == "" {
		t.Error("no-signal result should carry an informational message")
	}
}

func TestScanRateLimit(t *testing.T) {
	d := NewDetector()

	tests := []string{
		"Error: rate limit exceeded, slow down",
		"HTTP 429 Too Many Requests",
		"you are being rate-limited",
	}
	for _, text := range tests {
		got := d.Scan(text)
		if got.Kind != models.LimitRate {
			t.Errorf("Scan(%q).Kind = %q, want rate", text, got.Kind)
		}
	}
}

func TestScanPremiumRequestsWithCounts(t *testing.T) {
	d := NewDetector()

	got := d.Scan("You have used 270 of 300 premium requests this month.")
	if got.Kind != models.LimitPremiumRequests {
		t.Fatalf("Kind = %q, want premium_requests", got.Kind)
	}
	if got.Current != 270 || got.Max != 300 {
		t.Errorf("usage = %d/%d, want 270/300", got.Current, got.Max)
	}
	if pct := got.PercentUsed(); pct == nil || *pct != 90 {
		t.Errorf("PercentUsed() = %v, want 90", pct)
	}
}

func TestScanSessionExhaustion(t *testing.T) {
	d := NewDetector()

	got := d.Scan("Claude usage limit reached. Your limit will reset at 7pm.")
	if got.Kind != models.LimitSession {
		t.Fatalf("Kind = %q, want session", got.Kind)
	}
	if !got.Exhausted() {
		t.Error("exhaustion phrase with no counts should report Exhausted")
	}
	if got.ResetsAt.IsZero() {
		t.Error("reset clock time was not extracted")
	}
}

func TestScanRelativeResetTime(t *testing.T) {
	d := NewDetector()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return base }

	got := d.Scan("rate limit exceeded, try again in 2 hours")
	if got.Kind != models.LimitRate {
		t.Fatalf("Kind = %q, want rate", got.Kind)
	}
	want := base.Add(2 * time.Hour)
	if !got.ResetsAt.Equal(want) {
		t.Errorf("ResetsAt = %v, want %v", got.ResetsAt, want)
	}
}

func TestScanNeverErrors(t *testing.T) {
	d := NewDetector()

	inputs := []string{"", "\x00\xff garbage", "429 429 429 rate limit rate limit"}
	for _, text := range inputs {
		if got := d.Scan(text); got == nil {
			t.Errorf("Scan(%q) = nil, detection must always return a result", text)
		}
	}
}

func TestLoadRejectsBadRegex(t *testing.T) {
	_, err := Load([]byte("rules:\n  - kind: rate\n    phrases: [\"x\"]\n    usage_pattern: \"([\"\n"))
	if err == nil {
		t.Error("Load() error = nil, want compile failure for bad override")
	}
}

func TestFromHeadersAnthropic(t *testing.T) {
	h := http.Header{}
	h.Set("anthropic-ratelimit-tokens-limit", "100000")
	h.Set("anthropic-ratelimit-tokens-remaining", "25000")
	h.Set("anthropic-ratelimit-tokens-reset", "2026-03-01T15:00:00Z")

	got := FromHeaders(h)
	if got.Kind != models.LimitTokens {
		t.Fatalf("Kind = %q, want tokens", got.Kind)
	}
	if got.Current != 75000 || got.Max != 100000 {
		t.Errorf("usage = %d/%d, want 75000/100000", got.Current, got.Max)
	}
	if got.ResetsAt.IsZero() {
		t.Error("ResetsAt not parsed from RFC3339 header")
	}
}

func TestFromHeadersGenericEpochReset(t *testing.T) {
	h := http.Header{}
	h.Set("x-ratelimit-limit", "60")
	h.Set("x-ratelimit-remaining", "0")
	h.Set("x-ratelimit-reset", "1790000000")

	got := FromHeaders(h)
	if got.Kind != models.LimitRate {
		t.Fatalf("Kind = %q, want rate", got.Kind)
	}
	if !got.Exhausted() {
		t.Error("zero remaining should report Exhausted")
	}
	if got.ResetsAt.Unix() != 1790000000 {
		t.Errorf("ResetsAt = %v, want epoch 1790000000", got.ResetsAt)
	}
}

func TestFromHeadersAbsent(t *testing.T) {
	got := FromHeaders(http.Header{})
	if got.Kind != models.LimitNone {
		t.Errorf("Kind = %q, want none", got.Kind)
	}
}
