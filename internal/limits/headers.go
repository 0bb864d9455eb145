package limits

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ShayCichocki/drover/pkg/models"
)

// FromHeaders normalizes rate-limit response headers into UsageLimits.
// Understands the anthropic-ratelimit-* family and the generic
// x-ratelimit-* family. Missing headers yield Kind=LimitNone.
func FromHeaders(h http.Header) *models.UsageLimits {
	families := []struct {
		kind      models.LimitKind
		remaining string
		limit     string
		reset     string
	}{
		{models.LimitTokens, "anthropic-ratelimit-tokens-remaining", "anthropic-ratelimit-tokens-limit", "anthropic-ratelimit-tokens-reset"},
		{models.LimitRate, "anthropic-ratelimit-requests-remaining", "anthropic-ratelimit-requests-limit", "anthropic-ratelimit-requests-reset"},
		{models.LimitRate, "x-ratelimit-remaining", "x-ratelimit-limit", "x-ratelimit-reset"},
	}

	for _, f := range families {
		limitStr := h.Get(f.limit)
		if limitStr == "" {
			continue
		}
		max, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil || max <= 0 {
			continue
		}

		result := &models.UsageLimits{
			Kind:    f.kind,
			Max:     max,
			Message: f.limit + "=" + limitStr,
		}
		if remaining, err := strconv.ParseInt(h.Get(f.remaining), 10, 64); err == nil {
			result.Current = max - remaining
			if result.Current < 0 {
				result.Current = 0
			}
		}
		if resetAt, ok := parseResetHeader(h.Get(f.reset)); ok {
			result.ResetsAt = resetAt
		}
		return result
	}

	return &models.UsageLimits{
		Kind:    models.LimitNone,
		Message: "no rate-limit headers present",
	}
}

// parseResetHeader accepts RFC3339 timestamps (Anthropic) and unix epoch
// seconds (generic x-ratelimit-reset).
func parseResetHeader(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if epoch, err := strconv.ParseInt(s, 10, 64); err == nil && epoch > 0 {
		return time.Unix(epoch, 0), true
	}
	return time.Time{}, false
}
