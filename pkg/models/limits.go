package models

import "time"

// LimitKind classifies a vendor-reported usage limit.
type LimitKind string

const (
	// LimitNone means no limit signal was detected.
	LimitNone LimitKind = "none"
	// LimitPremiumRequests is a premium/priority request quota.
	LimitPremiumRequests LimitKind = "premium_requests"
	// LimitSession is a per-session usage cap.
	LimitSession LimitKind = "session"
	// LimitTokens is a token quota.
	LimitTokens LimitKind = "tokens"
	// LimitRate is a rate limit (requests per window).
	LimitRate LimitKind = "rate"
)

// UsageLimits is the normalized view of a vendor's quota or rate-limit
// state. Detection is best-effort: absence of a signal is Kind=LimitNone with
// an informational Message, never an error.
type UsageLimits struct {
	Kind LimitKind `json:"kind"`
	// Current and Max are vendor-reported usage numbers. Zero Max means
	// the ceiling is unknown.
	Current int64 `json:"current"`
	Max     int64 `json:"max"`
	// ResetsAt is when the limit window resets, if reported.
	ResetsAt time.Time `json:"resets_at,omitempty"`
	// Message is the human-readable signal the numbers were derived from.
	Message string `json:"message,omitempty"`
}

// Exhausted reports whether the limit is known to be fully consumed.
func (u *UsageLimits) Exhausted() bool {
	if u == nil || u.Kind == LimitNone {
		return false
	}
	return u.Max > 0 && u.Current >= u.Max
}

// PercentUsed returns floor(100*Current/Max), or nil when Max is unknown or
// zero. Callers must treat nil as "no data", not as zero percent.
func (u *UsageLimits) PercentUsed() *int {
	if u == nil || u.Max <= 0 || u.Current < 0 {
		return nil
	}
	pct := int(u.Current * 100 / u.Max)
	return &pct
}
