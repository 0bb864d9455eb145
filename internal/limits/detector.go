// Package limits extracts vendor quota and rate-limit state from free-text
// CLI output and structured REST responses, normalizing both into
// models.UsageLimits.
//
// Detection is best-effort by design: phrase matching against CLI output is
// fragile across vendor tool versions, so the match rules live in a
// replaceable policy table rather than control flow, and a failed detection
// yields an informational no-limit result, never an error.
package limits

import (
	_ "embed"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ShayCichocki/drover/pkg/models"
)

//go:embed patterns.yaml
var defaultPatterns []byte

// Rule is one detection rule from the policy table.
type Rule struct {
	Kind models.LimitKind `yaml:"kind"`
	// Phrases are case-insensitive substrings that signal this limit kind.
	Phrases []string `yaml:"phrases"`
	// ExhaustedPhrases additionally mark the limit as fully consumed.
	ExhaustedPhrases []string `yaml:"exhausted_phrases"`
	// UsagePattern is a regex with two capture groups: current, max.
	UsagePattern string `yaml:"usage_pattern"`
}

// policyTable is the YAML document shape.
type policyTable struct {
	Rules         []Rule   `yaml:"rules"`
	ResetPatterns []string `yaml:"reset_patterns"`
}

type compiledRule struct {
	kind             models.LimitKind
	phrases          []string
	exhaustedPhrases []string
	usage            *regexp.Regexp
}

// Detector scans text for usage-limit signals using a compiled policy table.
type Detector struct {
	rules []compiledRule
	reset []*regexp.Regexp
	now   func() time.Time
}

// NewDetector compiles the embedded default policy table.
func NewDetector() *Detector {
	d, err := Load(defaultPatterns)
	if err != nil {
		// The embedded table is validated by tests; an empty detector is
		// the graceful-degradation fallback.
		return &Detector{now: time.Now}
	}
	return d
}

// Load compiles a policy table from YAML. Invalid regexes fail loading so a
// bad override file is caught at startup, not silently at scan time.
func Load(data []byte) (*Detector, error) {
	var table policyTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse limit patterns: %w", err)
	}

	d := &Detector{now: time.Now}
	for _, rule := range table.Rules {
		cr := compiledRule{kind: rule.Kind}
		for _, phrase := range rule.Phrases {
			cr.phrases = append(cr.phrases, strings.ToLower(phrase))
		}
		for _, phrase := range rule.ExhaustedPhrases {
			cr.exhaustedPhrases = append(cr.exhaustedPhrases, strings.ToLower(phrase))
		}
		if rule.UsagePattern != "" {
			re, err := regexp.Compile("(?i)" + rule.UsagePattern)
			if err != nil {
				return nil, fmt.Errorf("usage pattern for %s: %w", rule.Kind, err)
			}
			cr.usage = re
		}
		d.rules = append(d.rules, cr)
	}
	for _, pattern := range table.ResetPatterns {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("reset pattern: %w", err)
		}
		d.reset = append(d.reset, re)
	}
	return d, nil
}

// Scan inspects output text for limit signals. The first matching rule wins.
// No match returns Kind=LimitNone with an informational message.
func (d *Detector) Scan(text string) *models.UsageLimits {
	lower := strings.ToLower(text)

	for _, rule := range d.rules {
		matched := ""
		for _, phrase := range rule.phrases {
			if strings.Contains(lower, phrase) {
				matched = phrase
				break
			}
		}
		if matched == "" {
			continue
		}

		result := &models.UsageLimits{
			Kind:    rule.kind,
			Message: snippetAround(text, matched),
		}

		if rule.usage != nil {
			if m := rule.usage.FindStringSubmatch(text); len(m) == 3 {
				result.Current, _ = strconv.ParseInt(m[1], 10, 64)
				result.Max, _ = strconv.ParseInt(m[2], 10, 64)
			}
		}
		for _, phrase := range rule.exhaustedPhrases {
			if strings.Contains(lower, phrase) && result.Max == 0 {
				// Exhaustion phrase with no numbers: report as fully used
				// against an unknown-but-hit ceiling of 1/1.
				result.Current, result.Max = 1, 1
			}
		}
		if resetAt, ok := d.resetTime(text); ok {
			result.ResetsAt = resetAt
		}
		return result
	}

	return &models.UsageLimits{
		Kind:    models.LimitNone,
		Message: "no usage limit signals detected",
	}
}

// resetTime extracts a reset time from relative phrases ("try again in 2
// hours") or clock times ("resets at 3pm").
func (d *Detector) resetTime(text string) (time.Time, bool) {
	for _, re := range d.reset {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		switch len(m) {
		case 3:
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			var unit time.Duration
			switch strings.ToLower(m[2]) {
			case "hour":
				unit = time.Hour
			case "minute":
				unit = time.Minute
			case "second":
				unit = time.Second
			default:
				continue
			}
			return d.now().Add(time.Duration(n) * unit), true
		case 2:
			if t, ok := parseClockTime(m[1], d.now()); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// parseClockTime resolves "3pm" or "11:30am" to the next occurrence of that
// wall-clock time.
func parseClockTime(s string, now time.Time) (time.Time, bool) {
	s = strings.ToLower(strings.ReplaceAll(s, " ", ""))
	layouts := []string{"3pm", "3:04pm"}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		t := time.Date(now.Year(), now.Month(), now.Day(), parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
		if !t.After(now) {
			t = t.Add(24 * time.Hour)
		}
		return t, true
	}
	return time.Time{}, false
}

// snippetAround returns a short window of text around the matched phrase so
// the raw vendor wording travels with the normalized result.
func snippetAround(text, phrase string) string {
	lower := strings.ToLower(text)
	idx := strings.Index(lower, phrase)
	if idx < 0 {
		return strings.TrimSpace(text)
	}
	start := idx - 40
	if start < 0 {
		start = 0
	}
	end := idx + len(phrase) + 40
	if end > len(text) {
		end = len(text)
	}
	return strings.TrimSpace(text[start:end])
}
