// Package provider adapts coding-agent tools behind one execution contract.
// Each configured instance speaks exactly one connection mode: a CLI
// subprocess or the vendor's REST API.
package provider

import (
	"context"
	"fmt"

	"github.com/ShayCichocki/drover/internal/stream"
	"github.com/ShayCichocki/drover/pkg/models"
)

// Vendor identifies a coding-agent tool family.
type Vendor string

const (
	VendorClaude Vendor = "claude"
	VendorCodex  Vendor = "codex"
	VendorGemini Vendor = "gemini"
)

// Mode is a connection mode for a provider instance.
type Mode string

const (
	// ModeCLI spawns the vendor's command-line tool as a subprocess.
	ModeCLI Mode = "cli"
	// ModeAPI talks to the vendor's REST API directly.
	ModeAPI Mode = "api"
)

// ModelInfo describes one selectable model with approximate pricing in USD
// per million tokens.
type ModelInfo struct {
	Name             string  `json:"name"`
	InputPerMTokUSD  float64 `json:"input_per_mtok_usd"`
	OutputPerMTokUSD float64 `json:"output_per_mtok_usd"`
}

// Capabilities declares what a vendor supports. The table is static: a
// mode absent here is rejected at construction, not discovered at runtime.
type Capabilities struct {
	Vendor           Vendor      `json:"vendor"`
	Modes            []Mode      `json:"modes"`
	Models           []ModelInfo `json:"models"`
	SupportsSessions bool        `json:"supports_sessions"`
	SupportsUpdate   bool        `json:"supports_update"`
}

// HasMode reports whether the vendor supports the given connection mode.
func (c Capabilities) HasMode(m Mode) bool {
	for _, mode := range c.Modes {
		if mode == m {
			return true
		}
	}
	return false
}

// Config is one configured provider instance.
type Config struct {
	// Name is the instance name used to refer to this provider.
	Name string
	// Vendor selects the adapter.
	Vendor Vendor
	// Mode selects the connection mode.
	Mode Mode
	// Executable overrides the vendor's default CLI name (CLI mode).
	Executable string
	// Model is the default model for executions that do not name one.
	Model string
	// APIKey authenticates REST mode. Empty falls back to the vendor's
	// environment variable.
	APIKey string
	// UseBedrock routes Claude REST calls through AWS Bedrock.
	UseBedrock bool
	AWSRegion  string
	AWSProfile string
}

// Provider is the uniform contract over every adapter.
type Provider interface {
	// Name returns the configured instance name.
	Name() string
	// Capabilities returns the vendor's static capability table entry.
	Capabilities() Capabilities
	// TestConnection verifies the tool or endpoint is reachable.
	TestConnection(ctx context.Context) error
	// Execute runs a prompt with live progress delivered to sink (which
	// may be nil). The returned result is always non-nil when err is nil,
	// including failed executions: failure detail lives in the result.
	Execute(ctx context.Context, opts models.ExecutionOptions, sink stream.Sink) (*models.ExecutionResult, error)
	// RunOneShot fires a single lightweight prompt and returns the plain
	// text answer.
	RunOneShot(ctx context.Context, prompt string) (string, error)
	// GetUsageLimits reports the most recently observed limit state.
	// Absence of a signal is an informational result, never an error.
	GetUsageLimits(ctx context.Context) (*models.UsageLimits, error)
	// SummarizeSession produces a short description of a prior session,
	// suitable for a commit message. Best effort.
	SummarizeSession(ctx context.Context, sessionID string) (string, error)
	// Update self-updates the vendor tool.
	Update(ctx context.Context) error
}

// capabilityTable is the static vendor capability declaration.
var capabilityTable = map[Vendor]Capabilities{
	VendorClaude: {
		Vendor: VendorClaude,
		Modes:  []Mode{ModeCLI, ModeAPI},
		Models: []ModelInfo{
			{Name: "claude-sonnet-4-20250514", InputPerMTokUSD: 3, OutputPerMTokUSD: 15},
			{Name: "claude-opus-4-1-20250805", InputPerMTokUSD: 15, OutputPerMTokUSD: 75},
			{Name: "claude-3-5-haiku-20241022", InputPerMTokUSD: 0.8, OutputPerMTokUSD: 4},
		},
		SupportsSessions: true,
		SupportsUpdate:   true,
	},
	VendorCodex: {
		Vendor: VendorCodex,
		Modes:  []Mode{ModeCLI},
		Models: []ModelInfo{
			{Name: "gpt-5-codex", InputPerMTokUSD: 1.25, OutputPerMTokUSD: 10},
			{Name: "o4-mini", InputPerMTokUSD: 1.1, OutputPerMTokUSD: 4.4},
		},
		SupportsSessions: true,
		SupportsUpdate:   true,
	},
	VendorGemini: {
		Vendor: VendorGemini,
		Modes:  []Mode{ModeCLI},
		Models: []ModelInfo{
			{Name: "gemini-2.5-pro", InputPerMTokUSD: 1.25, OutputPerMTokUSD: 10},
			{Name: "gemini-2.5-flash", InputPerMTokUSD: 0.3, OutputPerMTokUSD: 2.5},
		},
		SupportsSessions: false,
		SupportsUpdate:   true,
	},
}

// CapabilitiesFor returns the capability table entry for a vendor.
func CapabilitiesFor(v Vendor) (Capabilities, bool) {
	caps, ok := capabilityTable[v]
	return caps, ok
}

// Vendors lists the known vendors in a stable order.
func Vendors() []Vendor {
	return []Vendor{VendorClaude, VendorCodex, VendorGemini}
}

// New constructs the adapter for a configured instance. The vendor must be
// known and the requested mode declared in its capability table.
func New(cfg Config) (Provider, error) {
	caps, ok := capabilityTable[cfg.Vendor]
	if !ok {
		return nil, fmt.Errorf("unknown vendor %q", cfg.Vendor)
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeCLI
	}
	if !caps.HasMode(cfg.Mode) {
		return nil, fmt.Errorf("vendor %s does not support mode %s", cfg.Vendor, cfg.Mode)
	}
	if cfg.Name == "" {
		cfg.Name = string(cfg.Vendor)
	}

	switch cfg.Mode {
	case ModeCLI:
		spec, err := specFor(cfg.Vendor)
		if err != nil {
			return nil, err
		}
		return newCLIProvider(cfg, caps, spec)
	case ModeAPI:
		switch cfg.Vendor {
		case VendorClaude:
			return newClaudeAPIProvider(cfg, caps)
		default:
			return nil, fmt.Errorf("vendor %s has no API adapter", cfg.Vendor)
		}
	default:
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}
}
