package provider

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aws/aws-sdk-go-v2/config"

	"github.com/ShayCichocki/drover/internal/limits"
	"github.com/ShayCichocki/drover/internal/logging"
	"github.com/ShayCichocki/drover/internal/stream"
	"github.com/ShayCichocki/drover/pkg/models"
)

const apiMaxTokens = 8192

// claudeAPIProvider talks to the Anthropic Messages API directly, either
// with an API key or through AWS Bedrock. It has no subprocess, sessions,
// or self-update; tool use is not bridged in this mode.
type claudeAPIProvider struct {
	cfg    Config
	caps   Capabilities
	client anthropic.Client
	model  anthropic.Model

	mu         sync.Mutex
	lastLimits *models.UsageLimits
}

func newClaudeAPIProvider(cfg Config, caps Capabilities) (*claudeAPIProvider, error) {
	var opts []option.RequestOption

	if cfg.UseBedrock {
		var loadOpts []func(*config.LoadOptions) error
		if cfg.AWSRegion != "" {
			loadOpts = append(loadOpts, config.WithRegion(cfg.AWSRegion))
		}
		if cfg.AWSProfile != "" {
			loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.AWSProfile))
		}
		opts = append(opts, bedrock.WithLoadDefaultConfig(context.Background(), loadOpts...))
	} else {
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("no API key configured and ANTHROPIC_API_KEY is not set")
		}
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	model := anthropic.Model(cfg.Model)
	if model == "" {
		model = anthropic.ModelClaudeSonnet4_20250514
	}
	if cfg.UseBedrock {
		model = bedrockModel(model)
	}

	return &claudeAPIProvider{
		cfg:    cfg,
		caps:   caps,
		client: anthropic.NewClient(opts...),
		model:  model,
	}, nil
}

// bedrockModel converts a standard model name to Bedrock's cross-region
// inference profile format. Unknown names pass through unchanged: they may
// already be in Bedrock format.
func bedrockModel(model anthropic.Model) anthropic.Model {
	if strings.HasPrefix(string(model), "us.anthropic.") {
		return model
	}
	return anthropic.Model("us.anthropic." + string(model) + "-v1:0")
}

func (p *claudeAPIProvider) Name() string               { return p.cfg.Name }
func (p *claudeAPIProvider) Capabilities() Capabilities { return p.caps }

// TestConnection issues a minimal message under the connectivity timeout.
func (p *claudeAPIProvider) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, connectivityTimeout)
	defer cancel()

	_, err := p.message(ctx, p.model, "", "ping", 1)
	if err != nil {
		return fmt.Errorf("anthropic API unreachable: %w", err)
	}
	return nil
}

// Execute sends the prompt as a single Messages API call. The response is
// folded into the same result shape as a CLI execution: one user message,
// one assistant message, token totals, and rate-limit headers normalized
// into Limits.
func (p *claudeAPIProvider) Execute(ctx context.Context, opts models.ExecutionOptions, sink stream.Sink) (*models.ExecutionResult, error) {
	if opts.SessionID != "" {
		return nil, fmt.Errorf("API mode does not support session resume")
	}
	if opts.MaxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.MaxDuration)
		defer cancel()
	}

	model := p.model
	if opts.Model != "" {
		model = anthropic.Model(opts.Model)
		if p.cfg.UseBedrock {
			model = bedrockModel(model)
		}
	}

	var queue *stream.Queue
	if sink != nil {
		queue = stream.NewQueue(sink)
		defer queue.Close()
	}

	started := time.Now()
	result := &models.ExecutionResult{Model: string(model)}
	result.AddMessage(models.RoleUser, opts.Prompt)

	resp, err := p.message(ctx, model, opts.SystemPrompt, opts.Prompt, apiMaxTokens)
	result.Duration = time.Since(started)
	result.Limits = p.currentLimits()

	if err != nil {
		result.ErrorMessage = err.Error()
		result.AddMessage(models.RoleError, err.Error())
		return result, nil
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(variant.Text)
		}
	}

	result.Success = true
	result.Output = text.String()
	result.InputTokens = resp.Usage.InputTokens
	result.OutputTokens = resp.Usage.OutputTokens
	result.Model = string(resp.Model)
	result.AddMessage(models.RoleAssistant, result.Output)

	if queue != nil {
		queue.Publish(stream.Notification{Kind: "assistant", Text: result.Output, Time: time.Now()})
	}
	logging.Debugf("provider %s: API execute tokens=%d/%d",
		p.cfg.Name, result.InputTokens, result.OutputTokens)
	return result, nil
}

// message issues one Messages API call and captures rate-limit headers
// from the raw response.
func (p *claudeAPIProvider) message(ctx context.Context, model anthropic.Model, system, prompt string, maxTokens int64) (*anthropic.Message, error) {
	params := anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	var raw *http.Response
	resp, err := p.client.Messages.New(ctx, params, option.WithResponseInto(&raw))
	if raw != nil {
		if lim := limits.FromHeaders(raw.Header); lim != nil && lim.Kind != models.LimitNone {
			p.mu.Lock()
			p.lastLimits = lim
			p.mu.Unlock()
		}
	}
	return resp, err
}

func (p *claudeAPIProvider) currentLimits() *models.UsageLimits {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastLimits
}

// RunOneShot sends a single prompt and returns the text answer.
func (p *claudeAPIProvider) RunOneShot(ctx context.Context, prompt string) (string, error) {
	resp, err := p.message(ctx, p.model, "", prompt, apiMaxTokens)
	if err != nil {
		return "", err
	}
	var text strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(variant.Text)
		}
	}
	return strings.TrimSpace(text.String()), nil
}

// GetUsageLimits returns the rate-limit state from the most recent API
// response headers.
func (p *claudeAPIProvider) GetUsageLimits(ctx context.Context) (*models.UsageLimits, error) {
	if lim := p.currentLimits(); lim != nil {
		return lim, nil
	}
	return &models.UsageLimits{
		Kind:    models.LimitNone,
		Message: "no rate limit headers observed",
	}, nil
}

// SummarizeSession is unsupported: the API mode is stateless.
func (p *claudeAPIProvider) SummarizeSession(ctx context.Context, sessionID string) (string, error) {
	return "", fmt.Errorf("API mode has no sessions to summarize")
}

// Update is a no-op concern in API mode: there is no tool to update.
func (p *claudeAPIProvider) Update(ctx context.Context) error {
	return fmt.Errorf("API mode has no CLI tool to update")
}
