package provider

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ShayCichocki/drover/internal/limits"
	"github.com/ShayCichocki/drover/internal/logging"
	"github.com/ShayCichocki/drover/internal/proc"
	"github.com/ShayCichocki/drover/internal/stream"
	"github.com/ShayCichocki/drover/pkg/models"
)

// connectivityTimeout bounds how long a version probe may take. A tool that
// cannot print its version inside this window is treated as unreachable.
const connectivityTimeout = 10 * time.Second

// stdoutTailLines is how many trailing stdout lines back a failure
// diagnostic when neither stderr nor the stream reported anything.
const stdoutTailLines = 20

// updateCommand is a vendor's self-update invocation. Some tools update
// themselves, others are reinstalled through their package manager.
type updateCommand struct {
	name string
	args []string
}

// vendorSpec is the per-vendor argument construction strategy. Flag
// spellings drift across tool versions, so each vendor owns its own vector
// building instead of sharing a template.
type vendorSpec struct {
	vendor     Vendor
	executable string
	// buildArgs produces the full argument vector for an execution.
	buildArgs func(opts models.ExecutionOptions) []string
	// oneShotArgs produces the vector for a plain-text single prompt.
	oneShotArgs func(prompt string) []string
	// summaryArgs produces the vector for a session summary probe, or nil
	// when the vendor cannot resume sessions.
	summaryArgs func(sessionID, prompt string) []string
	versionArgs []string
	update      updateCommand
}

func specFor(v Vendor) (vendorSpec, error) {
	switch v {
	case VendorClaude:
		return claudeSpec(), nil
	case VendorCodex:
		return codexSpec(), nil
	case VendorGemini:
		return geminiSpec(), nil
	default:
		return vendorSpec{}, fmt.Errorf("no CLI spec for vendor %q", v)
	}
}

// cliProvider runs a vendor tool as a supervised subprocess and folds its
// line protocol into execution results.
type cliProvider struct {
	cfg    Config
	caps   Capabilities
	spec   vendorSpec
	sup    *proc.Supervisor
	parser stream.LineParser
	det    *limits.Detector

	mu         sync.Mutex
	lastLimits *models.UsageLimits
}

func newCLIProvider(cfg Config, caps Capabilities, spec vendorSpec) (*cliProvider, error) {
	parser, err := stream.ForVendor(string(spec.vendor))
	if err != nil {
		return nil, err
	}
	return &cliProvider{
		cfg:    cfg,
		caps:   caps,
		spec:   spec,
		sup:    proc.NewSupervisor(),
		parser: parser,
		det:    limits.NewDetector(),
	}, nil
}

func (p *cliProvider) Name() string               { return p.cfg.Name }
func (p *cliProvider) Capabilities() Capabilities { return p.caps }

func (p *cliProvider) executable() string {
	if p.cfg.Executable != "" {
		return p.cfg.Executable
	}
	return p.spec.executable
}

// TestConnection runs the tool's version probe under a fixed timeout,
// independent of whatever deadline the caller carries.
func (p *cliProvider) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, connectivityTimeout)
	defer cancel()

	mp, err := p.sup.Start(ctx, proc.StartOptions{
		Name: p.executable(),
		Args: p.spec.versionArgs,
	})
	if err != nil {
		return fmt.Errorf("%s unavailable: %w", p.executable(), err)
	}
	defer p.sup.Remove(mp.ID)

	res := p.sup.WaitForExit(ctx, mp.ID, connectivityTimeout)
	if res.State != proc.WaitExited || res.ExitCode != 0 {
		return fmt.Errorf("%s version probe failed: %s",
			p.executable(), diagnostics(mp.Stderr(), "", mp.Stdout()))
	}
	return nil
}

// Execute spawns the vendor tool and streams its output. Success requires
// exit code 0 and no unresolved stream-reported error. The execution
// transcript, totals, diagnostics, and any detected usage limits all land
// in the returned result; err is reserved for spawn failures.
func (p *cliProvider) Execute(ctx context.Context, opts models.ExecutionOptions, sink stream.Sink) (*models.ExecutionResult, error) {
	if opts.SessionID != "" && !p.caps.SupportsSessions {
		return nil, fmt.Errorf("vendor %s cannot resume sessions", p.spec.vendor)
	}
	if opts.Model == "" {
		opts.Model = p.cfg.Model
	}

	var queue *stream.Queue
	if sink != nil {
		queue = stream.NewQueue(sink)
		defer queue.Close()
	}
	collector := stream.NewCollector(queue)
	observed := &limitHolder{}

	args := p.spec.buildArgs(opts)
	started := time.Now()

	mp, err := p.sup.Start(ctx, proc.StartOptions{
		Name:     p.executable(),
		Args:     args,
		WorkDir:  opts.WorkDir,
		OnStdout: p.stdoutLine(collector, observed),
		OnStderr: p.stderrLine(queue, observed),
	})
	if err != nil {
		return nil, fmt.Errorf("spawn %s: %w", p.executable(), err)
	}
	defer p.sup.Remove(mp.ID)

	wait := p.sup.WaitForExit(ctx, mp.ID, opts.MaxDuration)

	result := collector.Finalize()
	result.PID = mp.PID
	result.Command = p.executable() + " " + strings.Join(args, " ")
	result.Duration = time.Since(started)
	result.Limits = observed.get()

	streamErr := collector.StreamError()
	result.Success = wait.State == proc.WaitExited && wait.ExitCode == 0 && streamErr == ""
	if !result.Success {
		result.ErrorMessage = waitContext(wait) + diagnostics(mp.Stderr(), streamErr, mp.Stdout())
	}
	if result.Output == "" && result.Success {
		result.Output = lastAssistantText(result.Messages)
	}

	logging.Debugf("provider %s: execute exit=%d success=%t session=%s",
		p.cfg.Name, wait.ExitCode, result.Success, result.SessionID)
	return &result, nil
}

// limitHolder scopes detected limit signals to a single execution so a
// result never reports a signal from an earlier run.
type limitHolder struct {
	mu  sync.Mutex
	lim *models.UsageLimits
}

func (h *limitHolder) set(lim *models.UsageLimits) {
	if lim == nil {
		return
	}
	h.mu.Lock()
	h.lim = lim
	h.mu.Unlock()
}

func (h *limitHolder) get() *models.UsageLimits {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lim
}

// stdoutLine routes each stdout line through the vendor parser into the
// collector and opportunistically scans for limit phrases. Never blocks.
func (p *cliProvider) stdoutLine(collector *stream.Collector, observed *limitHolder) proc.OutputFunc {
	return func(line string) {
		for _, ev := range p.parser.ParseLine(line) {
			collector.OnEvent(ev)
		}
		observed.set(p.scanLimits(line))
	}
}

// stderrLine feeds stderr into the live-progress feed and the limit
// scanner. The raw text is kept in the process buffer for diagnostics.
func (p *cliProvider) stderrLine(queue *stream.Queue, observed *limitHolder) proc.OutputFunc {
	return func(line string) {
		if queue != nil {
			queue.Publish(stream.Notification{Kind: "stderr", Text: line, Time: time.Now()})
		}
		observed.set(p.scanLimits(line))
	}
}

// scanLimits remembers a detected signal for the instance lifetime and
// returns it so callers can also scope it to one run. Returns nil when the
// line carries no signal.
func (p *cliProvider) scanLimits(line string) *models.UsageLimits {
	lim := p.det.Scan(line)
	if lim == nil || lim.Kind == models.LimitNone {
		return nil
	}
	p.mu.Lock()
	p.lastLimits = lim
	p.mu.Unlock()
	return lim
}

// takeLimits returns the most recent limit signal seen anywhere on this
// instance, executions and probes alike. It outlives the run that produced
// it; per-run scoping is the limitHolder's job.
func (p *cliProvider) takeLimits() *models.UsageLimits {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastLimits
}

// RunOneShot fires a single plain-text prompt and returns stdout.
func (p *cliProvider) RunOneShot(ctx context.Context, prompt string) (string, error) {
	return p.plainRun(ctx, p.spec.oneShotArgs(prompt))
}

func (p *cliProvider) plainRun(ctx context.Context, args []string) (string, error) {
	mp, err := p.sup.Start(ctx, proc.StartOptions{Name: p.executable(), Args: args})
	if err != nil {
		return "", fmt.Errorf("spawn %s: %w", p.executable(), err)
	}
	defer p.sup.Remove(mp.ID)

	wait := p.sup.WaitForExit(ctx, mp.ID, 0)
	stdout := mp.Stdout()
	p.scanLimits(stdout)
	p.scanLimits(mp.Stderr())

	if wait.State != proc.WaitExited || wait.ExitCode != 0 {
		return "", fmt.Errorf("%s failed: %s",
			p.executable(), waitContext(wait)+diagnostics(mp.Stderr(), "", stdout))
	}
	return strings.TrimSpace(stdout), nil
}

// GetUsageLimits reports the most recent limit signal seen in any output
// this instance produced. No signal is an informational answer.
func (p *cliProvider) GetUsageLimits(ctx context.Context) (*models.UsageLimits, error) {
	if last := p.takeLimits(); last != nil {
		return last, nil
	}
	return &models.UsageLimits{
		Kind:    models.LimitNone,
		Message: "no usage limit signals observed",
	}, nil
}

// SummarizeSession asks the vendor for a one-line description of a prior
// session. Best effort: vendors without session support report an error.
func (p *cliProvider) SummarizeSession(ctx context.Context, sessionID string) (string, error) {
	if p.spec.summaryArgs == nil {
		return "", fmt.Errorf("vendor %s cannot summarize sessions", p.spec.vendor)
	}
	const prompt = "Summarize what was accomplished in this session in one line, suitable for a git commit message. Reply with only the summary."
	return p.plainRun(ctx, p.spec.summaryArgs(sessionID, prompt))
}

// Update self-updates the vendor tool.
func (p *cliProvider) Update(ctx context.Context) error {
	cmd := p.spec.update
	name := cmd.name
	if name == "" {
		name = p.executable()
	}

	mp, err := p.sup.Start(ctx, proc.StartOptions{Name: name, Args: cmd.args})
	if err != nil {
		return fmt.Errorf("spawn %s: %w", name, err)
	}
	defer p.sup.Remove(mp.ID)

	wait := p.sup.WaitForExit(ctx, mp.ID, 0)
	if wait.State != proc.WaitExited || wait.ExitCode != 0 {
		return fmt.Errorf("update failed: %s",
			waitContext(wait)+diagnostics(mp.Stderr(), "", mp.Stdout()))
	}
	return nil
}

// diagnostics assembles a failure explanation: stderr first, then any
// structured stream error, and only when both are empty the tail of
// stdout. Every failure carries some explanation even when the vendor tool
// is silent on stderr.
func diagnostics(stderr, streamErr, stdout string) string {
	var parts []string
	if s := strings.TrimSpace(stderr); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(streamErr); s != "" {
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		if tail := stdoutTail(stdout, stdoutTailLines); tail != "" {
			parts = append(parts, tail)
		}
	}
	if len(parts) == 0 {
		return "no output"
	}
	return strings.Join(parts, "; ")
}

func stdoutTail(stdout string, n int) string {
	stdout = strings.TrimSpace(stdout)
	if stdout == "" {
		return ""
	}
	lines := strings.Split(stdout, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

func waitContext(w proc.WaitResult) string {
	switch w.State {
	case proc.WaitTimedOut:
		return "timed out: "
	case proc.WaitCancelled:
		return "cancelled: "
	default:
		return ""
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func lastAssistantText(msgs []models.ExecutionMessage) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == models.RoleAssistant {
			return msgs[i].Content
		}
	}
	return ""
}
