package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/drover/internal/control"
	"github.com/ShayCichocki/drover/internal/git"
	"github.com/ShayCichocki/drover/internal/provider"
	"github.com/ShayCichocki/drover/internal/stream"
	"github.com/ShayCichocki/drover/pkg/models"
)

var (
	runSession    string
	runWorkDir    string
	runModel      string
	runTools      []string
	runDisallowed []string
	runSystem     string
	runMaxTurns   int
	runTimeout    time.Duration
	runPlain      bool
	runCommit     bool
)

// signalPollInterval is how often a run checks the signal directory for
// kill/pause files between watcher events.
const signalPollInterval = 500 * time.Millisecond

var runCmd = &cobra.Command{
	Use:   "run [prompt]",
	Short: "Execute a prompt through a provider with live progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := selectedProvider()
		if err != nil {
			return err
		}

		opts := models.ExecutionOptions{
			Prompt:          args[0],
			SessionID:       runSession,
			WorkDir:         runWorkDir,
			Model:           runModel,
			AllowedTools:    runTools,
			DisallowedTools: runDisallowed,
			SystemPrompt:    runSystem,
			MaxTurns:        runMaxTurns,
			MaxDuration:     runTimeout,
		}
		if opts.MaxDuration == 0 {
			opts.MaxDuration = cfg.Timeouts.Execution
		}

		var res *models.ExecutionResult
		if runPlain {
			res, err = executePlain(cmd.Context(), p, opts)
		} else {
			res, err = executeTUI(cmd.Context(), p, opts)
		}
		if err != nil {
			return err
		}

		printResult(res)

		if runCommit && res.Success && opts.WorkDir != "" {
			if err := commitRun(cmd.Context(), p, res, opts.WorkDir); err != nil {
				return err
			}
		}
		if !res.Success {
			return fmt.Errorf("execution failed")
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runSession, "session", "s", "", "Resume a prior vendor session")
	runCmd.Flags().StringVarP(&runWorkDir, "workdir", "C", "", "Working directory for the agent")
	runCmd.Flags().StringVarP(&runModel, "model", "m", "", "Model override")
	runCmd.Flags().StringSliceVar(&runTools, "tools", nil, "Restrict the agent to these tools")
	runCmd.Flags().StringSliceVar(&runDisallowed, "disallowed-tools", nil, "Exclude these tools")
	runCmd.Flags().StringVar(&runSystem, "system-prompt", "", "Append to the vendor's system prompt")
	runCmd.Flags().IntVar(&runMaxTurns, "max-turns", 0, "Cap agent turns (0 = unlimited)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Wall-clock cap (0 = no cap, stall heuristic governs)")
	runCmd.Flags().BoolVar(&runPlain, "plain", false, "Line output instead of the live TUI")
	runCmd.Flags().BoolVar(&runCommit, "commit", false, "Commit and push workdir changes after a successful run")
}

// executePlain streams progress as plain lines, honoring the repository's
// signal directory for kill/pause.
func executePlain(ctx context.Context, p provider.Provider, opts models.ExecutionOptions) (*models.ExecutionResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	paused := watchSignals(ctx, cancel, opts.WorkDir)

	faint := color.New(color.Faint)
	toolCol := color.New(color.FgYellow)
	errCol := color.New(color.FgRed)

	sink := func(n stream.Notification) {
		switch n.Kind {
		case "assistant":
			fmt.Print(n.Text)
			if !strings.HasSuffix(n.Text, "\n") {
				fmt.Println()
			}
		case "tool_use":
			toolCol.Printf("» %s\n", n.Text)
		case "error":
			errCol.Printf("✗ %s\n", n.Text)
		case "stderr":
			faint.Println(n.Text)
		}
	}

	res, err := p.Execute(ctx, opts, sink)
	if err != nil {
		return nil, err
	}
	if paused != nil && *paused {
		res.Paused = true
	}
	return res, nil
}

// watchSignals polls the workdir's signal directory. A kill file cancels
// the run; a pause file is reported through the returned flag. Returns nil
// when no workdir is set.
func watchSignals(ctx context.Context, cancel context.CancelFunc, workDir string) *bool {
	if workDir == "" {
		return nil
	}
	sm, err := control.NewSignalManager(workDir)
	if err != nil {
		return nil
	}

	paused := new(bool)
	go func() {
		defer sm.Close()
		ticker := time.NewTicker(signalPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if sm.ShouldPause() {
					*paused = true
				}
				if sm.ShouldKill() {
					cancel()
					return
				}
			}
		}
	}()
	return paused
}

func printResult(res *models.ExecutionResult) {
	fmt.Println()
	if res.Success {
		color.New(color.FgGreen, color.Bold).Println("✓ execution succeeded")
	} else {
		color.New(color.FgRed, color.Bold).Println("✗ execution failed")
		if res.ErrorMessage != "" {
			fmt.Println(res.ErrorMessage)
		}
	}
	if res.Paused {
		color.New(color.FgYellow).Println("⏸ paused by signal")
	}

	faint := color.New(color.Faint)
	if res.SessionID != "" {
		faint.Printf("session: %s\n", res.SessionID)
	}
	if res.TotalTokens() > 0 {
		faint.Printf("tokens: %d in / %d out\n", res.InputTokens, res.OutputTokens)
	}
	if res.CostUSD > 0 {
		faint.Printf("cost: $%.4f\n", res.CostUSD)
	}
	if res.Limits != nil && res.Limits.Kind != models.LimitNone {
		color.New(color.FgYellow).Printf("limit: %s\n", res.Limits.Message)
	}
	faint.Printf("duration: %s\n", res.Duration.Round(time.Millisecond))
}

// commitRun commits and pushes the run's changes, using a best-effort
// session summary as the commit message.
func commitRun(ctx context.Context, p provider.Provider, res *models.ExecutionResult, workDir string) error {
	r := git.NewRunner(workDir)

	changed, err := r.HasChanges(ctx)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Println("no changes to commit")
		return nil
	}

	message := "agent changes"
	if res.SessionID != "" {
		if summary, err := p.SummarizeSession(ctx, res.SessionID); err == nil && summary != "" {
			message = summary
		}
	}

	branch := cfg.Git.Branch
	if branch == "" {
		if branch, err = r.CurrentBranch(ctx); err != nil {
			return err
		}
	}

	out := r.CommitAndPush(ctx, message, cfg.Git.Remote, branch)
	if !out.Success {
		if out.CommitHash != "" {
			return fmt.Errorf("committed %s but push failed: %s", out.CommitHash, out.Error)
		}
		return fmt.Errorf("commit failed: %s", out.Error)
	}
	color.New(color.FgGreen).Printf("✓ committed %s and pushed to %s/%s\n", out.CommitHash, out.Remote, out.Branch)
	return nil
}
