package provider

import (
	"strings"

	"github.com/ShayCichocki/drover/pkg/models"
)

// claudeSpec builds argument vectors for the claude CLI. Output is the
// stream-json protocol with one JSON event per line.
func claudeSpec() vendorSpec {
	return vendorSpec{
		vendor:     VendorClaude,
		executable: "claude",
		buildArgs: func(opts models.ExecutionOptions) []string {
			args := []string{
				"--print",
				"--output-format", "stream-json",
				"--verbose",
			}
			if opts.SessionID != "" {
				args = append(args, "--resume", opts.SessionID)
			}
			if opts.Model != "" {
				args = append(args, "--model", opts.Model)
			}
			if opts.Agent != "" {
				args = append(args, "--agents", opts.Agent)
			}
			if len(opts.AllowedTools) > 0 {
				args = append(args, "--allowedTools", strings.Join(opts.AllowedTools, ","))
			}
			if len(opts.DisallowedTools) > 0 {
				args = append(args, "--disallowedTools", strings.Join(opts.DisallowedTools, ","))
			}
			if opts.SystemPrompt != "" {
				args = append(args, "--append-system-prompt", opts.SystemPrompt)
			}
			if opts.MaxTurns > 0 {
				args = append(args, "--max-turns", itoa(opts.MaxTurns))
			}
			for _, dir := range opts.AddDirs {
				args = append(args, "--add-dir", dir)
			}
			return append(args, "-p", opts.Prompt)
		},
		oneShotArgs: func(prompt string) []string {
			return []string{"--print", "-p", prompt}
		},
		summaryArgs: func(sessionID, prompt string) []string {
			return []string{"--print", "--resume", sessionID, "-p", prompt}
		},
		versionArgs: []string{"--version"},
		update:      updateCommand{args: []string{"update"}},
	}
}
