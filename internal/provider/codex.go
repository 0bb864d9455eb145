package provider

import "github.com/ShayCichocki/drover/pkg/models"

// codexSpec builds argument vectors for the codex CLI. Non-interactive
// runs go through "exec --json", which emits one JSON event per line;
// session continuation goes through "exec resume".
func codexSpec() vendorSpec {
	return vendorSpec{
		vendor:     VendorCodex,
		executable: "codex",
		buildArgs: func(opts models.ExecutionOptions) []string {
			args := []string{"exec"}
			if opts.SessionID != "" {
				args = append(args, "resume", opts.SessionID)
			}
			args = append(args, "--json", "--skip-git-repo-check")
			if opts.Model != "" {
				args = append(args, "-m", opts.Model)
			}
			if opts.WorkDir != "" {
				args = append(args, "--cd", opts.WorkDir)
			}
			for _, dir := range opts.AddDirs {
				args = append(args, "-c", "sandbox_workspace_write.writable_roots=[\""+dir+"\"]")
			}
			return append(args, opts.Prompt)
		},
		oneShotArgs: func(prompt string) []string {
			return []string{"exec", "--skip-git-repo-check", prompt}
		},
		summaryArgs: func(sessionID, prompt string) []string {
			return []string{"exec", "resume", sessionID, "--skip-git-repo-check", prompt}
		},
		versionArgs: []string{"--version"},
		update:      updateCommand{name: "npm", args: []string{"install", "-g", "@openai/codex@latest"}},
	}
}
