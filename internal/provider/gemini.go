package provider

import "github.com/ShayCichocki/drover/pkg/models"

// geminiSpec builds argument vectors for the gemini CLI. Its output is
// mostly plain text with an optional JSON summary, and it has no session
// resume, so summaryArgs stays nil.
func geminiSpec() vendorSpec {
	return vendorSpec{
		vendor:     VendorGemini,
		executable: "gemini",
		buildArgs: func(opts models.ExecutionOptions) []string {
			var args []string
			if opts.Model != "" {
				args = append(args, "-m", opts.Model)
			}
			if opts.Format == models.OutputStreamJSON {
				args = append(args, "-o", "json")
			}
			for _, dir := range opts.AddDirs {
				args = append(args, "--include-directories", dir)
			}
			return append(args, "-p", opts.Prompt)
		},
		oneShotArgs: func(prompt string) []string {
			return []string{"-p", prompt}
		},
		versionArgs: []string{"--version"},
		update:      updateCommand{name: "npm", args: []string{"install", "-g", "@google/gemini-cli@latest"}},
	}
}
