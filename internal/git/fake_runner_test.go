package git

import (
	"context"
	"strings"

	"github.com/ShayCichocki/drover/internal/exec"
)

// fakeRunner scripts git's behavior per subcommand prefix. The first rule
// whose prefix matches the joined argument list wins; unmatched commands
// succeed with empty output.
type fakeRunner struct {
	rules []fakeRule
	calls []string
}

type fakeRule struct {
	prefix string
	result exec.Result
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, workDir, name string, args ...string) (*exec.Result, error) {
	call := strings.Join(args, " ")
	f.calls = append(f.calls, call)

	for _, rule := range f.rules {
		if strings.HasPrefix(call, rule.prefix) {
			res := rule.result
			return &res, rule.err
		}
	}
	return &exec.Result{ExitCode: 0}, nil
}

func (f *fakeRunner) RunShell(ctx context.Context, workDir, command string) (*exec.Result, error) {
	return f.Run(ctx, workDir, "sh", "-c", command)
}

func (f *fakeRunner) called(prefix string) bool {
	for _, call := range f.calls {
		if strings.HasPrefix(call, prefix) {
			return true
		}
	}
	return false
}

var _ exec.CommandRunner = (*fakeRunner)(nil)
