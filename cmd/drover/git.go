package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/drover/internal/git"
	"github.com/ShayCichocki/drover/pkg/models"
)

var gitWorkDir string

var gitCmd = &cobra.Command{
	Use:   "git",
	Short: "Version control automation around agent runs",
}

var gitDiffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Summarize working tree changes per file",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := git.NewRunner(gitDir())

		text, truncated, err := r.WorkingDiff(cmd.Context(), "")
		if err != nil {
			return err
		}
		summary := git.ParseDiff(text)

		if len(summary.Files) == 0 {
			fmt.Println("no changes")
			return nil
		}
		for _, f := range summary.Files {
			flag := " "
			switch {
			case f.IsNew:
				flag = "A"
			case f.IsDeleted:
				flag = "D"
			default:
				flag = "M"
			}
			fmt.Printf("%s %-50s +%d -%d\n", flag, f.Path, f.Additions, f.Deletions)
		}
		color.New(color.Faint).Printf("%d files, +%d -%d\n",
			len(summary.Files), summary.Additions, summary.Deletions)
		if truncated {
			color.New(color.FgYellow).Println("diff truncated at 1MB")
		}
		return nil
	},
}

var gitCommitMessage string

var gitCommitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Commit all changes and push",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := git.NewRunner(gitDir())

		branch := cfg.Git.Branch
		if branch == "" {
			var err error
			if branch, err = r.CurrentBranch(cmd.Context()); err != nil {
				return err
			}
		}

		res := r.CommitAndPush(cmd.Context(), gitCommitMessage, cfg.Git.Remote, branch)
		if !res.Success {
			if res.CommitHash != "" {
				return fmt.Errorf("committed %s but push failed: %s", res.CommitHash, res.Error)
			}
			return fmt.Errorf("%s", res.Error)
		}
		color.New(color.FgGreen).Printf("✓ %s pushed to %s/%s\n", res.CommitHash, res.Remote, res.Branch)
		return nil
	},
}

var gitSyncBranch string

var gitSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Hard-reset a branch to its state on the remote",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := git.NewRunner(gitDir())

		var res models.GitOperationResult
		if gitSyncBranch != "" {
			res = r.HardCheckout(cmd.Context(), cfg.Git.Remote, gitSyncBranch)
		} else {
			res = r.SyncWithOrigin(cmd.Context(), cfg.Git.Remote)
		}
		if !res.Success {
			return fmt.Errorf("%s", res.Error)
		}
		color.New(color.FgGreen).Printf("✓ synced %s with %s\n", res.Branch, res.Remote)
		return nil
	},
}

var gitBranchesCmd = &cobra.Command{
	Use:   "branches",
	Short: "List local branches and their upstream state",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := git.NewRunner(gitDir())
		branches, err := r.Branches(cmd.Context())
		if err != nil {
			return err
		}
		if len(branches) == 0 {
			fmt.Println("no branches")
			return nil
		}
		for _, b := range branches {
			marker := " "
			if b.IsCurrent {
				marker = "*"
			}
			fmt.Printf("%s %-30s", marker, b.Name)
			if b.Upstream != "" {
				color.New(color.Faint).Printf(" %s", b.Upstream)
			}
			if b.Ahead > 0 {
				color.New(color.FgGreen).Printf(" ahead %d", b.Ahead)
			}
			if b.Behind > 0 {
				color.New(color.FgYellow).Printf(" behind %d", b.Behind)
			}
			fmt.Println()
		}
		return nil
	},
}

var gitCloneCmd = &cobra.Command{
	Use:   "clone [url] [dir]",
	Short: "Clone into an absent or empty directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := git.NewRunner("")
		res := r.Clone(cmd.Context(), args[0], args[1])
		if !res.Success {
			return fmt.Errorf("%s", res.Error)
		}
		color.New(color.FgGreen).Printf("✓ cloned into %s\n", args[1])
		return nil
	},
}

var gitRemoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Show the remote's owner/repo shorthand",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := git.NewRunner(gitDir())
		ownerRepo, err := r.RemoteOwnerRepo(cmd.Context(), cfg.Git.Remote)
		if err != nil {
			return err
		}
		fmt.Println(ownerRepo)
		return nil
	},
}

func gitDir() string {
	if gitWorkDir != "" {
		return gitWorkDir
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

func init() {
	gitCmd.PersistentFlags().StringVarP(&gitWorkDir, "workdir", "C", "", "Repository path (default: current directory)")
	gitCommitCmd.Flags().StringVarP(&gitCommitMessage, "message", "m", "agent changes", "Commit message")
	gitSyncCmd.Flags().StringVar(&gitSyncBranch, "branch", "", "Branch to sync (default: current)")

	gitCmd.AddCommand(gitDiffCmd)
	gitCmd.AddCommand(gitCommitCmd)
	gitCmd.AddCommand(gitSyncCmd)
	gitCmd.AddCommand(gitBranchesCmd)
	gitCmd.AddCommand(gitCloneCmd)
	gitCmd.AddCommand(gitRemoteCmd)
}
