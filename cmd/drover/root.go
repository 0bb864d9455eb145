package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/drover/internal/config"
	"github.com/ShayCichocki/drover/internal/logging"
	"github.com/ShayCichocki/drover/internal/provider"
)

var (
	cfg          *config.Config
	cfgPath      string
	flagProvider string
)

var rootCmd = &cobra.Command{
	Use:   "drover",
	Short: "Agent execution engine for coding-agent CLIs",
	Long: `Drover runs coding-agent tools (Claude Code, Codex, Gemini) as supervised
subprocesses or direct API calls, streams their output live, detects usage
limits, and automates the git workflow around each run.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgPath != "" {
			cfg, err = config.LoadFromPath(cfgPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return err
		}
		if cfg.Logging.DebugFile != "" {
			logger, err := logging.NewDebugLogger(cfg.Logging.DebugFile)
			if err != nil {
				return fmt.Errorf("open debug log: %w", err)
			}
			logging.SetDefault(logger)
		}
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file path (default: XDG + project .drover.yaml)")
	rootCmd.PersistentFlags().StringVarP(&flagProvider, "provider", "P", "", "Provider instance name (default from config)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(limitsCmd)
	rootCmd.AddCommand(gitCmd)
	rootCmd.AddCommand(versionCmd)
}

// selectedProvider builds the provider instance named by --provider, or the
// configured default.
func selectedProvider() (provider.Provider, error) {
	pc, err := cfg.Provider(flagProvider)
	if err != nil {
		return nil, err
	}
	if pc.Mode == "" || pc.Mode == string(provider.ModeCLI) {
		name := pc.Executable
		if name == "" {
			name = pc.Vendor
		}
		if err := checkCLI(name); err != nil {
			return nil, err
		}
	}
	return provider.New(provider.Config{
		Name:       instanceName(),
		Vendor:     provider.Vendor(pc.Vendor),
		Mode:       provider.Mode(pc.Mode),
		Executable: pc.Executable,
		Model:      pc.Model,
		APIKey:     pc.APIKey,
		UseBedrock: pc.UseBedrock,
		AWSRegion:  pc.AWSRegion,
		AWSProfile: pc.AWSProfile,
	})
}

func instanceName() string {
	if flagProvider != "" {
		return flagProvider
	}
	return cfg.DefaultProvider
}

// checkCLI verifies a vendor executable is reachable on PATH before a run,
// so a missing install fails with instructions instead of a spawn error.
func checkCLI(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s CLI not found in PATH\n\n"+
			"Install the vendor tool, or point the provider's 'executable' config at it.", name)
	}
	return nil
}
