package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/drover/internal/provider"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Manage provider instances",
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured provider instances",
	RunE: func(cmd *cobra.Command, args []string) error {
		names := make([]string, 0, len(cfg.Providers))
		for name := range cfg.Providers {
			names = append(names, name)
		}
		sort.Strings(names)

		bold := color.New(color.Bold)
		faint := color.New(color.Faint)
		for _, name := range names {
			pc := cfg.Providers[name]
			marker := " "
			if name == cfg.DefaultProvider {
				marker = "*"
			}
			bold.Printf("%s %s", marker, name)
			faint.Printf("  vendor=%s mode=%s", pc.Vendor, orDefault(pc.Mode, "cli"))
			if pc.Model != "" {
				faint.Printf(" model=%s", pc.Model)
			}
			fmt.Println()
		}
		return nil
	},
}

var providersTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connectivity of the selected provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := selectedProvider()
		if err != nil {
			return err
		}
		if err := p.TestConnection(cmd.Context()); err != nil {
			color.New(color.FgRed).Printf("✗ %s: %v\n", p.Name(), err)
			return fmt.Errorf("connection test failed")
		}
		color.New(color.FgGreen).Printf("✓ %s is reachable\n", p.Name())
		return nil
	},
}

var providersCapsCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "Show the vendor capability table",
	RunE: func(cmd *cobra.Command, args []string) error {
		bold := color.New(color.Bold)
		faint := color.New(color.Faint)
		for _, v := range provider.Vendors() {
			caps, _ := provider.CapabilitiesFor(v)
			modes := make([]string, len(caps.Modes))
			for i, m := range caps.Modes {
				modes[i] = string(m)
			}
			bold.Printf("%s", v)
			faint.Printf("  modes=%s sessions=%t\n", strings.Join(modes, ","), caps.SupportsSessions)
			for _, m := range caps.Models {
				faint.Printf("    %-32s $%.2f in / $%.2f out per MTok\n",
					m.Name, m.InputPerMTokUSD, m.OutputPerMTokUSD)
			}
		}
		return nil
	},
}

var providersUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Self-update the selected provider's CLI tool",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := selectedProvider()
		if err != nil {
			return err
		}
		if err := p.Update(cmd.Context()); err != nil {
			return err
		}
		color.New(color.FgGreen).Printf("✓ %s updated\n", p.Name())
		return nil
	},
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func init() {
	providersCmd.AddCommand(providersListCmd)
	providersCmd.AddCommand(providersTestCmd)
	providersCmd.AddCommand(providersCapsCmd)
	providersCmd.AddCommand(providersUpdateCmd)
}
