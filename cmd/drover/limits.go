package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/drover/pkg/models"
)

var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Show usage limit state for the selected provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := selectedProvider()
		if err != nil {
			return err
		}
		lim, err := p.GetUsageLimits(cmd.Context())
		if err != nil {
			return err
		}

		if lim.Kind == models.LimitNone {
			color.New(color.FgGreen).Println("✓ no usage limit signals")
			if lim.Message != "" {
				color.New(color.Faint).Println(lim.Message)
			}
			return nil
		}

		warn := color.New(color.FgYellow, color.Bold)
		if lim.Exhausted() {
			warn = color.New(color.FgRed, color.Bold)
		}
		warn.Printf("%s limit\n", lim.Kind)
		if lim.Message != "" {
			fmt.Println(lim.Message)
		}
		if pct := lim.PercentUsed(); pct != nil {
			fmt.Printf("used: %d/%d (%d%%)\n", lim.Current, lim.Max, *pct)
		}
		if !lim.ResetsAt.IsZero() {
			fmt.Printf("resets: %s (in %s)\n",
				lim.ResetsAt.Format(time.Kitchen), time.Until(lim.ResetsAt).Round(time.Minute))
		}
		return nil
	},
}
