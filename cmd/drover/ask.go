package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "One-shot question, plain text answer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := selectedProvider()
		if err != nil {
			return err
		}
		answer, err := p.RunOneShot(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(answer)
		return nil
	},
}
