package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corintai/corint/internal/components"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			card := components.StatusCard(components.CardData{
				Title:       "corint",
				Description: "Declarative decision rules compiled to bytecode and executed per event",
				Icon:        "⚖",
				Metadata: map[string]string{
					"Version": version,
					"Commit":  commit,
					"Built":   date,
				},
			}, "info")
			fmt.Fprintln(cmd.OutOrStdout(), card.View())
			return nil
		},
	}
}
