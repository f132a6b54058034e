package main

import (
	"github.com/spf13/cobra"

	"github.com/corintai/corint/internal/corintlog"
)

// rootFlags holds the persistent flags every subcommand inherits,
// mirroring the teacher's rootFlags{verbose, dryRun} split: process-wide
// knobs live here rather than duplicated on each subcommand.
type rootFlags struct {
	verbose  bool
	jsonLogs bool
}

// AppContext is the dependency bag each subcommand constructor closes
// over, in place of package-level globals. Logger is built lazily in
// PersistentPreRunE once flags are parsed, since the log level depends on
// --verbose.
type AppContext struct {
	flags  *rootFlags
	Logger *corintlog.Logger
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	app := &AppContext{flags: flags}

	cmd := &cobra.Command{
		Use:           "corint",
		Short:         "corint compiles and runs declarative decision rules, rulesets, and pipelines",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "info"
			if flags.verbose {
				level = "debug"
			}
			logger, err := corintlog.New(corintlog.Options{
				Level:         level,
				Layer:         "cli",
				Component:     "corint",
				HumanReadable: !flags.jsonLogs,
			})
			if err != nil {
				return err
			}
			app.Logger = logger
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug-level logging")
	cmd.PersistentFlags().BoolVar(&flags.jsonLogs, "json-logs", false, "emit structured JSON logs instead of human-readable text")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newCompileCmd(app))
	cmd.AddCommand(newValidateCmd(app))
	cmd.AddCommand(newRunCmd(app))
	cmd.AddCommand(newTraceCmd(app))
	cmd.AddCommand(newDashboardCmd(app))

	return cmd
}
