package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/corintai/corint/internal/analyzer"
	"github.com/corintai/corint/internal/cliconfig"
	"github.com/corintai/corint/internal/repository"
)

// newValidateCmd runs author-time diagnostics (E001-E007, W001-W003)
// across every rule, ruleset, and pipeline in a repository, without
// resolving imports or compiling — the cheap, fast check an author runs
// before committing a change, distinct from compile's single-file bytecode
// dump and run's full closure build.
func newValidateCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <repo-root>",
		Short: "Run structural diagnostics across a repository's rules, rulesets, and pipelines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]
			if err := (cliconfig.RunConfig{RegistryPath: root}).Validate(); err != nil {
				return err
			}

			repo := repository.NewFilesystemRepository(root)
			out := cmd.OutOrStdout()

			hasErrors := false

			ruleIDs, err := repo.ListRules()
			if err != nil {
				return fmt.Errorf("corint validate: list rules: %w", err)
			}
			sort.Strings(ruleIDs)
			for _, id := range ruleIDs {
				rule, _, err := repo.LoadRule(id)
				if err != nil {
					fmt.Fprintf(out, "rule %s: load error: %v\n", id, err)
					hasErrors = true
					continue
				}
				if printDiagnostics(out, "rule", id, analyzer.AnalyzeRule(rule)) {
					hasErrors = true
				}
			}

			rulesetIDs, err := repo.ListRulesets()
			if err != nil {
				return fmt.Errorf("corint validate: list rulesets: %w", err)
			}
			sort.Strings(rulesetIDs)
			for _, id := range rulesetIDs {
				rs, _, err := repo.LoadRuleset(id)
				if err != nil {
					fmt.Fprintf(out, "ruleset %s: load error: %v\n", id, err)
					hasErrors = true
					continue
				}
				if printDiagnostics(out, "ruleset", id, analyzer.AnalyzeRuleset(rs)) {
					hasErrors = true
				}
			}

			pipelineIDs, err := repo.ListPipelines()
			if err != nil {
				return fmt.Errorf("corint validate: list pipelines: %w", err)
			}
			sort.Strings(pipelineIDs)
			for _, id := range pipelineIDs {
				p, _, err := repo.LoadPipeline(id)
				if err != nil {
					fmt.Fprintf(out, "pipeline %s: load error: %v\n", id, err)
					hasErrors = true
					continue
				}
				if printDiagnostics(out, "pipeline", id, analyzer.AnalyzePipeline(p)) {
					hasErrors = true
				}
			}

			if hasErrors {
				return fmt.Errorf("corint validate: repository has structural errors")
			}
			fmt.Fprintln(out, "ok")
			return nil
		},
	}
	return cmd
}

func printDiagnostics(out io.Writer, kind, id string, res analyzer.Result) bool {
	for _, e := range res.Errors {
		fmt.Fprintf(out, "%s %s: error: %s\n", kind, id, e)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "%s %s: warning: %s\n", kind, id, w)
	}
	return res.HasErrors()
}
