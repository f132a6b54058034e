package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/corintai/corint/internal/cliconfig"
	"github.com/corintai/corint/internal/engine"
	"github.com/corintai/corint/internal/externalapi"
	"github.com/corintai/corint/internal/feature"
	"github.com/corintai/corint/internal/listbackend"
	"github.com/corintai/corint/internal/llmprovider"
	"github.com/corintai/corint/internal/repository"
	"github.com/corintai/corint/internal/result"
	"github.com/corintai/corint/internal/value"
	"github.com/corintai/corint/internal/vm"
)

// runFlags is shared between run and trace: both build the same compiled
// program table and machine, and differ only in whether a result.Recorder
// is wired as the machine's Tracer.
type runFlags struct {
	registryPath string
	eventPath    string
	historyPath  string
	listsPath    string
	requestID    string
	timeoutMS    int
	expose       []string
}

func bindRunFlags(cmd *cobra.Command, f *runFlags) {
	cmd.Flags().StringVar(&f.registryPath, "registry", "", "repository root containing rules/, rulesets/, pipelines/, and registry.yaml")
	cmd.Flags().StringVar(&f.eventPath, "event", "", "path to a JSON event payload (defaults to stdin)")
	cmd.Flags().StringVar(&f.historyPath, "history", "", "path to a JSON event-history fixture backing CallFeature")
	cmd.Flags().StringVar(&f.listsPath, "lists", "", "path to a JSON named-lists fixture backing list references")
	cmd.Flags().StringVar(&f.requestID, "request-id", "", "request id recorded on the decision result")
	cmd.Flags().IntVar(&f.timeoutMS, "timeout-ms", 0, "execution deadline in milliseconds (0 = no deadline)")
	cmd.Flags().StringSliceVar(&f.expose, "expose", nil, "variable names to include in the decision result's context map")
	_ = cmd.MarkFlagRequired("registry")
}

func newRunCmd(app *AppContext) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compile a repository and decide one event against its registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecide(cmd, app, f, nil)
		},
	}
	bindRunFlags(cmd, f)
	return cmd
}

func newTraceCmd(app *AppContext) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Like run, but also prints the per-step execution trace",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec := result.NewRecorder()
			if err := runDecide(cmd, app, f, rec); err != nil {
				return err
			}
			return printTrace(cmd.OutOrStdout(), rec.Finish())
		},
	}
	bindRunFlags(cmd, f)
	return cmd
}

func runDecide(cmd *cobra.Command, app *AppContext, f *runFlags, tracer vm.Tracer) error {
	cfg := cliconfig.RunConfig{
		RegistryPath: f.registryPath,
		EventPath:    f.eventPath,
		RequestID:    f.requestID,
		TimeoutMS:    f.timeoutMS,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	repo := repository.NewFilesystemRepository(f.registryPath)
	build, err := engine.BuildFromRepository(repo)
	if err != nil {
		return fmt.Errorf("corint: build repository: %w", err)
	}

	table := engine.NewProgramTable()
	table.Reload(build.Programs, build.Pipelines)

	lists := listbackend.NewStore(f.listsPath)
	if err := lists.Load(); err != nil {
		return fmt.Errorf("corint: load lists: %w", err)
	}

	history, err := feature.NewEventHistoryStore(f.historyPath)
	if err != nil {
		return fmt.Errorf("corint: load event history: %w", err)
	}

	machine := &vm.Machine{
		Rulesets: table,
		Features: feature.NewExtractor(history),
		External: externalapi.NewClient(),
		Services: externalapi.NewMockServiceAdapter(),
		LLM:      &llmprovider.MockProvider{},
		Lists:    lists,
		Trace:    tracer,
	}

	event, err := readEvent(f.eventPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if d := cfg.Timeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	if app.Logger != nil {
		app.Logger.Info(ctx, "deciding event", "request_id", f.requestID)
	}

	dr, decErr := engine.Decide(ctx, machine, table, build.Registry, f.requestID, event, f.expose)
	if decErr != nil && dr == nil {
		return fmt.Errorf("corint: decide: %w", decErr)
	}

	return printDecision(cmd.OutOrStdout(), dr)
}

func readEvent(path string) (value.Value, error) {
	var data []byte
	var err error
	if path == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("corint: read event: %w", err)
	}

	var native map[string]interface{}
	if err := json.Unmarshal(data, &native); err != nil {
		return nil, fmt.Errorf("corint: parse event JSON: %w", err)
	}
	return value.FromNative(native), nil
}

func printDecision(out io.Writer, dr *result.DecisionResult) error {
	payload := map[string]interface{}{
		"request_id":      dr.RequestID,
		"pipeline_id":     dr.PipelineID,
		"score":           dr.Score,
		"signal":          dr.Signal,
		"actions":         dr.Actions,
		"triggered_rules": dr.TriggeredRules,
		"explanation":     dr.Explanation,
		"context":         dr.Context,
	}
	if dr.Err != nil {
		payload["error"] = dr.Err.Error()
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func printTrace(out io.Writer, trace result.ExecutionTrace) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(trace)
}
