// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"maps"

	"tracerun-cli/internal/issue"
	"tracerun-cli/internal/payload"
	"tracerun-cli/internal/runfile"
	"tracerun-cli/internal/tracer"

	"github.com/spf13/cobra"
)

var (
	batchFile    string
	batchFormat  string
	batchOverlay bool

	batchCmd = &cobra.Command{
		Use:   "batch [run...]",
		Short: "Run script definitions from a tracefile",
		Long: `Run named script definitions from a tracefile.cue file.

Without arguments every defined run executes in name order; naming runs
restricts and orders execution. Outputs collected from earlier runs are fed
into the globals of later runs under their output names, so runs compose
into a pipeline.`,
		RunE: executeBatch,
	}
)

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", runfile.DefaultFileName, "tracefile to load")
	batchCmd.Flags().StringVarP(&batchFormat, "format", "f", formatText, "output format: text, json, or yaml")
	batchCmd.Flags().BoolVar(&batchOverlay, "overlay-env", false, "also apply run variables to the process environment during each run")
}

// executeBatch is the RunE handler for the batch command.
func executeBatch(cmd *cobra.Command, args []string) error {
	if err := validateFormat(batchFormat); err != nil {
		return err
	}

	tf, err := runfile.Load(batchFile)
	if err != nil {
		return batchLoadError(err)
	}

	names := args
	if len(names) == 0 {
		names = tf.RunNames()
	}

	// Outputs accumulated so far, fed into later runs as globals.
	carried := make(map[string]any)

	for _, name := range names {
		spec, err := tf.Run(name)
		if err != nil {
			return issue.NewErrorContext().
				WithOperation("run batch").
				WithResource(batchFile).
				WithSuggestion(fmt.Sprintf("Defined runs: %v", tf.RunNames())).
				WithIssue(issue.TracefileParseErrorId).
				Wrap(err).
				BuildError()
		}

		if err := executeBatchRun(cmd, tf, name, spec, carried); err != nil {
			return err
		}
	}
	return nil
}

// executeBatchRun executes one named run and merges its outputs into carried.
func executeBatchRun(cmd *cobra.Command, tf *runfile.Tracefile, name string, spec runfile.RunSpec, carried map[string]any) error {
	scriptPath := tf.ScriptPath(spec)

	opts := []tracer.Option{
		tracer.WithArgs(spec.Args...),
		tracer.WithOutputs(spec.Outputs...),
		tracer.WithEnv(spec.Env.Vars),
		tracer.WithEnvFiles(tf.Dir, spec.Env.Files...),
		tracer.WithWorkdir(spec.Workdir),
		tracer.WithProcessEnvOverlay(batchOverlay),
	}
	opts = append(opts, configOptions()...)
	if spec.Engine != "" {
		opts = append(opts, tracer.WithEngine(spec.Engine))
	}

	r, err := tracer.New(scriptPath, opts...)
	if err != nil {
		return runConstructionError(err, scriptPath)
	}
	defer r.Close()

	if batchFormat == formatText {
		fmt.Fprintln(cmd.OutOrStdout(), TitleStyle.Render(name))
	}

	if _, err := r.Run(cmd.Context(), maps.Clone(carried)); err != nil {
		return runExecutionError(err, scriptPath)
	}

	outputs := r.Outputs()
	for outName, p := range outputs {
		carried[outName] = payload.Unwrap(p)
	}

	return printOutputs(cmd.OutOrStdout(), batchFormat, r.LastRunID(), r.OutputNames(), outputs)
}

// batchLoadError maps tracefile load failures to actionable errors.
func batchLoadError(err error) error {
	if errors.Is(err, runfile.ErrTracefileNotFound) {
		return issue.NewErrorContext().
			WithOperation("load tracefile").
			WithResource(batchFile).
			WithSuggestion("Create a tracefile.cue or point --file at one").
			WithIssue(issue.TracefileNotFoundId).
			Wrap(err).
			BuildError()
	}
	return issue.NewErrorContext().
		WithOperation("load tracefile").
		WithResource(batchFile).
		WithSuggestion("Check that the file contains valid CUE and matches the tracefile schema").
		WithIssue(issue.TracefileParseErrorId).
		Wrap(err).
		BuildError()
}
