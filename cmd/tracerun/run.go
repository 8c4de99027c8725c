// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"tracerun-cli/internal/engine"
	"tracerun-cli/internal/envutil"
	"tracerun-cli/internal/issue"
	"tracerun-cli/internal/tracer"

	"github.com/spf13/cobra"
)

var (
	runOutputs    []string
	runEnvVars    []string
	runEnvFiles   []string
	runEngine     string
	runWorkdir    string
	runFormat     string
	runOverlayEnv bool

	runCmd = &cobra.Command{
		Use:   "run <script> [args...]",
		Short: "Run a script and collect declared outputs",
		Long: `Run a script through an execution engine and collect declared output
variables from its final namespace.

The engine is selected by file extension (.sh/.bash use the shell engine,
.js/.mjs the JavaScript engine) unless --engine forces one. Environment
variables layer in order: host env, config vars, --env-file files, then
--env-var values, with later layers winning.`,
		Args: cobra.MinimumNArgs(1),
		RunE: executeRun,
	}
)

func init() {
	runCmd.Flags().StringArrayVarP(&runOutputs, "output", "o", nil, "variable name to collect after the run (repeatable)")
	runCmd.Flags().StringArrayVar(&runEnvVars, "env-var", nil, "KEY=VALUE environment variable for this run (repeatable)")
	runCmd.Flags().StringArrayVar(&runEnvFiles, "env-file", nil, "dotenv file loaded before --env-var values (repeatable)")
	runCmd.Flags().StringVar(&runEngine, "engine", "", "engine override: shell or script (default: by extension)")
	runCmd.Flags().StringVar(&runWorkdir, "workdir", "", "working directory for the run")
	runCmd.Flags().StringVarP(&runFormat, "format", "f", formatText, "output format: text, json, or yaml")
	runCmd.Flags().BoolVar(&runOverlayEnv, "overlay-env", false, "also apply run variables to the process environment during the run")
}

// executeRun is the RunE handler for the run command.
func executeRun(cmd *cobra.Command, args []string) error {
	if err := validateFormat(runFormat); err != nil {
		return err
	}

	vars, err := parseKeyValues(runEnvVars)
	if err != nil {
		return err
	}

	scriptPath := args[0]
	opts := []tracer.Option{
		tracer.WithArgs(args[1:]...),
		tracer.WithOutputs(runOutputs...),
		tracer.WithEnv(vars),
		tracer.WithEnvFiles("", runEnvFiles...),
		tracer.WithWorkdir(runWorkdir),
		tracer.WithProcessEnvOverlay(runOverlayEnv),
	}
	opts = append(opts, configOptions()...)
	if runEngine != "" {
		opts = append(opts, tracer.WithEngine(runEngine))
	}

	r, err := tracer.New(scriptPath, opts...)
	if err != nil {
		return runConstructionError(err, scriptPath)
	}
	defer r.Close()

	if _, err := r.Run(cmd.Context(), nil); err != nil {
		return runExecutionError(err, scriptPath)
	}

	return printOutputs(cmd.OutOrStdout(), runFormat, r.LastRunID(), r.OutputNames(), r.Outputs())
}

// configOptions translates the loaded configuration into tracer options.
func configOptions() []tracer.Option {
	cfg := loadedConfig
	if cfg == nil {
		return nil
	}
	return []tracer.Option{
		tracer.WithEnvInherit(envutil.InheritMode(cfg.Env.Inherit), cfg.Env.Allow...),
		tracer.WithConfigVars(cfg.Env.Vars),
		tracer.WithDefaultEngine(string(cfg.DefaultEngine)),
	}
}

// runConstructionError maps runner construction failures to actionable errors.
func runConstructionError(err error, scriptPath string) error {
	if errors.Is(err, tracer.ErrScriptNotFound) {
		return issue.NewErrorContext().
			WithOperation("run script").
			WithResource(scriptPath).
			WithSuggestion("Check that the script path is spelled correctly").
			WithSuggestion("Paths are resolved relative to the current directory").
			WithIssue(issue.ScriptNotFoundId).
			Wrap(err).
			BuildError()
	}
	if errors.Is(err, engine.ErrUnknownEngine) {
		return issue.NewErrorContext().
			WithOperation("run script").
			WithResource(scriptPath).
			WithSuggestion("Valid engines: shell, script").
			WithIssue(issue.EngineNotAvailableId).
			Wrap(err).
			BuildError()
	}
	return err
}

// runExecutionError maps run failures to actionable errors, preserving the
// script's exit status for the process exit code.
func runExecutionError(err error, scriptPath string) error {
	var exitErr *engine.ScriptExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.Code, Err: err}
	}
	if errors.Is(err, tracer.ErrOutputMissing) {
		return issue.NewErrorContext().
			WithOperation("collect outputs").
			WithResource(scriptPath).
			WithSuggestion("Make sure the script assigns every variable named with --output").
			WithIssue(issue.OutputMissingId).
			Wrap(err).
			BuildError()
	}
	return issue.NewErrorContext().
		WithOperation("run script").
		WithResource(scriptPath).
		WithIssue(issue.ScriptExecutionFailedId).
		Wrap(err).
		BuildError()
}

// parseKeyValues parses repeated KEY=VALUE flag values into a map.
func parseKeyValues(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --env-var %q (expected KEY=VALUE)", pair)
		}
		vars[key] = value
	}
	return vars, nil
}
