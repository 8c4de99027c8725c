// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"tracerun-cli/internal/config"
	"tracerun-cli/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// loadedConfig holds the configuration resolved by initRootConfig.
	loadedConfig *config.Config

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "tracerun",
		Short: "Run scripts and collect the variables they leave behind",
		Long: TitleStyle.Render("tracerun") + SubtitleStyle.Render(" - Run scripts and collect the variables they leave behind") + `

tracerun executes shell and JavaScript scripts through embedded engines,
injects an initial set of global variables, and captures declared output
variables from the script's final namespace when it finishes.

Outputs are printed per run and can feed the globals of later runs, so
scripts compose into small pipelines without temp files or ad-hoc parsing.

` + SubtitleStyle.Render("Examples:") + `
  tracerun run build.sh                     Run a shell script
  tracerun run calc.js -o total             Run and collect the 'total' variable
  tracerun run env.sh --env-var MODE=fast   Run with an extra variable
  tracerun batch                            Run everything in tracefile.cue
  tracerun engines                          List available engines`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/tracerun/config.cue)")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(enginesCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// initRootConfig reads in config file and ENV variables if set.
func initRootConfig() {
	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	// Apply verbose from config if not set via flag
	if !verbose {
		verbose = cfg.UI.Verbose
	}
	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	loadedConfig = cfg
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// include their suggestions and rendered catalog guidance in verbose mode.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		return err.Error()
	}
	if !verboseMode {
		return ae.Error()
	}

	msg := ae.Verbose()
	if entry := issue.Get(ae.ID); entry != nil {
		if rendered, renderErr := entry.Render(colorScheme()); renderErr == nil {
			msg += "\n" + rendered
		}
	}
	return msg
}

// colorScheme returns the configured glamour style for rendered guidance.
func colorScheme() string {
	if loadedConfig == nil {
		return ""
	}
	return loadedConfig.UI.ColorScheme
}
