// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"tracerun-cli/internal/engine"

	"github.com/spf13/cobra"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List execution engines",
	Long:  "List the embedded execution engines and whether they are available on this host.",
	RunE:  executeEngines,
}

// executeEngines is the RunE handler for the engines command.
func executeEngines(cmd *cobra.Command, _ []string) error {
	registry, err := engine.NewRegistry(defaultEngineName())
	if err != nil {
		return err
	}

	for _, name := range registry.Names() {
		eng, err := registry.Get(name)
		if err != nil {
			return err
		}
		status := SuccessStyle.Render("available")
		if !eng.Available() {
			status = ErrorStyle.Render("unavailable")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", NameStyle.Render(name), status)
	}
	return nil
}

// defaultEngineName returns the configured default engine name.
func defaultEngineName() string {
	if loadedConfig == nil {
		return ""
	}
	return string(loadedConfig.DefaultEngine)
}
