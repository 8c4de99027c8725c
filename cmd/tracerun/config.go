// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"tracerun-cli/internal/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect the tracerun configuration",
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE:  executeConfigShow,
	}

	configPathCmd = &cobra.Command{
		Use:   "path",
		Short: "Show the configuration directory",
		RunE:  executeConfigPath,
	}
)

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}

// executeConfigShow is the RunE handler for config show.
func executeConfigShow(cmd *cobra.Command, _ []string) error {
	cfg := loadedConfig
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	shape := map[string]any{
		"default_engine": string(cfg.DefaultEngine),
		"env": map[string]any{
			"inherit": string(cfg.Env.Inherit),
			"allow":   cfg.Env.Allow,
			"vars":    cfg.Env.Vars,
		},
		"ui": map[string]any{
			"verbose":      cfg.UI.Verbose,
			"color_scheme": cfg.UI.ColorScheme,
		},
	}
	return yaml.NewEncoder(cmd.OutOrStdout()).Encode(shape)
}

// executeConfigPath is the RunE handler for config path.
func executeConfigPath(cmd *cobra.Command, _ []string) error {
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), dir)
	return nil
}
