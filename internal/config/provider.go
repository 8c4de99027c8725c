// SPDX-License-Identifier: MPL-2.0

package config

type (
	// LoadOptions controls config resolution without package-level state.
	LoadOptions struct {
		// ConfigFilePath forces loading an explicit file. A missing explicit
		// file is an error.
		ConfigFilePath string
		// ConfigDirPath overrides the platform config directory lookup.
		ConfigDirPath string
	}

	// Provider resolves configuration for callers that want injectable
	// loading instead of the package-level Load.
	Provider interface {
		// Load resolves the configuration and the path of the file it came
		// from. The path is empty when defaults applied.
		Load() (*Config, string, error)
	}

	// FileProvider is the standard Provider backed by the filesystem.
	FileProvider struct {
		// Options controls resolution.
		Options LoadOptions
	}
)

// Load implements Provider.
func (p *FileProvider) Load() (*Config, string, error) {
	return loadWithOptions(p.Options)
}
