// SPDX-License-Identifier: MPL-2.0

package tracer

import (
	"io"
	"maps"
	"strings"

	"tracerun-cli/internal/engine"
	"tracerun-cli/internal/envutil"

	"github.com/charmbracelet/log"
)

// Option configures a Runner at construction time.
type Option func(*Runner) error

// WithArgs sets the positional arguments passed to the script on every run.
func WithArgs(args ...string) Option {
	return func(r *Runner) error {
		r.args = append([]string(nil), args...)
		return nil
	}
}

// WithArgString sets positional arguments from a whitespace-separated string,
// for callers that carry the argument list as one flat value.
func WithArgString(args string) Option {
	return func(r *Runner) error {
		r.args = strings.Fields(args)
		return nil
	}
}

// WithOutputs declares the variable names to collect from the final namespace
// after each successful run.
func WithOutputs(names ...string) Option {
	return func(r *Runner) error {
		r.outputs = append([]string(nil), names...)
		return nil
	}
}

// WithGlobals sets the base global namespace injected before every run.
// Payload envelopes are unwrapped at run time.
func WithGlobals(globals map[string]any) Option {
	return func(r *Runner) error {
		r.globals = maps.Clone(globals)
		return nil
	}
}

// WithEnv sets runner-level environment variables, overriding config vars and
// dotenv files but not invocation vars.
func WithEnv(vars map[string]string) Option {
	return func(r *Runner) error {
		r.vars = maps.Clone(vars)
		return nil
	}
}

// WithEnvFiles sets dotenv files loaded in order before runner vars apply.
// Relative paths resolve against base; a '?' suffix marks a file optional.
func WithEnvFiles(base string, files ...string) Option {
	return func(r *Runner) error {
		r.envFileDir = base
		r.envFiles = append([]string(nil), files...)
		return nil
	}
}

// WithEnvInherit controls how much of the host environment runs start from.
func WithEnvInherit(mode envutil.InheritMode, allow ...string) Option {
	return func(r *Runner) error {
		if err := mode.Validate(); err != nil {
			return err
		}
		r.inherit = mode
		r.allow = append([]string(nil), allow...)
		return nil
	}
}

// WithConfigVars sets the lowest-priority user variable layer, typically
// sourced from the configuration file.
func WithConfigVars(vars map[string]string) Option {
	return func(r *Runner) error {
		r.configVars = maps.Clone(vars)
		return nil
	}
}

// WithProcessEnvOverlay makes each run additionally apply its user-level
// variables to the live process environment, restored when the run returns
// on any path. Off by default; the effective environment always reaches the
// engine explicitly either way.
func WithProcessEnvOverlay(enabled bool) Option {
	return func(r *Runner) error {
		r.overlayEnv = enabled
		return nil
	}
}

// WithEngine forces a specific engine instead of extension-based selection.
func WithEngine(name string) Option {
	return func(r *Runner) error {
		r.engineName = name
		return nil
	}
}

// WithDefaultEngine sets the fallback engine for scripts without a
// recognized extension. Empty keeps the built-in default.
func WithDefaultEngine(name string) Option {
	return func(r *Runner) error {
		if name == "" {
			return nil
		}
		registry, err := engine.NewRegistry(name)
		if err != nil {
			return err
		}
		r.registry = registry
		return nil
	}
}

// WithEngineFactory replaces engine selection with a custom factory, mainly
// for callers that bring their own engine implementation.
func WithEngineFactory(factory EngineFactory) Option {
	return func(r *Runner) error {
		r.engineFactory = factory
		return nil
	}
}

// WithWorkdir sets the working directory for script runs.
func WithWorkdir(dir string) Option {
	return func(r *Runner) error {
		r.workdir = dir
		return nil
	}
}

// WithHooks replaces the run lifecycle hooks.
func WithHooks(h Hooks) Option {
	return func(r *Runner) error {
		if h != nil {
			r.hooks = h
		}
		return nil
	}
}

// WithStdio sets the I/O streams for script runs. Nil streams keep the
// process defaults.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(r *Runner) error {
		r.stdin = stdin
		r.stdout = stdout
		r.stderr = stderr
		return nil
	}
}

// WithLogger replaces the Runner's logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Runner) error {
		if logger != nil {
			r.logger = logger
		}
		return nil
	}
}
