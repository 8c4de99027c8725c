// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"path/filepath"
	"testing"

	"tracerun-cli/internal/testutil"
)

// TestDefaultConfig verifies the built-in defaults validate.
func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if cfg.DefaultEngine != EngineShell {
		t.Errorf("DefaultEngine = %q, want %q", cfg.DefaultEngine, EngineShell)
	}
	if cfg.Env.Inherit != EnvInheritAll {
		t.Errorf("Env.Inherit = %q, want %q", cfg.Env.Inherit, EnvInheritAll)
	}
}

// TestEngineName_Validate exercises valid and invalid engine names.
func TestEngineName_Validate(t *testing.T) {
	t.Parallel()

	for _, n := range []EngineName{EngineShell, EngineScript} {
		if err := n.Validate(); err != nil {
			t.Errorf("Validate(%q) = %v, want nil", n, err)
		}
	}

	err := EngineName("python").Validate()
	if !errors.Is(err, ErrInvalidEngineName) {
		t.Errorf("Validate(python) = %v, want ErrInvalidEngineName", err)
	}
	var typed *InvalidEngineNameError
	if !errors.As(err, &typed) {
		t.Errorf("Validate(python) is not *InvalidEngineNameError")
	}
}

// TestEnvInheritMode_Validate exercises valid and invalid inherit modes.
func TestEnvInheritMode_Validate(t *testing.T) {
	t.Parallel()

	for _, m := range []EnvInheritMode{EnvInheritAll, EnvInheritNone, EnvInheritAllow} {
		if err := m.Validate(); err != nil {
			t.Errorf("Validate(%q) = %v, want nil", m, err)
		}
	}
	if err := EnvInheritMode("some").Validate(); !errors.Is(err, ErrInvalidEnvInheritMode) {
		t.Errorf("Validate(some) = %v, want ErrInvalidEnvInheritMode", err)
	}
}

// TestLoad_MissingFileUsesDefaults verifies defaults apply when no config
// file exists in the config directory.
func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	testutil.MustChdir(t, dir)

	p := &FileProvider{Options: LoadOptions{ConfigDirPath: dir}}
	cfg, path, err := p.Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want empty", path)
	}
	if cfg.DefaultEngine != EngineShell {
		t.Errorf("DefaultEngine = %q, want %q", cfg.DefaultEngine, EngineShell)
	}
}

// TestLoad_ValidCUEFile verifies a valid config.cue is merged over defaults.
func TestLoad_ValidCUEFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	testutil.MustWriteFile(t, cfgPath, `
default_engine: "script"
env: {
	inherit: "allow"
	allow: ["PATH", "HOME"]
	vars: GREETING: "hello"
}
ui: verbose: true
`)

	p := &FileProvider{Options: LoadOptions{ConfigDirPath: dir}}
	cfg, path, err := p.Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if path != cfgPath {
		t.Errorf("resolved path = %q, want %q", path, cfgPath)
	}
	if cfg.DefaultEngine != EngineScript {
		t.Errorf("DefaultEngine = %q, want %q", cfg.DefaultEngine, EngineScript)
	}
	if cfg.Env.Inherit != EnvInheritAllow {
		t.Errorf("Env.Inherit = %q, want %q", cfg.Env.Inherit, EnvInheritAllow)
	}
	if len(cfg.Env.Allow) != 2 || cfg.Env.Allow[0] != "PATH" {
		t.Errorf("Env.Allow = %v", cfg.Env.Allow)
	}
	if cfg.Env.Vars["GREETING"] != "hello" {
		t.Errorf("Env.Vars = %v", cfg.Env.Vars)
	}
	if !cfg.UI.Verbose {
		t.Error("UI.Verbose = false, want true")
	}
}

// TestLoad_SchemaViolation verifies a value outside the schema is rejected.
func TestLoad_SchemaViolation(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	testutil.MustWriteFile(t, cfgPath, `default_engine: "python"`)

	p := &FileProvider{Options: LoadOptions{ConfigDirPath: dir}}
	if _, _, err := p.Load(); err == nil {
		t.Fatal("Load() = nil error, want schema violation")
	}
}

// TestLoad_InvalidCUESyntax verifies malformed CUE is rejected with context.
func TestLoad_InvalidCUESyntax(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	testutil.MustWriteFile(t, cfgPath, `default_engine: {{{`)

	p := &FileProvider{Options: LoadOptions{ConfigDirPath: dir}}
	if _, _, err := p.Load(); err == nil {
		t.Fatal("Load() = nil error, want parse error")
	}
}

// TestLoad_ExplicitMissingFileFails verifies an explicit path must exist.
func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	t.Parallel()

	p := &FileProvider{Options: LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue"),
	}}
	if _, _, err := p.Load(); err == nil {
		t.Fatal("Load() = nil error, want not-found error")
	}
}

// TestLoad_ExplicitFile verifies an explicit path wins over the config dir.
func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	dirCfg := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	testutil.MustWriteFile(t, dirCfg, `default_engine: "shell"`)
	explicit := filepath.Join(dir, "other.cue")
	testutil.MustWriteFile(t, explicit, `default_engine: "script"`)

	p := &FileProvider{Options: LoadOptions{
		ConfigFilePath: explicit,
		ConfigDirPath:  dir,
	}}
	cfg, path, err := p.Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if path != explicit {
		t.Errorf("resolved path = %q, want %q", path, explicit)
	}
	if cfg.DefaultEngine != EngineScript {
		t.Errorf("DefaultEngine = %q, want %q", cfg.DefaultEngine, EngineScript)
	}
}
