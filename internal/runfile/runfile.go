// SPDX-License-Identifier: MPL-2.0

package runfile

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// DefaultFileName is the tracefile looked up when no path is given.
const DefaultFileName = "tracefile.cue"

var (
	// ErrTracefileNotFound is the sentinel error wrapped by NotFoundError.
	ErrTracefileNotFound = errors.New("tracefile not found")
	// ErrTracefileParse is the sentinel error wrapped by ParseError.
	ErrTracefileParse = errors.New("tracefile parse failed")
	// ErrRunNotFound is returned when a named run does not exist.
	ErrRunNotFound = errors.New("run not defined in tracefile")
)

//go:embed tracefile_schema.cue
var tracefileSchema string

type (
	// NotFoundError is returned when the tracefile path does not reference a
	// readable file. It wraps ErrTracefileNotFound for errors.Is()
	// compatibility.
	NotFoundError struct {
		Path string
	}

	// ParseError is returned when the tracefile is not valid CUE or violates
	// the schema. It wraps ErrTracefileParse for errors.Is() compatibility.
	ParseError struct {
		Path  string
		Cause error
	}

	// EnvSpec declares the environment of one run.
	EnvSpec struct {
		Vars  map[string]string `json:"vars"`
		Files []string          `json:"files"`
	}

	// RunSpec declares one named script run.
	RunSpec struct {
		Script  string   `json:"script"`
		Args    []string `json:"args"`
		Outputs []string `json:"outputs"`
		Engine  string   `json:"engine"`
		Workdir string   `json:"workdir"`
		Env     EnvSpec  `json:"env"`
	}

	// Tracefile is a parsed run definition file. Dir is the directory the
	// file was loaded from; relative script and dotenv paths resolve
	// against it.
	Tracefile struct {
		Runs map[string]RunSpec `json:"runs"`
		Dir  string             `json:"-"`
	}
)

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tracefile not found: %s", e.Path)
}

// Unwrap returns ErrTracefileNotFound so callers can use errors.Is for
// programmatic detection.
func (e *NotFoundError) Unwrap() error { return ErrTracefileNotFound }

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse tracefile %s: %v", e.Path, e.Cause)
}

// Unwrap returns ErrTracefileParse so callers can use errors.Is for
// programmatic detection.
func (e *ParseError) Unwrap() error { return ErrTracefileParse }

// Load reads and validates a tracefile. The file's contents are unified with
// the embedded #Tracefile schema before decoding, so schema violations
// surface as a ParseError rather than as decode glitches later.
func Load(path string) (*Tracefile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &NotFoundError{Path: path}
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(tracefileSchema)
	if schemaValue.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile tracefile schema: %w", schemaValue.Err())
	}
	schemaRoot := schemaValue.LookupPath(cue.ParsePath("#Tracefile"))
	if schemaRoot.Err() != nil {
		return nil, fmt.Errorf("internal error: #Tracefile definition not found: %w", schemaRoot.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return nil, &ParseError{Path: path, Cause: userValue.Err()}
	}

	unified := schemaRoot.Unify(userValue)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, &ParseError{Path: path, Cause: err}
	}

	var tf Tracefile
	if err := unified.Decode(&tf); err != nil {
		return nil, &ParseError{Path: path, Cause: err}
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tracefile directory: %w", err)
	}
	tf.Dir = dir

	return &tf, nil
}

// Run returns the named run definition.
func (tf *Tracefile) Run(name string) (RunSpec, error) {
	spec, ok := tf.Runs[name]
	if !ok {
		return RunSpec{}, fmt.Errorf("%w: %q", ErrRunNotFound, name)
	}
	return spec, nil
}

// RunNames returns the defined run names in sorted order so batch execution
// is deterministic.
func (tf *Tracefile) RunNames() []string {
	names := make([]string, 0, len(tf.Runs))
	for name := range tf.Runs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ScriptPath resolves the run's script path against the tracefile directory.
func (tf *Tracefile) ScriptPath(spec RunSpec) string {
	if filepath.IsAbs(spec.Script) {
		return spec.Script
	}
	return filepath.Join(tf.Dir, spec.Script)
}
