// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Id identifies a catalog entry.
type Id int

const (
	// ScriptNotFoundId: the script path given at construction does not exist.
	ScriptNotFoundId Id = iota + 1
	// EngineNotAvailableId: no execution engine can handle the script.
	EngineNotAvailableId
	// ScriptExecutionFailedId: the script itself failed while running.
	ScriptExecutionFailedId
	// ConfigLoadFailedId: the configuration file could not be loaded.
	ConfigLoadFailedId
	// TracefileNotFoundId: no tracefile was found for batch execution.
	TracefileNotFoundId
	// TracefileParseErrorId: the tracefile exists but failed schema validation.
	TracefileParseErrorId
	// OutputMissingId: a declared output was not set by the script.
	OutputMissingId
)

type (
	// MarkdownMsg is markdown help text rendered for the terminal.
	MarkdownMsg string

	// Issue couples a stable id with rendered guidance.
	Issue struct {
		id    Id
		mdMsg MarkdownMsg
	}
)

// Id returns the catalog id.
func (i *Issue) Id() Id {
	return i.id
}

// MarkdownMsg returns the raw markdown guidance.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// Render renders the guidance markdown with the given glamour style name or
// path. An empty style falls back to auto-detection.
func (i *Issue) Render(stylePath string) (string, error) {
	if stylePath == "" {
		stylePath = "auto"
	}
	return render(string(i.mdMsg), stylePath)
}

var (
	render = glamour.Render

	scriptNotFoundIssue = &Issue{
		id: ScriptNotFoundId,
		mdMsg: `
# Script not found

The script path given to the runner does not reference an existing file.
Script paths are checked eagerly, before anything runs.

## Things to check
- The path is spelled correctly and is relative to where tracerun runs
- The file was not moved or deleted after you wrote the command`,
	}

	engineNotAvailableIssue = &Issue{
		id: EngineNotAvailableId,
		mdMsg: `
# No engine for this script

tracerun picks an execution engine from the script's file extension:
shell scripts run in the embedded shell interpreter, and ` + "`.js`" + ` files
run in the embedded JavaScript engine.

## Things to try
- Pass ` + "`--engine shell`" + ` or ` + "`--engine script`" + ` to force an engine
- Set ` + "`default_engine`" + ` in your config file`,
	}

	scriptExecutionFailedIssue = &Issue{
		id: ScriptExecutionFailedId,
		mdMsg: `
# Script execution failed

The script started but did not finish successfully. The error above comes
from the script itself, not from tracerun; declared outputs keep whatever
values they had before this run.`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Configuration could not be loaded

## Things to try
- Check the file for CUE syntax errors
- Compare field names against ` + "`tracerun config show`" + `
- Remove the file to fall back to defaults`,
	}

	tracefileNotFoundIssue = &Issue{
		id: TracefileNotFoundId,
		mdMsg: `
# No tracefile found

Batch execution reads run definitions from a ` + "`tracefile.cue`" + ` in the
current directory, or from the path given with ` + "`--file`" + `.`,
	}

	tracefileParseErrorIssue = &Issue{
		id: TracefileParseErrorId,
		mdMsg: `
# Tracefile failed validation

The tracefile exists but does not match the expected schema. Each run needs
at least a ` + "`script`" + ` field; ` + "`args`" + `, ` + "`outputs`" + `, ` + "`env`" + ` and
` + "`engine`" + ` are optional.`,
	}

	outputMissingIssue = &Issue{
		id: OutputMissingId,
		mdMsg: `
# Declared output was not produced

Every name declared as an output must be set as a variable by the script.
Check the spelling on both sides, or drop the declaration if the variable
is conditional.`,
	}

	catalog = map[Id]*Issue{
		ScriptNotFoundId:        scriptNotFoundIssue,
		EngineNotAvailableId:    engineNotAvailableIssue,
		ScriptExecutionFailedId: scriptExecutionFailedIssue,
		ConfigLoadFailedId:      configLoadFailedIssue,
		TracefileNotFoundId:     tracefileNotFoundIssue,
		TracefileParseErrorId:   tracefileParseErrorIssue,
		OutputMissingId:         outputMissingIssue,
	}
)

// Get returns the catalog entry for id, or nil when the id is unknown.
func Get(id Id) *Issue {
	return catalog[id]
}

// Ids returns all catalog ids in ascending order.
func Ids() []Id {
	ids := maps.Keys(catalog)
	slices.Sort(ids)
	return ids
}
