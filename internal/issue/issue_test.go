// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

// TestGet_KnownIds verifies every catalog id resolves to an entry with
// matching id and non-empty guidance.
func TestGet_KnownIds(t *testing.T) {
	t.Parallel()

	for _, id := range Ids() {
		entry := Get(id)
		if entry == nil {
			t.Errorf("Get(%d) = nil", id)
			continue
		}
		if entry.Id() != id {
			t.Errorf("Get(%d).Id() = %d", id, entry.Id())
		}
		if strings.TrimSpace(string(entry.MarkdownMsg())) == "" {
			t.Errorf("Get(%d) has empty guidance", id)
		}
	}
}

// TestGet_UnknownId verifies an unknown id yields nil rather than a panic.
func TestGet_UnknownId(t *testing.T) {
	t.Parallel()

	if got := Get(Id(9999)); got != nil {
		t.Errorf("Get(unknown) = %v, want nil", got)
	}
}

// TestActionableError_Message covers the concise and verbose renderings.
func TestActionableError_Message(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := NewErrorContext().
		WithOperation("run script").
		WithResource("a.sh").
		WithSuggestion("check the script").
		Wrap(cause).
		Build()

	if got := err.Error(); got != "failed to run script: a.sh: boom" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is() lost the cause")
	}
	if v := err.Verbose(); !strings.Contains(v, "check the script") {
		t.Errorf("Verbose() = %q, want suggestion included", v)
	}
}

// TestWrapWithOperation_NilPassthrough verifies the nil shortcut.
func TestWrapWithOperation_NilPassthrough(t *testing.T) {
	t.Parallel()

	if got := WrapWithOperation(nil, "anything"); got != nil {
		t.Errorf("WrapWithOperation(nil) = %v, want nil", got)
	}
}

// TestErrorContext_CarriesIssueId verifies WithIssue survives Build.
func TestErrorContext_CarriesIssueId(t *testing.T) {
	t.Parallel()

	err := NewErrorContext().
		WithOperation("load configuration").
		WithIssue(ConfigLoadFailedId).
		Wrap(errors.New("bad cue")).
		Build()

	if err.ID != ConfigLoadFailedId {
		t.Errorf("ID = %d, want %d", err.ID, ConfigLoadFailedId)
	}
}
