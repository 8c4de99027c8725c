// SPDX-License-Identifier: MPL-2.0

// Package payload defines the envelope that marks a value as the product of a
// traced script execution, distinguishing it from a plain in-memory value.
// Envelopes round-trip: outputs collected from one run can be passed back
// into the next run's globals, where they are unwrapped to their underlying
// values before the script sees them.
package payload

// Payload wraps a value produced by a script execution. The Source field
// identifies the run that produced the value, so callers holding several
// payloads can tell executions apart.
type Payload struct {
	value any

	// Source is the identifier of the run that produced this value.
	// Empty for payloads created outside a run.
	Source string
}

// New creates a Payload wrapping the given value.
func New(value any) *Payload {
	return &Payload{value: value}
}

// NewFrom creates a Payload wrapping the given value, recording the
// identifier of the run that produced it.
func NewFrom(value any, source string) *Payload {
	return &Payload{value: value, Source: source}
}

// Value returns the wrapped value.
func (p *Payload) Value() any {
	if p == nil {
		return nil
	}
	return p.value
}

// Unwrap returns the underlying value when v is a Payload, and v itself
// otherwise.
func Unwrap(v any) any {
	if p, ok := v.(*Payload); ok {
		return p.Value()
	}
	return v
}

// UnwrapAll returns a copy of m with every Payload value replaced by its
// underlying value. The input map is not modified. A nil map yields an
// empty, non-nil map so callers can merge into the result directly.
func UnwrapAll(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Unwrap(v)
	}
	return out
}
