// SPDX-License-Identifier: MPL-2.0

// Package runcond declaratively skips tests whose environment requirements
// are not met.
//
// A Condition is a fixed set of requirement flags evaluated in order; the
// first unmet requirement skips the test with a reason naming it. Conditions
// carry no state and perform no error recovery: evaluation is a linear scan.
//
//	func TestNeedsShell(t *testing.T) {
//		runcond.RunIf(t, runcond.Condition{RequireExec: []string{"sh"}})
//		...
//	}
package runcond
