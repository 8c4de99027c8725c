// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error context and a catalog of known
// failure modes with rendered guidance.
//
// ActionableError carries what was attempted, which resource was involved,
// and suggestions for fixing the problem; the CLI layer decides how much of
// that to show based on verbosity. The catalog maps stable issue ids to
// markdown help text rendered with glamour.
package issue
