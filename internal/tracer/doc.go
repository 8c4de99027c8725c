// SPDX-License-Identifier: MPL-2.0

// Package tracer runs scripts through an execution engine and collects the
// variables they leave behind.
//
// A Runner is bound to one script file at construction and can execute it any
// number of times. Each run receives a layered environment, an initial global
// namespace, and positional arguments; when the script finishes, the declared
// output names are looked up in the final namespace and wrapped in payload
// envelopes that later runs (or other runners) can consume.
package tracer
