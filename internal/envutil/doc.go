// SPDX-License-Identifier: MPL-2.0

// Package envutil builds the effective environment for a traced script run.
//
// The environment is assembled from layered sources with a fixed precedence,
// lowest to highest:
//
//  1. Host environment (filtered by the inherit mode)
//  2. Configuration-level env vars
//  3. Runner-level dotenv files (loaded in declaration order)
//  4. Runner-level env vars
//  5. Invocation-level env vars (highest priority)
//
// The resulting map is handed to the execution engine directly; the process
// environment is never mutated unless a caller explicitly requests an Overlay,
// which returns a restore function that must run on every exit path.
package envutil
