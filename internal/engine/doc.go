// SPDX-License-Identifier: MPL-2.0

// Package engine executes a script against an injected global namespace and
// returns the script's final namespace as a mapping.
//
// Two embedded engines are available:
//   - shell: runs POSIX shell scripts in the embedded mvdan/sh interpreter;
//     globals become shell variables and the final namespace is read back
//     from the interpreter's variable table
//   - script: runs JavaScript in the embedded goja engine; globals are set on
//     the VM and the final namespace is the set of global bindings the script
//     created or modified
//
// Both engines implement the Engine interface with Name(), Available(),
// Validate(), and Trace(). The contract is deliberately narrow: script path
// plus argv plus initial namespace in, final namespace out. Engines receive
// the effective environment explicitly and never touch the process
// environment table.
package engine
