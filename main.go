// SPDX-License-Identifier: MPL-2.0

// tracerun executes scripts through embedded engines and collects declared
// output variables from their final namespace.
package main

import cmd "tracerun-cli/cmd/tracerun"

func main() {
	cmd.Execute()
}
