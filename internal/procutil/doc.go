// SPDX-License-Identifier: MPL-2.0

// Package procutil enumerates and terminates descendant OS processes.
//
// Traced scripts are free to spawn their own child processes; at runner
// teardown any of them still alive are sent a termination signal, best-effort.
// The process tree walk and the signal delivery are backed by gopsutil, which
// abstracts the platform differences (SIGTERM on POSIX, TerminateProcess on
// Windows).
package procutil
