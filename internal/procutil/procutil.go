// SPDX-License-Identifier: MPL-2.0

package procutil

import (
	"github.com/shirou/gopsutil/v4/process"
)

// CollectChildPIDs returns the process IDs of all transitive descendants of
// pid, breadth-first. Processes that disappear mid-walk are skipped; the
// returned slice reflects a snapshot, not a guarantee.
func CollectChildPIDs(pid int32) []int32 {
	var pids []int32

	queue := []int32{pid}
	seen := map[int32]bool{pid: true}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		proc, err := process.NewProcess(current)
		if err != nil {
			continue
		}
		children, err := proc.Children()
		if err != nil {
			continue
		}
		for _, child := range children {
			if seen[child.Pid] {
				continue
			}
			seen[child.Pid] = true
			pids = append(pids, child.Pid)
			queue = append(queue, child.Pid)
		}
	}

	return pids
}

// TerminateChildren sends a termination signal to every transitive descendant
// of pid. Delivery is best-effort and fire-and-forget: there is no wait for
// exit, no escalation to a forceful kill, and errors (such as a child that
// already exited) are ignored. It returns the number of processes signaled.
func TerminateChildren(pid int32) int {
	signaled := 0
	for _, childPID := range CollectChildPIDs(pid) {
		proc, err := process.NewProcess(childPID)
		if err != nil {
			continue
		}
		if err := proc.Terminate(); err != nil {
			continue
		}
		signaled++
	}
	return signaled
}
