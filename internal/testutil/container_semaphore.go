// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"runtime"
	"strconv"
	"sync"
)

var (
	containerSemOnce sync.Once
	containerSem     chan struct{}
)

// ContainerSemaphore returns the process-wide slot pool shared by tests that
// talk to a container engine. Send to take a slot, receive to give it back:
//
//	sem := testutil.ContainerSemaphore()
//	sem <- struct{}{}
//	defer func() { <-sem }()
//
// Pool size comes from AGENT_WORKER_TEST_CONTAINER_PARALLEL when set to a
// positive integer, otherwise min(GOMAXPROCS, 2). Podman on small CI runners
// wedges rather than fails when too many engine operations run at once, so
// the default stays low.
func ContainerSemaphore() chan struct{} {
	containerSemOnce.Do(func() {
		containerSem = make(chan struct{}, containerSlots())
	})
	return containerSem
}

func containerSlots() int {
	if v := os.Getenv("AGENT_WORKER_TEST_CONTAINER_PARALLEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return min(runtime.GOMAXPROCS(0), 2)
}
