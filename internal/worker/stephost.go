// SPDX-License-Identifier: MPL-2.0

package worker

import (
	"github.com/jandreu1/azure-pipelines-agent/internal/container"
)

type (
	// StepHost is the execution target of one step. Implementations own
	// the translation from agent-host paths into the target's own
	// filesystem namespace.
	StepHost interface {
		// Name identifies the target kind in logs.
		Name() string
		// ResolvePath translates a host path into the target's path
		// space. Paths with no mapping come back unchanged.
		ResolvePath(hostPath string) string
	}

	// HostStepHost runs the step directly on the agent host. Paths need
	// no translation.
	HostStepHost struct{}

	// ContainerStepHost runs the step inside one of the job's running
	// containers.
	ContainerStepHost struct {
		// ContainerName is the engine-level container name or id.
		ContainerName string
		// Mounts maps host paths into the container namespace.
		Mounts *container.MountTable
		// WorkingDirectory is the in-container working directory.
		WorkingDirectory string
		// User is the uid or uid:gid the exec runs as, when set.
		User string
		// PrependPath receives the composed prepend segment. The
		// container invoker folds it into PATH inside the container,
		// where the container's own PATH is visible; a host-side value
		// would clobber it.
		PrependPath string
	}
)

// Name implements StepHost.
func (HostStepHost) Name() string { return "host" }

// ResolvePath implements StepHost. Host targets share the agent's
// filesystem, so the path is already in the right namespace.
func (HostStepHost) ResolvePath(hostPath string) string { return hostPath }

// Name implements StepHost.
func (h *ContainerStepHost) Name() string { return "container" }

// ResolvePath implements StepHost via the container's mount table.
func (h *ContainerStepHost) ResolvePath(hostPath string) string {
	if h.Mounts != nil {
		if translated, ok := h.Mounts.Resolve(hostPath); ok {
			return translated
		}
	}
	return hostPath
}
