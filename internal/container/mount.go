// SPDX-License-Identifier: MPL-2.0

package container

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrInvalidHostPath is the sentinel error wrapped by InvalidHostPathError.
	ErrInvalidHostPath = errors.New("invalid host path")

	// ErrInvalidContainerPath is the sentinel error wrapped by InvalidContainerPathError.
	ErrInvalidContainerPath = errors.New("invalid container path")

	// ErrInvalidMountSpec is the sentinel error wrapped by InvalidMountSpecError.
	ErrInvalidMountSpec = errors.New("invalid mount spec")
)

type (
	// HostPath is a filesystem path on the worker host side of a mount.
	// Valid when non-empty, not whitespace-only, and absolute.
	HostPath string

	// InvalidHostPathError reports a HostPath that fails validation.
	InvalidHostPathError struct {
		Value HostPath
	}

	// ContainerPath is a filesystem path on the container side of a
	// mount. Valid when non-empty, not whitespace-only, and absolute in
	// slash form (containers run Linux regardless of the host).
	ContainerPath string

	// InvalidContainerPathError reports a ContainerPath that fails validation.
	InvalidContainerPathError struct {
		Value ContainerPath
	}

	// VolumeMount is one host-to-container bind mount.
	VolumeMount struct {
		HostPath      HostPath
		ContainerPath ContainerPath
		ReadOnly      bool
	}

	// InvalidMountSpecError reports a mount spec string that does not
	// parse or whose fields fail validation.
	InvalidMountSpecError struct {
		Spec      string
		FieldErrs []error
	}

	// MountTable is a container's mounts, ordered for longest-prefix
	// host path resolution.
	MountTable struct {
		mounts []VolumeMount
	}
)

func (e *InvalidHostPathError) Error() string {
	return fmt.Sprintf("invalid host path %q: must be a non-empty absolute path", string(e.Value))
}

func (e *InvalidHostPathError) Unwrap() error { return ErrInvalidHostPath }

func (e *InvalidContainerPathError) Error() string {
	return fmt.Sprintf("invalid container path %q: must be a non-empty absolute slash path", string(e.Value))
}

func (e *InvalidContainerPathError) Unwrap() error { return ErrInvalidContainerPath }

func (e *InvalidMountSpecError) Error() string {
	return fmt.Sprintf("invalid mount spec %q", e.Spec)
}

func (e *InvalidMountSpecError) Unwrap() error { return ErrInvalidMountSpec }

// Validate checks the path is non-empty, not whitespace, and absolute.
func (p HostPath) Validate() error {
	s := string(p)
	if strings.TrimSpace(s) == "" || !filepath.IsAbs(s) {
		return &InvalidHostPathError{Value: p}
	}
	return nil
}

func (p HostPath) String() string { return string(p) }

// Validate checks the path is non-empty, not whitespace, and starts
// with a slash.
func (p ContainerPath) Validate() error {
	s := string(p)
	if strings.TrimSpace(s) == "" || !strings.HasPrefix(s, "/") {
		return &InvalidContainerPathError{Value: p}
	}
	return nil
}

func (p ContainerPath) String() string { return string(p) }

// Validate checks both sides of the mount.
func (m VolumeMount) Validate() error {
	var errs []error
	if err := m.HostPath.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := m.ContainerPath.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidMountSpecError{Spec: m.String(), FieldErrs: errs}
	}
	return nil
}

// String renders the mount in "host:container[:ro]" spec form.
func (m VolumeMount) String() string {
	s := string(m.HostPath) + ":" + string(m.ContainerPath)
	if m.ReadOnly {
		s += ":ro"
	}
	return s
}

// ParseMount parses a "host:container[:ro]" spec. Windows host paths
// with drive letters ("C:\work:/data") parse correctly because the
// container side is identified from the end.
func ParseMount(spec string) (VolumeMount, error) {
	parts := strings.Split(spec, ":")

	var m VolumeMount
	if len(parts) > 1 && (parts[len(parts)-1] == "ro" || parts[len(parts)-1] == "rw") {
		m.ReadOnly = parts[len(parts)-1] == "ro"
		parts = parts[:len(parts)-1]
	}
	switch len(parts) {
	case 2:
		m.HostPath = HostPath(parts[0])
		m.ContainerPath = ContainerPath(parts[1])
	case 3:
		// Drive-lettered host path split into two pieces; rejoin.
		m.HostPath = HostPath(parts[0] + ":" + parts[1])
		m.ContainerPath = ContainerPath(parts[2])
	default:
		return VolumeMount{}, &InvalidMountSpecError{Spec: spec}
	}

	if err := m.Validate(); err != nil {
		return VolumeMount{}, err
	}
	return m, nil
}

// NewMountTable parses and validates a container's mount specs.
func NewMountTable(specs []string) (*MountTable, error) {
	t := &MountTable{mounts: make([]VolumeMount, 0, len(specs))}
	for _, spec := range specs {
		m, err := ParseMount(spec)
		if err != nil {
			return nil, err
		}
		t.mounts = append(t.mounts, m)
	}
	// Longest host prefix first, so nested mounts win over their parents.
	sort.SliceStable(t.mounts, func(i, j int) bool {
		return len(t.mounts[i].HostPath) > len(t.mounts[j].HostPath)
	})
	return t, nil
}

// Mounts returns a copy of the table's mounts in resolution order.
func (t *MountTable) Mounts() []VolumeMount {
	out := make([]VolumeMount, len(t.mounts))
	copy(out, t.mounts)
	return out
}

// Resolve maps a host path into the container's filesystem using the
// mount whose host side is the longest path-boundary prefix of the
// input. The second return is false when no mount covers the path.
func (t *MountTable) Resolve(hostPath string) (string, bool) {
	if hostPath == "" {
		return "", false
	}
	cleaned := filepath.Clean(hostPath)
	for _, m := range t.mounts {
		root := filepath.Clean(string(m.HostPath))
		rel, err := filepath.Rel(root, cleaned)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if rel == "." {
			return string(m.ContainerPath), true
		}
		return path.Join(string(m.ContainerPath), filepath.ToSlash(rel)), true
	}
	return "", false
}
