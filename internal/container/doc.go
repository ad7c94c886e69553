// SPDX-License-Identifier: MPL-2.0

// Package container gives the worker its view of a container engine:
// detecting docker or podman, checking that a job's container is
// running, building the exec invocation that runs a step inside it,
// and translating host paths into a container's filesystem through its
// volume-mount table.
//
// The worker never creates or destroys containers; jobs arrive with
// their containers already running, and everything here operates on
// that assumption.
package container
