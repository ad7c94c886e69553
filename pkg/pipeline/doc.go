// SPDX-License-Identifier: MPL-2.0

// Package pipeline defines the job data model the worker executes: the
// service endpoints, secure file references, variable store, container
// resources, and steps that one job delivers, plus the loader for JSON
// and YAML job definition files.
//
// The shapes mirror the orchestrator's wire format where one exists
// (endpoint authorization, {value, isSecret} variables) so captured job
// payloads can be replayed as local job files unchanged.
package pipeline
