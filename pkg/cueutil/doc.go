// SPDX-License-Identifier: MPL-2.0

// Package cueutil wraps the CUE evaluator with the one flow this
// repository needs: compile an embedded schema, unify a user document
// against a named definition, validate, and decode the result into Go.
//
// Typical use with an embedded schema:
//
//	//go:embed config_schema.cue
//	var schema []byte
//
//	cfg, err := cueutil.Decode[Config](schema, data, "#Config",
//		cueutil.WithFilename(path))
//
// Errors carry the offending file and a JSON-style path to the invalid
// field so they can be shown to users verbatim.
package cueutil
