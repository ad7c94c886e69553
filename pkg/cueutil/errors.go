// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
)

// PathError reformats a CUE evaluation error into one line per failure
// of the form "<file>: <json-path>: <message>". CUE reports field paths
// as flat string slices with numeric elements for list indices; those
// are rendered in the bracketed style users know from JSON tooling
// ("steps[2].target" rather than "steps.2.target").
func PathError(err error, file string) error {
	if err == nil {
		return nil
	}

	all := errors.Errors(err)
	if len(all) == 0 {
		return fmt.Errorf("%s: %w", file, err)
	}

	lines := make([]string, 0, len(all))
	for _, e := range all {
		p := jsonPath(errors.Path(e))
		msg := e.Error()
		// CUE sometimes repeats the path inside the message; drop it so
		// the line reads "path: message" exactly once.
		if p != "" {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, p), ":"))
			lines = append(lines, p+": "+msg)
			continue
		}
		lines = append(lines, msg)
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", file, lines[0])
	}
	return fmt.Errorf("%s: %d problems:\n  %s", file, len(lines), strings.Join(lines, "\n  "))
}

// jsonPath renders a CUE error path in JSON-path notation.
func jsonPath(parts []string) string {
	var b strings.Builder
	for i, part := range parts {
		if isIndex(part) && i > 0 {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteString(".")
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
