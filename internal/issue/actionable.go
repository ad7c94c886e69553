// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError carries the context a user needs to act on a
	// failure: what was attempted, against which resource, and what to
	// try next. Construct directly for simple cases or through Context
	// when the pieces accumulate across a function:
	//
	//	return issue.NewContext().
	//		Operation("load job definition").
	//		Resource(path).
	//		Suggest("Run 'agent-worker env' to check the file").
	//		Cause(err).
	//		Err()
	ActionableError struct {
		// Operation is the verb phrase that failed ("load job definition").
		Operation string

		// Resource is the file, path, or entity involved. Optional.
		Resource string

		// Suggestions are user-facing fix hints. Optional.
		Suggestions []string

		// Cause is the wrapped underlying error. Optional.
		Cause error
	}

	// Context accumulates ActionableError fields through a fluent API.
	Context struct {
		err ActionableError
	}
)

// NewContext returns an empty builder.
func NewContext() *Context {
	return &Context{}
}

// Wrap attaches operation context to err. Returns nil when err is nil
// so it can wrap returns unconditionally.
func Wrap(err error, operation string) *ActionableError {
	if err == nil {
		return nil
	}
	return &ActionableError{Operation: operation, Cause: err}
}

// WrapResource is Wrap with the involved resource attached.
func WrapResource(err error, operation, resource string) *ActionableError {
	if err == nil {
		return nil
	}
	return &ActionableError{Operation: operation, Resource: resource, Cause: err}
}

// Error returns the one-line form: "failed to <operation>[: <resource>][: <cause>]".
func (e *ActionableError) Error() string {
	var b strings.Builder
	b.WriteString("failed to ")
	b.WriteString(e.Operation)
	if e.Resource != "" {
		b.WriteString(": ")
		b.WriteString(e.Resource)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format renders the error for terminal output: the one-line message,
// bulleted suggestions, and in verbose mode the numbered cause chain.
func (e *ActionableError) Format(verbose bool) string {
	var b strings.Builder
	b.WriteString(e.Error())

	for _, s := range e.Suggestions {
		b.WriteString("\n  • ")
		b.WriteString(s)
	}

	if verbose && e.Cause != nil {
		b.WriteString("\n\nCause chain:")
		for i, err := 1, e.Cause; err != nil; i, err = i+1, errors.Unwrap(err) {
			fmt.Fprintf(&b, "\n  %d. %s", i, err.Error())
		}
	}

	return b.String()
}

// Operation sets the failed verb phrase. Required; Err returns nil
// without it.
func (c *Context) Operation(op string) *Context {
	c.err.Operation = op
	return c
}

// Resource sets the involved file, path, or entity.
func (c *Context) Resource(res string) *Context {
	c.err.Resource = res
	return c
}

// Suggest appends one fix hint. May be called repeatedly.
func (c *Context) Suggest(hints ...string) *Context {
	c.err.Suggestions = append(c.err.Suggestions, hints...)
	return c
}

// Cause records the wrapped underlying error.
func (c *Context) Cause(err error) *Context {
	c.err.Cause = err
	return c
}

// Build returns the accumulated ActionableError, or nil when no
// operation was set.
func (c *Context) Build() *ActionableError {
	if c.err.Operation == "" {
		return nil
	}
	out := c.err
	return &out
}

// Err returns Build as a plain error for use in return statements.
func (c *Context) Err() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}
