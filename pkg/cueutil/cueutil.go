// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// MaxDocumentSize is the default size cap for user-supplied CUE
// documents. Parsing is memory-hungry, so oversized files are rejected
// before they reach the evaluator.
const MaxDocumentSize int64 = 5 * 1024 * 1024

type (
	// decodeOptions holds knobs shared by Decode and DecodeMap.
	decodeOptions struct {
		filename string
		sizeCap  int64
		concrete bool
	}

	// Option adjusts how a document is validated and decoded.
	Option func(*decodeOptions)
)

// WithFilename sets the file name used in error messages. Defaults to
// "<input>" when the document did not come from a file.
func WithFilename(name string) Option {
	return func(o *decodeOptions) { o.filename = name }
}

// WithSizeCap overrides MaxDocumentSize for this call.
func WithSizeCap(n int64) Option {
	return func(o *decodeOptions) { o.sizeCap = n }
}

// WithConcrete controls whether validation demands concrete values.
// Defaults to true; pass false for documents where optional fields may
// stay unset.
func WithConcrete(concrete bool) Option {
	return func(o *decodeOptions) { o.concrete = concrete }
}

// Decode validates data against the definition named by root inside
// schema and decodes the unified value into T.
func Decode[T any](schema, data []byte, root string, opts ...Option) (*T, error) {
	unified, err := unify(schema, data, root, opts...)
	if err != nil {
		return nil, err
	}
	var out T
	if err := unified.value.Decode(&out); err != nil {
		return nil, PathError(err, unified.filename)
	}
	return &out, nil
}

// DecodeMap is Decode for callers that merge the document into another
// configuration layer (viper) instead of a struct. Validation uses
// Concrete(false) unless overridden, since layered configs are partial
// by nature.
func DecodeMap(schema, data []byte, root string, opts ...Option) (map[string]any, error) {
	opts = append([]Option{WithConcrete(false)}, opts...)
	unified, err := unify(schema, data, root, opts...)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := unified.value.Decode(&out); err != nil {
		return nil, PathError(err, unified.filename)
	}
	return out, nil
}

// unified carries the validated CUE value together with the resolved
// display name of its source.
type unified struct {
	value    cue.Value
	filename string
}

func unify(schema, data []byte, root string, opts ...Option) (*unified, error) {
	o := decodeOptions{sizeCap: MaxDocumentSize, concrete: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.filename == "" {
		o.filename = "<input>"
	}
	if int64(len(data)) > o.sizeCap {
		return nil, fmt.Errorf("%s: document is %d bytes, limit is %d", o.filename, len(data), o.sizeCap)
	}

	ctx := cuecontext.New()

	schemaVal := ctx.CompileBytes(schema)
	if schemaVal.Err() != nil {
		return nil, fmt.Errorf("internal error: schema does not compile: %w", schemaVal.Err())
	}
	def := schemaVal.LookupPath(cue.ParsePath(root))
	if def.Err() != nil {
		return nil, fmt.Errorf("internal error: schema has no definition %s: %w", root, def.Err())
	}

	doc := ctx.CompileBytes(data, cue.Filename(o.filename))
	if doc.Err() != nil {
		return nil, PathError(doc.Err(), o.filename)
	}

	v := def.Unify(doc)
	if err := v.Validate(cue.Concrete(o.concrete)); err != nil {
		return nil, PathError(err, o.filename)
	}
	return &unified{value: v, filename: o.filename}, nil
}
