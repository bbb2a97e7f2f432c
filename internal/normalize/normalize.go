// Package normalize turns backend response bodies of uncertain shape into
// canonical sequences or values. It never fails: an unrecognised body
// degrades to an empty result.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Shape is the envelope an endpoint declares. Implemented by Sequence,
// Wrapped and Object only.
type Shape interface {
	fmt.Stringer
	sealed()
}

// Sequence is a bare JSON array body.
type Sequence struct{}

// Wrapped is an object whose Field holds the array.
type Wrapped struct {
	Field string
}

// Object is a single JSON object body.
type Object struct{}

func (Sequence) sealed() {}
func (Wrapped) sealed()  {}
func (Object) sealed()   {}

func (Sequence) String() string  { return "sequence" }
func (w Wrapped) String() string { return "wrapped(" + w.Field + ")" }
func (Object) String() string    { return "object" }

// Outcome records which normalization rule produced the result.
type Outcome int

const (
	// Direct means the body itself was used.
	Direct Outcome = iota
	// Unwrapped means the declared field was used.
	Unwrapped
	// Fallback means the body was not recognised and an empty result was returned.
	Fallback
)

func (o Outcome) String() string {
	switch o {
	case Direct:
		return "direct"
	case Unwrapped:
		return "unwrapped"
	default:
		return "fallback"
	}
}

// Records normalizes raw into a slice of T. Precedence: a bare array is
// returned as is; otherwise, for a Wrapped shape, the declared field when it
// holds an array; otherwise an empty slice. The result is never nil.
func Records[T any](raw json.RawMessage, shape Shape) ([]T, Outcome) {
	if items, ok := decodeArray[T](raw); ok {
		return items, Direct
	}

	if w, ok := shape.(Wrapped); ok && w.Field != "" {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(raw, &envelope); err == nil {
			if field, found := envelope[w.Field]; found {
				if items, ok := decodeArray[T](field); ok {
					return items, Unwrapped
				}
			}
		}
	}

	return []T{}, Fallback
}

// Value decodes an Object body into T. Anything other than a decodable JSON
// object yields the zero value.
func Value[T any](raw json.RawMessage) (T, Outcome) {
	var zero T

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return zero, Fallback
	}

	var v T
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return zero, Fallback
	}
	return v, Direct
}

func decodeArray[T any](raw json.RawMessage) ([]T, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}

	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, false
	}
	if items == nil {
		items = []T{}
	}
	return items, true
}
