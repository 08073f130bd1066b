// Package optional provides a JSON field wrapper that tells apart a key that
// was absent, a key that was null, and a key that carried a value.
package optional

import (
	"bytes"
	"encoding/json"
)

// Value is a tri-state field for partial-update payloads. The zero value is
// absent. Decoding JSON null marks it present and null.
type Value[T any] struct {
	set   bool
	null  bool
	value T
}

// Of returns a present, non-null value.
func Of[T any](v T) Value[T] {
	return Value[T]{set: true, value: v}
}

// Null returns a present null.
func Null[T any]() Value[T] {
	return Value[T]{set: true, null: true}
}

// IsSet reports whether the key appeared in the payload at all.
func (o Value[T]) IsSet() bool { return o.set }

// IsNull reports whether the key appeared with a JSON null.
func (o Value[T]) IsNull() bool { return o.set && o.null }

// Get returns the value and whether it is present and non-null.
func (o Value[T]) Get() (T, bool) {
	return o.value, o.set && !o.null
}

// Ptr returns nil for absent or null, otherwise a pointer to a copy.
func (o Value[T]) Ptr() *T {
	if !o.set || o.null {
		return nil
	}
	v := o.value
	return &v
}

func (o *Value[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.null = true
		var zero T
		o.value = zero
		return nil
	}
	o.null = false
	return json.Unmarshal(data, &o.value)
}

func (o Value[T]) MarshalJSON() ([]byte, error) {
	if !o.set || o.null {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
