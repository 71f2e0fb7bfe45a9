package domain

import (
	"bytes"
	"encoding/json"
)

// Optional is one field of a partial update. It distinguishes a field the
// client left out, a field explicitly set to null, and a field with a value.
type Optional[T any] struct {
	value   T
	present bool
	null    bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true}
}

func Null[T any]() Optional[T] {
	return Optional[T]{present: true, null: true}
}

// Present reports whether the field appeared in the payload at all.
func (o Optional[T]) Present() bool { return o.present }

// IsNull reports whether the field appeared as an explicit null.
func (o Optional[T]) IsNull() bool { return o.present && o.null }

// Get returns the value and true only when the field carries a non-null value.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present && !o.null
}

// UnmarshalJSON is only invoked for keys present in the document, which is
// what makes absent and null distinguishable. Type errors are returned as
// *json.UnmarshalTypeError so the decoder can attach the field name.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.present = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		var zero T
		o.value, o.null = zero, true
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.value, o.null = v, false
	return nil
}
