package message

import (
	"fmt"
	"maps"
	"slices"
)

// Field is a single named form value. Value may be a string, []byte, an
// io.Reader, a [File] or anything with a display form. Filename and
// ContentType are optional and only used by multipart bodies.
type Field struct {
	Name        string
	Value       any
	Filename    string
	ContentType string
}

// File refers to a file on disk by path.
type File string

// Fielder is implemented by payload types that serialize themselves
// into form fields.
type Fielder interface {
	FormFields() []Field
}

// FieldsFromMap converts m into fields ordered by key.
func FieldsFromMap[V any](m map[string]V) []Field {
	fields := make([]Field, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		fields = append(fields, Field{Name: k, Value: m[k]})
	}
	return fields
}

// FieldsOf extracts fields from a [Fielder], a []Field or a string-keyed
// map. Any other type is reported as an error.
func FieldsOf(v any) ([]Field, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case Fielder:
		return v.FormFields(), nil
	case []Field:
		return v, nil
	case map[string]string:
		return FieldsFromMap(v), nil
	case map[string]any:
		return FieldsFromMap(v), nil
	}

	return nil, fmt.Errorf("%w: %T", ErrNotFielder, v)
}

// Text renders a field value in its display form.
func (f Field) Text() string {
	switch v := f.Value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	case nil:
		return ""
	}
	return fmt.Sprint(f.Value)
}
