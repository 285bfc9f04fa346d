package message

import (
	"iter"
	"maps"
	"net/http"
	"slices"
	"strings"
)

type headerField struct {
	name   string
	values []string
}

// Header is an ordered multimap of header names to values. Names are
// matched case-insensitively and keep the spelling they were first
// added with. The zero value is an empty Header.
type Header struct {
	fields []headerField
}

// NewHeader builds a Header from alternating name, value arguments.
func NewHeader(kv ...string) Header {
	var h Header
	for i := 0; i+1 < len(kv); i += 2 {
		h.Add(kv[i], kv[i+1])
	}
	return h
}

// HeaderFromHTTP converts an [http.Header]. Names are ordered
// alphabetically since the source map is unordered.
func HeaderFromHTTP(src http.Header) Header {
	var h Header
	for _, name := range slices.Sorted(maps.Keys(src)) {
		h.fields = append(h.fields, headerField{name: name, values: slices.Clone(src[name])})
	}
	return h
}

func (h Header) index(name string) int {
	return slices.IndexFunc(h.fields, func(f headerField) bool {
		return strings.EqualFold(f.name, name)
	})
}

// Add appends value to the values of name.
func (h *Header) Add(name, value string) {
	if i := h.index(name); i >= 0 {
		h.fields[i].values = append(h.fields[i].values, value)
		return
	}
	h.fields = append(h.fields, headerField{name: name, values: []string{value}})
}

// Set replaces the values of name.
func (h *Header) Set(name string, values ...string) {
	if i := h.index(name); i >= 0 {
		h.fields[i].values = slices.Clone(values)
		return
	}
	h.fields = append(h.fields, headerField{name: name, values: slices.Clone(values)})
}

// SetIfAbsent sets name only if it has no values yet.
func (h *Header) SetIfAbsent(name string, values ...string) {
	if !h.Has(name) {
		h.Set(name, values...)
	}
}

// Del removes name.
func (h *Header) Del(name string) {
	if i := h.index(name); i >= 0 {
		h.fields = slices.Delete(h.fields, i, i+1)
	}
}

// Get returns the first value of name, or "".
func (h Header) Get(name string) string {
	if i := h.index(name); i >= 0 && len(h.fields[i].values) > 0 {
		return h.fields[i].values[0]
	}
	return ""
}

// Values returns a copy of all values of name.
func (h Header) Values(name string) []string {
	if i := h.index(name); i >= 0 {
		return slices.Clone(h.fields[i].values)
	}
	return nil
}

// Has reports whether name has at least one value.
func (h Header) Has(name string) bool {
	i := h.index(name)
	return i >= 0 && len(h.fields[i].values) > 0
}

// Len returns the number of distinct names.
func (h Header) Len() int {
	return len(h.fields)
}

// All iterates names and values in insertion order.
func (h Header) All() iter.Seq2[string, []string] {
	return func(yield func(string, []string) bool) {
		for _, f := range h.fields {
			if !yield(f.name, f.values) {
				return
			}
		}
	}
}

// Clone returns a deep copy of h.
func (h Header) Clone() Header {
	cpy := Header{fields: make([]headerField, len(h.fields))}
	for i, f := range h.fields {
		cpy.fields[i] = headerField{name: f.name, values: slices.Clone(f.values)}
	}
	return cpy
}

// Merge returns a copy of h with the values of defaults appended after
// the values h already carries for the same name.
func (h Header) Merge(defaults Header) Header {
	merged := h.Clone()
	for name, values := range defaults.All() {
		for _, v := range values {
			merged.Add(name, v)
		}
	}
	return merged
}

// HTTP converts h to an [http.Header].
func (h Header) HTTP() http.Header {
	out := make(http.Header, len(h.fields))
	for _, f := range h.fields {
		for _, v := range f.values {
			out.Add(f.name, v)
		}
	}
	return out
}
