// Package layered resolves configuration values drawn from several
// ordered sources, typically call-site, session and library default.
package layered

// Pick returns the first non-nil layer, or nil when every layer is absent.
func Pick[T any](layers ...*T) *T {
	for _, l := range layers {
		if l != nil {
			return l
		}
	}

	return nil
}

// Value dereferences the first non-nil layer. It returns the zero value
// of T when no layer is set.
func Value[T any](layers ...*T) T {
	if p := Pick(layers...); p != nil {
		return *p
	}

	var zero T
	return zero
}

// Ptr returns a pointer to v, for populating settings literals.
func Ptr[T any](v T) *T {
	return &v
}
