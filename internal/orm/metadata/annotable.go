// Package metadata provides the in-memory entity model built by conventions.
//
// A Model owns Entities. An Entity owns the Properties, Keys, ForeignKeys,
// Indexes and Navigations it declares and reaches inherited ones through its
// base type. Every metadata object carries an annotation bag.
package metadata

import (
	"iter"
	"maps"
	"slices"
)

// Annotable is a bag of named values attached to a metadata object
type Annotable struct {
	annotations map[string]any
}

// FindAnnotation returns the value stored under name
func (a *Annotable) FindAnnotation(name string) (any, bool) {
	if a.annotations == nil {
		return nil, false
	}
	v, ok := a.annotations[name]
	return v, ok
}

// AddAnnotation stores a new annotation, failing if name is already used
func (a *Annotable) AddAnnotation(name string, value any) error {
	if name == "" {
		return NewArgumentEmpty("name")
	}
	if _, exists := a.annotations[name]; exists {
		return NewDuplicateAnnotation(name)
	}
	a.SetAnnotation(name, value)
	return nil
}

// SetAnnotation stores an annotation, replacing any previous value
func (a *Annotable) SetAnnotation(name string, value any) {
	if a.annotations == nil {
		a.annotations = make(map[string]any)
	}
	a.annotations[name] = value
}

// RemoveAnnotation deletes an annotation and returns its former value
func (a *Annotable) RemoveAnnotation(name string) (any, bool) {
	v, ok := a.annotations[name]
	if ok {
		delete(a.annotations, name)
	}
	return v, ok
}

// Annotations yields every annotation ordered by name
func (a *Annotable) Annotations() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, name := range slices.Sorted(maps.Keys(a.annotations)) {
			if !yield(name, a.annotations[name]) {
				return
			}
		}
	}
}

// AnnotationValue returns the annotation stored under name as a T
func AnnotationValue[T any](a *Annotable, name string) (T, bool) {
	var zero T
	v, ok := a.FindAnnotation(name)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}
