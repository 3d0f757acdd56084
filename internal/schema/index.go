package schema

import "strings"

// Named is implemented by every schema object that can live in an Index.
type Named interface {
	Name() string
}

// Index is an insertion-ordered collection of schema objects of one category
// with case-insensitive lookup by name.
//
// Adding a second object whose name folds to an existing one keeps both in
// iteration order but makes the later one win on lookup. Uniqueness is the
// caller's responsibility.
type Index[T Named] struct {
	items  []T
	byName map[string]T
}

// NewIndex returns an index holding items in the given order.
func NewIndex[T Named](items ...T) *Index[T] {
	idx := &Index[T]{
		items:  make([]T, 0, len(items)),
		byName: make(map[string]T, len(items)),
	}
	for _, it := range items {
		idx.Add(it)
	}
	return idx
}

// Add appends item and registers its folded name.
func (x *Index[T]) Add(item T) {
	if x.byName == nil {
		x.byName = make(map[string]T)
	}
	x.items = append(x.items, item)
	x.byName[strings.ToLower(item.Name())] = item
}

// Contains reports whether an object with the given name exists, ignoring case.
func (x *Index[T]) Contains(name string) bool {
	if x == nil {
		return false
	}
	_, ok := x.byName[strings.ToLower(name)]
	return ok
}

// Get returns the object registered under name, ignoring case.
func (x *Index[T]) Get(name string) (T, bool) {
	var zero T
	if x == nil {
		return zero, false
	}
	item, ok := x.byName[strings.ToLower(name)]
	return item, ok
}

// Items returns the objects in insertion order. The slice is a copy.
func (x *Index[T]) Items() []T {
	if x == nil {
		return nil
	}
	out := make([]T, len(x.items))
	copy(out, x.items)
	return out
}

// Len returns the number of added objects, duplicates included.
func (x *Index[T]) Len() int {
	if x == nil {
		return 0
	}
	return len(x.items)
}
