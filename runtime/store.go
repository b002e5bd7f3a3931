// Package runtime is the shared support library referenced by generated
// code: the generic store contract, an in-memory store with unique-field
// enforcement, and the validation built-ins. The compiler itself only touches
// this package from tests; generated programs import it as their runtime.
package runtime

import (
	"errors"
	"fmt"
)

type (
	// HasID is implemented by generated domain types carrying an "id" field.
	HasID interface {
		ID() string
	}

	// HasUniqueFields is implemented by generated domain types declaring
	// unique-within constraints. UniqueFields returns (field name,
	// stringified value) pairs.
	HasUniqueFields interface {
		UniqueFields() []UniqueField
	}

	// UniqueField is one unique-constrained field value.
	UniqueField struct {
		Name  string
		Value string
	}

	// ReadStore is the read-only contract of an abstract persistent
	// collection. Generated functions that only declare Reads effects on a
	// store take this interface.
	ReadStore[T any] interface {
		// QueryByID returns the item with the given id.
		QueryByID(id string) (T, bool)
		// ListAll returns every item in insertion order.
		ListAll() []T
	}

	// Store is the full store contract. A Writes effect promotes a generated
	// function's dependency from ReadStore to Store.
	Store[T any] interface {
		ReadStore[T]
		// Insert adds an item, enforcing unique-field constraints. The
		// returned error is a *StoreError.
		Insert(item T) (T, error)
		// Delete removes the item with the given id and reports whether it
		// was present.
		Delete(id string) bool
	}

	// StoreError is the error type returned by store operations.
	StoreError struct {
		// Kind is a stable tag, e.g. "unique-violation".
		Kind string
		// Field is the offending field for unique violations.
		Field string
	}

	// InMemoryStore is a Store backed by a slice. It performs no locking of
	// its own: callers that share one across goroutines guard it with their
	// own mutex, which is what scaffolded handlers do.
	InMemoryStore[T HasID] struct {
		items []T
	}
)

// UniqueViolation tags StoreError values raised by unique-field conflicts.
const UniqueViolation = "unique-violation"

func (e *StoreError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s on field %q", e.Kind, e.Field)
	}
	return e.Kind
}

// IsUniqueViolation reports whether err is a unique-violation store error.
func IsUniqueViolation(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == UniqueViolation
}

// NewInMemoryStore returns an empty in-memory store.
func NewInMemoryStore[T HasID]() *InMemoryStore[T] {
	return &InMemoryStore[T]{}
}

// QueryByID returns the item with the given id.
func (s *InMemoryStore[T]) QueryByID(id string) (T, bool) {
	for _, it := range s.items {
		if it.ID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Insert adds item after checking unique-field constraints against the
// existing items.
func (s *InMemoryStore[T]) Insert(item T) (T, error) {
	if uf, ok := any(item).(HasUniqueFields); ok {
		for _, f := range uf.UniqueFields() {
			for _, existing := range s.items {
				euf, ok := any(existing).(HasUniqueFields)
				if !ok {
					continue
				}
				for _, ef := range euf.UniqueFields() {
					if ef.Name == f.Name && ef.Value == f.Value {
						var zero T
						return zero, &StoreError{Kind: UniqueViolation, Field: f.Name}
					}
				}
			}
		}
	}
	s.items = append(s.items, item)
	return item, nil
}

// ListAll returns every item in insertion order.
func (s *InMemoryStore[T]) ListAll() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Delete removes the item with the given id.
func (s *InMemoryStore[T]) Delete(id string) bool {
	for i, it := range s.items {
		if it.ID() == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}
