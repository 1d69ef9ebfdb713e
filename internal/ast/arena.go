// Package ast defines the immutable node arena the Binder and Checker
// consume. Parsing and lexing are external collaborators; this package only
// states the contract a completed AST arena must satisfy.
package ast

import (
	"fmt"

	"fortio.org/safecast"
)

// Arena is a generic typed arena for allocating elements, addressed by a
// 1-based index so the zero value of any ID type means "absent".
type Arena[T any] struct {
	data []*T
}

// NewArena creates an Arena with an optional capacity hint.
func NewArena[T any](capHint uint) *Arena[T] {
	return &Arena[T]{data: make([]*T, 0, capHint)}
}

// Allocate appends a value to the arena and returns its 1-based index.
func (a *Arena[T]) Allocate(value T) uint32 {
	elem := new(T)
	*elem = value
	a.data = append(a.data, elem)
	return a.Len()
}

// Get returns a pointer to the element at the given 1-based index, or nil
// for index 0 or an out-of-range index.
func (a *Arena[T]) Get(index uint32) *T {
	if index == 0 || int(index) > len(a.data) {
		return nil
	}
	return a.data[index-1]
}

// Len returns the number of elements in the arena.
func (a *Arena[T]) Len() uint32 {
	n, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("ast: arena len overflow: %w", err))
	}
	return n
}

// Slice returns a read-only copy of the arena contents in insertion order.
func (a *Arena[T]) Slice() []T {
	out := make([]T, len(a.data))
	for i, ptr := range a.data {
		out[i] = *ptr
	}
	return out
}
