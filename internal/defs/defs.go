// Package defs implements the Definition Store: a registry of type aliases,
// interfaces, classes, enums, and namespaces identified by DefIDs. TypeIDs of
// kind Lazy(DefID) indirect through this store, which is what lets the type
// interner intern cyclic structural shapes (a class that refers to itself)
// without the interner itself ever containing a cycle.
package defs

import (
	"fmt"

	"fortio.org/safecast"

	"surge/internal/ast"
	"surge/internal/source"
	"surge/internal/types"
)

// DefID identifies a definition inside the Store.
type DefID uint32

// NoDefID marks the absence of a definition.
const NoDefID DefID = 0

// IsValid reports whether the id refers to an allocated definition.
func (id DefID) IsValid() bool { return id != NoDefID }

// Kind classifies what a Definition declares.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindTypeAlias
	KindInterface
	KindClass
	KindEnum
	KindNamespace
)

// BodyState tracks lazy-body computation so a self-referential definition
// resolves to a "circular" placeholder instead of recursing forever.
type BodyState uint8

const (
	BodyNotStarted BodyState = iota
	BodyInProgress
	BodyResolved
)

// EnumMember is one member of an enum definition.
type EnumMember struct {
	Name  source.StringID
	Value types.TypeID // literal type of the computed/declared value
}

// Export is one name a namespace/module-like definition makes visible.
type Export struct {
	Name   source.StringID
	Target types.TypeID
}

// Info holds everything about one definition. Body is populated lazily by
// the Checker on first observation (see GetBody); computing it may itself
// intern further TypeIDs into the shared Interner.
type Info struct {
	Kind         Kind
	Name         source.StringID
	TypeParams   []types.TypeID // TypeParameter TypeIDs, in declaration order
	bodyState    BodyState
	Body         types.TypeID // zero until BodyResolved
	InstanceShape types.TypeID
	StaticShape   types.TypeID
	Extends      []types.TypeID
	Implements   []types.TypeID
	EnumMembers  []EnumMember
	Exports      []Export
	FileID       ast.FileID
	Span         source.Span
}

// Store holds the definitions. Its circular placeholder type is interned once
// per Store and handed back for any definition observed while its own body is
// still being computed.
type Store struct {
	interner *types.Interner
	defs     []Info
	circular types.TypeID
}

// New creates an empty Store backed by the given shared type interner.
func New(interner *types.Interner) *Store {
	s := &Store{interner: interner}
	s.defs = append(s.defs, Info{}) // reserve 0 as NoDefID sentinel
	s.circular = interner.Intern(types.Key{Kind: types.KindIntrinsic, Intrinsic: types.IntrinsicError})
	return s
}

// New allocates a fresh definition and returns its DefID.
func (s *Store) New(info Info) DefID {
	n, err := safecast.Conv[uint32](len(s.defs))
	if err != nil {
		panic(fmt.Errorf("defs: store overflow: %w", err))
	}
	s.defs = append(s.defs, info)
	return DefID(n)
}

// Get returns a pointer to the definition, or nil for an invalid id.
func (s *Store) Get(id DefID) *Info {
	if !id.IsValid() || int(id) >= len(s.defs) {
		return nil
	}
	return &s.defs[id]
}

// Len reports the number of allocated definitions.
func (s *Store) Len() int { return len(s.defs) - 1 }

// BodyComputer lazily computes the structural body type for a definition the
// first time it is observed. The Checker supplies this; the Store only
// manages the resolution-stack guard around it.
type BodyComputer func(id DefID, info *Info) types.TypeID

// GetBody returns the (possibly freshly computed) body type for id. A
// definition observed while its own computer is already on the stack (a
// direct or mutual cycle) gets the Store's circular placeholder instead of
// recursing.
func (s *Store) GetBody(id DefID, compute BodyComputer) types.TypeID {
	info := s.Get(id)
	if info == nil {
		return types.NoTypeID
	}
	switch info.bodyState {
	case BodyResolved:
		return info.Body
	case BodyInProgress:
		return s.circular
	}
	info.bodyState = BodyInProgress
	body := compute(id, info)
	info.Body = body
	info.bodyState = BodyResolved
	return body
}

// IsCircularPlaceholder reports whether t is the sentinel type handed back
// for an in-progress cyclic body resolution.
func (s *Store) IsCircularPlaceholder(t types.TypeID) bool { return t == s.circular }

// Circular returns the sentinel type GetBody hands back for a definition (or,
// by the Checker's convention, a symbol) observed while already in progress.
func (s *Store) Circular() types.TypeID { return s.circular }
