package symbols

import (
	"surge/internal/ast"
	"surge/internal/source"
)

// ScopeKind enumerates lexical scope categories.
type ScopeKind uint8

const (
	ScopeInvalid ScopeKind = iota
	ScopeSourceFile
	ScopeModule
	ScopeNamespace
	ScopeFunction
	ScopeClass
	ScopeBlock
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeSourceFile:
		return "source_file"
	case ScopeModule:
		return "module"
	case ScopeNamespace:
		return "namespace"
	case ScopeFunction:
		return "function"
	case ScopeClass:
		return "class"
	case ScopeBlock:
		return "block"
	default:
		return "invalid"
	}
}

// Scope is a lexical container with its own name table and a parent
// pointer; scopes form a tree rooted at the file scope (id 0's child).
// Scopes are created on container entry and never destroyed during
// binding — they outlive binding for the Checker's later use.
type Scope struct {
	ID            ScopeID
	Kind          ScopeKind
	Parent        ScopeID
	ContainerNode ast.NodeIndex
	Table         *Table
	Children      []ScopeID
}

// Scopes is the persistent, addressable-by-id arena of scope records.
type Scopes struct {
	data []Scope
}

// NewScopes creates an arena with an optional capacity hint.
func NewScopes(capacity int) *Scopes {
	if capacity <= 0 {
		capacity = 32
	}
	s := &Scopes{data: make([]Scope, 1, capacity+1)} // index 0 reserved for NoScopeID
	return s
}

// New allocates a scope and returns its id.
func (s *Scopes) New(kind ScopeKind, parent ScopeID, container ast.NodeIndex) ScopeID {
	id := ScopeID(len(s.data))
	s.data = append(s.data, Scope{ID: id, Kind: kind, Parent: parent, ContainerNode: container, Table: NewTable()})
	if parent.IsValid() {
		if p := s.Get(parent); p != nil {
			p.Children = append(p.Children, id)
		}
	}
	return id
}

// Get returns a pointer to the scope, or nil for an invalid id.
func (s *Scopes) Get(id ScopeID) *Scope {
	if !id.IsValid() || int(id) >= len(s.data) {
		return nil
	}
	return &s.data[id]
}

// Len reports the number of allocated scopes.
func (s *Scopes) Len() int { return len(s.data) - 1 }

// Chain walks parent pointers starting at id, calling fn for each scope
// until fn returns false or the file scope (whose Parent is NoScopeID) is
// reached. This is the lexical scope-chain walk `resolve_identifier` uses.
func (s *Scopes) Chain(id ScopeID, fn func(*Scope) bool) {
	for cur := id; cur.IsValid(); {
		scope := s.Get(cur)
		if scope == nil || !fn(scope) {
			return
		}
		cur = scope.Parent
	}
}

// Lookup walks the scope chain from id looking for name, returning the
// first match and the scope it was found in.
func (s *Scopes) Lookup(id ScopeID, name source.StringID) (SymbolID, ScopeID, bool) {
	var found SymbolID
	var foundScope ScopeID
	ok := false
	s.Chain(id, func(scope *Scope) bool {
		if sid, present := scope.Table.Get(name); present {
			found, foundScope, ok = sid, scope.ID, true
			return false
		}
		return true
	})
	return found, foundScope, ok
}
