package checker

import (
	"github.com/vmihailenco/msgpack/v5"

	"surge/internal/ast"
	"surge/internal/binder"
	"surge/internal/symbols"
	"surge/internal/types"
)

// SymbolRef names one symbol within one file — TypeCache's externally
// addressable key, since a raw symbols.SymbolID is only meaningful relative
// to the arena that allocated it.
type SymbolRef struct {
	File ast.FileID
	Sym  symbols.SymbolID
}

// NodeRef names one expression/type-syntax node within one file.
type NodeRef struct {
	File ast.FileID
	Node ast.NodeIndex
}

// FlowRef names one (flow position, symbol) narrowing memo entry.
type FlowRef struct {
	File ast.FileID
	Flow binder.FlowNodeID
	Sym  symbols.SymbolID
}

// TypeCache is the detached artifact spec.md §4.5 describes: a snapshot of
// every type-checking result a Checker run produced for a set of files, plus
// the symbol_dependencies edges needed to invalidate it incrementally. It
// owns no reference back to the Checker or any *binder.Result that produced
// it, so it can be handed to an LSP-style incremental consumer, serialized to
// disk, or merged with another file's cache freely.
type TypeCache struct {
	SymbolTypes map[SymbolRef]types.TypeID
	NodeTypes   map[NodeRef]types.TypeID
	FlowTypes   map[FlowRef]types.TypeID
	// Deps maps a symbol to every other symbol its own type computation
	// observed (the forward edges; InvalidateSymbols reverses them on
	// demand, matching spec.md's "builds a reverse dependency map from
	// symbol_dependencies").
	Deps map[SymbolRef][]SymbolRef
}

// wireCache has TypeCache's fields without its methods, so MarshalBinary and
// UnmarshalBinary can hand msgpack a plain struct that does not route back
// into them.
type wireCache struct {
	SymbolTypes map[SymbolRef]types.TypeID
	NodeTypes   map[NodeRef]types.TypeID
	FlowTypes   map[FlowRef]types.TypeID
	Deps        map[SymbolRef][]SymbolRef
}

// ExtractCache hands back a detached TypeCache bundling every symbol type,
// node type, and flow-narrowing result this Checker has computed so far,
// across every file it has checked (spec.md's extract_cache).
func (c *Checker) ExtractCache() *TypeCache {
	tc := &TypeCache{
		SymbolTypes: make(map[SymbolRef]types.TypeID, len(c.observed)),
		NodeTypes:   make(map[NodeRef]types.TypeID, len(c.nodeTypes)),
		FlowTypes:   make(map[FlowRef]types.TypeID, len(c.flowMemo)),
		Deps:        make(map[SymbolRef][]SymbolRef, len(c.deps)),
	}

	for key := range c.observed {
		res, ok := c.fileResults[key.File]
		if !ok {
			continue
		}
		sym := res.Symbols.Get(key.Sym)
		if sym == nil || !sym.Type.IsValid() {
			continue
		}
		tc.SymbolTypes[SymbolRef{File: key.File, Sym: key.Sym}] = sym.Type
	}
	for k, v := range c.nodeTypes {
		tc.NodeTypes[NodeRef{File: k.File, Node: k.Node}] = v
	}
	for k, v := range c.flowMemo {
		tc.FlowTypes[FlowRef{File: k.File, Flow: k.Flow, Sym: k.Sym}] = v
	}
	for dependent, set := range c.deps {
		ref := SymbolRef{File: dependent.File, Sym: dependent.Sym}
		list := make([]SymbolRef, 0, len(set))
		for dep := range set {
			list = append(list, SymbolRef{File: dep.File, Sym: dep.Sym})
		}
		tc.Deps[ref] = list
	}
	return tc
}

// InvalidateSymbols BFS-closes roots over the reverse of Deps (every symbol
// that transitively depended on a root) and clears SymbolTypes and Deps for
// the whole affected set; NodeTypes and FlowTypes are cleared wholesale,
// since they are cheap to recompute and not worth tracking node-level
// dependency edges for (spec.md §4.5's invalidate_symbols). Returns the full
// affected set so a caller can schedule exactly those symbols for re-check.
func (tc *TypeCache) InvalidateSymbols(roots []SymbolRef) []SymbolRef {
	reverse := make(map[SymbolRef][]SymbolRef, len(tc.Deps))
	for dependent, deps := range tc.Deps {
		for _, dep := range deps {
			reverse[dep] = append(reverse[dep], dependent)
		}
	}

	affected := make(map[SymbolRef]bool, len(roots))
	queue := append([]SymbolRef(nil), roots...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if affected[cur] {
			continue
		}
		affected[cur] = true
		queue = append(queue, reverse[cur]...)
	}

	out := make([]SymbolRef, 0, len(affected))
	for ref := range affected {
		out = append(out, ref)
		delete(tc.SymbolTypes, ref)
		delete(tc.Deps, ref)
	}
	tc.NodeTypes = make(map[NodeRef]types.TypeID)
	tc.FlowTypes = make(map[FlowRef]types.TypeID)
	return out
}

// Merge unions tc with other, later (other) winning on any key collision —
// the rule spec.md states for combining two files' TypeCaches (e.g. a full
// cache plus a just-rechecked incremental delta).
func (tc *TypeCache) Merge(other *TypeCache) *TypeCache {
	out := &TypeCache{
		SymbolTypes: make(map[SymbolRef]types.TypeID, len(tc.SymbolTypes)+len(other.SymbolTypes)),
		NodeTypes:   make(map[NodeRef]types.TypeID, len(tc.NodeTypes)+len(other.NodeTypes)),
		FlowTypes:   make(map[FlowRef]types.TypeID, len(tc.FlowTypes)+len(other.FlowTypes)),
		Deps:        make(map[SymbolRef][]SymbolRef, len(tc.Deps)+len(other.Deps)),
	}
	for k, v := range tc.SymbolTypes {
		out.SymbolTypes[k] = v
	}
	for k, v := range other.SymbolTypes {
		out.SymbolTypes[k] = v
	}
	for k, v := range tc.NodeTypes {
		out.NodeTypes[k] = v
	}
	for k, v := range other.NodeTypes {
		out.NodeTypes[k] = v
	}
	for k, v := range tc.FlowTypes {
		out.FlowTypes[k] = v
	}
	for k, v := range other.FlowTypes {
		out.FlowTypes[k] = v
	}
	for k, v := range tc.Deps {
		out.Deps[k] = v
	}
	for k, v := range other.Deps {
		out.Deps[k] = v
	}
	return out
}

// MarshalBinary serializes the cache with msgpack, the teacher's wire format
// for every other persisted artifact (see internal/typecache's disk-backed
// store), so all ids being dense u32 values round-trips without a custom
// codec.
func (tc *TypeCache) MarshalBinary() ([]byte, error) {
	return msgpack.Marshal((*wireCache)(tc))
}

// UnmarshalBinary restores a cache previously written by MarshalBinary.
func (tc *TypeCache) UnmarshalBinary(data []byte) error {
	var w wireCache
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return err
	}
	*tc = TypeCache(w)
	return nil
}
