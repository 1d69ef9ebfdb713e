package symbols

import "surge/internal/source"

// Table is an ordered map from Atom to SymbolID with stable iteration order
// (spec.md §3's SymbolTable). Go maps do not preserve insertion order, so
// Table pairs a map for O(1) lookup with a parallel slice for ordered
// iteration — the same "index map + ordered slice" shape the teacher's own
// scope/table types use throughout (see symbols.Scope.NameIndex +
// symbols.Scope.Symbols in the original).
type Table struct {
	index map[source.StringID]SymbolID
	order []source.StringID
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{index: make(map[source.StringID]SymbolID)}
}

// Get returns the symbol bound to name, if any.
func (t *Table) Get(name source.StringID) (SymbolID, bool) {
	id, ok := t.index[name]
	return id, ok
}

// Has reports whether name is bound.
func (t *Table) Has(name source.StringID) bool {
	_, ok := t.index[name]
	return ok
}

// Set binds name to id, appending to the iteration order only the first
// time name is bound (later calls just update the binding in place).
func (t *Table) Set(name source.StringID, id SymbolID) {
	if _, exists := t.index[name]; !exists {
		t.order = append(t.order, name)
	}
	t.index[name] = id
}

// Remove unbinds name, if bound.
func (t *Table) Remove(name source.StringID) {
	if _, ok := t.index[name]; !ok {
		return
	}
	delete(t.index, name)
	for i, n := range t.order {
		if n == name {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Len reports the number of bound names.
func (t *Table) Len() int { return len(t.order) }

// Iter calls fn for each (name, id) pair in stable insertion order, stopping
// early if fn returns false.
func (t *Table) Iter(fn func(name source.StringID, id SymbolID) bool) {
	for _, name := range t.order {
		id, ok := t.index[name]
		if !ok {
			continue
		}
		if !fn(name, id) {
			return
		}
	}
}

// Names returns the bound names in stable insertion order.
func (t *Table) Names() []source.StringID {
	out := make([]source.StringID, len(t.order))
	copy(out, t.order)
	return out
}
