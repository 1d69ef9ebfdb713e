package types

import (
	"fmt"
	"sort"
	"sync"

	"fortio.org/safecast"

	"surge/internal/source"
)

// Builtins caches the TypeIDs of the primitive intrinsics so callers never
// re-intern them.
type Builtins struct {
	Any, Unknown, Never, Void, Null, Undefined TypeID
	String, Number, Boolean, BigInt, Symbol    TypeID
	Object, Error                              TypeID
}

// Interner hash-conses Keys into TypeIDs. All Intern/Lookup traffic is safe
// for concurrent use by multiple per-file Checker workers (see
// internal/driver), guarded the same way source.Interner guards string
// interning: an RWMutex with a double-checked insert.
type Interner struct {
	mu       sync.RWMutex
	keys     []Key
	index    map[string]TypeID
	shapes   []ObjectShape
	callable []CallableShape

	Strings *source.Interner

	builtins  Builtins
	relations *RelationCache
}

// NewInterner creates an Interner seeded with the built-in intrinsics. If
// strings is nil a fresh string interner is allocated.
func NewInterner(strings *source.Interner) *Interner {
	if strings == nil {
		strings = source.NewInterner()
	}
	in := &Interner{
		index:     make(map[string]TypeID, 256),
		Strings:   strings,
		relations: NewRelationCache(),
	}
	in.keys = append(in.keys, Key{}) // reserve 0 as NoTypeID sentinel
	in.shapes = append(in.shapes, ObjectShape{})
	in.callable = append(in.callable, CallableShape{})

	mk := func(i Intrinsic) TypeID { return in.Intern(Key{Kind: KindIntrinsic, Intrinsic: i}) }
	in.builtins = Builtins{
		Any: mk(IntrinsicAny), Unknown: mk(IntrinsicUnknown), Never: mk(IntrinsicNever),
		Void: mk(IntrinsicVoid), Null: mk(IntrinsicNull), Undefined: mk(IntrinsicUndefined),
		String: mk(IntrinsicString), Number: mk(IntrinsicNumber), Boolean: mk(IntrinsicBoolean),
		BigInt: mk(IntrinsicBigInt), Symbol: mk(IntrinsicSymbol), Object: mk(IntrinsicObject),
		Error: mk(IntrinsicError),
	}
	return in
}

// Builtins returns the cached primitive TypeIDs.
func (in *Interner) Builtins() Builtins { return in.builtins }

// Relations returns the shared assignability/subtype relation cache.
func (in *Interner) Relations() *RelationCache { return in.relations }

// hashKey renders a Key to a comparable string used as the dedup map key.
// Union/Intersection member lists and struct/callable shape ids are included
// by value, so two structurally-identical Keys always hash identically.
func hashKey(k Key) string {
	return fmt.Sprintf("%d|%d|%d|%s|%g|%t|%d|%d|%d|%v|%v|%v|%v|%v|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%t|%d|%d|%d|%d|%d|%d|%d",
		k.Kind, k.Intrinsic, k.LiteralKind, str(k.LiteralStr), k.LiteralNum, k.LiteralBool, k.LiteralBig,
		k.TemplateHead, len(k.TemplateSegments), k.TemplateSegments, k.Shape, k.TupleElements, k.TupleReadonly,
		k.Members, k.Callable, k.Lazy, k.AppBase, k.AppArgs, k.TypeParamDef, k.TypeParamName, k.Constraint,
		k.Default, k.TPVariance, k.IndexOf, k.IAObject, k.IAIndex, k.CondCheck, k.CondExtends, k.CondTrue,
		k.CondFalse, k.TPIsConst, k.TPConstType, k.MappedSource, k.MappedTemplate, k.MappedReadonly,
		k.MappedOptional, k.KeyOfOperand, k.Enum)
}

func str(id source.StringID) source.StringID { return id }

// Intern ensures k has a stable TypeID, canonicalizing Union/Intersection
// member lists first so structurally-equal shapes always collapse to one id.
func (in *Interner) Intern(k Key) TypeID {
	if k.Kind == KindUnion || k.Kind == KindIntersection {
		return in.internCombined(k)
	}
	return in.internRaw(k)
}

func (in *Interner) internRaw(k Key) TypeID {
	hk := hashKey(k)

	in.mu.RLock()
	if id, ok := in.index[hk]; ok {
		in.mu.RUnlock()
		return id
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.index[hk]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(in.keys))
	if err != nil {
		panic(fmt.Errorf("types: interner overflow: %w", err))
	}
	id := TypeID(n)
	in.keys = append(in.keys, k)
	in.index[hk] = id
	return id
}

// Lookup returns the descriptor for id.
func (in *Interner) Lookup(id TypeID) (Key, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if !id.IsValid() || int(id) >= len(in.keys) {
		return Key{}, false
	}
	return in.keys[id], true
}

// MustLookup panics for an invalid id; used where the caller already knows
// id came from this interner.
func (in *Interner) MustLookup(id TypeID) Key {
	k, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return k
}

// InternString interns a raw Go string as an Atom through the shared string
// interner (spec.md's `intern_string`).
func (in *Interner) InternString(s string) source.StringID { return in.Strings.Intern(s) }

// ResolveString is the inverse of InternString (spec.md's `resolve`).
func (in *Interner) ResolveString(id source.StringID) string {
	s, _ := in.Strings.Lookup(id)
	return s
}

// NewObjectShape stores an object shape and returns the TypeID of a Key for
// it (Object or ObjectWithIndex, depending on whether index signatures are
// present).
func (in *Interner) NewObjectShape(shape ObjectShape) TypeID {
	in.mu.Lock()
	id := ObjectShapeID(len(in.shapes))
	in.shapes = append(in.shapes, shape)
	in.mu.Unlock()

	kind := KindObject
	if len(shape.Index) > 0 {
		kind = KindObjectWithIndex
	}
	return in.internRaw(Key{Kind: kind, Shape: id})
}

// ObjectShapeByID returns the stored shape record.
func (in *Interner) ObjectShapeByID(id ObjectShapeID) (ObjectShape, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if int(id) >= len(in.shapes) {
		return ObjectShape{}, false
	}
	return in.shapes[id], true
}

// NewCallableShape stores a callable shape and interns a Callable Key for it.
func (in *Interner) NewCallableShape(shape CallableShape) TypeID {
	in.mu.Lock()
	id := CallableShapeID(len(in.callable))
	in.callable = append(in.callable, shape)
	in.mu.Unlock()
	return in.internRaw(Key{Kind: KindCallable, Callable: id})
}

// CallableShapeByID returns the stored shape record.
func (in *Interner) CallableShapeByID(id CallableShapeID) (CallableShape, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if int(id) >= len(in.callable) {
		return CallableShape{}, false
	}
	return in.callable[id], true
}

// internCombined implements Union/Intersection canonicalization: sort
// members by TypeID, drop duplicates, collapse a singleton to its member,
// and apply the absorbing-element rules (`any` absorbs a union, `never` is
// removed from a union).
func (in *Interner) internCombined(k Key) TypeID {
	members := expandMembers(in, k.Kind, k.Members)
	sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
	members = dedupeSorted(members)

	if k.Kind == KindUnion {
		if containsType(members, in.builtins.Any) {
			return in.builtins.Any
		}
		members = removeType(members, in.builtins.Never)
		if len(members) == 0 {
			return in.builtins.Never
		}
	}
	if len(members) == 1 {
		return members[0]
	}
	return in.internRaw(Key{Kind: k.Kind, Members: members})
}

// expandMembers flattens nested unions/intersections of the same kind so
// Union(Union(A,B),C) and Union(A,B,C) intern to the same TypeID.
func expandMembers(in *Interner, kind Kind, members []TypeID) []TypeID {
	out := make([]TypeID, 0, len(members))
	for _, m := range members {
		if key, ok := in.Lookup(m); ok && key.Kind == kind {
			out = append(out, expandMembers(in, kind, key.Members)...)
			continue
		}
		out = append(out, m)
	}
	return out
}

func dedupeSorted(ids []TypeID) []TypeID {
	out := ids[:0]
	var last TypeID
	first := true
	for _, id := range ids {
		if first || id != last {
			out = append(out, id)
			last = id
			first = false
		}
	}
	return out
}

func containsType(ids []TypeID, target TypeID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}

func removeType(ids []TypeID, target TypeID) []TypeID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// Union interns the canonical union of members (spec.md's `union`).
func (in *Interner) Union(members []TypeID) TypeID {
	return in.Intern(Key{Kind: KindUnion, Members: members})
}

// Intersection interns the canonical intersection of members.
func (in *Interner) Intersection(members []TypeID) TypeID {
	return in.Intern(Key{Kind: KindIntersection, Members: members})
}
