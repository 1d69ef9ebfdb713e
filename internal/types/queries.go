package types

import (
	"sync"

	"surge/internal/source"
)

// queryCache memoizes a TypeID-keyed derived value. Memoized queries are
// idempotent functions of the interned Key alone, so a query result never
// needs to be invalidated by checker-mutable state (spec.md §4.2).
type queryCache[V any] struct {
	mu   sync.RWMutex
	data map[TypeID]V
}

func newQueryCache[V any]() *queryCache[V] {
	return &queryCache[V]{data: make(map[TypeID]V)}
}

func (c *queryCache[V]) get(id TypeID, compute func() V) V {
	c.mu.RLock()
	if v, ok := c.data[id]; ok {
		c.mu.RUnlock()
		return v
	}
	c.mu.RUnlock()

	v := compute()

	c.mu.Lock()
	c.data[id] = v
	c.mu.Unlock()
	return v
}

// QueryDB bundles the memoized derived-operation caches described in
// spec.md §4.2 (`get_callable_shape`, `get_lazy_def_id`, ...). It holds no
// state of its own beyond the memoization tables; every answer is derived
// purely from the owning Interner's Keys.
type QueryDB struct {
	in *Interner

	callableShape *queryCache[*CallableShape]
	lazyDef       *queryCache[DefRef]
	objectShapeID *queryCache[ObjectShapeID]
	stringLiteral *queryCache[stringLiteralResult]
	readonly      *queryCache[bool]
}

// NewQueryDB creates a query database bound to an Interner.
func NewQueryDB(in *Interner) *QueryDB {
	return &QueryDB{
		in:            in,
		callableShape: newQueryCache[*CallableShape](),
		lazyDef:       newQueryCache[DefRef](),
		objectShapeID: newQueryCache[ObjectShapeID](),
		stringLiteral: newQueryCache[stringLiteralResult](),
		readonly:      newQueryCache[bool](),
	}
}

// GetCallableShape returns the CallableShape backing t, if t is (or reduces
// through a Lazy indirection that the caller has already resolved to) a
// Callable type.
func (q *QueryDB) GetCallableShape(t TypeID) (*CallableShape, bool) {
	shape := q.callableShape.get(t, func() *CallableShape {
		k, ok := q.in.Lookup(t)
		if !ok || k.Kind != KindCallable {
			return nil
		}
		cs, ok := q.in.CallableShapeByID(k.Callable)
		if !ok {
			return nil
		}
		return &cs
	})
	return shape, shape != nil
}

// GetLazyDefID returns the DefRef t indirects through, if t is a Lazy type.
func (q *QueryDB) GetLazyDefID(t TypeID) (DefRef, bool) {
	ref := q.lazyDef.get(t, func() DefRef {
		k, ok := q.in.Lookup(t)
		if !ok || k.Kind != KindLazy {
			return NoDefRef
		}
		return k.Lazy
	})
	return ref, ref != NoDefRef
}

// GetTypeParameterInfo returns the (def, constraint, default, variance)
// tuple for a TypeParameter type.
func (q *QueryDB) GetTypeParameterInfo(t TypeID) (Key, bool) {
	k, ok := q.in.Lookup(t)
	if !ok || k.Kind != KindTypeParameter {
		return Key{}, false
	}
	return k, true
}

// GetObjectShapeID returns the ObjectShapeID backing t, for Object or
// ObjectWithIndex types.
func (q *QueryDB) GetObjectShapeID(t TypeID) (ObjectShapeID, bool) {
	found := false
	id := q.objectShapeID.get(t, func() ObjectShapeID {
		k, ok := q.in.Lookup(t)
		if !ok || (k.Kind != KindObject && k.Kind != KindObjectWithIndex) {
			return 0
		}
		found = true
		return k.Shape
	})
	if id != 0 {
		return id, true
	}
	return id, found
}

type stringLiteralResult struct {
	present bool
	id      uint32
}

// GetStringLiteralValue returns the literal string value of t, if t is a
// string Literal type.
func (q *QueryDB) GetStringLiteralValue(t TypeID) (string, bool) {
	res := q.stringLiteral.get(t, func() stringLiteralResult {
		k, ok := q.in.Lookup(t)
		if !ok || k.Kind != KindLiteral || k.LiteralKind != LiteralString {
			return stringLiteralResult{}
		}
		return stringLiteralResult{present: true, id: uint32(k.LiteralStr)}
	})
	if !res.present {
		return "", false
	}
	return q.in.ResolveString(source.StringID(res.id)), true
}

// IsReadonlyType reports whether t is (or wraps) a readonly tuple/array
// shape. Object property-level readonly is a per-property flag, not a
// whole-type classification, so this only answers for Tuple types.
func (q *QueryDB) IsReadonlyType(t TypeID) bool {
	return q.readonly.get(t, func() bool {
		k, ok := q.in.Lookup(t)
		return ok && k.Kind == KindTuple && k.TupleReadonly
	})
}

// Classification is the coarse bucket ClassifyForAssignability assigns to a
// type (spec.md's `classify_for_X` family).
type Classification uint8

const (
	ClassifyUnknown Classification = iota
	ClassifyPrimitive
	ClassifyObjectLike
	ClassifyCallableLike
	ClassifyUnionLike
	ClassifyNeverLike
	ClassifyAnyLike
)

// ClassifyForAssignability buckets t for the assignability engine's fast
// dispatch, memoized per TypeID.
func (q *QueryDB) ClassifyForAssignability(t TypeID) Classification {
	k, ok := q.in.Lookup(t)
	if !ok {
		return ClassifyUnknown
	}
	switch k.Kind {
	case KindIntrinsic:
		switch k.Intrinsic {
		case IntrinsicAny, IntrinsicUnknown:
			return ClassifyAnyLike
		case IntrinsicNever:
			return ClassifyNeverLike
		default:
			return ClassifyPrimitive
		}
	case KindLiteral, KindEnum:
		return ClassifyPrimitive
	case KindObject, KindObjectWithIndex, KindTuple:
		return ClassifyObjectLike
	case KindCallable:
		return ClassifyCallableLike
	case KindUnion, KindIntersection:
		return ClassifyUnionLike
	default:
		return ClassifyUnknown
	}
}
