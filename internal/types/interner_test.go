package types

import "testing"

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	if b.Any == NoTypeID || b.String == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	str, ok := in.Lookup(b.String)
	if !ok || str.Kind != KindIntrinsic || str.Intrinsic != IntrinsicString {
		t.Fatalf("expected string intrinsic, got %+v", str)
	}
}

func TestInternDeduplicatesStructurallyEqualKeys(t *testing.T) {
	in := NewInterner(nil)
	name := in.InternString("x")
	a := in.Intern(Key{Kind: KindLiteral, LiteralKind: LiteralString, LiteralStr: name})
	b2 := in.Intern(Key{Kind: KindLiteral, LiteralKind: LiteralString, LiteralStr: name})
	if a != b2 {
		t.Fatalf("structurally identical literal types must share a TypeID")
	}
}

func TestLookupInverseOfIntern(t *testing.T) {
	in := NewInterner(nil)
	id := in.Intern(Key{Kind: KindLiteral, LiteralKind: LiteralNumber, LiteralNum: 42})
	k, ok := in.Lookup(id)
	if !ok || k.LiteralNum != 42 {
		t.Fatalf("lookup did not round-trip: %+v", k)
	}
}

func TestUnionCanonicalizesOrderAndDuplicates(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	u1 := in.Union([]TypeID{b.String, b.Number, b.String})
	u2 := in.Union([]TypeID{b.Number, b.String})
	if u1 != u2 {
		t.Fatalf("unions with the same member set must intern to the same TypeID regardless of order/dupes")
	}
}

func TestUnionSingletonCollapsesToMember(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	u := in.Union([]TypeID{b.String})
	if u != b.String {
		t.Fatalf("singleton union must reduce to its member")
	}
}

func TestUnionAnyAbsorbsAllMembers(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	u := in.Union([]TypeID{b.String, b.Any, b.Number})
	if u != b.Any {
		t.Fatalf("any must absorb a union")
	}
}

func TestUnionNeverIsRemoved(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	u := in.Union([]TypeID{b.String, b.Never})
	if u != b.String {
		t.Fatalf("never must be removed from a union, got %d want %d", u, b.String)
	}
}

func TestUnionAllNeverCollapsesToNever(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	u := in.Union([]TypeID{b.Never, b.Never})
	if u != b.Never {
		t.Fatalf("union of only never members must be never")
	}
}

func TestUnionFlattensNestedUnions(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	inner := in.Union([]TypeID{b.String, b.Number})
	flat := in.Union([]TypeID{inner, b.Boolean})
	direct := in.Union([]TypeID{b.String, b.Number, b.Boolean})
	if flat != direct {
		t.Fatalf("nested union must flatten to the same canonical form as the direct union")
	}
}

func TestObjectShapeRoundTrip(t *testing.T) {
	in := NewInterner(nil)
	name := in.InternString("prop")
	shapeType := in.NewObjectShape(ObjectShape{
		Properties: []Property{{Name: name, Type: in.Builtins().Number}},
	})
	k, ok := in.Lookup(shapeType)
	if !ok || k.Kind != KindObject {
		t.Fatalf("expected object kind, got %+v", k)
	}
	shape, ok := in.ObjectShapeByID(k.Shape)
	if !ok || len(shape.Properties) != 1 || shape.Properties[0].Name != name {
		t.Fatalf("shape did not round-trip: %+v", shape)
	}
}

func TestRelationCacheRespectsConfigBits(t *testing.T) {
	c := NewRelationCache()
	c.Set(1, 2, RelationAssignable, 0, true)
	if v, ok := c.Get(1, 2, RelationAssignable, 1); ok {
		t.Fatalf("a decision cached under one config must not leak to another, got %v", v)
	}
	if v, ok := c.Get(1, 2, RelationAssignable, 0); !ok || !v {
		t.Fatalf("expected cached true decision under matching config bits")
	}
}

func TestQueryDBMemoizesCallableShape(t *testing.T) {
	in := NewInterner(nil)
	q := NewQueryDB(in)
	fn := in.NewCallableShape(CallableShape{Call: []Signature{{Return: in.Builtins().Void}}})
	shape1, ok := q.GetCallableShape(fn)
	if !ok || shape1 == nil {
		t.Fatalf("expected callable shape")
	}
	shape2, _ := q.GetCallableShape(fn)
	if shape1 != shape2 {
		t.Fatalf("memoized query must return the same cached pointer on repeat lookups")
	}
}

func TestQueryDBGetStringLiteralValue(t *testing.T) {
	in := NewInterner(nil)
	q := NewQueryDB(in)
	name := in.InternString("hello")
	lit := in.Intern(Key{Kind: KindLiteral, LiteralKind: LiteralString, LiteralStr: name})
	v, ok := q.GetStringLiteralValue(lit)
	if !ok || v != "hello" {
		t.Fatalf("expected %q, got %q (ok=%v)", "hello", v, ok)
	}
	if _, ok := q.GetStringLiteralValue(in.Builtins().Number); ok {
		t.Fatalf("non-literal type must not classify as a string literal")
	}
}
