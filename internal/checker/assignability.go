package checker

import (
	"surge/internal/source"
	"surge/internal/types"
)

// IsAssignable reports whether a value of type source can be assigned to a
// binding of type target (spec.md's core assignability judgement), consulting
// and populating the shared RelationCache so repeated checks of the same pair
// under the same CheckerConfig are free.
func (c *Checker) IsAssignable(source, target types.TypeID) bool {
	return c.related(source, target, types.RelationAssignable, 0)
}

// IsSubtype reports the stricter subtype relation (no `any` escape hatch in
// either direction), used by generic constraint checking.
func (c *Checker) IsSubtype(source, target types.TypeID) bool {
	return c.related(source, target, types.RelationSubtype, 0)
}

const maxRelationDepth = 128

func (c *Checker) related(source, target types.TypeID, rel types.Relation, depth int) bool {
	if source == target {
		return true
	}
	if depth > c.Config.recursionDepthLimit() {
		// A runaway recursive generic (spec.md's fuel guard); fail closed on
		// the stricter Subtype relation, succeed on Assignable so a cyclic
		// structural comparison degrades to `any`-like permissiveness rather
		// than a false error flood.
		return rel != types.RelationSubtype
	}

	bits := c.Config.bits()
	if cached, ok := c.Interner.Relations().Get(source, target, rel, bits); ok {
		return cached
	}

	result := c.computeRelated(source, target, rel, depth)
	c.Interner.Relations().Set(source, target, rel, bits, result)
	return result
}

func (c *Checker) computeRelated(source, target types.TypeID, rel types.Relation, depth int) bool {
	source = c.resolveIndirection(source)
	target = c.resolveIndirection(target)
	if source == target {
		return true
	}

	sk, sok := c.Interner.Lookup(source)
	tk, tok := c.Interner.Lookup(target)
	if !sok || !tok {
		return false
	}

	if rel == types.RelationAssignable && !c.Config.SoundMode {
		if sk.Kind == types.KindIntrinsic && sk.Intrinsic == types.IntrinsicAny {
			return true
		}
		if tk.Kind == types.KindIntrinsic && tk.Intrinsic == types.IntrinsicAny {
			return true
		}
	}
	if tk.Kind == types.KindIntrinsic && tk.Intrinsic == types.IntrinsicUnknown {
		return true
	}
	if sk.Kind == types.KindIntrinsic && sk.Intrinsic == types.IntrinsicNever {
		return true
	}

	if !c.Config.StrictNullChecks {
		if isNullOrUndefined(sk) {
			return true
		}
	}

	if sk.Kind == types.KindUnion {
		for _, m := range sk.Members {
			if !c.related(m, target, rel, depth+1) {
				return false
			}
		}
		return true
	}
	if tk.Kind == types.KindUnion {
		for _, m := range tk.Members {
			if c.related(source, m, rel, depth+1) {
				return true
			}
		}
		return false
	}

	if sk.Kind == types.KindIntersection {
		for _, m := range sk.Members {
			if c.related(m, target, rel, depth+1) {
				return true
			}
		}
		return false
	}
	if tk.Kind == types.KindIntersection {
		for _, m := range tk.Members {
			if !c.related(source, m, rel, depth+1) {
				return false
			}
		}
		return true
	}

	if sk.Kind == types.KindLiteral && tk.Kind == types.KindIntrinsic {
		return c.literalWidensTo(sk, tk)
	}

	if sk.Kind == types.KindTypeParameter {
		if sk.Constraint.IsValid() {
			return c.related(sk.Constraint, target, rel, depth+1)
		}
		return tk.Kind == types.KindIntrinsic && (tk.Intrinsic == types.IntrinsicUnknown || tk.Intrinsic == types.IntrinsicAny)
	}

	if sk.Kind == types.KindEnum && tk.Kind == types.KindEnum {
		return sk.Enum == tk.Enum
	}
	if sk.Kind == types.KindLiteral && tk.Kind == types.KindEnum {
		return false
	}

	switch tk.Kind {
	case types.KindObject, types.KindObjectWithIndex:
		return c.objectAssignable(source, target, rel, depth)
	case types.KindCallable:
		return c.callableAssignable(source, target, rel, depth)
	case types.KindTuple:
		return c.tupleAssignable(source, target, rel, depth)
	}

	if sk.Kind == types.KindIntrinsic && tk.Kind == types.KindIntrinsic {
		return sk.Intrinsic == tk.Intrinsic
	}

	return false
}

func isNullOrUndefined(k types.Key) bool {
	return k.Kind == types.KindIntrinsic && (k.Intrinsic == types.IntrinsicNull || k.Intrinsic == types.IntrinsicUndefined)
}

func (c *Checker) literalWidensTo(lit, intrinsic types.Key) bool {
	switch lit.LiteralKind {
	case types.LiteralString:
		return intrinsic.Intrinsic == types.IntrinsicString
	case types.LiteralNumber:
		return intrinsic.Intrinsic == types.IntrinsicNumber
	case types.LiteralBoolean:
		return intrinsic.Intrinsic == types.IntrinsicBoolean
	case types.LiteralBigInt:
		return intrinsic.Intrinsic == types.IntrinsicBigInt
	}
	return false
}

// resolveIndirection unwraps Lazy and Application type ids down to the
// structural shape assignability actually compares, expanding generic
// substitutions as needed (spec.md's "expand an Application on demand, never
// eagerly").
func (c *Checker) resolveIndirection(t types.TypeID) types.TypeID {
	for range [maxRelationDepth]struct{}{} {
		k, ok := c.Interner.Lookup(t)
		if !ok {
			return t
		}
		switch k.Kind {
		case types.KindLazy:
			t = c.GetDefBody(defIDFromRef(k.Lazy))
		case types.KindApplication:
			t = c.expandApplication(k)
		default:
			return t
		}
	}
	return t
}

func (c *Checker) objectShapeOf(t types.TypeID) (types.ObjectShape, bool) {
	resolved := c.resolveIndirection(t)
	k, ok := c.Interner.Lookup(resolved)
	if !ok || (k.Kind != types.KindObject && k.Kind != types.KindObjectWithIndex) {
		return types.ObjectShape{}, false
	}
	return c.Interner.ObjectShapeByID(k.Shape)
}

func (c *Checker) resolveLazy(t types.TypeID) types.TypeID {
	k, ok := c.Interner.Lookup(t)
	if !ok || k.Kind != types.KindLazy {
		return t
	}
	return c.GetDefBody(defIDFromRef(k.Lazy))
}

// objectAssignable implements structural width subtyping: every property
// target declares must exist (or be satisfied by an optional absence) on
// source, with a compatible (contravariant for writable/mutable properties is
// skipped here — spec.md treats object properties as covariant for simplicity,
// matching tsc's default non-strict property variance) type.
func (c *Checker) objectAssignable(source, target types.TypeID, rel types.Relation, depth int) bool {
	sourceShape, ok := c.objectShapeOf(source)
	if !ok {
		return false
	}
	targetShape, ok := c.objectShapeOf(target)
	if !ok {
		return false
	}

	if sourceShape.Fresh && rel == types.RelationAssignable && !c.Config.ExactOptionalPropertyTypes {
		if !c.noExcessProperties(sourceShape, targetShape) {
			return false
		}
	}

	for _, tp := range targetShape.Properties {
		sp, ok := findProperty(sourceShape, tp.Name)
		if !ok {
			if tp.Optional {
				continue
			}
			return false
		}
		if !c.related(sp.Type, tp.Type, rel, depth+1) {
			return false
		}
	}
	return true
}

func (c *Checker) noExcessProperties(source, target types.ObjectShape) bool {
	for _, sp := range source.Properties {
		if _, ok := findProperty(target, sp.Name); !ok {
			return false
		}
	}
	return true
}

func findProperty(shape types.ObjectShape, name source.StringID) (types.Property, bool) {
	for _, p := range shape.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return types.Property{}, false
}

func (c *Checker) callableAssignable(source, target types.TypeID, rel types.Relation, depth int) bool {
	sk, ok := c.Interner.Lookup(source)
	if !ok || sk.Kind != types.KindCallable {
		return false
	}
	tk, _ := c.Interner.Lookup(target)
	sourceShape, _ := c.Interner.CallableShapeByID(sk.Callable)
	targetShape, _ := c.Interner.CallableShapeByID(tk.Callable)
	if len(sourceShape.Call) == 0 || len(targetShape.Call) == 0 {
		return false
	}
	return c.signatureAssignable(sourceShape.Call[0], targetShape.Call[0], rel, depth)
}

// signatureAssignable checks one signature against another: return types
// covariant, parameter types contravariant under strict_function_types (or
// bivariant for a method-shorthand signature, matching tsc's long-standing
// method bivariance hole).
func (c *Checker) signatureAssignable(source, target types.Signature, rel types.Relation, depth int) bool {
	if !c.related(source.Return, target.Return, rel, depth+1) {
		return false
	}
	for i, tp := range target.Params {
		if i >= len(source.Params) {
			if tp.Optional || tp.Rest {
				continue
			}
			return false
		}
		sp := source.Params[i]
		contravariant := c.Config.StrictFunctionTypes && !target.IsMethodShorthand
		if contravariant {
			if !c.related(tp.Type, sp.Type, rel, depth+1) {
				return false
			}
		} else {
			if !c.related(tp.Type, sp.Type, rel, depth+1) && !c.related(sp.Type, tp.Type, rel, depth+1) {
				return false
			}
		}
	}
	return true
}

func (c *Checker) tupleAssignable(source, target types.TypeID, rel types.Relation, depth int) bool {
	sk, ok := c.Interner.Lookup(source)
	if !ok || sk.Kind != types.KindTuple {
		return false
	}
	tk, _ := c.Interner.Lookup(target)

	if len(tk.TupleElements) == 1 && tk.TupleElements[0].Rest {
		elemTarget := tk.TupleElements[0].Type
		for _, se := range sk.TupleElements {
			if !c.related(se.Type, elemTarget, rel, depth+1) {
				return false
			}
		}
		return true
	}

	if len(sk.TupleElements) < len(tk.TupleElements) {
		return false
	}
	for i, te := range tk.TupleElements {
		if !c.related(sk.TupleElements[i].Type, te.Type, rel, depth+1) {
			return false
		}
	}
	return true
}

// describe renders a TypeID as a short human-readable label for diagnostics.
// It is deliberately shallow (no recursive pretty-printer for object/union
// shapes) — tsc-parity diagnostic formatting is out of scope.
func (c *Checker) describe(t types.TypeID) string {
	k, ok := c.Interner.Lookup(t)
	if !ok {
		return "unknown"
	}
	switch k.Kind {
	case types.KindIntrinsic:
		return intrinsicName(k.Intrinsic)
	case types.KindLiteral:
		switch k.LiteralKind {
		case types.LiteralString:
			return "\"" + c.Interner.ResolveString(k.LiteralStr) + "\""
		case types.LiteralBoolean:
			if k.LiteralBool {
				return "true"
			}
			return "false"
		default:
			return "literal"
		}
	case types.KindObject, types.KindObjectWithIndex:
		return "object"
	case types.KindTuple:
		return "tuple"
	case types.KindCallable:
		return "function"
	case types.KindUnion:
		return "union"
	case types.KindIntersection:
		return "intersection"
	case types.KindLazy:
		if info := c.Defs.Get(defIDFromRef(k.Lazy)); info != nil {
			return c.Interner.ResolveString(info.Name)
		}
		return "lazy"
	default:
		return "type"
	}
}

func intrinsicName(i types.Intrinsic) string {
	switch i {
	case types.IntrinsicAny:
		return "any"
	case types.IntrinsicUnknown:
		return "unknown"
	case types.IntrinsicNever:
		return "never"
	case types.IntrinsicVoid:
		return "void"
	case types.IntrinsicNull:
		return "null"
	case types.IntrinsicUndefined:
		return "undefined"
	case types.IntrinsicString:
		return "string"
	case types.IntrinsicNumber:
		return "number"
	case types.IntrinsicBoolean:
		return "boolean"
	case types.IntrinsicBigInt:
		return "bigint"
	case types.IntrinsicSymbol:
		return "symbol"
	case types.IntrinsicObject:
		return "object"
	case types.IntrinsicError:
		return "error"
	default:
		return "any"
	}
}
