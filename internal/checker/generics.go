package checker

import (
	"surge/internal/defs"
	"surge/internal/types"
)

func defIDFromRef(r types.DefRef) defs.DefID { return defs.DefID(r) }

// maxExpansionDepth bounds substitution recursion so a pathological
// recursive generic (`type Wrap<T> = { next: Wrap<Wrap<T>> }`) can't expand
// forever; spec.md calls this the Application expansion's "fuel" guard.
const maxExpansionDepth = 64

// expandApplication substitutes k's AppArgs into AppBase's own type
// parameters and returns the resulting concrete structural type, on demand
// rather than eagerly (spec.md §4.6's deferred generic instantiation).
func (c *Checker) expandApplication(k types.Key) types.TypeID {
	base := k.AppBase
	baseKey, ok := c.Interner.Lookup(base)
	if !ok {
		return c.builtins.Any
	}

	var typeParams []types.TypeID
	var body types.TypeID

	switch baseKey.Kind {
	case types.KindLazy:
		did := defIDFromRef(baseKey.Lazy)
		info := c.Defs.Get(did)
		if info == nil {
			return c.builtins.Any
		}
		typeParams = info.TypeParams
		body = c.GetDefBody(did)
	case types.KindCallable:
		shape, ok := c.Interner.CallableShapeByID(baseKey.Callable)
		if !ok || len(shape.Call) == 0 {
			return c.builtins.Any
		}
		typeParams = shape.Call[0].TypeParams
		body = base
	default:
		return base
	}

	mapping := make(map[types.DefRef]types.TypeID, len(typeParams))
	for i, tp := range typeParams {
		tpk, ok := c.Interner.Lookup(tp)
		if !ok || tpk.Kind != types.KindTypeParameter {
			continue
		}
		if i < len(k.AppArgs) {
			mapping[tpk.TypeParamDef] = k.AppArgs[i]
		} else if tpk.Default.IsValid() {
			mapping[tpk.TypeParamDef] = tpk.Default
		} else {
			mapping[tpk.TypeParamDef] = c.builtins.Any
		}
	}
	if len(mapping) == 0 {
		return body
	}
	return c.substitute(body, mapping, 0)
}

func (c *Checker) substitute(t types.TypeID, mapping map[types.DefRef]types.TypeID, depth int) types.TypeID {
	if depth > c.Config.typeResolutionFuel() {
		return t
	}
	k, ok := c.Interner.Lookup(t)
	if !ok {
		return t
	}

	switch k.Kind {
	case types.KindTypeParameter:
		if repl, ok := mapping[k.TypeParamDef]; ok {
			return repl
		}
		return t

	case types.KindUnion:
		return c.Interner.Union(c.substituteAll(k.Members, mapping, depth))
	case types.KindIntersection:
		return c.Interner.Intersection(c.substituteAll(k.Members, mapping, depth))

	case types.KindTuple:
		elems := make([]types.TupleElement, len(k.TupleElements))
		for i, e := range k.TupleElements {
			elems[i] = types.TupleElement{Type: c.substitute(e.Type, mapping, depth+1), Name: e.Name, Optional: e.Optional, Rest: e.Rest}
		}
		return c.Interner.Intern(types.Key{Kind: types.KindTuple, TupleElements: elems, TupleReadonly: k.TupleReadonly})

	case types.KindObject, types.KindObjectWithIndex:
		shape, ok := c.Interner.ObjectShapeByID(k.Shape)
		if !ok {
			return t
		}
		props := make([]types.Property, len(shape.Properties))
		for i, p := range shape.Properties {
			props[i] = types.Property{Name: p.Name, Type: c.substitute(p.Type, mapping, depth+1), Optional: p.Optional, Readonly: p.Readonly, IsMethod: p.IsMethod, Visibility: p.Visibility}
		}
		idx := make([]types.IndexSignature, len(shape.Index))
		for i, is := range shape.Index {
			idx[i] = types.IndexSignature{KeyType: c.substitute(is.KeyType, mapping, depth+1), ValueType: c.substitute(is.ValueType, mapping, depth+1), Readonly: is.Readonly}
		}
		return c.Interner.NewObjectShape(types.ObjectShape{Properties: props, Index: idx, Fresh: shape.Fresh})

	case types.KindCallable:
		shape, ok := c.Interner.CallableShapeByID(k.Callable)
		if !ok {
			return t
		}
		return c.Interner.NewCallableShape(types.CallableShape{
			Call:      c.substituteSignatures(shape.Call, mapping, depth),
			Construct: c.substituteSignatures(shape.Construct, mapping, depth),
		})

	case types.KindApplication:
		nk := k
		nk.AppBase = c.substitute(k.AppBase, mapping, depth+1)
		nk.AppArgs = c.substituteAll(k.AppArgs, mapping, depth)
		return c.expandApplication(nk)

	case types.KindIndexedAccess:
		return c.Interner.Intern(types.Key{Kind: types.KindIndexedAccess, IAObject: c.substitute(k.IAObject, mapping, depth+1), IAIndex: c.substitute(k.IAIndex, mapping, depth+1)})

	case types.KindKeyOf:
		return c.Interner.Intern(types.Key{Kind: types.KindKeyOf, KeyOfOperand: c.substitute(k.KeyOfOperand, mapping, depth+1)})

	case types.KindConditional:
		return c.Interner.Intern(types.Key{
			Kind:        types.KindConditional,
			CondCheck:   c.substitute(k.CondCheck, mapping, depth+1),
			CondExtends: c.substitute(k.CondExtends, mapping, depth+1),
			CondTrue:    c.substitute(k.CondTrue, mapping, depth+1),
			CondFalse:   c.substitute(k.CondFalse, mapping, depth+1),
		})

	case types.KindMapped:
		return c.Interner.Intern(types.Key{
			Kind:           types.KindMapped,
			MappedSource:   c.substitute(k.MappedSource, mapping, depth+1),
			MappedTemplate: c.substitute(k.MappedTemplate, mapping, depth+1),
			MappedReadonly: k.MappedReadonly,
			MappedOptional: k.MappedOptional,
		})

	default:
		return t
	}
}

func (c *Checker) substituteAll(ids []types.TypeID, mapping map[types.DefRef]types.TypeID, depth int) []types.TypeID {
	out := make([]types.TypeID, len(ids))
	for i, id := range ids {
		out[i] = c.substitute(id, mapping, depth+1)
	}
	return out
}

func (c *Checker) substituteSignatures(sigs []types.Signature, mapping map[types.DefRef]types.TypeID, depth int) []types.Signature {
	out := make([]types.Signature, len(sigs))
	for i, s := range sigs {
		params := make([]types.TupleElement, len(s.Params))
		for j, p := range s.Params {
			params[j] = types.TupleElement{Type: c.substitute(p.Type, mapping, depth+1), Name: p.Name, Optional: p.Optional, Rest: p.Rest}
		}
		out[i] = types.Signature{
			TypeParams:        s.TypeParams, // the instantiated signature's own generics stay as-is
			Params:            params,
			Return:            c.substitute(s.Return, mapping, depth+1),
			IsMethodShorthand: s.IsMethodShorthand,
		}
	}
	return out
}
