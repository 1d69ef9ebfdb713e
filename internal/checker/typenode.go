package checker

import (
	"surge/internal/ast"
	"surge/internal/binder"
	"surge/internal/diag"
	"surge/internal/source"
	"surge/internal/symbols"
	"surge/internal/types"
)

// ResolveTypeNode turns a type-syntax node (spec.md's type-space AST: type
// references, unions, tuples, mapped types, ...) into an interned TypeID.
// scope anchors identifier lookups for KindTypeReference, since the Binder
// never walks type annotations itself (only expression identifiers get an
// ExprSymbol entry) — see internal/binder/walk.go's resolveIdentifierUse.
func (c *Checker) ResolveTypeNode(node ast.NodeIndex, scope symbols.ScopeID) types.TypeID {
	if !node.IsValid() {
		return c.builtins.Any
	}
	key := nodeKey{File: c.res.File, Node: node}
	if t, ok := c.nodeTypes[key]; ok {
		return t
	}
	// Reserve the slot with the circular placeholder before recursing so a
	// self-referential type alias (`type T = T[]`) terminates instead of
	// looping; the definitive value overwrites it below once computed.
	c.nodeTypes[key] = c.Defs.Circular()

	t := c.computeTypeNode(node, scope)
	c.nodeTypes[key] = t
	return t
}

func (c *Checker) computeTypeNode(node ast.NodeIndex, scope symbols.ScopeID) types.TypeID {
	n := c.builder.Get(node)
	if n == nil {
		return c.builtins.Any
	}

	switch n.Kind {
	case ast.KindTypeReference:
		return c.resolveTypeReference(n, scope)

	case ast.KindUnionTypeNode:
		members := make([]types.TypeID, 0, len(n.Children))
		for _, m := range n.Children {
			members = append(members, c.ResolveTypeNode(m, scope))
		}
		return c.Interner.Union(members)

	case ast.KindIntersectionTypeNode:
		members := make([]types.TypeID, 0, len(n.Children))
		for _, m := range n.Children {
			members = append(members, c.ResolveTypeNode(m, scope))
		}
		return c.Interner.Intersection(members)

	case ast.KindArrayTypeNode:
		elem := c.ResolveTypeNode(n.Left, scope)
		return c.Interner.Intern(types.Key{Kind: types.KindTuple, TupleElements: []types.TupleElement{{Type: elem, Rest: true}}})

	case ast.KindTupleTypeNode:
		elems := make([]types.TupleElement, 0, len(n.Children))
		for _, el := range n.Children {
			en := c.builder.Get(el)
			if en == nil {
				continue
			}
			elems = append(elems, types.TupleElement{
				Type:     c.ResolveTypeNode(en.Left, scope),
				Name:     en.Name,
				Optional: en.Flags.Has(ast.FlagOptional),
				Rest:     en.Flags.Has(ast.FlagRest),
			})
		}
		return c.Interner.Intern(types.Key{Kind: types.KindTuple, TupleElements: elems, TupleReadonly: n.Flags.Has(ast.FlagReadonly)})

	case ast.KindFunctionTypeNode:
		return c.resolveFunctionTypeNode(n, scope)

	case ast.KindTypeLiteralNode:
		return c.resolveObjectTypeLiteral(n, scope)

	case ast.KindKeyOfTypeNode:
		return c.Interner.Intern(types.Key{Kind: types.KindKeyOf, KeyOfOperand: c.ResolveTypeNode(n.Left, scope)})

	case ast.KindIndexedAccessTypeNode:
		return c.Interner.Intern(types.Key{
			Kind:     types.KindIndexedAccess,
			IAObject: c.ResolveTypeNode(n.Left, scope),
			IAIndex:  c.ResolveTypeNode(n.Right, scope),
		})

	case ast.KindConditionalTypeNode:
		// Children holds [extends, trueBranch, falseBranch]; Left is the
		// checked type (`n.Left extends Children[0] ? Children[1] : Children[2]`).
		if len(n.Children) < 3 {
			return c.builtins.Any
		}
		return c.Interner.Intern(types.Key{
			Kind:        types.KindConditional,
			CondCheck:   c.ResolveTypeNode(n.Left, scope),
			CondExtends: c.ResolveTypeNode(n.Children[0], scope),
			CondTrue:    c.ResolveTypeNode(n.Children[1], scope),
			CondFalse:   c.ResolveTypeNode(n.Children[2], scope),
		})

	case ast.KindMappedTypeNode:
		return c.Interner.Intern(types.Key{
			Kind:           types.KindMapped,
			MappedSource:   c.ResolveTypeNode(n.Left, scope),
			MappedTemplate: c.ResolveTypeNode(n.Right, scope),
			MappedReadonly: tristateFor(n, ast.FlagReadonly),
			MappedOptional: tristateFor(n, ast.FlagOptional),
		})

	case ast.KindLiteralTypeNode:
		return c.resolveLiteralTypeNode(n)

	default:
		return c.builtins.Any
	}
}

func tristateFor(n *ast.Node, flag ast.Flags) types.Tristate {
	if n.Flags.Has(flag) {
		return types.TristatePlus
	}
	return types.TristateUnset
}

// resolveTypeReference resolves a named type (`Foo`, `Array<T>`, a type
// parameter) to its symbol and, for generic references with type arguments,
// builds an Application type the Checker later expands on demand.
func (c *Checker) resolveTypeReference(n *ast.Node, scope symbols.ScopeID) types.TypeID {
	sid, ok := binder.ResolveIdentifier(c.res, scope, n.Name)
	if !ok {
		c.errorf(diag.SemaCannotFind, n.Span, "Cannot find name '%s'.", c.builder.Strings.MustLookup(n.Name))
		return c.builtins.Any
	}
	base := c.GetTypeOfSymbol(c.res, c.builder, sid)
	if len(n.Children) == 0 {
		return base
	}
	args := make([]types.TypeID, 0, len(n.Children))
	for _, a := range n.Children {
		args = append(args, c.ResolveTypeNode(a, scope))
	}
	return c.Interner.Intern(types.Key{Kind: types.KindApplication, AppBase: base, AppArgs: args})
}

func (c *Checker) resolveFunctionTypeNode(n *ast.Node, scope symbols.ScopeID) types.TypeID {
	params := make([]types.TupleElement, 0, len(n.Children))
	for _, p := range n.Children {
		pn := c.builder.Get(p)
		if pn == nil {
			continue
		}
		params = append(params, types.TupleElement{
			Type:     c.ResolveTypeNode(pn.TypeAnn, scope),
			Name:     pn.Name,
			Optional: pn.Flags.Has(ast.FlagOptional),
			Rest:     pn.Flags.Has(ast.FlagRest),
		})
	}
	ret := c.ResolveTypeNode(n.Right, scope)
	shape := types.CallableShape{Call: []types.Signature{{Params: params, Return: ret}}}
	return c.Interner.NewCallableShape(shape)
}

// resolveObjectTypeLiteral builds an ObjectShape from a `{ ... }` type
// literal's members. Index signatures have no dedicated Kind in this AST
// yet (ast.Kind's type-syntax block carries no KindIndexSignature), so only
// named properties/methods are modeled here; a literal with only an index
// signature resolves to an empty shape rather than KindObjectWithIndex.
func (c *Checker) resolveObjectTypeLiteral(n *ast.Node, scope symbols.ScopeID) types.TypeID {
	shape := types.ObjectShape{}
	for _, m := range n.Children {
		mn := c.builder.Get(m)
		if mn == nil || mn.Name == source.NoStringID {
			continue
		}
		shape.Properties = append(shape.Properties, types.Property{
			Name:     mn.Name,
			Type:     c.ResolveTypeNode(mn.TypeAnn, scope),
			Optional: mn.Flags.Has(ast.FlagOptional),
			Readonly: mn.Flags.Has(ast.FlagReadonly),
			IsMethod: mn.Kind == ast.KindMethodDecl,
		})
	}
	return c.Interner.NewObjectShape(shape)
}

func (c *Checker) resolveLiteralTypeNode(n *ast.Node) types.TypeID {
	switch {
	case n.Text != 0:
		return c.Interner.Intern(types.Key{Kind: types.KindLiteral, LiteralKind: types.LiteralString, LiteralStr: n.Text})
	case n.Name != 0:
		// `true`/`false` literal type nodes reuse Name for the keyword text.
		s := c.builder.Strings.MustLookup(n.Name)
		if s == "true" || s == "false" {
			return c.Interner.Intern(types.Key{Kind: types.KindLiteral, LiteralKind: types.LiteralBoolean, LiteralBool: s == "true"})
		}
	}
	return c.Interner.Intern(types.Key{Kind: types.KindLiteral, LiteralKind: types.LiteralNumber, LiteralNum: n.Value})
}
