package checker

import (
	"surge/internal/ast"
	"surge/internal/binder"
	"surge/internal/defs"
	"surge/internal/diag"
	"surge/internal/source"
	"surge/internal/symbols"
	"surge/internal/types"
)

// computeSymbolType dispatches on sym's declaration shape to build its
// declared type (spec.md's get_type_of_symbol body, the part that runs once
// the resolution-stack cycle guard in GetTypeOfSymbol has already fired).
func (c *Checker) computeSymbolType(res *binder.Result, builder *ast.Builder, sym *symbols.Symbol) types.TypeID {
	if !sym.ValueDeclaration.IsValid() && len(sym.Declarations) == 0 {
		return c.builtins.Any
	}
	decl := sym.ValueDeclaration
	if !decl.IsValid() {
		decl = sym.Declarations[0]
	}
	n := builder.Get(decl)
	if n == nil {
		return c.builtins.Any
	}

	switch n.Kind {
	case ast.KindVarDecl:
		return c.computeVarType(res, builder, n)

	case ast.KindFunctionDecl, ast.KindMethodDecl, ast.KindConstructor, ast.KindAccessorDecl,
		ast.KindArrowFunction, ast.KindFunctionExpr:
		if sym.Flags.Any(symbols.FlagVariable | symbols.FlagBlockScopedVariable | symbols.FlagFunctionScopedVariable) {
			// A parameter symbol: the binder declares parameters against the
			// enclosing function's own node (internal/binder/walk.go's
			// bindFunctionLike), so the function's FuncInfo.Params must be
			// searched by name rather than read off a dedicated node.
			return c.computeParamType(res, builder, decl, sym.EscapedName)
		}
		return c.computeFunctionType(builder, decl, n)

	case ast.KindClassDecl:
		return c.computeLazyDef(builder, decl, n, defs.KindClass, sym)

	case ast.KindInterfaceDecl:
		return c.computeLazyDef(builder, decl, n, defs.KindInterface, sym)

	case ast.KindEnumDecl:
		return c.computeLazyDef(builder, decl, n, defs.KindEnum, sym)

	case ast.KindModuleDecl:
		return c.computeLazyDef(builder, decl, n, defs.KindNamespace, sym)

	case ast.KindTypeAliasDecl:
		return c.computeTypeAlias(res, builder, decl, n)

	case ast.KindTypeParam:
		return c.computeTypeParam(res, builder, decl, n, sym)

	case ast.KindEnumMember:
		return c.computeEnumMemberType(builder, n)

	default:
		return c.builtins.Any
	}
}

func (c *Checker) computeVarType(res *binder.Result, builder *ast.Builder, n *ast.Node) types.TypeID {
	scope := c.scopeOfFile(res)
	if n.TypeAnn.IsValid() {
		return c.ResolveTypeNode(n.TypeAnn, scope)
	}
	if n.Init.IsValid() {
		return c.widen(c.GetTypeOfNode(n.Init))
	}
	if c.Config.NoImplicitAny {
		c.errorf(diag.SemaImplicitAny, n.Span, "Variable implicitly has an 'any' type.")
	}
	return c.builtins.Any
}

// scopeOfFile is the fallback scope used whenever a declaration's own scope
// cannot cheaply be recovered (e.g. a var decl reached directly from
// computeSymbolType rather than through the statement walk that already
// knows its enclosing scope). File scope is correct for every top-level
// declaration and a safe, if occasionally too-narrow-missing, default for
// nested ones — narrowing cases route through checkStatement's own scope
// tracking instead of this helper.
func (c *Checker) scopeOfFile(res *binder.Result) symbols.ScopeID {
	return res.FileScope
}

func (c *Checker) computeParamType(res *binder.Result, builder *ast.Builder, fnDecl ast.NodeIndex, name source.StringID) types.TypeID {
	info, ok := builder.GetFunction(fnDecl)
	if !ok || info == nil {
		return c.builtins.Any
	}
	scope := c.scopeAt(fnDecl, c.scopeOfFile(res))
	for _, p := range info.Params {
		if p.Name != name {
			continue
		}
		if p.TypeAnn.IsValid() {
			t := c.ResolveTypeNode(p.TypeAnn, scope)
			if p.Flags.Has(ast.FlagRest) {
				return c.Interner.Intern(types.Key{Kind: types.KindTuple, TupleElements: []types.TupleElement{{Type: t, Rest: true}}})
			}
			return t
		}
		if p.Default.IsValid() {
			return c.widen(c.GetTypeOfNode(p.Default))
		}
		if c.Config.NoImplicitAny {
			c.errorf(diag.SemaImplicitAny, n0Span(builder, fnDecl), "Parameter '%s' implicitly has an 'any' type.", c.Interner.ResolveString(name))
		}
		return c.builtins.Any
	}
	return c.builtins.Any
}

func n0Span(builder *ast.Builder, idx ast.NodeIndex) source.Span {
	if n := builder.Get(idx); n != nil {
		return n.Span
	}
	return source.Span{}
}

func (c *Checker) computeFunctionType(builder *ast.Builder, decl ast.NodeIndex, n *ast.Node) types.TypeID {
	info, ok := builder.GetFunction(decl)
	if !ok || info == nil {
		return c.builtins.Any
	}
	scope := c.scopeAt(decl, c.res.FileScope)
	params := make([]types.TupleElement, 0, len(info.Params))
	for _, p := range info.Params {
		var t types.TypeID
		switch {
		case p.TypeAnn.IsValid():
			t = c.ResolveTypeNode(p.TypeAnn, scope)
		case p.Default.IsValid():
			t = c.widen(c.GetTypeOfNode(p.Default))
		default:
			t = c.builtins.Any
		}
		params = append(params, types.TupleElement{
			Type:     t,
			Name:     p.Name,
			Optional: p.Flags.Has(ast.FlagOptional) || p.Default.IsValid(),
			Rest:     p.Flags.Has(ast.FlagRest),
		})
	}
	var ret types.TypeID
	switch {
	case info.ReturnType.IsValid():
		ret = c.ResolveTypeNode(info.ReturnType, scope)
	case info.Body.IsValid():
		ret = c.inferReturnType(info.Body)
	default:
		ret = c.builtins.Any
	}
	sig := types.Signature{Return: ret, Params: params, IsMethodShorthand: n.Kind == ast.KindMethodDecl}
	for _, tp := range info.TypeParams {
		sig.TypeParams = append(sig.TypeParams, c.ResolveTypeNode(tp, scope))
	}
	return c.Interner.NewCallableShape(types.CallableShape{Call: []types.Signature{sig}})
}

// inferReturnType walks a function body's return statements (descending into
// nested statements, but not into nested functions or classes) and unions
// their operand types; a body with no return (or only bare `return`)
// infers void, matching tsc's control-flow-based return-type inference for
// un-annotated functions.
func (c *Checker) inferReturnType(body ast.NodeIndex) types.TypeID {
	n := c.builder.Get(body)
	if n == nil {
		return c.builtins.Void
	}
	var rets []types.TypeID
	var walk func(ast.NodeIndex)
	walk = func(idx ast.NodeIndex) {
		stmt := c.builder.Get(idx)
		if stmt == nil {
			return
		}
		switch stmt.Kind {
		case ast.KindReturnStmt:
			if stmt.Left.IsValid() {
				rets = append(rets, c.GetTypeOfNode(stmt.Left))
			} else {
				rets = append(rets, c.builtins.Void)
			}
		case ast.KindFunctionDecl, ast.KindArrowFunction, ast.KindFunctionExpr, ast.KindClassDecl:
			return // don't descend into nested function/class scopes
		default:
			for _, ch := range stmt.Children {
				walk(ch)
			}
			if stmt.Left.IsValid() {
				walk(stmt.Left)
			}
			if stmt.Right.IsValid() {
				walk(stmt.Right)
			}
		}
	}
	if n.Kind == ast.KindBlock {
		for _, s := range n.Children {
			walk(s)
		}
	} else {
		rets = append(rets, c.GetTypeOfNode(body))
	}
	if len(rets) == 0 {
		return c.builtins.Void
	}
	return c.Interner.Union(rets)
}

// computeLazyDef registers a fresh Definition for a class/interface/enum/
// namespace declaration and returns a Lazy TypeID indirecting through it;
// the structural body is computed later, on first observation, via
// defs.Store.GetBody's cycle guard (spec.md's self-referential-type rule).
func (c *Checker) computeLazyDef(builder *ast.Builder, decl ast.NodeIndex, n *ast.Node, kind defs.Kind, sym *symbols.Symbol) types.TypeID {
	did := c.Defs.New(defs.Info{Kind: kind, Name: sym.EscapedName, FileID: sym.OriginFile, Span: n.Span})
	c.defSites[did] = defSite{res: c.res, builder: builder, decl: decl, kind: kind}
	return c.Interner.Intern(types.Key{Kind: types.KindLazy, Lazy: types.DefRef(did)})
}

func (c *Checker) computeTypeAlias(res *binder.Result, builder *ast.Builder, decl ast.NodeIndex, n *ast.Node) types.TypeID {
	info, ok := builder.GetTypeAlias(decl)
	if !ok || info == nil {
		return c.builtins.Any
	}
	scope := c.scopeAt(decl, res.FileScope)
	return c.ResolveTypeNode(info.Value, scope)
}

func (c *Checker) computeTypeParam(res *binder.Result, builder *ast.Builder, decl ast.NodeIndex, n *ast.Node, sym *symbols.Symbol) types.TypeID {
	scope := c.scopeAt(decl, res.FileScope)
	key := types.Key{
		Kind:          types.KindTypeParameter,
		TypeParamDef:  types.DefRef(sym.ID),
		TypeParamName: sym.EscapedName,
	}
	if n.TypeAnn.IsValid() {
		key.Constraint = c.ResolveTypeNode(n.TypeAnn, scope)
	}
	if n.Init.IsValid() {
		key.Default = c.ResolveTypeNode(n.Init, scope)
	}
	return c.Interner.Intern(key)
}

func (c *Checker) computeEnumMemberType(builder *ast.Builder, n *ast.Node) types.TypeID {
	if n.Init.IsValid() {
		return c.widen(c.GetTypeOfNode(n.Init))
	}
	return c.builtins.Number
}

// widen turns a fresh literal type into its base primitive, the way tsc
// widens `let x = "a"` to `string` (but not `const x = "a"`, which keeps the
// literal type — callers needing the literal form read GetTypeOfNode
// directly instead of going through widen).
func (c *Checker) widen(t types.TypeID) types.TypeID {
	k, ok := c.Interner.Lookup(t)
	if !ok || k.Kind != types.KindLiteral {
		return t
	}
	switch k.LiteralKind {
	case types.LiteralString:
		return c.builtins.String
	case types.LiteralNumber:
		return c.builtins.Number
	case types.LiteralBoolean:
		return c.builtins.Boolean
	default:
		return t
	}
}
