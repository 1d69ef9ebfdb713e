package checker

import (
	"surge/internal/ast"
	"surge/internal/binder"
	"surge/internal/diag"
	"surge/internal/symbols"
	"surge/internal/types"
)

// computeNodeType dispatches on an expression node's Kind to infer its type
// (spec.md's get_type_of_node). It never reports diagnostics itself — that is
// checkExpr's job, run from the statement walk — so a pure type query (e.g.
// from inferReturnType) never double-reports an error already surfaced once
// from the statement walk.
func (c *Checker) computeNodeType(node ast.NodeIndex) types.TypeID {
	n := c.builder.Get(node)
	if n == nil {
		return c.builtins.Any
	}

	switch n.Kind {
	case ast.KindIdentifier:
		return c.typeOfIdentifier(node, n)

	case ast.KindStringLiteral:
		return c.Interner.Intern(types.Key{Kind: types.KindLiteral, LiteralKind: types.LiteralString, LiteralStr: n.Text})
	case ast.KindNumericLiteral:
		return c.Interner.Intern(types.Key{Kind: types.KindLiteral, LiteralKind: types.LiteralNumber, LiteralNum: n.Value})
	case ast.KindBooleanLiteral:
		return c.Interner.Intern(types.Key{Kind: types.KindLiteral, LiteralKind: types.LiteralBoolean, LiteralBool: n.Value != 0})
	case ast.KindBigIntLiteral:
		return c.Interner.Intern(types.Key{Kind: types.KindLiteral, LiteralKind: types.LiteralBigInt, LiteralBig: n.Text})
	case ast.KindNullLiteral:
		return c.builtins.Null
	case ast.KindUndefinedLiteral:
		return c.builtins.Undefined

	case ast.KindTemplateExpr:
		return c.builtins.String

	case ast.KindArrayLiteralExpr:
		return c.typeOfArrayLiteral(n)
	case ast.KindObjectLiteralExpr:
		return c.typeOfObjectLiteral(n)

	case ast.KindParam:
		if n.TypeAnn.IsValid() {
			return c.ResolveTypeNode(n.TypeAnn, c.res.FileScope)
		}
		return c.builtins.Any

	case ast.KindBinaryExpr:
		return c.typeOfBinary(n)
	case ast.KindUnaryExpr:
		return c.typeOfUnary(n)
	case ast.KindAssignmentExpr:
		return c.GetTypeOfNode(n.Right)
	case ast.KindConditionalExpr:
		return c.typeOfConditional(n)

	case ast.KindPropertyAccessExpr:
		return c.typeOfPropertyAccess(node, n)
	case ast.KindElementAccessExpr:
		return c.typeOfElementAccess(n)

	case ast.KindCallExpr:
		return c.typeOfCall(n)
	case ast.KindNewExpr:
		return c.typeOfNew(n)

	case ast.KindArrowFunction, ast.KindFunctionExpr:
		return c.computeFunctionType(c.builder, node, n)

	case ast.KindAsExpr:
		if n.TypeAnn.IsValid() {
			return c.ResolveTypeNode(n.TypeAnn, c.res.FileScope)
		}
		return c.GetTypeOfNode(n.Left)

	case ast.KindSpreadElement, ast.KindAwaitExpr, ast.KindYieldExpr:
		return c.GetTypeOfNode(n.Left)

	case ast.KindTypeOfExpr:
		return c.builtins.String

	default:
		return c.builtins.Any
	}
}

func (c *Checker) typeOfIdentifier(node ast.NodeIndex, n *ast.Node) types.TypeID {
	sid, ok := binder.SymbolAt(c.res, node)
	if !ok {
		sid, ok = binder.ResolveIdentifier(c.res, c.scopeAt(node, c.res.FileScope), n.Name)
	}
	if !ok {
		c.errorf(diag.SemaCannotFind, n.Span, "Cannot find name '%s'.", c.builder.Strings.MustLookup(n.Name))
		return c.builtins.Any
	}
	t := c.GetTypeOfSymbol(c.res, c.builder, sid)
	return c.narrow(node, sid, t)
}

// narrow applies flow-sensitive narrowing at node's program point, walking
// the Binder's flow graph backward from FlowAt(node) the way spec.md's
// narrowing algorithm does (typeof guards, equality/truthiness checks on the
// same symbol narrow its observed type without mutating the symbol's
// declared type).
func (c *Checker) narrow(node ast.NodeIndex, sid symbols.SymbolID, declared types.TypeID) types.TypeID {
	flowID, ok := binder.FlowAt(c.res, node)
	if !ok {
		return declared
	}
	key := flowKey{File: c.res.File, Flow: flowID, Sym: sid, Declared: declared}
	if t, ok := c.flowMemo[key]; ok {
		return t
	}
	t := c.narrowFromFlow(flowID, sid, declared, 0)
	c.flowMemo[key] = t
	return t
}

func (c *Checker) typeOfArrayLiteral(n *ast.Node) types.TypeID {
	elems := make([]types.TupleElement, 0, len(n.Children))
	for _, el := range n.Children {
		en := c.builder.Get(el)
		if en != nil && en.Kind == ast.KindSpreadElement {
			elems = append(elems, types.TupleElement{Type: c.GetTypeOfNode(en.Left), Rest: true})
			continue
		}
		elems = append(elems, types.TupleElement{Type: c.widen(c.GetTypeOfNode(el))})
	}
	return c.Interner.Intern(types.Key{Kind: types.KindTuple, TupleElements: elems})
}

func (c *Checker) typeOfObjectLiteral(n *ast.Node) types.TypeID {
	shape := types.ObjectShape{Fresh: true}
	for _, m := range n.Children {
		mn := c.builder.Get(m)
		if mn == nil {
			continue
		}
		prop := types.Property{
			Name:     mn.Name,
			Optional: mn.Flags.Has(ast.FlagOptional),
			Readonly: mn.Flags.Has(ast.FlagReadonly),
			IsMethod: mn.Kind == ast.KindMethodDecl,
		}
		switch {
		case mn.Kind == ast.KindMethodDecl:
			prop.Type = c.computeFunctionType(c.builder, m, mn)
		case mn.Init.IsValid():
			prop.Type = c.widen(c.GetTypeOfNode(mn.Init))
		default:
			prop.Type = c.builtins.Any
		}
		shape.Properties = append(shape.Properties, prop)
	}
	return c.Interner.NewObjectShape(shape)
}

// typeOfBinary infers the result type of a binary expression from its
// operator token (held in Text per the Node.Text field-overload convention)
// without needing a dedicated operator enum.
func (c *Checker) typeOfBinary(n *ast.Node) types.TypeID {
	op := c.builder.Strings.MustLookup(n.Text)
	switch op {
	case "+":
		lt, rt := c.GetTypeOfNode(n.Left), c.GetTypeOfNode(n.Right)
		if c.isStringLike(lt) || c.isStringLike(rt) {
			return c.builtins.String
		}
		return c.builtins.Number
	case "-", "*", "/", "%", "**", "&", "|", "^", "<<", ">>", ">>>":
		return c.builtins.Number
	case "&&":
		return c.GetTypeOfNode(n.Right)
	case "||", "??":
		lt, rt := c.GetTypeOfNode(n.Left), c.GetTypeOfNode(n.Right)
		return c.Interner.Union([]types.TypeID{lt, rt})
	case "==", "!=", "===", "!==", "<", ">", "<=", ">=", "in", "instanceof":
		return c.builtins.Boolean
	default:
		return c.builtins.Any
	}
}

func (c *Checker) isStringLike(t types.TypeID) bool {
	k, ok := c.Interner.Lookup(t)
	if !ok {
		return false
	}
	if k.Kind == types.KindLiteral && k.LiteralKind == types.LiteralString {
		return true
	}
	return k.Kind == types.KindIntrinsic && k.Intrinsic == types.IntrinsicString
}

func (c *Checker) typeOfUnary(n *ast.Node) types.TypeID {
	op := c.builder.Strings.MustLookup(n.Text)
	switch op {
	case "!":
		return c.builtins.Boolean
	case "typeof":
		return c.builtins.String
	case "void":
		return c.builtins.Undefined
	default:
		return c.builtins.Number
	}
}

func (c *Checker) typeOfConditional(n *ast.Node) types.TypeID {
	if !n.Right.IsValid() || len(n.Children) < 1 {
		return c.builtins.Any
	}
	return c.Interner.Union([]types.TypeID{c.GetTypeOfNode(n.Right), c.GetTypeOfNode(n.Children[0])})
}

func (c *Checker) typeOfPropertyAccess(node ast.NodeIndex, n *ast.Node) types.TypeID {
	objType := c.GetTypeOfNode(n.Left)
	shape, ok := c.objectShapeOf(objType)
	if !ok {
		return c.builtins.Any
	}
	name := c.builder.Strings.MustLookup(n.Name)
	for _, p := range shape.Properties {
		if c.builder.Strings.MustLookup(p.Name) == name {
			if n.Flags.Has(ast.FlagOptional) {
				return c.Interner.Union([]types.TypeID{p.Type, c.builtins.Undefined})
			}
			return p.Type
		}
	}
	c.errorf(diag.SemaPropertyMissing, n.Span, "Property '%s' does not exist on type '%s'.", name, c.describe(objType))
	return c.builtins.Any
}

func (c *Checker) typeOfElementAccess(n *ast.Node) types.TypeID {
	objType := c.GetTypeOfNode(n.Left)
	k, ok := c.Interner.Lookup(objType)
	if !ok {
		return c.builtins.Any
	}
	if k.Kind == types.KindTuple {
		if len(k.TupleElements) == 0 {
			return c.builtins.Any
		}
		members := make([]types.TypeID, 0, len(k.TupleElements))
		for _, el := range k.TupleElements {
			members = append(members, el.Type)
		}
		if c.Config.NoUncheckedIndexedAccess {
			members = append(members, c.builtins.Undefined)
		}
		return c.Interner.Union(members)
	}
	if shape, ok := c.objectShapeOf(objType); ok && len(shape.Index) > 0 {
		return shape.Index[0].ValueType
	}
	return c.builtins.Any
}

func (c *Checker) typeOfCall(n *ast.Node) types.TypeID {
	calleeType := c.GetTypeOfNode(n.Left)
	sig, ok := c.firstCallSignature(calleeType)
	if !ok {
		c.errorf(diag.SemaNotAFunction, n.Span, "Type '%s' has no call signatures.", c.describe(calleeType))
		return c.builtins.Any
	}
	c.checkArguments(n.Children, sig)
	return sig.Return
}

func (c *Checker) typeOfNew(n *ast.Node) types.TypeID {
	calleeType := c.GetTypeOfNode(n.Left)
	k, ok := c.Interner.Lookup(calleeType)
	if !ok {
		return c.builtins.Any
	}
	if k.Kind == types.KindLazy {
		return c.resolveLazy(calleeType)
	}
	if k.Kind == types.KindCallable {
		shape, ok := c.Interner.CallableShapeByID(k.Callable)
		if ok && len(shape.Construct) > 0 {
			return shape.Construct[0].Return
		}
	}
	return calleeType
}

func (c *Checker) firstCallSignature(t types.TypeID) (types.Signature, bool) {
	k, ok := c.Interner.Lookup(t)
	if !ok {
		return types.Signature{}, false
	}
	if k.Kind != types.KindCallable {
		return types.Signature{}, false
	}
	shape, ok := c.Interner.CallableShapeByID(k.Callable)
	if !ok || len(shape.Call) == 0 {
		return types.Signature{}, false
	}
	return shape.Call[0], true
}

func (c *Checker) checkArguments(args []ast.NodeIndex, sig types.Signature) {
	for i, a := range args {
		if i >= len(sig.Params) {
			if len(sig.Params) > 0 && sig.Params[len(sig.Params)-1].Rest {
				i = len(sig.Params) - 1
			} else {
				break
			}
		}
		p := sig.Params[i]
		argType := c.GetTypeOfNode(a)
		want := p.Type
		if p.Rest {
			if ek, ok := c.Interner.Lookup(p.Type); ok && ek.Kind == types.KindTuple && len(ek.TupleElements) > 0 {
				want = ek.TupleElements[0].Type
			}
		}
		if !c.IsAssignable(argType, want) {
			c.errorf(diag.SemaArgNotAssignable, n0Span(c.builder, a),
				"Argument of type '%s' is not assignable to parameter of type '%s'.", c.describe(argType), c.describe(want))
		}
	}
}

// checkExpr type-checks an expression in statement position, reporting
// diagnostics for assignment and call-argument mismatches; other expression
// kinds recurse into their operands without a standalone check of their own
// (their type is still computed and memoized through GetTypeOfNode).
func (c *Checker) checkExpr(node ast.NodeIndex, scope symbols.ScopeID) {
	n := c.builder.Get(node)
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindAssignmentExpr:
		lt := c.GetTypeOfNode(n.Left)
		rt := c.GetTypeOfNode(n.Right)
		op := c.builder.Strings.MustLookup(n.Text)
		if op == "=" && !c.IsAssignable(rt, lt) {
			c.errorf(diag.SemaNotAssignable, n.Span, "Type '%s' is not assignable to type '%s'.", c.describe(rt), c.describe(lt))
		}
		c.checkExpr(n.Left, scope)
		c.checkExpr(n.Right, scope)
	case ast.KindCallExpr, ast.KindNewExpr:
		c.GetTypeOfNode(node)
		c.checkExpr(n.Left, scope)
		for _, a := range n.Children {
			c.checkExpr(a, scope)
		}
	case ast.KindBinaryExpr:
		c.GetTypeOfNode(node)
		c.checkExpr(n.Left, scope)
		c.checkExpr(n.Right, scope)
	case ast.KindConditionalExpr:
		c.checkExpr(n.Left, scope)
		c.checkExpr(n.Right, scope)
		for _, ch := range n.Children {
			c.checkExpr(ch, scope)
		}
	case ast.KindPropertyAccessExpr, ast.KindElementAccessExpr:
		c.GetTypeOfNode(node)
		c.checkExpr(n.Left, scope)
		if n.Kind == ast.KindElementAccessExpr {
			c.checkExpr(n.Right, scope)
		}
	case ast.KindArrayLiteralExpr, ast.KindObjectLiteralExpr:
		c.GetTypeOfNode(node)
		for _, ch := range n.Children {
			c.checkExpr(ch, scope)
		}
	case ast.KindArrowFunction, ast.KindFunctionExpr:
		c.checkFunctionLike(node, n, c.scopeAt(node, scope))
	default:
		c.GetTypeOfNode(node)
	}
}
