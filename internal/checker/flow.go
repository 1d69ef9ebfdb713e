package checker

import (
	"surge/internal/ast"
	"surge/internal/binder"
	"surge/internal/symbols"
	"surge/internal/types"
)

// maxFlowDepth bounds the backward walk over a file's flow graph; a real
// function body never nests anywhere near this deep, so hitting it means a
// label cycle slipped through binding rather than a legitimate program.
const maxFlowDepth = 256

// narrowFromFlow walks the flow graph backward from id, narrowing declared's
// observed type at every Condition node that tests sid (spec.md §4.4's
// narrowing algorithm: typeof guards, null/undefined checks, and truthiness
// all narrow the type seen at a later read without touching the symbol's
// declared type).
func (c *Checker) narrowFromFlow(id binder.FlowNodeID, sid symbols.SymbolID, declared types.TypeID, depth int) types.TypeID {
	if depth > maxFlowDepth || !id.IsValid() {
		return declared
	}
	node := c.res.Flow.Get(id)
	if node == nil {
		return declared
	}

	switch node.Kind {
	case binder.FlowStart:
		return declared

	case binder.FlowUnreachable:
		return c.builtins.Never

	case binder.FlowAssignment:
		if t, ok := c.assignmentNarrows(node.Node, sid); ok {
			return t
		}
		return c.narrowFromFlow(node.Antecedent, sid, declared, depth+1)

	case binder.FlowCondition:
		base := c.narrowFromFlow(node.Antecedent, sid, declared, depth+1)
		return c.applyConditionNarrowing(node, sid, base)

	case binder.FlowCall, binder.FlowArrayMutation, binder.FlowSwitchClause:
		return c.narrowFromFlow(node.Antecedent, sid, declared, depth+1)

	case binder.FlowBranchLabel, binder.FlowLoopLabel:
		if len(node.Antecedents) == 0 {
			return declared
		}
		members := make([]types.TypeID, 0, len(node.Antecedents))
		for _, a := range node.Antecedents {
			members = append(members, c.narrowFromFlow(a, sid, declared, depth+1))
		}
		return c.Interner.Union(members)

	default:
		return declared
	}
}

// assignmentNarrows reports the narrowed type an assignment/var-init flow
// node gives sid, if that node actually targets sid.
func (c *Checker) assignmentNarrows(node ast.NodeIndex, sid symbols.SymbolID) (types.TypeID, bool) {
	n := c.builder.Get(node)
	if n == nil {
		return types.NoTypeID, false
	}
	switch n.Kind {
	case ast.KindAssignmentExpr:
		if !c.exprIsSymbol(n.Left, sid) {
			return types.NoTypeID, false
		}
		return c.widen(c.GetTypeOfNode(n.Right)), true
	case ast.KindVarDecl:
		sym := c.res.Symbols.Get(sid)
		if sym == nil || !n.Init.IsValid() {
			return types.NoTypeID, false
		}
		for _, d := range sym.Declarations {
			if d == node {
				return c.widen(c.GetTypeOfNode(n.Init)), true
			}
		}
		return types.NoTypeID, false
	default:
		return types.NoTypeID, false
	}
}

func (c *Checker) exprIsSymbol(expr ast.NodeIndex, sid symbols.SymbolID) bool {
	n := c.builder.Get(expr)
	if n == nil || n.Kind != ast.KindIdentifier {
		return false
	}
	s, ok := binder.SymbolAt(c.res, expr)
	return ok && s == sid
}

// applyConditionNarrowing inspects a Condition flow node's guard expression
// and narrows base when the guard is one of the patterns spec.md names:
// `typeof x === "..."`, `x == null` / `x != null`, or bare truthiness (`if
// (x)`). Anything else passes base through unchanged — a sound but
// incomplete narrowing is the agreed tradeoff over false positives.
func (c *Checker) applyConditionNarrowing(node *binder.FlowNode, sid symbols.SymbolID, base types.TypeID) types.TypeID {
	guard := c.builder.Get(node.Expr)
	if guard == nil {
		return base
	}
	wantTrue := node.ConditionFlag == binder.ConditionTrue

	switch guard.Kind {
	case ast.KindIdentifier:
		if !c.exprIsSymbol(node.Expr, sid) {
			return base
		}
		return c.narrowTruthiness(base, wantTrue)

	case ast.KindUnaryExpr:
		if c.builder.Strings.MustLookup(guard.Text) == "!" && c.exprIsSymbol(guard.Left, sid) {
			return c.narrowTruthiness(base, !wantTrue)
		}
		return base

	case ast.KindBinaryExpr:
		return c.applyBinaryGuard(guard, sid, base, wantTrue)

	default:
		return base
	}
}

func (c *Checker) applyBinaryGuard(guard *ast.Node, sid symbols.SymbolID, base types.TypeID, wantTrue bool) types.TypeID {
	op := c.builder.Strings.MustLookup(guard.Text)

	// typeof x === "kind"
	if lhs := c.builder.Get(guard.Left); lhs != nil && lhs.Kind == ast.KindTypeOfExpr && c.exprIsSymbol(lhs.Left, sid) {
		if rhs := c.builder.Get(guard.Right); rhs != nil && rhs.Kind == ast.KindStringLiteral {
			kind := c.builder.Strings.MustLookup(rhs.Text)
			eq := op == "===" || op == "=="
			if !eq && op != "!==" && op != "!=" {
				return base
			}
			return c.narrowByTypeofTag(base, kind, eq == wantTrue)
		}
	}

	// x == null / x != null (also catches === undefined, covering the common
	// strict-null-check guard forms without a full literal-type lattice).
	if c.exprIsSymbol(guard.Left, sid) && isNullishLiteral(c.builder, guard.Right) {
		switch op {
		case "==", "===":
			return c.narrowNullish(base, !wantTrue)
		case "!=", "!==":
			return c.narrowNullish(base, wantTrue)
		}
	}
	if c.exprIsSymbol(guard.Right, sid) && isNullishLiteral(c.builder, guard.Left) {
		switch op {
		case "==", "===":
			return c.narrowNullish(base, !wantTrue)
		case "!=", "!==":
			return c.narrowNullish(base, wantTrue)
		}
	}

	return base
}

func isNullishLiteral(builder *ast.Builder, node ast.NodeIndex) bool {
	n := builder.Get(node)
	return n != nil && (n.Kind == ast.KindNullLiteral || n.Kind == ast.KindUndefinedLiteral)
}

// narrowNullish removes (removeNullish==true) or keeps only
// (removeNullish==false) the null/undefined members of a union, matching the
// true branch of an `x != null` / `x == null` guard respectively.
func (c *Checker) narrowNullish(t types.TypeID, removeNullish bool) types.TypeID {
	members := c.unionMembers(t)
	var kept []types.TypeID
	for _, m := range members {
		isNullish := m == c.builtins.Null || m == c.builtins.Undefined
		if isNullish != removeNullish {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return c.builtins.Never
	}
	return c.Interner.Union(kept)
}

// narrowTruthiness drops (truthy==true) or keeps-only (truthy==false) the
// falsy sentinel members of a union for a bare `if (x)` / `if (!x)` guard.
func (c *Checker) narrowTruthiness(t types.TypeID, truthy bool) types.TypeID {
	members := c.unionMembers(t)
	var kept []types.TypeID
	for _, m := range members {
		falsy := m == c.builtins.Null || m == c.builtins.Undefined || m == c.builtins.Void
		if k, ok := c.Interner.Lookup(m); ok && k.Kind == types.KindLiteral {
			switch k.LiteralKind {
			case types.LiteralBoolean:
				falsy = falsy || !k.LiteralBool
			case types.LiteralString:
				falsy = falsy || c.Interner.ResolveString(k.LiteralStr) == ""
			case types.LiteralNumber:
				falsy = falsy || k.LiteralNum == 0
			}
		}
		if falsy != truthy {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		if truthy {
			return t
		}
		return c.builtins.Never
	}
	return c.Interner.Union(kept)
}

// narrowByTypeofTag keeps only the union members whose runtime typeof tag
// matches kind (keep==true) or excludes them (keep==false).
func (c *Checker) narrowByTypeofTag(t types.TypeID, kind string, keep bool) types.TypeID {
	members := c.unionMembers(t)
	var out []types.TypeID
	for _, m := range members {
		if c.typeofTag(m) == kind == keep {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return c.builtins.Never
	}
	return c.Interner.Union(out)
}

func (c *Checker) typeofTag(t types.TypeID) string {
	k, ok := c.Interner.Lookup(t)
	if !ok {
		return ""
	}
	switch k.Kind {
	case types.KindIntrinsic:
		switch k.Intrinsic {
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
		case types.IntrinsicUndefined:
			return "undefined"
		case types.IntrinsicObject, types.IntrinsicNull:
			return "object"
		}
	case types.KindLiteral:
		switch k.LiteralKind {
		case types.LiteralString:
			return "string"
		case types.LiteralNumber:
			return "number"
		case types.LiteralBoolean:
			return "boolean"
		case types.LiteralBigInt:
			return "bigint"
		}
	case types.KindCallable:
		return "function"
	case types.KindObject, types.KindObjectWithIndex, types.KindTuple:
		return "object"
	}
	return ""
}

func (c *Checker) unionMembers(t types.TypeID) []types.TypeID {
	k, ok := c.Interner.Lookup(t)
	if !ok {
		return []types.TypeID{t}
	}
	if k.Kind != types.KindUnion {
		return []types.TypeID{t}
	}
	return k.Members
}
