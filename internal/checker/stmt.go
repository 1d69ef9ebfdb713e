package checker

import (
	"surge/internal/ast"
	"surge/internal/binder"
	"surge/internal/diag"
	"surge/internal/symbols"
	"surge/internal/types"
)

// checkStatement type-checks one statement and recurses into its children,
// threading the lexical scope the way internal/binder's own bindStatement
// walk does (see walk.go's bindStatement/bindBlock/bindIf/...). outer is the
// scope the statement itself was declared/evaluated in; inner is outer
// unless stmt is itself a scope container (function, class, block, ...), in
// which case it's the scope that container created.
func (c *Checker) checkStatement(stmt ast.NodeIndex, outer symbols.ScopeID) {
	n := c.builder.Get(stmt)
	if n == nil {
		return
	}
	inner := c.scopeAt(stmt, outer)

	switch n.Kind {
	case ast.KindVarDecl:
		c.checkVarDecl(stmt, n, outer)

	case ast.KindFunctionDecl, ast.KindMethodDecl, ast.KindConstructor, ast.KindAccessorDecl,
		ast.KindArrowFunction, ast.KindFunctionExpr:
		c.checkFunctionLike(stmt, n, inner)

	case ast.KindClassDecl, ast.KindInterfaceDecl, ast.KindEnumDecl, ast.KindTypeAliasDecl:
		c.checkNominalDecl(stmt, n, outer)

	case ast.KindModuleDecl:
		c.checkNominalDecl(stmt, n, outer)
		mi, ok := c.builder.GetModule(stmt)
		if ok && mi != nil {
			for _, s := range mi.Body {
				c.checkStatement(s, inner)
			}
		}

	case ast.KindBlock:
		for _, s := range n.Children {
			c.checkStatement(s, inner)
		}

	case ast.KindExpressionStmt:
		c.checkExprStatement(n.Left, outer)

	case ast.KindIfStmt:
		c.checkCondition(n.Left, outer)
		if n.Right.IsValid() {
			c.checkStatement(n.Right, outer)
		}
		for _, s := range n.Children {
			c.checkStatement(s, outer)
		}

	case ast.KindForStmt:
		for _, s := range n.Children {
			c.checkStatement(s, inner)
		}

	case ast.KindForOfStmt, ast.KindForInStmt:
		if n.Right.IsValid() {
			c.checkExprStatement(n.Right, outer)
		}
		for _, s := range n.Children {
			c.checkStatement(s, inner)
		}

	case ast.KindWhileStmt, ast.KindDoWhileStmt:
		c.checkCondition(n.Left, outer)
		if n.Right.IsValid() {
			c.checkStatement(n.Right, outer)
		}

	case ast.KindTryStmt:
		c.checkStatement(n.Left, outer)
		if n.Right.IsValid() {
			c.checkStatement(n.Right, outer)
		}
		for _, s := range n.Children {
			c.checkStatement(s, outer)
		}

	case ast.KindCatchClause, ast.KindLabeledStmt:
		if n.Right.IsValid() {
			c.checkStatement(n.Right, inner)
		}

	case ast.KindSwitchStmt, ast.KindCaseClause:
		if n.Left.IsValid() {
			c.checkExprStatement(n.Left, outer)
		}
		for _, s := range n.Children {
			c.checkStatement(s, inner)
		}

	case ast.KindReturnStmt, ast.KindThrowStmt:
		if n.Left.IsValid() {
			c.checkExprStatement(n.Left, outer)
		}

	case ast.KindUsingDecl:
		c.checkVarDecl(stmt, n, outer)

	case ast.KindImportDecl, ast.KindExportDecl, ast.KindBreakStmt, ast.KindContinueStmt,
		ast.KindExportAssignment, ast.KindDeclareGlobal:
		// Module linkage is the driver's job (internal/driver's cross-file
		// resolution pass); jump statements have no type to check.

	default:
	}
}

func (c *Checker) checkVarDecl(stmt ast.NodeIndex, n *ast.Node, scope symbols.ScopeID) {
	var declared types.TypeID
	if sid, ok := binder.ResolveIdentifier(c.res, scope, n.Name); ok {
		declared = c.GetTypeOfSymbol(c.res, c.builder, sid)
	} else if n.TypeAnn.IsValid() {
		declared = c.ResolveTypeNode(n.TypeAnn, scope)
	}
	if !n.Init.IsValid() {
		return
	}
	initType := c.GetTypeOfNode(n.Init)
	if n.TypeAnn.IsValid() && declared.IsValid() {
		if !c.IsAssignable(initType, declared) {
			c.errorf(diag.SemaNotAssignable, n.Span,
				"Type '%s' is not assignable to type '%s'.", c.describe(initType), c.describe(declared))
		}
	}
}

func (c *Checker) checkFunctionLike(stmt ast.NodeIndex, n *ast.Node, bodyScope symbols.ScopeID) {
	info, ok := c.builder.GetFunction(stmt)
	if !ok || info == nil || !info.Body.IsValid() {
		return
	}
	body := c.builder.Get(info.Body)
	if body == nil {
		return
	}
	if body.Kind == ast.KindBlock {
		for _, s := range body.Children {
			c.checkStatement(s, bodyScope)
		}
	} else {
		c.checkExprStatement(info.Body, bodyScope)
	}
}

// checkNominalDecl forces the declaring symbol's type to be computed — which,
// for a class/interface/enum/namespace, lazily triggers its structural body
// via defs.Store.GetBody — so shape errors inside a declaration surface even
// when nothing else in the program ever references it.
func (c *Checker) checkNominalDecl(stmt ast.NodeIndex, n *ast.Node, scope symbols.ScopeID) {
	if n.Name == 0 {
		return
	}
	sid, ok := binder.ResolveIdentifier(c.res, scope, n.Name)
	if !ok {
		return
	}
	t := c.GetTypeOfSymbol(c.res, c.builder, sid)
	if k, ok := c.Interner.Lookup(t); ok && k.Kind == types.KindLazy {
		c.GetDefBody(defIDFromRef(k.Lazy))
	}
}

func (c *Checker) checkCondition(expr ast.NodeIndex, scope symbols.ScopeID) {
	if !expr.IsValid() {
		return
	}
	c.checkExprStatement(expr, scope)
}

func (c *Checker) checkExprStatement(expr ast.NodeIndex, scope symbols.ScopeID) {
	if !expr.IsValid() {
		return
	}
	c.checkExpr(expr, scope)
}
