package binder

import (
	"surge/internal/ast"
	"surge/internal/diag"
	"surge/internal/source"
	"surge/internal/symbols"
)

// This file encodes the statement-shape convention this Binder expects an
// upstream parser to produce, since ast.Node carries only the generic
// Left/Right/Init/TypeAnn/Children fields rather than one side table per
// statement kind:
//
//	IfStmt         Left=condition        Right=then         Children=[else?]
//	ForStmt        Init=init-stmt        Left=condition      Right=update   Children=[body]
//	ForOfStmt/In   Left=binding pattern  Right=iterable                      Children=[body]
//	WhileStmt      Left=condition        Right=body
//	DoWhileStmt    Left=condition        Right=body
//	TryStmt        Left=try-block        Right=catch-clause? Children=[finally?]
//	CatchClause    Name=param (optional) Right=body
//	SwitchStmt     Left=discriminant     Children=case clauses
//	CaseClause     Left=test (invalid for default) Children=statements
//	BreakStmt/ContinueStmt  Name=label (optional)
//	ReturnStmt/ThrowStmt/ExpressionStmt  Left=expr
//	LabeledStmt    Name=label            Right=body
//	ConditionalExpr Left=cond Right=whenTrue Children=[whenFalse]
//	AssignmentExpr Left=target Right=value
//	PropertyAccessExpr Left=object (Name carries the member on the node itself)
//	ElementAccessExpr  Left=object Right=index
//	ObjectLiteralExpr  Children=property nodes, each using its own Init for the value

// hoist runs the Binder's hoisting pre-pass over stmts: a shallow pass that
// installs function/class/interface/type-alias/enum/module/import bindings
// (visible to every statement in the scope, including ones that lexically
// precede them), followed by a deep pass that hoists `var`-kind bindings up
// through nested blocks and loops without crossing a function boundary.
func (b *Binder) hoist(stmts []ast.NodeIndex) {
	for _, s := range stmts {
		b.hoistShallow(s)
	}
	for _, s := range stmts {
		b.hoistVars(s)
	}
}

func (b *Binder) hoistShallow(stmt ast.NodeIndex) {
	n := b.builder.Get(stmt)
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindFunctionDecl:
		if n.Name != source.NoStringID {
			b.markExportedIfFlagged(b.declare(n.Name, symbols.FlagFunction, stmt, n.Span, true), n)
		}
	case ast.KindClassDecl:
		if n.Name != source.NoStringID {
			b.markExportedIfFlagged(b.declare(n.Name, symbols.FlagClass, stmt, n.Span, true), n)
		}
	case ast.KindInterfaceDecl:
		if n.Name != source.NoStringID {
			b.markExportedIfFlagged(b.declare(n.Name, symbols.FlagInterface, stmt, n.Span, false), n)
		}
	case ast.KindTypeAliasDecl:
		if n.Name != source.NoStringID {
			b.markExportedIfFlagged(b.declare(n.Name, symbols.FlagTypeAlias, stmt, n.Span, false), n)
		}
	case ast.KindEnumDecl:
		if n.Name != source.NoStringID {
			id := b.declare(n.Name, symbols.FlagEnum, stmt, n.Span, true)
			b.markExportedIfFlagged(id, n)
		}
	case ast.KindModuleDecl:
		info, ok := b.builder.GetModule(stmt)
		if ok && info != nil && len(info.NameSegments) > 0 {
			id := b.declare(info.NameSegments[0], symbols.FlagNamespaceModule, stmt, n.Span, true)
			b.markExportedIfFlagged(id, n)
		}
	case ast.KindImportDecl:
		b.hoistImport(stmt, n)
	case ast.KindExportDecl:
		info, ok := b.builder.GetExport(stmt)
		if ok && info != nil && info.Decl.IsValid() {
			b.hoistShallow(info.Decl)
			if decl := b.builder.Get(info.Decl); decl != nil && decl.Name != source.NoStringID {
				if scope := b.scopes.Get(b.currentScope()); scope != nil {
					if sid, ok := scope.Table.Get(decl.Name); ok {
						if sym := b.symbolArena.Get(sid); sym != nil {
							sym.IsExported = true
						}
					}
				}
			}
		}
		b.recordNamedExports(stmt)
	case ast.KindDeclareGlobal:
		for _, c := range n.Children {
			b.hoistShallow(c)
		}
	}
}

func (b *Binder) markExportedIfFlagged(id symbols.SymbolID, n *ast.Node) {
	if !n.Flags.Has(ast.FlagExported) {
		return
	}
	if sym := b.symbolArena.Get(id); sym != nil {
		sym.IsExported = true
	}
}

func (b *Binder) hoistImport(stmt ast.NodeIndex, n *ast.Node) {
	info, ok := b.builder.GetImport(stmt)
	if !ok || info == nil {
		return
	}
	if info.DefaultLocal != source.NoStringID {
		id := b.declare(info.DefaultLocal, symbols.FlagAlias|symbols.FlagVariable, stmt, n.Span, true)
		if sym := b.symbolArena.Get(id); sym != nil {
			sym.ImportModule = info.ModuleSpecifier
			sym.ImportName = b.builder.Intern("default")
		}
	}
	if info.NamespaceLocal != source.NoStringID {
		id := b.declare(info.NamespaceLocal, symbols.FlagAlias|symbols.FlagValueModule, stmt, n.Span, true)
		if sym := b.symbolArena.Get(id); sym != nil {
			sym.ImportModule = info.ModuleSpecifier
		}
	}
	for _, spec := range info.Named {
		id := b.declare(spec.LocalName, symbols.FlagAlias|symbols.FlagVariable, stmt, n.Span, true)
		if sym := b.symbolArena.Get(id); sym != nil {
			sym.ImportModule = info.ModuleSpecifier
			sym.ImportName = spec.ImportedName
		}
	}
}

// hoistVars walks stmt looking for `var`-kind declarations, descending into
// nested blocks and loop/try/switch bodies but never into a nested
// function-like body — `var` is function-scoped, not block-scoped.
func (b *Binder) hoistVars(stmt ast.NodeIndex) {
	n := b.builder.Get(stmt)
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindVarDecl:
		info, ok := b.builder.GetVar(stmt)
		if ok && info != nil && info.VarKind == ast.VarKindVar && n.Name != source.NoStringID {
			b.declare(n.Name, symbols.FlagVariable|symbols.FlagFunctionScopedVariable, stmt, n.Span, false)
		}
	case ast.KindBlock:
		for _, c := range n.Children {
			b.hoistVars(c)
		}
	case ast.KindIfStmt:
		b.hoistVars(n.Right)
		if len(n.Children) > 0 {
			b.hoistVars(n.Children[0])
		}
	case ast.KindForStmt:
		if n.Init.IsValid() {
			b.hoistVars(n.Init)
		}
		if len(n.Children) > 0 {
			b.hoistVars(n.Children[0])
		}
	case ast.KindForOfStmt, ast.KindForInStmt:
		if n.Left.IsValid() {
			b.hoistVars(n.Left)
		}
		if len(n.Children) > 0 {
			b.hoistVars(n.Children[0])
		}
	case ast.KindWhileStmt, ast.KindDoWhileStmt:
		b.hoistVars(n.Right)
	case ast.KindTryStmt:
		b.hoistVars(n.Left)
		if n.Right.IsValid() {
			b.hoistVars(n.Right)
		}
		if len(n.Children) > 0 {
			b.hoistVars(n.Children[0])
		}
	case ast.KindCatchClause:
		b.hoistVars(n.Right)
	case ast.KindSwitchStmt:
		for _, clause := range n.Children {
			cn := b.builder.Get(clause)
			if cn == nil {
				continue
			}
			for _, s := range cn.Children {
				b.hoistVars(s)
			}
		}
	case ast.KindLabeledStmt:
		b.hoistVars(n.Right)
	}
}

// bindStatement binds one statement and returns the flow cursor representing
// normal completion after it. Statements that only ever exit abnormally
// (return/throw/break/continue) return an Unreachable node, matching
// spec.md's invariant that code textually following them starts from an
// Unreachable antecedent unless it is itself a join-label target.
func (b *Binder) bindStatement(stmt ast.NodeIndex, flow FlowNodeID) FlowNodeID {
	if !stmt.IsValid() {
		return flow
	}
	n := b.builder.Get(stmt)
	if n == nil {
		return flow
	}
	b.nodeFlow[stmt] = flow

	switch n.Kind {
	case ast.KindBlock:
		return b.bindBlock(stmt, n, flow)

	case ast.KindVarDecl:
		return b.bindVarDecl(stmt, n, flow)

	case ast.KindUsingDecl:
		if n.Init.IsValid() {
			flow = b.bindExpression(n.Init, flow)
		}
		b.declare(n.Name, symbols.FlagVariable|symbols.FlagBlockScopedVariable, stmt, n.Span, true)
		flow = b.flow.Assignment(flow, stmt)
		return flow

	case ast.KindFunctionDecl:
		b.bindFunctionLike(stmt, n)
		return flow

	case ast.KindClassDecl:
		b.bindClass(stmt, n)
		return flow

	case ast.KindInterfaceDecl:
		b.bindInterface(stmt, n)
		return flow

	case ast.KindTypeAliasDecl:
		return flow

	case ast.KindEnumDecl:
		return b.bindEnum(stmt, n, flow)

	case ast.KindModuleDecl:
		return b.bindModule(stmt, n, flow)

	case ast.KindImportDecl:
		return flow

	case ast.KindExportDecl:
		info, ok := b.builder.GetExport(stmt)
		if ok && info != nil && info.Decl.IsValid() {
			flow = b.bindStatement(info.Decl, flow)
		}
		return flow

	case ast.KindExportAssignment:
		if n.Left.IsValid() {
			flow = b.bindExpression(n.Left, flow)
		}
		return flow

	case ast.KindDeclareGlobal:
		for _, c := range n.Children {
			flow = b.bindStatement(c, flow)
		}
		return flow

	case ast.KindIfStmt:
		return b.bindIf(n, flow)

	case ast.KindForStmt:
		return b.bindFor(stmt, n, flow)

	case ast.KindForOfStmt, ast.KindForInStmt:
		return b.bindForInOf(stmt, n, flow)

	case ast.KindWhileStmt:
		return b.bindWhile(n, flow)

	case ast.KindDoWhileStmt:
		return b.bindDoWhile(n, flow)

	case ast.KindTryStmt:
		return b.bindTry(n, flow)

	case ast.KindCatchClause:
		return b.bindCatch(stmt, n, flow)

	case ast.KindSwitchStmt:
		return b.bindSwitch(n, flow)

	case ast.KindBreakStmt:
		return b.bindBreak(n, flow)

	case ast.KindContinueStmt:
		return b.bindContinue(n, flow)

	case ast.KindReturnStmt, ast.KindThrowStmt:
		if n.Left.IsValid() {
			flow = b.bindExpression(n.Left, flow)
		}
		return b.flow.Unreachable()

	case ast.KindExpressionStmt:
		return b.bindExpression(n.Left, flow)

	case ast.KindLabeledStmt:
		return b.bindLabeled(n, flow)

	default:
		// Not a recognized statement shape: treat it as a bare expression
		// (covers arrow-function expression bodies, which reuse the same
		// node without an enclosing ExpressionStmt wrapper).
		return b.bindExpression(stmt, flow)
	}
}

func (b *Binder) bindBlock(stmt ast.NodeIndex, n *ast.Node, flow FlowNodeID) FlowNodeID {
	b.enterScope(symbols.ScopeBlock, stmt)
	for _, s := range n.Children {
		b.hoistShallow(s)
	}
	cur := flow
	for _, c := range n.Children {
		cur = b.bindStatement(c, cur)
	}
	b.leaveScope()
	return cur
}

func (b *Binder) bindVarDecl(stmt ast.NodeIndex, n *ast.Node, flow FlowNodeID) FlowNodeID {
	info, _ := b.builder.GetVar(stmt)
	if n.Init.IsValid() {
		flow = b.bindExpression(n.Init, flow)
	}
	if info != nil && info.VarKind != ast.VarKindVar {
		flags := symbols.FlagVariable | symbols.FlagBlockScopedVariable
		b.markExportedIfFlagged(b.declare(n.Name, flags, stmt, n.Span, true), n)
	} else {
		// var-kind bindings were already installed by the hoisting pre-pass;
		// this just records the initializer as this symbol's value
		// declaration.
		b.scopes.Chain(b.currentScope(), func(scope *symbols.Scope) bool {
			if sid, ok := scope.Table.Get(n.Name); ok {
				if sym := b.symbolArena.Get(sid); sym != nil {
					sym.AddDeclaration(stmt, true)
				}
				return false
			}
			return true
		})
	}
	if n.Init.IsValid() {
		flow = b.flow.Assignment(flow, stmt)
	}
	return flow
}

func (b *Binder) bindFunctionLike(idx ast.NodeIndex, n *ast.Node) {
	info, ok := b.builder.GetFunction(idx)
	if !ok || info == nil {
		return
	}
	if n.Flags.Has(ast.FlagAsync) {
		b.features.HasAsync = true
	}
	if n.Flags.Has(ast.FlagGenerator) {
		b.features.HasGenerator = true
	}
	if len(info.Decorators) > 0 {
		b.features.HasDecorator = true
	}
	b.enterScope(symbols.ScopeFunction, idx)
	for _, tp := range info.TypeParams {
		b.declareTypeParam(tp)
	}
	for _, p := range info.Params {
		if p.Name == source.NoStringID {
			continue
		}
		b.declare(p.Name, symbols.FlagVariable|symbols.FlagBlockScopedVariable, idx, n.Span, true)
	}
	if info.Body.IsValid() {
		stmts := bodyStatements(b.builder, info.Body)
		b.hoist(stmts)
		cur := b.flow.BranchLabel()
		for _, s := range stmts {
			cur = b.bindStatement(s, cur)
		}
	}
	b.leaveScope()
}

func bodyStatements(builder *ast.Builder, body ast.NodeIndex) []ast.NodeIndex {
	if !body.IsValid() {
		return nil
	}
	n := builder.Get(body)
	if n == nil {
		return nil
	}
	if n.Kind == ast.KindBlock {
		return n.Children
	}
	return []ast.NodeIndex{body}
}

func (b *Binder) declareTypeParam(idx ast.NodeIndex) {
	n := b.builder.Get(idx)
	if n == nil || n.Name == source.NoStringID {
		return
	}
	b.declare(n.Name, symbols.FlagTypeParameter, idx, n.Span, false)
}

func (b *Binder) bindClass(idx ast.NodeIndex, n *ast.Node) {
	info, ok := b.builder.GetClass(idx)
	if !ok || info == nil {
		return
	}
	if len(info.Decorators) > 0 {
		b.features.HasDecorator = true
	}
	classScope := b.enterScope(symbols.ScopeClass, idx)
	for _, tp := range info.TypeParams {
		b.declareTypeParam(tp)
	}
	for _, member := range info.Members {
		b.bindClassMember(member)
	}
	b.leaveScope()
	b.attachMemberTable(n.Name, classScope)
}

// attachMemberTable points the declaring symbol's Members table at the
// scope table a declaration body just populated — class/interface/enum
// bodies are bound into their own Scope, and the Symbol.Members field is
// simply an alias onto that same table rather than a second copy of it.
func (b *Binder) attachMemberTable(name source.StringID, memberScope symbols.ScopeID) {
	if name == source.NoStringID {
		return
	}
	scope := b.scopes.Get(memberScope)
	if scope == nil {
		return
	}
	b.scopes.Chain(b.currentScope(), func(s *symbols.Scope) bool {
		if sid, ok := s.Table.Get(name); ok {
			if sym := b.symbolArena.Get(sid); sym != nil && sym.Members == nil {
				sym.Members = scope.Table
			}
			return false
		}
		return true
	})
}

func (b *Binder) bindClassMember(member ast.NodeIndex) {
	n := b.builder.Get(member)
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindMethodDecl, ast.KindConstructor, ast.KindAccessorDecl:
		flags := memberFlags(n)
		if n.Name != source.NoStringID {
			b.declare(n.Name, flags, member, n.Span, true)
		}
		b.bindFunctionLike(member, n)
	case ast.KindPropertyDecl:
		flags := symbols.FlagProperty
		if n.Flags.Has(ast.FlagStatic) {
			flags |= symbols.FlagStatic
		}
		if n.Flags.Has(ast.FlagPrivate) {
			flags |= symbols.FlagPrivate
		}
		if n.Name != source.NoStringID {
			b.declare(n.Name, flags, member, n.Span, true)
		}
		if n.Init.IsValid() {
			// Field initializers run once per instantiation, against a
			// fresh flow chain independent of the enclosing declaration's
			// surrounding control flow.
			b.bindExpression(n.Init, b.flow.BranchLabel())
		}
	}
}

func memberFlags(n *ast.Node) symbols.Flags {
	var flags symbols.Flags
	switch n.Kind {
	case ast.KindConstructor:
		flags = symbols.FlagConstructor
	case ast.KindAccessorDecl:
		if n.Flags.Has(ast.FlagReadonly) {
			flags = symbols.FlagGetAccessor
		} else {
			flags = symbols.FlagGetAccessor | symbols.FlagSetAccessor
		}
	default:
		flags = symbols.FlagMethod
	}
	if n.Flags.Has(ast.FlagStatic) {
		flags |= symbols.FlagStatic
	}
	if n.Flags.Has(ast.FlagPrivate) {
		flags |= symbols.FlagPrivate
	}
	if n.Flags.Has(ast.FlagAbstract) {
		flags |= symbols.FlagAbstract
	}
	return flags
}

func (b *Binder) bindInterface(idx ast.NodeIndex, n *ast.Node) {
	info, ok := b.builder.GetInterface(idx)
	if !ok || info == nil {
		return
	}
	ifaceScope := b.enterScope(symbols.ScopeClass, idx)
	for _, tp := range info.TypeParams {
		b.declareTypeParam(tp)
	}
	for _, member := range info.Members {
		mn := b.builder.Get(member)
		if mn == nil || mn.Name == source.NoStringID {
			continue
		}
		flags := symbols.FlagProperty
		if mn.Kind == ast.KindMethodDecl {
			flags = symbols.FlagMethod
		}
		b.declare(mn.Name, flags, member, mn.Span, false)
	}
	b.leaveScope()
	b.attachMemberTable(n.Name, ifaceScope)
}

func (b *Binder) bindEnum(idx ast.NodeIndex, n *ast.Node, flow FlowNodeID) FlowNodeID {
	info, ok := b.builder.GetEnum(idx)
	if !ok || info == nil {
		return flow
	}
	enumScope := b.enterScope(symbols.ScopeBlock, idx)
	for _, member := range info.Members {
		mn := b.builder.Get(member)
		if mn == nil || mn.Name == source.NoStringID {
			continue
		}
		b.declare(mn.Name, symbols.FlagEnumMember, member, mn.Span, true)
		if mn.Init.IsValid() {
			flow = b.bindExpression(mn.Init, flow)
		}
	}
	b.leaveScope()
	b.attachMemberTable(n.Name, enumScope)
	return flow
}

func (b *Binder) bindModule(idx ast.NodeIndex, n *ast.Node, flow FlowNodeID) FlowNodeID {
	info, ok := b.builder.GetModule(idx)
	if !ok || info == nil {
		return flow
	}
	b.features.HasNamespace = true
	nsScope := b.enterScope(symbols.ScopeNamespace, idx)
	b.hoist(info.Body)
	for _, stmt := range info.Body {
		flow = b.bindStatement(stmt, flow)
	}
	b.leaveScope()
	b.attachMemberTable(n.Name, nsScope)
	b.attachNamespaceExports(n.Name, nsScope)
	return flow
}

// attachNamespaceExports sets the declaring symbol's Exports table to the
// subset of its namespace scope's bindings marked exported, mirroring
// computeExports but scoped to one namespace body instead of a whole file.
func (b *Binder) attachNamespaceExports(name source.StringID, nsScope symbols.ScopeID) {
	if name == source.NoStringID {
		return
	}
	scope := b.scopes.Get(nsScope)
	if scope == nil {
		return
	}
	exports := symbols.NewTable()
	scope.Table.Iter(func(n source.StringID, sid symbols.SymbolID) bool {
		if sym := b.symbolArena.Get(sid); sym != nil && sym.IsExported {
			exports.Set(n, sid)
		}
		return true
	})
	b.scopes.Chain(b.currentScope(), func(s *symbols.Scope) bool {
		if sid, ok := s.Table.Get(name); ok {
			if sym := b.symbolArena.Get(sid); sym != nil {
				sym.Exports = exports
			}
			return false
		}
		return true
	})
}

func (b *Binder) bindIf(n *ast.Node, flow FlowNodeID) FlowNodeID {
	condFlow := b.bindExpression(n.Left, flow)
	trueFlow := b.flow.Condition(ConditionTrue, condFlow, n.Left)
	falseFlow := b.flow.Condition(ConditionFalse, condFlow, n.Left)
	thenExit := b.bindStatement(n.Right, trueFlow)
	elseExit := falseFlow
	if len(n.Children) > 0 && n.Children[0].IsValid() {
		elseExit = b.bindStatement(n.Children[0], falseFlow)
	}
	return b.flow.BranchLabel(thenExit, elseExit)
}

func (b *Binder) bindFor(forStmt ast.NodeIndex, n *ast.Node, flow FlowNodeID) FlowNodeID {
	b.enterScope(symbols.ScopeBlock, forStmt)
	if n.Init.IsValid() {
		flow = b.bindStatement(n.Init, flow)
	}
	loopLabel := b.flow.LoopLabel(flow)
	condFlow := loopLabel
	if n.Left.IsValid() {
		condFlow = b.bindExpression(n.Left, loopLabel)
	}
	bodyEntry := b.flow.Condition(ConditionTrue, condFlow, n.Left)

	breakJoin := b.flow.BranchLabel()
	b.pushLoop(loopLabel, breakJoin)
	bodyExit := bodyEntry
	if len(n.Children) > 0 {
		bodyExit = b.bindStatement(n.Children[0], bodyEntry)
	}
	if n.Right.IsValid() {
		bodyExit = b.bindExpression(n.Right, bodyExit)
	}
	b.popLoop()
	b.flow.AddAntecedent(loopLabel, bodyExit)

	exit := b.flow.Condition(ConditionFalse, condFlow, n.Left)
	b.flow.AddAntecedent(breakJoin, exit)
	b.leaveScope()
	return breakJoin
}

func (b *Binder) bindForInOf(forStmt ast.NodeIndex, n *ast.Node, flow FlowNodeID) FlowNodeID {
	flow = b.bindExpression(n.Right, flow)
	loopLabel := b.flow.LoopLabel(flow)

	b.enterScope(symbols.ScopeBlock, forStmt)
	if n.Left.IsValid() {
		if left := b.builder.Get(n.Left); left != nil {
			if left.Kind == ast.KindVarDecl {
				b.bindVarDecl(n.Left, left, loopLabel)
			} else if left.Kind == ast.KindIdentifier {
				b.resolveIdentifierUse(n.Left, left)
			}
		}
	}

	breakJoin := b.flow.BranchLabel(loopLabel)
	b.pushLoop(loopLabel, breakJoin)
	bodyExit := loopLabel
	if len(n.Children) > 0 {
		bodyExit = b.bindStatement(n.Children[0], loopLabel)
	}
	b.popLoop()
	b.flow.AddAntecedent(loopLabel, bodyExit)
	b.leaveScope()
	return breakJoin
}

func (b *Binder) bindWhile(n *ast.Node, flow FlowNodeID) FlowNodeID {
	loopLabel := b.flow.LoopLabel(flow)
	condFlow := b.bindExpression(n.Left, loopLabel)
	trueFlow := b.flow.Condition(ConditionTrue, condFlow, n.Left)

	breakJoin := b.flow.BranchLabel()
	b.pushLoop(loopLabel, breakJoin)
	bodyExit := b.bindStatement(n.Right, trueFlow)
	b.popLoop()
	b.flow.AddAntecedent(loopLabel, bodyExit)

	falseFlow := b.flow.Condition(ConditionFalse, condFlow, n.Left)
	b.flow.AddAntecedent(breakJoin, falseFlow)
	return breakJoin
}

func (b *Binder) bindDoWhile(n *ast.Node, flow FlowNodeID) FlowNodeID {
	loopLabel := b.flow.LoopLabel(flow)
	breakJoin := b.flow.BranchLabel()
	b.pushLoop(loopLabel, breakJoin)
	bodyExit := b.bindStatement(n.Right, loopLabel)
	b.popLoop()

	condFlow := b.bindExpression(n.Left, bodyExit)
	trueFlow := b.flow.Condition(ConditionTrue, condFlow, n.Left)
	b.flow.AddAntecedent(loopLabel, trueFlow)
	falseFlow := b.flow.Condition(ConditionFalse, condFlow, n.Left)
	b.flow.AddAntecedent(breakJoin, falseFlow)
	return breakJoin
}

func (b *Binder) bindTry(n *ast.Node, flow FlowNodeID) FlowNodeID {
	tryExit := b.bindStatement(n.Left, flow)
	var catchExit FlowNodeID
	if n.Right.IsValid() {
		catchEntry := b.flow.BranchLabel(flow, tryExit)
		catchExit = b.bindStatement(n.Right, catchEntry)
	}
	merged := tryExit
	if catchExit.IsValid() {
		merged = b.flow.BranchLabel(tryExit, catchExit)
	}
	if len(n.Children) > 0 && n.Children[0].IsValid() {
		merged = b.bindStatement(n.Children[0], merged)
	}
	return merged
}

func (b *Binder) bindCatch(stmt ast.NodeIndex, n *ast.Node, flow FlowNodeID) FlowNodeID {
	b.enterScope(symbols.ScopeBlock, stmt)
	if n.Name != source.NoStringID {
		b.declare(n.Name, symbols.FlagVariable|symbols.FlagBlockScopedVariable, stmt, n.Span, true)
	}
	exit := b.bindStatement(n.Right, flow)
	b.leaveScope()
	return exit
}

func (b *Binder) bindSwitch(n *ast.Node, flow FlowNodeID) FlowNodeID {
	discFlow := b.bindExpression(n.Left, flow)
	breakJoin := b.flow.BranchLabel()
	b.breakTargets = append(b.breakTargets, breakJoin)

	b.enterScope(symbols.ScopeBlock, ast.NoNodeIndex)
	var prevExit FlowNodeID
	clauseAntecedent := discFlow
	hasDefault := false
	for _, clause := range n.Children {
		cn := b.builder.Get(clause)
		if cn == nil {
			continue
		}
		testFlow := clauseAntecedent
		if cn.Left.IsValid() {
			testFlow = b.bindExpression(cn.Left, clauseAntecedent)
		} else {
			hasDefault = true
		}
		clauseFlow := b.flow.SwitchClause(testFlow, prevExit, clause)
		exit := clauseFlow
		for _, st := range cn.Children {
			exit = b.bindStatement(st, exit)
		}
		prevExit = exit
		clauseAntecedent = testFlow
	}
	b.leaveScope()

	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]
	if !hasDefault {
		b.flow.AddAntecedent(breakJoin, clauseAntecedent)
	}
	if prevExit.IsValid() {
		b.flow.AddAntecedent(breakJoin, prevExit)
	}
	return breakJoin
}

func (b *Binder) pushLoop(continueTarget, breakTarget FlowNodeID) {
	b.continueTargets = append(b.continueTargets, continueTarget)
	b.breakTargets = append(b.breakTargets, breakTarget)
}

func (b *Binder) popLoop() {
	b.continueTargets = b.continueTargets[:len(b.continueTargets)-1]
	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]
}

func (b *Binder) bindBreak(n *ast.Node, flow FlowNodeID) FlowNodeID {
	target := b.jumpTarget(n.Name, true)
	if target.IsValid() {
		b.flow.AddAntecedent(target, flow)
	} else if b.reporter != nil {
		b.reportJumpError(n)
	}
	return b.flow.Unreachable()
}

func (b *Binder) bindContinue(n *ast.Node, flow FlowNodeID) FlowNodeID {
	target := b.jumpTarget(n.Name, false)
	if target.IsValid() {
		b.flow.AddAntecedent(target, flow)
	} else if b.reporter != nil {
		b.reportJumpError(n)
	}
	return b.flow.Unreachable()
}

func (b *Binder) jumpTarget(label source.StringID, isBreak bool) FlowNodeID {
	if label != source.NoStringID {
		if t, ok := b.labelTargets[label]; ok {
			return t
		}
	}
	if isBreak {
		if len(b.breakTargets) > 0 {
			return b.breakTargets[len(b.breakTargets)-1]
		}
		return NoFlowNodeID
	}
	if len(b.continueTargets) > 0 {
		return b.continueTargets[len(b.continueTargets)-1]
	}
	return NoFlowNodeID
}

func (b *Binder) reportJumpError(n *ast.Node) {
	msg := "A 'break' or 'continue' statement can only be used within an enclosing loop or switch statement."
	if builder := diag.ReportError(b.reporter, diag.SemaJumpOutOfLoop, n.Span, msg); builder != nil {
		builder.Emit()
	}
}

func (b *Binder) bindLabeled(n *ast.Node, flow FlowNodeID) FlowNodeID {
	join := b.flow.BranchLabel()
	if n.Name != source.NoStringID {
		b.labelTargets[n.Name] = join
	}
	exit := b.bindStatement(n.Right, flow)
	if n.Name != source.NoStringID {
		delete(b.labelTargets, n.Name)
	}
	b.flow.AddAntecedent(join, exit)
	return join
}

// bindExpression binds idx (an rvalue or lvalue-in-expression-position) and
// returns the flow cursor after it. Every expression node records its entry
// flow in nodeFlow, except call and assignment expressions, which record the
// flow node they create (the state after them), so the Checker's narrowing
// algorithm can later ask "what is known about symbol X at this point".
func (b *Binder) bindExpression(idx ast.NodeIndex, flow FlowNodeID) FlowNodeID {
	if !idx.IsValid() {
		return flow
	}
	n := b.builder.Get(idx)
	if n == nil {
		return flow
	}
	b.nodeFlow[idx] = flow

	switch n.Kind {
	case ast.KindIdentifier:
		b.resolveIdentifierUse(idx, n)
		return flow

	case ast.KindCallExpr:
		flow = b.bindExpression(n.Left, flow)
		for _, arg := range n.Children {
			flow = b.bindExpression(arg, flow)
		}
		flow = b.flow.Call(flow, idx)
		b.nodeFlow[idx] = flow
		return flow

	case ast.KindNewExpr:
		flow = b.bindExpression(n.Left, flow)
		for _, arg := range n.Children {
			flow = b.bindExpression(arg, flow)
		}
		return flow

	case ast.KindBinaryExpr:
		flow = b.bindExpression(n.Left, flow)
		return b.bindExpression(n.Right, flow)

	case ast.KindUnaryExpr, ast.KindTypeOfExpr, ast.KindSpreadElement, ast.KindAwaitExpr, ast.KindYieldExpr:
		if n.Kind == ast.KindAwaitExpr {
			b.features.HasAsync = true
		}
		if n.Kind == ast.KindYieldExpr {
			b.features.HasGenerator = true
		}
		return b.bindExpression(n.Left, flow)

	case ast.KindConditionalExpr:
		condFlow := b.bindExpression(n.Left, flow)
		trueFlow := b.flow.Condition(ConditionTrue, condFlow, n.Left)
		falseFlow := b.flow.Condition(ConditionFalse, condFlow, n.Left)
		trueExit := b.bindExpression(n.Right, trueFlow)
		falseExit := falseFlow
		if len(n.Children) > 0 {
			falseExit = b.bindExpression(n.Children[0], falseFlow)
		}
		return b.flow.BranchLabel(trueExit, falseExit)

	case ast.KindAssignmentExpr:
		flow = b.bindExpression(n.Right, flow)
		target := b.builder.Get(n.Left)
		if target != nil && target.Kind == ast.KindIdentifier {
			flow = b.flow.Assignment(flow, idx)
			b.resolveIdentifierUse(n.Left, target)
		} else {
			flow = b.bindExpression(n.Left, flow)
			if target != nil && target.Kind == ast.KindElementAccessExpr {
				flow = b.flow.ArrayMutation(flow, idx)
			}
		}
		b.nodeFlow[idx] = flow
		return flow

	case ast.KindPropertyAccessExpr:
		return b.bindExpression(n.Left, flow)

	case ast.KindElementAccessExpr:
		flow = b.bindExpression(n.Left, flow)
		return b.bindExpression(n.Right, flow)

	case ast.KindArrayLiteralExpr, ast.KindTemplateExpr:
		for _, c := range n.Children {
			flow = b.bindExpression(c, flow)
		}
		return flow

	case ast.KindObjectLiteralExpr:
		for _, c := range n.Children {
			cn := b.builder.Get(c)
			if cn != nil && cn.Init.IsValid() {
				flow = b.bindExpression(cn.Init, flow)
			}
		}
		return flow

	case ast.KindArrowFunction, ast.KindFunctionExpr:
		b.bindFunctionLike(idx, n)
		return flow

	case ast.KindAsExpr:
		return b.bindExpression(n.Left, flow)

	default:
		return flow
	}
}

func (b *Binder) resolveIdentifierUse(idx ast.NodeIndex, n *ast.Node) {
	if sid, _, ok := b.scopes.Lookup(b.currentScope(), n.Name); ok {
		b.exprSymbol[idx] = sid
		return
	}
	b.reportUnresolved(n.Name, n.Span)
}
