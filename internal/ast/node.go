package ast

import "surge/internal/source"

// Kind classifies a node stored in a NodeArena. The enumeration spans
// declarations, statements, expressions, and type-syntax forms — everything
// the Binder and Checker need to walk without a separate node taxonomy per
// syntactic category.
type Kind uint16

const (
	KindInvalid Kind = iota

	// Declarations / items.
	KindSourceFile
	KindVarDecl // var / let / const
	KindFunctionDecl
	KindClassDecl
	KindInterfaceDecl
	KindTypeAliasDecl
	KindEnumDecl
	KindEnumMember
	KindModuleDecl // namespace Foo {} / module "x" {}
	KindImportDecl
	KindExportDecl
	KindExportAssignment // export = expr
	KindDeclareGlobal    // declare global { ... }
	KindParam
	KindTypeParam
	KindPropertyDecl  // class/interface property member
	KindMethodDecl    // class/interface method member
	KindAccessorDecl  // get/set accessor member
	KindConstructor   // class constructor member
	KindDecorator

	// Statements.
	KindBlock
	KindIfStmt
	KindForStmt
	KindForOfStmt
	KindForInStmt
	KindWhileStmt
	KindDoWhileStmt
	KindTryStmt
	KindCatchClause
	KindSwitchStmt
	KindCaseClause
	KindBreakStmt
	KindContinueStmt
	KindReturnStmt
	KindThrowStmt
	KindExpressionStmt
	KindLabeledStmt
	KindUsingDecl // using / await using

	// Expressions.
	KindIdentifier
	KindCallExpr
	KindNewExpr
	KindBinaryExpr
	KindUnaryExpr
	KindConditionalExpr // ternary
	KindAssignmentExpr
	KindPropertyAccessExpr
	KindElementAccessExpr
	KindArrayLiteralExpr
	KindObjectLiteralExpr
	KindArrowFunction
	KindFunctionExpr
	KindTemplateExpr
	KindStringLiteral
	KindNumericLiteral
	KindBooleanLiteral
	KindBigIntLiteral
	KindNullLiteral
	KindUndefinedLiteral
	KindTypeOfExpr
	KindAsExpr // type assertion / `as`
	KindSpreadElement
	KindAwaitExpr
	KindYieldExpr

	// Type syntax.
	KindTypeReference
	KindUnionTypeNode
	KindIntersectionTypeNode
	KindArrayTypeNode
	KindTupleTypeNode
	KindFunctionTypeNode
	KindTypeLiteralNode
	KindMappedTypeNode
	KindConditionalTypeNode
	KindIndexedAccessTypeNode
	KindKeyOfTypeNode
	KindLiteralTypeNode
)

// Flags carries boolean attributes that apply across several Kinds
// (exported-ness, modifiers, generator/async markers, ...).
type Flags uint32

const (
	FlagExported Flags = 1 << iota
	FlagDefault
	FlagAmbient // `declare`
	FlagAbstract
	FlagStatic
	FlagPrivate
	FlagProtected
	FlagReadonly
	FlagOptional
	FlagAsync
	FlagGenerator
	FlagConst       // const enum, const type param
	FlagNamespaceValueAndType
	FlagUsingAwait // `await using` vs plain `using`
	FlagRest       // rest parameter / rest tuple element
)

// Has reports whether all bits in mask are set.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }

// Node is the single tagged-union record every arena slot holds. Payload is
// a kind-specific index into one of the side tables in Builder (FuncInfo,
// ClassInfo, ...); nodes with no extra data (identifiers, literals) encode
// their value directly in Name/Value/Children instead of a side table.
type Node struct {
	Kind     Kind
	Span     source.Span
	Flags    Flags
	Name     source.StringID // identifier / declared name, when applicable
	Payload  uint32          // index into the Kind-specific side table
	Children []NodeIndex     // generic child list (block statements, call args, ...)
	Left     NodeIndex       // binary/assignment LHS, property-access object, ...
	Right    NodeIndex       // binary/assignment RHS, element-access index, ...
	TypeAnn  NodeIndex       // type annotation, when syntactically present
	Init     NodeIndex       // initializer / default value
	Value    float64         // numeric literal value

	// Text doubles as the operator token for KindBinaryExpr, KindUnaryExpr
	// (prefix and postfix alike — Flags distinguishes them) and
	// KindAssignmentExpr ("+", "===", "??=", ...), since those kinds have no
	// literal text of their own to store; everywhere else it holds
	// string/template literal text.
	Text source.StringID
}
