// Package types implements the structural Type Solver: a process-local
// interner that hash-conses type shapes into stable TypeIDs (structural
// equality becomes integer equality) plus a query database that memoizes
// derived operations over those shapes.
package types

import "surge/internal/source"

// TypeID uniquely identifies an interned structural type shape.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// IsValid reports whether id refers to an interned type.
func (id TypeID) IsValid() bool { return id != NoTypeID }

// DefRef is the raw definition-store handle a Lazy type indirects through.
// It mirrors defs.DefID (both are plain uint32s); types cannot import defs
// without creating an import cycle, since defs.Store holds an *Interner.
type DefRef uint32

// NoDefRef marks the absence of a definition reference.
const NoDefRef DefRef = 0

// Kind is the closed enumeration of structural type shapes from spec.md §3.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindIntrinsic
	KindLiteral
	KindTemplateLiteral
	KindObject
	KindObjectWithIndex
	KindTuple
	KindUnion
	KindIntersection
	KindCallable
	KindLazy
	KindApplication
	KindTypeParameter
	KindIndex
	KindIndexedAccess
	KindConditional
	KindMapped
	KindKeyOf
	KindThis
	KindEnum
)

// Intrinsic enumerates the built-in primitive/sentinel types.
type Intrinsic uint8

const (
	IntrinsicAny Intrinsic = iota
	IntrinsicUnknown
	IntrinsicNever
	IntrinsicVoid
	IntrinsicNull
	IntrinsicUndefined
	IntrinsicString
	IntrinsicNumber
	IntrinsicBoolean
	IntrinsicBigInt
	IntrinsicSymbol
	IntrinsicObject
	IntrinsicError
)

// LiteralKind distinguishes the payload carried by a Literal type.
type LiteralKind uint8

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBoolean
	LiteralBigInt
)

// Variance records declared-site variance for a generic type parameter.
type Variance uint8

const (
	VarianceInvariant Variance = iota
	VarianceCovariant
	VarianceContravariant
	VarianceBivariant
)

// TemplateSegment is one `${T}literal` run inside a TemplateLiteral type.
type TemplateSegment struct {
	Type TypeID
	Text source.StringID
}

// Key is the structural descriptor that gets hash-consed into a TypeID. Only
// the fields relevant to Kind are meaningful; Intern canonicalizes Union and
// Intersection member lists before hashing so structurally-equal shapes
// always land on the same Key.
type Key struct {
	Kind Kind

	Intrinsic Intrinsic

	LiteralKind LiteralKind
	LiteralStr  source.StringID
	LiteralNum  float64
	LiteralBool bool
	LiteralBig  source.StringID

	TemplateHead     source.StringID
	TemplateSegments []TemplateSegment

	Shape ObjectShapeID // KindObject / KindObjectWithIndex

	TupleElements []TupleElement
	TupleReadonly bool

	Members []TypeID // KindUnion / KindIntersection, sorted+deduped by Intern

	Callable CallableShapeID

	Lazy DefRef // KindLazy

	AppBase TypeID
	AppArgs []TypeID

	TypeParamDef  DefRef
	TypeParamName source.StringID
	Constraint    TypeID
	Default       TypeID
	TPVariance    Variance
	TPIsConst     bool
	TPConstType   TypeID

	IndexOf TypeID // KindIndex

	IAObject TypeID // KindIndexedAccess
	IAIndex  TypeID

	CondCheck   TypeID // KindConditional
	CondExtends TypeID
	CondTrue    TypeID
	CondFalse   TypeID

	MappedSource   TypeID // KindMapped: the `in K of T` source
	MappedTemplate TypeID // per-property value template
	MappedReadonly Tristate
	MappedOptional Tristate

	KeyOfOperand TypeID // KindKeyOf

	Enum DefRef // KindEnum
}

// Tristate models the three-state +/-/unset readonly/optional modifiers a
// mapped type can declare (`+readonly`, `-readonly`, or unchanged).
type Tristate uint8

const (
	TristateUnset Tristate = iota
	TristatePlus
	TristateMinus
)

// TupleElement is one slot in a Tuple type.
type TupleElement struct {
	Type     TypeID
	Name     source.StringID // NoStringID for unlabeled elements
	Optional bool
	Rest     bool
}

// PropertyVisibility mirrors a class member's accessibility.
type PropertyVisibility uint8

const (
	VisibilityPublic PropertyVisibility = iota
	VisibilityProtected
	VisibilityPrivate
)

// Property is one member of an ObjectShape.
type Property struct {
	Name       source.StringID
	Type       TypeID
	Optional   bool
	Readonly   bool
	IsMethod   bool
	Visibility PropertyVisibility
}

// IndexSignature is a `[key: K]: V` member of an object shape.
type IndexSignature struct {
	KeyType   TypeID
	ValueType TypeID
	Readonly  bool
}

// ObjectShapeID indexes into the Interner's object-shape side table.
type ObjectShapeID uint32

// ObjectShape is a canonicalized record of an object's members, stored once.
type ObjectShape struct {
	Properties []Property
	Index      []IndexSignature
	// Fresh marks the shape as coming from an object-literal expression not
	// yet assigned to a widened binding; see the Freshness design note.
	Fresh bool
}

// Signature is one call or construct signature of a Callable type.
type Signature struct {
	TypeParams []TypeID
	Params     []TupleElement // reuses TupleElement for name/optional/rest
	Return     TypeID
	// IsMethodShorthand distinguishes `method(x: T): void` (bivariant in
	// parameters) from a function-typed property `prop: (x: T) => void`
	// (contravariant under strict_function_types).
	IsMethodShorthand bool
}

// CallableShapeID indexes into the Interner's callable-shape side table.
type CallableShapeID uint32

// CallableShape holds the ordered call/construct signature lists of a
// Callable type.
type CallableShape struct {
	Call      []Signature
	Construct []Signature
}
