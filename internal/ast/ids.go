package ast

type (
	// FileID identifies one parsed source file within a NodeArena.
	FileID uint32
	// NodeIndex identifies any node — statement, expression, declaration,
	// or type-syntax node — within a NodeArena.
	NodeIndex uint32
	// FuncInfoID indexes function-specific payload data.
	FuncInfoID uint32
	// ClassInfoID indexes class-specific payload data.
	ClassInfoID uint32
	// InterfaceInfoID indexes interface-specific payload data.
	InterfaceInfoID uint32
	// VarInfoID indexes variable-declaration payload data.
	VarInfoID uint32
	// ImportInfoID indexes import-declaration payload data.
	ImportInfoID uint32
	// ExportInfoID indexes export-declaration payload data.
	ExportInfoID uint32
	// EnumInfoID indexes enum-declaration payload data.
	EnumInfoID uint32
	// ModuleInfoID indexes namespace/module-declaration payload data.
	ModuleInfoID uint32
	// TypeAliasInfoID indexes type-alias payload data.
	TypeAliasInfoID uint32
	// ParamID identifies one function/method parameter.
	ParamID uint32
	// TypeParamID identifies one generic type parameter declaration.
	TypeParamID uint32
)

const (
	// NoFileID marks the absence of a file.
	NoFileID FileID = 0
	// NoNodeIndex marks the absence of a node.
	NoNodeIndex NodeIndex = 0
)

// IsValid reports whether the node index refers to an allocated node.
func (n NodeIndex) IsValid() bool { return n != NoNodeIndex }
