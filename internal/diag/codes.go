package diag

import (
	"fmt"
)

type Code uint16

const (
	// UnknownCode is the fallback when a diagnostic has no assigned code.
	UnknownCode Code = 0

	// Syntax (TS1xxx).
	SynExpectIdentifier      Code = 1104 // ...otherwise, an identifier was expected
	SynExpectExpression      Code = 1105 // an expression was expected
	SynExpectParam           Code = 1107 // a parameter was expected
	SynNotAllowedHere        Code = 1038 // a modifier is not allowed here

	// Module resolution (TS2xxx, 23xx block).
	SemaDuplicateIdentifier    Code = 2300 // duplicate identifier
	SemaCannotFind             Code = 2304 // cannot find name
	SemaModuleHasNoExport      Code = 2305 // module has no exported member
	SemaCannotFindModule       Code = 2307 // cannot find module or its type declarations
	SemaDuplicateDefault       Code = 2318 // duplicate default export
	SemaPropertyMissing        Code = 2339 // property does not exist on type

	// Assignability and call-checking (TS23xx/24xx).
	SemaNotAssignable      Code = 2322 // type is not assignable to type
	SemaArgNotAssignable   Code = 2345 // argument is not assignable to parameter
	SemaDuplicateMember    Code = 2394 // duplicate member in overload set
	SemaNotAFunction       Code = 2403 // cannot be used as a function
	SemaExcessProperty     Code = 2488 // type has no properties in common / excess property
	SemaRequireInLoop      Code = 2497 // requires module but downlevelIteration not set

	// Control-flow and declaration shape (TS25xx).
	SemaImplicitAny          Code = 2556 // parameter implicitly has an 'any' type
	SemaJumpOutOfLoop        Code = 2583 // break/continue statement not inside a loop
	SemaBlockScopedUsedBefore Code = 2584 // block-scoped variable used before declaration
	SemaDefiniteAssignment   Code = 2585 // variable used before being assigned
	SemaUnreachableCode      Code = 2589 // unreachable code detected (reported as an info note)

	// Circularity (TS7xxx).
	SemaCircularDefinition Code = 7027 // circular definition of import alias / lazy type

	// Project/module graph (project-internal, not part of the TS taxonomy —
	// these describe the module dependency graph itself, not one file's
	// contents, so no TSxxxx number applies).
	ProjDuplicateModule  Code = 8001 // two files declare the same module path
	ProjMissingModule    Code = 8002 // an import names a module absent from the graph
	ProjSelfImport       Code = 8003 // a module imports itself
	ProjImportCycle      Code = 8004 // modules form an import cycle
	ProjDependencyFailed Code = 8005 // a dependency module failed to bind/check
	ProjInvalidModulePath Code = 8006 // a module or import specifier does not normalize to a valid path

	// Observability (project-internal, not part of the TS taxonomy).
	ObsInfo    Code = 9000
	ObsTimings Code = 9001
)

var codeDescription = map[Code]string{
	UnknownCode:               "Unknown error",
	SynExpectIdentifier:       "Identifier expected",
	SynExpectExpression:       "Expression expected",
	SynExpectParam:            "Parameter expected",
	SynNotAllowedHere:         "Modifier is not allowed here",
	SemaDuplicateIdentifier:   "Duplicate identifier",
	SemaCannotFind:            "Cannot find name",
	SemaModuleHasNoExport:     "Module has no exported member",
	SemaCannotFindModule:      "Cannot find module or its corresponding type declarations",
	SemaDuplicateDefault:      "A module cannot have multiple default exports",
	SemaPropertyMissing:       "Property does not exist on type",
	SemaNotAssignable:         "Type is not assignable to type",
	SemaArgNotAssignable:      "Argument is not assignable to parameter of type",
	SemaDuplicateMember:       "Duplicate member in overload set",
	SemaNotAFunction:          "This expression is not callable",
	SemaExcessProperty:        "Object literal has excess property not present on the target type",
	SemaRequireInLoop:         "Spread/rest requires iteration support for the target declaration",
	SemaImplicitAny:           "Parameter implicitly has an 'any' type",
	SemaJumpOutOfLoop:         "A 'break' or 'continue' statement can only be used inside an enclosing loop or switch",
	SemaBlockScopedUsedBefore: "Block-scoped variable used before its declaration",
	SemaDefiniteAssignment:    "Variable is used before being assigned",
	SemaUnreachableCode:       "Unreachable code detected",
	SemaCircularDefinition:    "Circular definition detected",
	ProjDuplicateModule:       "Duplicate module declaration",
	ProjMissingModule:         "Import refers to a module that does not exist in this program",
	ProjSelfImport:            "A module cannot import itself",
	ProjImportCycle:           "Modules form an import cycle",
	ProjDependencyFailed:      "A dependency of this module failed to bind or check",
	ProjInvalidModulePath:     "Module or import specifier does not normalize to a valid path",
	ObsInfo:                   "Observability information",
	ObsTimings:                "Pipeline timings",
}

// ID renders a code the way TypeScript's own diagnostics do for the TS
// taxonomy ("TS" followed by the number); project/module-graph diagnostics
// have no TypeScript equivalent and keep the teacher's own PRJ-prefixed
// convention instead.
func (c Code) ID() string {
	if c >= 8000 {
		return fmt.Sprintf("PRJ%d", int(c))
	}
	return fmt.Sprintf("TS%d", int(c))
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
