package hir

import (
	"github.com/sail-lang/sailc/internal/pstr"
	"github.com/sail-lang/sailc/internal/symtab"
)

// Function is one compiled function: a name, its parameters, its signature,
// its body, and the expression it returns.
type Function struct {
	Name         FunctionNameID
	TypeParameters []symtab.TypeNameId
	Parameters   []pstr.PStr
	Type         FunctionType
	Body         []Statement
	ReturnValue  Expression
}

// FunctionNameID is a function's fully qualified name: the nominal type it
// is a member of, plus its member PStr. The encoded form `_<owner>$<member>`
// is the linker symbol.
type FunctionNameID struct {
	TypeName symtab.TypeNameId
	Member   pstr.PStr
}

// Sources is the top-level container threaded through the whole pipeline.
type Sources struct {
	SymbolTable      *symtab.Table
	GlobalStrings    []pstr.PStr
	ClosureTypes     []ClosureTypeDef
	TypeDefinitions  []TypeDef
	MainFunctionNames []FunctionNameID
	Functions        []Function
}
