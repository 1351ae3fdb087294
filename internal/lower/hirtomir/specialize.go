package hirtomir

import (
	"github.com/sail-lang/sailc/internal/hir"
	"github.com/sail-lang/sailc/internal/irerr"
	"github.com/sail-lang/sailc/internal/symtab"
)

// typeMapping substitutes a HIR generic type parameter (identified by the
// TypeNameId it was declared under) with a concrete HIR type.
type typeMapping map[symtab.TypeNameId]hir.Type

// applyType is the identity on non-generic leaves and recurses structurally
// otherwise.
func applyType(t hir.Type, mapping typeMapping) hir.Type {
	switch v := t.(type) {
	case hir.BoolType, hir.IntType, hir.StringType:
		return t
	case hir.IDType:
		if len(v.TypeArguments) == 0 {
			if replacement, ok := mapping[v.Name]; ok {
				return replacement
			}

			return v
		}

		args := make([]hir.Type, len(v.TypeArguments))
		for i, a := range v.TypeArguments {
			args[i] = applyType(a, mapping)
		}

		return hir.IDType{Name: v.Name, TypeArguments: args}
	case hir.FunctionType:
		args := make([]hir.Type, len(v.ArgumentTypes))
		for i, a := range v.ArgumentTypes {
			args[i] = applyType(a, mapping)
		}

		return hir.FunctionType{ArgumentTypes: args, ReturnType: applyType(v.ReturnType, mapping)}
	default:
		return t
	}
}

// collectFreeTypeVariables walks t recording every generic type parameter
// (a bare, zero-argument IDType referencing a name in params) it mentions.
// Nothing in this package calls it.
func collectFreeTypeVariables(t hir.Type, params map[symtab.TypeNameId]bool, out map[symtab.TypeNameId]bool) {
	switch v := t.(type) {
	case hir.IDType:
		if len(v.TypeArguments) == 0 && params[v.Name] {
			out[v.Name] = true
			return
		}

		for _, a := range v.TypeArguments {
			collectFreeTypeVariables(a, params, out)
		}
	case hir.FunctionType:
		for _, a := range v.ArgumentTypes {
			collectFreeTypeVariables(a, params, out)
		}

		collectFreeTypeVariables(v.ReturnType, params, out)
	}
}

// encodeTypeArgument encodes a single monomorphic type argument for a
// specialized name's suffix; a function-typed argument is rejected, since
// only data types monomorphize.
func encodeTypeArgument(t hir.Type, table *symtab.Table) string {
	switch v := t.(type) {
	case hir.BoolType:
		return "bool"
	case hir.IntType:
		return "int"
	case hir.StringType:
		return "string"
	case hir.IDType:
		if len(v.TypeArguments) != 0 {
			irerr.Abort(irerr.New(irerr.CategoryEscapedGeneric,
				"type argument %s still carries nested type arguments after specialization", table.EncodedName(v.Name)))
		}

		return table.EncodedName(v.Name)
	case hir.FunctionType:
		irerr.Abort(irerr.New(irerr.CategoryEscapedGeneric, "function types are forbidden as specialization suffix arguments"))
	}

	return ""
}
