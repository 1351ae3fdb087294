package hirtomir

import (
	"github.com/sail-lang/sailc/internal/config"
	"github.com/sail-lang/sailc/internal/hir"
	"github.com/sail-lang/sailc/internal/irerr"
	"github.com/sail-lang/sailc/internal/mir"
	"github.com/sail-lang/sailc/internal/pstr"
	"github.com/sail-lang/sailc/internal/symtab"
)

// specializationKey identifies one (generic function, concrete type
// arguments) pair in the monomorphization worklist.
type specializationKey struct {
	name symtab.TypeNameId
	member pstr.PStr
	args string // joined encoded type arguments; "" for non-generic functions.
}

// lowerer drives the worklist-based HIR→MIR pass: monomorphization of every
// reachable generic instantiation, erasure of first-class function values
// into closure records, and translation of HIR's statement/expression
// shapes into MIR's.
type lowerer struct {
	heap    *pstr.Heap
	table   *symtab.Table
	budgets config.Budgets
	src     *hir.Sources

	byName map[symtab.TypeNameId]map[pstr.PStr]hir.Function

	synth *TypeSynthesizer

	done    map[specializationKey]mir.FunctionName
	queue   []specializationKey
	mapping map[specializationKey]typeMapping

	out []mir.Function
}

// Lower translates src into a fully monomorphized, closure-erased mir.Sources.
func Lower(src *hir.Sources, heap *pstr.Heap, table *symtab.Table, budgets config.Budgets) *mir.Sources {
	l := &lowerer{
		heap:    heap,
		table:   table,
		budgets: budgets,
		src:     src,
		byName:  map[symtab.TypeNameId]map[pstr.PStr]hir.Function{},
		synth:   NewTypeSynthesizer(heap, table),
		done:    map[specializationKey]mir.FunctionName{},
		mapping: map[specializationKey]typeMapping{},
	}

	for _, fn := range src.Functions {
		owner := l.byName[fn.Name.TypeName]
		if owner == nil {
			owner = map[pstr.PStr]hir.Function{}
			l.byName[fn.Name.TypeName] = owner
		}

		owner[fn.Name.Member] = fn
	}

	var mains []mir.FunctionName
	for _, m := range src.MainFunctionNames {
		name := l.specialize(m.TypeName, m.Member, nil)
		mains = append(mains, name)
	}

	for len(l.queue) > 0 {
		key := l.queue[0]
		l.queue = l.queue[1:]
		l.lowerOne(key)
	}

	return &mir.Sources{
		SymbolTable:       table,
		GlobalStrings:     append([]pstr.PStr(nil), src.GlobalStrings...),
		ClosureTypes:      l.synth.ClosureTypeDefs(),
		TypeDefinitions:   append(l.lowerTypeDefs(), l.synth.TupleTypeDefs()...),
		MainFunctionNames: mains,
		Functions:         l.out,
	}
}

// specialize enqueues (typeName, member) instantiated at typeArguments for
// lowering (if not already queued) and returns its MIR call name. The
// specialized symbol name folds the encoded type arguments into the
// TypeNameId's suffix.
func (l *lowerer) specialize(typeName symtab.TypeNameId, member pstr.PStr, typeArguments []hir.Type) mir.FunctionName {
	owner := l.byName[typeName]

	fn, ok := owner[member]
	if !ok {
		irerr.Abort(irerr.New(irerr.CategoryUnresolvedName, "no HIR function %s$%s", l.table.EncodedName(typeName), l.heap.Str(member)))
	}

	if len(fn.TypeParameters) != len(typeArguments) {
		irerr.Abort(irerr.New(irerr.CategoryArity, "function %s$%s expects %d type arguments, got %d",
			l.table.EncodedName(typeName), l.heap.Str(member), len(fn.TypeParameters), len(typeArguments)))
	}

	mapping := typeMapping{}
	argKeyParts := make([]string, len(typeArguments))
	for i, tp := range fn.TypeParameters {
		mapping[tp] = typeArguments[i]
		argKeyParts[i] = encodeTypeArgument(typeArguments[i], l.table)
	}

	specializedTypeName := typeName
	if len(argKeyParts) > 0 {
		suffix := make([]symtab.Type, len(typeArguments))
		for i, a := range typeArguments {
			suffix[i] = lowerTypeShallow(a, mapping, l.synth)
		}

		specializedTypeName = l.table.DeriveWithSuffix(typeName, suffix)
	}

	key := specializationKey{name: typeName, member: member}
	for _, p := range argKeyParts {
		key.args += p + ","
	}

	if existing, ok := l.done[key]; ok {
		return existing
	}

	name := mir.FunctionName{TypeName: specializedTypeName, FnName: member}
	l.done[key] = name
	l.mapping[key] = mapping
	l.queue = append(l.queue, key)

	return name
}

// lowerTypeShallow applies mapping to t and converts the (now monomorphic)
// result to a MIR type, synthesizing a closure type if t is a function
// type; any other shape with no MIR counterpart aborts.
func lowerTypeShallow(t hir.Type, mapping typeMapping, synth *TypeSynthesizer) mir.Type {
	switch v := applyType(t, mapping).(type) {
	case hir.IntType, hir.BoolType:
		return mir.Int
	case hir.StringType:
		return mir.IDType(symtab.Str)
	case hir.IDType:
		return mir.IDType(v.Name)
	case hir.FunctionType:
		return mir.IDType(synth.SynthesizeClosureType(lowerFunctionTypeShallow(v, mapping, synth)))
	default:
		irerr.Abort(irerr.New(irerr.CategoryEscapedGeneric, "type %T has no MIR representation", v))
		return mir.Int
	}
}

func lowerFunctionTypeShallow(ft hir.FunctionType, mapping typeMapping, synth *TypeSynthesizer) mir.FunctionType {
	args := make([]mir.Type, len(ft.ArgumentTypes))
	for i, a := range ft.ArgumentTypes {
		args[i] = lowerTypeShallow(a, mapping, synth)
	}

	return mir.FunctionType{ArgumentTypes: args, ReturnType: lowerTypeShallow(ft.ReturnType, mapping, synth)}
}

func (l *lowerer) lowerOne(key specializationKey) {
	owner := l.byName[key.name]
	fn := owner[key.member]
	mapping := l.mapping[key]
	name := l.done[key]

	ctx := &exprLowerer{l: l, mapping: mapping}

	params := append([]pstr.PStr(nil), fn.Parameters...)
	argTypes := make([]mir.Type, len(fn.Type.ArgumentTypes))
	for i, a := range fn.Type.ArgumentTypes {
		argTypes[i] = lowerTypeShallow(a, mapping, l.synth)
	}

	body := ctx.lowerStatements(fn.Body)
	ret := ctx.lowerExpression(fn.ReturnValue)

	l.out = append(l.out, mir.Function{
		Name:        name,
		Parameters:  params,
		Type:        mir.FunctionType{ArgumentTypes: argTypes, ReturnType: lowerTypeShallow(fn.Type.ReturnType, mapping, l.synth)},
		Body:        body,
		ReturnValue: ret,
	})
}

// lowerTypeDefs converts every monomorphic HIR struct/enum TypeDef. A
// generic TypeDef (one with type parameters) is skipped, and no
// specialized copy of it is emitted.
func (l *lowerer) lowerTypeDefs() []mir.TypeDef {
	var out []mir.TypeDef

	for _, td := range l.src.TypeDefinitions {
		if len(td.TypeParameters) > 0 {
			continue
		}

		if td.IsObject {
			fields := make([]mir.Type, len(td.FieldTypes))
			for i, f := range td.FieldTypes {
				fields[i] = lowerTypeShallow(f, nil, l.synth)
			}

			out = append(out, mir.TypeDef{Name: td.Name, Mappings: mir.StructMapping{Fields: fields}})

			continue
		}

		variants := make([]mir.EnumTypeDef, len(td.EnumVariants))
		for i, v := range td.EnumVariants {
			switch v.Kind {
			case hir.EnumVariantInt:
				variants[i] = mir.EnumInt{}
			case hir.EnumVariantUnboxed:
				variants[i] = mir.EnumUnboxed{Field: lowerTypeShallow(v.Type, nil, l.synth)}
			case hir.EnumVariantBoxed:
				variants[i] = mir.EnumBoxed{Fields: []mir.Type{lowerTypeShallow(v.Type, nil, l.synth)}}
			}
		}

		out = append(out, mir.TypeDef{Name: td.Name, Mappings: mir.EnumMapping{Variants: variants}})
	}

	return out
}
