package synth

import (
	"go/token"
	"strings"

	"github.com/iancoleman/strcase"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/handlegen/model"
)

// GoName derives an exported Go identifier from a model name, removing
// prefix first when name starts with it (case-insensitively) and more
// remains.
func GoName(name, prefix string) string {
	if prefix != "" && len(name) > len(prefix) && strings.EqualFold(name[:len(prefix)], prefix) {
		name = name[len(prefix):]
	}
	return strcase.ToCamel(name)
}

// reserved are identifiers used by synthesized parameters and generated
// function bodies.
var reserved = map[string]bool{"dispatch": true, "alloc": true, "err": true, "status": true}

// ParamName derives an unexported Go identifier from a parameter name.
func ParamName(name string) string {
	id := strcase.ToLowerCamel(name)
	if token.IsKeyword(id) || reserved[id] {
		id += "_"
	}
	return id
}

// GoPrimitive returns the Go type name of a WIT primitive.
func GoPrimitive(t wit.Type) string {
	switch t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "uint8"
	case wit.U16:
		return "uint16"
	case wit.U32:
		return "uint32"
	case wit.U64:
		return "uint64"
	case wit.S8:
		return "int8"
	case wit.S16:
		return "int16"
	case wit.S32:
		return "int32"
	case wit.S64:
		return "int64"
	case wit.F32:
		return "float32"
	case wit.F64:
		return "float64"
	case wit.Char:
		return "rune"
	case wit.String:
		return "string"
	}
	return "uintptr"
}

func (s *Synthesizer) valueType(ref model.TypeRef) Type {
	switch ref.Class {
	case model.TypeHandle:
		return Type{Kind: KindHandle, Name: ref.Name, GoName: GoName(ref.Name, s.opts.StripPrefix)}
	case model.TypePrimitive:
		return Type{Kind: KindPrimitive, Name: ref.Name, GoName: GoPrimitive(ref.Prim)}
	default:
		return Type{Kind: KindStruct, Name: ref.Name, GoName: GoName(ref.Name, s.opts.StripPrefix)}
	}
}

// paramType returns the raw form of a parameter: arrays as slices, written
// parameters and structures by pointer, everything else by value.
func (s *Synthesizer) paramType(p *model.Parameter, ref model.TypeRef) Type {
	t := s.valueType(ref)
	switch {
	case p.IsArray:
		t.Form = FormSlice
	case p.Direction.Writes(), ref.Class == model.TypeOpaque:
		t.Form = FormPointer
	}
	return t
}
