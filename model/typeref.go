package model

import (
	"go.bytecodealliance.org/wit"
)

// TypeClass says how a parameter type name is interpreted.
type TypeClass uint8

const (
	// TypeOpaque is a structure passed by pointer.
	TypeOpaque TypeClass = iota
	// TypePrimitive is a WIT primitive value type.
	TypePrimitive
	// TypeHandle is a handle type declared in the model.
	TypeHandle
)

func (c TypeClass) String() string {
	switch c {
	case TypePrimitive:
		return "primitive"
	case TypeHandle:
		return "handle"
	default:
		return "opaque"
	}
}

// TypeRef is a resolved parameter type.
type TypeRef struct {
	// Prim is set for TypePrimitive.
	Prim  wit.Type
	Name  string
	Class TypeClass
}

// Resolve classifies a parameter type name.
// Handle names take precedence over primitive names.
func (m *Model) Resolve(typeName string) TypeRef {
	if m.IsHandle(typeName) {
		return TypeRef{Name: typeName, Class: TypeHandle}
	}
	if t, ok := Primitive(typeName); ok {
		return TypeRef{Name: typeName, Class: TypePrimitive, Prim: t}
	}
	return TypeRef{Name: typeName, Class: TypeOpaque}
}

// Primitive parses a WIT primitive type name.
func Primitive(name string) (wit.Type, bool) {
	t, err := wit.ParseType(name)
	if err != nil || t == nil {
		return nil, false
	}
	return t, true
}

// IsInteger reports whether t is a WIT integer type usable as an element count.
func IsInteger(t wit.Type) bool {
	switch t.(type) {
	case wit.U8, wit.U16, wit.U32, wit.U64, wit.S8, wit.S16, wit.S32, wit.S64:
		return true
	}
	return false
}

// ByteSize returns the in-memory size of a WIT primitive, or 0 for types
// without a fixed scalar layout.
func ByteSize(t wit.Type) uint32 {
	switch t.(type) {
	case wit.Bool, wit.U8, wit.S8:
		return 1
	case wit.U16, wit.S16:
		return 2
	case wit.U32, wit.S32, wit.F32, wit.Char:
		return 4
	case wit.U64, wit.S64, wit.F64:
		return 8
	}
	return 0
}
