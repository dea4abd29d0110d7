package synth

import (
	"fmt"
	"strings"
)

// Role is the part a parameter plays in a command's calling convention.
type Role uint8

const (
	// RoleInput is a non-handle input passed through unchanged.
	RoleInput Role = iota
	// RoleHandleInput is a handle passed by value.
	RoleHandleInput
	// RoleInOut is a scalar or structure the callee reads and writes.
	RoleInOut
	// RoleOutput is a non-handle scalar or structure output.
	RoleOutput
	// RoleHandleOutput is a handle output.
	RoleHandleOutput
	// RoleCreated is the handle produced by a create command.
	RoleCreated
	// RoleTwoCallArray is an output array filled by the two-call protocol.
	RoleTwoCallArray
	// RoleTwoCallCount is the in-out count of a two-call array.
	RoleTwoCallCount
	// RoleFixedArray is an array whose length the caller decides.
	RoleFixedArray
	// RoleFixedCount is the count of a fixed array.
	RoleFixedCount
	// RoleDispatch is the synthetic dispatch table parameter.
	RoleDispatch
	// RoleAllocator is the synthetic allocator parameter.
	RoleAllocator
)

var roleNames = [...]string{
	RoleInput:        "input",
	RoleHandleInput:  "handle-input",
	RoleInOut:        "inout",
	RoleOutput:       "output",
	RoleHandleOutput: "handle-output",
	RoleCreated:      "created",
	RoleTwoCallArray: "two-call-array",
	RoleTwoCallCount: "two-call-count",
	RoleFixedArray:   "fixed-array",
	RoleFixedCount:   "fixed-count",
	RoleDispatch:     "dispatch",
	RoleAllocator:    "allocator",
}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("role(%d)", r)
}

// IsOutput reports whether the Enhanced variant returns the parameter by value.
func (r Role) IsOutput() bool {
	return r == RoleOutput || r == RoleHandleOutput || r == RoleCreated
}

// Shape is the overall parameter shape of a command.
type Shape uint8

const (
	// ShapeUnrecognized marks a command that matches no supported pattern.
	ShapeUnrecognized Shape = iota
	// ShapePlain has no outputs.
	ShapePlain
	// ShapeOutputs has scalar or handle outputs only.
	ShapeOutputs
	// ShapeTwoCall has exactly one two-call array and its count.
	ShapeTwoCall
)

func (s Shape) String() string {
	switch s {
	case ShapePlain:
		return "plain"
	case ShapeOutputs:
		return "outputs"
	case ShapeTwoCall:
		return "two-call"
	default:
		return "unrecognized"
	}
}

// TypeKind says what a synthesized type refers to.
type TypeKind uint8

const (
	KindPrimitive TypeKind = iota
	KindHandle
	KindStruct
	KindDispatch
	KindTypeParam
)

// Form says how a value is passed.
type Form uint8

const (
	FormValue Form = iota
	FormPointer
	FormSlice
)

// Type is a Go type in a synthesized signature.
type Type struct {
	// Name is the model type name. Empty for synthetic types.
	Name   string
	GoName string
	Kind   TypeKind
	Form   Form
}

// Elem returns t passed by value.
func (t Type) Elem() Type {
	t.Form = FormValue
	return t
}

func (t Type) String() string {
	switch t.Form {
	case FormPointer:
		return "*" + t.GoName
	case FormSlice:
		return "[]" + t.GoName
	default:
		return t.GoName
	}
}

// Param is one parameter of a synthesized signature.
type Param struct {
	// Name is the model parameter name.
	Name   string
	GoName string
	Type   Type
	Role   Role
	// Defaultable is set on a dispatch parameter that may be nil, in which
	// case the generated code falls back to the default dispatch table.
	Defaultable bool
}

// ResultKind classifies a signature result.
type ResultKind uint8

const (
	ResultStatus ResultKind = iota
	ResultValue
	ResultSequence
	ResultUnique
	ResultError
)

// Result is one result of a synthesized signature.
type Result struct {
	Name string
	Type Type
	Kind ResultKind
}

func (r Result) String() string {
	switch r.Kind {
	case ResultStatus:
		return "handlegen.Status"
	case ResultError:
		return "error"
	case ResultUnique:
		return "*Unique" + r.Type.GoName
	default:
		return r.Type.String()
	}
}

// TypeParam is an allocator type parameter constrained by
// handlegen.Allocator[Elem].
type TypeParam struct {
	Name string
	Elem Type
}

// Signature is a synthesized function signature.
type Signature struct {
	TypeParams []TypeParam
	Params     []Param
	Results    []Result
}

// Format renders the signature as a Go function header named name.
func (s Signature) Format(name string) string {
	var b strings.Builder
	b.WriteString(name)
	if len(s.TypeParams) > 0 {
		b.WriteByte('[')
		for i, tp := range s.TypeParams {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s handlegen.Allocator[%s]", tp.Name, tp.Elem)
		}
		b.WriteByte(']')
	}
	b.WriteByte('(')
	for i, p := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.GoName)
		b.WriteByte(' ')
		b.WriteString(p.Type.String())
	}
	b.WriteByte(')')
	switch len(s.Results) {
	case 0:
	case 1:
		b.WriteByte(' ')
		b.WriteString(s.Results[0].String())
	default:
		b.WriteString(" (")
		for i, r := range s.Results {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(r.String())
		}
		b.WriteByte(')')
	}
	return b.String()
}

// VariantKind is a calling convention.
type VariantKind uint8

const (
	// Basic mirrors the raw function and returns its status.
	Basic VariantKind = iota
	// Enhanced returns outputs by value and failures as errors.
	Enhanced
	// Unique returns the created handle inside an owning wrapper.
	Unique
)

func (k VariantKind) String() string {
	switch k {
	case Basic:
		return "basic"
	case Enhanced:
		return "enhanced"
	case Unique:
		return "unique"
	default:
		return fmt.Sprintf("variant(%d)", k)
	}
}

// TwoCallBinding ties an Enhanced variant to the two-call adapter.
type TwoCallBinding struct {
	Array string
	Count string
	Elem  Type
}

// DeleterBinding ties a Unique variant to the destroy command of the
// created handle type.
type DeleterBinding struct {
	Handle  string
	Destroy string
	// OwnerParam is the variant parameter supplying the owner handle the
	// destroy command needs, or empty.
	OwnerParam  string
	OwnerHandle string
}

// Variant is one synthesized calling convention of a command.
type Variant struct {
	Name      string
	Command   string
	Signature Signature
	TwoCall   *TwoCallBinding
	Deleter   *DeleterBinding
	Kind      VariantKind
	// WithAllocator marks the Enhanced overload taking an allocator.
	WithAllocator bool
	// CompatOnly marks a Basic variant whose parameters are identical to
	// the Enhanced variant's. It is exposed only in compatibility mode.
	CompatOnly bool
}
