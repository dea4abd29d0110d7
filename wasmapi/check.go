package wasmapi

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"
	"go.uber.org/multierr"

	"github.com/wippyai/handlegen/errors"
	"github.com/wippyai/handlegen/model"
)

// Lower returns the core parameter types a command takes once lowered:
// pointers and arrays become i32 offsets, handles follow their width and
// scalars follow their WIT type.
func Lower(m *model.Model, c *model.Command) []api.ValueType {
	types := make([]api.ValueType, 0, len(c.Params))
	for _, p := range c.Params {
		types = append(types, lowerParam(m, p))
	}
	return types
}

func lowerParam(m *model.Model, p model.Parameter) api.ValueType {
	if p.IsArray || p.Direction.Writes() {
		return api.ValueTypeI32
	}
	ref := m.Resolve(p.Type)
	switch ref.Class {
	case model.TypeHandle:
		h, _ := m.Handle(ref.Name)
		if h.Width() == 32 {
			return api.ValueTypeI32
		}
		return api.ValueTypeI64
	case model.TypePrimitive:
		switch ref.Prim.(type) {
		case wit.U64, wit.S64:
			return api.ValueTypeI64
		case wit.F32:
			return api.ValueTypeF32
		case wit.F64:
			return api.ValueTypeF64
		}
	}
	return api.ValueTypeI32
}

// Check verifies that every command of m is exported with the lowered
// signature and a single i32 status result. All mismatches are reported.
func (l *Library) Check(m *model.Model) error {
	defs := l.module.ExportedFunctionDefinitions()

	var errs error
	for i := range m.Commands {
		c := &m.Commands[i]
		def, ok := defs[c.Name]
		if !ok {
			err := errors.NotFound(errors.PhaseLoad, "export", c.Name)
			err.Command = c.Name
			errs = multierr.Append(errs, err)
			continue
		}
		want := Lower(m, c)
		if !slices.Equal(def.ParamTypes(), want) {
			errs = multierr.Append(errs, errors.InvalidData(errors.PhaseLoad, c.Name,
				fmt.Sprintf("parameters (%s), want (%s)", typeNames(def.ParamTypes()), typeNames(want))))
			continue
		}
		if !slices.Equal(def.ResultTypes(), []api.ValueType{api.ValueTypeI32}) {
			errs = multierr.Append(errs, errors.InvalidData(errors.PhaseLoad, c.Name,
				fmt.Sprintf("results (%s), want (i32)", typeNames(def.ResultTypes()))))
		}
	}
	return errs
}

func typeNames(types []api.ValueType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = api.ValueTypeName(t)
	}
	return strings.Join(names, ", ")
}
