package emit

import (
	"bytes"
	"go/token"
	"io"
	"sort"

	. "github.com/dave/jennifer/jen"

	"github.com/wippyai/handlegen/errors"
	"github.com/wippyai/handlegen/synth"
)

const (
	handlegenPath = "github.com/wippyai/handlegen"
	handlePath    = "github.com/wippyai/handlegen/handle"
	twocallPath   = "github.com/wippyai/handlegen/twocall"
	uniquePath    = "github.com/wippyai/handlegen/unique"
)

// Config controls source emission.
type Config struct {
	// Package is the generated package name. Empty means "api".
	Package string

	// StructPackage is the import path declaring the opaque structure types
	// commands take by pointer. When empty, empty placeholder structs are
	// declared in the generated package.
	StructPackage string
}

type generator struct {
	out     *synth.Output
	f       *File
	handles map[string]*synth.HandleDescriptor
	cfg     Config
}

// Build assembles the generated file for out.
func Build(out *synth.Output, cfg Config) (*File, error) {
	if out == nil {
		return nil, errors.InvalidData(errors.PhaseEmit, "", "no synthesis output")
	}
	if cfg.Package == "" {
		cfg.Package = "api"
	}
	if !token.IsIdentifier(cfg.Package) || token.IsKeyword(cfg.Package) {
		return nil, errors.InvalidData(errors.PhaseEmit, "", "invalid package name "+cfg.Package)
	}

	f := NewFile(cfg.Package)
	f.HeaderComment("Code generated by handlegen. DO NOT EDIT.")
	f.ImportName(handlegenPath, "handlegen")
	f.ImportName(handlePath, "handle")
	f.ImportName(twocallPath, "twocall")
	f.ImportName(uniquePath, "unique")

	g := &generator{
		out:     out,
		f:       f,
		cfg:     cfg,
		handles: make(map[string]*synth.HandleDescriptor, len(out.Handles)),
	}
	for i := range out.Handles {
		g.handles[out.Handles[i].Name] = &out.Handles[i]
	}

	g.handleTypes()
	g.handleTable()
	g.structTypes()
	g.dispatch()
	for i := range out.Commands {
		if err := g.command(&out.Commands[i]); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Source renders the generated file for out as formatted Go source.
func Source(out *synth.Output, cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, out, cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write renders the generated file for out to w.
func Write(w io.Writer, out *synth.Output, cfg Config) error {
	f, err := Build(out, cfg)
	if err != nil {
		return err
	}
	if err := f.Render(w); err != nil {
		return errors.Wrap(errors.PhaseEmit, errors.KindInvalidData, err, "render generated source")
	}
	return nil
}

func rawType(bits int) string {
	if bits == 32 {
		return "uint32"
	}
	return "uint64"
}

func (g *generator) handleTypes() {
	for i := range g.out.Handles {
		h := &g.out.Handles[i]
		kind := h.GoName + "Kind"
		raw := rawType(h.Bits)

		g.f.Commentf("%s tags %s handles.", kind, h.GoName)
		g.f.Type().Id(kind).Struct()
		g.f.Line()
		g.f.Comment("ObjectType implements handle.Kind.")
		g.f.Func().Params(Id(kind)).Id("ObjectType").Params().Qual(handlePath, "ObjectType").Block(
			Return(Lit(int(h.ObjectType))),
		)
		g.f.Line()
		g.f.Comment("TypeName implements handle.Kind.")
		g.f.Func().Params(Id(kind)).Id("TypeName").Params().String().Block(
			Return(Lit(h.Name)),
		)
		g.f.Line()
		g.f.Commentf("%s is a handle to a %s object.", h.GoName, h.Name)
		g.f.Type().Id(h.GoName).Op("=").Qual(handlePath, "Handle").Types(Id(kind), Id(raw))
		g.f.Line()

		if !h.ExplicitConversion {
			g.f.Commentf("%sOf converts a raw value to a %s.", h.GoName, h.GoName)
			g.f.Func().Id(h.GoName + "Of").Params(Id("raw").Id(raw)).Id(h.GoName).Block(
				Return(Qual(handlePath, "Of").Types(Id(kind)).Call(Id("raw"))),
			)
			g.f.Line()
		}
		if h.Unique != nil {
			g.f.Commentf("Unique%s owns a %s and destroys it with %s.", h.GoName, h.GoName, h.Unique.Destroy)
			g.f.Type().Id("Unique" + h.GoName).Op("=").Qual(uniquePath, "Unique").Types(Id(kind), Id(raw))
			g.f.Line()
		}
	}
}

func (g *generator) handleTable() {
	g.f.Comment("HandleTable returns the association table of all handle types.")
	g.f.Func().Id("HandleTable").Params().Params(Op("*").Qual(handlePath, "Table"), Error()).Block(
		Return(Qual(handlePath, "NewTable").CallFunc(func(c *Group) {
			for _, h := range g.out.Handles {
				fields := Dict{
					Id("Name"):       Lit(h.Name),
					Id("ObjectType"): Lit(int(h.ObjectType)),
					Id("Bits"):       Lit(h.Bits),
				}
				if h.Parent != "" {
					fields[Id("Parent")] = Lit(h.Parent)
				}
				c.Qual(handlePath, "Entry").Values(fields)
			}
		})),
	)
	g.f.Line()
}

// structTypes declares placeholders for the opaque structures referenced by
// commands, unless they come from StructPackage.
func (g *generator) structTypes() {
	if g.cfg.StructPackage != "" {
		return
	}
	seen := make(map[string]bool)
	var names []string
	for _, c := range g.out.Commands {
		for _, p := range c.Params {
			if p.Type.Kind == synth.KindStruct && !seen[p.Type.GoName] {
				seen[p.Type.GoName] = true
				names = append(names, p.Type.GoName)
			}
		}
	}
	sort.Strings(names)
	for _, name := range names {
		g.f.Commentf("%s is an opaque structure passed by pointer.", name)
		g.f.Type().Id(name).Struct()
		g.f.Line()
	}
}

func (g *generator) dispatch() {
	g.f.Comment("Dispatch holds the entry points of the API, one per command.")
	g.f.Type().Id("Dispatch").StructFunc(func(s *Group) {
		for _, c := range g.out.Commands {
			s.Id(c.GoName).Func().ParamsFunc(func(pg *Group) {
				for _, p := range c.Params {
					pg.Id(p.GoName).Add(g.typeCode(p.Type))
				}
			}).Qual(handlegenPath, "Status")
		}
	})
	g.f.Line()
	g.f.Comment("DefaultDispatch is used by core commands called with a nil dispatch.")
	g.f.Var().Id("DefaultDispatch").Op("=").New(Id("Dispatch"))
	g.f.Line()
}

func (g *generator) typeCode(t synth.Type) *Statement {
	var base *Statement
	if t.Kind == synth.KindStruct && g.cfg.StructPackage != "" {
		base = Qual(g.cfg.StructPackage, t.GoName)
	} else {
		base = Id(t.GoName)
	}
	switch t.Form {
	case synth.FormPointer:
		return Op("*").Add(base)
	case synth.FormSlice:
		return Index().Add(base)
	}
	return base
}

func (g *generator) zeroValue(t synth.Type) *Statement {
	if t.Form != synth.FormValue {
		return Nil()
	}
	if t.Kind != synth.KindPrimitive {
		return g.typeCode(t).Values()
	}
	switch t.GoName {
	case "bool":
		return False()
	case "string":
		return Lit("")
	}
	return Lit(0)
}

func (g *generator) resultCode(r synth.Result) *Statement {
	switch r.Kind {
	case synth.ResultStatus:
		return Qual(handlegenPath, "Status")
	case synth.ResultError:
		return Error()
	case synth.ResultUnique:
		return Op("*").Id("Unique" + r.Type.GoName)
	}
	return g.typeCode(r.Type)
}
