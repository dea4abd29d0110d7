package emit

import (
	. "github.com/dave/jennifer/jen"

	"github.com/wippyai/handlegen/errors"
	"github.com/wippyai/handlegen/synth"
)

func (g *generator) command(c *synth.CommandResult) error {
	for _, v := range c.Visible(g.out.Options.Compatibility) {
		var err error
		switch {
		case v.Kind == synth.Basic:
			g.basic(c, &v)
		case v.Kind == synth.Unique:
			err = g.unique(c, &v)
		case v.TwoCall != nil:
			g.twoCall(c, &v)
		default:
			g.enhanced(c, &v)
		}
		if err != nil {
			return err
		}
		g.f.Line()
	}
	return nil
}

// signature renders the function header of v.
func (g *generator) signature(v *synth.Variant) *Statement {
	s := Func().Id(v.Name)
	if len(v.Signature.TypeParams) > 0 {
		s.TypesFunc(func(tg *Group) {
			for _, tp := range v.Signature.TypeParams {
				tg.Id(tp.Name).Qual(handlegenPath, "Allocator").Types(g.typeCode(tp.Elem))
			}
		})
	}
	s.ParamsFunc(func(pg *Group) {
		for _, p := range v.Signature.Params {
			pg.Id(p.GoName).Add(g.typeCode(p.Type))
		}
	})

	results := make([]Code, len(v.Signature.Results))
	for i, r := range v.Signature.Results {
		results[i] = g.resultCode(r)
	}
	if len(results) == 1 {
		return s.Add(results[0])
	}
	return s.Params(results...)
}

// defaultDispatch falls back to DefaultDispatch for core commands.
func defaultDispatch(body *Group, v *synth.Variant) {
	for _, p := range v.Signature.Params {
		if p.Role == synth.RoleDispatch && p.Defaultable {
			body.If(Id(p.GoName).Op("==").Nil()).Block(
				Id(p.GoName).Op("=").Id("DefaultDispatch"),
			)
		}
	}
}

// rawCall invokes the dispatch entry of c, passing each raw parameter as
// returned by arg.
func rawCall(c *synth.CommandResult, arg func(p synth.Param) Code) *Statement {
	return Id("dispatch").Dot(c.GoName).CallFunc(func(a *Group) {
		for _, p := range c.Params {
			a.Add(arg(p))
		}
	})
}

func (g *generator) basic(c *synth.CommandResult, v *synth.Variant) {
	g.f.Commentf("%s calls %s and returns its status.", v.Name, c.Command)
	g.f.Add(g.signature(v)).BlockFunc(func(body *Group) {
		defaultDispatch(body, v)
		body.Return(rawCall(c, func(p synth.Param) Code { return Id(p.GoName) }))
	})
}

func (g *generator) enhanced(c *synth.CommandResult, v *synth.Variant) {
	g.f.Commentf("%s calls %s and returns its outputs, or an error unless it succeeds.", v.Name, c.Command)
	g.f.Add(g.signature(v)).BlockFunc(func(body *Group) {
		defaultDispatch(body, v)

		var outputs, zeros []Code
		for _, p := range c.Params {
			if p.Role.IsOutput() {
				body.Var().Id(p.GoName).Add(g.typeCode(p.Type.Elem()))
				outputs = append(outputs, Id(p.GoName))
				zeros = append(zeros, g.zeroValue(p.Type.Elem()))
			}
		}

		call := rawCall(c, func(p synth.Param) Code {
			if p.Role.IsOutput() {
				return Op("&").Id(p.GoName)
			}
			return Id(p.GoName)
		})
		body.If(
			Err().Op(":=").Qual(handlegenPath, "Check").Call(Lit(c.Command), call),
			Err().Op("!=").Nil(),
		).Block(
			Return(append(zeros, Err())...),
		)
		body.Return(append(outputs, Nil())...)
	})
}

// fillFunc renders the twocall.Func closure of a two-call command.
func (g *generator) fillFunc(c *synth.CommandResult, b *synth.TwoCallBinding) *Statement {
	var count, array synth.Param
	for _, p := range c.Params {
		switch p.Name {
		case b.Count:
			count = p
		case b.Array:
			array = p
		}
	}

	return Func().Params(
		Id(count.GoName).Op("*").Uint32(),
		Id(array.GoName).Add(g.typeCode(array.Type)),
	).Qual(handlegenPath, "Status").BlockFunc(func(body *Group) {
		if count.Type.GoName == "uint32" {
			body.Return(rawCall(c, func(p synth.Param) Code { return Id(p.GoName) }))
			return
		}
		// the adapter counts in uint32; widen around the raw call and
		// refuse counts that do not narrow back
		body.Id("wide").Op(":=").Id(count.Type.GoName).Call(Op("*").Id(count.GoName))
		body.Id("status").Op(":=").Add(rawCall(c, func(p synth.Param) Code {
			if p.Name == b.Count {
				return Op("&").Id("wide")
			}
			return Id(p.GoName)
		}))
		body.If(
			Id("status").Op(">=").Qual(handlegenPath, "Success").Op("&&").
				Uint64().Call(Id("wide")).Op(">").Qual("math", "MaxUint32"),
		).Block(
			Return(Qual(handlegenPath, "ErrorCountOverflow")),
		)
		body.Op("*").Id(count.GoName).Op("=").Uint32().Call(Id("wide"))
		body.Return(Id("status"))
	})
}

func (g *generator) twoCall(c *synth.CommandResult, v *synth.Variant) {
	if v.WithAllocator {
		g.f.Commentf("%s calls %s and returns all elements in storage from alloc.", v.Name, c.Command)
	} else {
		g.f.Commentf("%s calls %s and returns all elements.", v.Name, c.Command)
	}
	g.f.Add(g.signature(v)).BlockFunc(func(body *Group) {
		defaultDispatch(body, v)
		fill := g.fillFunc(c, v.TwoCall)
		if v.WithAllocator {
			body.Return(Qual(twocallPath, "EnumerateWith").Call(Lit(c.Command), fill, Id("alloc")))
			return
		}
		body.Return(Qual(twocallPath, "Enumerate").Call(Lit(c.Command), fill))
	})
}

func (g *generator) unique(c *synth.CommandResult, v *synth.Variant) error {
	enhanced, ok := c.Variant(synth.Enhanced)
	if !ok {
		return errors.InvalidData(errors.PhaseEmit, c.Command, "unique variant without enhanced variant")
	}
	deleter, err := g.deleter(v)
	if err != nil {
		return err
	}

	g.f.Commentf("%s calls %s and returns the created %s owned by a Unique%s.",
		v.Name, c.Command, g.handles[v.Deleter.Handle].GoName, g.handles[v.Deleter.Handle].GoName)
	g.f.Add(g.signature(v)).BlockFunc(func(body *Group) {
		defaultDispatch(body, v)

		var names, zeros, results []Code
		for _, r := range v.Signature.Results {
			if r.Kind == synth.ResultError {
				continue
			}
			names = append(names, Id(r.Name))
			if r.Kind == synth.ResultUnique {
				zeros = append(zeros, Nil())
				results = append(results, Qual(uniquePath, "New").Call(Id(r.Name), deleter))
			} else {
				zeros = append(zeros, g.zeroValue(r.Type))
				results = append(results, Id(r.Name))
			}
		}

		body.List(append(names, Err())...).Op(":=").Id(enhanced.Name).CallFunc(func(a *Group) {
			for _, p := range v.Signature.Params {
				a.Id(p.GoName)
			}
		})
		body.If(Err().Op("!=").Nil()).Block(Return(append(zeros, Err())...))
		body.Return(append(results, Nil())...)
	})
	return nil
}

// deleter renders the unique.Deleter bound to the destroy command of the
// created handle.
func (g *generator) deleter(v *synth.Variant) (*Statement, error) {
	b := v.Deleter
	destroy, ok := g.out.Command(b.Destroy)
	if !ok {
		return nil, errors.NotFound(errors.PhaseEmit, "destroy command", b.Destroy)
	}
	t, ok := g.out.Traits[b.Handle]
	if !ok {
		return nil, errors.MissingTrait(b.Handle, b.Destroy, "no trait for unique variant")
	}
	handleType := g.handles[b.Handle].GoName

	call := Id("dispatch").Dot(destroy.GoName).CallFunc(func(a *Group) {
		for _, p := range destroy.Params {
			switch p.Name {
			case t.HandleParam:
				a.Id("h")
			case t.OwnerParam:
				a.Id("owner")
			default:
				a.Add(g.zeroValue(p.Type))
			}
		}
	})

	if b.OwnerParam == "" {
		return Qual(uniquePath, "DeleterFunc").Call(
			Lit(destroy.Command),
			Func().Params(Id("h").Id(handleType)).Qual(handlegenPath, "Status").Block(Return(call)),
		), nil
	}

	var owner string
	for _, p := range v.Signature.Params {
		if p.Name == b.OwnerParam {
			owner = p.GoName
		}
	}
	return Qual(uniquePath, "ObjectDestroy").Call(
		Lit(destroy.Command),
		Id(owner),
		Func().Params(
			Id("owner").Id(g.handles[b.OwnerHandle].GoName),
			Id("h").Id(handleType),
		).Qual(handlegenPath, "Status").Block(Return(call)),
	), nil
}
