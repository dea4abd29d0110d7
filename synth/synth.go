package synth

import (
	"slices"

	"go.uber.org/zap"

	"github.com/wippyai/handlegen/model"
)

// CommandResult is the synthesis outcome for one command.
type CommandResult struct {
	// Err is the SynthesisError that limited the command to its Basic
	// variant, or nil.
	Err     error
	Command string
	GoName  string
	Owner   string
	// Params are the raw parameters in declaration order with their raw
	// form and role.
	Params   []Param
	Variants []Variant
	Shape    Shape
	// Core reports whether the dispatch parameter may be left nil.
	Core bool
}

// Variant returns the first variant of kind k. For Enhanced this is the
// overload without an allocator.
func (r *CommandResult) Variant(k VariantKind) (*Variant, bool) {
	for i := range r.Variants {
		if r.Variants[i].Kind == k {
			return &r.Variants[i], true
		}
	}
	return nil, false
}

// Visible returns the variants exposed by default, or in compatibility mode
// when compat is set.
func (r *CommandResult) Visible(compat bool) []Variant {
	out := make([]Variant, 0, len(r.Variants))
	for _, v := range r.Variants {
		if v.CompatOnly && !compat {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Synthesizer builds calling-convention variants for the commands of one
// model. It only reads the model and trait table and is safe for concurrent
// use.
type Synthesizer struct {
	model  *model.Model
	traits map[string]Trait
	opts   Options
}

// New creates a synthesizer over a validated model and its trait table.
func New(m *model.Model, traits map[string]Trait, opts Options) *Synthesizer {
	return &Synthesizer{model: m, traits: traits, opts: opts}
}

// Command synthesizes the variants of cmd.
func (s *Synthesizer) Command(cmd *model.Command) CommandResult {
	cl, err := Classify(s.model, cmd)

	res := CommandResult{
		Command: cmd.Name,
		GoName:  GoName(cmd.Name, s.opts.StripPrefix),
		Owner:   cl.Owner,
		Shape:   cl.Shape,
		Core:    cmd.IsCoreFunction,
		Params:  make([]Param, len(cmd.Params)),
	}
	for i := range cmd.Params {
		p := &cmd.Params[i]
		res.Params[i] = Param{
			Name:   p.Name,
			GoName: ParamName(p.Name),
			Type:   s.paramType(p, cl.Refs[i]),
			Role:   cl.Roles[i],
		}
	}

	basic := s.basic(&res)
	if err != nil || s.opts.DisableEnhanced {
		res.Err = err
		res.Variants = []Variant{basic}
		return res
	}

	enhanced := s.enhanced(&res, cl)
	basic.Name = res.GoName + "Raw"
	basic.CompatOnly = slices.Equal(basic.Signature.Params, enhanced.Signature.Params)
	res.Variants = append(res.Variants, basic, enhanced)

	if enhanced.TwoCall != nil {
		res.Variants = append(res.Variants, s.withAllocator(enhanced))
	}
	if cl.Created >= 0 && !s.opts.NoSmartHandle {
		if u, ok := s.unique(&res, cl, enhanced); ok {
			res.Variants = append(res.Variants, u)
		}
	}
	return res
}

func (s *Synthesizer) dispatch(res *CommandResult) Param {
	return Param{
		Name:        "dispatch",
		GoName:      "dispatch",
		Type:        Type{Kind: KindDispatch, GoName: "Dispatch", Form: FormPointer},
		Role:        RoleDispatch,
		Defaultable: res.Core,
	}
}

func (s *Synthesizer) basic(res *CommandResult) Variant {
	params := make([]Param, 0, len(res.Params)+1)
	params = append(params, res.Params...)
	params = append(params, s.dispatch(res))
	return Variant{
		Kind:    Basic,
		Name:    res.GoName,
		Command: res.Command,
		Signature: Signature{
			Params:  params,
			Results: []Result{{Name: "status", Kind: ResultStatus}},
		},
	}
}

func (s *Synthesizer) enhanced(res *CommandResult, cl *Classification) Variant {
	v := Variant{Kind: Enhanced, Name: res.GoName, Command: res.Command}
	for _, p := range res.Params {
		switch {
		case p.Role.IsOutput():
			v.Signature.Results = append(v.Signature.Results, Result{Name: p.GoName, Type: p.Type.Elem(), Kind: ResultValue})
		case p.Role == RoleTwoCallArray:
			v.Signature.Results = append(v.Signature.Results, Result{Name: p.GoName, Type: p.Type, Kind: ResultSequence})
			v.TwoCall = &TwoCallBinding{
				Array: p.Name,
				Count: res.Params[cl.Count].Name,
				Elem:  p.Type.Elem(),
			}
		case p.Role == RoleTwoCallCount:
		default:
			v.Signature.Params = append(v.Signature.Params, p)
		}
	}
	v.Signature.Params = append(v.Signature.Params, s.dispatch(res))
	v.Signature.Results = append(v.Signature.Results, Result{Name: "err", Kind: ResultError})
	return v
}

// withAllocator derives the Enhanced overload that takes a caller-supplied
// allocator for the returned sequence.
func (s *Synthesizer) withAllocator(enhanced Variant) Variant {
	v := enhanced
	v.Name += "WithAllocator"
	v.WithAllocator = true
	v.Signature.TypeParams = []TypeParam{{Name: "A", Elem: enhanced.TwoCall.Elem}}

	in := enhanced.Signature.Params
	params := make([]Param, 0, len(in)+1)
	params = append(params, in[:len(in)-1]...)
	params = append(params, Param{
		Name:   "allocator",
		GoName: "alloc",
		Type:   Type{Kind: KindTypeParam, GoName: "A"},
		Role:   RoleAllocator,
	})
	params = append(params, in[len(in)-1])
	v.Signature.Params = params
	v.Signature.Results = slices.Clone(enhanced.Signature.Results)
	return v
}

// unique derives the Unique variant of a create command. It is skipped when
// the created handle type has no trait or the command has no parameter that
// can supply the owner the destroy command needs.
func (s *Synthesizer) unique(res *CommandResult, cl *Classification, enhanced Variant) (Variant, bool) {
	created := res.Params[cl.Created]
	t, ok := s.traits[created.Type.Name]
	if !ok {
		return Variant{}, false
	}

	binding := &DeleterBinding{Handle: t.Handle, Destroy: t.Destroy, OwnerHandle: t.OwnerHandle}
	if t.OwnerHandle != "" {
		for _, p := range enhanced.Signature.Params {
			if p.Role == RoleHandleInput && p.Type.Name == t.OwnerHandle {
				binding.OwnerParam = p.Name
				break
			}
		}
		if binding.OwnerParam == "" {
			Logger().Debug("no unique variant: owner handle not among inputs",
				zap.String("command", res.Command),
				zap.String("owner", t.OwnerHandle))
			return Variant{}, false
		}
	}

	v := enhanced
	v.Kind = Unique
	v.Name += "Unique"
	v.Deleter = binding
	v.Signature.Params = slices.Clone(enhanced.Signature.Params)
	v.Signature.Results = slices.Clone(enhanced.Signature.Results)
	for i := range v.Signature.Results {
		if v.Signature.Results[i].Name == created.GoName {
			v.Signature.Results[i].Kind = ResultUnique
		}
	}
	return v, true
}
