package synth

import (
	"context"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/handlegen/handle"
	"github.com/wippyai/handlegen/model"
)

// HandleDescriptor describes the wrapper type of one handle type.
type HandleDescriptor struct {
	// Unique is the ownership binding, or nil when the handle type is not
	// destroyable, has no trait, or smart handles are disabled.
	Unique     *Trait
	Name       string
	GoName     string
	Parent     string
	Bits       int
	ObjectType handle.ObjectType
	// ExplicitConversion is false only for 64-bit handles with wide
	// handles enabled.
	ExplicitConversion bool
}

// Output is the result of one generation pass.
type Output struct {
	Traits   map[string]Trait
	traitErr error
	Handles  []HandleDescriptor
	Commands []CommandResult
	Options  Options
}

// Generate synthesizes every command of m concurrently.
//
// The returned error is non-nil only when m fails validation or ctx is
// cancelled. Per-command and per-handle synthesis errors are reported by
// Output.Err.
func Generate(ctx context.Context, m *model.Model, opts Options) (*Output, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	traits, traitErr := Traits(m)
	for _, err := range multierr.Errors(traitErr) {
		Logger().Warn("handle has no ownership binding", zap.Error(err))
	}

	s := New(m, traits, opts)
	results := make([]CommandResult, len(m.Commands))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.parallelism())
	for i := range m.Commands {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.Command(&m.Commands[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	degraded := 0
	for i := range results {
		if results[i].Err != nil {
			degraded++
			Logger().Warn("command limited to basic variant",
				zap.String("command", results[i].Command),
				zap.Error(results[i].Err))
		}
	}

	out := &Output{
		Options:  opts,
		Handles:  describeHandles(m, traits, opts),
		Commands: results,
		Traits:   traits,
		traitErr: traitErr,
	}
	Logger().Debug("synthesis complete",
		zap.Int("handles", len(out.Handles)),
		zap.Int("commands", len(results)),
		zap.Int("degraded", degraded))
	return out, nil
}

func describeHandles(m *model.Model, traits map[string]Trait, opts Options) []HandleDescriptor {
	out := make([]HandleDescriptor, len(m.Handles))
	for i := range m.Handles {
		h := &m.Handles[i]
		d := HandleDescriptor{
			Name:               h.Name,
			GoName:             GoName(h.Name, opts.StripPrefix),
			ObjectType:         handle.ObjectType(i + 1),
			Bits:               h.Width(),
			Parent:             h.Parent,
			ExplicitConversion: !(opts.WideHandles && h.Width() == 64),
		}
		if t, ok := traits[h.Name]; ok && !opts.NoSmartHandle {
			d.Unique = &t
		}
		out[i] = d
	}
	return out
}

// Err combines every synthesis error of the pass, or returns nil.
func (o *Output) Err() error {
	errs := make([]error, 0, len(o.Commands)+1)
	errs = append(errs, o.traitErr)
	for i := range o.Commands {
		errs = append(errs, o.Commands[i].Err)
	}
	return multierr.Combine(errs...)
}

// Command looks up the result for a command by model name.
func (o *Output) Command(name string) (*CommandResult, bool) {
	for i := range o.Commands {
		if o.Commands[i].Command == name {
			return &o.Commands[i], true
		}
	}
	return nil, false
}

// Handle looks up a handle descriptor by model name.
func (o *Output) Handle(name string) (*HandleDescriptor, bool) {
	for i := range o.Handles {
		if o.Handles[i].Name == name {
			return &o.Handles[i], true
		}
	}
	return nil, false
}

// Table returns the association table of all handle types.
func (o *Output) Table() (*handle.Table, error) {
	entries := make([]handle.Entry, len(o.Handles))
	for i, h := range o.Handles {
		entries[i] = handle.Entry{
			Name:       h.Name,
			Parent:     h.Parent,
			ObjectType: h.ObjectType,
			Bits:       h.Bits,
		}
	}
	return handle.NewTable(entries...)
}
