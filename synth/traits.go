package synth

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/wippyai/handlegen/errors"
	"github.com/wippyai/handlegen/model"
)

// Trait binds a destroyable handle type to its destroy command.
type Trait struct {
	Handle  string
	Destroy string
	// HandleParam is the destroy command parameter receiving the handle.
	HandleParam string
	// OwnerParam is the destroy command parameter receiving the owner
	// handle, or empty when the destroy command takes none.
	OwnerParam  string
	OwnerHandle string
}

// Traits builds the trait table for every destroyable handle type of m.
// Handle types that cannot be bound get no entry; the returned error
// combines one MissingTrait error per such type.
func Traits(m *model.Model) (map[string]Trait, error) {
	traits := make(map[string]Trait)
	var errs error
	for i := range m.Handles {
		h := &m.Handles[i]
		if !h.IsDestroyable {
			continue
		}
		t, err := traitOf(m, h)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		traits[h.Name] = t
	}
	return traits, errs
}

func traitOf(m *model.Model, h *model.HandleType) (Trait, error) {
	if h.DestroyCommand == "" {
		return Trait{}, errors.MissingTrait(h.Name, "", "destroyable handle has no destroy command")
	}
	cmd, ok := m.Command(h.DestroyCommand)
	if !ok {
		return Trait{}, errors.MissingTrait(h.Name, h.DestroyCommand, "destroy command is not declared")
	}
	if !cmd.IsDestroy {
		return Trait{}, errors.MissingTrait(h.Name, cmd.Name, "command is not a destroy command")
	}

	t := Trait{Handle: h.Name, Destroy: cmd.Name}
	for i := range cmd.Params {
		p := &cmd.Params[i]
		if p.Direction != model.In {
			return Trait{}, errors.MissingTrait(h.Name, cmd.Name,
				fmt.Sprintf("destroy command writes parameter %q", p.Name))
		}
		if p.IsArray || !m.IsHandle(p.Type) {
			continue
		}
		switch {
		case p.Type == h.Name && t.HandleParam == "":
			t.HandleParam = p.Name
		case t.HandleParam == "" && t.OwnerParam == "":
			t.OwnerParam = p.Name
			t.OwnerHandle = p.Type
		}
	}
	if t.HandleParam == "" {
		return Trait{}, errors.MissingTrait(h.Name, cmd.Name, "destroy command does not take the handle")
	}
	return t, nil
}
