package model

import (
	"github.com/wippyai/handlegen/errors"
)

// Validate checks model-level consistency and builds the lookup indexes.
// Problems confined to a single command's parameter shape are left to the
// synthesizer, which degrades that command instead of failing the model.
func (m *Model) Validate() error {
	m.handleIndex = make(map[string]int, len(m.Handles))
	for i := range m.Handles {
		h := &m.Handles[i]
		if h.Name == "" {
			return errors.InvalidModel("handle type %d has no name", i)
		}
		if _, dup := m.handleIndex[h.Name]; dup {
			return errors.InvalidModel("duplicate handle type %q", h.Name)
		}
		if h.Bits != 0 && h.Bits != 32 && h.Bits != 64 {
			return errors.InvalidModel("handle type %q: unsupported width %d", h.Name, h.Bits)
		}
		m.handleIndex[h.Name] = i
	}

	for i := range m.Handles {
		h := &m.Handles[i]
		if h.Parent == "" {
			continue
		}
		if _, ok := m.handleIndex[h.Parent]; !ok {
			return errors.InvalidModel("handle type %q: unknown parent %q", h.Name, h.Parent)
		}
	}
	// parentCycle walks through the index, so every parent must resolve first
	for i := range m.Handles {
		h := &m.Handles[i]
		if h.Parent != "" && m.parentCycle(h) {
			return errors.InvalidModel("handle type %q: parent chain forms a cycle", h.Name)
		}
	}

	m.commandIndex = make(map[string]int, len(m.Commands))
	for i := range m.Commands {
		c := &m.Commands[i]
		if c.Name == "" {
			return errors.InvalidModel("command %d has no name", i)
		}
		if _, dup := m.commandIndex[c.Name]; dup {
			return errors.InvalidModel("duplicate command %q", c.Name)
		}
		seen := make(map[string]struct{}, len(c.Params))
		for j := range c.Params {
			p := &c.Params[j]
			if p.Name == "" {
				return errors.InvalidModel("command %q: parameter %d has no name", c.Name, j)
			}
			if p.Type == "" {
				return errors.InvalidModel("command %q: parameter %q has no type", c.Name, p.Name)
			}
			if _, dup := seen[p.Name]; dup {
				return errors.InvalidModel("command %q: duplicate parameter %q", c.Name, p.Name)
			}
			if p.Direction > InOut {
				return errors.InvalidModel("command %q: parameter %q has invalid direction", c.Name, p.Name)
			}
			seen[p.Name] = struct{}{}
		}
		if c.OwnerHandle != "" {
			if _, ok := m.handleIndex[c.OwnerHandle]; !ok {
				return errors.InvalidModel("command %q: unknown owner handle %q", c.Name, c.OwnerHandle)
			}
		}
		m.commandIndex[c.Name] = i
	}

	return nil
}

func (m *Model) parentCycle(h *HandleType) bool {
	cur := h
	for steps := 0; cur.Parent != ""; steps++ {
		if steps >= len(m.Handles) {
			return true
		}
		cur = &m.Handles[m.handleIndex[cur.Parent]]
	}
	return false
}
