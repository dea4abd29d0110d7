package model

import (
	"fmt"
	"strings"
)

// Direction is the data flow direction of a parameter.
type Direction uint8

const (
	In Direction = iota
	Out
	InOut
)

var directionNames = [...]string{In: "in", Out: "out", InOut: "inout"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("direction(%d)", d)
}

// Writes reports whether the callee writes through the parameter.
func (d Direction) Writes() bool {
	return d == Out || d == InOut
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	if int(d) >= len(directionNames) {
		return nil, fmt.Errorf("invalid direction %d", d)
	}
	return []byte(directionNames[d]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "in", "":
		*d = In
	case "out":
		*d = Out
	case "inout", "in-out", "in_out":
		*d = InOut
	default:
		return fmt.Errorf("invalid direction %q", text)
	}
	return nil
}

// Parameter is one argument of a command.
type Parameter struct {
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Direction Direction `json:"direction"`
	IsArray   bool      `json:"isArray,omitempty"`
	// CountParam names the sibling parameter holding the element count
	// of an array parameter.
	CountParam string `json:"countParamRef,omitempty"`
}

// Command is one function of the wrapped API.
type Command struct {
	Name   string      `json:"name"`
	Params []Parameter `json:"params"`
	// OwnerHandle is the handle type the command operates on. When empty
	// it defaults to the type of the first parameter if that is a handle.
	OwnerHandle    string `json:"ownerHandle,omitempty"`
	IsCreate       bool   `json:"isCreate,omitempty"`
	IsDestroy      bool   `json:"isDestroy,omitempty"`
	IsCoreFunction bool   `json:"isCoreFunction,omitempty"`
}

// Param returns the index of the named parameter, or -1.
func (c *Command) Param(name string) int {
	for i := range c.Params {
		if c.Params[i].Name == name {
			return i
		}
	}
	return -1
}

// HandleType describes an opaque handle of the wrapped API.
type HandleType struct {
	Name           string `json:"name"`
	Parent         string `json:"parentHandle,omitempty"`
	IsDestroyable  bool   `json:"isDestroyable,omitempty"`
	DestroyCommand string `json:"destroyCommand,omitempty"`
	// Bits is the raw representation width, 32 or 64. Zero means 64.
	Bits int `json:"bits,omitempty"`
}

// Width returns the raw representation width in bits.
func (h *HandleType) Width() int {
	if h.Bits == 0 {
		return 64
	}
	return h.Bits
}

// Model is a complete command model.
type Model struct {
	Handles  []HandleType `json:"handles"`
	Commands []Command    `json:"commands"`

	handleIndex  map[string]int
	commandIndex map[string]int
}

// New builds and validates a model.
func New(handles []HandleType, commands []Command) (*Model, error) {
	m := &Model{Handles: handles, Commands: commands}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Handle looks up a handle type by name.
func (m *Model) Handle(name string) (*HandleType, bool) {
	i, ok := m.handleIndex[name]
	if !ok {
		return nil, false
	}
	return &m.Handles[i], true
}

// HandleIndex returns the declaration index of a handle type, or -1.
func (m *Model) HandleIndex(name string) int {
	if i, ok := m.handleIndex[name]; ok {
		return i
	}
	return -1
}

// Command looks up a command by name.
func (m *Model) Command(name string) (*Command, bool) {
	i, ok := m.commandIndex[name]
	if !ok {
		return nil, false
	}
	return &m.Commands[i], true
}

// IsHandle reports whether typeName names a handle type.
func (m *Model) IsHandle(typeName string) bool {
	_, ok := m.handleIndex[typeName]
	return ok
}

// Owner returns the handle type a command operates on, or "".
func (m *Model) Owner(c *Command) string {
	if c.OwnerHandle != "" {
		return c.OwnerHandle
	}
	if len(c.Params) > 0 && c.Params[0].Direction == In && !c.Params[0].IsArray && m.IsHandle(c.Params[0].Type) {
		return c.Params[0].Type
	}
	return ""
}
