package synth

import (
	"fmt"

	"github.com/wippyai/handlegen/errors"
	"github.com/wippyai/handlegen/model"
)

// Classification is the parameter analysis of one command.
type Classification struct {
	// Owner is the handle type the command operates on, or empty.
	Owner string
	Refs  []model.TypeRef
	Roles []Role
	Shape Shape
	// TwoCall and Count index the two-call array and its count, or -1.
	TwoCall int
	Count   int
	// Created indexes the created handle of a create command, or -1.
	Created int
}

// Classify assigns every parameter of cmd a role and cmd a shape.
//
// An array is two-call only when it is written by the callee and its count
// parameter is in-out. Every other array is fixed and passed through.
// On error the returned classification carries the roles assigned so far and
// Shape is ShapeUnrecognized.
func Classify(m *model.Model, cmd *model.Command) (*Classification, error) {
	c := &Classification{
		Owner:   m.Owner(cmd),
		Refs:    make([]model.TypeRef, len(cmd.Params)),
		Roles:   make([]Role, len(cmd.Params)),
		TwoCall: -1,
		Count:   -1,
		Created: -1,
	}
	for i := range cmd.Params {
		c.Refs[i] = m.Resolve(cmd.Params[i].Type)
	}

	counts := make(map[int]Role)
	for i := range cmd.Params {
		p := &cmd.Params[i]
		if !p.IsArray {
			continue
		}
		ci, err := c.countOf(cmd, i)
		if err != nil {
			return c, err
		}

		role, countRole := RoleFixedArray, RoleFixedCount
		if p.Direction.Writes() && cmd.Params[ci].Direction == model.InOut {
			role, countRole = RoleTwoCallArray, RoleTwoCallCount
		}
		if prev, ok := counts[ci]; ok && prev != countRole {
			return c, errors.UnrecognizedShape(cmd.Name, p.Name,
				fmt.Sprintf("count parameter %q is shared by fixed and two-call arrays", cmd.Params[ci].Name))
		}
		if role == RoleTwoCallArray {
			if c.TwoCall >= 0 {
				return c, errors.UnrecognizedShape(cmd.Name, p.Name,
					fmt.Sprintf("second two-call output besides %q", cmd.Params[c.TwoCall].Name))
			}
			c.TwoCall, c.Count = i, ci
		}
		c.Roles[i] = role
		counts[ci] = countRole
	}

	outputs := 0
	for i := range cmd.Params {
		p := &cmd.Params[i]
		if p.IsArray {
			continue
		}
		if r, ok := counts[i]; ok {
			c.Roles[i] = r
			continue
		}
		isHandle := c.Refs[i].Class == model.TypeHandle
		switch {
		case p.Direction == model.In && isHandle:
			c.Roles[i] = RoleHandleInput
		case p.Direction == model.In:
			c.Roles[i] = RoleInput
		case p.Direction == model.Out && isHandle:
			c.Roles[i] = RoleHandleOutput
			outputs++
		case p.Direction == model.Out:
			c.Roles[i] = RoleOutput
			outputs++
		default:
			c.Roles[i] = RoleInOut
		}
	}

	if cmd.IsCreate {
		for i := len(cmd.Params) - 1; i >= 0; i-- {
			if c.Roles[i] == RoleHandleOutput {
				c.Roles[i] = RoleCreated
				c.Created = i
				break
			}
		}
		if c.Created < 0 {
			return c, errors.UnrecognizedShape(cmd.Name, "", "create command has no handle output")
		}
	}

	switch {
	case c.TwoCall >= 0 && outputs > 0:
		return c, errors.UnrecognizedShape(cmd.Name, cmd.Params[c.TwoCall].Name,
			"two-call output mixed with other outputs")
	case c.TwoCall >= 0:
		c.Shape = ShapeTwoCall
	case outputs > 0:
		c.Shape = ShapeOutputs
	default:
		c.Shape = ShapePlain
	}
	return c, nil
}

// countOf resolves the count parameter of array parameter i.
func (c *Classification) countOf(cmd *model.Command, i int) (int, error) {
	p := &cmd.Params[i]
	if p.CountParam == "" {
		return -1, errors.UnrecognizedShape(cmd.Name, p.Name, "array has no count parameter")
	}
	ci := cmd.Param(p.CountParam)
	if ci < 0 {
		return -1, errors.UnrecognizedShape(cmd.Name, p.Name,
			fmt.Sprintf("unknown count parameter %q", p.CountParam))
	}
	ref := c.Refs[ci]
	if ci == i || cmd.Params[ci].IsArray || ref.Class != model.TypePrimitive || !model.IsInteger(ref.Prim) {
		return -1, errors.UnrecognizedShape(cmd.Name, p.Name,
			fmt.Sprintf("count parameter %q is not an integer scalar", p.CountParam))
	}
	return ci, nil
}
