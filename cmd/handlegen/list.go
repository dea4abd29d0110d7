package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/handlegen/synth"
)

type palette struct {
	title   lipgloss.Style
	command lipgloss.Style
	kind    lipgloss.Style
	sig     lipgloss.Style
	warn    lipgloss.Style
	dim     lipgloss.Style
}

func newPalette(color bool) palette {
	if !color {
		plain := lipgloss.NewStyle()
		return palette{plain, plain, plain, plain, plain, plain}
	}
	return palette{
		title:   titleStyle,
		command: funcStyle,
		kind:    kindStyle,
		sig:     typeStyle,
		warn:    errorStyle,
		dim:     helpStyle,
	}
}

func printList(w io.Writer, out *synth.Output, p palette) {
	fmt.Fprintln(w, p.title.Render("Handles"))
	for _, h := range out.Handles {
		fmt.Fprintf(w, "  %s\n", describeHandle(h, p))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, p.title.Render("Commands"))
	for i := range out.Commands {
		c := &out.Commands[i]
		fmt.Fprintf(w, "  %s %s\n", p.command.Render(c.Command), p.dim.Render("["+c.Shape.String()+"]"))
		if c.Err != nil {
			fmt.Fprintf(w, "      %s\n", p.warn.Render(c.Err.Error()))
		}
		for _, v := range c.Visible(out.Options.Compatibility) {
			fmt.Fprintf(w, "      %s %s\n", p.kind.Render(fmt.Sprintf("%-8s", v.Kind)), p.sig.Render(v.Signature.Format(v.Name)))
		}
	}
}

func describeHandle(h synth.HandleDescriptor, p palette) string {
	parts := []string{p.command.Render(h.GoName), fmt.Sprintf("%d-bit", h.Bits)}
	if h.Parent != "" {
		parts = append(parts, "parent "+h.Parent)
	}
	if h.Unique != nil {
		parts = append(parts, "owned by "+h.Unique.Destroy)
	}
	if !h.ExplicitConversion {
		parts = append(parts, "implicit")
	}
	return strings.Join(parts, "  ")
}

func describeParams(c *synth.CommandResult, p palette) string {
	var b strings.Builder
	for _, prm := range c.Params {
		fmt.Fprintf(&b, "  %-20s %s %s\n", prm.Name, p.sig.Render(prm.Type.String()), p.dim.Render(prm.Role.String()))
	}
	return b.String()
}
