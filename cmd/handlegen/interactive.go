package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/handlegen/synth"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD580"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectCommand modelState = iota
	stateFilter
	stateShowCommand
)

type interactiveModel struct {
	out      *synth.Output
	filename string
	palette  palette
	filter   textinput.Model
	visible  []int
	selected int
	state    modelState
}

func newInteractiveModel(out *synth.Output, filename string) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "command name"
	ti.Prompt = "filter: "
	ti.Width = 40

	m := &interactiveModel{
		out:      out,
		filename: filename,
		palette:  newPalette(true),
		filter:   ti,
		state:    stateSelectCommand,
	}
	m.applyFilter()
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) applyFilter() {
	needle := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for i := range m.out.Commands {
		c := &m.out.Commands[i]
		if needle == "" || strings.Contains(strings.ToLower(c.Command), needle) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *interactiveModel) current() (*synth.CommandResult, bool) {
	if len(m.visible) == 0 {
		return nil, false
	}
	return &m.out.Commands[m.visible[m.selected]], true
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.state == stateFilter {
		switch key.String() {
		case "enter", "esc":
			m.filter.Blur()
			m.state = stateSelectCommand
			return m, nil
		case "ctrl+c":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.applyFilter()
		return m, cmd
	}

	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k":
		if m.state == stateSelectCommand && m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.state == stateSelectCommand && m.selected < len(m.visible)-1 {
			m.selected++
		}

	case "/":
		if m.state == stateSelectCommand {
			m.state = stateFilter
			return m, m.filter.Focus()
		}

	case "enter":
		switch m.state {
		case stateSelectCommand:
			if _, ok := m.current(); ok {
				m.state = stateShowCommand
			}
		case stateShowCommand:
			m.state = stateSelectCommand
		}

	case "esc":
		m.state = stateSelectCommand
	}
	return m, nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("handlegen"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectCommand, stateFilter:
		if m.state == stateFilter || m.filter.Value() != "" {
			b.WriteString(m.filter.View())
			b.WriteString("\n\n")
		}
		for i, idx := range m.visible {
			c := &m.out.Commands[idx]
			line := fmt.Sprintf("%s [%s] %d variants", c.Command, c.Shape, len(c.Visible(m.out.Options.Compatibility)))
			if c.Err != nil {
				line += " !"
			}
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • / filter • enter details • q quit"))

	case stateShowCommand:
		c, _ := m.current()
		fmt.Fprintf(&b, "%s %s\n\n", funcStyle.Render(c.Command), helpStyle.Render("["+c.Shape.String()+"]"))
		if c.Owner != "" {
			fmt.Fprintf(&b, "owner %s\n\n", c.Owner)
		}
		b.WriteString(describeParams(c, m.palette))
		b.WriteString("\n")
		if c.Err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", c.Err)))
			b.WriteString("\n\n")
		}
		for _, v := range c.Visible(m.out.Options.Compatibility) {
			fmt.Fprintf(&b, "%s %s\n", kindStyle.Render(fmt.Sprintf("%-8s", v.Kind)), typeStyle.Render(v.Signature.Format(v.Name)))
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter/esc back • q quit"))
	}

	return b.String()
}

func runInteractive(out *synth.Output, filename string) error {
	p := tea.NewProgram(newInteractiveModel(out, filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
