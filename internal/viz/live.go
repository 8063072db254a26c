// Package viz renders a live terminal view of a running optimization.
package viz

import (
	"fmt"
	"math/cmplx"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
)

// IterMsg carries one recorded optimization iteration into the view.
type IterMsg struct {
	Iter   int
	JT     float64
	Tau    []complex128
	Pulses [][]float64
}

// DoneMsg signals that the optimization loop has returned.
type DoneMsg struct {
	Err error
}

// Model is the bubbletea model for the live view. It consumes iteration
// messages from the channel the optimizer feeds.
type Model struct {
	modelName string
	ch        <-chan tea.Msg

	iter   int
	jt     []float64
	tau    []complex128
	pulses [][]float64
	done   bool
	err    error
}

func NewModel(modelName string, ch <-chan tea.Msg) Model {
	return Model{modelName: modelName, ch: ch}
}

func (m Model) listen() tea.Cmd {
	return func() tea.Msg { return <-m.ch }
}

func (m Model) Init() tea.Cmd {
	return m.listen()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case IterMsg:
		m.iter = msg.Iter
		m.jt = append(m.jt, msg.JT)
		m.tau = msg.Tau
		m.pulses = msg.Pulses
		return m, m.listen()
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("krotov live — %s", m.modelName)))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("iteration"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", m.iter)))
	b.WriteString("\n")
	if len(m.jt) > 0 {
		b.WriteString(labelStyle.Render("J_T"))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%.4e", m.jt[len(m.jt)-1])))
		b.WriteString("\n")
	}
	for i, tau := range m.tau {
		b.WriteString(labelStyle.Render(fmt.Sprintf("|tau_%d|", i)))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%.6f", cmplx.Abs(tau))))
		b.WriteString("\n")
	}

	if len(m.jt) >= 2 {
		graph := asciigraph.Plot(m.jt,
			asciigraph.Height(8),
			asciigraph.Width(70),
			asciigraph.Caption("J_T per iteration"),
		)
		b.WriteString(graphStyle.Render(graph))
		b.WriteString("\n")
	}
	if len(m.pulses) > 0 && len(m.pulses[0]) >= 2 {
		graph := asciigraph.Plot(m.pulses[0],
			asciigraph.Height(8),
			asciigraph.Width(70),
			asciigraph.Caption("pulse 0"),
		)
		b.WriteString(graphStyle.Render(graph))
		b.WriteString("\n")
	}

	if m.done {
		if m.err != nil {
			b.WriteString(helpStyle.Render(fmt.Sprintf("finished with error: %v — q to quit", m.err)))
		} else {
			b.WriteString(helpStyle.Render("finished — q to quit"))
		}
	} else {
		b.WriteString(helpStyle.Render("q: quit"))
	}
	b.WriteString("\n")

	return b.String()
}
