package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/hostbridge/bridge"
	"github.com/wippyai/hostbridge/envelope"
	"github.com/wippyai/hostbridge/value"
)

const maxEvents = 8

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	actionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	argStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// actionArgs names the arguments of each envelope action.
var actionArgs = map[string][]string{
	envelope.GetStaticProperty:         {"type", "property"},
	envelope.SetStaticProperty:         {"type", "property", "value"},
	envelope.InvokeStaticMethod:        {"type", "method", "args"},
	envelope.AddStaticEventListener:    {"type", "event"},
	envelope.RemoveStaticEventListener: {"type", "event", "token"},
	envelope.CreateInstance:            {"type", "args"},
	envelope.ReleaseInstance:           {"instance"},
	envelope.GetProperty:               {"instance", "property"},
	envelope.SetProperty:               {"instance", "property", "value"},
	envelope.InvokeMethod:              {"instance", "method", "args"},
	envelope.AddEventListener:          {"instance", "event"},
	envelope.RemoveEventListener:       {"instance", "event", "token"},
}

type interactiveModel struct {
	ctx      context.Context
	err      error
	d        *envelope.Dispatcher
	result   string
	events   []string
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
}

type modelState int

const (
	stateSelectAction modelState = iota
	stateInputArgs
	stateShowResult
)

type callResultMsg struct {
	err    error
	result string
}

type eventMsg struct {
	token string
	event string
}

func newInteractiveModel(ctx context.Context) *interactiveModel {
	return &interactiveModel{ctx: ctx, state: stateSelectAction}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputArgs {
				return m, tea.Quit
			}

		case "up":
			if m.state == stateSelectAction && m.selected > 0 {
				m.selected--
			}

		case "down":
			if m.state == stateSelectAction && m.selected < len(envelope.Actions)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectAction:
				m.prepareInputs()
				m.state = stateInputArgs
				return m, nil

			case stateInputArgs:
				return m, m.dispatch

			case stateShowResult:
				m.state = stateSelectAction
				m.result = ""
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectAction
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectAction
				m.result = ""
				m.err = nil
			}
		}

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult

	case eventMsg:
		m.events = append(m.events, msg.token+" "+msg.event)
		if len(m.events) > maxEvents {
			m.events = m.events[len(m.events)-maxEvents:]
		}
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) action() string {
	return envelope.Actions[m.selected]
}

func (m *interactiveModel) prepareInputs() {
	names := actionArgs[m.action()]
	m.inputs = make([]textinput.Model, len(names))
	for i, name := range names {
		ti := textinput.New()
		ti.Placeholder = "JSON or bare string"
		ti.Prompt = name + ": "
		ti.Width = 60
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) dispatch() tea.Msg {
	args := make([]value.Value, 0, len(m.inputs))
	for _, input := range m.inputs {
		text := strings.TrimSpace(input.Value())
		if text == "" {
			break
		}
		args = append(args, parseArg(text))
	}

	v, err := m.d.Dispatch(m.ctx, m.action(), args).Wait(m.ctx)
	if err != nil {
		return callResultMsg{err: err}
	}
	return callResultMsg{result: value.String(v)}
}

// parseArg reads text as JSON, falling back to a plain string so type and
// member names can be typed without quotes.
func parseArg(text string) value.Value {
	if v, err := value.Parse([]byte(text)); err == nil {
		return v
	}
	return value.FromString(text)
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Host Bridge"))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectAction:
		b.WriteString("Select an action:\n\n")
		for i, action := range envelope.Actions {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + m.formatAction(action)))
			} else {
				b.WriteString("  " + m.formatAction(action))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter choose • q quit"))

	case stateInputArgs:
		b.WriteString(fmt.Sprintf("Calling %s\n\n", actionStyle.Render(m.action())))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", actionStyle.Render(m.action())))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	if len(m.events) > 0 {
		b.WriteString("\n\nEvents:\n")
		for _, e := range m.events {
			b.WriteString(argStyle.Render(e))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *interactiveModel) formatAction(action string) string {
	var args []string
	for _, name := range actionArgs[action] {
		args = append(args, argStyle.Render(name))
	}
	return actionStyle.Render(action) + "(" + strings.Join(args, ", ") + ")"
}

func runInteractive(ctx context.Context, eng *bridge.Engine) error {
	m := newInteractiveModel(ctx)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	m.d = envelope.New(eng, func(token string, v value.Value) {
		go p.Send(eventMsg{token: token, event: value.String(v)})
	})
	_, err := p.Run()
	return err
}
