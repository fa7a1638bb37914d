package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// StudioBackend is what the studio console drives. Every method may block;
// the console only calls them from tea commands.
type StudioBackend interface {
	Status() string
	Connect(ctx context.Context) string
	Disconnect() string
	Execute(ctx context.Context, name string, args []string) string
	// OnStatus registers fn for connection label changes.
	OnStatus(fn func(label string)) (remove func())
}

// StudioCommand is one console command as listed in the help panel.
type StudioCommand struct {
	Name    string
	Line    string // usage line, e.g. "transfer <to> <amount>"
	Usage   string
	Mutates bool
}

// StatusMsg carries a new connection label into the console.
type StatusMsg string

type resultMsg struct {
	input string
	text  string
}

type studioLine struct {
	input string
	text  string
}

const studioHistory = 12

// StudioModel is the Bubble Tea model of the interactive console: a status
// line, the command list, recent results and a prompt. Commands run
// concurrently; each result is appended when it arrives.
type StudioModel struct {
	ctx      context.Context
	backend  StudioBackend
	title    string
	commands []StudioCommand

	status  string
	input   string
	history []studioLine
	pending int

	Quitting bool
}

// NewStudio returns a console model for backend.
func NewStudio(ctx context.Context, backend StudioBackend, title string, commands []StudioCommand) StudioModel {
	return StudioModel{
		ctx:      ctx,
		backend:  backend,
		title:    title,
		commands: commands,
		status:   backend.Status(),
	}
}

func (m StudioModel) Init() tea.Cmd { return nil }

func (m StudioModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StatusMsg:
		m.status = string(msg)
	case resultMsg:
		if m.pending > 0 {
			m.pending--
		}
		m.history = append(m.history, studioLine(msg))
		if len(m.history) > studioHistory {
			m.history = m.history[len(m.history)-studioHistory:]
		}
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.Quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input)
			m.input = ""
			return m.submit(line)
		case tea.KeyBackspace:
			if r := []rune(m.input); len(r) > 0 {
				m.input = string(r[:len(r)-1])
			}
		case tea.KeySpace:
			m.input += " "
		case tea.KeyRunes:
			m.input += string(msg.Runes)
		}
	}
	return m, nil
}

func (m StudioModel) submit(line string) (tea.Model, tea.Cmd) {
	if line == "" {
		return m, nil
	}
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	switch strings.ToLower(name) {
	case "quit", "exit":
		m.Quitting = true
		return m, tea.Quit
	case "clear":
		m.history = nil
		return m, nil
	case "connect":
		return m.run(line, func() string { return m.backend.Connect(m.ctx) })
	case "disconnect":
		return m.run(line, func() string { return m.backend.Disconnect() })
	}
	return m.run(line, func() string { return m.backend.Execute(m.ctx, name, args) })
}

func (m StudioModel) run(input string, fn func() string) (tea.Model, tea.Cmd) {
	m.pending++
	return m, func() tea.Msg {
		return resultMsg{input: input, text: fn()}
	}
}

func (m StudioModel) View() string {
	if m.Quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(StyleTitle.Render("  "+m.title) + "\n")
	sb.WriteString("  " + ConnectionStatus(m.status) + "\n\n")

	sb.WriteString(StyleHeader.Render("  Commands") + "\n")
	builtins := []StudioCommand{
		{Line: "connect", Usage: "Connect the wallet"},
		{Line: "disconnect", Usage: "Stop listening to the wallet"},
	}
	for _, c := range append(builtins, m.commands...) {
		line := fmt.Sprintf("%-34s", c.Line)
		if c.Mutates {
			line = StyleWarning.Render(line)
		} else {
			line = StyleValue.Render(line)
		}
		sb.WriteString("    " + line + " " + StyleMeta.Render(c.Usage) + "\n")
	}
	sb.WriteString("\n")

	for _, h := range m.history {
		sb.WriteString(StyleMeta.Render("  > "+h.input) + "\n")
		for _, l := range strings.Split(Outcome(h.text), "\n") {
			sb.WriteString("    " + l + "\n")
		}
	}
	if m.pending > 0 {
		sb.WriteString(StyleInfo.Render(fmt.Sprintf("  ◌ %d running…", m.pending)) + "\n")
	}

	sb.WriteString("\n" + StyleChain.Render("  › ") + m.input + StyleMeta.Render("▏") + "\n")
	sb.WriteString(StyleMeta.Render("  [ Enter ] run   [ clear ] reset output   [ Esc ] quit") + "\n")
	return sb.String()
}

// RunStudio runs the console until the user quits. Connection changes are
// pushed into the view as they happen.
func RunStudio(m StudioModel) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	stop := m.backend.OnStatus(func(label string) { p.Send(StatusMsg(label)) })
	defer stop()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("studio: %w", err)
	}
	return nil
}
