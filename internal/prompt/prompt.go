// Package prompt asks the user yes/no questions.
package prompt

import (
	"fmt"
	"io"
	"os"

	"github.com/Digital-Shane/tvshelf/internal/console"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Confirmer answers a yes/no question. detail is shown under the prompt, for
// instance a catalog URL the user can open before deciding.
type Confirmer interface {
	Confirm(prompt, detail string) bool
}

type keyMap struct {
	Yes key.Binding
	No  key.Binding
}

var keys = keyMap{
	Yes: key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
	No:  key.NewBinding(key.WithKeys("n", "N", "enter", "esc", "ctrl+c", "q"), key.WithHelp("n/enter", "no")),
}

type styles struct {
	prompt lipgloss.Style
	detail lipgloss.Style
	hint   lipgloss.Style
	yes    lipgloss.Style
	no     lipgloss.Style
}

func newStyles(theme console.Theme) styles {
	return styles{
		prompt: lipgloss.NewStyle().Bold(true).Foreground(theme.Colors.Primary),
		detail: lipgloss.NewStyle().Foreground(theme.Colors.Muted).Underline(true),
		hint:   lipgloss.NewStyle().Foreground(theme.Colors.Muted),
		yes:    lipgloss.NewStyle().Bold(true).Foreground(theme.Colors.Success),
		no:     lipgloss.NewStyle().Bold(true).Foreground(theme.Colors.Error),
	}
}

// model is a single question; it quits as soon as it has an answer.
type model struct {
	prompt   string
	detail   string
	icon     string
	styles   styles
	answer   bool
	answered bool
}

func newModel(prompt, detail string, theme console.Theme) model {
	return model{
		prompt: prompt,
		detail: detail,
		icon:   theme.Icon(console.KindWarning),
		styles: newStyles(theme),
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.answered {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, keys.Yes):
		m.answer, m.answered = true, true
		return m, tea.Quit
	case key.Matches(keyMsg, keys.No):
		m.answer, m.answered = false, true
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	question := fmt.Sprintf("%s %s", m.icon, m.styles.prompt.Render(m.prompt))
	if m.answered {
		answer := m.styles.no.Render("no")
		if m.answer {
			answer = m.styles.yes.Render("yes")
		}
		return fmt.Sprintf("%s %s\n", question, answer)
	}
	view := fmt.Sprintf("%s %s\n", question, m.styles.hint.Render("[y/N]"))
	if m.detail != "" {
		view += "   " + m.styles.detail.Render(m.detail) + "\n"
	}
	return view
}

// Terminal prompts on a terminal with an inline bubbletea program.
type Terminal struct {
	in    io.Reader
	out   io.Writer
	theme console.Theme
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) TerminalOption {
	return func(t *Terminal) {
		t.in, t.out = in, out
	}
}

// WithTheme sets the palette used for the question.
func WithTheme(theme console.Theme) TerminalOption {
	return func(t *Terminal) {
		t.theme = theme
	}
}

// NewTerminal returns a Confirmer reading from stdin.
func NewTerminal(opts ...TerminalOption) *Terminal {
	t := &Terminal{in: os.Stdin, out: os.Stdout, theme: console.DefaultTheme()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Confirm blocks until the user answers. Any failure to run the prompt counts as "no".
func (t *Terminal) Confirm(prompt, detail string) bool {
	p := tea.NewProgram(newModel(prompt, detail, t.theme), tea.WithInput(t.in), tea.WithOutput(t.out))
	final, err := p.Run()
	if err != nil {
		return false
	}
	m, ok := final.(model)
	return ok && m.answer
}

// Scripted replays fixed answers, then answers "no".
type Scripted struct {
	Answers []bool
	Asked   []string
}

// Confirm records the prompt and pops the next answer.
func (s *Scripted) Confirm(prompt, _ string) bool {
	s.Asked = append(s.Asked, prompt)
	if len(s.Answers) == 0 {
		return false
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	return answer
}

// Never declines every question, for headless runs.
type Never struct{}

// Confirm always returns false.
func (Never) Confirm(string, string) bool { return false }
