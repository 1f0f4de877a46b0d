// Package prompt asks the user yes/no questions in the terminal.
package prompt

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/url2app/u2a/internal/errors"
)

var (
	questionStyle = lipgloss.NewStyle().Bold(true)
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12")).Padding(0, 1)
	inactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Padding(0, 1)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// ConfirmModel is a yes/no question. The cursor starts on "No".
type ConfirmModel struct {
	question string
	cursor   int // 0 = yes, 1 = no
	done     bool
	yes      bool
}

// NewConfirm returns a model asking question.
func NewConfirm(question string) ConfirmModel {
	return ConfirmModel{question: question, cursor: 1}
}

// Init implements tea.Model.
func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || m.done {
		return m, nil
	}

	switch key.String() {
	case "y", "Y":
		return m.answer(true)
	case "n", "N", "q", "esc", "ctrl+c":
		return m.answer(false)
	case "left", "h", "right", "l", "tab", "shift+tab":
		m.cursor = 1 - m.cursor
	case "enter", " ":
		return m.answer(m.cursor == 0)
	}
	return m, nil
}

func (m ConfirmModel) answer(yes bool) (tea.Model, tea.Cmd) {
	m.done = true
	m.yes = yes
	return m, tea.Quit
}

// View implements tea.Model.
func (m ConfirmModel) View() string {
	if m.done {
		return ""
	}

	yes, no := inactiveStyle.Render("Yes"), inactiveStyle.Render("No")
	if m.cursor == 0 {
		yes = activeStyle.Render("Yes")
	} else {
		no = activeStyle.Render("No")
	}

	var b strings.Builder
	b.WriteString(questionStyle.Render(m.question))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, yes, " ", no))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("y/n to answer, ←/→ to move, enter to select"))
	b.WriteString("\n")
	return b.String()
}

// Done reports whether the question was answered.
func (m ConfirmModel) Done() bool {
	return m.done
}

// Confirmed reports whether the answer was yes.
func (m ConfirmModel) Confirmed() bool {
	return m.done && m.yes
}

// Terminal asks questions on an interactive terminal.
type Terminal struct {
	In  *os.File
	Out io.Writer
}

// NewTerminal returns a Terminal on stdin and stderr.
func NewTerminal() *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stderr}
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Confirm asks question and returns the answer. Without a terminal on In
// it fails with E208 instead of blocking.
func (t *Terminal) Confirm(ctx context.Context, question string) (bool, error) {
	if !IsTerminal(t.In) {
		return false, errors.New("E208").
			WithDetail("standard input is not a terminal").
			WithSuggestion("Pass --yes to skip the confirmation")
	}

	p := tea.NewProgram(NewConfirm(question),
		tea.WithInput(t.In),
		tea.WithOutput(t.Out),
		tea.WithContext(ctx),
	)
	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil || stderrors.Is(err, tea.ErrProgramKilled) {
			return false, errors.New("E202").WithDetail("the confirmation was interrupted")
		}
		return false, fmt.Errorf("confirmation prompt: %w", err)
	}

	m, ok := final.(ConfirmModel)
	if !ok {
		return false, nil
	}
	return m.Confirmed(), nil
}
