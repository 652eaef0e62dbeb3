// Package linkui is the terminal prompt for linking a Google account.
package linkui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is reported when the user quits before the grant completes.
var ErrCancelled = errors.New("link cancelled")

// GrantFunc runs the authorization flow. It publishes the consent URL on
// urls and may receive a pasted code or redirect URL on pasted.
type GrantFunc func(ctx context.Context, urls chan<- string, pasted <-chan string) error

type viewState int

const (
	viewStarting   viewState = iota
	viewWaiting              // consent URL shown, waiting for redirect or paste
	viewExchanging           // pasted code submitted
	viewDone
)

type authURLMsg string

type grantDoneMsg struct {
	err error
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	urlStyle   = lipgloss.NewStyle().Underline(true)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).PaddingTop(1)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	run    GrantFunc
	open   func(string) error

	urls   chan string
	pasted chan string
	done   chan error

	view    viewState
	authURL string
	account string
	input   textinput.Model
	spinner spinner.Model

	// Err is the outcome once the program exits; nil means linked.
	Err error
}

// New builds the prompt. openBrowser may be nil.
func New(ctx context.Context, account string, run GrantFunc, openBrowser func(string) error) *Model {
	ctx, cancel := context.WithCancel(ctx)

	ti := textinput.New()
	ti.Placeholder = "Paste auth code or redirect URL here"
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		ctx:     ctx,
		cancel:  cancel,
		run:     run,
		open:    openBrowser,
		urls:    make(chan string, 1),
		pasted:  make(chan string, 1),
		done:    make(chan error, 1),
		account: account,
		input:   ti,
		spinner: sp,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.startGrant(), m.spinner.Tick, textinput.Blink)
}

func (m *Model) startGrant() tea.Cmd {
	return func() tea.Msg {
		go func() { m.done <- m.run(m.ctx, m.urls, m.pasted) }()

		select {
		case u := <-m.urls:
			return authURLMsg(u)
		case err := <-m.done:
			return grantDoneMsg{err: err}
		}
	}
}

func (m *Model) waitDone() tea.Cmd {
	return func() tea.Msg {
		return grantDoneMsg{err: <-m.done}
	}
}

func (m *Model) openBrowser(u string) tea.Cmd {
	if m.open == nil {
		return nil
	}
	return func() tea.Msg {
		_ = m.open(u)
		return nil
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case authURLMsg:
		m.authURL = string(msg)
		m.view = viewWaiting
		return m, tea.Batch(m.openBrowser(m.authURL), m.waitDone())

	case grantDoneMsg:
		m.Err = msg.err
		m.view = viewDone
		m.cancel()
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	if m.view == viewWaiting {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.Err = ErrCancelled
		m.view = viewDone
		m.cancel()
		return m, tea.Quit
	}

	if m.view != viewWaiting {
		return m, nil
	}
	if msg.Type == tea.KeyEnter {
		val := strings.TrimSpace(m.input.Value())
		if val == "" {
			return m, nil
		}
		m.input.Reset()
		select {
		case m.pasted <- val:
			m.view = viewExchanging
		default:
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Link Google account for "+m.account) + "\n\n")

	switch m.view {
	case viewStarting:
		b.WriteString(m.spinner.View() + " Preparing authorization...\n")
	case viewWaiting:
		b.WriteString("Open this URL in your browser to authorize dayboard:\n\n")
		b.WriteString(urlStyle.Render(m.authURL) + "\n\n")
		b.WriteString(m.spinner.View() + " Waiting for the browser redirect, or paste below.\n\n")
		b.WriteString(m.input.View() + "\n")
		b.WriteString(hintStyle.Render("enter: submit  esc: cancel"))
	case viewExchanging:
		b.WriteString(m.spinner.View() + " Exchanging code for token...\n")
	case viewDone:
		if m.Err != nil {
			b.WriteString(errStyle.Render("Error: "+m.Err.Error()) + "\n")
		} else {
			b.WriteString("Account linked.\n")
		}
	}
	return b.String()
}
