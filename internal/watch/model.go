package watch

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dkoosis/exnote/pkg/render"
)

// Checker runs one cycle for a file.
type Checker interface {
	Check(ctx context.Context, path string) (render.Listing, error)
	Quit()
}

type changeMsg struct{}

type checkedMsg struct {
	listing render.Listing
	err     error
}

type model struct {
	ctx      context.Context
	path     string
	checker  Checker
	changes  <-chan struct{}
	theme    render.Theme
	spinner  spinner.Model
	viewport viewport.Model

	listing render.Listing
	err     error // error of the last cycle, already in listing.Status
	checked bool
	running bool
	pending bool // a change arrived while running
	runs    int
	width   int
	height  int
	ready   bool
}

func newModel(ctx context.Context, c Checker, changes <-chan struct{}, path string, theme render.Theme) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Accent
	return model{
		ctx:      ctx,
		path:     path,
		checker:  c,
		changes:  changes,
		theme:    theme,
		spinner:  sp,
		viewport: viewport.New(0, 0),
		running:  true,
		width:    80,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.check(), m.waitChange())
}

func (m model) check() tea.Cmd {
	return func() tea.Msg {
		l, err := m.checker.Check(m.ctx, m.path)
		return checkedMsg{listing: l, err: err}
	}
}

func (m model) waitChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case _, ok := <-m.changes:
			if !ok {
				return nil
			}
			return changeMsg{}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.checker.Quit()
			return m, tea.Quit
		case "r":
			return m.rerun()
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 3 // header, blank line, status bar
		m.ready = true
		m.refreshViewport()
		return m, nil
	case changeMsg:
		next, cmd := m.rerun()
		return next, tea.Batch(cmd, m.waitChange())
	case checkedMsg:
		m.running = false
		m.checked = true
		m.runs++
		m.listing = msg.listing
		m.err = msg.err
		m.refreshViewport()
		if m.pending {
			m.pending = false
			m.running = true
			return m, m.check()
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// rerun starts a cycle now, or after the running one finishes.
func (m model) rerun() (tea.Model, tea.Cmd) {
	if m.running {
		m.pending = true
		return m, nil
	}
	m.running = true
	return m, m.check()
}

func (m *model) refreshViewport() {
	if !m.checked {
		return
	}
	m.viewport.SetContent(render.NewTerminal(m.theme, m.width).Render(m.listing))
}

func (m model) View() string {
	var icon string
	switch {
	case m.running:
		icon = m.spinner.View()
	case m.err != nil, !m.listing.Summary.OK():
		icon = m.theme.Error.Render(m.theme.Icons.Fail)
	default:
		icon = m.theme.Success.Render(m.theme.Icons.Pass)
	}
	header := fmt.Sprintf("%s %s %s", icon, m.theme.Bold.Render("exnote watch"), m.path)
	if m.runs > 0 {
		header += m.theme.Muted.Render(fmt.Sprintf(" %s run %d", m.theme.Icons.Bullet, m.runs))
	}

	body := "Running examples..."
	if m.checked {
		if m.ready {
			body = m.viewport.View()
		} else {
			body = render.NewTerminal(m.theme, m.width).Render(m.listing)
		}
	}

	help := m.theme.Muted.Render("r rerun • ↑/↓ scroll • q quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, help)
}
