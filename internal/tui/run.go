// Package tui renders a live view of one agent execution: streaming output
// lines above a status footer with session, token, and cost totals.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/drover/internal/stream"
	"github.com/ShayCichocki/drover/pkg/models"
)

// NoteMsg delivers one live-progress notification into the view.
type NoteMsg stream.Notification

// DoneMsg delivers the final execution result and ends the program.
type DoneMsg struct {
	Result *models.ExecutionResult
	Err    error
}

// RunModel is the bubbletea model for a live execution view.
type RunModel struct {
	provider string
	prompt   string

	spin   spinner.Model
	lines  *RingBuffer
	width  int
	height int
	done   bool
	result *models.ExecutionResult
	err    error

	session string
	tokens  int64
	cost    float64

	headerStyle lipgloss.Style
	toolStyle   lipgloss.Style
	errStyle    lipgloss.Style
	footStyle   lipgloss.Style
	okStyle     lipgloss.Style
}

// NewRunModel creates the live run view.
func NewRunModel(provider, prompt string) RunModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return RunModel{
		provider: provider,
		prompt:   prompt,
		spin:     sp,
		lines:    NewRingBuffer(defaultBufferSize),
		width:    80,
		height:   24,

		headerStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		toolStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("178")),
		errStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		footStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		okStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("28")).Bold(true),
	}
}

// Init implements tea.Model.
func (m RunModel) Init() tea.Cmd {
	return m.spin.Tick
}

// Update implements tea.Model.
func (m RunModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
		return m, nil

	case NoteMsg:
		m.ingest(stream.Notification(msg))
		return m, nil

	case DoneMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		if msg.Result != nil {
			m.session = msg.Result.SessionID
			m.tokens = msg.Result.TotalTokens()
			m.cost = msg.Result.CostUSD
		}
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

// ingest folds one notification into the scrollback and footer totals.
func (m *RunModel) ingest(n stream.Notification) {
	switch n.Kind {
	case "assistant":
		for _, line := range strings.Split(strings.TrimRight(n.Text, "\n"), "\n") {
			m.lines.Append(line)
		}
	case "tool_use":
		m.lines.Append(m.toolStyle.Render("» " + n.Text))
	case "error":
		m.lines.Append(m.errStyle.Render("✗ " + n.Text))
	case "stderr":
		m.lines.Append(m.footStyle.Render(n.Text))
	case "system":
		if n.Text != "" {
			m.lines.Append(m.footStyle.Render("· " + n.Text))
		}
	}
}

// View implements tea.Model.
func (m RunModel) View() string {
	var b strings.Builder

	header := m.headerStyle.Render(m.provider) + " " + truncatePrompt(m.prompt, m.width-len(m.provider)-4)
	b.WriteString(header)
	b.WriteString("\n\n")

	visible := m.height - 5
	if visible < 1 {
		visible = 1
	}
	for _, line := range m.lines.Last(visible) {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m RunModel) footer() string {
	var status string
	switch {
	case !m.done:
		status = m.spin.View() + " running"
	case m.err != nil:
		status = m.errStyle.Render("spawn failed: " + m.err.Error())
	case m.result != nil && m.result.Success:
		status = m.okStyle.Render("✓ done")
	default:
		status = m.errStyle.Render("✗ failed")
	}

	parts := []string{status}
	if m.session != "" {
		parts = append(parts, "session "+m.session)
	}
	if m.tokens > 0 {
		parts = append(parts, fmt.Sprintf("%d tok", m.tokens))
	}
	if m.cost > 0 {
		parts = append(parts, fmt.Sprintf("$%.4f", m.cost))
	}
	parts = append(parts, "q to quit")

	return m.footStyle.Render(strings.Join(parts, "  •  "))
}

func truncatePrompt(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if n < 4 {
		n = 4
	}
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

var _ tea.Model = RunModel{}
