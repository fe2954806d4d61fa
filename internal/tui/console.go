// internal/tui/console.go
// Package tui provides an interactive console for exercising the tool catalog
// without an MCP client on the other end.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/hublink/internal/gateway"
	"github.com/mwiater/hublink/internal/util"
)

// viewState represents the current view or screen of the console.
type viewState int

const (
	// viewToolSelector is the state where the user picks a tool.
	viewToolSelector viewState = iota
	// viewArguments is the state where the user edits the JSON arguments.
	viewArguments
	// viewResult is the state showing the invocation result.
	viewResult
)

// model is the main application model for the Bubble Tea UI.
type model struct {
	ctx              context.Context
	gw               *gateway.Gateway
	state            viewState
	isLoading        bool
	err              error
	toolList         list.Model
	textArea         textarea.Model
	viewport         viewport.Model
	spinner          spinner.Model
	selectedTool     gateway.Definition
	width, height    int
	requestStartTime time.Time
}

// item represents a selectable tool in the list.
type item struct {
	def gateway.Definition
}

// Title returns the tool name.
func (i item) Title() string { return i.def.Name }

// Description returns the first line of the tool description.
func (i item) Description() string {
	return util.TruncateRunes(i.def.Description, 72)
}

// FilterValue returns the tool name, used for filtering.
func (i item) FilterValue() string { return i.def.Name }

// resultMsg carries a finished invocation back into the update loop.
type resultMsg struct{ parts []gateway.ContentPart }

// tickMsg drives the elapsed-time display while an invocation runs.
type tickMsg time.Time

// initialModel creates and initializes a new model with default values.
func initialModel(ctx context.Context, gw *gateway.Gateway) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ta := textarea.New()
	ta.Placeholder = `{"limit": 10}`
	ta.Prompt = "| "
	ta.ShowLineNumbers = false
	ta.CharLimit = -1
	ta.SetHeight(6)

	defs := gw.Tools()
	items := make([]list.Item, len(defs))
	for i, def := range defs {
		items[i] = item{def: def}
	}
	toolList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	toolList.Title = "Select a Tool"

	return &model{
		ctx:      ctx,
		gw:       gw,
		state:    viewToolSelector,
		spinner:  s,
		textArea: ta,
		toolList: toolList,
		viewport: viewport.New(100, 20),
	}
}

// dispatchCmd creates a Bubble Tea command that invokes the selected tool.
func dispatchCmd(ctx context.Context, gw *gateway.Gateway, name, rawArgs string) tea.Cmd {
	return func() tea.Msg {
		args, err := gateway.ParseArguments(rawArgs)
		if err != nil {
			return resultMsg{parts: []gateway.ContentPart{{Type: "text", Text: fmt.Sprintf("Error: %v", err)}}}
		}
		return resultMsg{parts: gw.Dispatch(ctx, name, args)}
	}
}

// tickCmd creates a Bubble Tea command that sends a tickMsg at a regular interval.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the spinner animation.
func (m *model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update is the central update function for the Bubble Tea model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.state != viewArguments {
				return m, tea.Quit
			}
		case "esc":
			switch m.state {
			case viewArguments:
				m.state = viewToolSelector
				m.textArea.Blur()
				return m, nil
			case viewResult:
				m.state = viewToolSelector
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.toolList.SetSize(msg.Width-2, msg.Height-4)
		m.textArea.SetWidth(msg.Width - 3)
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 4

	case resultMsg:
		m.isLoading = false
		m.state = viewResult
		var b strings.Builder
		for _, part := range msg.parts {
			b.WriteString(util.PrettyJSON(part.Text))
			b.WriteString("\n")
		}
		m.viewport.SetContent(util.WrapToWidth(b.String(), m.viewport.Width))
		m.viewport.GotoTop()
		return m, nil

	case tickMsg:
		if m.isLoading {
			return m, tickCmd()
		}
		return m, nil
	}

	switch m.state {
	case viewToolSelector:
		m.toolList, cmd = m.toolList.Update(msg)
		cmds = append(cmds, cmd)
		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
			if selectedItem, ok := m.toolList.SelectedItem().(item); ok {
				m.selectedTool = selectedItem.def
				m.state = viewArguments
				m.textArea.Reset()
				m.textArea.Focus()
				m.err = nil
			}
		}

	case viewArguments:
		m.textArea, cmd = m.textArea.Update(msg)
		cmds = append(cmds, cmd)
		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "ctrl+d" {
			m.isLoading = true
			m.requestStartTime = time.Now()
			m.textArea.Blur()
			cmds = append(cmds, m.spinner.Tick, dispatchCmd(m.ctx, m.gw, m.selectedTool.Name, m.textArea.Value()), tickCmd())
		}

	case viewResult:
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.isLoading {
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the console UI based on the current state of the model.
func (m *model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	if m.err != nil {
		errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(1)
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	if m.isLoading {
		timer := fmt.Sprintf("%.1f", time.Since(m.requestStartTime).Seconds())
		return fmt.Sprintf("\n  %s Calling %s... %ss\n", m.spinner.View(), m.selectedTool.Name, timer)
	}

	switch m.state {
	case viewToolSelector:
		return lipgloss.NewStyle().Margin(1, 2).Render(m.toolList.View())

	case viewArguments:
		headerStyle := lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
		header := headerStyle.Render(fmt.Sprintf("Arguments for %s", m.selectedTool.Name))
		help := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("ctrl+d to invoke, esc to go back")
		return fmt.Sprintf("%s\n\n%s\n\n%s", header, m.textArea.View(), help)

	case viewResult:
		headerStyle := lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
		header := headerStyle.Render(fmt.Sprintf("Result: %s", m.selectedTool.Name))
		help := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("esc to go back, q to quit")
		return fmt.Sprintf("%s\n%s\n%s", header, m.viewport.View(), help)

	default:
		return "Unknown state"
	}
}

// Run starts the interactive console against the given gateway and blocks
// until the user quits.
func Run(ctx context.Context, gw *gateway.Gateway) error {
	p := tea.NewProgram(initialModel(ctx, gw), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
