package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/banter-engine/internal/worker"
)

// tickInterval is the game tick. Each tick pushes fresh state into the
// orchestrator, so trigger detection runs at this cadence.
const tickInterval = 250 * time.Millisecond

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	narrationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	banterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	deadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	logPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(1)

	sidePanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingRight(2)
)

type tickMsg struct{}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// crawlUI is the BubbleTea model for the dungeon crawl.
type crawlUI struct {
	sim    *simulation
	orch   *worker.Orchestrator
	msgLog *messageLog

	logViewport viewport.Model
	ready       bool
	width       int
	height      int
	copied      bool
}

func newCrawlUI(sim *simulation, orch *worker.Orchestrator, msgLog *messageLog) crawlUI {
	vp := viewport.New(60, 20)
	vp.MouseWheelEnabled = true
	return crawlUI{
		sim:         sim,
		orch:        orch,
		msgLog:      msgLog,
		logViewport: vp,
	}
}

func (m crawlUI) Init() tea.Cmd {
	return tick()
}

func (m crawlUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		logWidth := int(float64(m.width)*0.65) - 4
		m.logViewport.Width = logWidth
		m.logViewport.Height = m.height - 4
		m.ready = true
		m.writeLogContent()

	case tickMsg:
		m.orch.Update(m.sim.View())
		m.writeLogContent()
		return m, tick()

	case tea.KeyMsg:
		m.copied = false
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyUp:
			m.sim.Move(0, -1)
		case tea.KeyDown:
			m.sim.Move(0, 1)
		case tea.KeyLeft:
			m.sim.Move(-1, 0)
		case tea.KeyRight:
			m.sim.Move(1, 0)
		default:
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case ">":
				m.sim.Descend()
			case "k":
				m.sim.KillRandom()
			case "h":
				m.sim.HealAll()
			case "b":
				m.orch.ForceTrigger()
			case "c":
				if err := clipboard.WriteAll(strings.Join(m.msgLog.Lines(), "\n")); err == nil {
					m.copied = true
				}
			}
		}
		m.writeLogContent()
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

// writeLogContent reformats the whole message log for the current
// viewport width. Banter lines carry a speaker prefix and get the
// dialogue color; everything else reads as narration.
func (m *crawlUI) writeLogContent() {
	if !m.ready {
		return
	}
	width := m.logViewport.Width - 3
	if width < 20 {
		width = 20
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("DUNGEON CRAWL") + "\n\n")
	for _, line := range m.msgLog.Lines() {
		sb.WriteString(formatLogLine(line, width) + "\n")
	}
	m.logViewport.SetContent(sb.String())
	m.logViewport.GotoBottom()
}

func formatLogLine(line string, width int) string {
	wrapped := wordwrap.String(line, width)
	if idx := strings.Index(wrapped, ":"); idx > 0 && idx <= 20 && !strings.Contains(wrapped[:idx], " ") {
		return speakerStyle.Render(wrapped[:idx+1]) + banterStyle.Render(wrapped[idx+1:])
	}
	return narrationStyle.Render(wrapped)
}

func (m crawlUI) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	logWidth := int(float64(m.width)*0.65) - 2
	sideWidth := m.width - logWidth - 4

	logPanel := logPanelStyle.Width(logWidth).Height(m.height - 2).Render(m.logViewport.View())
	sidePanel := sidePanelStyle.Width(sideWidth).Height(m.height - 2).Render(m.renderSidePanel())

	return lipgloss.JoinHorizontal(lipgloss.Top, logPanel, sidePanel)
}

func (m crawlUI) renderSidePanel() string {
	var sb strings.Builder
	view := m.sim.View()

	sb.WriteString(titleStyle.Render("PARTY") + "\n\n")
	for _, member := range view.Party {
		line := fmt.Sprintf("%-8s %3d/%3d HP", member.Name, member.HP, member.MaxHP)
		if !member.Alive() {
			sb.WriteString(deadStyle.Render(line+"  (dead)") + "\n")
			continue
		}
		if member.HPPercent() <= 0.3 {
			sb.WriteString(statusStyle.Render(line) + "\n")
			continue
		}
		sb.WriteString(line + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Floor %d   (%d, %d)\n", view.Floor, view.PartyX, view.PartyY))
	if view.IsDarkTile() {
		sb.WriteString(statusStyle.Render("It is dark here.") + "\n")
	}
	if m.orch.IsGenerating() {
		sb.WriteString(statusStyle.Render("The party mutters...") + "\n")
	}
	if m.copied {
		sb.WriteString(statusStyle.Render("Log copied to clipboard.") + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString(promptStyle.Render(strings.Join([]string{
		"arrows  move",
		">       descend",
		"k       strike one down",
		"h       heal party",
		"b       force banter",
		"c       copy log",
		"q       quit",
	}, "\n")))

	return sb.String()
}
