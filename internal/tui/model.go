package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"photomesh/internal/progress"
)

const refreshInterval = 100 * time.Millisecond

// Model is the display loop: it samples the aggregator on a timer and draws
// a progress bar. It never writes to the aggregator.
type Model struct {
	progress *progress.Aggregator
	label    string
	started  time.Time
	width    int
	percent  int
	quitting bool
}

type doneMsg struct{}

type tickMsg time.Time

func NewModel(agg *progress.Aggregator, label string) Model {
	return Model{progress: agg, label: label, started: time.Now()}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.percent = m.progress.Percent()
		return m, tick()
	case doneMsg:
		m.percent = m.progress.Percent()
		m.quitting = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = int(math.Min(60, float64(m.width-10)))
		if barWidth < 20 {
			barWidth = 20
		}
	}

	bar := renderBar(barWidth, float64(m.percent)/100)
	elapsed := time.Since(m.started).Round(time.Second)

	lines := []string{
		titleStyle.Render("photomesh"),
		labelStyle.Render(fmt.Sprintf("Rendering %s: %d%%", m.label, m.percent)),
		dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
		barStyle.Render(bar),
	}

	return strings.Join(lines, "\n")
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

// Display runs a Model in the background until Stop is called.
type Display struct {
	program *tea.Program
	done    chan struct{}
}

// Start begins drawing agg to out. Keyboard input is not read, so an
// interrupt still reaches the process.
func Start(agg *progress.Aggregator, label string, out io.Writer) *Display {
	program := tea.NewProgram(NewModel(agg, label), tea.WithOutput(out), tea.WithInput(nil))
	d := &Display{program: program, done: make(chan struct{})}
	go func() {
		_, _ = program.Run()
		close(d.done)
	}()
	return d
}

// Stop ends the display loop and waits for it to restore the terminal.
func (d *Display) Stop() {
	d.program.Send(doneMsg{})
	<-d.done
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorMesh)
	labelStyle = lipgloss.NewStyle().Foreground(ColorText)
	barStyle   = lipgloss.NewStyle().Foreground(ColorDone)
	dimStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
)
