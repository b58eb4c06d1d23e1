package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// EmitEvent reports the state of one design document inside a batch emit.
type EmitEvent struct {
	Path   string
	Status string // "emitting", "done", "failed"
	Err    error
}

type eventMsg EmitEvent
type doneMsg struct{}

type fileItem struct {
	path   string
	status string
}

// progressModel renders a batch emit: a spinner while work is in flight, a
// bar for completed files, and a status column per design document.
type progressModel struct {
	title   string
	events  <-chan EmitEvent
	spinner spinner.Model
	prog    progress.Model
	items   []fileItem
	index   map[string]int
	total   int
	done    int
	quit    bool
}

// NewEmitProgress returns a Bubble Tea model that renders emit progress for
// the given design files.
func NewEmitProgress(title string, files []string, events <-chan EmitEvent) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 60

	items := make([]fileItem, 0, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items = append(items, fileItem{path: file, status: "queued"})
		index[file] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		total:   len(files),
	}
}

func (m *progressModel) nextEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.nextEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quit = true
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case eventMsg:
		if i, ok := m.index[msg.Path]; ok {
			m.items[i].status = msg.Status
			if msg.Status == "done" || msg.Status == "failed" {
				m.done++
			}
		}
		return m, m.nextEvent()
	case doneMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m *progressModel) View() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s\n\n", m.spinner.View(), titleStyle.Render(m.title)))
	width := 0
	for _, it := range m.items {
		if w := runewidth.StringWidth(it.path); w > width {
			width = w
		}
	}
	for _, it := range m.items {
		b.WriteString(fmt.Sprintf("  %s  %s\n", runewidth.FillRight(it.path, width), it.status))
	}
	if m.total > 0 {
		b.WriteString("\n" + m.prog.ViewAs(float64(m.done)/float64(m.total)) + "\n")
	}
	return b.String()
}
