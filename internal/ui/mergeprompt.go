package ui

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"veld/internal/mergeback"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	numberStyle = lipgloss.NewStyle().Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
)

// mergeModel asks the user whether to fold the classified changes back into
// the design document.
type mergeModel struct {
	path     string
	counters mergeback.Counters
	merge    bool
	done     bool
}

// NewMergePrompt returns a Bubble Tea model presenting the merge-back
// classification for the given source file.
func NewMergePrompt(path string, c mergeback.Counters) tea.Model {
	return &mergeModel{path: path, counters: c}
}

func (m *mergeModel) Init() tea.Cmd { return nil }

func (m *mergeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "m", "enter":
			m.merge = true
			m.done = true
			return m, tea.Quit
		case "c", "q", "esc", "ctrl+c":
			m.merge = false
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *mergeModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("MergeBack: "+m.path) + "\n\n")
	rows := []struct {
		label string
		count int
		warn  bool
	}{
		{"modified code blocks", m.counters.ChangedCode, false},
		{"modified callbacks", m.counters.ChangedCallback, false},
		{"structural changes (will be lost)", m.counters.ChangedStructure, true},
		{"blocks without a matching node", m.counters.UIDNotFound, true},
	}
	width := 0
	for _, r := range rows {
		if w := runewidth.StringWidth(r.label); w > width {
			width = w
		}
	}
	for _, r := range rows {
		if r.count == 0 {
			continue
		}
		label := runewidth.FillRight(r.label, width)
		if r.warn {
			label = warnStyle.Render(label)
		}
		b.WriteString(fmt.Sprintf("  %s  %s\n", label, numberStyle.Render(fmt.Sprintf("%d", r.count))))
	}
	b.WriteString("\n" + keyStyle.Render("m") + " merge code and callback changes back  " +
		keyStyle.Render("c") + " cancel\n")
	return b.String()
}

// PromptMerge runs the interactive prompt and reports whether the user
// chose to merge.
func PromptMerge(path string, c mergeback.Counters) (bool, error) {
	model := NewMergePrompt(path, c)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	final, err := program.Run()
	if err != nil {
		return false, err
	}
	if m, ok := final.(*mergeModel); ok {
		return m.merge, nil
	}
	return false, nil
}
