package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/stackpip/pkg/manifest"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listCheckedStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// TaskPickerModel - Interactive task selection
// =============================================================================

// TaskPickerModel is the bubbletea model for choosing tasks to run.
type TaskPickerModel struct {
	Tasks     []*manifest.Task
	Checked   map[int]bool
	Cursor    int
	Height    int
	Offset    int
	Confirmed bool
}

// NewTaskPickerModel creates a picker with default tasks pre-checked.
func NewTaskPickerModel(tasks []*manifest.Task) TaskPickerModel {
	checked := make(map[int]bool)
	for i, t := range tasks {
		if t.Default {
			checked[i] = true
		}
	}
	return TaskPickerModel{
		Tasks:   tasks,
		Checked: checked,
		Height:  15,
	}
}

func (m TaskPickerModel) Init() tea.Cmd {
	return nil
}

func (m TaskPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Tasks)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			m.Checked[m.Cursor] = !m.Checked[m.Cursor]
		case "a":
			all := len(m.Selected()) < len(m.Tasks)
			for i := range m.Tasks {
				m.Checked[i] = all
			}
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

// Selected returns the signatures of checked tasks in declaration order.
func (m TaskPickerModel) Selected() []string {
	var out []string
	for i, t := range m.Tasks {
		if m.Checked[i] {
			out = append(out, t.Signature())
		}
	}
	return out
}

func (m TaskPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Tasks"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ run  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Tasks))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		t := m.Tasks[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := "[ ]"
		if m.Checked[i] {
			box = "[" + iconSuccess + "]"
		}
		rows = append(rows, []string{cursor + box, t.Signature(), joinOrDash(t.RequiredNames()), t.Description})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Task", "Requires", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case m.Checked[idx]:
				return listCheckedStyle
			case col == 2 || col == 3:
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d selected", len(m.Selected()))))

	return b.String()
}

// pickTasks runs the picker and returns the chosen signatures. ok is false
// when the user quit without confirming.
func pickTasks(tasks []*manifest.Task) (selected []string, ok bool, err error) {
	final, err := tea.NewProgram(NewTaskPickerModel(tasks)).Run()
	if err != nil {
		return nil, false, err
	}
	m := final.(TaskPickerModel)
	return m.Selected(), m.Confirmed, nil
}
