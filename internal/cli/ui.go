package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/stackpip/pkg/install"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

// Styles shared by all commands.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
	StyleError     = lipgloss.NewStyle().Foreground(colorRed)

	styleMuted   = lipgloss.NewStyle().Foreground(colorGray)
	styleHeader  = styleMuted.Bold(true)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey     = styleMuted.Width(12)
	styleCell    = lipgloss.NewStyle().Padding(0, 1)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconSkip    = "–"
)

// statusMarks pairs each task outcome with its icon and color.
var statusMarks = map[install.Status]struct {
	icon  string
	style lipgloss.Style
}{
	install.StatusSuccess: {iconSuccess, StyleSuccess},
	install.StatusFailed:  {iconError, StyleError},
	install.StatusSkipped: {iconSkip, StyleDim},
}

// printMarked prints a message behind a colored icon.
func printMarked(icon string, style lipgloss.Style, format string, args []any) {
	fmt.Println(style.Render(icon) + " " + fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { printMarked(iconSuccess, StyleSuccess, format, args) }
func printError(format string, args ...any)   { printMarked(iconError, StyleError, format, args) }
func printInfo(format string, args ...any)    { printMarked(iconInfo, styleMuted, format, args) }

func printWarning(format string, args ...any) {
	fmt.Println(StyleWarning.Render(iconWarning + " " + fmt.Sprintf(format, args...)))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep suggests a command to run next.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// statusLabel renders a task outcome with its icon.
func statusLabel(s install.Status) string {
	m, ok := statusMarks[s]
	if !ok {
		return StyleDim.Render(string(s))
	}
	return m.style.Render(m.icon + " " + string(s))
}

// renderTable lays rows out under headers with a rounded border.
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			return styleCell
		}).
		Render()
}

// joinOrDash joins values with ", " or returns a dash for none.
func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "—"
	}
	return strings.Join(values, ", ")
}
