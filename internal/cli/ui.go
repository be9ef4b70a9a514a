package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorTeal  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorAmber = lipgloss.Color("220")
	colorRed   = lipgloss.Color("167")
	colorBlue  = lipgloss.Color("75")
	colorCyan  = lipgloss.Color("87")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	// StyleTitle renders headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)
	// StyleDim renders secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)
	// StyleValue renders data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)
	// StyleWarning renders warnings such as dropped input items.
	StyleWarning = lipgloss.NewStyle().Foreground(colorAmber)
)

var (
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorTeal)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// status is one kind of status line: a colored glyph and a message style.
type status struct {
	glyph string
	icon  lipgloss.Style
	text  *lipgloss.Style
}

var (
	statusSuccess = status{"✓", lipgloss.NewStyle().Foreground(colorGreen), nil}
	statusError   = status{"✗", lipgloss.NewStyle().Foreground(colorRed), nil}
	statusWarning = status{"!", lipgloss.NewStyle().Foreground(colorAmber), &StyleWarning}
	statusInfo    = status{"›", lipgloss.NewStyle().Foreground(colorGray), nil}
)

// stdout is where command summaries go. Logs and the spinner use stderr.
var stdout io.Writer = os.Stdout

func (s status) print(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if s.text != nil {
		msg = s.text.Render(msg)
	}
	fmt.Fprintln(stdout, s.icon.Render(s.glyph)+" "+msg)
}

func printSuccess(format string, args ...any) { statusSuccess.print(format, args...) }
func printError(format string, args ...any)   { statusError.print(format, args...) }
func printWarning(format string, args ...any) { statusWarning.print(format, args...) }
func printInfo(format string, args ...any)    { statusInfo.print(format, args...) }

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

func printStats(nodes, links, dropped int) {
	fmt.Fprintln(stdout, statsLine(nodes, links, dropped))
}

// statsLine formats node, link and dropped-item counts on one line. The
// dropped count only appears when something was dropped.
func statsLine(nodes, links, dropped int) string {
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d nodes", nodes)),
		StyleDim.Render(fmt.Sprintf("%d links", links)),
	}
	if dropped > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d dropped", dropped)))
	}
	return "  " + strings.Join(parts, StyleDim.Render(" · "))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(stdout)
}
