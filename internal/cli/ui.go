package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/metagraph/pkg/dag"
	"github.com/matzehuels/metagraph/pkg/graph"
)

// out receives command output. Tests swap it for a buffer.
var out io.Writer = os.Stdout

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleActive = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	styleParked = lipgloss.NewStyle().Foreground(colorDim).Strikethrough(true)
	styleHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Fprintln(out, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Fprintln(out, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(out, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Fprintln(out, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(out, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Fprintln(out, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(out, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints graph statistics on a single line.
func printStats(nodeCount, linkCount int, cached bool) {
	parts := []string{
		fmt.Sprintf("%d nodes", nodeCount),
		fmt.Sprintf("%d links", linkCount),
	}

	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}
	parts = append(parts, statusStyle.Render(status))

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	fmt.Fprintln(out, line)
}

// =============================================================================
// Graph Output
// =============================================================================

// printChain prints the primary chain with the active mode node highlighted.
func printChain(s graph.Graph) {
	var active string
	if s.Mode != nil {
		active = s.Mode.Active
	}
	parts := make([]string, len(s.Chain))
	for i, id := range s.Chain {
		if id == active {
			parts[i] = styleActive.Render(id)
		} else {
			parts[i] = StyleValue.Render(id)
		}
	}
	printKeyValue("chain", strings.Join(parts, StyleDim.Render(" "+iconArrow+" ")))
}

// printMode prints the mode switch state, if the graph has one.
func printMode(s graph.Graph) {
	if s.Mode == nil {
		return
	}
	printKeyValue("mode", fmt.Sprintf("%s=%s (active %s)", s.Mode.Param, s.Mode.Value, s.Mode.Active))
	if len(s.Mode.Parked) > 0 {
		parked := make([]string, len(s.Mode.Parked))
		for i, id := range s.Mode.Parked {
			parked[i] = styleParked.Render(id)
		}
		printKeyValue("parked", strings.Join(parked, " "))
	}
}

// paramTable renders exposed parameters with their current values and the
// node keys they drive.
func paramTable(params []graph.Param) string {
	rows := make([][]string, 0, len(params))
	for _, p := range params {
		rows = append(rows, []string{p.Name, string(p.Type), fmt.Sprint(p.Value), fmtBounds(p.Param), fmtTargets(p.Targets)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Param", "Type", "Value", "Range", "Targets").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader.Padding(0, 1)
			case col == 2:
				return StyleValue.Padding(0, 1)
			case col == 4:
				return StyleDim.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	return t.Render()
}

// effectTable renders a listing of effects.
func effectTable(rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Effect", "Title", "Category", "Params", "Mode").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader.Padding(0, 1)
			case col == 0:
				return StyleTitle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	return t.Render()
}

func fmtBounds(p dag.Param) string {
	switch {
	case p.Range != nil:
		return p.Range.String()
	case len(p.Values) > 0:
		return strings.Join(p.Values, "|")
	}
	return "-"
}

func fmtTargets(targets []dag.Target) string {
	if len(targets) == 0 {
		return "-"
	}
	parts := make([]string, len(targets))
	for i, t := range targets {
		parts[i] = t.Node + "." + t.Key
	}
	return strings.Join(parts, ", ")
}

// printIssues prints validator findings, one per line.
func printIssues(issues []dag.Issue) {
	for _, is := range issues {
		printError("%s", is)
	}
}
