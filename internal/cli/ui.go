package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/ioschema/pkg/allocate"
	"github.com/matzehuels/ioschema/pkg/catalog"
	"github.com/matzehuels/ioschema/pkg/errors"
)

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

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleFull   = lipgloss.NewStyle().Foreground(colorYellow)
	styleSpare  = lipgloss.NewStyle().Foreground(colorGreen)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

func printWarnings(ws errors.Warnings) {
	for _, w := range ws {
		printWarning("%s %s", w.Subject, StyleDim.Render("("+string(w.Code)+")"))
		printDetail("%s", w.Message)
	}
}

// =============================================================================
// Tables
// =============================================================================

// headerRow is the row index lipgloss tables pass for the header.
const headerRow = -1

// fillTable renders used/capacity per signal type for every module instance.
func fillTable(fills []allocate.Fill) string {
	rows := make([][]string, len(fills))
	for i, f := range fills {
		rows[i] = []string{
			strconv.Itoa(f.Index),
			f.Module,
			ratio(f.Used.DI, f.Capacity.DI),
			ratio(f.Used.DO, f.Capacity.DO),
			ratio(f.Used.AI, f.Capacity.AI),
			ratio(f.Used.AO, f.Capacity.AO),
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Module", "DI", "DO", "AI", "AO").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == headerRow {
				return styleHeader.Padding(0, 1)
			}
			if col < 2 || row >= len(fills) {
				return base
			}
			f := fills[row]
			used, capacity := fillColumn(f, col)
			switch {
			case capacity == 0:
				return base.Foreground(colorDim)
			case used == capacity:
				return base.Inherit(styleFull)
			default:
				return base.Inherit(styleSpare)
			}
		}).
		Render()
}

func fillColumn(f allocate.Fill, col int) (used, capacity int) {
	switch col {
	case 2:
		return f.Used.DI, f.Capacity.DI
	case 3:
		return f.Used.DO, f.Capacity.DO
	case 4:
		return f.Used.AI, f.Capacity.AI
	default:
		return f.Used.AO, f.Capacity.AO
	}
}

func ratio(used, capacity int) string {
	if capacity == 0 {
		return "-"
	}
	return fmt.Sprintf("%d/%d", used, capacity)
}

// catalogTable renders one brand group.
func catalogTable(g catalog.BrandGroup) string {
	var rows [][]string
	for _, cg := range g.Categories {
		for _, m := range cg.Modules {
			name := m.DisplayName
			if name == "" {
				name = m.ID
			}
			rows = append(rows, []string{
				string(cg.Category),
				m.ID,
				name,
				capacityString(m.Capacity),
			})
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Category", "ID", "Name", "Channels").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader.Padding(0, 1)
			}
			if col == 1 {
				return lipgloss.NewStyle().Padding(0, 1).Foreground(colorCyan)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}

func capacityString(c catalog.Capacity) string {
	var out string
	for _, p := range []struct {
		label string
		n     int
	}{{"DI", c.DI}, {"DO", c.DO}, {"AI", c.AI}, {"AO", c.AO}} {
		if p.n == 0 {
			continue
		}
		if out != "" {
			out += " "
		}
		out += fmt.Sprintf("%d%s", p.n, p.label)
	}
	if out == "" {
		return "-"
	}
	return out
}
