package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/ioschema/pkg/catalog"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listCheckedStyle  = lipgloss.NewStyle().Foreground(colorGreen)
)

// =============================================================================
// ModulePickerModel - Interactive module selection
// =============================================================================

type pickerItem struct {
	brand string
	spec  catalog.ModuleSpec
}

// ModulePickerModel is the bubbletea model behind `generate --pick`.
// Modules are listed in catalog order; the selection keeps the order in
// which modules were checked.
type ModulePickerModel struct {
	Items    []pickerItem
	Cursor   int
	Offset   int
	Height   int
	Chosen   []string
	Done     bool
	Canceled bool
}

// NewModulePickerModel lists the grouped catalog.
func NewModulePickerModel(groups []catalog.BrandGroup) ModulePickerModel {
	var items []pickerItem
	for _, g := range groups {
		for _, cg := range g.Categories {
			for _, m := range cg.Modules {
				items = append(items, pickerItem{brand: g.Brand, spec: m})
			}
		}
	}
	return ModulePickerModel{Items: items, Height: 15}
}

func (m ModulePickerModel) Init() tea.Cmd {
	return nil
}

func (m ModulePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Canceled = true
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Items) > 0 {
				m.toggle(m.Items[m.Cursor].spec.ID)
			}
		case "enter":
			if len(m.Chosen) == 0 {
				return m, nil
			}
			m.Done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m *ModulePickerModel) toggle(id string) {
	for i, c := range m.Chosen {
		if c == id {
			m.Chosen = append(m.Chosen[:i:i], m.Chosen[i+1:]...)
			return
		}
	}
	m.Chosen = append(m.Chosen, id)
}

func (m ModulePickerModel) checked(id string) int {
	for i, c := range m.Chosen {
		if c == id {
			return i + 1
		}
	}
	return 0
}

func (m ModulePickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Modules"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  ⏎ generate  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Items) {
		end = len(m.Items)
	}
	for i := m.Offset; i < end; i++ {
		it := m.Items[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := "[ ]"
		if n := m.checked(it.spec.ID); n > 0 {
			box = listCheckedStyle.Render(fmt.Sprintf("[%d]", n))
		}
		line := fmt.Sprintf("%-14s %-24s %s", it.brand, it.spec.ID, listDimStyle.Render(capacityString(it.spec.Capacity)))
		style := listNormalStyle
		if i == m.Cursor {
			style = listSelectedStyle
		}
		b.WriteString(cursor + box + " " + style.Render(line) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] %d selected", m.Cursor+1, len(m.Items), len(m.Chosen))))
	return b.String()
}

// pickModules runs the picker and returns the checked identifiers in
// selection order. Canceling returns no modules and no error.
func pickModules(groups []catalog.BrandGroup) ([]string, error) {
	final, err := tea.NewProgram(NewModulePickerModel(groups)).Run()
	if err != nil {
		return nil, err
	}
	m := final.(ModulePickerModel)
	if m.Canceled || !m.Done {
		return nil, nil
	}
	return m.Chosen, nil
}
