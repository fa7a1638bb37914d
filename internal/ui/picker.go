package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// PickerItem is one entry of the account picker.
type PickerItem struct {
	Label    string // wallet name
	SubLabel string // address
	Value    string // returned on selection
	Current  bool   // marked and preselected
}

// pickerModel lists items with the cursor starting on the current one.
// Digits jump straight to an entry.
type pickerModel struct {
	title    string
	items    []PickerItem
	cursor   int
	selected *PickerItem
	quitting bool
}

func newPickerModel(title string, items []PickerItem) pickerModel {
	m := pickerModel{title: title, items: items}
	for i, it := range items {
		if it.Current {
			m.cursor = i
			break
		}
	}
	return m
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || len(m.items) == 0 {
		return m, nil
	}
	switch k := key.String(); k {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		m.cursor = (m.cursor + len(m.items) - 1) % len(m.items)
	case "down", "j", "tab":
		m.cursor = (m.cursor + 1) % len(m.items)
	case "enter", " ":
		item := m.items[m.cursor]
		m.selected = &item
		return m, tea.Quit
	default:
		if len(k) == 1 && k[0] >= '1' && k[0] <= '9' && int(k[0]-'1') < len(m.items) {
			m.cursor = int(k[0] - '1')
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n" + StyleTitle.Render("  "+m.title) + "\n\n")
	for i, item := range m.items {
		marker := "  "
		if item.Current {
			marker = StyleSuccess.Render("● ")
		}
		line := fmt.Sprintf("%d %s%s", i+1, marker, StyleValue.Render(item.Label))
		if item.SubLabel != "" {
			line += "  " + StyleAddress.Render(item.SubLabel)
		}
		if i == m.cursor {
			sb.WriteString(StyleSelected.Render("  ▸ "+line) + "\n")
		} else {
			sb.WriteString("    " + line + "\n")
		}
	}
	sb.WriteString("\n" + StyleMeta.Render("  [ ↑↓ ] move   [ 1-9 ] jump   [ Enter ] select   [ Esc ] cancel") + "\n")
	return sb.String()
}

// PickItem runs the picker and returns the chosen Value, or "" if the user
// cancelled.
func PickItem(title string, items []PickerItem) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("no items to pick from")
	}
	final, err := tea.NewProgram(newPickerModel(title, items), tea.WithAltScreen()).Run()
	if err != nil {
		return "", fmt.Errorf("picker: %w", err)
	}
	fm := final.(pickerModel)
	if fm.quitting || fm.selected == nil {
		return "", nil
	}
	return fm.selected.Value, nil
}
