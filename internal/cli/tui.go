package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/apocalyptech/choosable/pkg/book"
	errs "github.com/apocalyptech/choosable/pkg/errors"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

const newCharacterLabel = "(new character)"

// =============================================================================
// CharacterPickerModel - Interactive character selection
// =============================================================================

// CharacterRow is one selectable character.
type CharacterRow struct {
	Name  string
	Fill  string
	Font  string
	Pages int
}

// characterRows lists the characters of b for the picker.
func characterRows(b *book.Book) []CharacterRow {
	var rows []CharacterRow
	for _, ch := range b.Characters() {
		rows = append(rows, CharacterRow{
			Name:  ch.Name,
			Fill:  ch.FillColor,
			Font:  ch.FontColor,
			Pages: len(b.CharacterUsage(ch.Name)),
		})
	}
	return rows
}

// CharacterPickerModel is the bubbletea model for picking a character. The
// row after the last character stands for adding a new one.
type CharacterPickerModel struct {
	Rows   []CharacterRow
	Cursor int
	Height int
	Offset int

	// Chosen is the picked row index once Done; len(Rows) means a new
	// character. Done stays false when the picker was dismissed.
	Chosen int
	Done   bool
}

// NewCharacterPickerModel creates a picker with the cursor on current, or
// on the first row when current is not listed.
func NewCharacterPickerModel(rows []CharacterRow, current string) CharacterPickerModel {
	m := CharacterPickerModel{Rows: rows, Height: 15}
	for i, r := range rows {
		if r.Name == current {
			m.Cursor = i
		}
	}
	m.clampOffset()
	return m
}

func (m CharacterPickerModel) Init() tea.Cmd {
	return nil
}

func (m CharacterPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Rows) {
				m.Cursor++
			}
		case "n":
			m.Chosen, m.Done = len(m.Rows), true
			return m, tea.Quit
		case "enter":
			m.Chosen, m.Done = m.Cursor, true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	m.clampOffset()
	return m, nil
}

func (m *CharacterPickerModel) clampOffset() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m CharacterPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Character"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  n new  q cancel"))
	b.WriteString("\n\n")

	total := len(m.Rows) + 1
	end := min(m.Offset+m.Height, total)

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		if i == len(m.Rows) {
			rows = append(rows, []string{cursor, newCharacterLabel, "", "", ""})
			continue
		}
		r := m.Rows[i]
		rows = append(rows, []string{cursor, r.Name, r.Fill, r.Font, strconv.Itoa(r.Pages)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Character", "Fill", "Font", "Pages").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			base := lipgloss.NewStyle()
			if col >= 2 {
				base = base.Foreground(colorDim)
			}
			switch {
			case idx == m.Cursor:
				return base.Foreground(colorGreen).Bold(true)
			case idx == len(m.Rows):
				return base.Foreground(colorGray)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, total)))

	return b.String()
}

// runCharacterPicker shows the picker full-screen and returns the chosen
// row index, len(rows) for a new character. Dismissing it is CANCELED.
func runCharacterPicker(rows []CharacterRow, current string) (int, error) {
	final, err := tea.NewProgram(NewCharacterPickerModel(rows, current)).Run()
	if err != nil {
		return 0, fmt.Errorf("character picker: %w", err)
	}
	m, ok := final.(CharacterPickerModel)
	if !ok || !m.Done {
		return 0, errs.New(errs.ErrCodeCanceled, "no character picked")
	}
	return m.Chosen, nil
}
