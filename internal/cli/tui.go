package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	descio "github.com/matzehuels/atlaspack/pkg/io"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorMuted)

// =============================================================================
// FrameListModel - Interactive descriptor browser
// =============================================================================

// FrameListModel is the bubbletea model for browsing a descriptor's sprites.
// Enter toggles a detail pane for the frame under the cursor.
type FrameListModel struct {
	Desc    descio.Descriptor
	Cursor  int
	Height  int
	Offset  int
	Details bool
}

// NewFrameListModel creates a frame list model for d.
func NewFrameListModel(d descio.Descriptor) FrameListModel {
	return FrameListModel{Desc: d, Height: 15}
}

func (m FrameListModel) Init() tea.Cmd {
	return nil
}

func (m FrameListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Desc.Sprites)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Details = !m.Details
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 10
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m FrameListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("%s  %dx%d", m.Desc.Texture, m.Desc.Width, m.Desc.Height)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Desc.Sprites))
	cursor := m.Cursor - m.Offset
	b.WriteString(frameTable(m.Desc.Sprites[m.Offset:end], cursor).Render())
	b.WriteString("\n\n")

	if m.Details && m.Cursor < len(m.Desc.Sprites) {
		f := m.Desc.Sprites[m.Cursor]
		b.WriteString(frameDetails(f))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Desc.Sprites))))

	return b.String()
}

// frameTable renders frames as a table. The row at cursor is highlighted;
// pass -1 for none.
func frameTable(frames []descio.Frame, cursor int) *table.Table {
	rows := make([][]string, len(frames))
	for i, f := range frames {
		mark := "  "
		if i == cursor {
			mark = "▸ "
		}
		trimmed := ""
		if f.SourceW > f.W || f.SourceH > f.H {
			trimmed = "✓"
		}
		rows[i] = []string{
			mark, f.ID,
			strconv.Itoa(f.X), strconv.Itoa(f.Y),
			strconv.Itoa(f.W), strconv.Itoa(f.H),
			trimmed,
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorLabel).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers("", "Sprite", "X", "Y", "W", "H", "Trim").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == cursor:
				return lipgloss.NewStyle().Foreground(colorOK).Bold(true)
			case col >= 2 && col <= 5:
				return lipgloss.NewStyle().Foreground(colorAccent)
			}
			return lipgloss.NewStyle()
		})
}

func frameDetails(f descio.Frame) string {
	var b strings.Builder
	line := func(k, v string) {
		b.WriteString("  " + lipgloss.NewStyle().Foreground(colorLabel).Width(10).Render(k) + " " + StyleValue.Render(v) + "\n")
	}
	line("id", f.ID)
	line("rect", fmt.Sprintf("%d %d %d %d", f.X, f.Y, f.W, f.H))
	line("hotspot", fmt.Sprintf("%g %g", f.HotspotX, f.HotspotY))
	line("source", fmt.Sprintf("%dx%d", f.SourceW, f.SourceH))
	line("offset", fmt.Sprintf("%d,%d", f.OffsetX, f.OffsetY))
	return b.String()
}
