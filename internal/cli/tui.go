package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/modmirror/pkg/config"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// RepoPickerModel - Interactive repository selection
// =============================================================================

// PickerItem is one row of the picker.
type PickerItem struct {
	Spec    config.RepoSpec
	Version string // mirrored version, empty if never synced
}

// RepoPickerModel is the bubbletea model for choosing which repositories to sync.
type RepoPickerModel struct {
	Items     []PickerItem
	Cursor    int
	Checked   map[int]bool
	Height    int
	Offset    int
	Confirmed bool
}

// NewRepoPickerModel creates a picker with every repository checked.
func NewRepoPickerModel(items []PickerItem) RepoPickerModel {
	checked := make(map[int]bool, len(items))
	for i := range items {
		checked[i] = true
	}
	return RepoPickerModel{
		Items:   items,
		Checked: checked,
		Height:  15,
	}
}

// Selected returns the checked repositories in list order, or nil if the
// picker was dismissed.
func (m RepoPickerModel) Selected() []config.RepoSpec {
	if !m.Confirmed {
		return nil
	}
	var out []config.RepoSpec
	for i, it := range m.Items {
		if m.Checked[i] {
			out = append(out, it.Spec)
		}
	}
	return out
}

func (m RepoPickerModel) Init() tea.Cmd {
	return nil
}

func (m RepoPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Items) > 0 {
				m.Checked[m.Cursor] = !m.Checked[m.Cursor]
			}
		case "a":
			all := m.count() < len(m.Items)
			for i := range m.Items {
				m.Checked[i] = all
			}
		case "enter":
			m.Confirmed = true
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

func (m RepoPickerModel) count() int {
	n := 0
	for i := range m.Items {
		if m.Checked[i] {
			n++
		}
	}
	return n
}

func (m RepoPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Repositories"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ sync  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Items) {
		end = len(m.Items)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		it := m.Items[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := "[ ]"
		if m.Checked[i] {
			box = "[x]"
		}

		rows = append(rows, []string{
			cursor + box,
			it.Spec.SourceID,
			orDash(it.Spec.FilePattern),
			orDash(it.Spec.PinnedVersion),
			orDash(it.Version),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Repository", "Pattern", "Pinned", "Mirrored").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case m.Checked[idx]:
				return listNormalStyle
			default:
				return listDimStyle
			}
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d of %d selected", m.count(), len(m.Items))))

	return b.String()
}

// pickRepos lets the user narrow repos in a terminal UI.
func (c *CLI) pickRepos(repos config.RepoList) (config.RepoList, error) {
	st := c.newStore()
	items := make([]PickerItem, 0, repos.Len())
	for _, spec := range repos.All() {
		rec, err := st.Load(spec.Name())
		if err != nil {
			c.Logger.Debug("unreadable record", "repo", spec.SourceID, "err", err)
		}
		items = append(items, PickerItem{Spec: spec, Version: rec.Version()})
	}

	final, err := tea.NewProgram(NewRepoPickerModel(items)).Run()
	if err != nil {
		return config.RepoList{}, fmt.Errorf("picker: %w", err)
	}
	return config.NewRepoList(final.(RepoPickerModel).Selected())
}

// =============================================================================
// Helpers
// =============================================================================

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
