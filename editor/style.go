package editor

import "github.com/charmbracelet/lipgloss"

// Style controls how the floating menus and decorations render.
type Style struct {
	MenuItem       lipgloss.Style
	MenuItemActive lipgloss.Style
	MenuDivider    lipgloss.Style

	SlashItem     lipgloss.Style
	SlashSelected lipgloss.Style
	SlashDivider  lipgloss.Style

	Bullet lipgloss.Style

	Image         lipgloss.Style
	ImageError    lipgloss.Style
	ImageDragging lipgloss.Style

	DropPlaceholder lipgloss.Style

	set bool
}

func (s Style) isZero() bool { return !s.set }

func DefaultStyle() Style {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	return Style{
		MenuItem:       lipgloss.NewStyle().Padding(0, 1),
		MenuItemActive: lipgloss.NewStyle().Padding(0, 1).Reverse(true).Bold(true),
		MenuDivider:    dim,

		SlashItem:     lipgloss.NewStyle().Padding(0, 1),
		SlashSelected: lipgloss.NewStyle().Padding(0, 1).Reverse(true),
		SlashDivider:  dim,

		Bullet: lipgloss.NewStyle().Foreground(lipgloss.Color("111")),

		Image:         lipgloss.NewStyle().Foreground(lipgloss.Color("150")),
		ImageError:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		ImageDragging: lipgloss.NewStyle().Faint(true),

		DropPlaceholder: dim,

		set: true,
	}
}
