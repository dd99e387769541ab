package ui

import (
	"github.com/charmbracelet/lipgloss"

	"facequiz/internal/theme"
)

type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Header   lipgloss.Style
	Body     lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Faint    lipgloss.Style
	Box      lipgloss.Style
	Overlay  lipgloss.Style
	Spinner  lipgloss.Style
	Dog      lipgloss.Style
	Cat      lipgloss.Style
	Key      lipgloss.Style

	BarFull  string // progress bar fill
	BarEmpty string
}

func stylesFor(t theme.Theme) Styles {
	if t == theme.Light {
		return lightStyles()
	}
	return darkStyles()
}

func darkStyles() Styles {
	base := lipgloss.NewStyle()
	return Styles{
		Title:    base.Bold(true).Foreground(lipgloss.Color("#A78BFA")),
		Subtitle: base.Faint(true),
		Header:   base.Bold(true).Foreground(lipgloss.Color("#F3F4F6")),
		Body:     base.Foreground(lipgloss.Color("#D1D5DB")),
		Success:  base.Foreground(lipgloss.Color("#22C55E")),
		Error:    base.Foreground(lipgloss.Color("#EF4444")),
		Faint:    base.Faint(true),
		Box:      base.Padding(0, 1),
		Overlay:  base.Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#7D56F4")).Padding(1, 3),
		Spinner:  base.Foreground(lipgloss.Color("#22D3EE")),
		Dog:      base.Bold(true).Foreground(lipgloss.Color("#F59E0B")),
		Cat:      base.Bold(true).Foreground(lipgloss.Color("#60A5FA")),
		Key:      base.Foreground(lipgloss.Color("#9CA3AF")),
		BarFull:  "#7D56F4",
		BarEmpty: "#374151",
	}
}

func lightStyles() Styles {
	base := lipgloss.NewStyle()
	return Styles{
		Title:    base.Bold(true).Foreground(lipgloss.Color("#6D28D9")),
		Subtitle: base.Foreground(lipgloss.Color("#6B7280")),
		Header:   base.Bold(true).Foreground(lipgloss.Color("#111827")),
		Body:     base.Foreground(lipgloss.Color("#374151")),
		Success:  base.Foreground(lipgloss.Color("#15803D")),
		Error:    base.Foreground(lipgloss.Color("#B91C1C")),
		Faint:    base.Foreground(lipgloss.Color("#9CA3AF")),
		Box:      base.Padding(0, 1),
		Overlay:  base.Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#6D28D9")).Padding(1, 3),
		Spinner:  base.Foreground(lipgloss.Color("#0891B2")),
		Dog:      base.Bold(true).Foreground(lipgloss.Color("#B45309")),
		Cat:      base.Bold(true).Foreground(lipgloss.Color("#1D4ED8")),
		Key:      base.Foreground(lipgloss.Color("#4B5563")),
		BarFull:  "#6D28D9",
		BarEmpty: "#E5E7EB",
	}
}
