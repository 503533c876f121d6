package cli

import "github.com/charmbracelet/lipgloss"

var colors = struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Error   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Transit lipgloss.Color
}{
	Primary: lipgloss.Color("#6C5CE7"),
	Muted:   lipgloss.Color("#636E72"),
	Error:   lipgloss.Color("#D63031"),
	Success: lipgloss.Color("#00B894"),
	Warning: lipgloss.Color("#FDCB6E"),
	Transit: lipgloss.Color("#74B9FF"),
}

var styles = struct {
	Title     lipgloss.Style
	Label     lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Delivered lipgloss.Style
	InTransit lipgloss.Style
	AtDepot   lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(colors.Primary),
	Label:     lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(colors.Muted),
	Error:     lipgloss.NewStyle().Foreground(colors.Error),
	Warning:   lipgloss.NewStyle().Foreground(colors.Warning),
	Delivered: lipgloss.NewStyle().Foreground(colors.Success),
	InTransit: lipgloss.NewStyle().Foreground(colors.Transit),
	AtDepot:   lipgloss.NewStyle().Foreground(colors.Muted),
}
