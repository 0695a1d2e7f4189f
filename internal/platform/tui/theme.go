package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme contains the styles of the game screen outside the map.
type Theme struct {
	// HUD styles
	HUDTitle     lipgloss.Style
	HUDLabel     lipgloss.Style
	HUDValue     lipgloss.Style
	HUDWarning   lipgloss.Style
	HUDSeparator lipgloss.Style

	// Selected tower panel
	TowerName  lipgloss.Style
	TowerStats lipgloss.Style

	// Status line
	StatusInfo  lipgloss.Style
	StatusError lipgloss.Style

	// Overlay styles
	OverlayBorder lipgloss.Style
	OverlayTitle  lipgloss.Style
	OverlayText   lipgloss.Style

	Help lipgloss.Style
}

// DefaultTheme returns the default visual theme.
func DefaultTheme() Theme {
	return Theme{
		HUDTitle:     lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		HUDLabel:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		HUDValue:     lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true),
		HUDWarning:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		HUDSeparator: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),

		TowerName:  lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		TowerStats: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),

		StatusInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
		StatusError: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),

		OverlayBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("255")).
			Padding(1, 4),
		OverlayTitle: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		OverlayText:  lipgloss.NewStyle().Foreground(lipgloss.Color("255")),

		Help: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// MonochromeTheme returns a theme without colors for dumb terminals.
func MonochromeTheme() Theme {
	plain := lipgloss.NewStyle()
	bold := plain.Bold(true)
	return Theme{
		HUDTitle:      bold,
		HUDLabel:      plain,
		HUDValue:      bold,
		HUDWarning:    bold.Underline(true),
		HUDSeparator:  plain,
		TowerName:     bold,
		TowerStats:    plain,
		StatusInfo:    plain,
		StatusError:   bold,
		OverlayBorder: plain.Border(lipgloss.NormalBorder()).Padding(1, 4),
		OverlayTitle:  bold,
		OverlayText:   plain,
		Help:          plain,
	}
}
