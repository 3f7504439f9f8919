package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Minimal color palette shared by every screen.
var (
	DimColor     = lipgloss.Color("#6c6c6c")
	TextColor    = lipgloss.Color("#e0e0e0")
	AccentColor  = lipgloss.Color("#7aa2f7")
	ErrorColor   = lipgloss.Color("#f7768e")
	MutedColor   = lipgloss.Color("#545454")
	SuccessColor = lipgloss.Color("#73daca")
	WarningColor = lipgloss.Color("#e0af68")

	FooterBg   = lipgloss.Color("#1a1a1a")
	SelectedBg = lipgloss.Color("#2a2a2a")
)

var (
	PanelTitleStyle = lipgloss.NewStyle().
			Foreground(AccentColor).
			Bold(true)

	ListItemStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	ListItemSelectedStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Background(SelectedBg).
				Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	StatusBarStyle = lipgloss.NewStyle().
			Background(FooterBg).
			Foreground(DimColor)
)

// MethodStyle returns a color-coded style for an HTTP method badge.
func MethodStyle(method string) lipgloss.Style {
	switch method {
	case "GET":
		return lipgloss.NewStyle().Foreground(SuccessColor).Bold(true)
	case "POST":
		return lipgloss.NewStyle().Foreground(AccentColor).Bold(true)
	case "PUT", "PATCH":
		return lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
	case "DELETE":
		return lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(DimColor).Bold(true)
	}
}

// StateStyle color-codes a load test's current state.
func StateStyle(state string) lipgloss.Style {
	switch state {
	case "Running":
		return lipgloss.NewStyle().Foreground(SuccessColor).Bold(true)
	case "Stopping":
		return lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
	case "Stopped":
		return lipgloss.NewStyle().Foreground(DimColor)
	default:
		return lipgloss.NewStyle().Foreground(TextColor)
	}
}

// StatusCodeStyle color-codes an HTTP response status.
func StatusCodeStyle(status int) lipgloss.Style {
	switch {
	case status >= 200 && status < 300:
		return lipgloss.NewStyle().Foreground(SuccessColor).Bold(true)
	case status >= 300 && status < 400:
		return lipgloss.NewStyle().Foreground(AccentColor).Bold(true)
	case status >= 400:
		return lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(DimColor)
	}
}
