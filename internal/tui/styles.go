package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("25")).
			Padding(0, 1)
	buttonFocusedStyle = buttonStyle.
				Background(lipgloss.Color("33")).
				Bold(true)
	buttonDisabledStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("237")).
				Padding(0, 1)

	statusStyles = map[statusKind]lipgloss.Style{
		statusInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		statusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		statusDanger:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}

	historyItemStyle     = lipgloss.NewStyle().PaddingLeft(2)
	historySelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	historyDimmedStyle   = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("8"))
)
