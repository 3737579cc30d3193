package ui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	doneTitleStyle = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("241"))
	descStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dueChipStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	overdueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	labelStyle     = lipgloss.NewStyle().Bold(true)
	dialogStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)
