package ui

import "github.com/charmbracelet/lipgloss"

// Color palette
// - Default (white/black): primary text
// - Accent (sea green #2AA198): reference paths, destinations, highlights
// - Muted (gray): secondary info, hints
// - Status is conveyed with unicode symbols, not color

var (
	// Accent style for reference paths and file destinations
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("#2AA198"))

	// Muted style for secondary info and hints
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().Bold(true)
)
