package main

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title lipgloss.Style
	label lipgloss.Style
	kind  lipgloss.Style
	ref   lipgloss.Style
	ok    lipgloss.Style
	warn  lipgloss.Style
	err   lipgloss.Style
}

// newStyles returns the output palette. With color off every style
// renders its input unchanged.
func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain, plain}
	}
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1),
		label: lipgloss.NewStyle().Bold(true),
		kind:  lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
		ref:   lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
		ok:    lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90")),
		warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD166")),
		err:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
	}
}
