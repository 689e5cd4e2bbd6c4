// Package render turns feature models into text for terminals and diffs.
package render

import "github.com/charmbracelet/lipgloss"

// Styles controls how tree labels are decorated.
type Styles struct {
	Root       lipgloss.Style
	Mandatory  lipgloss.Style
	Optional   lipgloss.Style
	Annotation lipgloss.Style
	Enumerator lipgloss.Style
	Constraint lipgloss.Style
	Heading    lipgloss.Style
	Addition   lipgloss.Style
	Deletion   lipgloss.Style
}

// DefaultStyles returns the colored terminal styles. Colors degrade to plain
// text when the output is not a terminal.
func DefaultStyles() Styles {
	makeColor := func(hex string) lipgloss.AdaptiveColor {
		return lipgloss.AdaptiveColor{Light: hex, Dark: hex}
	}
	return Styles{
		Root:       lipgloss.NewStyle().Bold(true),
		Mandatory:  lipgloss.NewStyle().Foreground(makeColor("#54A0FF")),
		Optional:   lipgloss.NewStyle(),
		Annotation: lipgloss.NewStyle().Foreground(makeColor("#8395A7")),
		Enumerator: lipgloss.NewStyle().Foreground(makeColor("#576574")),
		Constraint: lipgloss.NewStyle().Foreground(makeColor("#FECA57")),
		Heading:    lipgloss.NewStyle().Bold(true).Underline(true),
		Addition:   lipgloss.NewStyle().Foreground(makeColor("#1DD1A1")),
		Deletion:   lipgloss.NewStyle().Foreground(makeColor("#FF6B6B")),
	}
}

// PlainStyles returns styles that leave text untouched.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Root:       plain,
		Mandatory:  plain,
		Optional:   plain,
		Annotation: plain,
		Enumerator: plain,
		Constraint: plain,
		Heading:    plain,
		Addition:   plain,
		Deletion:   plain,
	}
}
