// Package report renders solve results for the terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Entry is what a finished solve shows to the user.
type Entry struct {
	// Question is the recognised "Q3of10" label; empty in hotkey mode.
	Question    string
	Title       string
	Options     []string
	Answer      string
	OptionIndex int
}

// Styles holds the colours used by Render.
type Styles struct {
	Header   lipgloss.Style
	Muted    lipgloss.Style
	Option   lipgloss.Style
	Selected lipgloss.Style
	Answer   lipgloss.Style
	Error    lipgloss.Style
	Box      lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		Option:   lipgloss.NewStyle().Foreground(lipgloss.Color("#CDD6F4")),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E3A1")),
		Answer:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
		Box: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#45475A")).
			Padding(0, 1),
	}
}

// Render formats one result as a bordered block. The matched option is
// marked with "> ".
func Render(s Styles, e Entry) string {
	var lines []string
	if e.Question != "" {
		lines = append(lines, s.Muted.Render(e.Question))
	}
	lines = append(lines, s.Header.Render(e.Title))

	for i, opt := range e.Options {
		label := fmt.Sprintf("%c) %s", optionLetter(i), opt)
		if i == e.OptionIndex {
			lines = append(lines, s.Selected.Render("> "+label))
		} else {
			lines = append(lines, s.Option.Render("  "+label))
		}
	}

	answer := "Answer: " + e.Answer
	if e.OptionIndex < 0 {
		answer += " (no matching option)"
	}
	lines = append(lines, "", s.Answer.Render(answer))
	return s.Box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// RenderError formats a failed solve on one line.
func RenderError(s Styles, question string, err error) string {
	var b strings.Builder
	if question != "" {
		b.WriteString(s.Muted.Render(question))
		b.WriteString(" ")
	}
	b.WriteString(s.Error.Render("solve failed: " + err.Error()))
	return b.String()
}

func optionLetter(i int) rune {
	if i < 26 {
		return rune('A' + i)
	}
	return '?'
}
