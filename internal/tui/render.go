// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	extraStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#A8071A"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	noticeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// buildWordStream colors the whole word sequence: words already committed
// are judged against what was actually typed for them, the current word is
// judged live against the input buffer, and everything ahead stays dim.
func buildWordStream(words []string, typedHistory []string, wordIndex int, current string) []styledRune {
	var out []styledRune
	for i, w := range words {
		switch {
		case i < wordIndex:
			typed := ""
			if i < len(typedHistory) {
				typed = typedHistory[i]
			}
			out = appendWord(out, w, typed, false)
		case i == wordIndex:
			out = appendWord(out, w, current, true)
		default:
			out = appendStyled(out, w, pendingStyle)
		}
		if i != len(words)-1 {
			out = append(out, styledRune{s: pendingStyle.Render(" "), width: 1, isSpace: true})
		}
	}
	return out
}

// appendWord emits one word with per-character verdicts. Extra characters
// beyond the target's length are shown appended. Untyped characters of the
// active word are highlighted; of a committed word, left dim.
func appendWord(out []styledRune, target, typed string, active bool) []styledRune {
	tr := []rune(target)
	ty := []rune(typed)
	for i, c := range tr {
		var style lipgloss.Style
		switch {
		case i < len(ty) && ty[i] == c:
			style = correctStyle
		case i < len(ty):
			style = incorrectStyle
		case active && i == len(ty):
			style = currentWordStyle.Underline(true)
		case active:
			style = currentWordStyle
		default:
			style = pendingStyle
		}
		out = append(out, styledRune{s: style.Render(string(c)), width: runewidth.RuneWidth(c)})
	}
	for _, c := range ty[min(len(ty), len(tr)):] {
		out = append(out, styledRune{s: extraStyle.Render(string(c)), width: runewidth.RuneWidth(c)})
	}
	return out
}

func appendStyled(out []styledRune, s string, style lipgloss.Style) []styledRune {
	for _, c := range s {
		out = append(out, styledRune{s: style.Render(string(c)), width: runewidth.RuneWidth(c)})
	}
	return out
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes breaks the stream into lines of at most width cells,
// preferring to break at spaces.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
