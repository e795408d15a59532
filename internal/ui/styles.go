// Package ui styles issuesync terminal output with the Ayu palette.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/steveyegge/issuesync/internal/types"
)

// Tone selects the color and marker of a piece of output.
type Tone int

const (
	Muted Tone = iota
	Pass
	Warn
	Fail
	Accent
)

var tones = map[Tone]struct {
	style lipgloss.Style
	mark  string
}{
	Muted:  {lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}), "-"},
	Pass:   {lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}), "✓"},
	Warn:   {lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}), "⚠"},
	Fail:   {lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}), "✗"},
	Accent: {lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"}), "•"},
}

var (
	headerStyle = tones[Accent].style.Bold(true)
	labelStyle  = tones[Muted].style.Width(22)
)

const rule = "──────────────────────────────────────────"

// Paint colors s with tone.
func Paint(t Tone, s string) string {
	return tones[t].style.Render(s)
}

// Mark returns the colored marker of tone: a check, warning sign, cross,
// bullet, or a dash for skipped items.
func Mark(t Tone) string {
	return Paint(t, tones[t].mark)
}

// Line prefixes msg with the marker of tone.
func Line(t Tone, msg string) string {
	return Mark(t) + " " + msg
}

// RenderCheck is Line with a pass or fail marker.
func RenderCheck(ok bool, msg string) string {
	if ok {
		return Line(Pass, msg)
	}
	return Line(Fail, msg)
}

func RenderCategory(s string) string {
	return headerStyle.Render(strings.ToUpper(s))
}

// RenderField aligns value after a fixed-width label.
func RenderField(label, value string) string {
	return labelStyle.Render(label) + value
}

func RenderRule() string {
	return Paint(Muted, rule)
}

// RenderTaskStatus colors a task status: done is green, in progress is
// blue, anything else is gray.
func RenderTaskStatus(s types.Status) string {
	switch s {
	case types.StatusDone:
		return Paint(Pass, string(s))
	case types.StatusInProgress:
		return Paint(Accent, string(s))
	default:
		return Paint(Muted, string(s))
	}
}
