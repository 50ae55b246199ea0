// Package ui renders the terminal HUD: frame and per-stage timings, beat
// tempo and the diagnostic from the last failed reload. The render window
// stays clean; the operator's terminal is the overlay.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StageStat is one stage's timing sample for display.
type StageStat struct {
	Index  int
	Kind   string
	Target string // "" when the stage renders to the screen
	Millis float32
}

// Stats is the per-frame snapshot the engine hands to the HUD.
type Stats struct {
	FrameMillis float32
	BPM         float32
	// Diagnostic from the last failed reload, empty when the active
	// pipeline is current.
	Diagnostic string
	Stages     []StageStat
}

type HUD struct {
	title  lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	stage  lipgloss.Style
	failed lipgloss.Style
}

func New() *HUD {
	return &HUD{
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		label:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		value:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		stage:  lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		failed: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
}

// Render formats one snapshot as a multi-line block.
func (h *HUD) Render(s Stats) string {
	var b strings.Builder

	fps := float32(0)
	if s.FrameMillis > 0 {
		fps = 1000 / s.FrameMillis
	}
	b.WriteString(h.title.Render("shaderdeck"))
	b.WriteString("  ")
	b.WriteString(h.label.Render("fps "))
	b.WriteString(h.value.Render(fmt.Sprintf("%.1f", fps)))
	b.WriteString(h.label.Render("  frame "))
	b.WriteString(h.value.Render(fmt.Sprintf("%.2fms", s.FrameMillis)))
	b.WriteString(h.label.Render("  bpm "))
	b.WriteString(h.value.Render(fmt.Sprintf("%.1f", s.BPM)))
	b.WriteString("\n")

	var total float32
	for _, st := range s.Stages {
		total += st.Millis
		line := fmt.Sprintf("  stage %d [%s] %8.4fms", st.Index, st.Kind, st.Millis)
		if st.Target != "" {
			line += " -> " + st.Target
		}
		b.WriteString(h.stage.Render(line))
		b.WriteString("\n")
	}

	stress := float32(0)
	if s.FrameMillis > 0 {
		stress = 100 * total / s.FrameMillis
	}
	b.WriteString(h.label.Render(fmt.Sprintf("  total %.4fms (%.1f%% stress)", total, stress)))
	b.WriteString("\n")

	if s.Diagnostic != "" {
		b.WriteString(h.failed.Render("last reload failed, previous pipeline still running:"))
		b.WriteString("\n")
		for _, line := range strings.Split(strings.TrimRight(s.Diagnostic, "\n"), "\n") {
			b.WriteString(h.failed.Render("  " + line))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Print repaints the terminal with the current snapshot.
func (h *HUD) Print(s Stats) {
	fmt.Print("\033[H\033[2J" + h.Render(s))
}
