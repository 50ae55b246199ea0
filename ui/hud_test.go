package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderListsStagesInOrder(t *testing.T) {
	h := New()
	out := h.Render(Stats{
		FrameMillis: 16.6,
		BPM:         128,
		Stages: []StageStat{
			{Index: 0, Kind: "fullscreen", Target: "scene", Millis: 1.5},
			{Index: 1, Kind: "compute", Target: "field", Millis: 0.4},
			{Index: 2, Kind: "fullscreen", Millis: 2.1},
		},
	})

	assert.Contains(t, out, "stage 0 [fullscreen]")
	assert.Contains(t, out, "-> scene")
	assert.Contains(t, out, "stage 1 [compute]")
	assert.Contains(t, out, "stage 2 [fullscreen]")
	// declaration order preserved
	assert.Less(t, strings.Index(out, "stage 0"), strings.Index(out, "stage 2"))
}

func TestRenderShowsDiagnostic(t *testing.T) {
	h := New()
	out := h.Render(Stats{Diagnostic: "stage 1: scene.frag: failed to compile fragment shader:\n0:12: syntax error"})
	assert.Contains(t, out, "previous pipeline still running")
	assert.Contains(t, out, "syntax error")
}

func TestRenderZeroFrameTime(t *testing.T) {
	h := New()
	out := h.Render(Stats{})
	assert.Contains(t, out, "fps 0.0")
}
