package control

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSliderClamping(t *testing.T) {
	s := NewState()
	s.SetSlider(0, 1.5)
	s.SetSlider(1, -0.5)
	s.SetSlider(2, 0.25)

	sliders, _ := s.Snapshot(time.Now())
	assert.Equal(t, float32(1), sliders[0])
	assert.Equal(t, float32(0), sliders[1])
	assert.Equal(t, float32(0.25), sliders[2])
}

func TestSliderOutOfRangeIndexIgnored(t *testing.T) {
	s := NewState()
	s.SetSlider(-1, 1)
	s.SetSlider(NumSliders, 1)
	sliders, _ := s.Snapshot(time.Now())
	assert.Equal(t, [NumSliders]float32{}, sliders)
}

func TestNudgeActsOnSelected(t *testing.T) {
	s := NewState()
	s.SelectSlider(3)
	s.Nudge(0.4)
	s.Nudge(0.4)
	s.Nudge(0.4)

	sliders, _ := s.Snapshot(time.Now())
	assert.Equal(t, float32(1), sliders[3]) // clamped
	assert.Equal(t, 3, s.Selected())
}

func TestButtonsReportSecondsSinceTrigger(t *testing.T) {
	s := NewState()
	s.TriggerButton(2)

	_, buttons := s.Snapshot(time.Now().Add(3 * time.Second))
	assert.InDelta(t, 3.0, buttons[2], 0.1)
}

func TestBeatPhaseSeededAtOneSecond(t *testing.T) {
	s := NewState()
	// the delta ring starts filled with 1s, so phase == elapsed seconds
	phase := s.BeatPhase(time.Now().Add(500 * time.Millisecond))
	assert.InDelta(t, 0.5, phase, 0.05)
	assert.InDelta(t, 60.0, s.BPM(), 0.5)
}

func TestTapBeatResetsPhase(t *testing.T) {
	s := NewState()
	s.TapBeat()
	phase := s.BeatPhase(time.Now())
	assert.Less(t, phase, float32(0.05))
}
