// Package control holds the performer-facing input state: a bank of
// sliders in [0,1], a bank of buttons reported to shaders as seconds since
// their last trigger, and the tapped beat. The window's key callbacks write
// it, the frame loop snapshots it, so access is guarded by one mutex.
package control

import (
	"sync"
	"time"

	"github.com/vjkit/shaderdeck/util"
)

const (
	NumSliders = 8
	NumButtons = 8

	// beat deltas smoothed over the last taps
	beatWindow = 8
)

type State struct {
	mu sync.Mutex

	sliders  [NumSliders]float32
	buttons  [NumButtons]time.Time
	selected int

	lastBeat  time.Time
	beatDelta *util.RunningAverage
}

func NewState() *State {
	s := &State{
		beatDelta: util.NewRunningAverage(beatWindow),
		lastBeat:  time.Now(),
	}
	// seed with one-second beats so the phase is defined before any tap
	s.beatDelta.Fill(1)
	now := time.Now()
	for i := range s.buttons {
		s.buttons[i] = now
	}
	return s
}

// TriggerButton marks button i as pressed now.
func (s *State) TriggerButton(i int) {
	if i < 0 || i >= NumButtons {
		return
	}
	s.mu.Lock()
	s.buttons[i] = time.Now()
	s.mu.Unlock()
}

// SetSlider sets slider i, clamped to [0,1].
func (s *State) SetSlider(i int, v float32) {
	if i < 0 || i >= NumSliders {
		return
	}
	s.mu.Lock()
	s.sliders[i] = clamp01(v)
	s.mu.Unlock()
}

// SelectSlider picks the slider the nudge keys act on.
func (s *State) SelectSlider(i int) {
	if i < 0 || i >= NumSliders {
		return
	}
	s.mu.Lock()
	s.selected = i
	s.mu.Unlock()
}

// Nudge moves the selected slider by dv, clamped to [0,1].
func (s *State) Nudge(dv float32) {
	s.mu.Lock()
	s.sliders[s.selected] = clamp01(s.sliders[s.selected] + dv)
	s.mu.Unlock()
}

// Selected returns the slider index the nudge keys act on.
func (s *State) Selected() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// TapBeat records a beat tap, feeding the interval since the previous tap
// into the smoothed beat length.
func (s *State) TapBeat() {
	now := time.Now()
	s.mu.Lock()
	s.beatDelta.Push(float32(now.Sub(s.lastBeat).Seconds()))
	s.lastBeat = now
	s.mu.Unlock()
}

// BeatPhase is the elapsed time since the last tap divided by the smoothed
// beat length. It keeps growing past 1 until the next tap; shaders
// typically take fract(beat).
func (s *State) BeatPhase(now time.Time) float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float32(now.Sub(s.lastBeat).Seconds()) / s.beatDelta.Get()
}

// BPM derives beats per minute from the smoothed beat length.
func (s *State) BPM() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return 60 / s.beatDelta.Get()
}

// Snapshot returns the slider values and the per-button seconds since last
// trigger, as consumed by the frame uniforms.
func (s *State) Snapshot(now time.Time) (sliders [NumSliders]float32, buttons [NumButtons]float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sliders = s.sliders
	for i, pressed := range s.buttons {
		buttons[i] = float32(now.Sub(pressed).Seconds())
	}
	return sliders, buttons
}

func clamp01(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
