package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunningAverageFull(t *testing.T) {
	a := NewRunningAverage(4)
	for _, v := range []float32{1, 2, 3, 4} {
		a.Push(v)
	}
	assert.InDelta(t, 2.5, a.Get(), 1e-6)
}

func TestRunningAverageEvictsOldest(t *testing.T) {
	a := NewRunningAverage(4)
	for _, v := range []float32{100, 1, 2, 3, 4} {
		a.Push(v)
	}
	// the 100 has been pushed out of the window
	assert.InDelta(t, 2.5, a.Get(), 1e-6)
	assert.Equal(t, 5, a.Count())
}

func TestRunningAverageFill(t *testing.T) {
	a := NewRunningAverage(8)
	a.Fill(1.0)
	assert.InDelta(t, 1.0, a.Get(), 1e-6)

	a.Push(3)
	assert.InDelta(t, (7+3)/8.0, a.Get(), 1e-6)
}

func TestRunningAveragePartial(t *testing.T) {
	a := NewRunningAverage(4)
	a.Push(8)
	// unwritten slots still count as zero
	assert.InDelta(t, 2.0, a.Get(), 1e-6)
}
