package util

// RunningAverage keeps the most recent samples in a fixed-size ring and
// reports their mean. Pushing and reading are both O(1) against the
// capacity chosen at construction, which keeps it cheap enough to update
// once per stage per frame.
type RunningAverage struct {
	buf   []float32
	sum   float32
	index int
}

// NewRunningAverage creates an average over the last capacity samples.
// All slots start at zero; use Fill to seed a different baseline.
func NewRunningAverage(capacity int) *RunningAverage {
	if capacity < 1 {
		capacity = 1
	}
	return &RunningAverage{buf: make([]float32, capacity)}
}

// Push inserts a sample, evicting the oldest one.
func (a *RunningAverage) Push(v float32) {
	i := a.index % len(a.buf)
	a.sum += v - a.buf[i]
	a.buf[i] = v
	a.index++
}

// Get returns the mean over the full ring, including unwritten slots.
func (a *RunningAverage) Get() float32 {
	return a.sum / float32(len(a.buf))
}

// Fill overwrites every slot with v. The beat tracker seeds its ring with
// one-second deltas so the first tap doesn't divide by zero.
func (a *RunningAverage) Fill(v float32) {
	for i := range a.buf {
		a.buf[i] = v
	}
	a.sum = v * float32(len(a.buf))
}

// Count returns how many samples have ever been pushed.
func (a *RunningAverage) Count() int {
	return a.index
}

// Buffer exposes the underlying ring for plotting.
func (a *RunningAverage) Buffer() []float32 {
	return a.buf
}
