package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeFrameShape(t *testing.T) {
	samples := make([]float32, fftInputSize)
	lastFFT := make([]float64, SpectrumWidth)

	// run a few frames so the temporal smoothing settles at the floor
	var data []float32
	for i := 0; i < 8; i++ {
		data = analyzeFrame(samples, lastFFT)
	}
	// one RG pair per texel
	require.Len(t, data, SpectrumWidth*2)

	// silence: spectrum pinned at the floor, waveform centered
	for i := 0; i < SpectrumWidth; i++ {
		assert.Equal(t, float32(0), data[i*2])
		assert.InDelta(t, 0.5, data[i*2+1], 1e-6)
	}
}

func TestAnalyzeFrameDetectsTone(t *testing.T) {
	// a pure tone lands in one FFT bin
	const bin = 32
	samples := make([]float32, fftInputSize)
	for i := range samples {
		samples[i] = float32(math.Sin(2 * math.Pi * bin * float64(i) / fftInputSize))
	}

	lastFFT := make([]float64, SpectrumWidth)
	// run a few frames so the temporal smoothing converges
	var data []float32
	for i := 0; i < 16; i++ {
		data = analyzeFrame(samples, lastFFT)
	}

	peak := data[bin*2]
	for i := 0; i < SpectrumWidth; i++ {
		if i < bin-2 || i > bin+2 {
			assert.LessOrEqual(t, data[i*2], peak)
		}
	}
	assert.Greater(t, peak, float32(0.5))
}

func TestScaleDecibels(t *testing.T) {
	assert.Equal(t, float32(0), scaleDecibels(-120))
	assert.Equal(t, float32(1), scaleDecibels(-10))
	assert.InDelta(t, 0.5, scaleDecibels((minDecibels+maxDecibels)/2), 1e-6)
}

func TestBlackmanWindowEnds(t *testing.T) {
	w := blackmanWindow(512)
	// Blackman tapers to ~0 at both ends and peaks at 1 in the middle
	assert.InDelta(t, 0, w[0], 1e-6)
	assert.InDelta(t, 0, w[len(w)-1], 1e-6)
	assert.InDelta(t, 1, w[len(w)/2], 1e-2)
}

func TestNullDeviceIsSilent(t *testing.T) {
	d := NewNullDevice(44100)
	ch, err := d.Start()
	require.NoError(t, err)
	assert.Nil(t, ch)
	assert.Equal(t, 44100, d.SampleRate())
	require.NoError(t, d.Stop())
}
