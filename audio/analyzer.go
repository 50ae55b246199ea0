package audio

import (
	"math"
	"sync"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/mjibson/go-dsp/fft"
	"go.uber.org/zap"

	"github.com/vjkit/shaderdeck/util"
)

const (
	// SpectrumWidth is the width of the mic texture in texels. Each texel
	// holds one spectrum bin in R and one waveform sample in G.
	SpectrumWidth = 512

	fftInputSize = 2048
	historySize  = fftInputSize * 4

	// dB window mapped onto [0,1]
	minDecibels = -100.0
	maxDecibels = -30.0

	smoothingFactor = 0.8
)

// Analyzer consumes a capture device and maintains a SpectrumWidth x 1
// RG32F texture: R is the smoothed, dB-scaled spectrum, G the most recent
// waveform remapped to [0,1]. Update must run on the GL thread once per
// frame; capture itself runs on its own goroutine.
type Analyzer struct {
	device    Device
	textureID uint32

	mu      sync.Mutex
	history [historySize]float32
	pos     int

	lastFFT []float64
	log     *zap.SugaredLogger
}

// NewAnalyzer allocates the mic texture and starts consuming the device.
// Requires a current GL context.
func NewAnalyzer(device Device, log *zap.SugaredLogger) (*Analyzer, error) {
	a := &Analyzer{
		device:  device,
		lastFFT: make([]float64, SpectrumWidth),
		log:     log,
	}

	gl.GenTextures(1, &a.textureID)
	gl.BindTexture(gl.TEXTURE_2D, a.textureID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RG32F, SpectrumWidth, 1, 0, gl.RG, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	chunks, err := device.Start()
	if err != nil {
		gl.DeleteTextures(1, &a.textureID)
		return nil, err
	}
	go a.listen(chunks)

	return a, nil
}

func (a *Analyzer) listen(chunks <-chan []float32) {
	for chunk := range chunks {
		a.mu.Lock()
		for _, s := range chunk {
			a.history[a.pos] = s
			a.pos = (a.pos + 1) % historySize
		}
		a.mu.Unlock()
	}
	a.log.Debug("audio chunk channel closed")
}

func (a *Analyzer) recentSamples(n int) []float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]float32, n)
	for i := range out {
		out[i] = a.history[(a.pos-n+i+historySize)%historySize]
	}
	return out
}

// Update recomputes the spectrum from the newest samples and uploads the
// texture. GL thread only.
func (a *Analyzer) Update() {
	data := analyzeFrame(a.recentSamples(fftInputSize), a.lastFFT)
	gl.BindTexture(gl.TEXTURE_2D, a.textureID)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, SpectrumWidth, 1, gl.RG, gl.FLOAT, gl.Ptr(data))
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// TextureID returns the mic texture handle for registry registration.
func (a *Analyzer) TextureID() uint32 {
	return a.textureID
}

// Close stops the capture device and releases the texture.
func (a *Analyzer) Close() error {
	err := a.device.Stop()
	gl.DeleteTextures(1, &a.textureID)
	return err
}

// analyzeFrame turns the newest fftInputSize samples into interlaced
// (spectrum, waveform) texel pairs. lastFFT carries the smoothed dB values
// between frames and is updated in place.
func analyzeFrame(samples []float32, lastFFT []float64) []float32 {
	window := blackmanWindow(len(samples))
	windowed := make([]float64, len(samples))
	for i, s := range samples {
		windowed[i] = float64(s) * window[i]
	}
	bins := fft.FFTReal(windowed)

	spectrum := make([]float32, SpectrumWidth)
	for i := range spectrum {
		re := real(bins[i])
		im := imag(bins[i])
		magnitude := math.Sqrt(re*re+im*im) * (2.0 / float64(len(samples)))
		db := 20 * math.Log10(magnitude+1e-9)

		lastFFT[i] = smoothingFactor*lastFFT[i] + (1-smoothingFactor)*db
		spectrum[i] = scaleDecibels(lastFFT[i])
	}

	waveform := make([]float32, SpectrumWidth)
	recent := samples[len(samples)-SpectrumWidth:]
	for i, s := range recent {
		waveform[i] = (s + 1) * 0.5
	}

	return util.Interlace(spectrum, waveform)
}

func scaleDecibels(db float64) float32 {
	switch {
	case db < minDecibels:
		return 0
	case db > maxDecibels:
		return 1
	}
	return float32((db - minDecibels) / (maxDecibels - minDecibels))
}

// blackmanWindow matches the window the Web Audio analyser applies before
// its FFT, so shader-side spectra look familiar.
func blackmanWindow(size int) []float64 {
	const a0, a1, a2 = 0.42, 0.5, 0.08
	window := make([]float64, size)
	inv := 1.0 / float64(size-1)
	for i := range window {
		t := float64(i) * inv
		window[i] = a0 - a1*math.Cos(2*math.Pi*t) + a2*math.Cos(4*math.Pi*t)
	}
	return window
}
