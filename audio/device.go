// Package audio captures microphone input and condenses it into the
// spectrum/waveform texture stages can consume under the reserved "mic"
// dependency name.
package audio

// Device produces a stream of audio sample chunks.
//
// portaudio needs its native library at runtime:
//
//	macos:   brew install portaudio
//	debian:  sudo apt-get install portaudio19-dev
//	windows: pacman -S mingw-w64-x86_64-portaudio
type Device interface {
	// Start begins capture and returns a receive-only channel of chunks.
	Start() (<-chan []float32, error)
	// Stop terminates the stream and closes the channel.
	Stop() error
	// SampleRate returns the device's sample rate.
	SampleRate() int
}

// NullDevice is the silent fallback used when no capture device can be
// opened; the analyzer then renders a flat spectrum instead of failing the
// whole show.
type NullDevice struct {
	rate int
}

func NewNullDevice(sampleRate int) *NullDevice {
	return &NullDevice{rate: sampleRate}
}

// Start returns a nil channel, which blocks forever on receive: silence.
func (d *NullDevice) Start() (<-chan []float32, error) {
	return nil, nil
}

func (d *NullDevice) Stop() error {
	return nil
}

func (d *NullDevice) SampleRate() int { return d.rate }
