package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"
)

// Microphone captures the default input device through portaudio and
// forwards chunks over a channel.
type Microphone struct {
	sampleRate int
	stream     *portaudio.Stream
	chunks     chan []float32
	streaming  bool
	log        *zap.SugaredLogger
}

func NewMicrophone(sampleRate int, log *zap.SugaredLogger) (*Microphone, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	return &Microphone{sampleRate: sampleRate, log: log}, nil
}

// callback runs on portaudio's thread; the buffer is reused, so the chunk
// is copied before handing it off. A full channel drops the chunk rather
// than stalling the audio thread.
func (m *Microphone) callback(in []float32) {
	chunk := make([]float32, len(in))
	copy(chunk, in)

	select {
	case m.chunks <- chunk:
	default:
		m.log.Debug("audio chunk dropped, consumer is behind")
	}
}

func (m *Microphone) Start() (<-chan []float32, error) {
	m.chunks = make(chan []float32, 16)

	host, err := portaudio.DefaultHostApi()
	if err != nil {
		close(m.chunks)
		return nil, err
	}

	params := portaudio.HighLatencyParameters(host.DefaultInputDevice, nil)
	params.Input.Channels = 1
	params.SampleRate = float64(m.sampleRate)

	stream, err := portaudio.OpenStream(params, m.callback)
	if err != nil {
		close(m.chunks)
		return nil, fmt.Errorf("failed to open audio stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		close(m.chunks)
		return nil, fmt.Errorf("failed to start audio stream: %w", err)
	}

	m.stream = stream
	m.streaming = true
	return m.chunks, nil
}

func (m *Microphone) Stop() error {
	if !m.streaming {
		return nil
	}
	if err := m.stream.Close(); err != nil {
		portaudio.Terminate()
		return err
	}
	m.streaming = false
	close(m.chunks)
	return portaudio.Terminate()
}

func (m *Microphone) SampleRate() int {
	return m.sampleRate
}
