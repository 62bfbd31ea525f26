//go:build voice

package audio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const playbackFrames = 1024

// Playback writes PCM audio to the default output device. Calls are
// serialized so overlapping utterances never mix.
type Playback struct {
	mu sync.Mutex
}

// NewPlayback creates a playback instance
func NewPlayback() *Playback {
	return &Playback{}
}

// PlayPCM16 plays little-endian 16-bit mono PCM at sampleRate. Playback
// stops early when ctx is cancelled.
func (p *Playback) PlayPCM16(ctx context.Context, data []byte, sampleRate int) error {
	ints := BytesToInt16(data)
	samples := make([]float32, len(ints))
	for i, s := range ints {
		samples[i] = float32(s) / 32768.0
	}
	return p.play(ctx, samples, float64(sampleRate))
}

// PlayWAV plays an in-memory WAV file
func (p *Playback) PlayWAV(ctx context.Context, data []byte) error {
	sampleRate, pcm, err := ParseWAV(data)
	if err != nil {
		return fmt.Errorf("failed to parse WAV: %w", err)
	}
	return p.PlayPCM16(ctx, pcm, sampleRate)
}

func (p *Playback) play(ctx context.Context, samples []float32, sampleRate float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	defer portaudio.Terminate()

	buffer := make([]float32, playbackFrames)
	stream, err := portaudio.OpenDefaultStream(0, 1, sampleRate, playbackFrames, &buffer)
	if err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start output stream: %w", err)
	}
	defer stream.Stop()

	for pos := 0; pos < len(samples); pos += playbackFrames {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n := copy(buffer, samples[pos:])
		for i := n; i < playbackFrames; i++ {
			buffer[i] = 0
		}
		if err := stream.Write(); err != nil {
			return fmt.Errorf("failed to write to stream: %w", err)
		}
	}
	return nil
}
