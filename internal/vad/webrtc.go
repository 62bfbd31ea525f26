//go:build voice

package vad

import (
	"fmt"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"

	"github.com/msto63/dolmetscher/internal/audio"
)

var validRates = []int{8000, 16000, 32000, 48000}

// WebRTC implements voice activity detection using WebRTC's VAD
type WebRTC struct {
	vad        *webrtcvad.VAD
	sampleRate int
}

// NewWebRTC creates a WebRTC detector
func NewWebRTC(cfg Config) (*WebRTC, error) {
	if !ValidRate(cfg.SampleRate) {
		return nil, fmt.Errorf("invalid sample rate %d, must be one of %v", cfg.SampleRate, validRates)
	}

	v, err := webrtcvad.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create WebRTC VAD: %w", err)
	}

	mode := min(max(cfg.Mode, 0), 3)
	if err := v.SetMode(mode); err != nil {
		return nil, fmt.Errorf("failed to set VAD mode: %w", err)
	}

	return &WebRTC{vad: v, sampleRate: cfg.SampleRate}, nil
}

// Process reports whether any 10ms frame in samples contains speech.
// Short input is zero padded to one frame.
func (w *WebRTC) Process(samples []float32) (bool, error) {
	pcm := audio.Float32ToInt16(samples)
	frameSize := w.sampleRate / 100

	if len(pcm) < frameSize {
		padded := make([]int16, frameSize)
		copy(padded, pcm)
		pcm = padded
	}

	for i := 0; i+frameSize <= len(pcm); i += frameSize {
		active, err := w.vad.Process(w.sampleRate, audio.Int16ToBytes(pcm[i:i+frameSize]))
		if err != nil {
			return false, fmt.Errorf("VAD processing failed: %w", err)
		}
		if active {
			return true, nil
		}
	}
	return false, nil
}

// Close releases resources
func (w *WebRTC) Close() error {
	return nil
}
