//go:build !voice

package synthesis

import (
	"context"
	"fmt"
)

// Piper is unavailable without the voice build tag
type Piper struct{}

// NewPiper always fails; Piper playback needs PortAudio
func NewPiper(binary, voicesDir string) (*Piper, error) {
	return nil, fmt.Errorf("piper requires a build with -tags voice")
}

// Name returns the engine name
func (p *Piper) Name() string {
	return "piper"
}

// Speak is never reached since NewPiper fails
func (p *Piper) Speak(ctx context.Context, u Utterance) error {
	return ErrCapabilityAbsent
}
