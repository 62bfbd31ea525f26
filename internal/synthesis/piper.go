//go:build voice

package synthesis

import (
	"context"
	"fmt"
	"os"

	"github.com/msto63/dolmetscher/internal/audio"
)

// Piper synthesizes with a local Piper binary and plays the raw PCM
// through PortAudio
type Piper struct {
	binary    string
	voicesDir string
	run       runner
	playback  *audio.Playback
}

// NewPiper checks the binary and voices directory
func NewPiper(binary, voicesDir string) (*Piper, error) {
	if binary == "" {
		binary = lookPath("piper")
	}
	if binary == "" {
		return nil, fmt.Errorf("piper binary not found")
	}
	if _, err := os.Stat(binary); err != nil {
		return nil, fmt.Errorf("piper binary not found: %s", binary)
	}
	if voicesDir == "" {
		return nil, fmt.Errorf("piper voices directory is required")
	}
	if _, err := os.Stat(voicesDir); err != nil {
		return nil, fmt.Errorf("piper voices not found: %s", voicesDir)
	}

	return &Piper{
		binary:    binary,
		voicesDir: voicesDir,
		run:       execRunner,
		playback:  audio.NewPlayback(),
	}, nil
}

// Name returns the engine name
func (p *Piper) Name() string {
	return "piper"
}

// Speak synthesizes the utterance and plays it
func (p *Piper) Speak(ctx context.Context, u Utterance) error {
	model, err := findPiperModel(p.voicesDir, u.Locale)
	if err != nil {
		return err
	}

	pcm, err := p.run(ctx, p.binary, piperArgs(model, u), u.Text)
	if err != nil {
		return err
	}

	audio.ScalePCM16(pcm, u.Volume)
	return p.playback.PlayPCM16(ctx, pcm, model.SampleRate)
}
