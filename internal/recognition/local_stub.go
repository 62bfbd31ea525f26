//go:build !voice

package recognition

import (
	"errors"
)

var errNoAudio = errors.New("microphone capture requires a build with -tags voice")

// NewLocalEngine fails without PortAudio support
func NewLocalEngine(cfg LocalConfig) (Engine, error) {
	return nil, errNoAudio
}

// NewMicrophone fails without PortAudio support
func NewMicrophone(device string, sampleRate int) (AudioSource, error) {
	return nil, errNoAudio
}
