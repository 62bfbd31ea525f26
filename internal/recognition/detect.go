package recognition

import (
	"fmt"
	"time"
)

// LocalConfig tunes the microphone engine
type LocalConfig struct {
	Locale          string
	WhisperURL      string
	InputDevice     string
	SampleRate      int
	VADMode         int
	Silence         time.Duration
	MinSpeech       time.Duration
	InterimInterval time.Duration
	// NoSpeechTimeout ends a session in which nobody spoke
	NoSpeechTimeout time.Duration
}

func (c LocalConfig) withDefaults() LocalConfig {
	if c.Locale == "" {
		c.Locale = DefaultLocale
	}
	if c.SampleRate == 0 {
		c.SampleRate = 16000
	}
	if c.Silence == 0 {
		c.Silence = 1200 * time.Millisecond
	}
	if c.MinSpeech == 0 {
		c.MinSpeech = 300 * time.Millisecond
	}
	if c.InterimInterval == 0 {
		c.InterimInterval = 1500 * time.Millisecond
	}
	if c.NoSpeechTimeout == 0 {
		c.NoSpeechTimeout = 8 * time.Second
	}
	return c
}

// Options selects a recognition backend
type Options struct {
	// Backend is "local", "stream" or "none"
	Backend   string
	StreamURL string
	Local     LocalConfig
}

// New builds the engine for opts. "none" yields a nil engine and no error.
// Any error means the host capability is absent.
func New(opts Options) (Engine, error) {
	switch opts.Backend {
	case "none":
		return nil, nil
	case "", "local":
		e, err := NewLocalEngine(opts.Local)
		if err != nil {
			return nil, err
		}
		return e, nil
	case "stream":
		local := opts.Local.withDefaults()
		mic, err := NewMicrophone(local.InputDevice, local.SampleRate)
		if err != nil {
			return nil, err
		}
		return NewStreamEngine(opts.StreamURL, mic), nil
	default:
		return nil, fmt.Errorf("unknown recognition backend: %s", opts.Backend)
	}
}
