package synthesis

import (
	"context"
	"fmt"
	"runtime"
)

// Options selects a synthesis backend
type Options struct {
	// Backend is "auto", "espeak", "say", "piper" or "none"
	Backend     string
	PiperBinary string
	PiperVoices string
}

// Detect returns the engine for opts. "none" yields a nil engine and no
// error. "auto" tries the platform voice, then espeak, then piper, and
// yields a nil engine when nothing is installed.
func Detect(ctx context.Context, opts Options) (Engine, error) {
	switch opts.Backend {
	case "none":
		return nil, nil
	case "say":
		s, err := NewSay(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "espeak":
		e, err := NewESpeak(ctx)
		if err != nil {
			return nil, err
		}
		return e, nil
	case "piper":
		p, err := NewPiper(opts.PiperBinary, opts.PiperVoices)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "", "auto":
		return detectAuto(ctx, opts), nil
	default:
		return nil, fmt.Errorf("unknown synthesis backend: %s", opts.Backend)
	}
}

func detectAuto(ctx context.Context, opts Options) Engine {
	if runtime.GOOS == "darwin" {
		if s, err := NewSay(ctx); err == nil {
			return s
		}
	}
	if e, err := NewESpeak(ctx); err == nil {
		return e
	}
	if opts.PiperVoices != "" {
		if p, err := NewPiper(opts.PiperBinary, opts.PiperVoices); err == nil {
			return p
		}
	}
	return nil
}
