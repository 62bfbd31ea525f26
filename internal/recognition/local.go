//go:build voice

package recognition

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/msto63/dolmetscher/internal/audio"
	"github.com/msto63/dolmetscher/internal/vad"
	"github.com/msto63/dolmetscher/pkg/core/logging"
)

// LocalEngine listens on the microphone, cuts utterances with VAD and
// transcribes them through a Whisper server. While an utterance is in
// progress it is re-transcribed periodically to produce interim results.
type LocalEngine struct {
	cfg         LocalConfig
	capture     *audio.Capture
	transcriber Transcriber
	logger      *logging.Logger

	mu   sync.Mutex
	stop chan struct{}
}

// NewLocalEngine opens the microphone and prepares the transcriber
func NewLocalEngine(cfg LocalConfig) (*LocalEngine, error) {
	cfg = cfg.withDefaults()

	capture, err := audio.NewCapture(audio.CaptureConfig{
		SampleRate: float64(cfg.SampleRate),
		BufferSize: cfg.SampleRate * 30 / 1000,
		DeviceName: cfg.InputDevice,
	})
	if err != nil {
		return nil, err
	}

	return &LocalEngine{
		cfg:         cfg,
		capture:     capture,
		transcriber: NewWhisperHTTP(cfg.WhisperURL, cfg.Locale, cfg.SampleRate),
		logger:      logging.New("recognition.local"),
	}, nil
}

// NewMicrophone returns the default capture as an AudioSource
func NewMicrophone(device string, sampleRate int) (AudioSource, error) {
	return audio.NewCapture(audio.CaptureConfig{
		SampleRate: float64(sampleRate),
		BufferSize: sampleRate * 30 / 1000,
		DeviceName: device,
	})
}

// Name returns the engine name
func (e *LocalEngine) Name() string {
	return "local"
}

// Start begins capturing
func (e *LocalEngine) Start(ctx context.Context, locale string, emit func(Notification)) error {
	detector, err := e.newDetector()
	if err != nil {
		return err
	}
	if err := e.capture.Start(ctx); err != nil {
		detector.Close()
		return err
	}

	stop := make(chan struct{})
	e.mu.Lock()
	e.stop = stop
	e.mu.Unlock()

	s := &localSession{
		engine:   e,
		detector: detector,
		emit:     emit,
		stop:     stop,
		tracker:  vad.NewTracker(e.vadConfig()),
		utter:    audio.NewBuffer(e.cfg.SampleRate),
		preroll:  audio.NewRingBuffer(e.cfg.SampleRate * 300 / 1000),
	}
	go s.run(ctx)
	return nil
}

// Stop ends the session after the current utterance is transcribed
func (e *LocalEngine) Stop() error {
	e.mu.Lock()
	stop := e.stop
	e.stop = nil
	e.mu.Unlock()

	if stop != nil {
		close(stop)
	}
	return nil
}

func (e *LocalEngine) vadConfig() vad.Config {
	return vad.Config{
		SampleRate:        e.cfg.SampleRate,
		Mode:              e.cfg.VADMode,
		SilenceDuration:   e.cfg.Silence,
		MinSpeechDuration: e.cfg.MinSpeech,
	}
}

func (e *LocalEngine) newDetector() (vad.Detector, error) {
	if !vad.ValidRate(e.cfg.SampleRate) {
		e.logger.Warn("Sample rate unsupported by WebRTC VAD, using energy detection", "rate", e.cfg.SampleRate)
		return vad.NewEnergy(), nil
	}
	d, err := vad.NewWebRTC(e.vadConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create VAD: %w", err)
	}
	return d, nil
}

type localSession struct {
	engine   *LocalEngine
	detector vad.Detector
	emit     func(Notification)
	stop     chan struct{}

	tracker *vad.Tracker
	utter   *audio.Buffer
	preroll *audio.RingBuffer

	// utterance advances on every final so late interim results of a
	// finished utterance are dropped
	utterance   utteranceGate
	interimBusy atomic.Bool
	lastInterim time.Time
	heardSpeech bool
}

func (s *localSession) run(ctx context.Context) {
	e := s.engine
	defer s.detector.Close()
	defer e.capture.Stop()

	frameDur := 30 * time.Millisecond
	noSpeech := time.NewTimer(e.cfg.NoSpeechTimeout)
	defer noSpeech.Stop()

	for {
		select {
		case <-s.stop:
			s.finish(ctx)
			s.emit(Notification{Kind: KindEnd})
			return

		case <-ctx.Done():
			s.emit(Notification{Kind: KindError, Code: CodeAborted})
			s.emit(Notification{Kind: KindEnd})
			return

		case err := <-e.capture.Errors():
			e.logger.Error("Audio capture failed", "error", err)
			s.emit(Notification{Kind: KindError, Code: CodeAudioCapture})
			s.emit(Notification{Kind: KindEnd})
			return

		case <-noSpeech.C:
			if !s.heardSpeech {
				s.emit(Notification{Kind: KindError, Code: CodeNoSpeech})
				s.emit(Notification{Kind: KindEnd})
				return
			}

		case frame := <-e.capture.Output():
			if len(frame) > 0 {
				frameDur = time.Duration(len(frame)) * time.Second / time.Duration(e.cfg.SampleRate)
			}
			if err := s.process(ctx, frame, frameDur); err != nil {
				e.logger.Warn("Transcription failed", "error", err)
				s.emit(Notification{Kind: KindError, Code: CodeNetwork})
				s.emit(Notification{Kind: KindEnd})
				return
			}
		}
	}
}

func (s *localSession) process(ctx context.Context, frame []float32, frameDur time.Duration) error {
	speech, err := s.detector.Process(frame)
	if err != nil {
		s.engine.logger.Debug("VAD error", "error", err)
		speech = false
	}
	s.tracker.Update(speech, frameDur)

	if !s.tracker.Started() {
		s.preroll.Write(frame)
		return nil
	}

	if s.utter.Len() == 0 {
		s.heardSpeech = true
		s.utter.Append(s.preroll.Drain())
		s.lastInterim = time.Now()
	}
	s.utter.Append(frame)

	switch {
	case s.tracker.Abandoned():
		s.reset()
	case s.tracker.ShouldEnd():
		return s.finalize(ctx)
	case time.Since(s.lastInterim) >= s.engine.cfg.InterimInterval && s.utter.Duration() >= 500*time.Millisecond:
		s.lastInterim = time.Now()
		s.interim(ctx)
	}
	return nil
}

// interim transcribes the utterance so far without blocking capture
func (s *localSession) interim(ctx context.Context) {
	if !s.interimBusy.CompareAndSwap(false, true) {
		return
	}
	samples := s.utter.Snapshot()
	id := s.utterance.Current()

	go func() {
		defer s.interimBusy.Store(false)
		text, err := s.engine.transcriber.Transcribe(ctx, samples)
		if err != nil {
			s.engine.logger.Debug("Interim transcription failed", "error", err)
			return
		}
		if text == "" {
			return
		}
		s.utterance.Emit(id, func() {
			s.emit(Notification{Kind: KindResult, Segments: []Segment{{Text: text}}})
		})
	}()
}

// finalize transcribes the complete utterance and emits it as final
func (s *localSession) finalize(ctx context.Context) error {
	samples := s.utter.Snapshot()
	s.reset()

	text, err := s.engine.transcriber.Transcribe(ctx, samples)
	if err != nil {
		return err
	}
	if text != "" {
		s.emit(Notification{Kind: KindResult, Segments: []Segment{{Text: text, Final: true}}})
	}
	return nil
}

// finish flushes a valid utterance in progress when the user stops
func (s *localSession) finish(ctx context.Context) {
	if s.tracker.Started() && s.tracker.SpeechDuration() >= s.engine.cfg.MinSpeech {
		if err := s.finalize(ctx); err != nil {
			s.engine.logger.Warn("Final transcription failed", "error", err)
		}
	}
}

func (s *localSession) reset() {
	s.utterance.Advance()
	s.tracker.Reset()
	s.utter.Clear()
}
