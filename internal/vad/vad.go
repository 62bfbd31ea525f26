// ============================================================================
// Dolmetscher - Voice Translation Terminal Client
// ============================================================================
//
// Package:     vad
// Description: Voice activity detection and utterance endpointing
// Author:      Mike Stoffels
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package vad

import (
	"math"
	"time"
)

// Detector classifies a frame of audio as speech or not
type Detector interface {
	Process(samples []float32) (bool, error)
	Close() error
}

// Config holds VAD configuration
type Config struct {
	// SampleRate must be 8000, 16000, 32000 or 48000 for WebRTC
	SampleRate int

	// Mode is the WebRTC aggressiveness, 0 (least) to 3 (most)
	Mode int

	// SilenceDuration is how long silence must last to end an utterance
	SilenceDuration time.Duration

	// MinSpeechDuration is the shortest speech that counts as an utterance
	MinSpeechDuration time.Duration
}

// DefaultConfig returns default VAD configuration
func DefaultConfig() Config {
	return Config{
		SampleRate:        16000,
		Mode:              2,
		SilenceDuration:   1200 * time.Millisecond,
		MinSpeechDuration: 300 * time.Millisecond,
	}
}

// Tracker turns per-frame speech decisions into utterance boundaries.
// Time is measured in audio, not wall clock, so a stalled consumer does
// not end an utterance early.
type Tracker struct {
	config  Config
	started bool
	speech  time.Duration
	silence time.Duration
}

// NewTracker creates a tracker
func NewTracker(cfg Config) *Tracker {
	return &Tracker{config: cfg}
}

// Update records one frame of the given length
func (t *Tracker) Update(isSpeech bool, frame time.Duration) {
	if isSpeech {
		t.started = true
		t.speech += t.silence + frame
		t.silence = 0
		return
	}
	if t.started {
		t.silence += frame
	}
}

// Started reports whether any speech was seen since the last Reset
func (t *Tracker) Started() bool {
	return t.started
}

// ShouldEnd reports whether the utterance is complete: enough speech
// followed by enough silence
func (t *Tracker) ShouldEnd() bool {
	return t.started &&
		t.silence >= t.config.SilenceDuration &&
		t.speech >= t.config.MinSpeechDuration
}

// Abandoned reports a blip too short to be speech followed by silence
func (t *Tracker) Abandoned() bool {
	return t.started &&
		t.silence >= t.config.SilenceDuration &&
		t.speech < t.config.MinSpeechDuration
}

// SpeechDuration returns the speech span including short pauses
func (t *Tracker) SpeechDuration() time.Duration {
	return t.speech
}

// Reset clears the tracker for the next utterance
func (t *Tracker) Reset() {
	t.started = false
	t.speech = 0
	t.silence = 0
}

// Energy is a level-threshold detector used when WebRTC VAD cannot run
// at the capture rate
type Energy struct {
	// Threshold is the RMS level above which a frame counts as speech
	Threshold float64
}

// NewEnergy creates an energy detector with a threshold suited to a
// close microphone
func NewEnergy() *Energy {
	return &Energy{Threshold: 0.02}
}

// Process reports whether the frame's RMS exceeds the threshold
func (e *Energy) Process(samples []float32) (bool, error) {
	return RMS(samples) > e.Threshold, nil
}

// Close is a no-op
func (e *Energy) Close() error {
	return nil
}

// RMS returns the root mean square level of samples
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}
