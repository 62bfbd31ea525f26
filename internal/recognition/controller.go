// ============================================================================
// Dolmetscher - Voice Translation Terminal Client
// ============================================================================
//
// Package:     recognition
// Description: Continuous speech recognition with interim results
// Author:      Mike Stoffels
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package recognition

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/msto63/dolmetscher/pkg/core/logging"
)

// DefaultLocale is the recognition locale unless configured otherwise
const DefaultLocale = "en-US"

// Error codes reported by engines
const (
	CodeAudioCapture = "audio-capture"
	CodeNetwork      = "network"
	CodeNoSpeech     = "no-speech"
	CodeAborted      = "aborted"
)

var (
	// ErrCapabilityAbsent is returned when the host has no recognizer
	ErrCapabilityAbsent = errors.New("speech recognition not supported")

	// ErrAlreadyListening is returned by Start while a session runs
	ErrAlreadyListening = errors.New("already listening")
)

// NotificationKind distinguishes engine notifications
type NotificationKind int

const (
	KindResult NotificationKind = iota
	KindError
	KindEnd
)

// Notification is delivered by an engine. Session is stamped by the
// controller.
type Notification struct {
	Session  uint64
	Kind     NotificationKind
	Segments []Segment
	Code     string
}

// Engine is a host recognition capability. Start returns once the session
// is running; emit may be called from any goroutine until the engine has
// emitted KindEnd. Stop asks the engine to finish; it still delivers
// pending results and KindEnd afterwards.
type Engine interface {
	Name() string
	Start(ctx context.Context, locale string, emit func(Notification)) error
	Stop() error
}

// EventKind distinguishes controller events
type EventKind int

const (
	EventInterim EventKind = iota
	EventFinal
	EventError
	EventEnd
)

// Event is what the controller reports to its owner
type Event struct {
	Kind EventKind
	// Text is the display text for EventInterim and the final text for EventFinal
	Text string
	// Code is set for EventError
	Code string
}

// ControllerConfig holds controller settings
type ControllerConfig struct {
	Locale string
}

// Controller runs recognition sessions and converts engine notifications
// into events. Handle must be called from a single goroutine.
type Controller struct {
	engine Engine
	cfg    ControllerConfig
	logger *logging.Logger
	state  *StateMachine

	mu            sync.Mutex
	session       uint64
	notifications chan Notification
	closed        chan struct{}
	closeOnce     sync.Once
}

// NewController creates a controller. A nil engine means the host cannot
// recognize speech.
func NewController(engine Engine, cfg ControllerConfig) *Controller {
	if cfg.Locale == "" {
		cfg.Locale = DefaultLocale
	}
	return &Controller{
		engine:        engine,
		cfg:           cfg,
		logger:        logging.New("recognition"),
		state:         NewStateMachine(),
		notifications: make(chan Notification, 64),
		closed:        make(chan struct{}),
	}
}

// WithLogger replaces the controller's logger
func (c *Controller) WithLogger(logger *logging.Logger) *Controller {
	c.logger = logger
	return c
}

// Available reports whether a recognizer exists
func (c *Controller) Available() bool {
	return c.engine != nil
}

// EngineName returns the engine name or "none"
func (c *Controller) EngineName() string {
	if c.engine == nil {
		return "none"
	}
	return c.engine.Name()
}

// State returns the current state
func (c *Controller) State() State {
	return c.state.Current()
}

// Listening reports whether a session is running
func (c *Controller) Listening() bool {
	return c.state.Current() == StateListening
}

// Notifications returns the channel all sessions deliver on
func (c *Controller) Notifications() <-chan Notification {
	return c.notifications
}

// Start begins a continuous session
func (c *Controller) Start(ctx context.Context) error {
	if c.engine == nil {
		return ErrCapabilityAbsent
	}
	if !c.state.Transition(StateListening) {
		return ErrAlreadyListening
	}

	c.mu.Lock()
	c.session++
	session := c.session
	c.mu.Unlock()

	emit := func(n Notification) {
		n.Session = session
		select {
		case c.notifications <- n:
		case <-c.closed:
		}
	}

	if err := c.engine.Start(ctx, c.cfg.Locale, emit); err != nil {
		c.state.Transition(StateIdle)
		return fmt.Errorf("failed to start %s recognizer: %w", c.engine.Name(), err)
	}

	c.logger.Info("Recognition started", "engine", c.engine.Name(), "locale", c.cfg.Locale, "session", session)
	return nil
}

// Stop requests termination. The state is Idle when Stop returns; late
// results and the end notification may still arrive.
func (c *Controller) Stop() error {
	if c.engine == nil {
		return ErrCapabilityAbsent
	}
	listened := c.state.StateDuration()
	if !c.state.Transition(StateIdle) {
		return nil
	}
	if err := c.engine.Stop(); err != nil {
		return fmt.Errorf("failed to stop recognizer: %w", err)
	}
	c.logger.Info("Recognition stopped", "session", c.currentSession(), "duration", listened)
	return nil
}

// Close stops any session and releases blocked emitters
func (c *Controller) Close() {
	_ = c.Stop()
	c.closeOnce.Do(func() { close(c.closed) })
}

func (c *Controller) currentSession() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Handle converts one notification into events. Results are always
// reported, including late ones; errors and ends of a superseded session
// leave the current state alone.
func (c *Controller) Handle(n Notification) []Event {
	current := n.Session == c.currentSession()

	switch n.Kind {
	case KindResult:
		t := Accumulate(n.Segments)
		events := []Event{{Kind: EventInterim, Text: t.Display()}}
		if t.HasFinal {
			events = append(events, Event{Kind: EventFinal, Text: t.Final})
		}
		return events

	case KindError:
		if !current {
			c.logger.Debug("Ignoring error from superseded session", "session", n.Session, "code", n.Code)
			return nil
		}
		listened := c.state.StateDuration()
		if c.state.Transition(StateIdle) {
			// The engine may still hold the microphone after reporting
			if err := c.engine.Stop(); err != nil {
				c.logger.Debug("Stop after error failed", "session", n.Session, "error", err)
			}
		}
		c.logger.Warn("Recognition error", "session", n.Session, "code", n.Code, "duration", listened)
		return []Event{{Kind: EventError, Code: n.Code}}

	case KindEnd:
		if !current {
			c.logger.Debug("Ignoring end from superseded session", "session", n.Session)
			return nil
		}
		listened := c.state.StateDuration()
		if c.state.Transition(StateIdle) {
			c.logger.Info("Recognition ended", "session", n.Session, "duration", listened)
		}
		return []Event{{Kind: EventEnd}}
	}
	return nil
}
