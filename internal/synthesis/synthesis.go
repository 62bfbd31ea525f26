// ============================================================================
// Dolmetscher - Voice Translation Terminal Client
// ============================================================================
//
// Package:     synthesis
// Description: Speech output with a fixed voice policy and an ordered queue
// Author:      Mike Stoffels
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package synthesis

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/msto63/dolmetscher/pkg/core/logging"
)

// Voice policy. These are product constants, not settings.
const (
	// Rate is slightly below natural speed for clarity
	Rate = 0.9
	// Pitch is neutral
	Pitch = 1.0
	// Volume is reduced
	Volume = 0.8
)

// ErrCapabilityAbsent is returned when no synthesis engine exists
var ErrCapabilityAbsent = errors.New("speech synthesis not available")

// Utterance is one unit of speech handed to an engine
type Utterance struct {
	Text   string
	Locale string
	Rate   float64
	Pitch  float64
	Volume float64
}

// Engine is a host speech synthesizer. Speak blocks until the utterance
// has been spoken.
type Engine interface {
	Name() string
	Speak(ctx context.Context, u Utterance) error
}

// Controller speaks translations. Utterances are spoken one at a time in
// the order Speak was called; nothing already queued is cancelled.
type Controller struct {
	engine Engine
	logger *logging.Logger

	mu    sync.Mutex
	queue []Utterance
	wake  chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewController creates a controller. A nil engine makes every Speak a no-op.
func NewController(engine Engine) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		engine: engine,
		logger: logging.New("synthesis"),
		wake:   make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	if engine == nil {
		close(c.done)
		return c
	}

	go c.run()
	return c
}

// WithLogger replaces the controller's logger
func (c *Controller) WithLogger(logger *logging.Logger) *Controller {
	c.logger = logger
	return c
}

// Available reports whether an engine was found at startup
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

// Speak enqueues text for the language code and reports whether an
// utterance was queued. Blank text and a missing engine are no-ops.
func (c *Controller) Speak(text, langCode string) bool {
	if c.engine == nil || strings.TrimSpace(text) == "" {
		return false
	}

	u := Utterance{
		Text:   text,
		Locale: ResolveLocale(langCode),
		Rate:   Rate,
		Pitch:  Pitch,
		Volume: Volume,
	}

	c.mu.Lock()
	c.queue = append(c.queue, u)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}

	c.logger.Debug("Utterance queued", "locale", u.Locale, "chars", len(text))
	return true
}

// Pending returns the number of utterances not yet started
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Close stops the worker. Queued utterances are dropped and the one
// currently speaking is interrupted.
func (c *Controller) Close() {
	c.cancel()
	<-c.done
}

func (c *Controller) run() {
	defer close(c.done)

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.wake:
		}

		for {
			u, ok := c.next()
			if !ok {
				break
			}
			if err := c.engine.Speak(c.ctx, u); err != nil {
				if c.ctx.Err() != nil {
					return
				}
				c.logger.Warn("Speech synthesis failed", "engine", c.engine.Name(), "locale", u.Locale, "error", err)
			}
		}
	}
}

func (c *Controller) next() (Utterance, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return Utterance{}, false
	}
	u := c.queue[0]
	c.queue = c.queue[1:]
	return u, true
}
