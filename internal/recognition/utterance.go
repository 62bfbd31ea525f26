package recognition

import "sync"

// utteranceGate numbers utterances. An interim result emitted through
// Emit never lands after the utterance it belongs to has been advanced
// past, so it cannot overwrite the final text.
type utteranceGate struct {
	mu sync.Mutex
	id uint64
}

// Current returns the id of the utterance in progress
func (g *utteranceGate) Current() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.id
}

// Advance closes the current utterance. It waits for an Emit in flight.
func (g *utteranceGate) Advance() {
	g.mu.Lock()
	g.id++
	g.mu.Unlock()
}

// Emit calls fn if id is still current and reports whether it did
func (g *utteranceGate) Emit(id uint64, fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.id != id {
		return false
	}
	fn()
	return true
}
