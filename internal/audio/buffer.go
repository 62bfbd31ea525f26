// ============================================================================
// Dolmetscher - Voice Translation Terminal Client
// ============================================================================
//
// Package:     audio
// Description: Sample buffers for utterance collection and pre-roll
// Author:      Mike Stoffels
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package audio

import (
	"sync"
	"time"
)

// Buffer collects the samples of one utterance
type Buffer struct {
	mu         sync.RWMutex
	samples    []float32
	sampleRate int
}

// NewBuffer creates a buffer pre-sized for ten seconds of audio
func NewBuffer(sampleRate int) *Buffer {
	return &Buffer{
		samples:    make([]float32, 0, sampleRate*10),
		sampleRate: sampleRate,
	}
}

// Append adds samples to the buffer
func (b *Buffer) Append(samples []float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = append(b.samples, samples...)
}

// Snapshot returns a copy of all samples
func (b *Buffer) Snapshot() []float32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]float32, len(b.samples))
	copy(out, b.samples)
	return out
}

// Len returns the number of samples
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.samples)
}

// Duration returns the buffered duration
func (b *Buffer) Duration() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.sampleRate == 0 {
		return 0
	}
	return time.Duration(len(b.samples)) * time.Second / time.Duration(b.sampleRate)
}

// Clear empties the buffer, keeping its capacity
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = b.samples[:0]
}

// RingBuffer keeps the most recent samples, overwriting the oldest.
// The recognizer uses it as pre-roll so the first syllable before the
// VAD triggers is not lost.
type RingBuffer struct {
	mu       sync.Mutex
	data     []float32
	writePos int
	count    int
}

// NewRingBuffer creates a ring buffer with the given capacity
func NewRingBuffer(capacity int) *RingBuffer {
	return &RingBuffer{data: make([]float32, capacity)}
}

// Write appends samples, overwriting the oldest when full
func (rb *RingBuffer) Write(samples []float32) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	size := len(rb.data)
	if size == 0 {
		return
	}
	for _, s := range samples {
		rb.data[rb.writePos] = s
		rb.writePos = (rb.writePos + 1) % size
		if rb.count < size {
			rb.count++
		}
	}
}

// Drain returns all samples oldest first and empties the buffer
func (rb *RingBuffer) Drain() []float32 {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	size := len(rb.data)
	out := make([]float32, rb.count)
	start := (rb.writePos - rb.count + size) % max(size, 1)
	for i := 0; i < rb.count; i++ {
		out[i] = rb.data[(start+i)%size]
	}
	rb.count = 0
	rb.writePos = 0
	return out
}

// Len returns the number of buffered samples
func (rb *RingBuffer) Len() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.count
}
