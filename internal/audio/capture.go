//go:build voice

// ============================================================================
// Dolmetscher - Voice Translation Terminal Client
// ============================================================================
//
// Package:     audio
// Description: Microphone capture using PortAudio
// Author:      Mike Stoffels
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package audio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const (
	// DefaultSampleRate matches what the recognizers expect
	DefaultSampleRate = 16000

	// DefaultFramesPerBuffer is 30ms at 16kHz, a whole number of VAD frames
	DefaultFramesPerBuffer = 480

	// maxReadFailures ends capture after this many consecutive read errors
	maxReadFailures = 20
)

// CaptureConfig holds configuration for audio capture
type CaptureConfig struct {
	SampleRate float64
	BufferSize int
	// DeviceName selects the input device; empty or "default" uses the system default
	DeviceName string
}

// DefaultCaptureConfig returns default capture configuration
func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		SampleRate: DefaultSampleRate,
		BufferSize: DefaultFramesPerBuffer,
	}
}

// Capture reads mono float32 frames from an input device
type Capture struct {
	mu      sync.RWMutex
	cfg     CaptureConfig
	stream  *portaudio.Stream
	running bool
	output  chan []float32
	errs    chan error
}

// NewCapture initializes PortAudio and prepares a capture
func NewCapture(cfg CaptureConfig) (*Capture, error) {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = DefaultFramesPerBuffer
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return &Capture{
		cfg:    cfg,
		output: make(chan []float32, 100),
		errs:   make(chan error, 1),
	}, nil
}

// Start opens the input stream and begins delivering frames on Output
func (c *Capture) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("capture already running")
	}

	buffer := make([]float32, c.cfg.BufferSize)
	stream, err := c.openStream(buffer)
	if err != nil {
		return fmt.Errorf("failed to open audio stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start audio stream: %w", err)
	}

	c.stream = stream
	c.running = true
	go c.captureLoop(ctx, stream, buffer)
	return nil
}

func (c *Capture) openStream(buffer []float32) (*portaudio.Stream, error) {
	if c.cfg.DeviceName == "" || c.cfg.DeviceName == "default" {
		return portaudio.OpenDefaultStream(1, 0, c.cfg.SampleRate, c.cfg.BufferSize, buffer)
	}

	device, err := findInputDevice(c.cfg.DeviceName)
	if err != nil {
		// Unknown device names fall back to the default input
		return portaudio.OpenDefaultStream(1, 0, c.cfg.SampleRate, c.cfg.BufferSize, buffer)
	}
	return portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      c.cfg.SampleRate,
		FramesPerBuffer: c.cfg.BufferSize,
	}, buffer)
}

func findInputDevice(name string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	for _, dev := range devices {
		if dev.Name == name && dev.MaxInputChannels > 0 {
			return dev, nil
		}
	}
	return nil, fmt.Errorf("device not found: %s", name)
}

func (c *Capture) captureLoop(ctx context.Context, stream *portaudio.Stream, buffer []float32) {
	failures := 0
	for {
		if ctx.Err() != nil || !c.IsRunning() {
			return
		}

		if err := stream.Read(); err != nil {
			if !c.IsRunning() {
				return
			}
			failures++
			if failures >= maxReadFailures {
				select {
				case c.errs <- fmt.Errorf("audio input failed: %w", err):
				default:
				}
				return
			}
			continue
		}
		failures = 0

		samples := make([]float32, len(buffer))
		copy(samples, buffer)

		select {
		case c.output <- samples:
		default:
			// consumer is behind, drop the frame
		}
	}
}

// Stop stops the input stream. Output stays open for a later Start.
func (c *Capture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}
	c.running = false

	if c.stream != nil {
		_ = c.stream.Stop()
		if err := c.stream.Close(); err != nil {
			return fmt.Errorf("failed to close audio stream: %w", err)
		}
		c.stream = nil
	}
	return nil
}

// Close stops capture and releases PortAudio
func (c *Capture) Close() error {
	if err := c.Stop(); err != nil {
		return err
	}
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}

// Output returns the channel that receives audio frames
func (c *Capture) Output() <-chan []float32 {
	return c.output
}

// Errors delivers a fatal input error, at most once per Start
func (c *Capture) Errors() <-chan error {
	return c.errs
}

// IsRunning returns whether capture is currently running
func (c *Capture) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

// SampleRate returns the configured sample rate
func (c *Capture) SampleRate() int {
	return int(c.cfg.SampleRate)
}

// DeviceInfo holds information about an audio device
type DeviceInfo struct {
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
	IsDefaultInput    bool
	IsDefaultOutput   bool
}

// ListDevices returns all audio devices known to PortAudio
func ListDevices() ([]DeviceInfo, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to get devices: %w", err)
	}

	var defaultIn, defaultOut string
	if d, err := portaudio.DefaultInputDevice(); err == nil && d != nil {
		defaultIn = d.Name
	}
	if d, err := portaudio.DefaultOutputDevice(); err == nil && d != nil {
		defaultOut = d.Name
	}

	out := make([]DeviceInfo, 0, len(devices))
	for _, dev := range devices {
		out = append(out, DeviceInfo{
			Name:              dev.Name,
			MaxInputChannels:  dev.MaxInputChannels,
			MaxOutputChannels: dev.MaxOutputChannels,
			DefaultSampleRate: dev.DefaultSampleRate,
			IsDefaultInput:    dev.Name == defaultIn,
			IsDefaultOutput:   dev.Name == defaultOut,
		})
	}
	return out, nil
}
