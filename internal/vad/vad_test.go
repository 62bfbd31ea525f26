package vad

import (
	"testing"
	"time"
)

const frame = 30 * time.Millisecond

func feed(t *Tracker, pattern string) {
	for _, c := range pattern {
		t.Update(c == 's', frame)
	}
}

func TestTracker(t *testing.T) {
	cfg := Config{SilenceDuration: 90 * time.Millisecond, MinSpeechDuration: 60 * time.Millisecond}

	tests := []struct {
		name          string
		pattern       string
		wantStarted   bool
		wantEnd       bool
		wantAbandoned bool
	}{
		{"only silence", "....", false, false, false},
		{"speech in progress", "sss", true, false, false},
		{"short pause", "ss..", true, false, false},
		{"utterance complete", "ss...", true, true, false},
		{"pause then resume", "ss..ss..", true, false, false},
		{"blip", "s...", true, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(cfg)
			feed(tr, tt.pattern)
			if tr.Started() != tt.wantStarted {
				t.Errorf("Started() = %v, want %v", tr.Started(), tt.wantStarted)
			}
			if tr.ShouldEnd() != tt.wantEnd {
				t.Errorf("ShouldEnd() = %v, want %v", tr.ShouldEnd(), tt.wantEnd)
			}
			if tr.Abandoned() != tt.wantAbandoned {
				t.Errorf("Abandoned() = %v, want %v", tr.Abandoned(), tt.wantAbandoned)
			}
		})
	}
}

func TestTracker_SpeechIncludesPauses(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	feed(tr, "s..s")
	if got := tr.SpeechDuration(); got != 4*frame {
		t.Errorf("SpeechDuration() = %v, want %v", got, 4*frame)
	}

	tr.Reset()
	if tr.Started() || tr.SpeechDuration() != 0 {
		t.Error("Reset() did not clear the tracker")
	}
}

func TestEnergy(t *testing.T) {
	e := NewEnergy()

	quiet := make([]float32, 160)
	if speech, _ := e.Process(quiet); speech {
		t.Error("silence detected as speech")
	}

	loud := make([]float32, 160)
	for i := range loud {
		if i%2 == 0 {
			loud[i] = 0.3
		} else {
			loud[i] = -0.3
		}
	}
	if speech, _ := e.Process(loud); !speech {
		t.Error("loud frame not detected as speech")
	}
}

func TestRMS(t *testing.T) {
	if RMS(nil) != 0 {
		t.Error("RMS(nil) should be 0")
	}
	if got := RMS([]float32{0.5, -0.5}); got != 0.5 {
		t.Errorf("RMS = %v, want 0.5", got)
	}
}

func TestValidRate(t *testing.T) {
	for _, r := range []int{8000, 16000, 32000, 48000} {
		if !ValidRate(r) {
			t.Errorf("ValidRate(%d) = false", r)
		}
	}
	for _, r := range []int{0, 22050, 44100} {
		if ValidRate(r) {
			t.Errorf("ValidRate(%d) = true", r)
		}
	}
}
