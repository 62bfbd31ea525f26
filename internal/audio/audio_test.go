package audio

import (
	"bytes"
	"testing"
	"time"
)

func TestBuffer(t *testing.T) {
	b := NewBuffer(16000)
	b.Append(make([]float32, 8000))
	b.Append(make([]float32, 8000))

	if b.Len() != 16000 {
		t.Errorf("Len() = %d, want 16000", b.Len())
	}
	if b.Duration() != time.Second {
		t.Errorf("Duration() = %v, want 1s", b.Duration())
	}

	snap := b.Snapshot()
	b.Clear()
	if len(snap) != 16000 {
		t.Errorf("snapshot length = %d, want 16000", len(snap))
	}
	if b.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", b.Len())
	}
}

func TestRingBuffer(t *testing.T) {
	tests := []struct {
		name   string
		cap    int
		writes [][]float32
		want   []float32
	}{
		{"empty", 4, nil, []float32{}},
		{"partial", 4, [][]float32{{1, 2}}, []float32{1, 2}},
		{"exact", 3, [][]float32{{1, 2, 3}}, []float32{1, 2, 3}},
		{"wraps", 3, [][]float32{{1, 2}, {3, 4, 5}}, []float32{3, 4, 5}},
		{"zero capacity", 0, [][]float32{{1}}, []float32{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb := NewRingBuffer(tt.cap)
			for _, w := range tt.writes {
				rb.Write(w)
			}
			got := rb.Drain()
			if len(got) != len(tt.want) {
				t.Fatalf("Drain() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Drain() = %v, want %v", got, tt.want)
				}
			}
			if rb.Len() != 0 {
				t.Errorf("Len() after Drain = %d, want 0", rb.Len())
			}
		})
	}
}

func TestFloat32ToInt16_Clamps(t *testing.T) {
	got := Float32ToInt16([]float32{0, 1, -1, 2, -2})
	want := []int16{0, 32767, -32767, 32767, -32767}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestInt16Bytes_RoundTrip(t *testing.T) {
	in := []int16{0, 1, -1, 32767, -32768}
	data := Int16ToBytes(in)
	if len(data) != 10 {
		t.Fatalf("encoded length = %d, want 10", len(data))
	}
	out := BytesToInt16(append(data, 0x7f))
	if len(out) != len(in) {
		t.Fatalf("decoded length = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("sample %d = %d, want %d", i, out[i], in[i])
		}
	}
}

func TestScalePCM16(t *testing.T) {
	data := Int16ToBytes([]int16{1000, -1000, 30000})
	ScalePCM16(data, 0.5)
	got := BytesToInt16(data)
	want := []int16{500, -500, 15000}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}

	loud := Int16ToBytes([]int16{30000})
	ScalePCM16(loud, 2)
	if got := BytesToInt16(loud)[0]; got != 32767 {
		t.Errorf("clamped sample = %d, want 32767", got)
	}
}

func TestWAV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWAV(&buf, []float32{0, 0.5, -0.5}, 22050); err != nil {
		t.Fatalf("WriteWAV() error = %v", err)
	}
	if buf.Len() != 44+6 {
		t.Fatalf("WAV length = %d, want 50", buf.Len())
	}

	rate, pcm, err := ParseWAV(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseWAV() error = %v", err)
	}
	if rate != 22050 {
		t.Errorf("sample rate = %d, want 22050", rate)
	}
	if len(pcm) != 6 {
		t.Errorf("pcm length = %d, want 6", len(pcm))
	}
}

func TestParseWAV_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"too small", []byte("RIFF")},
		{"not riff", append([]byte("XXXX\x00\x00\x00\x00WAVE"), make([]byte, 40)...)},
		{"not wave", append([]byte("RIFF\x00\x00\x00\x00XXXX"), make([]byte, 40)...)},
		{"no chunks", append([]byte("RIFF\x00\x00\x00\x00WAVE"), make([]byte, 40)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := ParseWAV(tt.data); err == nil {
				t.Error("ParseWAV() expected error")
			}
		})
	}
}
