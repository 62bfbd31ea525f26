package recognition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/msto63/dolmetscher/internal/audio"
	"github.com/msto63/dolmetscher/pkg/core/version"
)

// Transcriber converts a complete stretch of audio to text
type Transcriber interface {
	Transcribe(ctx context.Context, samples []float32) (string, error)
}

// WhisperHTTP transcribes through a Whisper-compatible HTTP server
// (whisper.cpp server, faster-whisper-server, LocalAI)
type WhisperHTTP struct {
	baseURL    string
	language   string
	sampleRate int
	client     *http.Client
}

// NewWhisperHTTP creates a Whisper HTTP client. locale is reduced to its
// language subtag since Whisper takes ISO 639-1 codes.
func NewWhisperHTTP(baseURL, locale string, sampleRate int) *WhisperHTTP {
	lang := locale
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return &WhisperHTTP{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		language:   lang,
		sampleRate: sampleRate,
		client:     &http.Client{Timeout: 60 * time.Second},
	}
}

// BaseURL returns the server address
func (w *WhisperHTTP) BaseURL() string {
	return w.baseURL
}

// Transcribe posts the samples as a WAV file and returns the text
func (w *WhisperHTTP) Transcribe(ctx context.Context, samples []float32) (string, error) {
	var buf bytes.Buffer
	if err := audio.WriteWAV(&buf, samples, w.sampleRate); err != nil {
		return "", fmt.Errorf("failed to create WAV: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/v1/audio/transcriptions", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "audio/wav")
	req.Header.Set("User-Agent", version.UserAgent())

	q := req.URL.Query()
	q.Set("language", w.language)
	req.URL.RawQuery = q.Encode()

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var response struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return strings.TrimSpace(response.Text), nil
}
