package recognition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/msto63/dolmetscher/internal/audio"
	"github.com/msto63/dolmetscher/pkg/core/logging"
	"github.com/msto63/dolmetscher/pkg/core/version"
)

// stopDrainTimeout bounds how long a stopped session waits for the
// server's end message
const stopDrainTimeout = 5 * time.Second

// AudioSource produces mono float32 frames
type AudioSource interface {
	Start(ctx context.Context) error
	Stop() error
	Output() <-chan []float32
	SampleRate() int
}

// StreamMessage is the JSON envelope exchanged with the recognizer
type StreamMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// StreamResult is one hypothesis inside a results payload
type StreamResult struct {
	Transcript string `json:"transcript"`
	IsFinal    bool   `json:"is_final"`
}

type resultsPayload struct {
	Results []StreamResult `json:"results"`
}

type errorPayload struct {
	Code string `json:"code"`
}

// StreamEngine recognizes speech through a streaming websocket service.
// Audio goes up as binary PCM16LE frames; results come down as JSON.
type StreamEngine struct {
	url    string
	source AudioSource
	dialer websocket.Dialer
	logger *logging.Logger

	mu      sync.Mutex
	current *streamSession
}

type streamSession struct {
	conn    *websocket.Conn
	source  AudioSource
	writeMu sync.Mutex

	stop     chan struct{}
	stopOnce sync.Once
	stopped  bool
}

// NewStreamEngine creates a streaming engine fed by source
func NewStreamEngine(rawURL string, source AudioSource) *StreamEngine {
	return &StreamEngine{
		url:    rawURL,
		source: source,
		dialer: websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger: logging.New("recognition.stream"),
	}
}

// Name returns the engine name
func (e *StreamEngine) Name() string {
	return "stream"
}

// URL returns the recognizer endpoint
func (e *StreamEngine) URL() string {
	return e.url
}

// Start connects, starts the audio source and begins streaming
func (e *StreamEngine) Start(ctx context.Context, locale string, emit func(Notification)) error {
	target, err := e.sessionURL(locale)
	if err != nil {
		return err
	}

	header := http.Header{}
	header.Set("User-Agent", version.UserAgent())

	conn, _, err := e.dialer.DialContext(ctx, target, header)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	// A session that ended on an error may still hold the source
	e.mu.Lock()
	prev := e.current
	e.current = nil
	e.mu.Unlock()
	if prev != nil {
		prev.halt()
		prev.conn.Close()
	}

	if err := e.source.Start(ctx); err != nil {
		conn.Close()
		return fmt.Errorf("failed to start audio: %w", err)
	}

	s := &streamSession{
		conn:   conn,
		source: e.source,
		stop:   make(chan struct{}),
	}

	e.mu.Lock()
	e.current = s
	e.mu.Unlock()

	go e.sendLoop(s)
	go e.readLoop(s, emit)
	return nil
}

func (e *StreamEngine) sessionURL(locale string) (string, error) {
	u, err := url.Parse(e.url)
	if err != nil {
		return "", fmt.Errorf("invalid stream url %q: %w", e.url, err)
	}
	q := u.Query()
	q.Set("language", locale)
	q.Set("sample_rate", strconv.Itoa(e.source.SampleRate()))
	q.Set("encoding", "pcm_s16le")
	q.Set("interim_results", "true")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Stop asks the server to finish. Remaining results and the end message
// are still delivered.
func (e *StreamEngine) Stop() error {
	e.mu.Lock()
	s := e.current
	e.current = nil
	e.mu.Unlock()

	if s == nil {
		return nil
	}

	s.halt()
	s.writeMu.Lock()
	err := s.conn.WriteJSON(StreamMessage{Type: "stop"})
	s.writeMu.Unlock()
	_ = s.conn.SetReadDeadline(time.Now().Add(stopDrainTimeout))

	if err != nil {
		return fmt.Errorf("failed to send stop: %w", err)
	}
	return nil
}

// halt stops sending audio, once
func (s *streamSession) halt() {
	s.stopOnce.Do(func() {
		s.writeMu.Lock()
		s.stopped = true
		s.writeMu.Unlock()
		close(s.stop)
		_ = s.source.Stop()
	})
}

func (e *StreamEngine) sendLoop(s *streamSession) {
	frames := s.source.Output()
	for {
		select {
		case <-s.stop:
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			data := audio.Int16ToBytes(audio.Float32ToInt16(frame))

			s.writeMu.Lock()
			var err error
			if !s.stopped {
				err = s.conn.WriteMessage(websocket.BinaryMessage, data)
			}
			s.writeMu.Unlock()

			if err != nil {
				e.logger.Debug("Audio send failed", "error", err)
				return
			}
		}
	}
}

// release forgets s if it is still the current session
func (e *StreamEngine) release(s *streamSession) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == s {
		e.current = nil
	}
}

func (e *StreamEngine) readLoop(s *streamSession, emit func(Notification)) {
	defer e.release(s)
	defer s.conn.Close()

	for {
		var msg StreamMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			s.halt()
			if !isClosure(err) {
				e.logger.Warn("Stream closed unexpectedly", "error", err)
				emit(Notification{Kind: KindError, Code: CodeNetwork})
			}
			emit(Notification{Kind: KindEnd})
			return
		}

		switch msg.Type {
		case "results":
			var p resultsPayload
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				e.logger.Debug("Malformed results payload", "error", err)
				continue
			}
			segments := make([]Segment, 0, len(p.Results))
			for _, r := range p.Results {
				segments = append(segments, Segment{Text: r.Transcript, Final: r.IsFinal})
			}
			if len(segments) > 0 {
				emit(Notification{Kind: KindResult, Segments: segments})
			}

		case "error":
			var p errorPayload
			_ = json.Unmarshal(msg.Payload, &p)
			if p.Code == "" {
				p.Code = CodeNetwork
			}
			s.halt()
			emit(Notification{Kind: KindError, Code: p.Code})

		case "end":
			s.halt()
			emit(Notification{Kind: KindEnd})
			return
		}
	}
}

// isClosure reports a normal close or the drain deadline after stop
func isClosure(err error) bool {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
