package recognition

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/msto63/dolmetscher/internal/audio"
)

// fakeSource feeds frames from a channel
type fakeSource struct {
	mu      sync.Mutex
	frames  chan []float32
	started int
	stopped int
}

func newFakeSource() *fakeSource {
	return &fakeSource{frames: make(chan []float32, 10)}
}

func (s *fakeSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started++
	return nil
}

func (s *fakeSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped++
	return nil
}

func (s *fakeSource) Output() <-chan []float32 { return s.frames }

func (s *fakeSource) SampleRate() int { return 16000 }

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func results(t *testing.T, conn *websocket.Conn, text string, final bool) {
	t.Helper()
	payload, _ := json.Marshal(resultsPayload{Results: []StreamResult{{Transcript: text, IsFinal: final}}})
	if err := conn.WriteJSON(StreamMessage{Type: "results", Payload: payload}); err != nil {
		t.Errorf("write results: %v", err)
	}
}

func collect(t *testing.T, ch <-chan Notification, n int) []Notification {
	t.Helper()
	var out []Notification
	for len(out) < n {
		select {
		case got := <-ch:
			out = append(out, got)
		case <-time.After(3 * time.Second):
			t.Fatalf("timed out after %d of %d notifications", len(out), n)
		}
	}
	return out
}

func TestStreamEngine_Session(t *testing.T) {
	var mu sync.Mutex
	var gotQuery string
	var gotAudio []byte

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotQuery = r.URL.RawQuery
		mu.Unlock()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		mt, data, err := conn.ReadMessage()
		if err != nil || mt != websocket.BinaryMessage {
			t.Errorf("expected binary audio, got type %d err %v", mt, err)
			return
		}
		mu.Lock()
		gotAudio = data
		mu.Unlock()

		results(t, conn, "hel", false)
		results(t, conn, "hello", true)

		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if mt == websocket.TextMessage && strings.Contains(string(data), `"stop"`) {
				break
			}
		}
		results(t, conn, " late", true)
		_ = conn.WriteJSON(StreamMessage{Type: "end"})
	}))
	defer srv.Close()

	source := newFakeSource()
	engine := NewStreamEngine(wsURL(srv)+"/v1/listen", source)

	notes := make(chan Notification, 10)
	if err := engine.Start(context.Background(), "de-DE", func(n Notification) { notes <- n }); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	source.frames <- []float32{0, 0.5}

	got := collect(t, notes, 2)
	if got[0].Kind != KindResult || got[0].Segments[0].Text != "hel" || got[0].Segments[0].Final {
		t.Errorf("first notification = %+v", got[0])
	}
	if got[1].Segments[0].Text != "hello" || !got[1].Segments[0].Final {
		t.Errorf("second notification = %+v", got[1])
	}

	if err := engine.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	got = collect(t, notes, 2)
	if got[0].Kind != KindResult || got[0].Segments[0].Text != " late" {
		t.Errorf("late result = %+v", got[0])
	}
	if got[1].Kind != KindEnd {
		t.Errorf("last notification = %+v, want end", got[1])
	}

	mu.Lock()
	defer mu.Unlock()
	if !strings.Contains(gotQuery, "language=de-DE") || !strings.Contains(gotQuery, "sample_rate=16000") {
		t.Errorf("query = %q", gotQuery)
	}
	if want := audio.Int16ToBytes(audio.Float32ToInt16([]float32{0, 0.5})); string(gotAudio) != string(want) {
		t.Errorf("audio = %v, want %v", gotAudio, want)
	}
	source.mu.Lock()
	defer source.mu.Unlock()
	if source.started != 1 || source.stopped != 1 {
		t.Errorf("source started %d stopped %d, want 1/1", source.started, source.stopped)
	}
}

func TestStreamEngine_ServerError(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		payload, _ := json.Marshal(errorPayload{Code: "no-speech"})
		_ = conn.WriteJSON(StreamMessage{Type: "error", Payload: payload})
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	notes := make(chan Notification, 10)
	engine := NewStreamEngine(wsURL(srv), newFakeSource())
	if err := engine.Start(context.Background(), "en-US", func(n Notification) { notes <- n }); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	got := collect(t, notes, 2)
	if got[0].Kind != KindError || got[0].Code != "no-speech" {
		t.Errorf("first notification = %+v, want no-speech error", got[0])
	}
	if got[1].Kind != KindEnd {
		t.Errorf("second notification = %+v, want end", got[1])
	}
}

func TestStreamEngine_ErrorWithOpenConnection(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var (
		mu          sync.Mutex
		connections int
		afterError  int
	)
	stopReceived := make(chan struct{}, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		mu.Lock()
		connections++
		first := connections == 1
		mu.Unlock()
		if !first {
			_, _, _ = conn.ReadMessage()
			return
		}

		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		payload, _ := json.Marshal(errorPayload{Code: CodeNetwork})
		_ = conn.WriteJSON(StreamMessage{Type: "error", Payload: payload})

		// keep the socket open and watch what the client sends next
		for {
			kind, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if kind == websocket.BinaryMessage {
				mu.Lock()
				afterError++
				mu.Unlock()
				continue
			}
			if strings.Contains(string(data), `"stop"`) {
				stopReceived <- struct{}{}
				_ = conn.WriteJSON(StreamMessage{Type: "end"})
				return
			}
		}
	}))
	defer srv.Close()

	source := newFakeSource()
	engine := NewStreamEngine(wsURL(srv), source)
	c := newTestController(t, engine)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	source.frames <- []float32{0.1}

	var n Notification
	select {
	case n = <-c.Notifications():
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for the error")
	}
	events := c.Handle(n)
	if len(events) != 1 || events[0].Kind != EventError || events[0].Code != CodeNetwork {
		t.Fatalf("events = %+v, want network error", events)
	}
	if c.State() != StateIdle {
		t.Errorf("State() = %v, want idle", c.State())
	}

	select {
	case <-stopReceived:
	case <-time.After(3 * time.Second):
		t.Fatal("server never received stop after the error")
	}

	source.mu.Lock()
	stopped := source.stopped
	source.mu.Unlock()
	if stopped < 1 {
		t.Error("audio source still running after the error")
	}

	// frames produced now must not reach the errored session
	source.frames <- []float32{0.2}
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	if afterError != 0 {
		t.Errorf("server received %d audio frames after the error", afterError)
	}
	mu.Unlock()

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() after error = %v", err)
	}
	if !c.Listening() {
		t.Error("Listening() = false after restart")
	}
	source.mu.Lock()
	if source.started != 2 || source.stopped < 1 {
		t.Errorf("source started %d stopped %d, want a stop between the two starts", source.started, source.stopped)
	}
	source.mu.Unlock()
	_ = c.Stop()
}

func TestStreamEngine_DroppedConnection(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.UnderlyingConn().Close()
	}))
	defer srv.Close()

	notes := make(chan Notification, 10)
	engine := NewStreamEngine(wsURL(srv), newFakeSource())
	if err := engine.Start(context.Background(), "en-US", func(n Notification) { notes <- n }); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	got := collect(t, notes, 2)
	if got[0].Kind != KindError || got[0].Code != CodeNetwork {
		t.Errorf("first notification = %+v, want network error", got[0])
	}
	if got[1].Kind != KindEnd {
		t.Errorf("second notification = %+v, want end", got[1])
	}
}

func TestStreamEngine_DialFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := wsURL(srv)
	srv.Close()

	engine := NewStreamEngine(url, newFakeSource())
	if err := engine.Start(context.Background(), "en-US", func(Notification) {}); err == nil {
		t.Error("Start() expected error for unreachable server")
	}
}

func TestWhisperHTTP_Transcribe(t *testing.T) {
	var gotLang, gotType string
	var gotLen int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotLang = r.URL.Query().Get("language")
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotLen = len(body)
		_, _ = w.Write([]byte(`{"text":"  Hello world \n"}`))
	}))
	defer srv.Close()

	w := NewWhisperHTTP(srv.URL+"/", "en-US", 16000)
	text, err := w.Transcribe(context.Background(), make([]float32, 160))
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if text != "Hello world" {
		t.Errorf("text = %q, want %q", text, "Hello world")
	}
	if gotLang != "en" {
		t.Errorf("language = %q, want en", gotLang)
	}
	if gotType != "audio/wav" {
		t.Errorf("Content-Type = %q", gotType)
	}
	if gotLen != 44+320 {
		t.Errorf("body length = %d, want %d", gotLen, 44+320)
	}
}

func TestWhisperHTTP_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewWhisperHTTP(srv.URL, "de", 16000).Transcribe(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Errorf("Transcribe() error = %v, want 503", err)
	}
}
