package synthesis

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/msto63/dolmetscher/pkg/core/logging"
)

func TestResolveLocale(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"en", "en-US"},
		{"es", "es-ES"},
		{"de", "de-DE"},
		{"pt", "pt-BR"},
		{"zh", "zh-CN"},
		{"zh-TW", "zh-TW"},
		{"no", "no-NO"},
		{"xx", "xx"},
		{"sw", "sw"},
		{"", "en-US"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := ResolveLocale(tt.code); got != tt.want {
				t.Errorf("ResolveLocale(%q) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}

func TestLanguage(t *testing.T) {
	tests := map[string]string{
		"pt-BR": "pt",
		"en_US": "en",
		"fr":    "fr",
		"":      "",
	}
	for in, want := range tests {
		if got := language(in); got != want {
			t.Errorf("language(%q) = %q, want %q", in, got, want)
		}
	}
}

// recordingEngine records utterances in the order they are spoken
type recordingEngine struct {
	mu     sync.Mutex
	spoken []Utterance
	delay  time.Duration
	done   chan struct{}
	want   int
}

func newRecordingEngine(want int, delay time.Duration) *recordingEngine {
	return &recordingEngine{want: want, delay: delay, done: make(chan struct{})}
}

func (e *recordingEngine) Name() string { return "recording" }

func (e *recordingEngine) Speak(ctx context.Context, u Utterance) error {
	if e.delay > 0 {
		time.Sleep(e.delay)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.spoken = append(e.spoken, u)
	if len(e.spoken) == e.want {
		close(e.done)
	}
	return nil
}

func (e *recordingEngine) wait(t *testing.T) []Utterance {
	t.Helper()
	select {
	case <-e.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for utterances")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Utterance(nil), e.spoken...)
}

func TestController_SpeaksInOrder(t *testing.T) {
	engine := newRecordingEngine(3, 5*time.Millisecond)
	c := NewController(engine).WithLogger(logging.NewTest(t, "synthesis"))
	defer c.Close()

	for _, text := range []string{"uno", "dos", "tres"} {
		if !c.Speak(text, "es") {
			t.Fatalf("Speak(%q) = false, want true", text)
		}
	}

	spoken := engine.wait(t)
	var got []string
	for _, u := range spoken {
		got = append(got, u.Text)
	}
	if !reflect.DeepEqual(got, []string{"uno", "dos", "tres"}) {
		t.Errorf("spoken = %v, want [uno dos tres]", got)
	}
}

func TestController_AppliesVoicePolicy(t *testing.T) {
	engine := newRecordingEngine(1, 0)
	c := NewController(engine)
	defer c.Close()

	c.Speak("Hallo", "de")
	u := engine.wait(t)[0]

	if u.Locale != "de-DE" {
		t.Errorf("Locale = %q, want de-DE", u.Locale)
	}
	if u.Rate != 0.9 || u.Pitch != 1.0 || u.Volume != 0.8 {
		t.Errorf("policy = %v/%v/%v, want 0.9/1.0/0.8", u.Rate, u.Pitch, u.Volume)
	}
}

func TestController_UnmappedCodeUsesRawCode(t *testing.T) {
	engine := newRecordingEngine(1, 0)
	c := NewController(engine)
	defer c.Close()

	c.Speak("Habari", "sw")
	if u := engine.wait(t)[0]; u.Locale != "sw" {
		t.Errorf("Locale = %q, want sw", u.Locale)
	}
}

func TestController_BlankTextIsNoop(t *testing.T) {
	engine := newRecordingEngine(1, 0)
	c := NewController(engine)
	defer c.Close()

	for _, text := range []string{"", "   ", "\n\t"} {
		if c.Speak(text, "en") {
			t.Errorf("Speak(%q) = true, want false", text)
		}
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", c.Pending())
	}
}

func TestController_NoEngine(t *testing.T) {
	c := NewController(nil)
	defer c.Close()

	if c.Available() {
		t.Error("Available() = true, want false")
	}
	if c.EngineName() != "none" {
		t.Errorf("EngineName() = %q, want none", c.EngineName())
	}
	if c.Speak("hello", "en") {
		t.Error("Speak() = true, want false without engine")
	}
}

func TestController_CloseReturns(t *testing.T) {
	c := NewController(newRecordingEngine(1, 0))
	done := make(chan struct{})
	go func() {
		c.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close() did not return")
	}
}

type call struct {
	name  string
	args  []string
	stdin string
}

func fakeRunner(calls *[]call, out []byte) runner {
	return func(ctx context.Context, name string, args []string, stdin string) ([]byte, error) {
		*calls = append(*calls, call{name, args, stdin})
		return out, nil
	}
}

const espeakVoicesOutput = `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  de              --/M      German             gmw/de
 5  en-us           --/M      English_(America)  gmw/en-US
 5  es              --/M      Spanish_(Spain)    roa/es
 5  cmn             --/M      Chinese_(Mandarin) sit/cmn
`

func TestParseESpeakVoices(t *testing.T) {
	voices := parseESpeakVoices([]byte(espeakVoicesOutput))
	for _, v := range []string{"de", "en-us", "es", "cmn"} {
		if !voices[v] {
			t.Errorf("voice %q missing", v)
		}
	}
	if voices["language"] {
		t.Error("header parsed as voice")
	}
}

func TestESpeak_Speak(t *testing.T) {
	var calls []call
	e := &ESpeak{
		binary: "espeak-ng",
		voices: parseESpeakVoices([]byte(espeakVoicesOutput)),
		run:    fakeRunner(&calls, nil),
	}

	err := e.Speak(context.Background(), Utterance{Text: "Hola", Locale: "es-ES", Rate: Rate, Pitch: Pitch, Volume: Volume})
	if err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}

	want := []string{"-v", "es", "-s", "157", "-p", "50", "-a", "80", "--stdin"}
	if !reflect.DeepEqual(calls[0].args, want) {
		t.Errorf("args = %v, want %v", calls[0].args, want)
	}
	if calls[0].stdin != "Hola" {
		t.Errorf("stdin = %q, want Hola", calls[0].stdin)
	}
}

func TestESpeak_VoiceFor(t *testing.T) {
	e := &ESpeak{voices: parseESpeakVoices([]byte(espeakVoicesOutput))}
	tests := []struct {
		locale string
		want   string
	}{
		{"en-US", "en-us"},
		{"de-DE", "de"},
		{"zh-CN", "cmn"},
		{"sw", "sw"},
	}
	for _, tt := range tests {
		if got := e.voiceFor(tt.locale); got != tt.want {
			t.Errorf("voiceFor(%q) = %q, want %q", tt.locale, got, tt.want)
		}
	}

	unknown := &ESpeak{}
	if got := unknown.voiceFor("fr-FR"); got != "fr-fr" {
		t.Errorf("voiceFor without voice list = %q, want fr-fr", got)
	}
}

const sayVoicesOutput = `Alex                en_US    # Most people recognize me by my voice.
Anna                de_DE    # Hallo, ich heiße Anna.
Monica              es_ES    # Hola, me llamo Mónica.
Paulina             es_MX    # Hola, me llamo Paulina.
Ting-Ting           zh_CN    # 你好，我叫婷婷。
`

func TestParseSayVoices(t *testing.T) {
	voices := parseSayVoices([]byte(sayVoicesOutput))
	tests := map[string]string{
		"en_US": "Alex",
		"de_DE": "Anna",
		"es_ES": "Monica",
		"es_MX": "Paulina",
		"es":    "Monica",
		"zh_CN": "Ting-Ting",
	}
	for key, want := range tests {
		if got := voices[key]; got != want {
			t.Errorf("voices[%q] = %q, want %q", key, got, want)
		}
	}
}

func TestSay_Speak(t *testing.T) {
	var calls []call
	s := &Say{
		voices: parseSayVoices([]byte(sayVoicesOutput)),
		run:    fakeRunner(&calls, nil),
	}

	if err := s.Speak(context.Background(), Utterance{Text: "Hola", Locale: "es-AR", Rate: Rate, Volume: Volume}); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}

	want := []string{"-v", "Monica", "-r", "157", "[[volm 0.80]] Hola"}
	if !reflect.DeepEqual(calls[0].args, want) {
		t.Errorf("args = %v, want %v", calls[0].args, want)
	}

	calls = nil
	_ = s.Speak(context.Background(), Utterance{Text: "Hi", Locale: "sw", Rate: Rate, Volume: Volume})
	if calls[0].args[0] == "-v" {
		t.Errorf("unknown locale should use the system voice, got %v", calls[0].args)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestFindPiperModel(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "de_DE-thorsten-medium.onnx"), "")
	writeFile(t, filepath.Join(dir, "de_DE-thorsten-medium.onnx.json"), `{"audio":{"sample_rate":16000}}`)
	writeFile(t, filepath.Join(dir, "en_GB-alba-medium.onnx"), "")
	writeFile(t, filepath.Join(dir, "en_US-amy-low.onnx"), "")

	tests := []struct {
		locale   string
		wantBase string
		wantRate int
	}{
		{"de-DE", "de_DE-thorsten-medium.onnx", 16000},
		{"de-AT", "de_DE-thorsten-medium.onnx", 16000},
		{"en-US", "en_US-amy-low.onnx", piperDefaultSampleRate},
		{"en-AU", "en_GB-alba-medium.onnx", piperDefaultSampleRate},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			m, err := findPiperModel(dir, tt.locale)
			if err != nil {
				t.Fatalf("findPiperModel() error = %v", err)
			}
			if filepath.Base(m.Path) != tt.wantBase {
				t.Errorf("model = %s, want %s", filepath.Base(m.Path), tt.wantBase)
			}
			if m.SampleRate != tt.wantRate {
				t.Errorf("SampleRate = %d, want %d", m.SampleRate, tt.wantRate)
			}
		})
	}

	if _, err := findPiperModel(dir, "ja-JP"); err == nil {
		t.Error("expected error for missing voice")
	}
}

func TestPiperArgs(t *testing.T) {
	dir := t.TempDir()
	model := piperModel{Path: filepath.Join(dir, "fr_FR-siwis.onnx"), ConfigPath: filepath.Join(dir, "missing.json")}

	args := piperArgs(model, Utterance{Rate: 0.8})
	got := strings.Join(args, " ")
	if !strings.Contains(got, "--output_raw") {
		t.Errorf("args %q missing --output_raw", got)
	}
	if !strings.Contains(got, "--length_scale 1.25") {
		t.Errorf("args %q missing --length_scale 1.25", got)
	}
	if strings.Contains(got, "--config") {
		t.Errorf("args %q should not reference a missing config", got)
	}
}

func TestDetect(t *testing.T) {
	engine, err := Detect(context.Background(), Options{Backend: "none"})
	if err != nil || engine != nil {
		t.Errorf("Detect(none) = %v, %v; want nil, nil", engine, err)
	}

	if _, err := Detect(context.Background(), Options{Backend: "festival"}); err == nil {
		t.Error("Detect(festival) expected error")
	}

	if _, err := Detect(context.Background(), Options{Backend: "piper", PiperBinary: filepath.Join(t.TempDir(), "nope")}); err == nil {
		t.Error("Detect(piper) with missing binary expected error")
	}
}
