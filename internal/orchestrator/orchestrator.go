// ============================================================================
// Dolmetscher - Voice Translation Terminal Client
// ============================================================================
//
// Package:     orchestrator
// Description: Speech to translation to speech loop with last-request-wins
//              rendering
// Author:      Mike Stoffels
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/msto63/dolmetscher/internal/translation"
	"github.com/msto63/dolmetscher/pkg/core/logging"
)

// User-facing texts
const (
	StatusReady          = "Ready to listen..."
	StatusListening      = "Listening..."
	StatusUnsupported    = "Speech recognition not supported"
	StatusAutoFailed     = "Translation failed"
	NoticeEmptyInput     = "Please enter some text to translate."
	NoticeManualFailed   = "Translation failed. Try again."
	NoticeLanguagesFail  = "Failed to load languages"
	NoticeCopied         = "Copied to clipboard!"
	NoticeCopyFailed     = "Failed to copy!"
	NoticeDetectFailed   = "Language detection failed"
	PronunciationMissing = "Pronunciation not available"
)

// Translator is the remote translation service
type Translator interface {
	Translate(ctx context.Context, req translation.Request) (translation.Result, error)
	Languages(ctx context.Context) (translation.Languages, error)
	History(ctx context.Context) ([]translation.HistoryEntry, error)
	Stats(ctx context.Context) (translation.Stats, error)
	Detect(ctx context.Context, text string) (translation.Detection, error)
}

// Speaker speaks text in a target language
type Speaker interface {
	Speak(text, langCode string) bool
	Available() bool
}

// State is everything the UI renders. It is written only from Update.
type State struct {
	Input         string
	Output        string
	DetectedLabel string
	Pronunciation string
	InputCount    int
	OutputCount   int

	// Status is the speech status line
	Status string
	// Notice is a transient message for the user
	Notice string
	// Loading shows the overlay while a manual translation is outstanding
	Loading bool

	SourceLang string
	TargetLang string
	Languages  translation.Languages

	Listening            bool
	RecognitionAvailable bool
	SynthesisAvailable   bool

	History []translation.HistoryEntry
	Stats   translation.Stats
}

// CanStartListening reports whether the start action is enabled
func (s State) CanStartListening() bool {
	return s.RecognitionAvailable && !s.Listening
}

// CanStopListening reports whether the stop action is enabled
func (s State) CanStopListening() bool {
	return s.RecognitionAvailable && s.Listening
}

// Options holds the initial selection and capabilities
type Options struct {
	SourceLang           string
	TargetLang           string
	RecognitionAvailable bool
}

// Orchestrator owns the UI state and the latest request token. All
// methods must be called from the bubbletea event loop.
type Orchestrator struct {
	client  Translator
	speaker Speaker
	logger  *logging.Logger

	state  State
	latest RequestToken
	// detectedSource is the source language of the last rendered result
	detectedSource string
}

// New creates an orchestrator
func New(client Translator, speaker Speaker, opts Options) *Orchestrator {
	if opts.SourceLang == "" {
		opts.SourceLang = translation.AutoDetect
	}
	if opts.TargetLang == "" {
		opts.TargetLang = "es"
	}

	o := &Orchestrator{
		client:  client,
		speaker: speaker,
		logger:  logging.New("orchestrator"),
	}
	o.state = State{
		SourceLang:           opts.SourceLang,
		TargetLang:           opts.TargetLang,
		RecognitionAvailable: opts.RecognitionAvailable,
		SynthesisAvailable:   speaker != nil && speaker.Available(),
		Status:               StatusReady,
	}
	if !opts.RecognitionAvailable {
		o.state.Status = StatusUnsupported
	}
	return o
}

// WithLogger replaces the orchestrator's logger
func (o *Orchestrator) WithLogger(logger *logging.Logger) *Orchestrator {
	o.logger = logger
	return o
}

// State returns a copy of the current state
func (o *Orchestrator) State() State {
	return o.state
}

// LatestToken returns the token of the most recent translate call
func (o *Orchestrator) LatestToken() RequestToken {
	return o.latest
}

// Init loads languages, history and statistics
func (o *Orchestrator) Init() tea.Cmd {
	return tea.Batch(o.loadLanguages(), o.refresh())
}

// Update applies one message and returns follow-up work
func (o *Orchestrator) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case InterimTranscript:
		o.setInput(msg.Text)

	case FinalTranscript:
		o.state.Status = "Heard: " + msg.Text
		return o.RunAutoTranslate(msg.Text, o.state.SourceLang, o.state.TargetLang)

	case ManualTranslateRequested:
		return o.RunManualTranslate(o.state.Input, o.state.SourceLang, o.state.TargetLang)

	case TranslateCompleted:
		return o.complete(msg)

	case RecognitionStarted:
		o.state.Listening = true
		o.state.Status = StatusListening

	case RecognitionStopped:
		o.state.Listening = false
		o.state.Status = StatusReady

	case RecognitionFailed:
		o.state.Listening = false
		o.state.Status = "Error: " + msg.Code

	case RecognitionEnded:
		o.state.Listening = false
		if o.state.Status == StatusListening {
			o.state.Status = StatusReady
		}

	case SwapRequested:
		o.swap()

	case ClearRequested:
		o.clear()

	case SpeakRequested:
		if o.speaker != nil {
			o.speaker.Speak(o.state.Output, o.state.TargetLang)
		}

	case DetectRequested:
		return o.detect()

	case DetectCompleted:
		if msg.Err != nil {
			o.logger.Warn("Language detection failed", "error", msg.Err)
			o.state.Notice = NoticeDetectFailed
			return nil
		}
		o.state.Notice = fmt.Sprintf("Detected language: %s (%.0f%%)", msg.Detection.LanguageName, msg.Detection.Confidence*100)

	case CopyCompleted:
		if msg.Err != nil {
			o.logger.Warn("Clipboard copy failed", "error", msg.Err)
			o.state.Notice = NoticeCopyFailed
		} else {
			o.state.Notice = NoticeCopied
		}

	case LanguagesLoaded:
		if msg.Err != nil {
			o.logger.Error("Failed to load languages", "error", msg.Err)
			o.state.Notice = NoticeLanguagesFail
			return nil
		}
		o.state.Languages = msg.Languages

	case HistoryLoaded:
		if msg.Err != nil {
			o.logger.Warn("Failed to load history", "error", msg.Err)
			return nil
		}
		o.state.History = msg.Entries

	case StatsLoaded:
		if msg.Err != nil {
			o.logger.Warn("Failed to load stats", "error", msg.Err)
			return nil
		}
		o.state.Stats = msg.Stats

	case InputChanged:
		o.setInput(msg.Text)

	case LanguageSelected:
		if msg.Side == SideSource {
			o.state.SourceLang = msg.Code
		} else {
			o.state.TargetLang = msg.Code
		}
	}
	return nil
}

// DismissNotice clears the transient notice
func (o *Orchestrator) DismissNotice() {
	o.state.Notice = ""
}

// RunManualTranslate validates the input and issues a translate call
// with the loading overlay
func (o *Orchestrator) RunManualTranslate(text, source, target string) tea.Cmd {
	if strings.TrimSpace(text) == "" {
		o.state.Notice = NoticeEmptyInput
		return nil
	}
	o.state.Loading = true
	return o.issue(OriginManual, translation.Request{Text: text, SourceLang: source, TargetLang: target})
}

// RunAutoTranslate issues a translate call for a final transcript. Blank
// transcripts are ignored.
func (o *Orchestrator) RunAutoTranslate(text, source, target string) tea.Cmd {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return o.issue(OriginAuto, translation.Request{Text: text, SourceLang: source, TargetLang: target})
}

// issue mints the next token and returns the command performing the call.
// Calls are never queued or cancelled.
func (o *Orchestrator) issue(origin Origin, req translation.Request) tea.Cmd {
	o.latest++
	token := o.latest
	client := o.client

	o.logger.Debug("Translate issued", "token", uint64(token), "origin", origin.String(), "source", req.SourceLang, "target", req.TargetLang)

	return func() tea.Msg {
		res, err := client.Translate(context.Background(), req)
		return TranslateCompleted{Token: token, Origin: origin, Request: req, Result: res, Err: err}
	}
}

func (o *Orchestrator) complete(msg TranslateCompleted) tea.Cmd {
	if msg.Token != o.latest {
		o.logger.Debug("Discarding stale translation", "token", uint64(msg.Token), "latest", uint64(o.latest))
		return nil
	}
	o.state.Loading = false

	if msg.Err != nil {
		var failure *translation.Failure
		if errors.As(msg.Err, &failure) {
			o.logger.Warn("Translation failed", "origin", msg.Origin.String(), "status", failure.StatusCode, "message", failure.Message)
		} else {
			o.logger.Warn("Translation failed", "origin", msg.Origin.String(), "error", msg.Err)
		}
		if msg.Origin == OriginManual {
			o.state.Notice = NoticeManualFailed
		} else {
			o.state.Status = StatusAutoFailed
		}
		return nil
	}

	o.render(msg.Result, msg.Origin)

	if msg.Origin == OriginAuto && o.speaker != nil && msg.Result.TranslatedText != "" {
		o.speaker.Speak(msg.Result.TranslatedText, msg.Request.TargetLang)
	}
	return o.refresh()
}

// render is the only writer of the output, label, pronunciation and
// output count
func (o *Orchestrator) render(res translation.Result, origin Origin) {
	o.state.Output = res.TranslatedText
	o.state.OutputCount = utf8.RuneCountInString(res.TranslatedText)

	if origin == OriginAuto {
		o.state.DetectedLabel = "Detected: " + res.SourceLanguageName
	} else {
		o.state.DetectedLabel = "Detected language: " + res.SourceLanguageName
	}

	o.state.Pronunciation = res.Pronunciation
	if o.state.Pronunciation == "" {
		o.state.Pronunciation = PronunciationMissing
	}
	o.detectedSource = res.SourceLanguage
}

func (o *Orchestrator) setInput(text string) {
	o.state.Input = text
	o.state.InputCount = utf8.RuneCountInString(text)
}

// swap exchanges the selected languages and clears the texts. An
// auto-detect source is replaced by the last detected language so the
// target never becomes auto; without one the languages stay put.
func (o *Orchestrator) swap() {
	o.setInput("")
	o.state.Output = ""
	o.state.OutputCount = 0
	o.state.DetectedLabel = ""

	source, target := o.state.SourceLang, o.state.TargetLang
	if source == translation.AutoDetect {
		if o.detectedSource == "" {
			o.state.Notice = "Select a source language to swap"
			return
		}
		source = o.detectedSource
	}
	o.state.SourceLang, o.state.TargetLang = target, source
}

func (o *Orchestrator) clear() {
	o.setInput("")
	o.state.Output = ""
	o.state.OutputCount = 0
	o.state.DetectedLabel = ""
	o.state.Pronunciation = ""
}

func (o *Orchestrator) detect() tea.Cmd {
	text := o.state.Input
	if strings.TrimSpace(text) == "" {
		o.state.Notice = NoticeEmptyInput
		return nil
	}
	client := o.client
	return func() tea.Msg {
		d, err := client.Detect(context.Background(), text)
		return DetectCompleted{Detection: d, Err: err}
	}
}

func (o *Orchestrator) loadLanguages() tea.Cmd {
	client := o.client
	return func() tea.Msg {
		langs, err := client.Languages(context.Background())
		return LanguagesLoaded{Languages: langs, Err: err}
	}
}

// refresh re-fetches history and stats; each completion replaces its panel
func (o *Orchestrator) refresh() tea.Cmd {
	client := o.client
	return tea.Batch(
		func() tea.Msg {
			entries, err := client.History(context.Background())
			return HistoryLoaded{Entries: entries, Err: err}
		},
		func() tea.Msg {
			stats, err := client.Stats(context.Background())
			return StatsLoaded{Stats: stats, Err: err}
		},
	)
}
