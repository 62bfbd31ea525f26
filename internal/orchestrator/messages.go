package orchestrator

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/msto63/dolmetscher/internal/recognition"
	"github.com/msto63/dolmetscher/internal/translation"
)

// RequestToken identifies one translate call. Tokens increase from 1.
type RequestToken uint64

// Origin tells which path issued a translate call
type Origin int

const (
	// OriginManual is the translate key binding
	OriginManual Origin = iota
	// OriginAuto is a final speech transcript
	OriginAuto
)

// String returns the origin name used in logs
func (o Origin) String() string {
	if o == OriginAuto {
		return "auto"
	}
	return "manual"
}

// Side selects a language selector
type Side int

const (
	SideSource Side = iota
	SideTarget
)

// FinalTranscript is a finished utterance
type FinalTranscript struct{ Text string }

// InterimTranscript is the in-progress display text of an utterance
type InterimTranscript struct{ Text string }

// ManualTranslateRequested translates the current input
type ManualTranslateRequested struct{}

// TranslateCompleted carries the outcome of one translate call
type TranslateCompleted struct {
	Token   RequestToken
	Origin  Origin
	Request translation.Request
	Result  translation.Result
	Err     error
}

// RecognitionStarted reports a running recognition session
type RecognitionStarted struct{}

// RecognitionFailed reports a recognizer error code
type RecognitionFailed struct{ Code string }

// RecognitionEnded reports that the recognizer finished on its own or
// after a stop
type RecognitionEnded struct{}

// RecognitionStopped reports a user stop
type RecognitionStopped struct{}

// SwapRequested swaps source and target languages
type SwapRequested struct{}

// ClearRequested clears input and output
type ClearRequested struct{}

// SpeakRequested speaks the current output
type SpeakRequested struct{}

// DetectRequested asks the service for the language of the input
type DetectRequested struct{}

// DetectCompleted carries a detection outcome
type DetectCompleted struct {
	Detection translation.Detection
	Err       error
}

// CopyCompleted reports the outcome of a clipboard copy
type CopyCompleted struct{ Err error }

// LanguagesLoaded carries the selectable languages
type LanguagesLoaded struct {
	Languages translation.Languages
	Err       error
}

// HistoryLoaded carries recent translations
type HistoryLoaded struct {
	Entries []translation.HistoryEntry
	Err     error
}

// StatsLoaded carries usage statistics
type StatsLoaded struct {
	Stats translation.Stats
	Err   error
}

// InputChanged reports an edit of the input text
type InputChanged struct{ Text string }

// LanguageSelected reports a selector change
type LanguageSelected struct {
	Side Side
	Code string
}

// FromRecognition converts controller events into messages
func FromRecognition(events []recognition.Event) []tea.Msg {
	msgs := make([]tea.Msg, 0, len(events))
	for _, ev := range events {
		switch ev.Kind {
		case recognition.EventInterim:
			msgs = append(msgs, InterimTranscript{Text: ev.Text})
		case recognition.EventFinal:
			msgs = append(msgs, FinalTranscript{Text: ev.Text})
		case recognition.EventError:
			msgs = append(msgs, RecognitionFailed{Code: ev.Code})
		case recognition.EventEnd:
			msgs = append(msgs, RecognitionEnded{})
		}
	}
	return msgs
}
