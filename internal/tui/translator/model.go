// ============================================================================
// Dolmetscher - Voice Translation Terminal Client
// ============================================================================
//
// Package:     translator
// Description: Terminal UI for speech and text translation
// Author:      Mike Stoffels
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package translator

import (
	"context"
	"errors"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/msto63/dolmetscher/internal/orchestrator"
	"github.com/msto63/dolmetscher/internal/recognition"
	"github.com/msto63/dolmetscher/internal/translation"
	"github.com/msto63/dolmetscher/pkg/core/health"
	"github.com/msto63/dolmetscher/pkg/core/logging"
)

const (
	noticeDuration = 3 * time.Second
	healthTimeout  = 3 * time.Second
)

// Tab selects the lower panel
type Tab int

const (
	TabHistory Tab = iota
	TabStats
)

// Speaker speaks text and reports its engine
type Speaker interface {
	orchestrator.Speaker
	EngineName() string
}

// Config holds the collaborators of the TUI
type Config struct {
	Translator orchestrator.Translator
	Recognizer *recognition.Controller
	Speaker    Speaker
	// Health is optional; without it the status bar shows no service state
	Health     *health.Registry
	SourceLang string
	TargetLang string
	// Hotkey registers the global listening toggle where supported
	Hotkey bool
	Logger *logging.Logger
}

// Model is the bubbletea model of the translator
type Model struct {
	orch       *orchestrator.Orchestrator
	recognizer *recognition.Controller
	speaker    Speaker
	health     *health.Registry
	logger     *logging.Logger
	copy       func(string) error
	ctx        context.Context

	textarea textarea.Model
	spinner  spinner.Model
	viewport viewport.Model

	tab Tab

	// Language picker
	pickerOpen  bool
	pickerSide  orchestrator.Side
	pickerIndex int

	report     *health.Report
	noticeSeq  int
	lastNotice string
	spinning   bool

	width  int
	height int
	ready  bool
}

// New creates a new translator model
func New(cfg Config) Model {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.New("tui")
	}

	recognizer := cfg.Recognizer
	if recognizer == nil {
		recognizer = recognition.NewController(nil, recognition.ControllerConfig{})
	}

	var speaker orchestrator.Speaker
	if cfg.Speaker != nil {
		speaker = cfg.Speaker
	}

	orch := orchestrator.New(cfg.Translator, speaker, orchestrator.Options{
		SourceLang:           cfg.SourceLang,
		TargetLang:           cfg.TargetLang,
		RecognitionAvailable: recognizer.Available(),
	}).WithLogger(logger)

	// Setup textarea
	ta := textarea.New()
	ta.Placeholder = "Type or speak text to translate... (Enter to translate, Alt+Enter for a new line)"
	ta.Focus()
	ta.CharLimit = 5000
	ta.SetWidth(80)
	ta.SetHeight(4)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()

	// Setup spinner
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	return Model{
		orch:       orch,
		recognizer: recognizer,
		speaker:    cfg.Speaker,
		health:     cfg.Health,
		logger:     logger,
		copy:       clipboard.WriteAll,
		ctx:        context.Background(),
		textarea:   ta,
		spinner:    sp,
		tab:        TabHistory,
	}
}

// State returns the orchestrator state the view renders
func (m Model) State() orchestrator.State {
	return m.orch.State()
}

// Init loads languages, history and stats and starts listening for
// recognizer notifications
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textarea.Blink,
		m.orch.Init(),
	}
	if m.recognizer.Available() {
		cmds = append(cmds, m.waitForRecognition())
	}
	if m.health != nil {
		cmds = append(cmds, m.checkHealth)
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		viewportHeight := msg.Height - fixedHeight
		if viewportHeight < 3 {
			viewportHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, viewportHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = viewportHeight
		}
		m.textarea.SetWidth(msg.Width - 6)

	case spinner.TickMsg:
		if m.orch.State().Loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		} else {
			m.spinning = false
		}

	case recognitionMsg:
		events := m.recognizer.Handle(msg.notification)
		for _, ev := range orchestrator.FromRecognition(events) {
			cmds = append(cmds, m.orch.Update(ev))
		}
		cmds = append(cmds, m.waitForRecognition())

	case listenStartedMsg:
		cmds = append(cmds, m.listenStarted(msg.err))

	case toggleListeningMsg:
		if m.orch.State().Listening {
			cmds = append(cmds, m.stopListening())
		} else {
			cmds = append(cmds, m.startListening())
		}

	case healthMsg:
		m.report = msg.report

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.orch.DismissNotice()
		}

	default:
		cmds = append(cmds, m.orch.Update(msg))
	}

	return m.sync(cmds)
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pickerOpen {
		return m.handlePickerKey(msg)
	}

	var cmds []tea.Cmd
	state := m.orch.State()

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.orch.DismissNotice()

	case "enter":
		cmds = append(cmds, m.orch.Update(orchestrator.ManualTranslateRequested{}))

	case "alt+enter":
		m.textarea.InsertString("\n")
		cmds = append(cmds, m.orch.Update(orchestrator.InputChanged{Text: m.textarea.Value()}))

	case "ctrl+r":
		cmds = append(cmds, m.startListening())

	case "ctrl+s":
		cmds = append(cmds, m.stopListening())

	case "ctrl+w":
		cmds = append(cmds, m.orch.Update(orchestrator.SwapRequested{}))

	case "ctrl+l":
		cmds = append(cmds, m.orch.Update(orchestrator.ClearRequested{}))

	case "ctrl+y":
		cmds = append(cmds, m.copyOutput(state.Output))

	case "ctrl+p":
		cmds = append(cmds, m.orch.Update(orchestrator.SpeakRequested{}))

	case "ctrl+d":
		cmds = append(cmds, m.orch.Update(orchestrator.DetectRequested{}))

	case "tab":
		if m.tab == TabHistory {
			m.tab = TabStats
		} else {
			m.tab = TabHistory
		}
		m.viewport.GotoTop()

	case "ctrl+o":
		m.openPicker(orchestrator.SideSource)

	case "ctrl+g":
		m.openPicker(orchestrator.SideTarget)

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)

	default:
		before := m.textarea.Value()
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
		if after := m.textarea.Value(); after != before {
			cmds = append(cmds, m.orch.Update(orchestrator.InputChanged{Text: after}))
		}
	}

	return m.sync(cmds)
}

// handlePickerKey navigates the language picker
func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	options := m.pickerOptions()

	switch msg.Type {
	case tea.KeyUp:
		if m.pickerIndex > 0 {
			m.pickerIndex--
		}
		return m, nil

	case tea.KeyDown:
		if m.pickerIndex < len(options)-1 {
			m.pickerIndex++
		}
		return m, nil

	case tea.KeyEnter:
		m.pickerOpen = false
		if m.pickerIndex < len(options) {
			cmd := m.orch.Update(orchestrator.LanguageSelected{
				Side: m.pickerSide,
				Code: options[m.pickerIndex].Code,
			})
			return m.sync([]tea.Cmd{cmd})
		}
		return m, nil

	case tea.KeyEsc:
		m.pickerOpen = false
		return m, nil

	case tea.KeyCtrlC:
		return m, tea.Quit
	}
	return m, nil
}

// openPicker shows the selector for side with the current code highlighted
func (m *Model) openPicker(side orchestrator.Side) {
	m.pickerOpen = true
	m.pickerSide = side
	m.pickerIndex = 0

	state := m.orch.State()
	current := state.SourceLang
	if side == orchestrator.SideTarget {
		current = state.TargetLang
	}
	for i, lang := range m.pickerOptions() {
		if lang.Code == current {
			m.pickerIndex = i
			break
		}
	}
}

// pickerOptions lists the selectable languages of the open side. The
// target side never offers auto detection.
func (m Model) pickerOptions() translation.Languages {
	langs := m.orch.State().Languages
	if m.pickerSide == orchestrator.SideSource {
		return langs
	}
	out := make(translation.Languages, 0, len(langs))
	for _, lang := range langs {
		if lang.Code != translation.AutoDetect {
			out = append(out, lang)
		}
	}
	return out
}

// sync mirrors orchestrator state into the widgets after every message
func (m Model) sync(cmds []tea.Cmd) (tea.Model, tea.Cmd) {
	state := m.orch.State()

	if m.textarea.Value() != state.Input {
		m.textarea.SetValue(state.Input)
	}

	if state.Notice != m.lastNotice {
		m.lastNotice = state.Notice
		if state.Notice != "" {
			m.noticeSeq++
			seq := m.noticeSeq
			cmds = append(cmds, tea.Tick(noticeDuration, func(time.Time) tea.Msg {
				return noticeExpiredMsg{seq: seq}
			}))
		}
	}

	if state.Loading && !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	}

	if m.ready {
		m.viewport.SetContent(m.panelContent(state))
	}

	return m, tea.Batch(cmds...)
}

// startListening starts a session off the event loop. Start may block
// while the engine opens its device or connection.
func (m Model) startListening() tea.Cmd {
	if !m.orch.State().CanStartListening() {
		return nil
	}
	recognizer := m.recognizer
	ctx := m.ctx
	return func() tea.Msg {
		return listenStartedMsg{err: recognizer.Start(ctx)}
	}
}

// listenStarted reports the outcome of startListening
func (m Model) listenStarted(err error) tea.Cmd {
	switch {
	case err == nil:
		// The session may already have failed and ended before this
		// message arrived
		if !m.recognizer.Listening() {
			m.logger.Debug("Recognition ended before start was reported")
			return nil
		}
		return m.orch.Update(orchestrator.RecognitionStarted{})
	case errors.Is(err, recognition.ErrAlreadyListening):
		return nil
	default:
		m.logger.Error("Failed to start recognition", "engine", m.recognizer.EngineName(), "error", err)
		return m.orch.Update(orchestrator.RecognitionFailed{Code: startFailureCode(m.recognizer.EngineName())})
	}
}

// startFailureCode maps a failed start to the code a running engine
// would have reported
func startFailureCode(engine string) string {
	if engine == "stream" {
		return recognition.CodeNetwork
	}
	return recognition.CodeAudioCapture
}

// stopListening ends the session. The end notification arrives later
// through waitForRecognition.
func (m Model) stopListening() tea.Cmd {
	if !m.orch.State().CanStopListening() {
		return nil
	}
	if err := m.recognizer.Stop(); err != nil {
		m.logger.Warn("Failed to stop recognition", "error", err)
	}
	return m.orch.Update(orchestrator.RecognitionStopped{})
}

// waitForRecognition blocks for the next recognizer notification
func (m Model) waitForRecognition() tea.Cmd {
	ch := m.recognizer.Notifications()
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return recognitionMsg{notification: n}
	}
}

// copyOutput writes text to the system clipboard
func (m Model) copyOutput(text string) tea.Cmd {
	write := m.copy
	return func() tea.Msg {
		return orchestrator.CopyCompleted{Err: write(text)}
	}
}

// checkHealth runs the reachability checks once
func (m Model) checkHealth() tea.Msg {
	return healthMsg{report: m.health.CheckWithTimeout(healthTimeout)}
}

// Run starts the translator TUI and blocks until the user quits
func Run(cfg Config) error {
	m := New(cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if cfg.Hotkey {
		stop, err := registerHotkey(p, m.logger)
		if err != nil {
			m.logger.Warn("Failed to register hotkey", "error", err)
		} else {
			defer stop()
		}
	}

	_, err := p.Run()
	m.recognizer.Close()
	return err
}
