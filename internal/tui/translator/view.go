package translator

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/msto63/dolmetscher/internal/orchestrator"
	"github.com/msto63/dolmetscher/internal/translation"
	"github.com/msto63/dolmetscher/pkg/core/health"
	"github.com/msto63/dolmetscher/pkg/core/version"
)

// fixedHeight is the number of rows used by everything except the
// history/stats viewport
const fixedHeight = 26

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Starting Dolmetscher..."
	}

	state := m.orch.State()
	var b strings.Builder

	b.WriteString(m.renderHeader(state))
	b.WriteString("\n")

	if m.pickerOpen {
		b.WriteString(m.renderPicker(state))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderInputArea(state))
		b.WriteString("\n")
		b.WriteString(m.renderOutputArea(state))
		b.WriteString("\n")
		b.WriteString(m.renderSpeechStatus(state))
		b.WriteString("\n")
		b.WriteString(m.renderTabs())
		b.WriteString("\n")
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
	}

	if state.Notice != "" {
		b.WriteString(NoticeStyle.Render(state.Notice))
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatusBar(state))
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar(state))

	return b.String()
}

// renderHeader renders the logo and the selected language pair
func (m Model) renderHeader(state orchestrator.State) string {
	logo := LogoStyle.Render(Logo)
	pair := LanguagePairStyle.Render(
		languageName(state.Languages, state.SourceLang) + IconArrow + languageName(state.Languages, state.TargetLang),
	)
	return logo + "  " + pair
}

// renderInputArea renders the input text with its counter
func (m Model) renderInputArea(state orchestrator.State) string {
	title := PanelTitleStyle.Render("Source: " + languageName(state.Languages, state.SourceLang))
	counter := CounterStyle.Render(characterCount(state.InputCount))

	content := lipgloss.JoinVertical(lipgloss.Left, title, m.textarea.View(), counter)
	return FocusedPanelStyle.Width(m.panelWidth()).Render(content)
}

// renderOutputArea renders the translation, the detected source language
// and the pronunciation
func (m Model) renderOutputArea(state orchestrator.State) string {
	title := PanelTitleStyle.Render("Translation: " + languageName(state.Languages, state.TargetLang))

	lines := []string{title}
	switch {
	case state.Loading:
		lines = append(lines, m.spinner.View()+" "+LoadingStyle.Render("Translating..."))
	case state.Output == "":
		lines = append(lines, PlaceholderStyle.Render("Translation will appear here"))
	default:
		lines = append(lines, OutputTextStyle.Width(m.panelWidth()-4).Render(state.Output))
	}

	if state.DetectedLabel != "" {
		lines = append(lines, DetectedStyle.Render(state.DetectedLabel))
	}
	if state.Pronunciation != "" {
		lines = append(lines, PronunciationStyle.Render(state.Pronunciation))
	}
	lines = append(lines, CounterStyle.Render(characterCount(state.OutputCount)))

	return PanelStyle.Width(m.panelWidth()).Render(strings.Join(lines, "\n"))
}

// renderSpeechStatus renders the recognition status line
func (m Model) renderSpeechStatus(state orchestrator.State) string {
	switch {
	case state.Listening:
		return ListeningStyle.Render(IconMic + state.Status)
	case strings.HasPrefix(state.Status, "Error: "):
		return SpeechErrorStyle.Render(IconMicOff + state.Status)
	default:
		return SpeechStatusStyle.Render(IconMicOff + state.Status)
	}
}

// renderTabs renders the history/stats tab row
func (m Model) renderTabs() string {
	history := InactiveTabStyle.Render("History")
	stats := InactiveTabStyle.Render("Statistics")
	if m.tab == TabHistory {
		history = ActiveTabStyle.Render("History")
	} else {
		stats = ActiveTabStyle.Render("Statistics")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, history, stats)
}

// panelContent renders the body of the active tab
func (m Model) panelContent(state orchestrator.State) string {
	if m.tab == TabStats {
		return renderStats(state.Stats)
	}
	return renderHistory(state.History, state.Languages)
}

// renderPicker renders the language selector
func (m Model) renderPicker(state orchestrator.State) string {
	title := "Source language"
	if m.pickerSide == orchestrator.SideTarget {
		title = "Target language"
	}

	options := m.pickerOptions()
	var b strings.Builder
	b.WriteString(PanelTitleStyle.Render(title))
	b.WriteString("\n")

	if len(options) == 0 {
		b.WriteString(PlaceholderStyle.Render("No languages loaded"))
		return PickerStyle.Render(b.String())
	}

	// Keep the selection visible in a window of rows
	rows := m.height - 10
	if rows < 5 {
		rows = 5
	}
	start := 0
	if m.pickerIndex >= rows {
		start = m.pickerIndex - rows + 1
	}
	end := start + rows
	if end > len(options) {
		end = len(options)
	}

	for i := start; i < end; i++ {
		label := fmt.Sprintf("%s (%s)", options[i].Name, options[i].Code)
		if i == m.pickerIndex {
			b.WriteString(SelectedPickerItemStyle.Render(IconSelected + label))
		} else {
			b.WriteString(PickerItemStyle.Render("  " + label))
		}
		b.WriteString("\n")
	}

	return PickerStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// renderStatusBar renders engines, service reachability and version
func (m Model) renderStatusBar(state orchestrator.State) string {
	recognizer := "Recognizer: " + m.recognizer.EngineName()

	synthesizer := "Speech output: unavailable"
	if m.speaker != nil && m.speaker.Available() {
		synthesizer = "Speech output: " + m.speaker.EngineName()
	}

	left := HelpDescStyle.Render(recognizer + "  " + synthesizer)
	center := HelpDescStyle.Render("v" + version.App)
	right := m.renderServiceStatus()

	available := m.width - lipgloss.Width(left) - lipgloss.Width(center) - lipgloss.Width(right) - 4
	if available < 2 {
		available = 2
	}
	leftPadding := available / 2
	rightPadding := available - leftPadding

	content := left + strings.Repeat(" ", leftPadding) + center + strings.Repeat(" ", rightPadding) + right
	return StatusBarStyle.Width(m.width - 2).Render(content)
}

// renderServiceStatus renders the startup health of the translation service
func (m Model) renderServiceStatus() string {
	if m.report == nil {
		return HelpDescStyle.Render("Service: checking")
	}
	result, ok := m.report.Result(CheckService)
	if !ok {
		return HelpDescStyle.Render("Service: unknown")
	}
	switch result.Status {
	case health.StatusHealthy:
		return StatusOnlineStyle.Render(IconOnline + "Service online")
	case health.StatusDegraded:
		return StatusDegradedStyle.Render(IconOnline + "Service degraded")
	default:
		return StatusOfflineStyle.Render(IconOffline + "Service offline")
	}
}

// renderHelpBar renders the key bindings. Unavailable actions are struck
// through.
func (m Model) renderHelpBar(state orchestrator.State) string {
	var items []string

	if m.pickerOpen {
		items = []string{
			RenderKeyHint("↑/↓", "navigate", true),
			RenderKeyHint("Enter", "select", true),
			RenderKeyHint("Esc", "close", true),
		}
	} else {
		speakEnabled := m.speaker != nil && m.speaker.Available()
		items = []string{
			RenderKeyHint("Enter", "translate", true),
			RenderKeyHint("Ctrl+R", "listen", state.CanStartListening()),
			RenderKeyHint("Ctrl+S", "stop", state.CanStopListening()),
			RenderKeyHint("Ctrl+W", "swap", true),
			RenderKeyHint("Ctrl+O/G", "languages", true),
			RenderKeyHint("Ctrl+P", "speak", speakEnabled),
			RenderKeyHint("Ctrl+Y", "copy", true),
			RenderKeyHint("Ctrl+D", "detect", true),
			RenderKeyHint("Ctrl+L", "clear", true),
			RenderKeyHint("Tab", "history/stats", true),
			RenderKeyHint("Ctrl+C", "quit", true),
		}
	}

	return HelpStyle.Width(m.width).Render(strings.Join(items, "  "))
}

func (m Model) panelWidth() int {
	if m.width < 20 {
		return 18
	}
	return m.width - 2
}

// renderHistory renders recent translations, newest first as delivered
func renderHistory(entries []translation.HistoryEntry, langs translation.Languages) string {
	if len(entries) == 0 {
		return PlaceholderStyle.Render("No translations yet")
	}

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(HistoryOriginalStyle.Render("From: " + e.OriginalText))
		b.WriteString("\n")
		b.WriteString(HistoryTranslatedStyle.Render("To: " + e.TranslatedText))
		b.WriteString("\n")

		meta := "Translated at: " + e.Timestamp
		if e.SourceLang != "" && e.TargetLang != "" {
			meta += fmt.Sprintf(" (%s%s%s)", languageName(langs, e.SourceLang), IconArrow, languageName(langs, e.TargetLang))
		}
		b.WriteString(HistoryTimeStyle.Render(meta))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderStats renders usage statistics
func renderStats(stats translation.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total translations: %d\n", stats.TotalTranslations)

	b.WriteString("\nMost used source languages:\n")
	writeCounts(&b, stats.MostUsedSourceLanguages)

	b.WriteString("\nMost used target languages:\n")
	writeCounts(&b, stats.MostUsedTargetLanguages)

	return strings.TrimRight(b.String(), "\n")
}

func writeCounts(b *strings.Builder, counts []translation.LanguageCount) {
	if len(counts) == 0 {
		b.WriteString("  none\n")
		return
	}
	for _, c := range counts {
		fmt.Fprintf(b, "  %s: %d times\n", c.Code, c.Count)
	}
}

// languageName returns the display name of code, with a readable label
// for auto detection before the list has loaded
func languageName(langs translation.Languages, code string) string {
	if code == translation.AutoDetect && langs.Index(code) < 0 {
		return "Auto-detect"
	}
	return langs.Name(code)
}

func characterCount(n int) string {
	return fmt.Sprintf("%d characters", n)
}
