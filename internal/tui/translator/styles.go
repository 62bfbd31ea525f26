// ============================================================================
// Dolmetscher - Voice Translation Terminal Client
// ============================================================================
//
// Package:     translator
// Description: Styles for the translator TUI
// Author:      Mike Stoffels
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package translator

import (
	"github.com/charmbracelet/lipgloss"
)

// Color Palette
var (
	ColorPrimary   = lipgloss.Color("#8B5CF6") // Violet
	ColorSecondary = lipgloss.Color("#06B6D4") // Cyan
	ColorAccent    = lipgloss.Color("#F59E0B") // Amber
	ColorSuccess   = lipgloss.Color("#10B981") // Emerald
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorDimmed    = lipgloss.Color("#374151") // Dark Gray

	ColorBgPanel    = lipgloss.Color("#1E293B") // Slate 800
	ColorBgSelected = lipgloss.Color("#3B0764") // Purple 950

	ColorText      = lipgloss.Color("#F8FAFC") // Slate 50
	ColorTextMuted = lipgloss.Color("#94A3B8") // Slate 400
	ColorTextDim   = lipgloss.Color("#64748B") // Slate 500
)

// Header styles
var (
	LogoStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	LanguagePairStyle = lipgloss.NewStyle().
				Foreground(ColorSecondary).
				Bold(true)

	SubHeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true)
)

// Panel styles
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDimmed).
			Padding(0, 1)

	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary).
				Padding(0, 1)

	PanelTitleStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Bold(true)

	OutputTextStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	PlaceholderStyle = lipgloss.NewStyle().
				Foreground(ColorTextDim).
				Italic(true)

	CounterStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)

	DetectedStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Italic(true)

	PronunciationStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Italic(true)
)

// Speech status styles
var (
	ListeningStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	SpeechStatusStyle = lipgloss.NewStyle().
				Foreground(ColorTextMuted)

	SpeechErrorStyle = lipgloss.NewStyle().
				Foreground(ColorError)

	DisabledStyle = lipgloss.NewStyle().
			Foreground(ColorDimmed).
			Strikethrough(true)
)

// Tab styles
var (
	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Background(ColorBgSelected).
			Bold(true).
			Padding(0, 2)

	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(ColorTextMuted).
				Padding(0, 2)

	HistoryOriginalStyle = lipgloss.NewStyle().
				Foreground(ColorText)

	HistoryTranslatedStyle = lipgloss.NewStyle().
				Foreground(ColorSecondary)

	HistoryTimeStyle = lipgloss.NewStyle().
				Foreground(ColorTextDim)
)

// Language picker styles
var (
	PickerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1)

	PickerItemStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Padding(0, 1)

	SelectedPickerItemStyle = lipgloss.NewStyle().
				Foreground(ColorText).
				Background(ColorBgSelected).
				Bold(true).
				Padding(0, 1)
)

// Status bar styles
var (
	StatusBarStyle = lipgloss.NewStyle().
			Background(ColorBgPanel).
			Foreground(ColorText).
			Padding(0, 1)

	StatusOnlineStyle = lipgloss.NewStyle().
				Foreground(ColorSuccess).
				Bold(true)

	StatusOfflineStyle = lipgloss.NewStyle().
				Foreground(ColorError).
				Bold(true)

	StatusDegradedStyle = lipgloss.NewStyle().
				Foreground(ColorAccent)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)
)

// Help styles
var (
	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			MarginTop(1)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)
)

// Loading styles
var (
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary)

	LoadingStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true)
)

// Icons
const (
	IconMic      = "● "
	IconMicOff   = "○ "
	IconOnline   = "● "
	IconOffline  = "○ "
	IconArrow    = " → "
	IconSelected = "› "
)

// Logo
const Logo = "Dolmetscher"

// RenderKeyHint renders a keyboard shortcut hint. Disabled hints are
// struck through.
func RenderKeyHint(key, description string, enabled bool) string {
	if !enabled {
		return DisabledStyle.Render(key + " " + description)
	}
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(description)
}
