// ============================================================================
// Dolmetscher - Voice Translation Terminal Client
// ============================================================================
//
// Package:     translation
// Description: Wire types of the translation service
// Author:      Mike Stoffels
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package translation

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AutoDetect is the source language code that asks the service to detect
const AutoDetect = "auto"

// Request is the body of POST /api/translate. Text must be non-empty
// after trimming; the client does not re-validate it.
type Request struct {
	Text       string `json:"text"`
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`
}

// Result is a successful translation
type Result struct {
	TranslatedText     string `json:"translatedText"`
	SourceLanguage     string `json:"sourceLanguage,omitempty"`
	SourceLanguageName string `json:"sourceLanguageName"`
	TargetLanguage     string `json:"targetLanguage,omitempty"`
	TargetLanguageName string `json:"targetLanguageName,omitempty"`
	// Pronunciation is empty both when the service omits it and when it
	// sends null or ""; callers treat all three alike.
	Pronunciation string `json:"pronunciation,omitempty"`
}

// translateResponse is the union the service answers with
type translateResponse struct {
	Result
	Pronunciation *string `json:"pronunciation"`
	Error         string  `json:"error"`
}

// Language is one selectable language
type Language struct {
	Code string
	Name string
}

// Languages keeps the order in which the service listed its languages
type Languages []Language

// UnmarshalJSON decodes a code -> name object preserving key order
func (l *Languages) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("languages: expected object, got %v", tok)
	}

	var out Languages
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		code, ok := tok.(string)
		if !ok {
			return fmt.Errorf("languages: expected key, got %v", tok)
		}
		var name string
		if err := dec.Decode(&name); err != nil {
			return fmt.Errorf("languages: value of %q: %w", code, err)
		}
		out = append(out, Language{Code: code, Name: name})
	}

	*l = out
	return nil
}

// Name returns the display name of code, or code itself
func (l Languages) Name(code string) string {
	for _, lang := range l {
		if lang.Code == code {
			return lang.Name
		}
	}
	return code
}

// Index returns the position of code or -1
func (l Languages) Index(code string) int {
	for i, lang := range l {
		if lang.Code == code {
			return i
		}
	}
	return -1
}

// HistoryEntry is one row of GET /api/history
type HistoryEntry struct {
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	Timestamp      string `json:"timestamp"`
	SourceLang     string `json:"source_lang,omitempty"`
	TargetLang     string `json:"target_lang,omitempty"`
}

// LanguageCount is a [code, count] pair of the stats endpoint
type LanguageCount struct {
	Code  string
	Count int
}

// UnmarshalJSON decodes the two-element array form
func (c *LanguageCount) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("language count: expected [code, count], got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &c.Code); err != nil {
		return fmt.Errorf("language count code: %w", err)
	}
	if err := json.Unmarshal(pair[1], &c.Count); err != nil {
		return fmt.Errorf("language count value: %w", err)
	}
	return nil
}

// MarshalJSON encodes the two-element array form
func (c LanguageCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{c.Code, c.Count})
}

// Stats is the body of GET /api/stats
type Stats struct {
	TotalTranslations       int             `json:"total_translations"`
	MostUsedSourceLanguages []LanguageCount `json:"most_used_source_languages"`
	MostUsedTargetLanguages []LanguageCount `json:"most_used_target_languages"`
}

// Detection is the body of POST /api/detect
type Detection struct {
	Language     string  `json:"language"`
	LanguageName string  `json:"language_name"`
	Confidence   float64 `json:"confidence"`
}
