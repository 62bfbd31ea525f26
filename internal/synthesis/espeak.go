package synthesis

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// espeak defaults the policy is scaled against
const (
	espeakWordsPerMinute = 175
	espeakPitch          = 50
	espeakAmplitude      = 100
)

// espeak voice names that differ from the locale's language subtag
var espeakAliases = map[string]string{
	"zh": "cmn",
}

// ESpeak speaks through the espeak-ng (or espeak) command line tool
type ESpeak struct {
	binary string
	voices map[string]bool
	run    runner
}

// NewESpeak finds espeak-ng or espeak in PATH and reads its voice list
func NewESpeak(ctx context.Context) (*ESpeak, error) {
	binary := lookPath("espeak-ng", "espeak")
	if binary == "" {
		return nil, fmt.Errorf("espeak-ng not found in PATH")
	}

	e := &ESpeak{binary: binary, run: execRunner}
	if out, err := e.run(ctx, binary, []string{"--voices"}, ""); err == nil {
		e.voices = parseESpeakVoices(out)
	}
	return e, nil
}

// Name returns the engine name
func (e *ESpeak) Name() string {
	return "espeak"
}

// Speak speaks one utterance and waits for it to finish
func (e *ESpeak) Speak(ctx context.Context, u Utterance) error {
	_, err := e.run(ctx, e.binary, e.args(u), u.Text)
	return err
}

func (e *ESpeak) args(u Utterance) []string {
	return []string{
		"-v", e.voiceFor(u.Locale),
		"-s", strconv.Itoa(int(espeakWordsPerMinute * u.Rate)),
		"-p", strconv.Itoa(int(espeakPitch * u.Pitch)),
		"-a", strconv.Itoa(int(espeakAmplitude * u.Volume)),
		"--stdin",
	}
}

// voiceFor picks the most specific installed voice for a locale
func (e *ESpeak) voiceFor(locale string) string {
	full := strings.ToLower(locale)
	lang := language(full)
	if alias, ok := espeakAliases[lang]; ok {
		lang = alias
	}

	if e.voices == nil {
		return full
	}
	for _, candidate := range []string{full, lang} {
		if e.voices[candidate] {
			return candidate
		}
	}
	return full
}

// parseESpeakVoices reads the language column of `espeak-ng --voices`
func parseESpeakVoices(out []byte) map[string]bool {
	voices := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || fields[0] == "Pty" {
			continue
		}
		voices[strings.ToLower(fields[1])] = true
	}
	return voices
}
