package synthesis

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"regexp"
	"runtime"
	"strconv"
	"strings"
)

// sayWordsPerMinute is the natural rate the policy is scaled against
const sayWordsPerMinute = 175

var sayVoiceLine = regexp.MustCompile(`^(.+?)\s+([a-z]{2,3}_[A-Za-z0-9]+)\s+#`)

// Say speaks through the macOS say command
type Say struct {
	voices map[string]string
	run    runner
}

// NewSay checks for say and reads the installed voices once
func NewSay(ctx context.Context) (*Say, error) {
	if runtime.GOOS != "darwin" || lookPath("say") == "" {
		return nil, fmt.Errorf("say is only available on macOS")
	}

	s := &Say{run: execRunner}
	if out, err := s.run(ctx, "say", []string{"-v", "?"}, ""); err == nil {
		s.voices = parseSayVoices(out)
	}
	return s, nil
}

// Name returns the engine name
func (s *Say) Name() string {
	return "say"
}

// Speak speaks one utterance and waits for it to finish
func (s *Say) Speak(ctx context.Context, u Utterance) error {
	_, err := s.run(ctx, "say", s.args(u), "")
	return err
}

func (s *Say) args(u Utterance) []string {
	var args []string
	if voice := s.voiceFor(u.Locale); voice != "" {
		args = append(args, "-v", voice)
	}
	args = append(args, "-r", strconv.Itoa(int(sayWordsPerMinute*u.Rate)))

	// say has no volume flag; the embedded command applies to the whole text
	text := fmt.Sprintf("[[volm %.2f]] %s", u.Volume, u.Text)
	return append(args, text)
}

// voiceFor returns the first voice for the locale, then for its
// language, or "" for the system voice.
func (s *Say) voiceFor(locale string) string {
	key := strings.ReplaceAll(locale, "-", "_")
	if v, ok := s.voices[key]; ok {
		return v
	}
	lang := language(key)
	if v, ok := s.voices[lang]; ok {
		return v
	}
	return ""
}

// parseSayVoices maps locale (en_US) and language (en) to the first
// voice listed by `say -v ?`.
func parseSayVoices(out []byte) map[string]string {
	voices := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		m := sayVoiceLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		name, locale := strings.TrimSpace(m[1]), m[2]
		if _, ok := voices[locale]; !ok {
			voices[locale] = name
		}
		if lang := language(locale); lang != "" {
			if _, ok := voices[lang]; !ok {
				voices[lang] = name
			}
		}
	}
	return voices
}
