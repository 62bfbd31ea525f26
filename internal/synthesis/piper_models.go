package synthesis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const piperDefaultSampleRate = 22050

// piperModel is an installed Piper voice
type piperModel struct {
	Path       string
	ConfigPath string
	SampleRate int
}

// findPiperModel picks a model from dir for a locale. Model files follow
// Piper's naming, e.g. de_DE-thorsten-medium.onnx. An exact locale match
// wins over a language match; ties resolve alphabetically.
func findPiperModel(dir, locale string) (piperModel, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.onnx"))
	if err != nil {
		return piperModel{}, fmt.Errorf("failed to scan voices: %w", err)
	}
	sort.Strings(matches)

	full := strings.ReplaceAll(locale, "-", "_")
	lang := language(locale)

	pick := ""
	for _, m := range matches {
		prefix, _, _ := strings.Cut(filepath.Base(m), "-")
		if strings.EqualFold(prefix, full) {
			pick = m
			break
		}
		if pick == "" && strings.EqualFold(language(prefix), lang) {
			pick = m
		}
	}
	if pick == "" {
		return piperModel{}, fmt.Errorf("no piper voice for %s in %s", locale, dir)
	}

	model := piperModel{
		Path:       pick,
		ConfigPath: pick + ".json",
		SampleRate: piperDefaultSampleRate,
	}
	if rate, err := readPiperSampleRate(model.ConfigPath); err == nil && rate > 0 {
		model.SampleRate = rate
	}
	return model, nil
}

func readPiperSampleRate(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var cfg struct {
		Audio struct {
			SampleRate int `json:"sample_rate"`
		} `json:"audio"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg.Audio.SampleRate, nil
}

// piperArgs builds the command line for one utterance. Piper has no pitch
// control; rate maps to the inverse length scale.
func piperArgs(model piperModel, u Utterance) []string {
	args := []string{
		"--model", model.Path,
		"--output_raw",
	}
	if _, err := os.Stat(model.ConfigPath); err == nil {
		args = append(args, "--config", model.ConfigPath)
	}
	if u.Rate > 0 {
		args = append(args, "--length_scale", fmt.Sprintf("%.2f", 1/u.Rate))
	}
	return args
}
