package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "DOLMETSCHER_"

// Config holds the complete application configuration
type Config struct {
	Service     ServiceConfig     `toml:"service" yaml:"service"`
	Languages   LanguagesConfig   `toml:"languages" yaml:"languages"`
	Recognition RecognitionConfig `toml:"recognition" yaml:"recognition"`
	Synthesis   SynthesisConfig   `toml:"synthesis" yaml:"synthesis"`
	Hotkey      HotkeyConfig      `toml:"hotkey" yaml:"hotkey"`
	Logging     LoggingConfig     `toml:"logging" yaml:"logging"`
}

// ServiceConfig describes the remote translation service
type ServiceConfig struct {
	BaseURL string `toml:"base_url" yaml:"base_url"`
	// Timeout of 0 leaves requests without a client-side deadline
	Timeout Duration `toml:"timeout" yaml:"timeout"`
}

// LanguagesConfig holds the initial language selection
type LanguagesConfig struct {
	Source string `toml:"source" yaml:"source"`
	Target string `toml:"target" yaml:"target"`
}

// RecognitionConfig selects and tunes the speech recognizer
type RecognitionConfig struct {
	// Backend is "local", "stream" or "none"
	Backend         string   `toml:"backend" yaml:"backend"`
	Locale          string   `toml:"locale" yaml:"locale"`
	WhisperURL      string   `toml:"whisper_url" yaml:"whisper_url"`
	StreamURL       string   `toml:"stream_url" yaml:"stream_url"`
	InputDevice     string   `toml:"input_device" yaml:"input_device"`
	SampleRate      int      `toml:"sample_rate" yaml:"sample_rate"`
	VADMode         int      `toml:"vad_mode" yaml:"vad_mode"`
	Silence         Duration `toml:"silence" yaml:"silence"`
	MinSpeech       Duration `toml:"min_speech" yaml:"min_speech"`
	InterimInterval Duration `toml:"interim_interval" yaml:"interim_interval"`
}

// SynthesisConfig selects the speech synthesizer
type SynthesisConfig struct {
	// Backend is "auto", "espeak", "say", "piper" or "none"
	Backend     string `toml:"backend" yaml:"backend"`
	PiperBinary string `toml:"piper_binary" yaml:"piper_binary"`
	PiperVoices string `toml:"piper_voices" yaml:"piper_voices"`
}

// HotkeyConfig controls the global listening toggle
type HotkeyConfig struct {
	Enabled bool `toml:"enabled" yaml:"enabled"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
	File   string `toml:"file" yaml:"file"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML or YAML file, then applies
// defaults and DOLMETSCHER_* environment overrides.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	cfg.expandEnvVars()

	return &cfg, nil
}

// LoadFromEnv loads a .env file if present, then the configuration
// named by DOLMETSCHER_CONFIG or found in the default locations. Without
// any file the defaults plus environment overrides are returned.
func LoadFromEnv() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	path := os.Getenv(EnvPrefix + "CONFIG")
	if path == "" {
		for _, p := range DefaultPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		cfg := Default()
		cfg.applyEnv()
		return cfg, nil
	}

	return Load(path)
}

// DefaultPaths lists the locations searched by LoadFromEnv
func DefaultPaths() []string {
	home, _ := os.UserHomeDir()
	return []string{
		"./dolmetscher.toml",
		"./configs/dolmetscher.toml",
		filepath.Join(home, ".config/dolmetscher/config.toml"),
		filepath.Join(home, ".config/dolmetscher/config.yaml"),
	}
}

// loadDotEnv reads KEY=VALUE pairs without overriding the real environment
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// Service
	if c.Service.BaseURL == "" {
		c.Service.BaseURL = "http://localhost:5000"
	}

	// Languages
	if c.Languages.Source == "" {
		c.Languages.Source = "auto"
	}
	if c.Languages.Target == "" {
		c.Languages.Target = "es"
	}

	// Recognition
	if c.Recognition.Backend == "" {
		c.Recognition.Backend = "local"
	}
	if c.Recognition.Locale == "" {
		c.Recognition.Locale = "en-US"
	}
	if c.Recognition.WhisperURL == "" {
		c.Recognition.WhisperURL = "http://localhost:9000"
	}
	if c.Recognition.StreamURL == "" {
		c.Recognition.StreamURL = "ws://localhost:8765/v1/listen"
	}
	if c.Recognition.SampleRate == 0 {
		c.Recognition.SampleRate = 16000
	}
	if c.Recognition.VADMode == 0 {
		c.Recognition.VADMode = 2
	}
	if c.Recognition.Silence.Duration == 0 {
		c.Recognition.Silence.Duration = 1200 * time.Millisecond
	}
	if c.Recognition.MinSpeech.Duration == 0 {
		c.Recognition.MinSpeech.Duration = 300 * time.Millisecond
	}
	if c.Recognition.InterimInterval.Duration == 0 {
		c.Recognition.InterimInterval.Duration = 1500 * time.Millisecond
	}

	// Synthesis
	if c.Synthesis.Backend == "" {
		c.Synthesis.Backend = "auto"
	}

	// Logging
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.File == "" {
		c.Logging.File = filepath.Join(os.TempDir(), "dolmetscher.log")
	}
}

// applyEnv overrides values from DOLMETSCHER_* environment variables
func (c *Config) applyEnv() {
	setString(&c.Service.BaseURL, "SERVICE_URL")
	setDuration(&c.Service.Timeout, "SERVICE_TIMEOUT")
	setString(&c.Languages.Source, "SOURCE_LANG")
	setString(&c.Languages.Target, "TARGET_LANG")
	setString(&c.Recognition.Backend, "RECOGNIZER")
	setString(&c.Recognition.WhisperURL, "WHISPER_URL")
	setString(&c.Recognition.StreamURL, "STREAM_URL")
	setString(&c.Recognition.InputDevice, "INPUT_DEVICE")
	setString(&c.Synthesis.Backend, "SYNTHESIZER")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.File, "LOG_FILE")
	if v, ok := os.LookupEnv(EnvPrefix + "HOTKEY"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Hotkey.Enabled = b
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		*dst = v
	}
}

func setDuration(dst *Duration, key string) {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

// expandEnvVars expands environment variables in path-like values
func (c *Config) expandEnvVars() {
	c.Service.BaseURL = os.ExpandEnv(c.Service.BaseURL)
	c.Synthesis.PiperBinary = os.ExpandEnv(c.Synthesis.PiperBinary)
	c.Synthesis.PiperVoices = os.ExpandEnv(c.Synthesis.PiperVoices)
	c.Logging.File = os.ExpandEnv(c.Logging.File)
}

// Validate checks values that defaults cannot repair
func (c *Config) Validate() error {
	switch c.Recognition.Backend {
	case "local", "stream", "none":
	default:
		return fmt.Errorf("unknown recognition backend: %s", c.Recognition.Backend)
	}
	switch c.Synthesis.Backend {
	case "auto", "espeak", "say", "piper", "none":
	default:
		return fmt.Errorf("unknown synthesis backend: %s", c.Synthesis.Backend)
	}
	if c.Recognition.VADMode < 0 || c.Recognition.VADMode > 3 {
		return fmt.Errorf("vad_mode must be between 0 and 3, got %d", c.Recognition.VADMode)
	}
	if c.Languages.Target == "auto" {
		return fmt.Errorf("target language cannot be auto")
	}
	return nil
}
