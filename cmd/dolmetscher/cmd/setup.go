package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/dolmetscher/internal/recognition"
	"github.com/msto63/dolmetscher/internal/synthesis"
	"github.com/msto63/dolmetscher/internal/translation"
	"github.com/msto63/dolmetscher/internal/tui/translator"
	"github.com/msto63/dolmetscher/pkg/core/config"
	"github.com/msto63/dolmetscher/pkg/core/health"
	"github.com/msto63/dolmetscher/pkg/core/logging"
	"github.com/msto63/dolmetscher/pkg/core/version"
)

// application holds the wired components shared by the commands
type application struct {
	Config     *config.Config
	Logger     *logging.Logger
	Client     *translation.Client
	Recognizer *recognition.Controller
	Speaker    *synthesis.Controller
	Health     *health.Registry
}

// Close stops recognition and synthesis and flushes the log
func (a *application) Close() {
	a.Recognizer.Close()
	a.Speaker.Close()
	_ = logging.Shutdown()
}

// setup loads the configuration and builds every component. Missing
// speech capabilities are logged and leave the controllers without an
// engine.
func setup(cmd *cobra.Command) (*application, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	if err := logging.Configure(logging.LoggerConfig{
		ServiceName: version.Name,
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPath:  cfg.Logging.File,
	}); err != nil {
		return nil, err
	}
	logger := logging.New("app")
	logger.Info("Starting", "version", version.App, "service", cfg.Service.BaseURL)

	client := translation.NewClient(translation.Config{
		BaseURL: cfg.Service.BaseURL,
		Timeout: cfg.Service.Timeout.Duration,
	})

	engine, err := recognition.New(recognition.Options{
		Backend:   cfg.Recognition.Backend,
		StreamURL: cfg.Recognition.StreamURL,
		Local: recognition.LocalConfig{
			Locale:          cfg.Recognition.Locale,
			WhisperURL:      cfg.Recognition.WhisperURL,
			InputDevice:     cfg.Recognition.InputDevice,
			SampleRate:      cfg.Recognition.SampleRate,
			VADMode:         cfg.Recognition.VADMode,
			Silence:         cfg.Recognition.Silence.Duration,
			MinSpeech:       cfg.Recognition.MinSpeech.Duration,
			InterimInterval: cfg.Recognition.InterimInterval.Duration,
		},
	})
	recognitionDetail := cfg.Recognition.Backend
	if err != nil {
		logger.Warn("Speech recognition unavailable", "backend", cfg.Recognition.Backend, "error", err)
		engine = nil
		recognitionDetail = err.Error()
	} else if engine == nil {
		recognitionDetail = "disabled"
	}
	rec := recognition.NewController(engine, recognition.ControllerConfig{Locale: cfg.Recognition.Locale})

	voice, err := synthesis.Detect(context.Background(), synthesis.Options{
		Backend:     cfg.Synthesis.Backend,
		PiperBinary: cfg.Synthesis.PiperBinary,
		PiperVoices: cfg.Synthesis.PiperVoices,
	})
	if err != nil {
		logger.Warn("Speech synthesis unavailable", "backend", cfg.Synthesis.Backend, "error", err)
		voice = nil
	}
	speaker := synthesis.NewController(voice)

	recognizerURL := cfg.Recognition.WhisperURL
	if cfg.Recognition.Backend == "stream" {
		recognizerURL = cfg.Recognition.StreamURL
	}
	reg := translator.NewHealthRegistry(translator.HealthOptions{
		ServiceURL:           cfg.Service.BaseURL,
		RecognizerBackend:    cfg.Recognition.Backend,
		RecognizerURL:        recognizerURL,
		RecognitionAvailable: rec.Available(),
		RecognitionDetail:    recognitionDetail,
		SynthesisAvailable:   speaker.Available(),
		SynthesisDetail:      speaker.EngineName(),
	})

	return &application{
		Config:     cfg,
		Logger:     logger,
		Client:     client,
		Recognizer: rec,
		Speaker:    speaker,
		Health:     reg,
	}, nil
}

// loadConfig reads the configuration file and applies the flags the user
// set explicitly
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("service-url") {
		cfg.Service.BaseURL = serviceURL
	}
	if flags.Changed("source") {
		cfg.Languages.Source = sourceLang
	}
	if flags.Changed("target") {
		cfg.Languages.Target = targetLang
	}
	if flags.Changed("recognizer") {
		cfg.Recognition.Backend = recognizer
	}
	if flags.Changed("synthesizer") {
		cfg.Synthesis.Backend = synthesizer
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
