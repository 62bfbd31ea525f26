package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/msto63/dolmetscher/internal/tui/translator"
)

var (
	cfgFile     string
	verbose     bool
	serviceURL  string
	sourceLang  string
	targetLang  string
	recognizer  string
	synthesizer string
)

var rootCmd = &cobra.Command{
	Use:   "dolmetscher",
	Short: "Dolmetscher - speech and text translation in the terminal",
	Long: `Dolmetscher translates typed or spoken text through a remote
translation service and reads translations of speech aloud.

Key bindings:
  Enter       Translate the input
  Alt+Enter   New line
  Ctrl+R      Start listening
  Ctrl+S      Stop listening
  Ctrl+W      Swap languages
  Ctrl+O      Source language
  Ctrl+G      Target language
  Ctrl+P      Speak the translation
  Ctrl+Y      Copy the translation
  Ctrl+D      Detect the input language
  Ctrl+L      Clear
  Tab         History / Statistics
  Ctrl+C      Quit`,
	SilenceUsage: true,
	RunE:         runTranslator,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./dolmetscher.toml or ~/.config/dolmetscher/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&serviceURL, "service-url", "", "translation service base URL")
	rootCmd.PersistentFlags().StringVar(&recognizer, "recognizer", "", "speech recognizer: local, stream or none")
	rootCmd.PersistentFlags().StringVar(&synthesizer, "synthesizer", "", "speech synthesizer: auto, espeak, say, piper or none")

	rootCmd.Flags().StringVarP(&sourceLang, "source", "s", "", "source language code (auto to detect)")
	rootCmd.Flags().StringVarP(&targetLang, "target", "t", "", "target language code")
}

func runTranslator(cmd *cobra.Command, args []string) error {
	app, err := setup(cmd)
	if err != nil {
		printError("startup failed", err)
		return err
	}
	defer app.Close()

	return translator.Run(translator.Config{
		Translator: app.Client,
		Recognizer: app.Recognizer,
		Speaker:    app.Speaker,
		Health:     app.Health,
		SourceLang: app.Config.Languages.Source,
		TargetLang: app.Config.Languages.Target,
		Hotkey:     app.Config.Hotkey.Enabled,
		Logger:     app.Logger,
	})
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
}
