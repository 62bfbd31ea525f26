//go:build voice

package translator

import (
	"fmt"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"golang.design/x/hotkey"

	"github.com/msto63/dolmetscher/pkg/core/logging"
)

// registerHotkey toggles listening on Ctrl+Shift+M from anywhere on the
// desktop. On macOS the hotkey library crashes outside the main thread
// run loop, so registration is skipped there.
func registerHotkey(p *tea.Program, logger *logging.Logger) (func(), error) {
	if runtime.GOOS == "darwin" {
		logger.Info("Hotkey disabled on macOS")
		return func() {}, nil
	}

	hk := hotkey.New([]hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeyM)
	if err := hk.Register(); err != nil {
		return nil, fmt.Errorf("failed to register hotkey: %w", err)
	}

	go func() {
		for range hk.Keydown() {
			logger.Debug("Hotkey pressed")
			p.Send(toggleListeningMsg{})
		}
	}()

	logger.Info("Hotkey registered", "shortcut", "Ctrl+Shift+M")
	return func() { _ = hk.Unregister() }, nil
}
