//go:build !voice

package translator

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/msto63/dolmetscher/pkg/core/logging"
)

// registerHotkey is a no-op without the voice build tag
func registerHotkey(p *tea.Program, logger *logging.Logger) (func(), error) {
	logger.Debug("Hotkey support not compiled in")
	return func() {}, nil
}
