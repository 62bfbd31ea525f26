package translator

import (
	"github.com/msto63/dolmetscher/internal/recognition"
	"github.com/msto63/dolmetscher/pkg/core/health"
)

// recognitionMsg carries one engine notification off the controller channel
type recognitionMsg struct {
	notification recognition.Notification
}

// listenStartedMsg reports the outcome of a start request
type listenStartedMsg struct {
	err error
}

// toggleListeningMsg is sent by the global hotkey
type toggleListeningMsg struct{}

// healthMsg carries the startup reachability report
type healthMsg struct {
	report *health.Report
}

// noticeExpiredMsg dismisses the notice it was scheduled for
type noticeExpiredMsg struct {
	seq int
}
