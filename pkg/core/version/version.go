// ============================================================================
// Dolmetscher - Voice Translation Terminal Client
// ============================================================================
//
// Package:     version
// Description: Central version management
// Author:      Mike Stoffels
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Version constants
const (
	// Application version
	App = "0.3.0"

	// Name is the product name used in headers and banners
	Name = "dolmetscher"
)

// Build information, set via -ldflags
var (
	GitCommit = "development"
	BuildDate = "unknown"
)

// UserAgent returns the User-Agent sent to remote services
func UserAgent() string {
	return fmt.Sprintf("%s/%s (%s/%s)", Name, App, runtime.GOOS, runtime.GOARCH)
}

// Info returns the multi-line version banner
func Info() string {
	return fmt.Sprintf("%s v%s\n  Git Commit: %s\n  Build Date: %s\n  Go Version: %s\n  OS/Arch:    %s/%s\n",
		Name, App, GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
