// Package detector provides environment detection for log output selection.
package detector

import (
	"os"

	"golang.org/x/term"
)

// OutputMode represents the log rendering mode for the application.
type OutputMode int

const (
	// ModeAuto automatically detects the appropriate mode.
	ModeAuto OutputMode = iota
	// ModePretty forces human-readable, styled log lines.
	ModePretty
	// ModeJSON forces machine-readable JSON log lines.
	ModeJSON
)

// DetectEnvironment returns the recommended output mode based on the
// environment. Logs go to stderr, so the TTY check is performed there.
// CI environments get JSON output regardless of the terminal.
func DetectEnvironment() OutputMode {
	isTTY := term.IsTerminal(int(os.Stderr.Fd()))

	ci := os.Getenv("CI")
	isCI := ci == "true" || ci == "1"

	if !isTTY || isCI {
		return ModeJSON
	}
	return ModePretty
}

// ResolveMode applies a user override to auto-detection.
// userFlag should be one of: "auto", "pretty", "json", or empty.
func ResolveMode(autoDetected OutputMode, userFlag string) OutputMode {
	switch userFlag {
	case "pretty":
		return ModePretty
	case "json":
		return ModeJSON
	default:
		return autoDetected
	}
}
