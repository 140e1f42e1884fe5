// Package logging maps the tool's verbosity levels onto log/slog.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// VerbosityLevel defines the logging verbosity.
type VerbosityLevel int

const (
	Verbose VerbosityLevel = iota
	Info
	Warning
	Error
	Off
)

// ErrInvalidVerbosity is returned for an unknown verbosity name.
var ErrInvalidVerbosity = errors.New("invalid verbosity level")

var levelNames = map[VerbosityLevel]string{
	Verbose: "Verbose",
	Info:    "Info",
	Warning: "Warning",
	Error:   "Error",
	Off:     "Off",
}

func (v VerbosityLevel) String() string {
	if name, ok := levelNames[v]; ok {
		return name
	}
	return fmt.Sprintf("VerbosityLevel(%d)", int(v))
}

// ParseVerbosityLevel accepts the level names case-insensitively.
func ParseVerbosityLevel(s string) (VerbosityLevel, error) {
	for level, name := range levelNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return level, nil
		}
	}
	return Info, fmt.Errorf("%w %q: valid levels are Verbose, Info, Warning, Error, Off", ErrInvalidVerbosity, s)
}

// SlogLevel returns the minimum slog level logged at this verbosity.
func (v VerbosityLevel) SlogLevel() slog.Level {
	switch v {
	case Verbose:
		return slog.LevelDebug
	case Warning:
		return slog.LevelWarn
	case Error, Off:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLogger builds a text logger writing to w. At Off nothing is written.
func NewLogger(w io.Writer, v VerbosityLevel) *slog.Logger {
	if v == Off {
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: v.SlogLevel()}))
}

// Configure installs NewLogger(w, v) as the slog default logger.
func Configure(w io.Writer, v VerbosityLevel) {
	slog.SetDefault(NewLogger(w, v))
}
