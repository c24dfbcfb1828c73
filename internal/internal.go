// Package internal contains internal implementation details.
package internal

import "github.com/bassosimone/gigevision"

// NullLogger is a [gigevision.Logger] that does not emit logs.
type NullLogger struct{}

// Debug implements gigevision.Logger
func (nl *NullLogger) Debug(message string) {
	// nothing
}

// Debugf implements gigevision.Logger
func (nl *NullLogger) Debugf(format string, v ...any) {
	// nothing
}

// Info implements gigevision.Logger
func (nl *NullLogger) Info(message string) {
	// nothing
}

// Infof implements gigevision.Logger
func (nl *NullLogger) Infof(format string, v ...any) {
	// nothing
}

// Warn implements gigevision.Logger
func (nl *NullLogger) Warn(message string) {
	// nothing
}

// Warnf implements gigevision.Logger
func (nl *NullLogger) Warnf(format string, v ...any) {
	// nothing
}

var _ gigevision.Logger = &NullLogger{}
