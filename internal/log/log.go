// Package log defines reposcan's logger interface. By default it uses the Go
// logger but it can be replaced with a user-defined logger.
package log

import golog "log"

// Logger is reposcan's logging interface.
type Logger interface {
	Errorf(format string, args ...any)
	Warnf(format string, args ...any)
	Infof(format string, args ...any)
	Debugf(format string, args ...any)
}

var logger Logger = &DefaultLogger{}

// SetLogger overwrites the default logger with a user specified one.
func SetLogger(l Logger) { logger = l }

// Errorf is the static formatted error logging function.
func Errorf(format string, args ...any) { logger.Errorf(format, args...) }

// Warnf is the static formatted warning logging function.
func Warnf(format string, args ...any) { logger.Warnf(format, args...) }

// Infof is the static formatted info logging function.
func Infof(format string, args ...any) { logger.Infof(format, args...) }

// Debugf is the static formatted debug logging function.
func Debugf(format string, args ...any) { logger.Debugf(format, args...) }

// DefaultLogger writes through the standard library logger. Debug output is
// dropped unless Verbose is set.
type DefaultLogger struct {
	Verbose bool
}

// Errorf implements Logger.
func (l *DefaultLogger) Errorf(format string, args ...any) {
	golog.Printf("ERROR: "+format, args...)
}

// Warnf implements Logger.
func (l *DefaultLogger) Warnf(format string, args ...any) {
	golog.Printf("WARN: "+format, args...)
}

// Infof implements Logger.
func (l *DefaultLogger) Infof(format string, args ...any) {
	golog.Printf(format, args...)
}

// Debugf implements Logger.
func (l *DefaultLogger) Debugf(format string, args ...any) {
	if l.Verbose {
		golog.Printf(format, args...)
	}
}
