package common

import (
	"github.com/rs/zerolog/log"
)

// Logger is the logging capability accepted by library entry points. Callers
// embedding the library in a larger pipeline inject their own implementation;
// everything else gets the zerolog-backed default.
type Logger interface {
	Info(format string, args ...interface{})
	Error(format string, args ...interface{})
}

type zerologLogger struct{}

func (zerologLogger) Info(format string, args ...interface{}) {
	log.Info().Msgf(format, args...)
}

func (zerologLogger) Error(format string, args ...interface{}) {
	log.Error().Msgf(format, args...)
}

// DefaultLogger returns a Logger backed by the global zerolog logger.
func DefaultLogger() Logger {
	return zerologLogger{}
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// NopLogger returns a Logger that discards everything.
func NopLogger() Logger {
	return nopLogger{}
}
