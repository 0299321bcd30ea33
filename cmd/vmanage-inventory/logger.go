package main

import (
	"github.com/sirupsen/logrus"

	"github.com/lexfrei/go-vmanage/observability"
)

// logrusAdapter bridges a logrus logger to the observability.Logger interface.
type logrusAdapter struct {
	entry *logrus.Entry
}

func newLogrusAdapter(logger *logrus.Logger) *logrusAdapter {
	return &logrusAdapter{entry: logrus.NewEntry(logger)}
}

func toLogrusFields(fields []observability.Field) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for _, field := range fields {
		out[field.Key] = field.Value
	}
	return out
}

func (l *logrusAdapter) Debug(msg string, fields ...observability.Field) {
	l.entry.WithFields(toLogrusFields(fields)).Debug(msg)
}

func (l *logrusAdapter) Info(msg string, fields ...observability.Field) {
	l.entry.WithFields(toLogrusFields(fields)).Info(msg)
}

func (l *logrusAdapter) Warn(msg string, fields ...observability.Field) {
	l.entry.WithFields(toLogrusFields(fields)).Warn(msg)
}

func (l *logrusAdapter) Error(msg string, fields ...observability.Field) {
	l.entry.WithFields(toLogrusFields(fields)).Error(msg)
}

//nolint:ireturn // Method must return interface to satisfy Logger interface
func (l *logrusAdapter) With(fields ...observability.Field) observability.Logger {
	return &logrusAdapter{entry: l.entry.WithFields(toLogrusFields(fields))}
}
