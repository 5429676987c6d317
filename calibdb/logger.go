package main

import "log/slog"

// libLogger forwards the messages of the density library to slog.
type libLogger struct {
	l *slog.Logger
}

func (l libLogger) Info(message string, module string) {
	l.l.Info(message, "module", module)
}

func (l libLogger) Warning(message string, module string) {
	l.l.Warn(message, "module", module)
}

func (l libLogger) Error(message string) {
	l.l.Error(message)
}
