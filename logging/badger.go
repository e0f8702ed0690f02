package logging

import (
	"fmt"
	"strings"
)

// BadgerLogger adapts a Logger to the Errorf/Warningf/Infof/Debugf
// interface badger expects. Badger's chatty info output is demoted to debug.
type BadgerLogger struct {
	logger Logger
}

// NewBadgerLogger wraps logger for use as badger.Options.Logger
func NewBadgerLogger(logger Logger) *BadgerLogger {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	return &BadgerLogger{logger: logger}
}

func (b *BadgerLogger) Errorf(format string, args ...any) {
	b.logger.Error(nil, trimFormatted(format, args...))
}

func (b *BadgerLogger) Warningf(format string, args ...any) {
	b.logger.Warn(trimFormatted(format, args...))
}

func (b *BadgerLogger) Infof(format string, args ...any) {
	b.logger.Debug(trimFormatted(format, args...))
}

func (b *BadgerLogger) Debugf(format string, args ...any) {
	b.logger.Debug(trimFormatted(format, args...))
}

func trimFormatted(format string, args ...any) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
