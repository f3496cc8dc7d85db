package registry

import "github.com/sirupsen/logrus"

// Logger is the small structured-logging surface CachedService logs
// through, so callers can plug in whatever logger their application
// already uses.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// logrusLogger is the Logger NewLogrusLogger returns, backed by
// github.com/sirupsen/logrus. It is not installed by default; see noopLogger.
type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger wraps a *logrus.Logger (or nil, for logrus's default
// singleton) as a Logger.
func NewLogrusLogger(l *logrus.Logger) Logger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &logrusLogger{entry: logrus.NewEntry(l).WithField("component", "avroregistry")}
}

func (l *logrusLogger) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l *logrusLogger) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *logrusLogger) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }

// noopLogger discards everything; it is the zero-value default so
// CachedService never needs a nil check on the hot path.
type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}
func (noopLogger) Errorf(string, ...any) {}
