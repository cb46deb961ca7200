package logging

import (
	"context"
	"maps"
	"time"

	"github.com/getsentry/sentry-go"
)

const flushTimeout = 2 * time.Second

// SentryLogger forwards to another Logger and mirrors every entry to Sentry:
// Debug/Info/Warn become breadcrumbs, Error/Fatal capture the error with the
// fields attached as contexts. Without a configured Sentry client it only forwards.
type SentryLogger struct {
	next   Logger
	hub    *sentry.Hub
	fields Fields
}

// NewSentryLogger wraps next, reporting to hub. A nil hub means the current hub.
func NewSentryLogger(next Logger, hub *sentry.Hub) *SentryLogger {
	if next == nil {
		next = &NoOpLogger{}
	}
	return &SentryLogger{
		next:   next,
		hub:    hub,
		fields: make(Fields),
	}
}

func (s *SentryLogger) currentHub() *sentry.Hub {
	if s.hub != nil {
		return s.hub
	}
	return sentry.CurrentHub()
}

func (s *SentryLogger) merged(fields []Fields) map[string]any {
	data := make(map[string]any, len(s.fields))
	maps.Copy(data, s.fields)
	for _, f := range fields {
		maps.Copy(data, f)
	}
	return data
}

func (s *SentryLogger) breadcrumb(kind string, level sentry.Level, msg string, fields []Fields) {
	hub := s.currentHub()
	if hub.Client() == nil {
		return
	}
	hub.AddBreadcrumb(&sentry.Breadcrumb{
		Type:     kind,
		Category: "log",
		Message:  msg,
		Data:     s.merged(fields),
		Level:    level,
	}, nil)
}

func (s *SentryLogger) capture(err error, level sentry.Level, msg string, fields []Fields) {
	hub := s.currentHub()
	if hub.Client() == nil || err == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(level)
		scope.SetTag("message", msg)
		for key, value := range s.merged(fields) {
			scope.SetContext(key, sentry.Context{"value": value})
		}
		if component, ok := s.fields["component"].(string); ok {
			scope.SetTag("component", component)
		}
		hub.CaptureException(err)
	})
}

func (s *SentryLogger) Debug(msg string, fields ...Fields) {
	s.next.Debug(msg, fields...)
	s.breadcrumb("debug", sentry.LevelDebug, msg, fields)
}

func (s *SentryLogger) Info(msg string, fields ...Fields) {
	s.next.Info(msg, fields...)
	s.breadcrumb("info", sentry.LevelInfo, msg, fields)
}

func (s *SentryLogger) Warn(msg string, fields ...Fields) {
	s.next.Warn(msg, fields...)
	s.breadcrumb("warning", sentry.LevelWarning, msg, fields)
}

func (s *SentryLogger) Error(err error, msg string, fields ...Fields) {
	s.capture(err, sentry.LevelError, msg, fields)
	s.next.Error(err, msg, fields...)
}

// Fatal captures and flushes before handing over, since next may exit
func (s *SentryLogger) Fatal(err error, msg string, fields ...Fields) {
	s.capture(err, sentry.LevelFatal, msg, fields)
	s.currentHub().Flush(flushTimeout)
	s.next.Fatal(err, msg, fields...)
}

func (s *SentryLogger) WithFields(fields Fields) Logger {
	newFields := make(Fields)
	maps.Copy(newFields, s.fields)
	maps.Copy(newFields, fields)

	return &SentryLogger{
		next:   s.next.WithFields(fields),
		hub:    s.hub,
		fields: newFields,
	}
}

func (s *SentryLogger) WithContext(ctx context.Context) Logger {
	if fields := FieldsFromContext(ctx); len(fields) > 0 {
		return s.WithFields(fields)
	}
	return s
}

func (s *SentryLogger) SetLevel(level Level) {
	s.next.SetLevel(level)
}
