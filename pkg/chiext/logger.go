package chiext

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Logger logs every request through the default slog logger.
func Logger() func(next http.Handler) http.Handler {
	return middleware.RequestLogger(&LogFormatter{})
}

// LogFormatter is a middleware.LogFormatter backed by slog. A nil Log uses
// slog.Default at request time.
type LogFormatter struct {
	Log *slog.Logger
}

func (l *LogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	log := l.Log
	if log == nil {
		log = slog.Default()
	}

	attrs := []slog.Attr{slog.String("package", "http")}
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		attrs = append(attrs, slog.String("request", reqID))
	}
	attrs = append(attrs, slog.String("from", r.RemoteAddr))

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	return &logEntry{
		log:   log,
		ctx:   r.Context(),
		attrs: attrs,
		msg:   fmt.Sprintf("%s %s://%s%s %s", r.Method, scheme, r.Host, r.RequestURI, r.Proto),
	}
}

type logEntry struct {
	log   *slog.Logger
	ctx   context.Context
	attrs []slog.Attr
	msg   string
}

func (e *logEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra any) {
	level := slog.LevelDebug
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelInfo
	}

	e.log.LogAttrs(context.WithoutCancel(e.ctx), level, e.msg, append(e.attrs,
		slog.Int("status", status),
		slog.Int("bytes", bytes),
		slog.Duration("elapsed", elapsed),
	)...)
}

func (e *logEntry) Panic(v any, stack []byte) {
	e.log.LogAttrs(context.WithoutCancel(e.ctx), slog.LevelError, "Handler panicked", append(e.attrs,
		slog.Any("panic", v),
		slog.String("stack", string(stack)),
	)...)
}
