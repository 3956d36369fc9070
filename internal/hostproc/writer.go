package hostproc

import (
	"log/slog"
	"strings"
)

// LogWriter logs every line the host writes to stderr.
type LogWriter struct {
	log *slog.Logger
}

func NewLogWriter(log *slog.Logger) *LogWriter {
	return &LogWriter{
		log: log,
	}
}

func (lw *LogWriter) Write(p []byte) (n int, err error) {
	for _, s := range strings.Split(string(p), "\n") {
		if s == "" {
			continue
		}
		lw.log.Info("Host output", "line", s)
	}
	return len(p), nil
}
