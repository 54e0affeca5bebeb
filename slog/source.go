package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/mediacat"
)

// Ensure LoggingSource implements mediacat.DocumentSource.
var _ mediacat.DocumentSource = (*LoggingSource)(nil)

// LoggingSource wraps a DocumentSource with logging. Failed loads are
// logged at warn level, successful ones at debug level.
type LoggingSource struct {
	next   mediacat.DocumentSource
	logger *slog.Logger
}

// NewLoggingSource creates a new LoggingSource.
func NewLoggingSource(next mediacat.DocumentSource, logger *slog.Logger) *LoggingSource {
	return &LoggingSource{next: next, logger: logger}
}

// Load delegates to the wrapped source and logs the operation.
func (s *LoggingSource) Load(ctx context.Context, url string) (doc *mediacat.Document, err error) {
	defer func(begin time.Time) {
		level := slog.LevelDebug
		if err != nil {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "load",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Load(ctx, url)
}
