package correlation

import (
	"context"
	"log/slog"
)

// LoggerExtractor returns a logger.ContextExtractor for the correlation id.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := FromContext(ctx); id != "" {
			return slog.String("correlation_id", id), true
		}
		return slog.Attr{}, false
	}
}
