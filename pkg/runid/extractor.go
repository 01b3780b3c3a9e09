package runid

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/statekit/pkg/logger"
)

// LoggerExtractor adds the run ID to every record logged with a tagged context.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if runID := FromContext(ctx); runID != "" {
			return slog.String("run_id", runID), true
		}
		return slog.Attr{}, false
	}
}
