package bunx

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
)

// queryLogger writes executed queries to a logrus logger at debug level.
type queryLogger struct {
	logger logrus.FieldLogger
}

var _ bun.QueryHook = (*queryLogger)(nil)

func (h *queryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *queryLogger) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	entry := h.logger.WithFields(logrus.Fields{
		"operation": event.Operation(),
		"duration":  time.Since(event.StartTime).String(),
	})
	if event.Err != nil {
		entry.WithError(event.Err).Debug(event.Query)
		return
	}
	entry.Debug(event.Query)
}
