package eventbus

import (
	"context"

	"github.com/annel0/voxel-strike/internal/logging"
)

// Forward переправляет события из from в to.
// Ошибки публикации в to логируются и не останавливают пересылку.
func Forward(ctx context.Context, from, to EventBus, f Filter, logger *logging.Logger) (Subscription, error) {
	return from.Subscribe(ctx, f, func(ctx context.Context, ev *Envelope) {
		if err := to.Publish(ctx, ev); err != nil {
			logger.Warn("Event %s (%s) not forwarded: %v", ev.ID, ev.EventType, err)
		}
	})
}
