// Package events defines domain events and a synchronous in-process bus.
//
// Editing a product's BOM wastage settings does not rewrite open orders
// inline; the product service publishes ProductWastageChanged and the order
// projector consumes it. The propagation step is idempotent, so replaying
// the event is harmless.
package events

import (
	"context"
	"time"

	"stitchstock/internal/core/id"
	"stitchstock/pkg/logger"
)

// ProductWastageChanged signals that a product's BOM wastage percentages
// were edited. Open orders on that product need their standard wastage
// recomputed.
type ProductWastageChanged struct {
	ProductID  id.ID
	OccurredAt time.Time
}

// ProductWastageHandler consumes ProductWastageChanged events.
type ProductWastageHandler interface {
	HandleProductWastageChanged(ctx context.Context, evt ProductWastageChanged) error
}

// Bus dispatches events synchronously to registered handlers.
// The engine is request-scoped; there is no queueing or background delivery.
type Bus struct {
	wastageHandlers []ProductWastageHandler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// SubscribeProductWastageChanged registers a handler.
func (b *Bus) SubscribeProductWastageChanged(h ProductWastageHandler) {
	b.wastageHandlers = append(b.wastageHandlers, h)
}

// PublishProductWastageChanged delivers the event to all handlers.
// Handler errors are logged and do not propagate to the publisher: the
// product edit has already committed, and each handler is responsible for
// its own per-order error isolation.
func (b *Bus) PublishProductWastageChanged(ctx context.Context, evt ProductWastageChanged) {
	for _, h := range b.wastageHandlers {
		if err := h.HandleProductWastageChanged(ctx, evt); err != nil {
			logger.Error(ctx, "product wastage handler failed",
				"product_id", evt.ProductID,
				"error", err,
			)
		}
	}
}

// WastagePublisher is the narrow publishing interface the product service
// depends on.
type WastagePublisher interface {
	PublishProductWastageChanged(ctx context.Context, evt ProductWastageChanged)
}

var _ WastagePublisher = (*Bus)(nil)
