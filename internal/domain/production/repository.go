package production

import (
	"context"

	"stitchstock/internal/core/id"
)

// Repository defines persistence operations for production logs.
type Repository interface {
	Create(ctx context.Context, l *ProductionLog) error
	GetByID(ctx context.Context, logID id.ID) (*ProductionLog, error)
	ListByOrder(ctx context.Context, orderID id.ID) ([]*ProductionLog, error)

	// SaveUsages persists the per-material breakdown rows.
	SaveUsages(ctx context.Context, logID id.ID, usages []MaterialUsage) error

	// DeleteByOrder removes all logs (and their usages) for an order,
	// returning the number of logs removed. Used by order cascade delete.
	DeleteByOrder(ctx context.Context, orderID id.ID) (int64, error)
}
