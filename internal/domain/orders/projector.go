package orders

import (
	"context"
	"fmt"

	"stitchstock/internal/core/tx"
	"stitchstock/internal/domain/catalogs/product"
	"stitchstock/internal/domain/events"
	"stitchstock/pkg/logger"
)

// WastageProjector reacts to BOM wastage edits by recomputing the standard
// wastage of every open order on the edited product. COMPLETED orders are
// never touched.
type WastageProjector struct {
	repo      Repository
	products  product.Repository
	txManager tx.Manager
}

func NewWastageProjector(repo Repository, products product.Repository, txManager tx.Manager) *WastageProjector {
	return &WastageProjector{
		repo:      repo,
		products:  products,
		txManager: txManager,
	}
}

var _ events.ProductWastageHandler = (*WastageProjector)(nil)

// HandleProductWastageChanged implements events.ProductWastageHandler.
// Each order is recomputed in its own transaction so one failing order
// does not roll back the others.
func (p *WastageProjector) HandleProductWastageChanged(ctx context.Context, evt events.ProductWastageChanged) error {
	reqs, err := p.products.GetRequirements(ctx, evt.ProductID)
	if err != nil {
		return fmt.Errorf("load requirements: %w", err)
	}

	open, err := p.repo.ListOpenByProduct(ctx, evt.ProductID)
	if err != nil {
		return fmt.Errorf("list open orders: %w", err)
	}

	updated := 0
	var firstErr error
	for _, o := range open {
		if !RecomputeStandardWastage(o, reqs) {
			continue
		}
		err := p.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			if err := p.repo.SaveReport(ctx, o.ID, o.ConsumptionReport); err != nil {
				return err
			}
			return p.repo.Update(ctx, o)
		})
		if err != nil {
			logger.Error(ctx, "wastage recompute failed for order",
				"order_id", o.ID,
				"po_number", o.Number,
				"error", err,
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		updated++
	}

	logger.Info(ctx, "wastage recompute finished",
		"product_id", evt.ProductID,
		"open_orders", len(open),
		"updated", updated,
	)

	return firstErr
}
