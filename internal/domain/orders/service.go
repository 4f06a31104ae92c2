package orders

import (
	"context"
	"fmt"
	"time"

	"stitchstock/internal/core/apperror"
	"stitchstock/internal/core/id"
	"stitchstock/internal/core/tx"
	"stitchstock/internal/core/types"
	"stitchstock/internal/domain/catalogs/material"
	"stitchstock/internal/domain/catalogs/product"
	"stitchstock/pkg/logger"
)

// ProductionLogStore is the slice of the production log repository the
// order service needs for cascade delete and usage history.
type ProductionLogStore interface {
	// DeleteByOrder removes all logs for an order, returning the count.
	DeleteByOrder(ctx context.Context, orderID id.ID) (int64, error)

	// WastageHistory returns each material's recorded wastage events for
	// an order, oldest first, keyed by material.
	WastageHistory(ctx context.Context, orderID id.ID) (map[id.ID][]WastageHistoryEntry, error)
}

// WastageHistoryEntry is one recorded wastage event for a material,
// reconstructed from the order's production logs.
type WastageHistoryEntry struct {
	Date               time.Time      `json:"date"`
	StandardWastage    types.Quantity `json:"standardWastage"`
	ExtraWastage       types.Quantity `json:"extraWastage"`
	TotalWastage       types.Quantity `json:"totalWastage"`
	WastageReason      string         `json:"wastageReason,omitempty"`
	IsExtraWastageOnly bool           `json:"isExtraWastageOnly"`
}

// Service orchestrates order lifecycle operations.
type Service struct {
	repo       Repository
	products   product.Repository
	materials  material.Repository
	production ProductionLogStore
	txManager  tx.Manager
}

func NewService(repo Repository, products product.Repository, materials material.Repository, production ProductionLogStore, txManager tx.Manager) *Service {
	return &Service{
		repo:       repo,
		products:   products,
		materials:  materials,
		production: production,
		txManager:  txManager,
	}
}

// Create creates a PENDING order and builds its consumption report from
// the product's current BOM.
func (s *Service) Create(ctx context.Context, poNumber string, productID id.ID, orderDate time.Time, quantity int, comment string) (*Order, error) {
	o := NewOrder(poNumber, productID, quantity)
	if !orderDate.IsZero() {
		o.Date = orderDate
	}
	o.Comment = comment

	if err := o.Validate(ctx); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByNumber(ctx, poNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.NewDuplicate("order", "poNo", poNumber)
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewValidation("product does not exist").
				WithDetail("productId", productID.String())
		}
		return nil, err
	}
	o.StyleNumber = p.StyleNumber()
	o.ProductName = p.Name

	reqs, err := s.products.GetRequirements(ctx, productID)
	if err != nil {
		return nil, err
	}

	materials, err := s.loadMaterials(ctx, reqs)
	if err != nil {
		return nil, err
	}

	o.ConsumptionReport = BuildConsumptionReport(quantity, reqs, materials)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if err := s.repo.SaveReport(ctx, o.ID, o.ConsumptionReport); err != nil {
			return fmt.Errorf("save consumption report: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "order created",
		"order_id", o.ID,
		"po_number", o.Number,
		"product_id", productID,
		"quantity", quantity,
		"report_lines", len(o.ConsumptionReport),
	)

	return o, nil
}

func (s *Service) loadMaterials(ctx context.Context, reqs []product.MaterialRequirement) (map[id.ID]*material.RawMaterial, error) {
	out := make(map[id.ID]*material.RawMaterial, len(reqs))
	for _, req := range reqs {
		if _, ok := out[req.MaterialID]; ok {
			continue
		}
		m, err := s.materials.GetByID(ctx, req.MaterialID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil, apperror.NewValidation("material does not exist").
					WithDetail("materialId", req.MaterialID.String())
			}
			return nil, err
		}
		out[req.MaterialID] = m
	}
	return out, nil
}

// GetByID loads an order with its consumption report.
func (s *Service) GetByID(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

// List retrieves orders with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	return s.repo.List(ctx, filter)
}

// TransitionStatus applies an explicit status change.
//
// PENDING -> PRODUCING runs the stock gate: every report line is checked
// against current stock under row locks, ALL shortfalls are collected
// before failing, and only when every line passes is stock decremented.
// The check and the decrements share one transaction, so a concurrent
// transition cannot consume the same stock twice.
//
// PRODUCING -> COMPLETED has no stock side effects.
func (s *Service) TransitionStatus(ctx context.Context, orderID id.ID, to Status) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.CanTransition(to); err != nil {
		return nil, err
	}

	switch to {
	case StatusProducing:
		err = s.startProduction(ctx, o)
	case StatusCompleted:
		err = s.complete(ctx, o)
	default:
		err = apperror.NewInvalidTransition(string(o.Status), string(to))
	}
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "order status changed",
		"order_id", o.ID,
		"po_number", o.Number,
		"status", string(o.Status),
	)

	return o, nil
}

func (s *Service) startProduction(ctx context.Context, o *Order) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()

		// Phase 1: lock and check every material, collecting all shortfalls.
		var shortfalls []apperror.StockShortfall
		locked := make(map[id.ID]*material.RawMaterial, len(o.ConsumptionReport))
		for _, entry := range o.ConsumptionReport {
			m, err := s.materials.GetForUpdate(ctx, entry.MaterialID)
			if err != nil {
				return err
			}
			locked[entry.MaterialID] = m
			if m.CurrentStock < entry.RequiredQty {
				shortfalls = append(shortfalls, apperror.StockShortfall{
					MaterialName: m.Name,
					RequiredQty:  entry.RequiredQty,
					CurrentStock: m.CurrentStock,
				})
			}
		}
		if len(shortfalls) > 0 {
			return apperror.NewInsufficientStock(shortfalls)
		}

		// Phase 2: every line passed; decrement.
		for _, entry := range o.ConsumptionReport {
			if err := s.materials.AdjustStock(ctx, entry.MaterialID, entry.RequiredQty.Neg(), now); err != nil {
				return fmt.Errorf("decrement stock for %s: %w", locked[entry.MaterialID].Code, err)
			}
		}

		if err := o.StartProduction(); err != nil {
			return err
		}
		return s.repo.Update(ctx, o)
	})
}

func (s *Service) complete(ctx context.Context, o *Order) error {
	if err := o.Complete(); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, o)
	})
}

// Delete removes an order, its consumption report, and its production
// logs in one transaction. Stock already consumed is NOT restored.
// Returns the number of production logs removed with the order.
func (s *Service) Delete(ctx context.Context, orderID id.ID) (int64, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return 0, err
	}

	var logsRemoved int64
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		n, err := s.production.DeleteByOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("delete production logs: %w", err)
		}
		logsRemoved = n
		return s.repo.Delete(ctx, orderID)
	})
	if err != nil {
		return 0, err
	}

	logger.Info(ctx, "order deleted",
		"order_id", orderID,
		"po_number", o.Number,
		"production_logs_removed", logsRemoved,
	)

	return logsRemoved, nil
}

// MaterialUsageView is one row of the material usage report for an order:
// the consumption entry plus remaining stock as of now.
type MaterialUsageView struct {
	MaterialConsumption
	CurrentStock types.Quantity        `json:"currentStock"`
	History      []WastageHistoryEntry `json:"history,omitempty"`
}

// Usage is the per-order material usage report.
type Usage struct {
	Order     *Order              `json:"order"`
	Materials []MaterialUsageView `json:"materials"`
}

// GetUsage assembles the usage report: consumption entries joined with
// live stock figures.
func (s *Service) GetUsage(ctx context.Context, orderID id.ID) (*Usage, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	history, err := s.production.WastageHistory(ctx, orderID)
	if err != nil {
		return nil, err
	}

	views := make([]MaterialUsageView, 0, len(o.ConsumptionReport))
	for _, entry := range o.ConsumptionReport {
		view := MaterialUsageView{
			MaterialConsumption: entry,
			History:             history[entry.MaterialID],
		}
		m, err := s.materials.GetByID(ctx, entry.MaterialID)
		if err == nil {
			view.CurrentStock = m.CurrentStock
		} else if !apperror.IsNotFound(err) {
			return nil, err
		}
		views = append(views, view)
	}

	return &Usage{Order: o, Materials: views}, nil
}
