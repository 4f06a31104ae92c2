package production

import (
	"context"
	"fmt"
	"time"

	"stitchstock/internal/core/apperror"
	"stitchstock/internal/core/id"
	"stitchstock/internal/core/tx"
	"stitchstock/internal/core/types"
	"stitchstock/internal/domain/orders"
	"stitchstock/pkg/logger"
)

// NumberGenerator assigns document numbers to production logs.
// Backed by the sequence service in pkg/numerator.
type NumberGenerator interface {
	NextLogNumber(ctx context.Context, period time.Time) (string, error)
}

// OrderStore is the slice of the order repository the recorder needs.
type OrderStore interface {
	GetByID(ctx context.Context, orderID id.ID) (*orders.Order, error)
	SaveReport(ctx context.Context, orderID id.ID, report []orders.MaterialConsumption) error
	Update(ctx context.Context, o *orders.Order) error
}

// StockAdjuster moves material stock. Satisfied by the material
// repository.
type StockAdjuster interface {
	AdjustStock(ctx context.Context, materialID id.ID, delta types.Quantity, at time.Time) error
}

// Recorder posts production events and wastage corrections against orders.
type Recorder struct {
	repo      Repository
	orders    OrderStore
	materials StockAdjuster
	numbers   NumberGenerator
	txManager tx.Manager
}

func NewRecorder(repo Repository, orderRepo OrderStore, materials StockAdjuster, numbers NumberGenerator, txManager tx.Manager) *Recorder {
	return &Recorder{
		repo:      repo,
		orders:    orderRepo,
		materials: materials,
		numbers:   numbers,
		txManager: txManager,
	}
}

// RecordProduction posts a daily production event:
//
//  1. persists the log,
//  2. adds usedFabric to the primary consumption entry's actual usage and
//     wastageQty to its wastage (tracked as extra wastage, keeping the
//     wastage = standard + extra invariant),
//  3. decrements the primary material's stock by usedFabric,
//  4. moves a PENDING order into PRODUCING. This implicit entry path has
//     no stock gate: the fabric is already cut.
//
// All four effects share one transaction.
func (r *Recorder) RecordProduction(ctx context.Context, orderID id.ID, date time.Time, cutQty int, usedFabric, wastageQty types.Quantity, reason, comment string) (*ProductionLog, error) {
	o, err := r.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status == orders.StatusCompleted {
		return nil, apperror.NewConflict("cannot record production for a completed order")
	}

	primary := o.PrimaryEntry()
	if primary == nil {
		return nil, apperror.NewValidation("order has no consumption report entries")
	}

	l := NewProductionLog(orderID, cutQty, usedFabric, wastageQty)
	if !date.IsZero() {
		l.Date = date
	}
	l.Comment = comment
	if err := l.Validate(ctx); err != nil {
		return nil, err
	}

	err = r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := r.numbers.NextLogNumber(ctx, l.Date)
		if err != nil {
			return fmt.Errorf("assign log number: %w", err)
		}
		l.Number = number

		l.Usages = []MaterialUsage{{
			UsageID:       id.New(),
			LogID:         l.ID,
			MaterialID:    primary.MaterialID,
			ExtraWastage:  wastageQty,
			TotalWastage:  wastageQty,
			WastageReason: reason,
		}}

		if err := r.repo.Create(ctx, l); err != nil {
			return fmt.Errorf("create production log: %w", err)
		}
		if err := r.repo.SaveUsages(ctx, l.ID, l.Usages); err != nil {
			return fmt.Errorf("save material usages: %w", err)
		}

		primary.ApplyProductionUsage(usedFabric, wastageQty)
		o.BeginProductionFromRecording()

		if err := r.orders.SaveReport(ctx, o.ID, o.ConsumptionReport); err != nil {
			return fmt.Errorf("save consumption report: %w", err)
		}
		if err := r.orders.Update(ctx, o); err != nil {
			return fmt.Errorf("update order: %w", err)
		}

		if err := r.materials.AdjustStock(ctx, primary.MaterialID, usedFabric.Neg(), time.Now().UTC()); err != nil {
			return fmt.Errorf("decrement fabric stock: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "production recorded",
		"log_number", l.Number,
		"order_id", orderID,
		"po_number", o.Number,
		"cut_qty", cutQty,
		"used_fabric", usedFabric.String(),
		"wastage_qty", wastageQty.String(),
		"order_status", string(o.Status),
	)

	return l, nil
}

// RecordExtraWastage posts a wastage correction: no pieces, no fabric
// usage, no stock movement. Entries with non-positive quantity are
// dropped; an empty remainder is a validation error.
func (r *Recorder) RecordExtraWastage(ctx context.Context, orderID id.ID, entries []ExtraWastageEntry, comment string) (*ProductionLog, error) {
	o, err := r.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	applicable := make([]ExtraWastageEntry, 0, len(entries))
	for _, e := range entries {
		if e.Quantity.IsPositive() {
			applicable = append(applicable, e)
		}
	}
	if len(applicable) == 0 {
		return nil, apperror.NewValidation("no material carries extra wastage to record")
	}

	l := NewProductionLog(orderID, 0, 0, 0)
	l.IsExtraWastageOnly = true
	l.Comment = comment

	err = r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := r.numbers.NextLogNumber(ctx, l.Date)
		if err != nil {
			return fmt.Errorf("assign log number: %w", err)
		}
		l.Number = number

		for _, e := range applicable {
			entry := o.EntryByMaterial(e.MaterialID)
			if entry == nil {
				return apperror.NewNotFound("consumption entry", e.MaterialID).
					WithDetail("orderId", orderID)
			}
			entry.ApplyExtraWastage(e.Quantity)
			l.WastageQty += e.Quantity
			l.Usages = append(l.Usages, MaterialUsage{
				UsageID:         id.New(),
				LogID:           l.ID,
				MaterialID:      e.MaterialID,
				StandardWastage: entry.StandardWastage,
				ExtraWastage:    entry.ExtraWastage,
				TotalWastage:    entry.Wastage,
				WastageReason:   e.Reason,
			})
		}

		if err := r.repo.Create(ctx, l); err != nil {
			return fmt.Errorf("create wastage log: %w", err)
		}
		if err := r.repo.SaveUsages(ctx, l.ID, l.Usages); err != nil {
			return fmt.Errorf("save material usages: %w", err)
		}
		if err := r.orders.SaveReport(ctx, o.ID, o.ConsumptionReport); err != nil {
			return fmt.Errorf("save consumption report: %w", err)
		}
		return r.orders.Update(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "extra wastage recorded",
		"log_number", l.Number,
		"order_id", orderID,
		"po_number", o.Number,
		"materials", len(l.Usages),
		"total_wastage", l.WastageQty.String(),
	)

	return l, nil
}

// GetByID loads one production log with its usages.
func (r *Recorder) GetByID(ctx context.Context, logID id.ID) (*ProductionLog, error) {
	return r.repo.GetByID(ctx, logID)
}

// ListByOrder returns an order's production history, oldest first.
func (r *Recorder) ListByOrder(ctx context.Context, orderID id.ID) ([]*ProductionLog, error) {
	if _, err := r.orders.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return r.repo.ListByOrder(ctx, orderID)
}
