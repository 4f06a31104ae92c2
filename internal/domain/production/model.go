// Package production records daily production events and extra wastage
// corrections against orders.
package production

import (
	"context"

	"stitchstock/internal/core/apperror"
	"stitchstock/internal/core/entity"
	"stitchstock/internal/core/id"
	"stitchstock/internal/core/types"
)

// ProductionLog is one recorded production event for an order.
// Document.Number is auto-generated (PL-YYYY-XXXXX); Document.Date is the
// production date.
type ProductionLog struct {
	entity.Document

	OrderID id.ID `db:"order_id" json:"orderId"`

	// CutQty is the number of pieces cut in this event.
	CutQty int `db:"cut_qty" json:"cutQty"`

	// UsedFabric is the primary-material quantity consumed.
	UsedFabric types.Quantity `db:"used_fabric" json:"usedFabric"`

	// WastageQty is the wastage observed during this event.
	WastageQty types.Quantity `db:"wastage_qty" json:"wastageQty"`

	// IsExtraWastageOnly marks a wastage correction: no pieces cut, no
	// fabric usage, no stock movement and no status transition.
	IsExtraWastageOnly bool `db:"is_extra_wastage_only" json:"isExtraWastageOnly"`

	// Usages are the per-material wastage breakdowns (separate table).
	// A production event carries exactly one (the primary material); an
	// extra-wastage correction carries one per affected material.
	Usages []MaterialUsage `db:"-" json:"usages"`
}

// MaterialUsage is the per-material wastage breakdown of one log.
type MaterialUsage struct {
	UsageID    id.ID `db:"usage_id" json:"usageId"`
	LogID      id.ID `db:"log_id" json:"logId"`
	MaterialID id.ID `db:"material_id" json:"materialId"`

	StandardWastage types.Quantity `db:"standard_wastage" json:"standardWastage"`
	ExtraWastage    types.Quantity `db:"extra_wastage" json:"extraWastage"`
	TotalWastage    types.Quantity `db:"total_wastage" json:"totalWastage"`
	WastageReason   string         `db:"wastage_reason" json:"wastageReason,omitempty"`
}

// NewProductionLog creates an event log. The document number is assigned
// by the recorder.
func NewProductionLog(orderID id.ID, cutQty int, usedFabric, wastageQty types.Quantity) *ProductionLog {
	return &ProductionLog{
		Document:   entity.NewDocument(),
		OrderID:    orderID,
		CutQty:     cutQty,
		UsedFabric: usedFabric,
		WastageQty: wastageQty,
	}
}

// Validate implements entity.Validatable.
func (l *ProductionLog) Validate(ctx context.Context) error {
	if err := l.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(l.OrderID) {
		return apperror.NewValidation("order is required").
			WithDetail("field", "orderId")
	}

	if l.IsExtraWastageOnly {
		if l.CutQty != 0 || !l.UsedFabric.IsZero() {
			return apperror.NewValidation("wastage correction cannot carry production figures")
		}
		return nil
	}

	if l.CutQty <= 0 {
		return apperror.NewValidation("cut quantity must be positive").
			WithDetail("field", "cutQty")
	}
	if !l.UsedFabric.IsPositive() {
		return apperror.NewValidation("used fabric must be positive").
			WithDetail("field", "usedFabric")
	}
	if l.WastageQty.IsNegative() {
		return apperror.NewValidation("wastage cannot be negative").
			WithDetail("field", "wastageQty")
	}

	return nil
}

// ExtraWastageEntry is one material's wastage correction in a
// RecordExtraWastage request.
type ExtraWastageEntry struct {
	MaterialID id.ID
	Quantity   types.Quantity
	Reason     string
}
