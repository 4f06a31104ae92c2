// Package material provides the RawMaterial catalog: the current stock
// ledger and the received-batch history per raw material.
package material

import (
	"context"
	"time"

	"stitchstock/internal/core/apperror"
	"stitchstock/internal/core/entity"
	"stitchstock/internal/core/id"
	"stitchstock/internal/core/types"
)

// Unit defines the unit of measure for a raw material.
type Unit string

const (
	UnitMeter    Unit = "meter"
	UnitKilogram Unit = "kilogram"
	UnitPiece    Unit = "piece"
	UnitYard     Unit = "yard"
)

// RawMaterial represents one raw material and its running stock level.
// Catalog.Code is the unique item code.
//
// CurrentStock must always equal the opening stock plus all batch receipts
// minus all recorded consumption. The order engine and the production
// recorder are the only consumers; batch receipt is the only inflow.
type RawMaterial struct {
	entity.Catalog

	// Unit of measure
	Unit Unit `db:"unit" json:"unit"`

	// CurrentStock is the on-hand quantity (never negative)
	CurrentStock types.Quantity `db:"current_stock" json:"currentStock"`

	// UpdatedAt is stamped on every stock mutation
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Batches is the ordered receipt history (separate table)
	Batches []ReceivedBatch `db:"-" json:"batches,omitempty"`
}

// ReceivedBatch is one stock receipt for a material.
type ReceivedBatch struct {
	BatchID    id.ID          `db:"batch_id" json:"batchId"`
	MaterialID id.ID          `db:"material_id" json:"materialId"`
	Quantity   types.Quantity `db:"quantity" json:"quantity"`
	ReceivedAt time.Time      `db:"received_at" json:"receivedAt"`
	Remarks    string         `db:"remarks" json:"remarks,omitempty"`
}

// NewRawMaterial creates a new material with zero stock.
func NewRawMaterial(itemCode, name string, unit Unit) *RawMaterial {
	return &RawMaterial{
		Catalog:   entity.NewCatalog(itemCode, name),
		Unit:      unit,
		UpdatedAt: time.Now().UTC(),
	}
}

// ItemCode returns the unique item code (alias for Catalog.Code).
func (m *RawMaterial) ItemCode() string {
	return m.Code
}

// Validate implements entity.Validatable.
func (m *RawMaterial) Validate(ctx context.Context) error {
	if err := m.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidUnit(m.Unit) {
		return apperror.NewValidation("invalid unit of measure").
			WithDetail("field", "unit").
			WithDetail("value", string(m.Unit))
	}

	if m.CurrentStock.IsNegative() {
		return apperror.NewValidation("current stock cannot be negative").
			WithDetail("field", "currentStock")
	}

	return nil
}

// NewBatch creates a receipt batch for this material.
func (m *RawMaterial) NewBatch(qty types.Quantity, remarks string) (ReceivedBatch, error) {
	if !qty.IsPositive() {
		return ReceivedBatch{}, apperror.NewValidation("batch quantity must be positive").
			WithDetail("field", "quantity")
	}
	return ReceivedBatch{
		BatchID:    id.New(),
		MaterialID: m.ID,
		Quantity:   qty,
		ReceivedAt: time.Now().UTC(),
		Remarks:    remarks,
	}, nil
}

func isValidUnit(u Unit) bool {
	switch u {
	case UnitMeter, UnitKilogram, UnitPiece, UnitYard:
		return true
	}
	return false
}
