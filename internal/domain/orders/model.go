// Package orders provides the manufacturing order document and the
// consumption engine that maintains its per-material consumption report.
package orders

import (
	"context"

	"stitchstock/internal/core/apperror"
	"stitchstock/internal/core/entity"
	"stitchstock/internal/core/id"
	"stitchstock/internal/core/types"
	"stitchstock/internal/domain/catalogs/material"
)

// Status is the order lifecycle state. Transitions are forward-only.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusProducing Status = "PRODUCING"
	StatusCompleted Status = "COMPLETED"
)

// ValidStatus reports whether s is a known status value.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusProducing, StatusCompleted:
		return true
	}
	return false
}

// next returns the only legal successor of a status, or "" for terminal.
func (s Status) next() Status {
	switch s {
	case StatusPending:
		return StatusProducing
	case StatusProducing:
		return StatusCompleted
	}
	return ""
}

// Order represents a manufacturing purchase order.
// Document.Number is the unique PO number; Document.Date is the order date.
type Order struct {
	entity.Document

	ProductID id.ID `db:"product_id" json:"productId"`

	// Denormalized product identity, captured at creation.
	StyleNumber string `db:"style_number" json:"styleNumber"`
	ProductName string `db:"product_name" json:"productName"`

	// Quantity is the number of pieces ordered.
	Quantity int `db:"quantity" json:"quantity"`

	Status Status `db:"status" json:"status"`

	// ConsumptionReport is a frozen snapshot of the BOM at creation time:
	// later BOM edits never add or remove entries, they only update wastage
	// figures on existing ones through explicit recompute.
	ConsumptionReport []MaterialConsumption `db:"-" json:"consumptionReport"`
}

// NewOrder creates a PENDING order.
func NewOrder(poNumber string, productID id.ID, quantity int) *Order {
	o := &Order{
		Document:  entity.NewDocument(),
		ProductID: productID,
		Quantity:  quantity,
		Status:    StatusPending,
	}
	o.Number = poNumber
	return o
}

// PONumber returns the purchase order number (alias for Document.Number).
func (o *Order) PONumber() string {
	return o.Number
}

// Validate implements entity.Validatable.
func (o *Order) Validate(ctx context.Context) error {
	if err := o.Document.Validate(ctx); err != nil {
		return err
	}

	if o.Number == "" {
		return apperror.NewValidation("PO number is required").
			WithDetail("field", "poNo")
	}

	if id.IsNil(o.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}

	if o.Quantity <= 0 {
		return apperror.NewValidation("order quantity must be positive").
			WithDetail("field", "quantity")
	}

	if !ValidStatus(o.Status) {
		return apperror.NewValidation("invalid order status").
			WithDetail("field", "status").
			WithDetail("value", string(o.Status))
	}

	return nil
}

// IsOpen reports whether the order still reacts to BOM wastage edits.
func (o *Order) IsOpen() bool {
	return o.Status == StatusPending || o.Status == StatusProducing
}

// CanTransition checks transition legality: forward-only, adjacent states.
func (o *Order) CanTransition(to Status) error {
	if !ValidStatus(to) {
		return apperror.NewValidation("invalid order status").
			WithDetail("value", string(to))
	}
	if o.Status.next() != to {
		return apperror.NewInvalidTransition(string(o.Status), string(to))
	}
	return nil
}

// StartProduction is the explicit PENDING -> PRODUCING transition.
// The stock-sufficiency guard runs in the service before this is applied.
func (o *Order) StartProduction() error {
	if err := o.CanTransition(StatusProducing); err != nil {
		return err
	}
	o.Status = StatusProducing
	o.Touch()
	return nil
}

// BeginProductionFromRecording is the implicit entry into PRODUCING taken
// when a production event is posted against a PENDING order. Unlike
// StartProduction it carries no stock guard: the stock has already been
// physically consumed by the recorded event. No-op for non-PENDING orders.
func (o *Order) BeginProductionFromRecording() {
	if o.Status == StatusPending {
		o.Status = StatusProducing
		o.Touch()
	}
}

// Complete is the PRODUCING -> COMPLETED transition. No stock side effects.
func (o *Order) Complete() error {
	if err := o.CanTransition(StatusCompleted); err != nil {
		return err
	}
	o.Status = StatusCompleted
	o.Touch()
	return nil
}

// PrimaryEntry returns the consumption entry production events post
// against, or nil if the report is empty.
func (o *Order) PrimaryEntry() *MaterialConsumption {
	for i := range o.ConsumptionReport {
		if o.ConsumptionReport[i].IsPrimary {
			return &o.ConsumptionReport[i]
		}
	}
	if len(o.ConsumptionReport) > 0 {
		return &o.ConsumptionReport[0]
	}
	return nil
}

// EntryByMaterial locates a consumption entry by material reference.
func (o *Order) EntryByMaterial(materialID id.ID) *MaterialConsumption {
	for i := range o.ConsumptionReport {
		if o.ConsumptionReport[i].MaterialID == materialID {
			return &o.ConsumptionReport[i]
		}
	}
	return nil
}

// MaterialConsumption is one line of an order's consumption report.
//
// MaterialName, ItemCode and Unit are captured at order creation and are
// intentionally NOT kept in sync with later material edits: the report is a
// read-optimization snapshot, resilient to catalog changes.
//
// Invariant: Wastage == StandardWastage + ExtraWastage after every
// mutating operation.
type MaterialConsumption struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	MaterialID   id.ID         `db:"material_id" json:"materialId"`
	MaterialName string        `db:"material_name" json:"materialName"`
	ItemCode     string        `db:"item_code" json:"itemCode"`
	Unit         material.Unit `db:"unit" json:"unit"`
	IsPrimary    bool          `db:"is_primary" json:"isPrimary"`

	// RequiredQty = quantityPerPiece x order quantity. Immutable after
	// order creation.
	RequiredQty types.Quantity `db:"required_qty" json:"requiredQty"`

	ActualUsedQty   types.Quantity `db:"actual_used_qty" json:"actualUsedQty"`
	StandardWastage types.Quantity `db:"standard_wastage" json:"standardWastage"`
	ExtraWastage    types.Quantity `db:"extra_wastage" json:"extraWastage"`
	Wastage         types.Quantity `db:"wastage" json:"wastage"`

	// WastePct stays numeric internally; DTOs format it to two decimals.
	WastePct types.Percent `db:"waste_percentage" json:"wastePercentage"`
}

// refreshWastePercentage recomputes the percentage after any change to the
// wastage figures or actual usage. Denominator is actual usage once
// production has started, required quantity before that.
func (c *MaterialConsumption) refreshWastePercentage() {
	denom := c.ActualUsedQty
	if !denom.IsPositive() {
		denom = c.RequiredQty
	}
	if c.Wastage.IsZero() || !denom.IsPositive() {
		c.WastePct = types.ZeroPercent()
		return
	}
	c.WastePct = types.PercentOf(c.Wastage, denom)
}

// recomputeWastage restores the triad invariant and the percentage.
func (c *MaterialConsumption) recomputeWastage() {
	c.Wastage = c.StandardWastage + c.ExtraWastage
	c.refreshWastePercentage()
}

// ApplyProductionUsage posts a production event against this entry.
// The recorded wastage is tracked as extra wastage: it was not predicted
// by the BOM percentage, and folding it into the extra figure keeps the
// triad invariant intact.
func (c *MaterialConsumption) ApplyProductionUsage(used, wastage types.Quantity) {
	c.ActualUsedQty += used
	c.ExtraWastage += wastage
	c.recomputeWastage()
}

// ApplyExtraWastage posts a wastage correction against this entry.
func (c *MaterialConsumption) ApplyExtraWastage(extra types.Quantity) {
	c.ExtraWastage += extra
	c.recomputeWastage()
}

// ApplyStandardWastage replaces the standard wastage figure (BOM edit
// propagation) and restores the invariant.
func (c *MaterialConsumption) ApplyStandardWastage(std types.Quantity) {
	c.StandardWastage = std
	c.recomputeWastage()
}
