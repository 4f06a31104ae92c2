// Package product provides the Product catalog and its bill of materials.
package product

import (
	"context"

	"stitchstock/internal/core/apperror"
	"stitchstock/internal/core/entity"
	"stitchstock/internal/core/id"
	"stitchstock/internal/core/types"
)

// MaterialRequirement is one BOM line: a material, the quantity needed per
// piece, and the expected wastage percentage.
type MaterialRequirement struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	MaterialID       id.ID          `db:"material_id" json:"materialId"`
	QuantityPerPiece types.Quantity `db:"quantity_per_piece" json:"quantityPerPiece"`

	// ExpectedWastagePct is the configured wastage percentage (0-100).
	ExpectedWastagePct types.Percent `db:"expected_wastage_pct" json:"expectedWastagePercentage"`
	WastageRemarks     string        `db:"wastage_remarks" json:"wastageRemarks,omitempty"`

	// IsPrimary marks the primary consumable (the fabric). Production
	// recording posts usage against the primary line. Exactly one line may
	// carry the flag; when none does, the first line is treated as primary.
	IsPrimary bool `db:"is_primary" json:"isPrimary"`
}

// Product represents a garment style. Catalog.Code is the unique style number.
type Product struct {
	entity.Catalog

	Description string `db:"description" json:"description,omitempty"`

	// WastageRemarks is the overall wastage note for the style.
	WastageRemarks string `db:"wastage_remarks" json:"wastageRemarks,omitempty"`

	// MaterialsRequired is the ordered BOM (separate table).
	MaterialsRequired []MaterialRequirement `db:"-" json:"materialsRequired"`
}

// NewProduct creates a new product.
func NewProduct(styleNumber, name string) *Product {
	return &Product{
		Catalog:           entity.NewCatalog(styleNumber, name),
		MaterialsRequired: make([]MaterialRequirement, 0),
	}
}

// StyleNumber returns the unique style number (alias for Catalog.Code).
func (p *Product) StyleNumber() string {
	return p.Code
}

// AddRequirement appends a BOM line.
func (p *Product) AddRequirement(materialID id.ID, qtyPerPiece types.Quantity, wastagePct types.Percent, remarks string, isPrimary bool) {
	p.MaterialsRequired = append(p.MaterialsRequired, MaterialRequirement{
		LineID:             id.New(),
		LineNo:             len(p.MaterialsRequired) + 1,
		MaterialID:         materialID,
		QuantityPerPiece:   qtyPerPiece,
		ExpectedWastagePct: wastagePct,
		WastageRemarks:     remarks,
		IsPrimary:          isPrimary,
	})
}

// PrimaryRequirement returns the BOM line production events consume from.
// Falls back to the first line when no line carries the explicit flag.
func (p *Product) PrimaryRequirement() (MaterialRequirement, bool) {
	for _, req := range p.MaterialsRequired {
		if req.IsPrimary {
			return req, true
		}
	}
	if len(p.MaterialsRequired) > 0 {
		return p.MaterialsRequired[0], true
	}
	return MaterialRequirement{}, false
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	primaries := 0
	for i, req := range p.MaterialsRequired {
		if id.IsNil(req.MaterialID) {
			return apperror.NewValidation("material reference is required").
				WithDetail("field", "materialsRequired").
				WithDetail("lineNo", i+1)
		}
		if !req.QuantityPerPiece.IsPositive() {
			return apperror.NewValidation("quantity per piece must be positive").
				WithDetail("field", "materialsRequired").
				WithDetail("lineNo", i+1)
		}
		if !types.ValidPercent(req.ExpectedWastagePct) {
			return apperror.NewValidation("expected wastage percentage must be between 0 and 100").
				WithDetail("field", "materialsRequired").
				WithDetail("lineNo", i+1)
		}
		if req.IsPrimary {
			primaries++
		}
	}

	if primaries > 1 {
		return apperror.NewValidation("at most one BOM line may be marked primary").
			WithDetail("field", "materialsRequired")
	}

	return nil
}

// WastageUpdate is one line of a wastage-settings edit.
type WastageUpdate struct {
	MaterialID         id.ID
	ExpectedWastagePct types.Percent
	Remarks            string
}

// ApplyWastageUpdates mutates the wastage fields of matching BOM lines.
// Lines not named in updates are untouched. Returns true if anything changed.
func (p *Product) ApplyWastageUpdates(updates []WastageUpdate) (bool, error) {
	changed := false
	for _, u := range updates {
		if !types.ValidPercent(u.ExpectedWastagePct) {
			return false, apperror.NewValidation("expected wastage percentage must be between 0 and 100").
				WithDetail("materialId", u.MaterialID.String())
		}
		for i := range p.MaterialsRequired {
			req := &p.MaterialsRequired[i]
			if req.MaterialID != u.MaterialID {
				continue
			}
			if !req.ExpectedWastagePct.Equal(u.ExpectedWastagePct) || req.WastageRemarks != u.Remarks {
				req.ExpectedWastagePct = u.ExpectedWastagePct
				req.WastageRemarks = u.Remarks
				changed = true
			}
		}
	}
	return changed, nil
}
