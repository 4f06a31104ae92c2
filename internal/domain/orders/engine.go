package orders

import (
	"stitchstock/internal/core/id"
	"stitchstock/internal/core/types"
	"stitchstock/internal/domain/catalogs/material"
	"stitchstock/internal/domain/catalogs/product"
)

// BuildConsumptionReport expands a product's bill of materials into the
// per-material consumption report for an order of pieces pieces.
//
// For every BOM line:
//
//	requiredQty     = quantityPerPiece x pieces
//	standardWastage = requiredQty x expectedWastagePct / 100
//	wastage         = standardWastage (extra is zero at creation)
//	actualUsedQty   = 0
//
// Material identity (name, item code, unit) is snapshotted from the
// catalog so the report survives later material edits.
func BuildConsumptionReport(pieces int, reqs []product.MaterialRequirement, materials map[id.ID]*material.RawMaterial) []MaterialConsumption {
	report := make([]MaterialConsumption, 0, len(reqs))
	for i, req := range reqs {
		required := req.QuantityPerPiece.MulInt(pieces)
		std := types.ApplyPercent(required, req.ExpectedWastagePct)

		entry := MaterialConsumption{
			LineID:          id.New(),
			LineNo:          i + 1,
			MaterialID:      req.MaterialID,
			IsPrimary:       req.IsPrimary,
			RequiredQty:     required,
			StandardWastage: std,
		}
		if m, ok := materials[req.MaterialID]; ok {
			entry.MaterialName = m.Name
			entry.ItemCode = m.Code
			entry.Unit = m.Unit
		}
		entry.recomputeWastage()
		report = append(report, entry)
	}
	return report
}

// RecomputeStandardWastage re-derives the standard wastage of each report
// entry from the current BOM percentages, preserving accumulated extra
// wastage and actual usage. Idempotent: running it twice against the same
// BOM changes nothing the second time.
//
// Entries whose material no longer appears on the BOM are left untouched,
// and BOM lines added after order creation are ignored: the report's
// material set was frozen at creation.
//
// Returns true if any entry changed.
func RecomputeStandardWastage(o *Order, reqs []product.MaterialRequirement) bool {
	byMaterial := make(map[id.ID]product.MaterialRequirement, len(reqs))
	for _, req := range reqs {
		byMaterial[req.MaterialID] = req
	}

	changed := false
	for i := range o.ConsumptionReport {
		entry := &o.ConsumptionReport[i]
		req, ok := byMaterial[entry.MaterialID]
		if !ok {
			continue
		}
		std := types.ApplyPercent(entry.RequiredQty, req.ExpectedWastagePct)
		if std == entry.StandardWastage {
			continue
		}
		entry.ApplyStandardWastage(std)
		changed = true
	}
	if changed {
		o.Touch()
	}
	return changed
}
