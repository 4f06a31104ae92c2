package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stitchstock/internal/core/id"
	"stitchstock/internal/core/types"
	"stitchstock/internal/domain/catalogs/material"
	"stitchstock/internal/domain/catalogs/product"
)

func testBOM() (fabric, thread *material.RawMaterial, reqs []product.MaterialRequirement, materials map[id.ID]*material.RawMaterial) {
	fabric = material.NewRawMaterial("FAB-001", "Denim", material.UnitMeter)
	thread = material.NewRawMaterial("THR-001", "Thread", material.UnitPiece)

	reqs = []product.MaterialRequirement{
		{
			LineID:             id.New(),
			LineNo:             1,
			MaterialID:         fabric.ID,
			QuantityPerPiece:   types.MustQuantity("2.5"),
			ExpectedWastagePct: types.MustPercent("5"),
			IsPrimary:          true,
		},
		{
			LineID:             id.New(),
			LineNo:             2,
			MaterialID:         thread.ID,
			QuantityPerPiece:   types.MustQuantity("2"),
			ExpectedWastagePct: types.MustPercent("0"),
		},
	}
	materials = map[id.ID]*material.RawMaterial{
		fabric.ID: fabric,
		thread.ID: thread,
	}
	return fabric, thread, reqs, materials
}

func TestBuildConsumptionReport(t *testing.T) {
	fabric, thread, reqs, materials := testBOM()

	report := BuildConsumptionReport(100, reqs, materials)
	require.Len(t, report, 2)

	primary := report[0]
	assert.Equal(t, fabric.ID, primary.MaterialID)
	assert.Equal(t, "Denim", primary.MaterialName)
	assert.Equal(t, "FAB-001", primary.ItemCode)
	assert.Equal(t, material.UnitMeter, primary.Unit)
	assert.True(t, primary.IsPrimary)
	assert.Equal(t, types.MustQuantity("250"), primary.RequiredQty)
	assert.Equal(t, types.MustQuantity("12.5"), primary.StandardWastage)
	assert.Equal(t, types.MustQuantity("12.5"), primary.Wastage)
	assert.True(t, primary.ActualUsedQty.IsZero())
	assert.True(t, primary.ExtraWastage.IsZero())
	// No production yet, so the percentage is against required quantity.
	assert.Equal(t, "5.00", types.FormatPercent(primary.WastePct))

	secondary := report[1]
	assert.Equal(t, thread.ID, secondary.MaterialID)
	assert.False(t, secondary.IsPrimary)
	assert.Equal(t, types.MustQuantity("200"), secondary.RequiredQty)
	assert.True(t, secondary.StandardWastage.IsZero())
	assert.True(t, secondary.Wastage.IsZero())
	assert.Equal(t, "0.00", types.FormatPercent(secondary.WastePct))
}

func TestBuildConsumptionReport_UnknownMaterialLeavesIdentityEmpty(t *testing.T) {
	_, _, reqs, _ := testBOM()

	report := BuildConsumptionReport(10, reqs, nil)
	require.Len(t, report, 2)
	assert.Empty(t, report[0].MaterialName)
	assert.Empty(t, report[0].ItemCode)
	// Quantities are still derived even without catalog identity.
	assert.Equal(t, types.MustQuantity("25"), report[0].RequiredQty)
}

func TestRecomputeStandardWastage(t *testing.T) {
	fabric, _, reqs, materials := testBOM()

	o := NewOrder("PO-001", id.New(), 100)
	o.ConsumptionReport = BuildConsumptionReport(100, reqs, materials)

	// Accumulate some production history first.
	primary := o.EntryByMaterial(fabric.ID)
	require.NotNil(t, primary)
	primary.ApplyProductionUsage(types.MustQuantity("100"), types.MustQuantity("3"))

	// BOM percentage goes 5% -> 8%.
	reqs[0].ExpectedWastagePct = types.MustPercent("8")

	changed := RecomputeStandardWastage(o, reqs)
	require.True(t, changed)

	primary = o.EntryByMaterial(fabric.ID)
	assert.Equal(t, types.MustQuantity("20"), primary.StandardWastage)
	// Extra wastage and usage survive the recompute.
	assert.Equal(t, types.MustQuantity("3"), primary.ExtraWastage)
	assert.Equal(t, types.MustQuantity("100"), primary.ActualUsedQty)
	assert.Equal(t, primary.StandardWastage+primary.ExtraWastage, primary.Wastage)

	// Running again against the same BOM is a no-op.
	assert.False(t, RecomputeStandardWastage(o, reqs))
}

func TestRecomputeStandardWastage_IgnoresRemovedAndAddedLines(t *testing.T) {
	fabric, _, reqs, materials := testBOM()

	o := NewOrder("PO-002", id.New(), 10)
	o.ConsumptionReport = BuildConsumptionReport(10, reqs, materials)
	orphan := o.ConsumptionReport[1]

	// The thread line is dropped from the BOM and a brand-new material
	// appears; neither may disturb the frozen report.
	newReqs := []product.MaterialRequirement{
		{
			LineID:             id.New(),
			LineNo:             1,
			MaterialID:         fabric.ID,
			QuantityPerPiece:   types.MustQuantity("2.5"),
			ExpectedWastagePct: types.MustPercent("5"),
			IsPrimary:          true,
		},
		{
			LineID:           id.New(),
			LineNo:           2,
			MaterialID:       id.New(),
			QuantityPerPiece: types.MustQuantity("1"),
		},
	}

	changed := RecomputeStandardWastage(o, newReqs)
	assert.False(t, changed)
	require.Len(t, o.ConsumptionReport, 2)
	assert.Equal(t, orphan, o.ConsumptionReport[1])
}

func TestMaterialConsumption_TriadInvariant(t *testing.T) {
	entry := MaterialConsumption{
		LineID:          id.New(),
		RequiredQty:     types.MustQuantity("200"),
		StandardWastage: types.MustQuantity("10"),
	}
	entry.ApplyStandardWastage(entry.StandardWastage)

	entry.ApplyProductionUsage(types.MustQuantity("80"), types.MustQuantity("2"))
	assert.Equal(t, entry.StandardWastage+entry.ExtraWastage, entry.Wastage)

	entry.ApplyExtraWastage(types.MustQuantity("1.5"))
	assert.Equal(t, entry.StandardWastage+entry.ExtraWastage, entry.Wastage)
	assert.Equal(t, types.MustQuantity("3.5"), entry.ExtraWastage)

	entry.ApplyStandardWastage(types.MustQuantity("16"))
	assert.Equal(t, types.MustQuantity("19.5"), entry.Wastage)
}

func TestMaterialConsumption_WastePercentageDenominator(t *testing.T) {
	entry := MaterialConsumption{
		RequiredQty:     types.MustQuantity("100"),
		StandardWastage: types.MustQuantity("5"),
	}
	entry.recomputeWastage()
	// Before production the denominator is the required quantity.
	assert.Equal(t, "5.00", types.FormatPercent(entry.WastePct))

	// Once usage is recorded the denominator switches to actual usage.
	entry.ApplyProductionUsage(types.MustQuantity("50"), types.MustQuantity("0"))
	assert.Equal(t, "10.00", types.FormatPercent(entry.WastePct))
}

func TestMaterialConsumption_ZeroWastageZeroPercent(t *testing.T) {
	entry := MaterialConsumption{RequiredQty: types.MustQuantity("100")}
	entry.recomputeWastage()
	assert.True(t, entry.WastePct.IsZero())

	// Zero denominator never panics.
	empty := MaterialConsumption{StandardWastage: types.MustQuantity("5")}
	empty.recomputeWastage()
	assert.True(t, empty.WastePct.IsZero())
}

func TestOrder_StatusTransitions(t *testing.T) {
	o := NewOrder("PO-003", id.New(), 1)

	// Forward-only, adjacent steps.
	assert.Error(t, o.CanTransition(StatusCompleted))
	assert.Error(t, o.CanTransition(StatusPending))
	require.NoError(t, o.StartProduction())
	assert.Equal(t, StatusProducing, o.Status)
	assert.Error(t, o.CanTransition(StatusPending))
	require.NoError(t, o.Complete())
	assert.Equal(t, StatusCompleted, o.Status)
	assert.Error(t, o.CanTransition(StatusProducing))
	assert.False(t, o.IsOpen())
}

func TestOrder_BeginProductionFromRecording(t *testing.T) {
	o := NewOrder("PO-004", id.New(), 1)
	o.BeginProductionFromRecording()
	assert.Equal(t, StatusProducing, o.Status)

	// Idempotent for non-pending orders.
	version := o.Version
	o.BeginProductionFromRecording()
	assert.Equal(t, StatusProducing, o.Status)
	assert.Equal(t, version, o.Version)
}

func TestOrder_PrimaryEntryFallsBackToFirst(t *testing.T) {
	o := NewOrder("PO-005", id.New(), 1)
	assert.Nil(t, o.PrimaryEntry())

	first := MaterialConsumption{LineID: id.New(), MaterialID: id.New()}
	second := MaterialConsumption{LineID: id.New(), MaterialID: id.New(), IsPrimary: true}
	o.ConsumptionReport = []MaterialConsumption{first, second}
	assert.Equal(t, second.LineID, o.PrimaryEntry().LineID)

	// Without an explicit flag the first line is the primary.
	o.ConsumptionReport[1].IsPrimary = false
	assert.Equal(t, first.LineID, o.PrimaryEntry().LineID)
}
