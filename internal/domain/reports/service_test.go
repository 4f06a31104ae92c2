package reports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stitchstock/internal/core/apperror"
	"stitchstock/internal/core/id"
	"stitchstock/internal/core/types"
	"stitchstock/internal/domain/catalogs/material"
	"stitchstock/internal/domain/orders"
)

type fakeReader struct {
	totals []MaterialTotalRow
	stock  []StockRow
}

func (r *fakeReader) MaterialTotals(ctx context.Context) ([]MaterialTotalRow, error) {
	return r.totals, nil
}

func (r *fakeReader) StockRows(ctx context.Context) ([]StockRow, error) {
	return r.stock, nil
}

type fakeOrderRepo struct {
	byID map[id.ID]*orders.Order
}

func (r *fakeOrderRepo) Create(ctx context.Context, o *orders.Order) error { return nil }

func (r *fakeOrderRepo) GetByID(ctx context.Context, orderID id.ID) (*orders.Order, error) {
	o, ok := r.byID[orderID]
	if !ok {
		return nil, apperror.NewNotFound("order", orderID)
	}
	return o, nil
}

func (r *fakeOrderRepo) GetByNumber(ctx context.Context, poNumber string) (*orders.Order, error) {
	return nil, apperror.NewNotFound("order", poNumber)
}

func (r *fakeOrderRepo) ExistsByNumber(ctx context.Context, poNumber string) (bool, error) {
	return false, nil
}

func (r *fakeOrderRepo) Update(ctx context.Context, o *orders.Order) error { return nil }

func (r *fakeOrderRepo) Delete(ctx context.Context, orderID id.ID) error { return nil }

func (r *fakeOrderRepo) List(ctx context.Context, filter orders.ListFilter) (orders.ListResult, error) {
	return orders.ListResult{}, nil
}

func (r *fakeOrderRepo) ListOpenByProduct(ctx context.Context, productID id.ID) ([]*orders.Order, error) {
	return nil, nil
}

func (r *fakeOrderRepo) SaveReport(ctx context.Context, orderID id.ID, report []orders.MaterialConsumption) error {
	return nil
}

func sampleTotals() []MaterialTotalRow {
	return []MaterialTotalRow{
		{
			MaterialName:  "Denim 12oz",
			ItemCode:      "FAB-001",
			Unit:          "meter",
			OrderCount:    3,
			RequiredQty:   types.MustQuantity("750"),
			ActualUsedQty: types.MustQuantity("760"),
			Wastage:       types.MustQuantity("38"),
		},
		{
			MaterialName: "Poly Thread",
			ItemCode:     "THR-001",
			Unit:         "piece",
			OrderCount:   1,
			RequiredQty:  types.MustQuantity("200"),
		},
	}
}

func TestMaterialTotals_NoFilter(t *testing.T) {
	svc := NewService(&fakeReader{totals: sampleTotals()}, &fakeOrderRepo{})

	rows, err := svc.MaterialTotals(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestMaterialTotals_FilterNarrowsRows(t *testing.T) {
	svc := NewService(&fakeReader{totals: sampleTotals()}, &fakeOrderRepo{})

	rows, err := svc.MaterialTotals(context.Background(), `unit == "meter" && wastage > 10.0`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "FAB-001", rows[0].ItemCode)

	rows, err = svc.MaterialTotals(context.Background(), `wastePercentage > 4.9`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Denim 12oz", rows[0].MaterialName)
}

func TestMaterialTotals_FilterMustBeBoolean(t *testing.T) {
	svc := NewService(&fakeReader{totals: sampleTotals()}, &fakeOrderRepo{})

	_, err := svc.MaterialTotals(context.Background(), `wastage + 1.0`)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestMaterialTotals_FilterSyntaxError(t *testing.T) {
	svc := NewService(&fakeReader{totals: sampleTotals()}, &fakeOrderRepo{})

	_, err := svc.MaterialTotals(context.Background(), `unit ===`)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestMaterialTotalRow_WastePct(t *testing.T) {
	// Denominator is actual usage once production has reported any.
	row := MaterialTotalRow{
		RequiredQty:   types.MustQuantity("100"),
		ActualUsedQty: types.MustQuantity("200"),
		Wastage:       types.MustQuantity("10"),
	}
	assert.Equal(t, "5.00", types.FormatPercent(row.WastePct()))

	// Before production, required quantity takes over.
	row.ActualUsedQty = 0
	assert.Equal(t, "10.00", types.FormatPercent(row.WastePct()))

	// No wastage means a flat zero regardless of usage.
	row.Wastage = 0
	assert.Equal(t, "0.00", types.FormatPercent(row.WastePct()))
}

func TestStockSnapshot_ShortfallFilter(t *testing.T) {
	svc := NewService(&fakeReader{stock: []StockRow{
		{
			MaterialName: "Denim 12oz",
			ItemCode:     "FAB-001",
			CurrentStock: types.MustQuantity("100"),
			OpenDemand:   types.MustQuantity("250"),
		},
		{
			MaterialName: "Poly Thread",
			ItemCode:     "THR-001",
			CurrentStock: types.MustQuantity("1000"),
			OpenDemand:   types.MustQuantity("200"),
		},
	}}, &fakeOrderRepo{})

	rows, err := svc.StockSnapshot(context.Background(), `shortfall`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "FAB-001", rows[0].ItemCode)

	rows, err = svc.StockSnapshot(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestOrderSummary_TotalsCoverFilteredLinesOnly(t *testing.T) {
	o := orders.NewOrder("PO-001", id.New(), 100)
	o.ConsumptionReport = []orders.MaterialConsumption{
		{
			LineNo:        1,
			MaterialName:  "Denim 12oz",
			Unit:          material.UnitMeter,
			IsPrimary:     true,
			RequiredQty:   types.MustQuantity("250"),
			ActualUsedQty: types.MustQuantity("255"),
			Wastage:       types.MustQuantity("12.5"),
		},
		{
			LineNo:       2,
			MaterialName: "Poly Thread",
			Unit:         material.UnitPiece,
			RequiredQty:  types.MustQuantity("200"),
		},
	}
	repo := &fakeOrderRepo{byID: map[id.ID]*orders.Order{o.ID: o}}
	svc := NewService(&fakeReader{}, repo)

	summary, err := svc.OrderSummary(context.Background(), o.ID, "isPrimary")
	require.NoError(t, err)
	require.Len(t, summary.Lines, 1)
	assert.Equal(t, types.MustQuantity("250"), summary.TotalRequired)
	assert.Equal(t, types.MustQuantity("255"), summary.TotalUsed)
	assert.Equal(t, types.MustQuantity("12.5"), summary.TotalWastage)

	summary, err = svc.OrderSummary(context.Background(), o.ID, "")
	require.NoError(t, err)
	assert.Len(t, summary.Lines, 2)
	assert.Equal(t, types.MustQuantity("450"), summary.TotalRequired)
}

func TestOrderSummary_UnknownOrder(t *testing.T) {
	svc := NewService(&fakeReader{}, &fakeOrderRepo{})

	_, err := svc.OrderSummary(context.Background(), id.New(), "")
	assert.True(t, apperror.IsNotFound(err))
}
