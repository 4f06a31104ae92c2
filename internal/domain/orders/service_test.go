package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stitchstock/internal/core/apperror"
	"stitchstock/internal/core/id"
	"stitchstock/internal/core/types"
	"stitchstock/internal/domain/catalogs/material"
	"stitchstock/internal/domain/catalogs/product"
)

type serviceFixture struct {
	service   *Service
	orders    *fakeOrderRepo
	products  *fakeProductRepo
	materials *fakeMaterialRepo
	logs      *fakeLogStore

	jacket *product.Product
	fabric *material.RawMaterial
	thread *material.RawMaterial
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	f := &serviceFixture{
		orders:    newFakeOrderRepo(),
		products:  newFakeProductRepo(),
		materials: newFakeMaterialRepo(),
		logs:      &fakeLogStore{},
	}

	f.fabric = material.NewRawMaterial("FAB-001", "Denim", material.UnitMeter)
	f.fabric.CurrentStock = types.MustQuantity("500")
	f.thread = material.NewRawMaterial("THR-001", "Thread", material.UnitPiece)
	f.thread.CurrentStock = types.MustQuantity("1000")
	require.NoError(t, f.materials.Create(context.Background(), f.fabric))
	require.NoError(t, f.materials.Create(context.Background(), f.thread))

	f.jacket = product.NewProduct("ST-1001", "Denim Jacket")
	f.jacket.AddRequirement(f.fabric.ID, types.MustQuantity("2.5"), types.MustPercent("5"), "", true)
	f.jacket.AddRequirement(f.thread.ID, types.MustQuantity("2"), types.MustPercent("0"), "", false)
	require.NoError(t, f.products.Create(context.Background(), f.jacket))

	f.service = NewService(f.orders, f.products, f.materials, f.logs, passthroughTx{})
	return f
}

func (f *serviceFixture) createOrder(t *testing.T, poNumber string, quantity int) *Order {
	t.Helper()
	o, err := f.service.Create(context.Background(), poNumber, f.jacket.ID, time.Now().UTC(), quantity, "")
	require.NoError(t, err)
	return o
}

func TestServiceCreate_SnapshotsBOM(t *testing.T) {
	f := newServiceFixture(t)

	o := f.createOrder(t, "PO-001", 100)

	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, "ST-1001", o.StyleNumber)
	assert.Equal(t, "Denim Jacket", o.ProductName)
	require.Len(t, o.ConsumptionReport, 2)
	assert.Equal(t, types.MustQuantity("250"), o.ConsumptionReport[0].RequiredQty)
	assert.Equal(t, "Denim", o.ConsumptionReport[0].MaterialName)

	// Creation never moves stock.
	assert.Equal(t, types.MustQuantity("500"), f.fabric.CurrentStock)

	// Later material renames do not touch the stored snapshot.
	f.fabric.Name = "Denim 14oz"
	stored, err := f.service.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Denim", stored.ConsumptionReport[0].MaterialName)
}

func TestServiceCreate_DuplicatePONumber(t *testing.T) {
	f := newServiceFixture(t)
	f.createOrder(t, "PO-001", 10)

	_, err := f.service.Create(context.Background(), "PO-001", f.jacket.ID, time.Now().UTC(), 5, "")
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicate(err))
}

func TestServiceCreate_RejectsInvalidQuantity(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Create(context.Background(), "PO-001", f.jacket.ID, time.Now().UTC(), 0, "")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestServiceCreate_UnknownProductIsValidationError(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Create(context.Background(), "PO-001", id.New(), time.Now().UTC(), 10, "")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestServiceCreate_UnknownMaterialIsValidationError(t *testing.T) {
	f := newServiceFixture(t)

	// The BOM still references the thread, but the catalog lost it.
	delete(f.materials.materials, f.thread.ID)

	_, err := f.service.Create(context.Background(), "PO-001", f.jacket.ID, time.Now().UTC(), 10, "")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, f.thread.ID.String(), appErr.Details["materialId"])
}

func TestTransitionStatus_StartProductionDecrementsStock(t *testing.T) {
	f := newServiceFixture(t)
	o := f.createOrder(t, "PO-001", 100)

	updated, err := f.service.TransitionStatus(context.Background(), o.ID, StatusProducing)
	require.NoError(t, err)
	assert.Equal(t, StatusProducing, updated.Status)

	// 100 pieces x 2.5 m and 100 x 2 pieces of thread.
	assert.Equal(t, types.MustQuantity("250"), f.fabric.CurrentStock)
	assert.Equal(t, types.MustQuantity("800"), f.thread.CurrentStock)
}

func TestTransitionStatus_CollectsAllShortfalls(t *testing.T) {
	f := newServiceFixture(t)
	o := f.createOrder(t, "PO-001", 100)

	// Both materials short: 250m fabric and 200 thread needed.
	f.fabric.CurrentStock = types.MustQuantity("100")
	f.thread.CurrentStock = types.MustQuantity("50")

	_, err := f.service.TransitionStatus(context.Background(), o.ID, StatusProducing)
	require.Error(t, err)
	require.True(t, apperror.IsInsufficientStock(err))

	appErr, _ := apperror.AsAppError(err)
	shortfalls, ok := appErr.Details["insufficientMaterials"].([]apperror.StockShortfall)
	require.True(t, ok)
	require.Len(t, shortfalls, 2)
	assert.Equal(t, types.MustQuantity("250"), shortfalls[0].RequiredQty)
	assert.Equal(t, types.MustQuantity("100"), shortfalls[0].CurrentStock)

	// Nothing was decremented and the order did not move.
	assert.Equal(t, types.MustQuantity("100"), f.fabric.CurrentStock)
	assert.Equal(t, types.MustQuantity("50"), f.thread.CurrentStock)
	stored, err := f.service.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
}

func TestTransitionStatus_ForwardOnly(t *testing.T) {
	f := newServiceFixture(t)
	o := f.createOrder(t, "PO-001", 10)

	_, err := f.service.TransitionStatus(context.Background(), o.ID, StatusCompleted)
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeInvalidTransition, appErr.Code)
}

func TestTransitionStatus_CompleteHasNoStockEffects(t *testing.T) {
	f := newServiceFixture(t)
	o := f.createOrder(t, "PO-001", 10)

	_, err := f.service.TransitionStatus(context.Background(), o.ID, StatusProducing)
	require.NoError(t, err)
	fabricAfterStart := f.fabric.CurrentStock

	updated, err := f.service.TransitionStatus(context.Background(), o.ID, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, updated.Status)
	assert.Equal(t, fabricAfterStart, f.fabric.CurrentStock)
}

func TestDelete_ReportsCascadedLogCount(t *testing.T) {
	f := newServiceFixture(t)
	o := f.createOrder(t, "PO-001", 10)
	f.logs.deleted = 3

	count, err := f.service.Delete(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	_, err = f.service.GetByID(context.Background(), o.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDelete_KeepsOrderWhenLogCascadeFails(t *testing.T) {
	f := newServiceFixture(t)
	o := f.createOrder(t, "PO-001", 10)
	f.logs.deleteErr = errors.New("connection reset")

	_, err := f.service.Delete(context.Background(), o.ID)
	require.Error(t, err)

	stored, err := f.service.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, stored.ID)
}

func TestGetUsage_JoinsLiveStockAndHistory(t *testing.T) {
	f := newServiceFixture(t)
	o := f.createOrder(t, "PO-001", 100)

	f.logs.history = map[id.ID][]WastageHistoryEntry{
		f.fabric.ID: {
			{Date: time.Now().UTC(), ExtraWastage: types.MustQuantity("2"), TotalWastage: types.MustQuantity("2")},
		},
	}

	usage, err := f.service.GetUsage(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, usage.Materials, 2)

	assert.Equal(t, types.MustQuantity("500"), usage.Materials[0].CurrentStock)
	assert.Len(t, usage.Materials[0].History, 1)
	assert.Empty(t, usage.Materials[1].History)
}

func TestGetUsage_ToleratesDeletedMaterial(t *testing.T) {
	f := newServiceFixture(t)
	o := f.createOrder(t, "PO-001", 10)

	// The material vanishes from the catalog; the usage report survives
	// on the snapshot with zero live stock.
	delete(f.materials.materials, f.thread.ID)

	usage, err := f.service.GetUsage(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, usage.Materials, 2)
	assert.True(t, usage.Materials[1].CurrentStock.IsZero())
}
