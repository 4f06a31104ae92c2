package material

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stitchstock/internal/core/apperror"
	"stitchstock/internal/core/id"
	"stitchstock/internal/core/types"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	materials map[id.ID]*RawMaterial
	batches   map[id.ID][]ReceivedBatch
	deleted   map[id.ID]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		materials: make(map[id.ID]*RawMaterial),
		batches:   make(map[id.ID][]ReceivedBatch),
		deleted:   make(map[id.ID]bool),
	}
}

func (r *fakeRepo) Create(ctx context.Context, m *RawMaterial) error {
	r.materials[m.ID] = m
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, materialID id.ID) (*RawMaterial, error) {
	m, ok := r.materials[materialID]
	if !ok || r.deleted[materialID] {
		return nil, apperror.NewNotFound("material", materialID)
	}
	return m, nil
}

func (r *fakeRepo) GetByCode(ctx context.Context, itemCode string) (*RawMaterial, error) {
	for _, m := range r.materials {
		if m.Code == itemCode && !r.deleted[m.ID] {
			return m, nil
		}
	}
	return nil, apperror.NewNotFound("material", itemCode)
}

func (r *fakeRepo) Update(ctx context.Context, m *RawMaterial) error {
	r.materials[m.ID] = m
	return nil
}

func (r *fakeRepo) SetDeletionMark(ctx context.Context, materialID id.ID, marked bool) error {
	r.deleted[materialID] = marked
	return nil
}

func (r *fakeRepo) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	var items []*RawMaterial
	for _, m := range r.materials {
		if r.deleted[m.ID] && !filter.IncludeDeleted {
			continue
		}
		items = append(items, m)
	}
	return ListResult{Items: items, TotalCount: int64(len(items))}, nil
}

func (r *fakeRepo) Exists(ctx context.Context, materialID id.ID) (bool, error) {
	_, ok := r.materials[materialID]
	return ok, nil
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, materialID id.ID) (*RawMaterial, error) {
	return r.GetByID(ctx, materialID)
}

func (r *fakeRepo) AdjustStock(ctx context.Context, materialID id.ID, delta types.Quantity, at time.Time) error {
	m, ok := r.materials[materialID]
	if !ok {
		return apperror.NewNotFound("material", materialID)
	}
	next := m.CurrentStock + delta
	if next.IsNegative() {
		return fmt.Errorf("stock constraint violated")
	}
	m.CurrentStock = next
	m.UpdatedAt = at
	return nil
}

func (r *fakeRepo) AddBatch(ctx context.Context, batch ReceivedBatch) error {
	r.batches[batch.MaterialID] = append(r.batches[batch.MaterialID], batch)
	return nil
}

func (r *fakeRepo) GetBatches(ctx context.Context, materialID id.ID) ([]ReceivedBatch, error) {
	return r.batches[materialID], nil
}

type fakeReferences struct {
	styles map[id.ID][]string
}

func (f *fakeReferences) StylesUsingMaterial(ctx context.Context, materialID id.ID) ([]string, error) {
	return f.styles[materialID], nil
}

func newMaterialService() (*Service, *fakeRepo, *fakeReferences) {
	repo := newFakeRepo()
	refs := &fakeReferences{styles: make(map[id.ID][]string)}
	return NewService(repo, refs, passthroughTx{}), repo, refs
}

func TestCreate(t *testing.T) {
	svc, repo, _ := newMaterialService()

	m := NewRawMaterial("FAB-001", "Denim 12oz", UnitMeter)
	require.NoError(t, svc.Create(context.Background(), m))
	assert.Contains(t, repo.materials, m.ID)
}

func TestCreate_DuplicateItemCode(t *testing.T) {
	svc, _, _ := newMaterialService()

	require.NoError(t, svc.Create(context.Background(), NewRawMaterial("FAB-001", "Denim 12oz", UnitMeter)))

	err := svc.Create(context.Background(), NewRawMaterial("FAB-001", "Denim 14oz", UnitMeter))
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicate(err))
}

func TestCreate_RejectsInvalidUnit(t *testing.T) {
	svc, _, _ := newMaterialService()

	err := svc.Create(context.Background(), NewRawMaterial("FAB-001", "Denim", Unit("bolt")))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestReceiveBatch(t *testing.T) {
	svc, _, _ := newMaterialService()

	m := NewRawMaterial("FAB-001", "Denim 12oz", UnitMeter)
	m.CurrentStock = types.MustQuantity("100")
	require.NoError(t, svc.Create(context.Background(), m))

	got, err := svc.ReceiveBatch(context.Background(), m.ID, types.MustQuantity("50.5"), "supplier roll")
	require.NoError(t, err)

	assert.Equal(t, types.MustQuantity("150.5"), got.CurrentStock)
	require.Len(t, got.Batches, 1)
	assert.Equal(t, types.MustQuantity("50.5"), got.Batches[0].Quantity)
	assert.Equal(t, "supplier roll", got.Batches[0].Remarks)
}

func TestReceiveBatch_RejectsNonPositiveQuantity(t *testing.T) {
	svc, _, _ := newMaterialService()

	m := NewRawMaterial("FAB-001", "Denim 12oz", UnitMeter)
	require.NoError(t, svc.Create(context.Background(), m))

	_, err := svc.ReceiveBatch(context.Background(), m.ID, types.MustQuantity("0"), "")
	require.Error(t, err)
	_, err = svc.ReceiveBatch(context.Background(), m.ID, types.MustQuantity("-5"), "")
	require.Error(t, err)
}

func TestDelete_BlockedWhileReferenced(t *testing.T) {
	svc, repo, refs := newMaterialService()

	m := NewRawMaterial("FAB-001", "Denim 12oz", UnitMeter)
	require.NoError(t, svc.Create(context.Background(), m))
	refs.styles[m.ID] = []string{"ST-1001", "ST-1002"}

	err := svc.Delete(context.Background(), m.ID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeMaterialInUse, appErr.Code)
	assert.Equal(t, []string{"ST-1001", "ST-1002"}, appErr.Details["products"])
	assert.False(t, repo.deleted[m.ID])
}

func TestDelete_MarksUnreferencedMaterial(t *testing.T) {
	svc, repo, _ := newMaterialService()

	m := NewRawMaterial("FAB-001", "Denim 12oz", UnitMeter)
	require.NoError(t, svc.Create(context.Background(), m))

	require.NoError(t, svc.Delete(context.Background(), m.ID))
	assert.True(t, repo.deleted[m.ID])

	_, err := svc.GetByID(context.Background(), m.ID)
	assert.True(t, apperror.IsNotFound(err))
}
