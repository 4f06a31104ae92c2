package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stitchstock/internal/core/apperror"
	"stitchstock/internal/core/id"
	"stitchstock/internal/core/types"
	"stitchstock/internal/domain/events"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	products map[id.ID]*Product
	boms     map[id.ID][]MaterialRequirement
	deleted  map[id.ID]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		products: make(map[id.ID]*Product),
		boms:     make(map[id.ID][]MaterialRequirement),
		deleted:  make(map[id.ID]bool),
	}
}

func (r *fakeRepo) Create(ctx context.Context, p *Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	p, ok := r.products[productID]
	if !ok || r.deleted[productID] {
		return nil, apperror.NewNotFound("product", productID)
	}
	return p, nil
}

func (r *fakeRepo) GetByCode(ctx context.Context, styleNumber string) (*Product, error) {
	for _, p := range r.products {
		if p.Code == styleNumber && !r.deleted[p.ID] {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("product", styleNumber)
}

func (r *fakeRepo) Update(ctx context.Context, p *Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeRepo) SetDeletionMark(ctx context.Context, productID id.ID, marked bool) error {
	r.deleted[productID] = marked
	return nil
}

func (r *fakeRepo) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	var items []*Product
	for _, p := range r.products {
		if r.deleted[p.ID] && !filter.IncludeDeleted {
			continue
		}
		items = append(items, p)
	}
	return ListResult{Items: items, TotalCount: int64(len(items))}, nil
}

func (r *fakeRepo) Exists(ctx context.Context, productID id.ID) (bool, error) {
	_, ok := r.products[productID]
	return ok, nil
}

func (r *fakeRepo) SaveRequirements(ctx context.Context, productID id.ID, reqs []MaterialRequirement) error {
	r.boms[productID] = reqs
	return nil
}

func (r *fakeRepo) GetRequirements(ctx context.Context, productID id.ID) ([]MaterialRequirement, error) {
	return r.boms[productID], nil
}

func (r *fakeRepo) StylesUsingMaterial(ctx context.Context, materialID id.ID) ([]string, error) {
	var styles []string
	for _, p := range r.products {
		for _, req := range r.boms[p.ID] {
			if req.MaterialID == materialID {
				styles = append(styles, p.Code)
				break
			}
		}
	}
	return styles, nil
}

type fakeMaterialChecker struct {
	known map[id.ID]bool
}

func (f *fakeMaterialChecker) Exists(ctx context.Context, materialID id.ID) (bool, error) {
	return f.known[materialID], nil
}

type capturingPublisher struct {
	events []events.ProductWastageChanged
}

func (p *capturingPublisher) PublishProductWastageChanged(ctx context.Context, evt events.ProductWastageChanged) {
	p.events = append(p.events, evt)
}

type productFixture struct {
	svc       *Service
	repo      *fakeRepo
	checker   *fakeMaterialChecker
	publisher *capturingPublisher

	fabricID id.ID
	threadID id.ID
}

func newProductFixture() *productFixture {
	f := &productFixture{
		repo:      newFakeRepo(),
		publisher: &capturingPublisher{},
		fabricID:  id.New(),
		threadID:  id.New(),
	}
	f.checker = &fakeMaterialChecker{known: map[id.ID]bool{
		f.fabricID: true,
		f.threadID: true,
	}}
	f.svc = NewService(f.repo, f.checker, f.publisher, passthroughTx{})
	return f
}

func (f *productFixture) jacket(t *testing.T) *Product {
	t.Helper()
	p := NewProduct("ST-1001", "Denim Jacket")
	p.AddRequirement(f.fabricID, types.MustQuantity("2.5"), types.MustPercent("5"), "", true)
	p.AddRequirement(f.threadID, types.MustQuantity("2"), types.MustPercent("0"), "", false)
	require.NoError(t, f.svc.Create(context.Background(), p))
	return p
}

func TestCreate_PersistsBOM(t *testing.T) {
	f := newProductFixture()
	p := f.jacket(t)

	got, err := f.svc.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, got.MaterialsRequired, 2)
	assert.True(t, got.MaterialsRequired[0].IsPrimary)
}

func TestCreate_DuplicateStyleNumber(t *testing.T) {
	f := newProductFixture()
	f.jacket(t)

	dup := NewProduct("ST-1001", "Another Jacket")
	err := f.svc.Create(context.Background(), dup)
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicate(err))
}

func TestCreate_RejectsUnknownMaterial(t *testing.T) {
	f := newProductFixture()

	p := NewProduct("ST-2001", "Hoodie")
	p.AddRequirement(id.New(), types.MustQuantity("1.8"), types.MustPercent("3"), "", true)

	err := f.svc.Create(context.Background(), p)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestValidate_AtMostOnePrimaryLine(t *testing.T) {
	f := newProductFixture()

	p := NewProduct("ST-2001", "Hoodie")
	p.AddRequirement(f.fabricID, types.MustQuantity("1.8"), types.MustPercent("3"), "", true)
	p.AddRequirement(f.threadID, types.MustQuantity("2"), types.MustPercent("0"), "", true)

	err := f.svc.Create(context.Background(), p)
	require.Error(t, err)
}

func TestPrimaryRequirement_FallsBackToFirstLine(t *testing.T) {
	p := NewProduct("ST-2001", "Hoodie")
	fabricID := id.New()
	p.AddRequirement(fabricID, types.MustQuantity("1.8"), types.MustPercent("3"), "", false)
	p.AddRequirement(id.New(), types.MustQuantity("2"), types.MustPercent("0"), "", false)

	req, ok := p.PrimaryRequirement()
	require.True(t, ok)
	assert.Equal(t, fabricID, req.MaterialID)

	empty := NewProduct("ST-3001", "Bare")
	_, ok = empty.PrimaryRequirement()
	assert.False(t, ok)
}

func TestUpdateWastage_PublishesChangeEvent(t *testing.T) {
	f := newProductFixture()
	p := f.jacket(t)

	got, err := f.svc.UpdateWastage(context.Background(), p.ID, []WastageUpdate{
		{MaterialID: f.fabricID, ExpectedWastagePct: types.MustPercent("8"), Remarks: "seasonal fabric"},
	}, "reviewed after Q2 run")
	require.NoError(t, err)

	assert.True(t, got.MaterialsRequired[0].ExpectedWastagePct.Equal(types.MustPercent("8")))
	assert.Equal(t, "seasonal fabric", got.MaterialsRequired[0].WastageRemarks)
	assert.Equal(t, "reviewed after Q2 run", got.WastageRemarks)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, p.ID, f.publisher.events[0].ProductID)
}

func TestUpdateWastage_NoChangeNoEvent(t *testing.T) {
	f := newProductFixture()
	p := f.jacket(t)

	_, err := f.svc.UpdateWastage(context.Background(), p.ID, []WastageUpdate{
		{MaterialID: f.fabricID, ExpectedWastagePct: types.MustPercent("5")},
	}, "")
	require.NoError(t, err)
	assert.Empty(t, f.publisher.events)
}

func TestUpdateWastage_RejectsOutOfRangePercent(t *testing.T) {
	f := newProductFixture()
	p := f.jacket(t)

	_, err := f.svc.UpdateWastage(context.Background(), p.ID, []WastageUpdate{
		{MaterialID: f.fabricID, ExpectedWastagePct: types.MustPercent("120")},
	}, "")
	require.Error(t, err)
	assert.Empty(t, f.publisher.events)
}

func TestUpdateWastage_EmptyUpdates(t *testing.T) {
	f := newProductFixture()
	p := f.jacket(t)

	_, err := f.svc.UpdateWastage(context.Background(), p.ID, nil, "")
	require.Error(t, err)
}

func TestDelete_MarksProduct(t *testing.T) {
	f := newProductFixture()
	p := f.jacket(t)

	require.NoError(t, f.svc.Delete(context.Background(), p.ID))
	_, err := f.svc.GetByID(context.Background(), p.ID)
	assert.True(t, apperror.IsNotFound(err))
}
