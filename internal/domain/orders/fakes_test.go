package orders

import (
	"context"
	"fmt"
	"time"

	"stitchstock/internal/core/apperror"
	"stitchstock/internal/core/id"
	"stitchstock/internal/core/types"
	"stitchstock/internal/domain/catalogs/material"
	"stitchstock/internal/domain/catalogs/product"
)

// passthroughTx runs the function directly; the fakes below are not
// transactional.
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeOrderRepo struct {
	orders     map[id.ID]*Order
	updateErrs map[id.ID]error
	updates    int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:     make(map[id.ID]*Order),
		updateErrs: make(map[id.ID]error),
	}
}

func (r *fakeOrderRepo) Create(ctx context.Context, o *Order) error {
	r.orders[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, orderID id.ID) (*Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, apperror.NewNotFound("order", orderID)
	}
	return o, nil
}

func (r *fakeOrderRepo) GetByNumber(ctx context.Context, poNumber string) (*Order, error) {
	for _, o := range r.orders {
		if o.Number == poNumber {
			return o, nil
		}
	}
	return nil, apperror.NewNotFound("order", poNumber)
}

func (r *fakeOrderRepo) ExistsByNumber(ctx context.Context, poNumber string) (bool, error) {
	for _, o := range r.orders {
		if o.Number == poNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOrderRepo) Update(ctx context.Context, o *Order) error {
	if err := r.updateErrs[o.ID]; err != nil {
		return err
	}
	if _, ok := r.orders[o.ID]; !ok {
		return apperror.NewNotFound("order", o.ID)
	}
	r.orders[o.ID] = o
	r.updates++
	return nil
}

func (r *fakeOrderRepo) Delete(ctx context.Context, orderID id.ID) error {
	if _, ok := r.orders[orderID]; !ok {
		return apperror.NewNotFound("order", orderID)
	}
	delete(r.orders, orderID)
	return nil
}

func (r *fakeOrderRepo) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	result := ListResult{Limit: filter.Limit, Offset: filter.Offset}
	for _, o := range r.orders {
		result.Items = append(result.Items, o)
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

func (r *fakeOrderRepo) ListOpenByProduct(ctx context.Context, productID id.ID) ([]*Order, error) {
	var out []*Order
	for _, o := range r.orders {
		if o.ProductID == productID && o.IsOpen() {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) SaveReport(ctx context.Context, orderID id.ID, report []MaterialConsumption) error {
	o, ok := r.orders[orderID]
	if !ok {
		return apperror.NewNotFound("order", orderID)
	}
	o.ConsumptionReport = report
	return nil
}

type fakeProductRepo struct {
	products map[id.ID]*product.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[id.ID]*product.Product)}
}

func (r *fakeProductRepo) Create(ctx context.Context, p *product.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	return p, nil
}

func (r *fakeProductRepo) GetByCode(ctx context.Context, styleNumber string) (*product.Product, error) {
	for _, p := range r.products {
		if p.Code == styleNumber {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("product", styleNumber)
}

func (r *fakeProductRepo) Update(ctx context.Context, p *product.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) SetDeletionMark(ctx context.Context, productID id.ID, marked bool) error {
	p, ok := r.products[productID]
	if !ok {
		return apperror.NewNotFound("product", productID)
	}
	p.DeletionMark = marked
	return nil
}

func (r *fakeProductRepo) List(ctx context.Context, filter product.ListFilter) (product.ListResult, error) {
	return product.ListResult{}, nil
}

func (r *fakeProductRepo) Exists(ctx context.Context, productID id.ID) (bool, error) {
	_, ok := r.products[productID]
	return ok, nil
}

func (r *fakeProductRepo) SaveRequirements(ctx context.Context, productID id.ID, reqs []product.MaterialRequirement) error {
	p, ok := r.products[productID]
	if !ok {
		return apperror.NewNotFound("product", productID)
	}
	p.MaterialsRequired = reqs
	return nil
}

func (r *fakeProductRepo) GetRequirements(ctx context.Context, productID id.ID) ([]product.MaterialRequirement, error) {
	p, ok := r.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	return p.MaterialsRequired, nil
}

func (r *fakeProductRepo) StylesUsingMaterial(ctx context.Context, materialID id.ID) ([]string, error) {
	var styles []string
	for _, p := range r.products {
		for _, req := range p.MaterialsRequired {
			if req.MaterialID == materialID {
				styles = append(styles, p.Code)
				break
			}
		}
	}
	return styles, nil
}

type fakeMaterialRepo struct {
	materials map[id.ID]*material.RawMaterial
}

func newFakeMaterialRepo() *fakeMaterialRepo {
	return &fakeMaterialRepo{materials: make(map[id.ID]*material.RawMaterial)}
}

func (r *fakeMaterialRepo) Create(ctx context.Context, m *material.RawMaterial) error {
	r.materials[m.ID] = m
	return nil
}

func (r *fakeMaterialRepo) GetByID(ctx context.Context, materialID id.ID) (*material.RawMaterial, error) {
	m, ok := r.materials[materialID]
	if !ok {
		return nil, apperror.NewNotFound("material", materialID)
	}
	return m, nil
}

func (r *fakeMaterialRepo) GetByCode(ctx context.Context, itemCode string) (*material.RawMaterial, error) {
	for _, m := range r.materials {
		if m.Code == itemCode {
			return m, nil
		}
	}
	return nil, apperror.NewNotFound("material", itemCode)
}

func (r *fakeMaterialRepo) Update(ctx context.Context, m *material.RawMaterial) error {
	r.materials[m.ID] = m
	return nil
}

func (r *fakeMaterialRepo) SetDeletionMark(ctx context.Context, materialID id.ID, marked bool) error {
	m, ok := r.materials[materialID]
	if !ok {
		return apperror.NewNotFound("material", materialID)
	}
	m.DeletionMark = marked
	return nil
}

func (r *fakeMaterialRepo) List(ctx context.Context, filter material.ListFilter) (material.ListResult, error) {
	return material.ListResult{}, nil
}

func (r *fakeMaterialRepo) Exists(ctx context.Context, materialID id.ID) (bool, error) {
	_, ok := r.materials[materialID]
	return ok, nil
}

func (r *fakeMaterialRepo) GetForUpdate(ctx context.Context, materialID id.ID) (*material.RawMaterial, error) {
	return r.GetByID(ctx, materialID)
}

func (r *fakeMaterialRepo) AdjustStock(ctx context.Context, materialID id.ID, delta types.Quantity, at time.Time) error {
	m, ok := r.materials[materialID]
	if !ok {
		return apperror.NewNotFound("material", materialID)
	}
	next := m.CurrentStock + delta
	if next.IsNegative() {
		// Mirrors the CHECK constraint on current_stock.
		return fmt.Errorf("stock constraint violated for %s", m.Code)
	}
	m.CurrentStock = next
	m.UpdatedAt = at
	return nil
}

func (r *fakeMaterialRepo) AddBatch(ctx context.Context, batch material.ReceivedBatch) error {
	m, ok := r.materials[batch.MaterialID]
	if !ok {
		return apperror.NewNotFound("material", batch.MaterialID)
	}
	m.Batches = append(m.Batches, batch)
	return nil
}

func (r *fakeMaterialRepo) GetBatches(ctx context.Context, materialID id.ID) ([]material.ReceivedBatch, error) {
	m, ok := r.materials[materialID]
	if !ok {
		return nil, apperror.NewNotFound("material", materialID)
	}
	return m.Batches, nil
}

type fakeLogStore struct {
	deleted   int64
	deleteErr error
	history   map[id.ID][]WastageHistoryEntry
}

func (s *fakeLogStore) DeleteByOrder(ctx context.Context, orderID id.ID) (int64, error) {
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	return s.deleted, nil
}

func (s *fakeLogStore) WastageHistory(ctx context.Context, orderID id.ID) (map[id.ID][]WastageHistoryEntry, error) {
	if s.history == nil {
		return map[id.ID][]WastageHistoryEntry{}, nil
	}
	return s.history, nil
}
