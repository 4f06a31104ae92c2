package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stitchstock/internal/core/apperror"
	"stitchstock/internal/core/id"
	"stitchstock/internal/core/types"
	"stitchstock/internal/domain/catalogs/material"
)

const (
	materialsTable = "cat_materials"
	batchesTable   = "cat_material_batches"
)

// MaterialRepo implements material.Repository.
type MaterialRepo struct {
	baseRepo[*material.RawMaterial]
}

func NewMaterialRepo(txm *TxManager) *MaterialRepo {
	return &MaterialRepo{
		baseRepo: newBaseRepo(
			txm,
			materialsTable,
			ExtractDBColumns[material.RawMaterial](),
			func() *material.RawMaterial { return &material.RawMaterial{} },
		),
	}
}

func (r *MaterialRepo) Create(ctx context.Context, m *material.RawMaterial) error {
	if err := r.insert(ctx, m); err != nil {
		if IsUniqueViolation(err) {
			return apperror.NewDuplicate("material", "itemCode", m.Code)
		}
		return err
	}
	return nil
}

func (r *MaterialRepo) GetByID(ctx context.Context, materialID id.ID) (*material.RawMaterial, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": materialID})
	return r.getOne(ctx, q, materialID)
}

func (r *MaterialRepo) GetByCode(ctx context.Context, itemCode string) (*material.RawMaterial, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"code": itemCode}).
		Where(squirrel.Eq{"deletion_mark": false})
	return r.getOne(ctx, q, itemCode)
}

func (r *MaterialRepo) Update(ctx context.Context, m *material.RawMaterial) error {
	return r.update(ctx, m)
}

func (r *MaterialRepo) SetDeletionMark(ctx context.Context, materialID id.ID, marked bool) error {
	sql, args, err := r.Builder().
		Update(materialsTable).
		Set("deletion_mark", marked).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": materialID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set deletion mark: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(materialsTable, materialID)
	}
	return nil
}

func (r *MaterialRepo) List(ctx context.Context, filter material.ListFilter) (material.ListResult, error) {
	result := material.ListResult{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"code": pattern},
		})
	}
	if filter.Unit != nil {
		q = q.Where(squirrel.Eq{"unit": *filter.Unit})
	}

	total, err := r.count(ctx, q)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "code ASC"
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.querier(ctx), &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list materials: %w", err)
	}

	return result, nil
}

func (r *MaterialRepo) Exists(ctx context.Context, materialID id.ID) (bool, error) {
	return r.exists(ctx, squirrel.Eq{"id": materialID, "deletion_mark": false})
}

func (r *MaterialRepo) GetForUpdate(ctx context.Context, materialID id.ID) (*material.RawMaterial, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": materialID}).
		Suffix("FOR UPDATE")
	return r.getOne(ctx, q, materialID)
}

func (r *MaterialRepo) AdjustStock(ctx context.Context, materialID id.ID, delta types.Quantity, at time.Time) error {
	// The CHECK constraint on current_stock rejects negative results.
	sql, args, err := r.Builder().
		Update(materialsTable).
		Set("current_stock", squirrel.Expr("current_stock + ?", delta)).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": materialID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build stock update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(materialsTable, materialID)
	}
	return nil
}

func (r *MaterialRepo) AddBatch(ctx context.Context, batch material.ReceivedBatch) error {
	sql, args, err := r.Builder().
		Insert(batchesTable).
		SetMap(StructToMap(batch)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert batch: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (r *MaterialRepo) GetBatches(ctx context.Context, materialID id.ID) ([]material.ReceivedBatch, error) {
	sql, args, err := r.Builder().
		Select(ExtractDBColumns[material.ReceivedBatch]()...).
		From(batchesTable).
		Where(squirrel.Eq{"material_id": materialID}).
		OrderBy("received_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var batches []material.ReceivedBatch
	if err := pgxscan.Select(ctx, r.querier(ctx), &batches, sql, args...); err != nil {
		return nil, fmt.Errorf("get batches: %w", err)
	}
	return batches, nil
}
