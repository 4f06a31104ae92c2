package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stitchstock/internal/core/apperror"
	"stitchstock/internal/core/id"
	"stitchstock/internal/domain/catalogs/product"
)

const (
	productsTable     = "cat_products"
	requirementsTable = "cat_product_requirements"
)

// ProductRepo implements product.Repository. It also serves as the
// material.ReferenceChecker used to block deleting materials still
// referenced by a BOM.
type ProductRepo struct {
	baseRepo[*product.Product]
}

func NewProductRepo(txm *TxManager) *ProductRepo {
	return &ProductRepo{
		baseRepo: newBaseRepo(
			txm,
			productsTable,
			ExtractDBColumns[product.Product](),
			func() *product.Product { return &product.Product{} },
		),
	}
}

func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	if err := r.insert(ctx, p); err != nil {
		if IsUniqueViolation(err) {
			return apperror.NewDuplicate("product", "styleNo", p.Code)
		}
		return err
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": productID})
	return r.getOne(ctx, q, productID)
}

func (r *ProductRepo) GetByCode(ctx context.Context, styleNumber string) (*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"code": styleNumber}).
		Where(squirrel.Eq{"deletion_mark": false})
	return r.getOne(ctx, q, styleNumber)
}

func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	return r.update(ctx, p)
}

func (r *ProductRepo) SetDeletionMark(ctx context.Context, productID id.ID, marked bool) error {
	sql, args, err := r.Builder().
		Update(productsTable).
		Set("deletion_mark", marked).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": productID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set deletion mark: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(productsTable, productID)
	}
	return nil
}

func (r *ProductRepo) List(ctx context.Context, filter product.ListFilter) (product.ListResult, error) {
	result := product.ListResult{
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
		return result, fmt.Errorf("list products: %w", err)
	}

	return result, nil
}

func (r *ProductRepo) Exists(ctx context.Context, productID id.ID) (bool, error) {
	return r.exists(ctx, squirrel.Eq{"id": productID, "deletion_mark": false})
}

func (r *ProductRepo) SaveRequirements(ctx context.Context, productID id.ID, reqs []product.MaterialRequirement) error {
	querier := r.querier(ctx)

	deleteSQL := "DELETE FROM " + requirementsTable + " WHERE product_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, productID); err != nil {
		return fmt.Errorf("delete existing requirements: %w", err)
	}

	if len(reqs) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(requirementsTable).
		Columns(
			"line_id", "product_id", "line_no", "material_id",
			"quantity_per_piece", "expected_wastage_pct", "wastage_remarks", "is_primary",
		)

	for _, req := range reqs {
		q = q.Values(
			req.LineID, productID, req.LineNo, req.MaterialID,
			req.QuantityPerPiece, req.ExpectedWastagePct, req.WastageRemarks, req.IsPrimary,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert requirements: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert requirements: %w", err)
	}
	return nil
}

func (r *ProductRepo) GetRequirements(ctx context.Context, productID id.ID) ([]product.MaterialRequirement, error) {
	sql, args, err := r.Builder().
		Select(
			"line_id", "line_no", "material_id",
			"quantity_per_piece", "expected_wastage_pct", "wastage_remarks", "is_primary",
		).
		From(requirementsTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var reqs []product.MaterialRequirement
	if err := pgxscan.Select(ctx, r.querier(ctx), &reqs, sql, args...); err != nil {
		return nil, fmt.Errorf("get requirements: %w", err)
	}
	return reqs, nil
}

func (r *ProductRepo) StylesUsingMaterial(ctx context.Context, materialID id.ID) ([]string, error) {
	sql, args, err := r.Builder().
		Select("DISTINCT p.code").
		From(requirementsTable + " req").
		Join(productsTable + " p ON p.id = req.product_id").
		Where(squirrel.Eq{"req.material_id": materialID}).
		Where(squirrel.Eq{"p.deletion_mark": false}).
		OrderBy("p.code").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var styles []string
	if err := pgxscan.Select(ctx, r.querier(ctx), &styles, sql, args...); err != nil {
		return nil, fmt.Errorf("styles using material: %w", err)
	}
	return styles, nil
}
