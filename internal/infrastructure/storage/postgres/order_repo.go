package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stitchstock/internal/core/apperror"
	"stitchstock/internal/core/id"
	"stitchstock/internal/domain/orders"
)

const (
	ordersTable      = "doc_orders"
	reportLinesTable = "doc_order_consumption"
)

// OrderRepo implements orders.Repository.
type OrderRepo struct {
	baseRepo[*orders.Order]
}

func NewOrderRepo(txm *TxManager) *OrderRepo {
	return &OrderRepo{
		baseRepo: newBaseRepo(
			txm,
			ordersTable,
			ExtractDBColumns[orders.Order](),
			func() *orders.Order { return &orders.Order{} },
		),
	}
}

func (r *OrderRepo) Create(ctx context.Context, o *orders.Order) error {
	if err := r.insert(ctx, o); err != nil {
		if IsUniqueViolation(err) {
			return apperror.NewDuplicate("order", "poNo", o.Number)
		}
		return err
	}
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*orders.Order, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": orderID})
	o, err := r.getOne(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	if err := r.loadReport(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepo) GetByNumber(ctx context.Context, poNumber string) (*orders.Order, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"number": poNumber}).
		Where(squirrel.Eq{"deletion_mark": false})
	o, err := r.getOne(ctx, q, poNumber)
	if err != nil {
		return nil, err
	}
	if err := r.loadReport(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepo) ExistsByNumber(ctx context.Context, poNumber string) (bool, error) {
	return r.exists(ctx, squirrel.Eq{"number": poNumber})
}

func (r *OrderRepo) Update(ctx context.Context, o *orders.Order) error {
	return r.update(ctx, o)
}

func (r *OrderRepo) Delete(ctx context.Context, orderID id.ID) error {
	querier := r.querier(ctx)

	if _, err := querier.Exec(ctx, "DELETE FROM "+reportLinesTable+" WHERE order_id = $1", orderID); err != nil {
		return fmt.Errorf("delete consumption report: %w", err)
	}

	result, err := querier.Exec(ctx, "DELETE FROM "+ordersTable+" WHERE id = $1", orderID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(ordersTable, orderID)
	}
	return nil
}

func (r *OrderRepo) List(ctx context.Context, filter orders.ListFilter) (orders.ListResult, error) {
	result := orders.ListResult{
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
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"style_number": pattern},
			squirrel.ILike{"product_name": pattern},
		})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}

	total, err := r.count(ctx, q)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "date DESC, number DESC"
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
		return result, fmt.Errorf("list orders: %w", err)
	}

	for _, o := range result.Items {
		if err := r.loadReport(ctx, o); err != nil {
			return result, err
		}
	}

	return result, nil
}

func (r *OrderRepo) ListOpenByProduct(ctx context.Context, productID id.ID) ([]*orders.Order, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Eq{"status": []orders.Status{orders.StatusPending, orders.StatusProducing}}).
		OrderBy("date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var open []*orders.Order
	if err := pgxscan.Select(ctx, r.querier(ctx), &open, sql, args...); err != nil {
		return nil, fmt.Errorf("list open orders: %w", err)
	}

	for _, o := range open {
		if err := r.loadReport(ctx, o); err != nil {
			return nil, err
		}
	}
	return open, nil
}

func (r *OrderRepo) SaveReport(ctx context.Context, orderID id.ID, report []orders.MaterialConsumption) error {
	querier := r.querier(ctx)

	deleteSQL := "DELETE FROM " + reportLinesTable + " WHERE order_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, orderID); err != nil {
		return fmt.Errorf("delete existing report: %w", err)
	}

	if len(report) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(reportLinesTable).
		Columns(
			"line_id", "order_id", "line_no", "material_id",
			"material_name", "item_code", "unit", "is_primary",
			"required_qty", "actual_used_qty",
			"standard_wastage", "extra_wastage", "wastage", "waste_percentage",
		)

	for _, entry := range report {
		q = q.Values(
			entry.LineID, orderID, entry.LineNo, entry.MaterialID,
			entry.MaterialName, entry.ItemCode, entry.Unit, entry.IsPrimary,
			entry.RequiredQty, entry.ActualUsedQty,
			entry.StandardWastage, entry.ExtraWastage, entry.Wastage, entry.WastePct,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert report: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (r *OrderRepo) loadReport(ctx context.Context, o *orders.Order) error {
	sql, args, err := r.Builder().
		Select(
			"line_id", "line_no", "material_id",
			"material_name", "item_code", "unit", "is_primary",
			"required_qty", "actual_used_qty",
			"standard_wastage", "extra_wastage", "wastage", "waste_percentage",
		).
		From(reportLinesTable).
		Where(squirrel.Eq{"order_id": o.ID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.querier(ctx), &o.ConsumptionReport, sql, args...); err != nil {
		return fmt.Errorf("load consumption report: %w", err)
	}
	return nil
}
