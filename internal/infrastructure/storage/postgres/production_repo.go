package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stitchstock/internal/core/id"
	"stitchstock/internal/domain/orders"
	"stitchstock/internal/domain/production"
)

const (
	productionLogsTable = "doc_production_logs"
	materialUsagesTable = "doc_production_usages"
)

// ProductionRepo implements production.Repository and the log store used
// by the order service for cascade delete and usage history.
type ProductionRepo struct {
	baseRepo[*production.ProductionLog]
}

var _ orders.ProductionLogStore = (*ProductionRepo)(nil)

func NewProductionRepo(txm *TxManager) *ProductionRepo {
	return &ProductionRepo{
		baseRepo: newBaseRepo(
			txm,
			productionLogsTable,
			ExtractDBColumns[production.ProductionLog](),
			func() *production.ProductionLog { return &production.ProductionLog{} },
		),
	}
}

func (r *ProductionRepo) Create(ctx context.Context, l *production.ProductionLog) error {
	return r.insert(ctx, l)
}

func (r *ProductionRepo) GetByID(ctx context.Context, logID id.ID) (*production.ProductionLog, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": logID})
	l, err := r.getOne(ctx, q, logID)
	if err != nil {
		return nil, err
	}
	if err := r.loadUsages(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (r *ProductionRepo) ListByOrder(ctx context.Context, orderID id.ID) ([]*production.ProductionLog, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("date ASC, number ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var logs []*production.ProductionLog
	if err := pgxscan.Select(ctx, r.querier(ctx), &logs, sql, args...); err != nil {
		return nil, fmt.Errorf("list production logs: %w", err)
	}

	for _, l := range logs {
		if err := r.loadUsages(ctx, l); err != nil {
			return nil, err
		}
	}
	return logs, nil
}

func (r *ProductionRepo) loadUsages(ctx context.Context, l *production.ProductionLog) error {
	sql, args, err := r.Builder().
		Select(
			"usage_id", "log_id", "material_id",
			"standard_wastage", "extra_wastage", "total_wastage", "wastage_reason",
		).
		From(materialUsagesTable).
		Where(squirrel.Eq{"log_id": l.ID}).
		OrderBy("usage_id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.querier(ctx), &l.Usages, sql, args...); err != nil {
		return fmt.Errorf("load usages: %w", err)
	}
	return nil
}

func (r *ProductionRepo) SaveUsages(ctx context.Context, logID id.ID, usages []production.MaterialUsage) error {
	querier := r.querier(ctx)

	deleteSQL := "DELETE FROM " + materialUsagesTable + " WHERE log_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, logID); err != nil {
		return fmt.Errorf("delete existing usages: %w", err)
	}

	if len(usages) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(materialUsagesTable).
		Columns(
			"usage_id", "log_id", "material_id",
			"standard_wastage", "extra_wastage", "total_wastage", "wastage_reason",
		)

	for _, u := range usages {
		q = q.Values(
			u.UsageID, logID, u.MaterialID,
			u.StandardWastage, u.ExtraWastage, u.TotalWastage, u.WastageReason,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert usages: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert usages: %w", err)
	}
	return nil
}

func (r *ProductionRepo) DeleteByOrder(ctx context.Context, orderID id.ID) (int64, error) {
	querier := r.querier(ctx)

	usagesSQL := "DELETE FROM " + materialUsagesTable +
		" WHERE log_id IN (SELECT id FROM " + productionLogsTable + " WHERE order_id = $1)"
	if _, err := querier.Exec(ctx, usagesSQL, orderID); err != nil {
		return 0, fmt.Errorf("delete usages: %w", err)
	}

	result, err := querier.Exec(ctx, "DELETE FROM "+productionLogsTable+" WHERE order_id = $1", orderID)
	if err != nil {
		return 0, fmt.Errorf("delete production logs: %w", err)
	}
	return result.RowsAffected(), nil
}

// WastageHistory reconstructs each material's recorded wastage events
// from the order's logs, oldest first.
func (r *ProductionRepo) WastageHistory(ctx context.Context, orderID id.ID) (map[id.ID][]orders.WastageHistoryEntry, error) {
	sql, args, err := r.Builder().
		Select(
			"u.material_id",
			"l.date",
			"u.standard_wastage", "u.extra_wastage", "u.total_wastage",
			"u.wastage_reason", "l.is_extra_wastage_only",
		).
		From(materialUsagesTable + " u").
		Join(productionLogsTable + " l ON l.id = u.log_id").
		Where(squirrel.Eq{"l.order_id": orderID}).
		OrderBy("l.date ASC, l.number ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.querier(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query wastage history: %w", err)
	}
	defer rows.Close()

	history := make(map[id.ID][]orders.WastageHistoryEntry)
	for rows.Next() {
		var materialID id.ID
		var entry orders.WastageHistoryEntry
		err := rows.Scan(
			&materialID,
			&entry.Date,
			&entry.StandardWastage, &entry.ExtraWastage, &entry.TotalWastage,
			&entry.WastageReason, &entry.IsExtraWastageOnly,
		)
		if err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		history[materialID] = append(history[materialID], entry)
	}

	return history, rows.Err()
}
