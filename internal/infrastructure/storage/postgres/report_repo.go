package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"stitchstock/internal/domain/reports"
)

// ReportRepo implements reports.Reader with SQL aggregation.
type ReportRepo struct {
	txm *TxManager
}

var _ reports.Reader = (*ReportRepo)(nil)

func NewReportRepo(txm *TxManager) *ReportRepo {
	return &ReportRepo{txm: txm}
}

// MaterialTotals sums consumption report lines per material across all
// non-deleted orders.
func (r *ReportRepo) MaterialTotals(ctx context.Context) ([]reports.MaterialTotalRow, error) {
	sql := `
		SELECT
			c.material_id,
			c.material_name,
			c.item_code,
			c.unit,
			COUNT(DISTINCT c.order_id)    AS order_count,
			COALESCE(SUM(c.required_qty), 0)     AS required_qty,
			COALESCE(SUM(c.actual_used_qty), 0)  AS actual_used_qty,
			COALESCE(SUM(c.standard_wastage), 0) AS standard_wastage,
			COALESCE(SUM(c.extra_wastage), 0)    AS extra_wastage,
			COALESCE(SUM(c.wastage), 0)          AS wastage
		FROM ` + reportLinesTable + ` c
		JOIN ` + ordersTable + ` o ON o.id = c.order_id
		WHERE o.deletion_mark = false
		GROUP BY c.material_id, c.material_name, c.item_code, c.unit
		ORDER BY c.item_code
	`

	var rows []reports.MaterialTotalRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql); err != nil {
		return nil, fmt.Errorf("material totals: %w", err)
	}
	return rows, nil
}

// StockRows returns the stock position per material, with the demand
// still pending (PENDING orders have not consumed their stock yet).
func (r *ReportRepo) StockRows(ctx context.Context) ([]reports.StockRow, error) {
	sql := `
		SELECT
			m.id   AS material_id,
			m.name AS material_name,
			m.code AS item_code,
			m.unit,
			m.current_stock,
			(SELECT COUNT(*) FROM ` + batchesTable + ` b WHERE b.material_id = m.id) AS batch_count,
			COALESCE((
				SELECT SUM(c.required_qty)
				FROM ` + reportLinesTable + ` c
				JOIN ` + ordersTable + ` o ON o.id = c.order_id
				WHERE c.material_id = m.id
				  AND o.deletion_mark = false
				  AND o.status = 'PENDING'
			), 0) AS open_demand
		FROM ` + materialsTable + ` m
		WHERE m.deletion_mark = false
		ORDER BY m.code
	`

	var rows []reports.StockRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql); err != nil {
		return nil, fmt.Errorf("stock rows: %w", err)
	}
	return rows, nil
}
