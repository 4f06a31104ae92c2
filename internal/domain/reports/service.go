// Package reports builds cross-entity read models: material consumption
// totals, per-order wastage summaries, and stock snapshots. Rows can be
// narrowed with a CEL filter expression supplied by the caller.
package reports

import (
	"context"

	"github.com/google/cel-go/cel"

	"stitchstock/internal/core/id"
	"stitchstock/internal/core/types"
	"stitchstock/internal/domain/orders"
)

// MaterialTotalRow aggregates consumption of one material across all orders.
type MaterialTotalRow struct {
	MaterialID   id.ID  `db:"material_id" json:"materialId"`
	MaterialName string `db:"material_name" json:"materialName"`
	ItemCode     string `db:"item_code" json:"itemCode"`
	Unit         string `db:"unit" json:"unit"`
	OrderCount   int64  `db:"order_count" json:"orderCount"`

	RequiredQty     types.Quantity `db:"required_qty" json:"requiredQty"`
	ActualUsedQty   types.Quantity `db:"actual_used_qty" json:"actualUsedQty"`
	StandardWastage types.Quantity `db:"standard_wastage" json:"standardWastage"`
	ExtraWastage    types.Quantity `db:"extra_wastage" json:"extraWastage"`
	Wastage         types.Quantity `db:"wastage" json:"wastage"`
}

// WastePct derives the aggregate waste percentage for the row.
func (r MaterialTotalRow) WastePct() types.Percent {
	denom := r.ActualUsedQty
	if !denom.IsPositive() {
		denom = r.RequiredQty
	}
	if r.Wastage.IsZero() || !denom.IsPositive() {
		return types.ZeroPercent()
	}
	return types.PercentOf(r.Wastage, denom)
}

func (r MaterialTotalRow) celRow() map[string]any {
	return map[string]any{
		"materialName":    r.MaterialName,
		"itemCode":        r.ItemCode,
		"unit":            r.Unit,
		"orderCount":      r.OrderCount,
		"requiredQty":     r.RequiredQty.Float64(),
		"actualUsedQty":   r.ActualUsedQty.Float64(),
		"standardWastage": r.StandardWastage.Float64(),
		"extraWastage":    r.ExtraWastage.Float64(),
		"wastage":         r.Wastage.Float64(),
		"wastePercentage": r.WastePct().InexactFloat64(),
	}
}

var materialTotalVars = []cel.EnvOption{
	cel.Variable("materialName", cel.StringType),
	cel.Variable("itemCode", cel.StringType),
	cel.Variable("unit", cel.StringType),
	cel.Variable("orderCount", cel.IntType),
	cel.Variable("requiredQty", cel.DoubleType),
	cel.Variable("actualUsedQty", cel.DoubleType),
	cel.Variable("standardWastage", cel.DoubleType),
	cel.Variable("extraWastage", cel.DoubleType),
	cel.Variable("wastage", cel.DoubleType),
	cel.Variable("wastePercentage", cel.DoubleType),
}

// StockRow is one material in the stock snapshot.
type StockRow struct {
	MaterialID   id.ID          `db:"material_id" json:"materialId"`
	MaterialName string         `db:"material_name" json:"materialName"`
	ItemCode     string         `db:"item_code" json:"itemCode"`
	Unit         string         `db:"unit" json:"unit"`
	CurrentStock types.Quantity `db:"current_stock" json:"currentStock"`
	BatchCount   int64          `db:"batch_count" json:"batchCount"`

	// OpenDemand is the required quantity still pending across PENDING
	// orders (PRODUCING orders have already consumed their stock).
	OpenDemand types.Quantity `db:"open_demand" json:"openDemand"`
}

func (r StockRow) celRow() map[string]any {
	return map[string]any{
		"materialName": r.MaterialName,
		"itemCode":     r.ItemCode,
		"unit":         r.Unit,
		"currentStock": r.CurrentStock.Float64(),
		"batchCount":   r.BatchCount,
		"openDemand":   r.OpenDemand.Float64(),
		"shortfall":    r.CurrentStock < r.OpenDemand,
	}
}

var stockVars = []cel.EnvOption{
	cel.Variable("materialName", cel.StringType),
	cel.Variable("itemCode", cel.StringType),
	cel.Variable("unit", cel.StringType),
	cel.Variable("currentStock", cel.DoubleType),
	cel.Variable("batchCount", cel.IntType),
	cel.Variable("openDemand", cel.DoubleType),
	cel.Variable("shortfall", cel.BoolType),
}

// Reader is the aggregate query surface, implemented by the report
// repository with SQL aggregation.
type Reader interface {
	MaterialTotals(ctx context.Context) ([]MaterialTotalRow, error)
	StockRows(ctx context.Context) ([]StockRow, error)
}

// Service assembles report payloads and applies row filters.
type Service struct {
	reader Reader
	orders orders.Repository
}

func NewService(reader Reader, orderRepo orders.Repository) *Service {
	return &Service{reader: reader, orders: orderRepo}
}

// MaterialTotals returns consumption totals per material, optionally
// narrowed by a CEL filter over row fields.
func (s *Service) MaterialTotals(ctx context.Context, filterExpr string) ([]MaterialTotalRow, error) {
	filter, err := compileFilter(filterExpr, materialTotalVars...)
	if err != nil {
		return nil, err
	}

	rows, err := s.reader.MaterialTotals(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]MaterialTotalRow, 0, len(rows))
	for _, row := range rows {
		ok, err := filter.matches(row.celRow())
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, row)
		}
	}
	return out, nil
}

// StockSnapshot returns the current stock position per material.
func (s *Service) StockSnapshot(ctx context.Context, filterExpr string) ([]StockRow, error) {
	filter, err := compileFilter(filterExpr, stockVars...)
	if err != nil {
		return nil, err
	}

	rows, err := s.reader.StockRows(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]StockRow, 0, len(rows))
	for _, row := range rows {
		ok, err := filter.matches(row.celRow())
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, row)
		}
	}
	return out, nil
}

// OrderSummary is the wastage summary for one order.
type OrderSummary struct {
	Order *orders.Order                `json:"order"`
	Lines []orders.MaterialConsumption `json:"lines"`

	TotalRequired types.Quantity `json:"totalRequired"`
	TotalUsed     types.Quantity `json:"totalUsed"`
	TotalWastage  types.Quantity `json:"totalWastage"`
}

var summaryVars = []cel.EnvOption{
	cel.Variable("materialName", cel.StringType),
	cel.Variable("itemCode", cel.StringType),
	cel.Variable("unit", cel.StringType),
	cel.Variable("isPrimary", cel.BoolType),
	cel.Variable("requiredQty", cel.DoubleType),
	cel.Variable("actualUsedQty", cel.DoubleType),
	cel.Variable("standardWastage", cel.DoubleType),
	cel.Variable("extraWastage", cel.DoubleType),
	cel.Variable("wastage", cel.DoubleType),
	cel.Variable("wastePercentage", cel.DoubleType),
}

// OrderSummary assembles the per-order wastage summary. The filter narrows
// the report lines; totals cover the filtered lines only.
func (s *Service) OrderSummary(ctx context.Context, orderID id.ID, filterExpr string) (*OrderSummary, error) {
	filter, err := compileFilter(filterExpr, summaryVars...)
	if err != nil {
		return nil, err
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	summary := &OrderSummary{Order: o, Lines: make([]orders.MaterialConsumption, 0, len(o.ConsumptionReport))}
	for _, line := range o.ConsumptionReport {
		ok, err := filter.matches(map[string]any{
			"materialName":    line.MaterialName,
			"itemCode":        line.ItemCode,
			"unit":            string(line.Unit),
			"isPrimary":       line.IsPrimary,
			"requiredQty":     line.RequiredQty.Float64(),
			"actualUsedQty":   line.ActualUsedQty.Float64(),
			"standardWastage": line.StandardWastage.Float64(),
			"extraWastage":    line.ExtraWastage.Float64(),
			"wastage":         line.Wastage.Float64(),
			"wastePercentage": line.WastePct.InexactFloat64(),
		})
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		summary.Lines = append(summary.Lines, line)
		summary.TotalRequired += line.RequiredQty
		summary.TotalUsed += line.ActualUsedQty
		summary.TotalWastage += line.Wastage
	}

	return summary, nil
}
