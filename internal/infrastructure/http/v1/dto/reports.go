package dto

import (
	"stitchstock/internal/core/types"
	"stitchstock/internal/domain/reports"
)

// MaterialTotalResponse aggregates consumption of one material across
// all orders.
type MaterialTotalResponse struct {
	MaterialID      string         `json:"materialId"`
	MaterialName    string         `json:"materialName"`
	ItemCode        string         `json:"itemCode"`
	Unit            string         `json:"unit"`
	OrderCount      int64          `json:"orderCount"`
	RequiredQty     types.Quantity `json:"requiredQty"`
	ActualUsedQty   types.Quantity `json:"actualUsedQty"`
	StandardWastage types.Quantity `json:"standardWastage"`
	ExtraWastage    types.Quantity `json:"extraWastage"`
	Wastage         types.Quantity `json:"wastage"`
	WastePercentage string         `json:"wastePercentage"`
}

// FromMaterialTotals maps the consumption totals report.
func FromMaterialTotals(rows []reports.MaterialTotalRow) []MaterialTotalResponse {
	out := make([]MaterialTotalResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, MaterialTotalResponse{
			MaterialID:      r.MaterialID.String(),
			MaterialName:    r.MaterialName,
			ItemCode:        r.ItemCode,
			Unit:            r.Unit,
			OrderCount:      r.OrderCount,
			RequiredQty:     r.RequiredQty,
			ActualUsedQty:   r.ActualUsedQty,
			StandardWastage: r.StandardWastage,
			ExtraWastage:    r.ExtraWastage,
			Wastage:         r.Wastage,
			WastePercentage: types.FormatPercent(r.WastePct()),
		})
	}
	return out
}

// StockRowResponse is one material in the stock snapshot.
type StockRowResponse struct {
	MaterialID   string         `json:"materialId"`
	MaterialName string         `json:"materialName"`
	ItemCode     string         `json:"itemCode"`
	Unit         string         `json:"unit"`
	CurrentStock types.Quantity `json:"currentStock"`
	BatchCount   int64          `json:"batchCount"`
	OpenDemand   types.Quantity `json:"openDemand"`
	Shortfall    bool           `json:"shortfall"`
}

// FromStockRows maps the stock snapshot.
func FromStockRows(rows []reports.StockRow) []StockRowResponse {
	out := make([]StockRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, StockRowResponse{
			MaterialID:   r.MaterialID.String(),
			MaterialName: r.MaterialName,
			ItemCode:     r.ItemCode,
			Unit:         r.Unit,
			CurrentStock: r.CurrentStock,
			BatchCount:   r.BatchCount,
			OpenDemand:   r.OpenDemand,
			Shortfall:    r.CurrentStock < r.OpenDemand,
		})
	}
	return out
}

// OrderSummaryResponse is the per-order wastage summary.
type OrderSummaryResponse struct {
	Order         OrderResponse              `json:"order"`
	Lines         []ConsumptionEntryResponse `json:"lines"`
	TotalRequired types.Quantity             `json:"totalRequired"`
	TotalUsed     types.Quantity             `json:"totalUsed"`
	TotalWastage  types.Quantity             `json:"totalWastage"`
}

// FromOrderSummary maps the summary, rendering percentages at the edge.
func FromOrderSummary(s *reports.OrderSummary) OrderSummaryResponse {
	resp := OrderSummaryResponse{
		Order:         FromOrder(s.Order),
		Lines:         make([]ConsumptionEntryResponse, 0, len(s.Lines)),
		TotalRequired: s.TotalRequired,
		TotalUsed:     s.TotalUsed,
		TotalWastage:  s.TotalWastage,
	}
	for _, line := range s.Lines {
		resp.Lines = append(resp.Lines, FromConsumptionEntry(line))
	}
	return resp
}
