package dto

import (
	"time"

	"stitchstock/internal/core/types"
	"stitchstock/internal/domain/orders"
)

// CreateOrderRequest creates a manufacturing order.
type CreateOrderRequest struct {
	PONumber  string     `json:"poNo" binding:"required"`
	ProductID string     `json:"productId" binding:"required"`
	OrderDate *time.Time `json:"orderDate"`
	Quantity  int        `json:"quantity" binding:"required,min=1"`
	Comment   string     `json:"comment"`
}

// UpdateOrderStatusRequest requests a status transition.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ConsumptionEntryResponse is one consumption report line.
// Quantities stay JSON numbers; the percentage renders as "x.yz".
type ConsumptionEntryResponse struct {
	LineNo          int            `json:"lineNo"`
	MaterialID      string         `json:"materialId"`
	MaterialName    string         `json:"materialName"`
	ItemCode        string         `json:"itemCode"`
	Unit            string         `json:"unit"`
	IsPrimary       bool           `json:"isPrimary"`
	RequiredQty     types.Quantity `json:"requiredQty"`
	ActualUsedQty   types.Quantity `json:"actualUsedQty"`
	StandardWastage types.Quantity `json:"standardWastage"`
	ExtraWastage    types.Quantity `json:"extraWastage"`
	Wastage         types.Quantity `json:"wastage"`
	WastePercentage string         `json:"wastePercentage"`
}

// FromConsumptionEntry maps one report line.
func FromConsumptionEntry(e orders.MaterialConsumption) ConsumptionEntryResponse {
	return ConsumptionEntryResponse{
		LineNo:          e.LineNo,
		MaterialID:      e.MaterialID.String(),
		MaterialName:    e.MaterialName,
		ItemCode:        e.ItemCode,
		Unit:            string(e.Unit),
		IsPrimary:       e.IsPrimary,
		RequiredQty:     e.RequiredQty,
		ActualUsedQty:   e.ActualUsedQty,
		StandardWastage: e.StandardWastage,
		ExtraWastage:    e.ExtraWastage,
		Wastage:         e.Wastage,
		WastePercentage: types.FormatPercent(e.WastePct),
	}
}

// OrderResponse is the order payload.
type OrderResponse struct {
	ID                string                     `json:"id"`
	PONumber          string                     `json:"poNo"`
	OrderDate         time.Time                  `json:"orderDate"`
	ProductID         string                     `json:"productId"`
	StyleNumber       string                     `json:"styleNo"`
	ProductName       string                     `json:"productName"`
	Quantity          int                        `json:"quantity"`
	Status            string                     `json:"status"`
	Comment           string                     `json:"comment,omitempty"`
	Version           int                        `json:"version"`
	CreatedAt         time.Time                  `json:"createdAt"`
	UpdatedAt         time.Time                  `json:"updatedAt"`
	ConsumptionReport []ConsumptionEntryResponse `json:"consumptionReport"`
}

// FromOrder maps the domain order to its response shape.
func FromOrder(o *orders.Order) OrderResponse {
	resp := OrderResponse{
		ID:                o.ID.String(),
		PONumber:          o.Number,
		OrderDate:         o.Date,
		ProductID:         o.ProductID.String(),
		StyleNumber:       o.StyleNumber,
		ProductName:       o.ProductName,
		Quantity:          o.Quantity,
		Status:            string(o.Status),
		Comment:           o.Comment,
		Version:           o.Version,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		ConsumptionReport: make([]ConsumptionEntryResponse, 0, len(o.ConsumptionReport)),
	}
	for _, e := range o.ConsumptionReport {
		resp.ConsumptionReport = append(resp.ConsumptionReport, FromConsumptionEntry(e))
	}
	return resp
}

// FromOrders maps a listing.
func FromOrders(items []*orders.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(items))
	for _, o := range items {
		out = append(out, FromOrder(o))
	}
	return out
}

// DeleteOrderResponse reports the cascade outcome.
type DeleteOrderResponse struct {
	Message               string `json:"message"`
	DeletedProductionLogs int64  `json:"deletedProductionLogs"`
}

// WastageHistoryResponse is one recorded wastage event.
type WastageHistoryResponse struct {
	Date               time.Time      `json:"date"`
	StandardWastage    types.Quantity `json:"standardWastage"`
	ExtraWastage       types.Quantity `json:"extraWastage"`
	TotalWastage       types.Quantity `json:"totalWastage"`
	WastageReason      string         `json:"wastageReason,omitempty"`
	IsExtraWastageOnly bool           `json:"isExtraWastageOnly"`
}

// UsageEntryResponse is one material row in the usage report.
type UsageEntryResponse struct {
	ConsumptionEntryResponse
	CurrentStock types.Quantity           `json:"currentStock"`
	History      []WastageHistoryResponse `json:"history,omitempty"`
}

// UsageResponse is the per-order material usage report.
type UsageResponse struct {
	Order     OrderResponse        `json:"order"`
	Materials []UsageEntryResponse `json:"materials"`
}

// FromUsage maps the usage report.
func FromUsage(u *orders.Usage) UsageResponse {
	resp := UsageResponse{
		Order:     FromOrder(u.Order),
		Materials: make([]UsageEntryResponse, 0, len(u.Materials)),
	}
	for _, m := range u.Materials {
		entry := UsageEntryResponse{
			ConsumptionEntryResponse: FromConsumptionEntry(m.MaterialConsumption),
			CurrentStock:             m.CurrentStock,
		}
		for _, h := range m.History {
			entry.History = append(entry.History, WastageHistoryResponse{
				Date:               h.Date,
				StandardWastage:    h.StandardWastage,
				ExtraWastage:       h.ExtraWastage,
				TotalWastage:       h.TotalWastage,
				WastageReason:      h.WastageReason,
				IsExtraWastageOnly: h.IsExtraWastageOnly,
			})
		}
		resp.Materials = append(resp.Materials, entry)
	}
	return resp
}
