package dto

import (
	"time"

	"stitchstock/internal/core/types"
	"stitchstock/internal/domain/production"
)

// RecordProductionRequest posts one day's production figures for an order.
type RecordProductionRequest struct {
	OrderID       string         `json:"orderId" binding:"required"`
	Date          *time.Time     `json:"date"`
	CutQty        int            `json:"cutQty" binding:"required,min=1"`
	UsedFabric    types.Quantity `json:"usedFabric" binding:"required"`
	WastageQty    types.Quantity `json:"wastageQty"`
	WastageReason string         `json:"wastageReason"`
	Remarks       string         `json:"remarks"`
}

// ExtraWastageEntryRequest is one material's correction line.
type ExtraWastageEntryRequest struct {
	MaterialID    string         `json:"materialId" binding:"required"`
	ExtraWastage  types.Quantity `json:"extraWastage"`
	WastageReason string         `json:"wastageReason"`
}

// RecordExtraWastageRequest posts wastage corrections outside a
// production event.
type RecordExtraWastageRequest struct {
	OrderID       string                     `json:"orderId" binding:"required"`
	MaterialUsage []ExtraWastageEntryRequest `json:"materialUsage" binding:"required,min=1,dive"`
	Remarks       string                     `json:"remarks"`
}

// MaterialUsageResponse is one per-material breakdown row of a log.
type MaterialUsageResponse struct {
	MaterialID      string         `json:"materialId"`
	StandardWastage types.Quantity `json:"standardWastage"`
	ExtraWastage    types.Quantity `json:"extraWastage"`
	TotalWastage    types.Quantity `json:"totalWastage"`
	WastageReason   string         `json:"wastageReason,omitempty"`
}

// ProductionLogResponse is a recorded production event or wastage
// correction.
type ProductionLogResponse struct {
	ID                 string                  `json:"id"`
	Number             string                  `json:"number"`
	Date               time.Time               `json:"date"`
	OrderID            string                  `json:"orderId"`
	CutQty             int                     `json:"cutQty"`
	UsedFabric         types.Quantity          `json:"usedFabric"`
	WastageQty         types.Quantity          `json:"wastageQty"`
	IsExtraWastageOnly bool                    `json:"isExtraWastageOnly"`
	Comment            string                  `json:"comment,omitempty"`
	CreatedAt          time.Time               `json:"createdAt"`
	Usages             []MaterialUsageResponse `json:"usages"`
}

// FromProductionLog maps a log with its usages.
func FromProductionLog(l *production.ProductionLog) ProductionLogResponse {
	resp := ProductionLogResponse{
		ID:                 l.ID.String(),
		Number:             l.Number,
		Date:               l.Date,
		OrderID:            l.OrderID.String(),
		CutQty:             l.CutQty,
		UsedFabric:         l.UsedFabric,
		WastageQty:         l.WastageQty,
		IsExtraWastageOnly: l.IsExtraWastageOnly,
		Comment:            l.Comment,
		CreatedAt:          l.CreatedAt,
		Usages:             make([]MaterialUsageResponse, 0, len(l.Usages)),
	}
	for _, u := range l.Usages {
		resp.Usages = append(resp.Usages, MaterialUsageResponse{
			MaterialID:      u.MaterialID.String(),
			StandardWastage: u.StandardWastage,
			ExtraWastage:    u.ExtraWastage,
			TotalWastage:    u.TotalWastage,
			WastageReason:   u.WastageReason,
		})
	}
	return resp
}

// FromProductionLogs maps an order's production history.
func FromProductionLogs(items []*production.ProductionLog) []ProductionLogResponse {
	out := make([]ProductionLogResponse, 0, len(items))
	for _, l := range items {
		out = append(out, FromProductionLog(l))
	}
	return out
}
