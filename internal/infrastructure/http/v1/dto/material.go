package dto

import (
	"time"

	"stitchstock/internal/core/types"
	"stitchstock/internal/domain/catalogs/material"
)

// CreateMaterialRequest creates a raw material.
type CreateMaterialRequest struct {
	ItemCode     string         `json:"itemCode" binding:"required"`
	Name         string         `json:"name" binding:"required"`
	Unit         string         `json:"unit" binding:"required"`
	InitialStock types.Quantity `json:"initialStock"`
}

// UpdateMaterialRequest updates catalog fields; stock moves only through
// batch receipts and production.
type UpdateMaterialRequest struct {
	Name    string `json:"name" binding:"required"`
	Unit    string `json:"unit" binding:"required"`
	Version int    `json:"version" binding:"required,min=1"`
}

// ReceiveBatchRequest records a stock receipt.
type ReceiveBatchRequest struct {
	Quantity types.Quantity `json:"quantity" binding:"required"`
	Remarks  string         `json:"remarks"`
}

// BatchResponse is one receipt row.
type BatchResponse struct {
	BatchID    string         `json:"batchId"`
	Quantity   types.Quantity `json:"quantity"`
	ReceivedAt time.Time      `json:"receivedAt"`
	Remarks    string         `json:"remarks,omitempty"`
}

// MaterialResponse is the material payload.
type MaterialResponse struct {
	ID           string          `json:"id"`
	ItemCode     string          `json:"itemCode"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	CurrentStock types.Quantity  `json:"currentStock"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	DeletionMark bool            `json:"deletionMark"`
	Version      int             `json:"version"`
	Batches      []BatchResponse `json:"batches,omitempty"`
}

// FromMaterial maps the domain entity to its response shape.
func FromMaterial(m *material.RawMaterial) MaterialResponse {
	resp := MaterialResponse{
		ID:           m.ID.String(),
		ItemCode:     m.Code,
		Name:         m.Name,
		Unit:         string(m.Unit),
		CurrentStock: m.CurrentStock,
		UpdatedAt:    m.UpdatedAt,
		DeletionMark: m.DeletionMark,
		Version:      m.Version,
	}
	for _, b := range m.Batches {
		resp.Batches = append(resp.Batches, BatchResponse{
			BatchID:    b.BatchID.String(),
			Quantity:   b.Quantity,
			ReceivedAt: b.ReceivedAt,
			Remarks:    b.Remarks,
		})
	}
	return resp
}

// FromMaterials maps a listing.
func FromMaterials(items []*material.RawMaterial) []MaterialResponse {
	out := make([]MaterialResponse, 0, len(items))
	for _, m := range items {
		out = append(out, FromMaterial(m))
	}
	return out
}
