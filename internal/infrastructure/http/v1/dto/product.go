package dto

import (
	"stitchstock/internal/core/types"
	"stitchstock/internal/domain/catalogs/product"
)

// RequirementRequest is one BOM line in a create/update request.
type RequirementRequest struct {
	MaterialID         string         `json:"materialId" binding:"required"`
	QuantityPerPiece   types.Quantity `json:"quantityPerPiece" binding:"required"`
	ExpectedWastagePct types.Percent  `json:"expectedWastagePercentage"`
	WastageRemarks     string         `json:"wastageRemarks"`
	IsPrimary          bool           `json:"isPrimary"`
}

// CreateProductRequest creates a garment style with its BOM.
type CreateProductRequest struct {
	StyleNumber    string               `json:"styleNo" binding:"required"`
	Name           string               `json:"name" binding:"required"`
	Description    string               `json:"description"`
	WastageRemarks string               `json:"wastageRemarks"`
	Requirements   []RequirementRequest `json:"materialsRequired" binding:"required,min=1"`
}

// UpdateProductRequest updates a style and replaces its BOM.
type UpdateProductRequest struct {
	Name           string               `json:"name" binding:"required"`
	Description    string               `json:"description"`
	WastageRemarks string               `json:"wastageRemarks"`
	Requirements   []RequirementRequest `json:"materialsRequired" binding:"required,min=1"`
	Version        int                  `json:"version" binding:"required,min=1"`
}

// WastageUpdateRequest adjusts expected wastage percentages on existing
// BOM lines without touching quantities.
type WastageUpdateRequest struct {
	Updates        []WastageUpdateEntry `json:"materialWastage" binding:"required,min=1"`
	WastageRemarks string               `json:"remarks"`
}

// WastageUpdateEntry is one percentage change.
type WastageUpdateEntry struct {
	MaterialID         string        `json:"materialId" binding:"required"`
	ExpectedWastagePct types.Percent `json:"expectedWastagePercentage"`
	WastageRemarks     string        `json:"remarks"`
}

// RequirementResponse is one BOM line in a response.
type RequirementResponse struct {
	LineNo             int            `json:"lineNo"`
	MaterialID         string         `json:"materialId"`
	QuantityPerPiece   types.Quantity `json:"quantityPerPiece"`
	ExpectedWastagePct string         `json:"expectedWastagePercentage"`
	WastageRemarks     string         `json:"wastageRemarks,omitempty"`
	IsPrimary          bool           `json:"isPrimary"`
}

// ProductResponse is the product payload.
type ProductResponse struct {
	ID             string                `json:"id"`
	StyleNumber    string                `json:"styleNo"`
	Name           string                `json:"name"`
	Description    string                `json:"description,omitempty"`
	WastageRemarks string                `json:"wastageRemarks,omitempty"`
	DeletionMark   bool                  `json:"deletionMark"`
	Version        int                   `json:"version"`
	Requirements   []RequirementResponse `json:"materialsRequired"`
}

// FromProduct maps the domain entity to its response shape.
// Percentages render with two decimals at this boundary.
func FromProduct(p *product.Product) ProductResponse {
	resp := ProductResponse{
		ID:             p.ID.String(),
		StyleNumber:    p.Code,
		Name:           p.Name,
		Description:    p.Description,
		WastageRemarks: p.WastageRemarks,
		DeletionMark:   p.DeletionMark,
		Version:        p.Version,
		Requirements:   make([]RequirementResponse, 0, len(p.MaterialsRequired)),
	}
	for _, req := range p.MaterialsRequired {
		resp.Requirements = append(resp.Requirements, RequirementResponse{
			LineNo:             req.LineNo,
			MaterialID:         req.MaterialID.String(),
			QuantityPerPiece:   req.QuantityPerPiece,
			ExpectedWastagePct: types.FormatPercent(req.ExpectedWastagePct),
			WastageRemarks:     req.WastageRemarks,
			IsPrimary:          req.IsPrimary,
		})
	}
	return resp
}

// FromProducts maps a listing.
func FromProducts(items []*product.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(items))
	for _, p := range items {
		out = append(out, FromProduct(p))
	}
	return out
}
