package product

import (
	"context"

	"stitchstock/internal/core/id"
)

// ListFilter narrows product listings.
type ListFilter struct {
	Search         string
	IncludeDeleted bool
	Limit          int
	Offset         int
	OrderBy        string
}

// ListResult is a paginated product listing.
type ListResult struct {
	Items      []*Product
	TotalCount int64
	Limit      int
	Offset     int
}

// Repository defines persistence operations for products.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)
	GetByCode(ctx context.Context, styleNumber string) (*Product, error)
	Update(ctx context.Context, p *Product) error
	SetDeletionMark(ctx context.Context, productID id.ID, marked bool) error
	List(ctx context.Context, filter ListFilter) (ListResult, error)
	Exists(ctx context.Context, productID id.ID) (bool, error)

	// SaveRequirements replaces the BOM lines for a product.
	SaveRequirements(ctx context.Context, productID id.ID, reqs []MaterialRequirement) error

	// GetRequirements returns the BOM lines in line order.
	GetRequirements(ctx context.Context, productID id.ID) ([]MaterialRequirement, error)

	// StylesUsingMaterial lists style numbers whose BOM references the material.
	StylesUsingMaterial(ctx context.Context, materialID id.ID) ([]string, error)
}
