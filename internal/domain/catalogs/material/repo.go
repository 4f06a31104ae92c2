package material

import (
	"context"
	"time"

	"stitchstock/internal/core/id"
	"stitchstock/internal/core/types"
)

// ListFilter narrows material listings.
type ListFilter struct {
	Search         string
	Unit           *Unit
	IncludeDeleted bool
	Limit          int
	Offset         int
	OrderBy        string
}

// ListResult is a paginated material listing.
type ListResult struct {
	Items      []*RawMaterial
	TotalCount int64
	Limit      int
	Offset     int
}

// Repository defines persistence operations for raw materials.
type Repository interface {
	Create(ctx context.Context, m *RawMaterial) error
	GetByID(ctx context.Context, materialID id.ID) (*RawMaterial, error)
	GetByCode(ctx context.Context, itemCode string) (*RawMaterial, error)
	Update(ctx context.Context, m *RawMaterial) error
	SetDeletionMark(ctx context.Context, materialID id.ID, marked bool) error
	List(ctx context.Context, filter ListFilter) (ListResult, error)
	Exists(ctx context.Context, materialID id.ID) (bool, error)

	// GetForUpdate loads a material with a row lock, for the
	// check-then-decrement stock pipeline.
	GetForUpdate(ctx context.Context, materialID id.ID) (*RawMaterial, error)

	// AdjustStock atomically applies delta to current_stock and stamps
	// updated_at. Must be called inside a transaction; the database
	// constraint rejects negative resulting stock.
	AdjustStock(ctx context.Context, materialID id.ID, delta types.Quantity, at time.Time) error

	// AddBatch inserts a receipt batch row.
	AddBatch(ctx context.Context, batch ReceivedBatch) error

	// GetBatches returns the receipt history, oldest first.
	GetBatches(ctx context.Context, materialID id.ID) ([]ReceivedBatch, error)
}

// ReferenceChecker reports which product style numbers reference a material.
// Implemented by the product repository; used to block deletion of
// materials still present in a BOM.
type ReferenceChecker interface {
	StylesUsingMaterial(ctx context.Context, materialID id.ID) ([]string, error)
}
