package orders

import (
	"context"

	"stitchstock/internal/core/id"
)

// ListFilter narrows order listings.
type ListFilter struct {
	Search         string // matches PO number, style number, product name
	Status         *Status
	ProductID      *id.ID
	IncludeDeleted bool
	Limit          int
	Offset         int
	OrderBy        string
}

// ListResult is a paginated order listing.
type ListResult struct {
	Items      []*Order
	TotalCount int64
	Limit      int
	Offset     int
}

// Repository defines persistence operations for orders and their
// consumption reports.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, orderID id.ID) (*Order, error)
	GetByNumber(ctx context.Context, poNumber string) (*Order, error)
	ExistsByNumber(ctx context.Context, poNumber string) (bool, error)
	Update(ctx context.Context, o *Order) error
	Delete(ctx context.Context, orderID id.ID) error
	List(ctx context.Context, filter ListFilter) (ListResult, error)

	// ListOpenByProduct returns PENDING and PRODUCING orders for a product,
	// reports loaded. Used by wastage propagation.
	ListOpenByProduct(ctx context.Context, productID id.ID) ([]*Order, error)

	// SaveReport persists the consumption report lines (delete-then-insert).
	SaveReport(ctx context.Context, orderID id.ID, report []MaterialConsumption) error
}
