package entity

import (
	"context"
	"time"

	"stitchstock/internal/core/apperror"
)

// Document is the base type for business transactions.
// Examples: Order, ProductionLog.
type Document struct {
	BaseDocument

	// Number is the document number (PO number for orders,
	// auto-generated for production logs)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Comment is an optional user remark
	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new Document with generated ID.
func NewDocument() Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		Date:         time.Now().UTC(),
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	return nil
}
