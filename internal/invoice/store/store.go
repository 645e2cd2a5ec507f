// Package store persists invoice records. Both implementations return
// sentinel errors; the service layer translates them into coded domain
// errors.
package store

import (
	"context"

	"github.com/google/uuid"

	"payshield/internal/invoice/models"
)

// Filter narrows a List query. Zero values mean no constraint.
type Filter struct {
	CompanyID string
	Status    string
	Vendor    string
	Limit     int
	Offset    int
}

// Store is the invoice persistence interface.
type Store interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	Get(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	// GetByNumber looks up a company's invoice by number and vendor, used
	// for duplicate detection during processing.
	GetByNumber(ctx context.Context, companyID, vendor, invoiceNumber string) (*models.Invoice, error)
	Update(ctx context.Context, invoice *models.Invoice) error
	List(ctx context.Context, filter Filter) ([]*models.Invoice, error)
}
