// Package store persists vendor records. Both implementations return
// sentinel errors; the service layer translates them into coded domain
// errors.
package store

import (
	"context"

	"github.com/google/uuid"

	"payshield/internal/vendors/models"
)

// Store is the vendor persistence interface.
type Store interface {
	Create(ctx context.Context, vendor *models.Vendor) error
	Get(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	GetByName(ctx context.Context, name string) (*models.Vendor, error)
	Update(ctx context.Context, vendor *models.Vendor) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, trustedOnly bool, limit, offset int) ([]*models.Vendor, error)
}
