package car

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for car repository operations
type Repository interface {
	Create(ctx context.Context, car *Car) error
	GetByID(ctx context.Context, carID uuid.UUID) (*Car, error)
	// GetByIDs returns the cars that still exist; missing ids are skipped.
	GetByIDs(ctx context.Context, carIDs []uuid.UUID) ([]*Car, error)
	ListAvailable(ctx context.Context) ([]*Car, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Car, error)
	SetAvailability(ctx context.Context, carID uuid.UUID, available bool) error
	Delete(ctx context.Context, carID uuid.UUID) error
}
