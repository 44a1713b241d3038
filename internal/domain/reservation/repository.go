package reservation

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for reservation repository operations
type Repository interface {
	// Create fails with ErrAlreadyReserved when the client already holds a
	// reservation for the car.
	Create(ctx context.Context, reservation *Reservation) error
	GetByID(ctx context.Context, reservationID uuid.UUID) (*Reservation, error)
	// FindByClientAndCar returns (nil, nil) when no reservation exists.
	FindByClientAndCar(ctx context.Context, clientID, carID uuid.UUID) (*Reservation, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*Reservation, error)
	Delete(ctx context.Context, reservationID uuid.UUID) error
}
