package reservation

import (
	"time"

	"github.com/google/uuid"
)

// Reservation records that a client asked to rent a car. It carries no status column:
// whether it is active or past is derived from the car it points to.
type Reservation struct {
	ID       uuid.UUID
	RenterID uuid.UUID // car owner at booking time
	ClientID uuid.UUID
	CarID    uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BelongsTo reports whether userID is the client who made the reservation.
func (r *Reservation) BelongsTo(userID uuid.UUID) bool {
	return r.ClientID == userID
}
