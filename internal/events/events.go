// Package events announces marketplace changes (listings, availability,
// reservations) to downstream consumers such as notification workers.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	CarListed              Type = "car_listed"
	CarAvailabilityChanged Type = "car_availability_toggled"
	CarDeleted             Type = "car_deleted"
	ReservationCreated     Type = "reservation_created"
	ReservationCancelled   Type = "reservation_cancelled"
)

// Event is the payload published for every change.
type Event struct {
	ID            uuid.UUID  `json:"id"`
	Type          Type       `json:"type"`
	OccurredAt    time.Time  `json:"occurred_at"`
	ActorID       uuid.UUID  `json:"actor_id"`
	CarID         uuid.UUID  `json:"car_id"`
	OwnerID       uuid.UUID  `json:"owner_id"`
	ReservationID *uuid.UUID `json:"reservation_id,omitempty"`
	Available     *bool      `json:"available,omitempty"`
}

// New stamps an event with an id and the current time.
func New(t Type, actorID, carID uuid.UUID) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
		ActorID:    actorID,
		CarID:      carID,
	}
}

//go:generate mockgen -destination=mock_publisher.go -package=events seyyar/internal/events Publisher

// Publisher delivers events. Callers treat delivery as best effort: the change
// has already been committed when Publish runs.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
