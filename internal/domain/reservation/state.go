package reservation

import (
	"seyyar/internal/domain/car"

	"github.com/google/uuid"
)

// State is what the car detail screen offers a viewer.
type State string

const (
	StateNotSignedIn     State = "NOT_SIGNED_IN"
	StateIsOwner         State = "IS_OWNER"
	StateAlreadyReserved State = "ALREADY_RESERVED"
	StateUnavailable     State = "UNAVAILABLE"
	StateRentable        State = "RENTABLE"
)

// DeriveState computes the reservation state of c for viewer. A nil viewer is an
// anonymous visitor; existing is the viewer's reservation for c, if any. A nil c
// is a car that is no longer listed.
func DeriveState(viewer *uuid.UUID, c *car.Car, existing *Reservation) State {
	switch {
	case viewer == nil:
		return StateNotSignedIn
	case c != nil && c.IsOwnedBy(*viewer):
		return StateIsOwner
	case existing != nil:
		return StateAlreadyReserved
	case c == nil || !c.IsAvailable:
		return StateUnavailable
	default:
		return StateRentable
	}
}

// CanRent reports whether the rent action is offered in state s.
func (s State) CanRent() bool {
	return s == StateRentable
}

// CanCancel reports whether the cancel action is offered in state s.
func (s State) CanCancel() bool {
	return s == StateAlreadyReserved
}

// Tab groups reservations on the bookings screen.
type Tab string

const (
	TabActive Tab = "active"
	TabPast   Tab = "past"
)

func (t Tab) Valid() bool {
	return t == TabActive || t == TabPast
}

// Classify places a reservation in the past tab once its car has been made unavailable.
// A reservation whose car no longer exists stays active.
func Classify(_ *Reservation, c *car.Car) Tab {
	if c != nil && !c.IsAvailable {
		return TabPast
	}
	return TabActive
}
