package reservation

import (
	"testing"

	"seyyar/internal/domain/car"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDeriveState(t *testing.T) {
	owner := uuid.New()
	viewer := uuid.New()
	carID := uuid.New()

	available := &car.Car{ID: carID, OwnerID: owner, IsAvailable: true}
	unavailable := &car.Car{ID: carID, OwnerID: owner, IsAvailable: false}
	existing := &Reservation{ID: uuid.New(), RenterID: owner, ClientID: viewer, CarID: carID}

	tests := []struct {
		name     string
		viewer   *uuid.UUID
		car      *car.Car
		existing *Reservation
		want     State
	}{
		{"anonymous viewer", nil, available, nil, StateNotSignedIn},
		{"anonymous viewer of unavailable car", nil, unavailable, nil, StateNotSignedIn},
		{"owner viewing own car", &owner, available, nil, StateIsOwner},
		{"owner viewing own unavailable car", &owner, unavailable, nil, StateIsOwner},
		{"viewer with reservation", &viewer, available, existing, StateAlreadyReserved},
		{"reservation wins over unavailability", &viewer, unavailable, existing, StateAlreadyReserved},
		{"unavailable car", &viewer, unavailable, nil, StateUnavailable},
		{"rentable", &viewer, available, nil, StateRentable},
		{"anonymous viewer of deleted car", nil, nil, nil, StateNotSignedIn},
		{"deleted car", &viewer, nil, nil, StateUnavailable},
		{"reservation on deleted car", &viewer, nil, existing, StateAlreadyReserved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveState(tt.viewer, tt.car, tt.existing)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want == StateRentable, got.CanRent())
			assert.Equal(t, tt.want == StateAlreadyReserved, got.CanCancel())
		})
	}
}

func TestClassify(t *testing.T) {
	r := &Reservation{ID: uuid.New()}

	tests := []struct {
		name string
		car  *car.Car
		want Tab
	}{
		{"available car is active", &car.Car{IsAvailable: true}, TabActive},
		{"unavailable car is past", &car.Car{IsAvailable: false}, TabPast},
		{"deleted car stays active", nil, TabActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(r, tt.car))
		})
	}
}

func TestClassify_FollowsAvailabilityToggle(t *testing.T) {
	c := &car.Car{ID: uuid.New(), IsAvailable: true}
	r := &Reservation{ID: uuid.New(), CarID: c.ID}

	assert.Equal(t, TabActive, Classify(r, c))

	c.IsAvailable = false
	assert.Equal(t, TabPast, Classify(r, c))
}

func TestTab_Valid(t *testing.T) {
	assert.True(t, TabActive.Valid())
	assert.True(t, TabPast.Valid())
	assert.False(t, Tab("upcoming").Valid())
	assert.False(t, Tab("").Valid())
}
