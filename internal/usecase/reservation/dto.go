package reservation

import (
	domainReservation "seyyar/internal/domain/reservation"
	carUsecase "seyyar/internal/usecase/car"
)

type BookingsRequest struct {
	Tab string `form:"tab" validate:"omitempty,oneof=active past"`
}

// StateResponse is what the car detail screen needs after a rent or cancel action.
type StateResponse struct {
	Reservation *carUsecase.ReservationResponse `json:"reservation"`
	State       domainReservation.State          `json:"state"`
	CanRent     bool                             `json:"can_rent"`
	CanCancel   bool                             `json:"can_cancel"`
}

// BookingResponse is one reservation joined with its car and the car owner. Car
// is nil when the car has been deleted since.
type BookingResponse struct {
	Reservation *carUsecase.ReservationResponse `json:"reservation"`
	Car         *carUsecase.CarResponse         `json:"car"`
	Owner       *carUsecase.OwnerResponse       `json:"owner"`
	Tab         domainReservation.Tab           `json:"tab"`
}

type BookingsResponse struct {
	Tab         domainReservation.Tab `json:"tab"`
	Bookings    []*BookingResponse    `json:"bookings"`
	ActiveCount int                   `json:"active_count"`
	PastCount   int                   `json:"past_count"`
}

func newStateResponse(r *domainReservation.Reservation, state domainReservation.State) *StateResponse {
	return &StateResponse{
		Reservation: carUsecase.ToReservationResponse(r),
		State:       state,
		CanRent:     state.CanRent(),
		CanCancel:   state.CanCancel(),
	}
}
