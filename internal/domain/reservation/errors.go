package reservation

import "errors"

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrSignInRequired      = errors.New("please sign in to rent this car")
	ErrOwnCar              = errors.New("you cannot rent your own car")
	ErrAlreadyReserved     = errors.New("you have already reserved this car")
	ErrNotReservationOwner = errors.New("reservation belongs to another user")
)
