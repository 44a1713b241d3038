package car

import "errors"

var (
	ErrCarNotFound       = errors.New("car not found")
	ErrNotCarOwner       = errors.New("car belongs to another user")
	ErrImageRequired     = errors.New("at least one image of the car is required")
	ErrInvalidLocation   = errors.New("city does not belong to the selected wilaya")
	ErrInvalidBrandModel = errors.New("model does not belong to the selected brand")
	ErrUnknownFeature    = errors.New("unknown car feature")
)
