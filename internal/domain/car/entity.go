package car

import (
	"time"

	"github.com/google/uuid"
)

// Car represents a listed vehicle. Year, DailyPrice, Seats, Doors and Mileage keep the
// free-text form they were entered in; only the listing filters interpret them as numbers.
type Car struct {
	ID          uuid.UUID
	Title       string
	Description string
	Brand       string
	Model       string
	Year        string
	Color       string

	// Technical details
	FuelType     string
	Transmission string
	Seats        string
	Doors        string
	Mileage      string
	Category     string
	LicensePlate string

	DailyPrice string

	// Location
	Wilaya string
	City   string

	Images   []string
	Features []string

	IsAvailable bool
	OwnerID     uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOwnedBy reports whether userID owns the car.
func (c *Car) IsOwnedBy(userID uuid.UUID) bool {
	return c.OwnerID == userID
}

// HasFeature reports whether the feature list contains feature verbatim.
func (c *Car) HasFeature(feature string) bool {
	for _, f := range c.Features {
		if f == feature {
			return true
		}
	}
	return false
}

// CoverImage returns the first image, the one shown on listing cards.
func (c *Car) CoverImage() string {
	if len(c.Images) == 0 {
		return ""
	}
	return c.Images[0]
}
