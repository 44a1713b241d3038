package car

import (
	"time"

	domainCar "seyyar/internal/domain/car"
	"seyyar/internal/domain/reservation"
	domainUser "seyyar/internal/domain/user"
	"seyyar/internal/listing"

	"github.com/google/uuid"
)

type CreateCarRequest struct {
	Title        string   `json:"title" validate:"required,max=150"`
	Description  string   `json:"description" validate:"max=2000"`
	Brand        string   `json:"brand" validate:"required,max=50"`
	Model        string   `json:"model" validate:"required,max=50"`
	Year         string   `json:"year" validate:"max=10"`
	Color        string   `json:"color" validate:"max=50"`
	FuelType     string   `json:"fuel_type" validate:"max=30"`
	Transmission string   `json:"transmission" validate:"max=30"`
	Seats        string   `json:"seats" validate:"max=10"`
	Doors        string   `json:"doors" validate:"max=10"`
	Mileage      string   `json:"mileage" validate:"max=20"`
	Category     string   `json:"category" validate:"max=30"`
	LicensePlate string   `json:"license_plate" validate:"required,max=20"`
	DailyPrice   string   `json:"daily_price" validate:"required,max=20"`
	Wilaya       string   `json:"wilaya" validate:"required"`
	City         string   `json:"city" validate:"required"`
	Images       []string `json:"images" validate:"max=10,dive,url"`
	Features     []string `json:"features" validate:"dive,max=50"`
}

type CarResponse struct {
	ID           uuid.UUID `json:"uuid"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	Year         string    `json:"year"`
	Color        string    `json:"color"`
	FuelType     string    `json:"fuel_type"`
	Transmission string    `json:"transmission"`
	Seats        string    `json:"seats"`
	Doors        string    `json:"doors"`
	Mileage      string    `json:"mileage"`
	Category     string    `json:"category"`
	LicensePlate string    `json:"license_plate"`
	DailyPrice   string    `json:"daily_price"`
	Wilaya       string    `json:"wilaya"`
	City         string    `json:"city"`
	Images       []string  `json:"images"`
	CoverImage   string    `json:"cover_image"`
	Features     []string  `json:"features"`
	IsAvailable  bool      `json:"is_available"`
	OwnerID      uuid.UUID `json:"owner_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// OwnerResponse is the public part of a profile shown next to a car or booking.
type OwnerResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Firstname string    `json:"firstname"`
	Phone     string    `json:"phone"`
	Pfp       string    `json:"pfp"`
	Initial   string    `json:"initial"`
}

// ContactLinks are the call and WhatsApp links offered to reach the owner.
type ContactLinks struct {
	Call     string `json:"call"`
	WhatsApp string `json:"whatsapp"`
}

type ReservationResponse struct {
	ID        uuid.UUID `json:"uuid"`
	RenterID  uuid.UUID `json:"renterid"`
	ClientID  uuid.UUID `json:"clientid"`
	CarID     uuid.UUID `json:"carid"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CarListResponse struct {
	Cars          []*CarResponse   `json:"cars"`
	Count         int              `json:"count"`
	Filters       listing.Criteria `json:"filters"`
	FiltersActive bool             `json:"filters_active"`
}

type CarDetailResponse struct {
	Car         *CarResponse         `json:"car"`
	Owner       *OwnerResponse       `json:"owner"`
	Contact     *ContactLinks        `json:"contact"`
	Reservation *ReservationResponse `json:"reservation"`
	State       reservation.State    `json:"state"`
	CanRent     bool                 `json:"can_rent"`
	CanCancel   bool                 `json:"can_cancel"`
	IsOwner     bool                 `json:"is_owner"`
}

type ImageUploadResponse struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func ToCarResponse(c *domainCar.Car) *CarResponse {
	if c == nil {
		return nil
	}
	return &CarResponse{
		ID:           c.ID,
		Title:        c.Title,
		Description:  c.Description,
		Brand:        c.Brand,
		Model:        c.Model,
		Year:         c.Year,
		Color:        c.Color,
		FuelType:     c.FuelType,
		Transmission: c.Transmission,
		Seats:        c.Seats,
		Doors:        c.Doors,
		Mileage:      c.Mileage,
		Category:     c.Category,
		LicensePlate: c.LicensePlate,
		DailyPrice:   c.DailyPrice,
		Wilaya:       c.Wilaya,
		City:         c.City,
		Images:       nonNil(c.Images),
		CoverImage:   c.CoverImage(),
		Features:     nonNil(c.Features),
		IsAvailable:  c.IsAvailable,
		OwnerID:      c.OwnerID,
		CreatedAt:    c.CreatedAt,
	}
}

func ToCarResponses(cars []*domainCar.Car) []*CarResponse {
	out := make([]*CarResponse, len(cars))
	for i, c := range cars {
		out[i] = ToCarResponse(c)
	}
	return out
}

func ToOwnerResponse(u *domainUser.User) *OwnerResponse {
	if u == nil {
		return nil
	}
	return &OwnerResponse{
		ID:        u.ID,
		Name:      u.Name,
		Firstname: u.Firstname,
		Phone:     u.Phone,
		Pfp:       u.Pfp,
		Initial:   u.Initial(),
	}
}

func ToReservationResponse(r *reservation.Reservation) *ReservationResponse {
	if r == nil {
		return nil
	}
	return &ReservationResponse{
		ID:        r.ID,
		RenterID:  r.RenterID,
		ClientID:  r.ClientID,
		CarID:     r.CarID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
