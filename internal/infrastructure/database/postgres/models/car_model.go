package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CarModel represents the database model for Cars
type CarModel struct {
	UUID         uuid.UUID      `gorm:"column:uuid;type:uuid;primary_key;default:gen_random_uuid()"`
	Title        string         `gorm:"type:varchar(255);not null"`
	Description  string         `gorm:"type:text"`
	Brand        string         `gorm:"type:varchar(100);not null"`
	Model        string         `gorm:"type:varchar(100);not null"`
	Year         string         `gorm:"type:varchar(20)"`
	Color        string         `gorm:"type:varchar(50)"`
	FuelType     string         `gorm:"type:varchar(50)"`
	Transmission string         `gorm:"type:varchar(50)"`
	Seats        string         `gorm:"type:varchar(10)"`
	Doors        string         `gorm:"type:varchar(10)"`
	Mileage      string         `gorm:"type:varchar(20)"`
	Category     string         `gorm:"type:varchar(50)"`
	LicensePlate string         `gorm:"type:varchar(50);not null"`
	DailyPrice   string         `gorm:"type:varchar(20);not null"`
	Wilaya       string         `gorm:"type:varchar(100);not null"`
	City         string         `gorm:"type:varchar(100);not null"`
	Images       pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	Features     pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	IsAvailable  bool           `gorm:"not null;default:true;index"`
	OwnerID      uuid.UUID      `gorm:"type:uuid;not null;index"`
	CreatedAt    time.Time      `gorm:"not null;index"`
	UpdatedAt    time.Time      `gorm:"not null"`
}

func (CarModel) TableName() string {
	return "cars"
}

// ReservationModel represents the database model for Reservations.
// (clientid, carid) is unique.
type ReservationModel struct {
	UUID      uuid.UUID `gorm:"column:uuid;type:uuid;primary_key;default:gen_random_uuid()"`
	RenterID  uuid.UUID `gorm:"column:renterid;type:uuid;not null;index"`
	ClientID  uuid.UUID `gorm:"column:clientid;type:uuid;not null;uniqueIndex:reservation_client_car_key"`
	CarID     uuid.UUID `gorm:"column:carid;type:uuid;not null;uniqueIndex:reservation_client_car_key"`
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (ReservationModel) TableName() string {
	return "reservation"
}
