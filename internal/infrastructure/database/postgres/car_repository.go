package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"seyyar/internal/domain/car"
	"seyyar/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type CarRepository struct {
	db *DB
}

func NewCarRepository(db *DB) *CarRepository {
	return &CarRepository{db: db}
}

func (r *CarRepository) Create(ctx context.Context, c *car.Car) error {
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt

	dbModel := toCarModel(c)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create car: %w", err)
	}

	c.ID = dbModel.UUID
	return nil
}

func (r *CarRepository) GetByID(ctx context.Context, carID uuid.UUID) (*car.Car, error) {
	var dbModel models.CarModel
	err := r.db.DB.WithContext(ctx).Where("uuid = ?", carID).First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, car.ErrCarNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get car: %w", err)
	}

	return toCarEntity(&dbModel), nil
}

func (r *CarRepository) GetByIDs(ctx context.Context, carIDs []uuid.UUID) ([]*car.Car, error) {
	if len(carIDs) == 0 {
		return []*car.Car{}, nil
	}

	var dbModels []models.CarModel
	if err := r.db.DB.WithContext(ctx).Where("uuid IN ?", carIDs).Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to get cars: %w", err)
	}

	return toCarEntities(dbModels), nil
}

func (r *CarRepository) ListAvailable(ctx context.Context) ([]*car.Car, error) {
	var dbModels []models.CarModel
	err := r.db.DB.WithContext(ctx).
		Where("is_available = ?", true).
		Order("created_at DESC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list available cars: %w", err)
	}

	return toCarEntities(dbModels), nil
}

func (r *CarRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*car.Car, error) {
	var dbModels []models.CarModel
	err := r.db.DB.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list owner cars: %w", err)
	}

	return toCarEntities(dbModels), nil
}

func (r *CarRepository) SetAvailability(ctx context.Context, carID uuid.UUID, available bool) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.CarModel{}).
		Where("uuid = ?", carID).
		Updates(map[string]interface{}{
			"is_available": available,
			"updated_at":   time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update car availability: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return car.ErrCarNotFound
	}

	return nil
}

func (r *CarRepository) Delete(ctx context.Context, carID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).Delete(&models.CarModel{}, "uuid = ?", carID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete car: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return car.ErrCarNotFound
	}

	return nil
}

func toCarModel(c *car.Car) *models.CarModel {
	return &models.CarModel{
		UUID:         c.ID,
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
		Images:       pq.StringArray(nonNil(c.Images)),
		Features:     pq.StringArray(nonNil(c.Features)),
		IsAvailable:  c.IsAvailable,
		OwnerID:      c.OwnerID,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func toCarEntity(m *models.CarModel) *car.Car {
	return &car.Car{
		ID:           m.UUID,
		Title:        m.Title,
		Description:  m.Description,
		Brand:        m.Brand,
		Model:        m.Model,
		Year:         m.Year,
		Color:        m.Color,
		FuelType:     m.FuelType,
		Transmission: m.Transmission,
		Seats:        m.Seats,
		Doors:        m.Doors,
		Mileage:      m.Mileage,
		Category:     m.Category,
		LicensePlate: m.LicensePlate,
		DailyPrice:   m.DailyPrice,
		Wilaya:       m.Wilaya,
		City:         m.City,
		Images:       []string(m.Images),
		Features:     []string(m.Features),
		IsAvailable:  m.IsAvailable,
		OwnerID:      m.OwnerID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toCarEntities(dbModels []models.CarModel) []*car.Car {
	cars := make([]*car.Car, len(dbModels))
	for i := range dbModels {
		cars[i] = toCarEntity(&dbModels[i])
	}
	return cars
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
