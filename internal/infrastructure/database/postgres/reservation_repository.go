package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"seyyar/internal/domain/reservation"
	"seyyar/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReservationRepository struct {
	db *DB
}

func NewReservationRepository(db *DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Create relies on reservation_client_car_key to reject a second reservation
// for the same (client, car).
func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	res.ID = uuid.New()
	res.CreatedAt = time.Now()
	res.UpdatedAt = res.CreatedAt

	dbModel := toReservationModel(res)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		if isUniqueViolation(err) {
			return reservation.ErrAlreadyReserved
		}
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	res.ID = dbModel.UUID
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, reservationID uuid.UUID) (*reservation.Reservation, error) {
	var dbModel models.ReservationModel
	err := r.db.DB.WithContext(ctx).Where("uuid = ?", reservationID).First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, reservation.ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	return toReservationEntity(&dbModel), nil
}

func (r *ReservationRepository) FindByClientAndCar(ctx context.Context, clientID, carID uuid.UUID) (*reservation.Reservation, error) {
	var dbModel models.ReservationModel
	err := r.db.DB.WithContext(ctx).
		Where("clientid = ? AND carid = ?", clientID, carID).
		First(&dbModel).Error

	// no row is the normal "not reserved" answer
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check reservation: %w", err)
	}

	return toReservationEntity(&dbModel), nil
}

func (r *ReservationRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*reservation.Reservation, error) {
	var dbModels []models.ReservationModel
	err := r.db.DB.WithContext(ctx).
		Where("clientid = ?", clientID).
		Order("created_at DESC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}

	reservations := make([]*reservation.Reservation, len(dbModels))
	for i := range dbModels {
		reservations[i] = toReservationEntity(&dbModels[i])
	}
	return reservations, nil
}

func (r *ReservationRepository) Delete(ctx context.Context, reservationID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).Delete(&models.ReservationModel{}, "uuid = ?", reservationID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete reservation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return reservation.ErrReservationNotFound
	}

	return nil
}

func toReservationModel(res *reservation.Reservation) *models.ReservationModel {
	return &models.ReservationModel{
		UUID:      res.ID,
		RenterID:  res.RenterID,
		ClientID:  res.ClientID,
		CarID:     res.CarID,
		CreatedAt: res.CreatedAt,
		UpdatedAt: res.UpdatedAt,
	}
}

func toReservationEntity(m *models.ReservationModel) *reservation.Reservation {
	return &reservation.Reservation{
		ID:        m.UUID,
		RenterID:  m.RenterID,
		ClientID:  m.ClientID,
		CarID:     m.CarID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
