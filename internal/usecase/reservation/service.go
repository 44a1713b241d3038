package reservation

import (
	"context"
	"errors"

	domainCar "seyyar/internal/domain/car"
	domainReservation "seyyar/internal/domain/reservation"
	domainUser "seyyar/internal/domain/user"
	"seyyar/internal/events"
	"seyyar/internal/logger"
	carUsecase "seyyar/internal/usecase/car"
	appErrors "seyyar/pkg/errors"
	"seyyar/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service implements renting, cancelling and the bookings screen
type Service struct {
	reservationRepo domainReservation.Repository
	carRepo         domainCar.Repository
	userRepo        domainUser.Repository
	publisher       events.Publisher
}

// NewService creates a new reservation service
func NewService(
	reservationRepo domainReservation.Repository,
	carRepo domainCar.Repository,
	userRepo domainUser.Repository,
	publisher events.Publisher,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		carRepo:         carRepo,
		userRepo:        userRepo,
		publisher:       publisher,
	}
}

// Create reserves carID for viewer. A nil viewer gets ErrSignInRequired before
// anything is read. A second reservation of the same car is rejected by the
// store, not by a prior lookup.
func (s *Service) Create(ctx context.Context, viewer *uuid.UUID, carID uuid.UUID) (*StateResponse, error) {
	if viewer == nil {
		return nil, domainReservation.ErrSignInRequired
	}

	c, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if c.IsOwnedBy(*viewer) {
		return nil, domainReservation.ErrOwnCar
	}

	r := &domainReservation.Reservation{
		RenterID: c.OwnerID,
		ClientID: *viewer,
		CarID:    c.ID,
	}
	if err := s.reservationRepo.Create(ctx, r); err != nil {
		if errors.Is(err, domainReservation.ErrAlreadyReserved) {
			logger.Warn("Duplicate reservation rejected",
				zap.String("car_id", carID.String()),
				zap.String("client_id", viewer.String()),
				zap.String("event", "reservation_duplicate"),
			)
		}
		return nil, err
	}

	logger.Info("Reservation created",
		zap.String("reservation_id", r.ID.String()),
		zap.String("car_id", carID.String()),
		zap.String("client_id", viewer.String()),
		zap.String("renter_id", r.RenterID.String()),
		zap.String("event", "reservation_created"),
	)

	s.publish(ctx, r, events.ReservationCreated, *viewer)

	return newStateResponse(r, domainReservation.StateAlreadyReserved), nil
}

// Cancel deletes one of the viewer's reservations and returns the state the car
// detail screen should show next.
func (s *Service) Cancel(ctx context.Context, viewer uuid.UUID, reservationID uuid.UUID) (*StateResponse, error) {
	r, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !r.BelongsTo(viewer) {
		return nil, domainReservation.ErrNotReservationOwner
	}

	if err := s.reservationRepo.Delete(ctx, reservationID); err != nil {
		return nil, err
	}

	logger.Info("Reservation cancelled",
		zap.String("reservation_id", reservationID.String()),
		zap.String("car_id", r.CarID.String()),
		zap.String("client_id", viewer.String()),
		zap.String("event", "reservation_cancelled"),
	)

	s.publish(ctx, r, events.ReservationCancelled, viewer)

	c, err := s.carRepo.GetByID(ctx, r.CarID)
	switch {
	case errors.Is(err, domainCar.ErrCarNotFound):
		c = nil
	case err != nil:
		return nil, err
	}

	return newStateResponse(nil, domainReservation.DeriveState(&viewer, c, nil)), nil
}

// Bookings lists the viewer's reservations on one tab, newest first.
func (s *Service) Bookings(ctx context.Context, viewer uuid.UUID, req *BookingsRequest) (*BookingsResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewValidationError(err)
	}
	tab := domainReservation.Tab(req.Tab)
	if tab == "" {
		tab = domainReservation.TabActive
	}

	reservations, err := s.reservationRepo.ListByClient(ctx, viewer)
	if err != nil {
		return nil, err
	}

	carIDs := make([]uuid.UUID, 0, len(reservations))
	ownerIDs := make([]uuid.UUID, 0, len(reservations))
	for _, r := range reservations {
		carIDs = append(carIDs, r.CarID)
		ownerIDs = append(ownerIDs, r.RenterID)
	}

	cars, err := s.carRepo.GetByIDs(ctx, carIDs)
	if err != nil {
		return nil, err
	}
	owners, err := s.userRepo.GetByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}

	carsByID := make(map[uuid.UUID]*domainCar.Car, len(cars))
	for _, c := range cars {
		carsByID[c.ID] = c
	}
	ownersByID := make(map[uuid.UUID]*domainUser.User, len(owners))
	for _, u := range owners {
		ownersByID[u.ID] = u
	}

	resp := &BookingsResponse{Tab: tab, Bookings: []*BookingResponse{}}
	for _, r := range reservations {
		c := carsByID[r.CarID]
		classified := domainReservation.Classify(r, c)

		if classified == domainReservation.TabPast {
			resp.PastCount++
		} else {
			resp.ActiveCount++
		}
		if classified != tab {
			continue
		}

		resp.Bookings = append(resp.Bookings, &BookingResponse{
			Reservation: carUsecase.ToReservationResponse(r),
			Car:         carUsecase.ToCarResponse(c),
			Owner:       carUsecase.ToOwnerResponse(ownersByID[r.RenterID]),
			Tab:         classified,
		})
	}

	return resp, nil
}

func (s *Service) publish(ctx context.Context, r *domainReservation.Reservation, t events.Type, actor uuid.UUID) {
	event := events.New(t, actor, r.CarID)
	event.OwnerID = r.RenterID
	reservationID := r.ID
	event.ReservationID = &reservationID

	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("event_type", string(t)),
			zap.String("event_id", event.ID.String()),
			zap.Error(err),
		)
	}
}
