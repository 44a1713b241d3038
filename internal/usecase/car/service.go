package car

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"seyyar/internal/catalog"
	domainCar "seyyar/internal/domain/car"
	"seyyar/internal/domain/reservation"
	domainUser "seyyar/internal/domain/user"
	"seyyar/internal/events"
	"seyyar/internal/listing"
	"seyyar/internal/logger"
	appErrors "seyyar/pkg/errors"
	"seyyar/pkg/utils"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// ImageStore persists uploaded car images and returns their public URL.
type ImageStore interface {
	SaveImage(ctx context.Context, name string, r io.Reader) (string, error)
}

// Service implements the listing, car detail and my-cars use cases
type Service struct {
	carRepo         domainCar.Repository
	userRepo        domainUser.Repository
	reservationRepo reservation.Repository
	images          ImageStore
	catalog         *catalog.Catalog
	publisher       events.Publisher
	now             func() time.Time
}

// NewService creates a new car service
func NewService(
	carRepo domainCar.Repository,
	userRepo domainUser.Repository,
	reservationRepo reservation.Repository,
	images ImageStore,
	cat *catalog.Catalog,
	publisher events.Publisher,
) *Service {
	return &Service{
		carRepo:         carRepo,
		userRepo:        userRepo,
		reservationRepo: reservationRepo,
		images:          images,
		catalog:         cat,
		publisher:       publisher,
		now:             time.Now,
	}
}

// ListAvailable loads every available car, newest first, and narrows it with criteria.
func (s *Service) ListAvailable(ctx context.Context, criteria listing.Criteria) (*CarListResponse, error) {
	criteria.Normalize()

	cars, err := s.carRepo.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}

	matched := listing.Apply(cars, criteria)

	return &CarListResponse{
		Cars:          ToCarResponses(matched),
		Count:         len(matched),
		Filters:       criteria,
		FiltersActive: criteria.Active(),
	}, nil
}

// GetDetail returns a car with its owner and the reservation state for viewer.
// A nil viewer is an anonymous visitor.
func (s *Service) GetDetail(ctx context.Context, viewer *uuid.UUID, carID uuid.UUID) (*CarDetailResponse, error) {
	c, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}

	var (
		owner    *domainUser.User
		existing *reservation.Reservation
	)

	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		u, err := s.userRepo.GetByID(ctx, c.OwnerID)
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return nil
		}
		owner = u
		return err
	})
	if viewer != nil && !c.IsOwnedBy(*viewer) {
		p.Go(func(ctx context.Context) error {
			r, err := s.reservationRepo.FindByClientAndCar(ctx, *viewer, c.ID)
			existing = r
			return err
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	state := reservation.DeriveState(viewer, c, existing)

	return &CarDetailResponse{
		Car:         ToCarResponse(c),
		Owner:       ToOwnerResponse(owner),
		Contact:     ContactLinksFor(owner, c),
		Reservation: ToReservationResponse(existing),
		State:       state,
		CanRent:     state.CanRent(),
		CanCancel:   state.CanCancel(),
		IsOwner:     state == reservation.StateIsOwner,
	}, nil
}

// ContactLinksFor builds the call and WhatsApp links for the owner, or nil when
// the owner has no phone number.
func ContactLinksFor(owner *domainUser.User, c *domainCar.Car) *ContactLinks {
	if owner == nil || strings.TrimSpace(owner.Phone) == "" {
		return nil
	}
	phone := strings.ReplaceAll(owner.Phone, " ", "")
	message := fmt.Sprintf("Hello! I'm interested in renting your %s %s from Seyyar.", c.Brand, c.Model)

	return &ContactLinks{
		Call:     "tel:" + phone,
		WhatsApp: "https://wa.me/" + strings.TrimPrefix(phone, "+") + "?text=" + escapeComponent(message),
	}
}

// escapeComponent percent-encodes every byte outside the unreserved set and !*'().
func escapeComponent(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
			b.WriteByte(c)
		case strings.IndexByte("-_.~!*'()", c) >= 0:
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0F])
		}
	}
	return b.String()
}

// UploadImage stores one car photo for a renter under a fresh object name.
func (s *Service) UploadImage(ctx context.Context, ownerID uuid.UUID, r io.Reader) (*ImageUploadResponse, error) {
	if err := s.requireRenter(ctx, ownerID); err != nil {
		return nil, err
	}

	name, err := s.imageName()
	if err != nil {
		return nil, err
	}

	imageURL, err := s.images.SaveImage(ctx, name, r)
	if err != nil {
		return nil, err
	}

	logger.Info("Car image uploaded",
		zap.String("owner_id", ownerID.String()),
		zap.String("name", name),
		zap.String("event", "car_image_uploaded"),
	)

	return &ImageUploadResponse{Name: name, URL: imageURL}, nil
}

// imageName follows car-<unix ms>-<random>.jpg.
func (s *Service) imageName() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate image name: %w", err)
	}
	suffix := strconv.FormatUint(binary.LittleEndian.Uint64(b), 36)
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return fmt.Sprintf("car-%d-%s.jpg", s.now().UnixMilli(), suffix), nil
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, req *CreateCarRequest) (*CarResponse, error) {
	sanitizeCreateRequest(req)

	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewValidationError(err)
	}
	if len(req.Images) == 0 {
		return nil, domainCar.ErrImageRequired
	}
	if !s.catalog.HasModel(req.Brand, req.Model) {
		return nil, domainCar.ErrInvalidBrandModel
	}
	if !s.catalog.HasCity(req.Wilaya, req.City) {
		return nil, domainCar.ErrInvalidLocation
	}
	for _, f := range req.Features {
		if !s.catalog.HasFeature(f) {
			return nil, fmt.Errorf("%w: %s", domainCar.ErrUnknownFeature, f)
		}
	}

	if err := s.requireRenter(ctx, ownerID); err != nil {
		return nil, err
	}

	c := &domainCar.Car{
		Title:        req.Title,
		Description:  req.Description,
		Brand:        req.Brand,
		Model:        req.Model,
		Year:         req.Year,
		Color:        req.Color,
		FuelType:     req.FuelType,
		Transmission: req.Transmission,
		Seats:        req.Seats,
		Doors:        req.Doors,
		Mileage:      req.Mileage,
		Category:     req.Category,
		LicensePlate: req.LicensePlate,
		DailyPrice:   req.DailyPrice,
		Wilaya:       req.Wilaya,
		City:         req.City,
		Images:       req.Images,
		Features:     req.Features,
		IsAvailable:  true,
		OwnerID:      ownerID,
	}

	if err := s.carRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	logger.Info("Car listed",
		zap.String("car_id", c.ID.String()),
		zap.String("owner_id", ownerID.String()),
		zap.String("brand", c.Brand),
		zap.String("model", c.Model),
		zap.String("event", "car_listed"),
	)

	event := events.New(events.CarListed, ownerID, c.ID)
	event.OwnerID = ownerID
	s.publish(ctx, event)

	return ToCarResponse(c), nil
}

func sanitizeCreateRequest(req *CreateCarRequest) {
	req.Title = utils.SanitizeString(req.Title)
	req.Description = utils.SanitizeText(req.Description)
	req.Brand = utils.SanitizeString(req.Brand)
	req.Model = utils.SanitizeString(req.Model)
	req.Year = utils.SanitizeString(req.Year)
	req.Color = utils.SanitizeString(req.Color)
	req.FuelType = utils.SanitizeString(req.FuelType)
	req.Transmission = utils.SanitizeString(req.Transmission)
	req.Seats = utils.SanitizeString(req.Seats)
	req.Doors = utils.SanitizeString(req.Doors)
	req.Mileage = utils.SanitizeString(req.Mileage)
	req.Category = utils.SanitizeString(req.Category)
	req.LicensePlate = utils.SanitizeString(req.LicensePlate)
	req.DailyPrice = utils.SanitizeString(req.DailyPrice)
	req.Wilaya = utils.SanitizeString(req.Wilaya)
	req.City = utils.SanitizeString(req.City)
	req.Images = utils.SanitizeStrings(req.Images)
	req.Features = utils.SanitizeStrings(req.Features)
}

// ListMine returns the renter's own cars, available or not.
func (s *Service) ListMine(ctx context.Context, ownerID uuid.UUID) ([]*CarResponse, error) {
	if err := s.requireRenter(ctx, ownerID); err != nil {
		return nil, err
	}

	cars, err := s.carRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return ToCarResponses(cars), nil
}

// ToggleAvailability flips is_available on one of the owner's cars.
func (s *Service) ToggleAvailability(ctx context.Context, ownerID, carID uuid.UUID) (*CarResponse, error) {
	c, err := s.ownedCar(ctx, ownerID, carID)
	if err != nil {
		return nil, err
	}

	available := !c.IsAvailable
	if err := s.carRepo.SetAvailability(ctx, carID, available); err != nil {
		return nil, err
	}
	c.IsAvailable = available

	logger.Info("Car availability changed",
		zap.String("car_id", carID.String()),
		zap.String("owner_id", ownerID.String()),
		zap.Bool("available", available),
		zap.String("event", "car_availability_toggled"),
	)

	event := events.New(events.CarAvailabilityChanged, ownerID, carID)
	event.OwnerID = ownerID
	event.Available = &available
	s.publish(ctx, event)

	return ToCarResponse(c), nil
}

// Delete removes one of the owner's cars. Reservations pointing at it are kept.
func (s *Service) Delete(ctx context.Context, ownerID, carID uuid.UUID) error {
	if _, err := s.ownedCar(ctx, ownerID, carID); err != nil {
		return err
	}

	if err := s.carRepo.Delete(ctx, carID); err != nil {
		return err
	}

	logger.Info("Car deleted",
		zap.String("car_id", carID.String()),
		zap.String("owner_id", ownerID.String()),
		zap.String("event", "car_deleted"),
	)

	event := events.New(events.CarDeleted, ownerID, carID)
	event.OwnerID = ownerID
	s.publish(ctx, event)

	return nil
}

func (s *Service) ownedCar(ctx context.Context, ownerID, carID uuid.UUID) (*domainCar.Car, error) {
	if err := s.requireRenter(ctx, ownerID); err != nil {
		return nil, err
	}

	c, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if !c.IsOwnedBy(ownerID) {
		logger.Warn("Car change attempted by non-owner",
			zap.String("car_id", carID.String()),
			zap.String("user_id", ownerID.String()),
			zap.String("event", "car_change_forbidden"),
		)
		return nil, domainCar.ErrNotCarOwner
	}
	return c, nil
}

func (s *Service) requireRenter(ctx context.Context, userID uuid.UUID) error {
	profile, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !profile.IsRenter() {
		return domainUser.ErrVerificationRequired
	}
	return nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID.String()),
			zap.Error(err),
		)
	}
}
