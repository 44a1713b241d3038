package memory

import (
	"context"

	"seyyar/internal/domain/car"

	"github.com/google/uuid"
)

type carRow struct {
	seq int64
	car car.Car
}

func (r *carRow) order() int64 { return r.seq }

// CarRepository implements car.Repository
type CarRepository struct {
	s *Store
}

func NewCarRepository(s *Store) *CarRepository {
	return &CarRepository{s: s}
}

func (r *CarRepository) Create(_ context.Context, c *car.Car) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c.ID = uuid.New()
	c.CreatedAt = r.s.now()
	c.UpdatedAt = c.CreatedAt

	r.s.cars[c.ID.String()] = &carRow{seq: r.s.next(), car: copyCar(c)}
	return nil
}

func (r *CarRepository) GetByID(_ context.Context, carID uuid.UUID) (*car.Car, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.cars[carID.String()]
	if !ok {
		return nil, car.ErrCarNotFound
	}
	c := copyCar(&row.car)
	return &c, nil
}

func (r *CarRepository) GetByIDs(_ context.Context, carIDs []uuid.UUID) ([]*car.Car, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	cars := make([]*car.Car, 0, len(carIDs))
	for _, id := range carIDs {
		if row, ok := r.s.cars[id.String()]; ok {
			c := copyCar(&row.car)
			cars = append(cars, &c)
		}
	}
	return cars, nil
}

func (r *CarRepository) ListAvailable(_ context.Context) ([]*car.Car, error) {
	return r.list(func(c *car.Car) bool { return c.IsAvailable }), nil
}

func (r *CarRepository) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*car.Car, error) {
	return r.list(func(c *car.Car) bool { return c.OwnerID == ownerID }), nil
}

func (r *CarRepository) SetAvailability(_ context.Context, carID uuid.UUID, available bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.cars[carID.String()]
	if !ok {
		return car.ErrCarNotFound
	}
	row.car.IsAvailable = available
	row.car.UpdatedAt = r.s.now()
	return nil
}

func (r *CarRepository) Delete(_ context.Context, carID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := carID.String()
	if _, ok := r.s.cars[key]; !ok {
		return car.ErrCarNotFound
	}
	delete(r.s.cars, key)
	return nil
}

func (r *CarRepository) list(keep func(*car.Car) bool) []*car.Car {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]*carRow, 0, len(r.s.cars))
	for _, row := range r.s.cars {
		if keep(&row.car) {
			rows = append(rows, row)
		}
	}
	newestFirst(rows)

	cars := make([]*car.Car, len(rows))
	for i, row := range rows {
		c := copyCar(&row.car)
		cars[i] = &c
	}
	return cars
}

func copyCar(c *car.Car) car.Car {
	out := *c
	out.Images = cloneStrings(c.Images)
	out.Features = cloneStrings(c.Features)
	return out
}
