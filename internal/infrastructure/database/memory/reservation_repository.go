package memory

import (
	"context"

	"seyyar/internal/domain/reservation"

	"github.com/google/uuid"
)

type reservationRow struct {
	seq int64
	res reservation.Reservation
}

func (r *reservationRow) order() int64 { return r.seq }

// ReservationRepository implements reservation.Repository. Like the SQL table it
// holds at most one reservation per (client, car).
type ReservationRepository struct {
	s *Store
}

func NewReservationRepository(s *Store) *ReservationRepository {
	return &ReservationRepository{s: s}
}

func (r *ReservationRepository) Create(_ context.Context, res *reservation.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, row := range r.s.reservations {
		if row.res.ClientID == res.ClientID && row.res.CarID == res.CarID {
			return reservation.ErrAlreadyReserved
		}
	}

	res.ID = uuid.New()
	res.CreatedAt = r.s.now()
	res.UpdatedAt = res.CreatedAt

	r.s.reservations[res.ID.String()] = &reservationRow{seq: r.s.next(), res: *res}
	return nil
}

func (r *ReservationRepository) GetByID(_ context.Context, reservationID uuid.UUID) (*reservation.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.reservations[reservationID.String()]
	if !ok {
		return nil, reservation.ErrReservationNotFound
	}
	res := row.res
	return &res, nil
}

func (r *ReservationRepository) FindByClientAndCar(_ context.Context, clientID, carID uuid.UUID) (*reservation.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, row := range r.s.reservations {
		if row.res.ClientID == clientID && row.res.CarID == carID {
			res := row.res
			return &res, nil
		}
	}
	return nil, nil
}

func (r *ReservationRepository) ListByClient(_ context.Context, clientID uuid.UUID) ([]*reservation.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]*reservationRow, 0)
	for _, row := range r.s.reservations {
		if row.res.ClientID == clientID {
			rows = append(rows, row)
		}
	}
	newestFirst(rows)

	out := make([]*reservation.Reservation, len(rows))
	for i, row := range rows {
		res := row.res
		out[i] = &res
	}
	return out, nil
}

func (r *ReservationRepository) Delete(_ context.Context, reservationID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := reservationID.String()
	if _, ok := r.s.reservations[key]; !ok {
		return reservation.ErrReservationNotFound
	}
	delete(r.s.reservations, key)
	return nil
}
