package reservation

import (
	"context"
	"sync"
	"testing"

	domainCar "seyyar/internal/domain/car"
	domainReservation "seyyar/internal/domain/reservation"
	domainUser "seyyar/internal/domain/user"
	"seyyar/internal/events"
	"seyyar/internal/infrastructure/database/memory"
	appErrors "seyyar/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	svc          *Service
	publisher    *events.MockPublisher
	cars         *memory.CarRepository
	users        *memory.UserRepository
	reservations *memory.ReservationRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	f := &fixture{
		publisher:    events.NewMockPublisher(gomock.NewController(t)),
		cars:         memory.NewCarRepository(store),
		users:        memory.NewUserRepository(store),
		reservations: memory.NewReservationRepository(store),
	}
	f.svc = NewService(f.reservations, f.cars, f.users, f.publisher)
	return f
}

func (f *fixture) addOwner(t *testing.T) uuid.UUID {
	t.Helper()
	u := &domainUser.User{ID: uuid.New(), Firstname: "Nadia", Phone: "+213555000111", Type: domainUser.TypeRenter}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u.ID
}

func (f *fixture) addCar(t *testing.T, owner uuid.UUID, available bool) *domainCar.Car {
	t.Helper()
	c := &domainCar.Car{Title: "Logan", Brand: "Dacia", Model: "Logan", IsAvailable: available, OwnerID: owner}
	require.NoError(t, f.cars.Create(context.Background(), c))
	return c
}

func TestCreate_SignInRequired(t *testing.T) {
	f := newFixture(t)
	c := f.addCar(t, f.addOwner(t), true)

	_, err := f.svc.Create(context.Background(), nil, c.ID)
	assert.ErrorIs(t, err, domainReservation.ErrSignInRequired)

	list, err := f.reservations.ListByClient(context.Background(), uuid.Nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreate_Guards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.addOwner(t)
	c := f.addCar(t, owner, true)

	_, err := f.svc.Create(ctx, &owner, c.ID)
	assert.ErrorIs(t, err, domainReservation.ErrOwnCar)

	list, err := f.reservations.ListByClient(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, list, "no reservation is written for the owner")

	viewer := uuid.New()
	_, err = f.svc.Create(ctx, &viewer, uuid.New())
	assert.ErrorIs(t, err, domainCar.ErrCarNotFound)

	list, err = f.reservations.ListByClient(ctx, viewer)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreate_ThenDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.addOwner(t)
	c := f.addCar(t, owner, true)
	viewer := uuid.New()

	f.publisher.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e events.Event) error {
			assert.Equal(t, events.ReservationCreated, e.Type)
			assert.Equal(t, owner, e.OwnerID)
			assert.NotNil(t, e.ReservationID)
			return nil
		})

	resp, err := f.svc.Create(ctx, &viewer, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domainReservation.StateAlreadyReserved, resp.State)
	assert.False(t, resp.CanRent)
	assert.True(t, resp.CanCancel)
	require.NotNil(t, resp.Reservation)
	assert.Equal(t, owner, resp.Reservation.RenterID)
	assert.Equal(t, viewer, resp.Reservation.ClientID)
	assert.Equal(t, c.ID, resp.Reservation.CarID)

	_, err = f.svc.Create(ctx, &viewer, c.ID)
	assert.ErrorIs(t, err, domainReservation.ErrAlreadyReserved)
}

func TestCreate_ConcurrentRequestsInsertOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.addCar(t, f.addOwner(t), true)
	viewer := uuid.New()

	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.Create(ctx, &viewer, c.ID)
		}()
	}
	wg.Wait()

	list, err := f.reservations.ListByClient(ctx, viewer)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreate_UnavailableCarIsNotChecked(t *testing.T) {
	f := newFixture(t)
	c := f.addCar(t, f.addOwner(t), false)
	viewer := uuid.New()

	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	_, err := f.svc.Create(context.Background(), &viewer, c.ID)
	assert.NoError(t, err)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.addOwner(t)
	c := f.addCar(t, owner, true)
	viewer := uuid.New()
	stranger := uuid.New()

	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	created, err := f.svc.Create(ctx, &viewer, c.ID)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, stranger, created.Reservation.ID)
	assert.ErrorIs(t, err, domainReservation.ErrNotReservationOwner)

	resp, err := f.svc.Cancel(ctx, viewer, created.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, domainReservation.StateRentable, resp.State)
	assert.True(t, resp.CanRent)
	assert.Nil(t, resp.Reservation)

	_, err = f.svc.Cancel(ctx, viewer, created.Reservation.ID)
	assert.ErrorIs(t, err, domainReservation.ErrReservationNotFound)
}

func TestCancel_CarGone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.addCar(t, f.addOwner(t), true)
	viewer := uuid.New()

	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	created, err := f.svc.Create(ctx, &viewer, c.ID)
	require.NoError(t, err)
	require.NoError(t, f.cars.Delete(ctx, c.ID))

	resp, err := f.svc.Cancel(ctx, viewer, created.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, domainReservation.StateUnavailable, resp.State)
}

func TestBookings_Tabs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.addOwner(t)
	viewer := uuid.New()

	active := f.addCar(t, owner, true)
	toggled := f.addCar(t, owner, true)
	deleted := f.addCar(t, owner, true)

	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	for _, c := range []*domainCar.Car{active, toggled, deleted} {
		_, err := f.svc.Create(ctx, &viewer, c.ID)
		require.NoError(t, err)
	}

	require.NoError(t, f.cars.SetAvailability(ctx, toggled.ID, false))
	require.NoError(t, f.cars.Delete(ctx, deleted.ID))

	activeTab, err := f.svc.Bookings(ctx, viewer, &BookingsRequest{})
	require.NoError(t, err)
	assert.Equal(t, domainReservation.TabActive, activeTab.Tab)
	assert.Equal(t, 2, activeTab.ActiveCount)
	assert.Equal(t, 1, activeTab.PastCount)
	require.Len(t, activeTab.Bookings, 2)
	assert.Nil(t, activeTab.Bookings[0].Car, "newest first; deleted car stays active")
	assert.Equal(t, active.ID, activeTab.Bookings[1].Car.ID)
	require.NotNil(t, activeTab.Bookings[1].Owner)
	assert.Equal(t, "Nadia", activeTab.Bookings[1].Owner.Firstname)

	pastTab, err := f.svc.Bookings(ctx, viewer, &BookingsRequest{Tab: "past"})
	require.NoError(t, err)
	require.Len(t, pastTab.Bookings, 1)
	assert.Equal(t, toggled.ID, pastTab.Bookings[0].Car.ID)

	require.NoError(t, f.cars.SetAvailability(ctx, toggled.ID, true))
	pastTab, err = f.svc.Bookings(ctx, viewer, &BookingsRequest{Tab: "past"})
	require.NoError(t, err)
	assert.Empty(t, pastTab.Bookings, "re-enabling the car moves the booking back to active")

	_, err = f.svc.Bookings(ctx, viewer, &BookingsRequest{Tab: "upcoming"})
	assert.True(t, appErrors.IsValidation(err))
}
