package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"seyyar/internal/domain/car"
	"seyyar/internal/domain/reservation"
	"seyyar/internal/domain/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCarRepository_ListingOrderAndAvailability(t *testing.T) {
	ctx := context.Background()
	repo := NewCarRepository(NewStore())
	owner := uuid.New()

	first := &car.Car{Title: "Clio", OwnerID: owner, IsAvailable: true, Features: []string{"GPS"}}
	second := &car.Car{Title: "Golf", OwnerID: owner, IsAvailable: true}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	assert.NotEqual(t, uuid.Nil, first.ID)

	available, err := repo.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, available, 2)
	assert.Equal(t, "Golf", available[0].Title, "newest listing first")

	require.NoError(t, repo.SetAvailability(ctx, first.ID, false))
	available, err = repo.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, second.ID, available[0].ID)

	mine, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	assert.ErrorIs(t, repo.SetAvailability(ctx, uuid.New(), true), car.ErrCarNotFound)
}

func TestCarRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewCarRepository(NewStore())

	c := &car.Car{Title: "Clio", Features: []string{"GPS"}}
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	got.Features[0] = "Sunroof"
	got.Title = "changed"

	again, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Clio", again.Title)
	assert.Equal(t, []string{"GPS"}, again.Features)
}

func TestCarRepository_DeleteAndGetByIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewCarRepository(NewStore())

	a := &car.Car{Title: "A"}
	b := &car.Car{Title: "B"}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	require.NoError(t, repo.Delete(ctx, a.ID))
	assert.ErrorIs(t, repo.Delete(ctx, a.ID), car.ErrCarNotFound)

	_, err := repo.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, car.ErrCarNotFound)

	cars, err := repo.GetByIDs(ctx, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, b.ID, cars[0].ID)
}

func TestReservationRepository_OnePerClientAndCar(t *testing.T) {
	ctx := context.Background()
	repo := NewReservationRepository(NewStore())
	owner, client, carID := uuid.New(), uuid.New(), uuid.New()

	first := &reservation.Reservation{RenterID: owner, ClientID: client, CarID: carID}
	require.NoError(t, repo.Create(ctx, first))

	dup := &reservation.Reservation{RenterID: owner, ClientID: client, CarID: carID}
	assert.ErrorIs(t, repo.Create(ctx, dup), reservation.ErrAlreadyReserved)

	other := &reservation.Reservation{RenterID: owner, ClientID: uuid.New(), CarID: carID}
	require.NoError(t, repo.Create(ctx, other))

	found, err := repo.FindByClientAndCar(ctx, client, carID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.ID, found.ID)

	none, err := repo.FindByClientAndCar(ctx, client, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, repo.Delete(ctx, first.ID))
	assert.ErrorIs(t, repo.Delete(ctx, first.ID), reservation.ErrReservationNotFound)
	require.NoError(t, repo.Create(ctx, dup), "a cancelled reservation can be made again")
}

func TestReservationRepository_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewReservationRepository(NewStore())
	client, carID := uuid.New(), uuid.New()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Create(ctx, &reservation.Reservation{ClientID: client, CarID: carID})
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, reservation.ErrAlreadyReserved)
		}
	}
	assert.Equal(t, 1, succeeded)

	list, err := repo.ListByClient(ctx, client)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(NewStore())

	u := &user.User{ID: uuid.New(), Firstname: "Amine", Email: "amine@example.com"}
	require.NoError(t, repo.Create(ctx, u))
	assert.Equal(t, user.TypeClient, u.Type)
	assert.ErrorIs(t, repo.Create(ctx, &user.User{ID: u.ID}), user.ErrUserAlreadyExists)

	u.Phone = "+213555000000"
	require.NoError(t, repo.Update(ctx, u))
	require.NoError(t, repo.SetType(ctx, u.ID, user.TypeRenter))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "+213555000000", got.Phone)
	assert.True(t, got.IsRenter())

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, user.ErrUserNotFound)
	assert.ErrorIs(t, repo.SetType(ctx, uuid.New(), user.TypeRenter), user.ErrUserNotFound)
}

func TestIdentityRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewIdentityRepository(NewStore())

	identity := &user.Identity{Email: "sara@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, identity))
	assert.ErrorIs(t, repo.Create(ctx, &user.Identity{Email: "SARA@example.com"}), user.ErrUserAlreadyExists)

	expires := time.Now().Add(time.Minute)
	identity.OTPHash = "otp"
	identity.OTPExpiresAt = &expires
	require.NoError(t, repo.Update(ctx, identity))

	require.NoError(t, repo.MarkVerified(ctx, identity.ID))
	got, err := repo.GetByEmail(ctx, "sara@example.com")
	require.NoError(t, err)
	assert.True(t, got.EmailVerified)
	assert.Empty(t, got.OTPHash)
	assert.Nil(t, got.OTPExpiresAt)

	token := &user.PasswordResetToken{UserID: identity.ID, Token: "reset", ExpiresAt: expires}
	require.NoError(t, repo.CreatePasswordResetToken(ctx, token))
	stored, err := repo.GetPasswordResetToken(ctx, "reset")
	require.NoError(t, err)
	require.NoError(t, repo.MarkTokenAsUsed(ctx, stored.ID))
	assert.ErrorIs(t, repo.MarkTokenAsUsed(ctx, stored.ID), user.ErrResetTokenUsed)

	_, err = repo.GetPasswordResetToken(ctx, "missing")
	assert.ErrorIs(t, err, user.ErrTokenInvalid)
}

func TestIdentityRepository_RecordOTPAttempt(t *testing.T) {
	ctx := context.Background()
	repo := NewIdentityRepository(NewStore())

	identity := &user.Identity{Email: "nadia@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, identity))
	expires := time.Now().Add(time.Minute)
	identity.OTPHash = "otp"
	identity.OTPExpiresAt = &expires
	require.NoError(t, repo.Update(ctx, identity))

	for want := 1; want <= 2; want++ {
		attempts, err := repo.RecordOTPAttempt(ctx, identity.ID, 3)
		require.NoError(t, err)
		assert.Equal(t, want, attempts)
	}
	got, err := repo.GetByID(ctx, identity.ID)
	require.NoError(t, err)
	assert.Equal(t, "otp", got.OTPHash)

	attempts, err := repo.RecordOTPAttempt(ctx, identity.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	got, err = repo.GetByID(ctx, identity.ID)
	require.NoError(t, err)
	assert.Empty(t, got.OTPHash)
	assert.Nil(t, got.OTPExpiresAt)

	// a fresh code starts a new count
	got.OTPHash = "otp-2"
	got.OTPExpiresAt = &expires
	got.OTPAttempts = 0
	require.NoError(t, repo.Update(ctx, got))
	attempts, err = repo.RecordOTPAttempt(ctx, identity.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)

	_, err = repo.RecordOTPAttempt(ctx, uuid.New(), 3)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestRefreshTokenRepository(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })
	repo := NewRefreshTokenRepository(store)
	userID := uuid.New()

	active := &user.RefreshToken{UserID: userID, Token: "a", ExpiresAt: now.Add(time.Hour)}
	expired := &user.RefreshToken{UserID: userID, Token: "b", ExpiresAt: now.Add(-48 * time.Hour)}
	require.NoError(t, repo.Create(ctx, active))
	require.NoError(t, repo.Create(ctx, expired))

	_, err := repo.GetByToken(ctx, "b")
	assert.ErrorIs(t, err, user.ErrTokenInvalid)

	got, err := repo.GetByToken(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, repo.Revoke(ctx, got.ID))
	assert.ErrorIs(t, repo.Revoke(ctx, got.ID), user.ErrTokenInvalid)

	require.NoError(t, repo.DeleteExpired(ctx, 24*time.Hour))
	assert.Len(t, store.refreshTokens, 1)
}
