package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	domainCar "seyyar/internal/domain/car"
	domainReservation "seyyar/internal/domain/reservation"
	domainUser "seyyar/internal/domain/user"
	"seyyar/internal/infrastructure/storage"
	appErrors "seyyar/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"sign in required", domainReservation.ErrSignInRequired, http.StatusUnauthorized},
		{"already reserved", domainReservation.ErrAlreadyReserved, http.StatusConflict},
		{"own car", domainReservation.ErrOwnCar, http.StatusForbidden},
		{"not reservation owner", domainReservation.ErrNotReservationOwner, http.StatusForbidden},
		{"reservation not found", domainReservation.ErrReservationNotFound, http.StatusNotFound},
		{"car not found", domainCar.ErrCarNotFound, http.StatusNotFound},
		{"not car owner", domainCar.ErrNotCarOwner, http.StatusForbidden},
		{"unknown feature wrapped", fmt.Errorf("%w: Jetpack", domainCar.ErrUnknownFeature), http.StatusBadRequest},
		{"verification required", domainUser.ErrVerificationRequired, http.StatusForbidden},
		{"email not verified", domainUser.ErrEmailNotVerified, http.StatusForbidden},
		{"duplicate email", domainUser.ErrUserAlreadyExists, http.StatusConflict},
		{"bad otp", domainUser.ErrInvalidOTP, http.StatusBadRequest},
		{"used reset token", domainUser.ErrResetTokenUsed, http.StatusBadRequest},
		{"bad credentials", appErrors.ErrInvalidCredentials, http.StatusUnauthorized},
		{"bad refresh token", appErrors.ErrInvalidToken, http.StatusUnauthorized},
		{"validation", appErrors.NewValidationError(errors.New("title is required")), http.StatusBadRequest},
		{"unsupported image", storage.ErrUnsupportedContent, http.StatusBadRequest},
		{"missing object", storage.ErrObjectNotFound, http.StatusNotFound},
		{"image too large", fmt.Errorf("%w: limit is 16 bytes", storage.ErrObjectTooLarge), http.StatusRequestEntityTooLarge},
		{"store failure", fmt.Errorf("failed to list cars: %w", errors.New("connection refused")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondWithError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestRespondWithError_SignInRedirect(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	respondWithError(c, domainReservation.ErrSignInRequired)

	assert.Contains(t, w.Body.String(), `"redirect":"/sign-in"`)
}

func TestRespondWithError_HidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondWithError(c, errors.New("pq: password authentication failed"))

	assert.NotContains(t, w.Body.String(), "password authentication")
}
