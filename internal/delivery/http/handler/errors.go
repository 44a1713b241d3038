package handler

import (
	"errors"
	"net/http"

	domainCar "seyyar/internal/domain/car"
	domainReservation "seyyar/internal/domain/reservation"
	domainUser "seyyar/internal/domain/user"
	"seyyar/internal/infrastructure/storage"
	"seyyar/internal/logger"
	"seyyar/internal/middleware"
	appErrors "seyyar/pkg/errors"
	"seyyar/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SignInPath is where anonymous users are sent when an action needs an account.
const SignInPath = "/sign-in"

func respondWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domainReservation.ErrSignInRequired):
		utils.ErrorResponseWithData(c, http.StatusUnauthorized, err.Error(), gin.H{"redirect": SignInPath})
	case errors.Is(err, domainUser.ErrUserAlreadyExists),
		errors.Is(err, domainUser.ErrAlreadyVerified),
		errors.Is(err, domainReservation.ErrAlreadyReserved):
		utils.ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, appErrors.ErrInvalidCredentials),
		errors.Is(err, appErrors.ErrInvalidToken):
		utils.ErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domainUser.ErrEmailNotVerified),
		errors.Is(err, domainUser.ErrVerificationRequired),
		errors.Is(err, domainReservation.ErrOwnCar),
		errors.Is(err, domainReservation.ErrNotReservationOwner),
		errors.Is(err, domainCar.ErrNotCarOwner):
		utils.ErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, domainUser.ErrUserNotFound),
		errors.Is(err, domainCar.ErrCarNotFound),
		errors.Is(err, domainReservation.ErrReservationNotFound),
		errors.Is(err, storage.ErrObjectNotFound),
		errors.Is(err, storage.ErrInvalidObjectName):
		utils.ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domainUser.ErrInvalidOTP),
		errors.Is(err, domainUser.ErrOTPExpired),
		errors.Is(err, domainUser.ErrTokenInvalid),
		errors.Is(err, domainUser.ErrTokenExpired),
		errors.Is(err, domainUser.ErrResetTokenUsed),
		errors.Is(err, domainCar.ErrImageRequired),
		errors.Is(err, domainCar.ErrInvalidLocation),
		errors.Is(err, domainCar.ErrInvalidBrandModel),
		errors.Is(err, domainCar.ErrUnknownFeature),
		errors.Is(err, storage.ErrUnsupportedContent):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrObjectTooLarge):
		utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, err.Error())
	default:
		var appErr *appErrors.AppError
		if errors.As(err, &appErr) && appErr.Code == appErrors.CodeValidation {
			utils.ErrorResponse(c, http.StatusBadRequest, appErr.Error())
			return
		}

		logger.Error("Internal server error",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}

// requireUser reads the authenticated user set by AuthMiddleware.
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return uuid.Nil, false
	}
	return userID, true
}

// viewerOf is the optional viewer of a public screen.
func viewerOf(c *gin.Context) *uuid.UUID {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return nil
	}
	return &userID
}

func uuidParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}
