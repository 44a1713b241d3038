package middleware

import (
	"context"
	"errors"
	"net/http"

	domainUser "seyyar/internal/domain/user"
	"seyyar/internal/logger"
	"seyyar/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoleResolver looks up the current role of a user. The role is read from the
// profile row on every request, tokens do not carry it.
type RoleResolver interface {
	RoleOf(ctx context.Context, userID uuid.UUID) (domainUser.Type, error)
}

func RoleMiddleware(resolver RoleResolver, allowedRoles ...domainUser.Type) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := CurrentUserID(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
			c.Abort()
			return
		}

		role, err := resolver.RoleOf(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, domainUser.ErrUserNotFound) {
				utils.ErrorResponse(c, http.StatusForbidden, "Profile not found")
				c.Abort()
				return
			}
			logger.Error("Failed to resolve user role",
				zap.String("request_id", GetRequestID(c)),
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
			c.Abort()
			return
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				c.Next()
				return
			}
		}

		utils.ErrorResponse(c, http.StatusForbidden, domainUser.ErrVerificationRequired.Error())
		c.Abort()
	}
}

// RenterOnly admits users who passed identity verification.
func RenterOnly(resolver RoleResolver) gin.HandlerFunc {
	return RoleMiddleware(resolver, domainUser.TypeRenter)
}
