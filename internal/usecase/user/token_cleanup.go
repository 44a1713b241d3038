package user

import (
	"context"
	"time"

	"seyyar/internal/logger"

	"go.uber.org/zap"
)

// StartTokenCleanupJob deletes expired and long-revoked refresh tokens every interval
// until ctx is cancelled.
func (s *Service) StartTokenCleanupJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Token cleanup job started",
		zap.Duration("interval", interval),
	)

	s.cleanupExpiredTokens(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Token cleanup job stopped")
			return
		case <-ticker.C:
			s.cleanupExpiredTokens(ctx)
		}
	}
}

const revokedTokenRetention = 24 * time.Hour

func (s *Service) cleanupExpiredTokens(ctx context.Context) {
	olderThan := revokedTokenRetention
	if err := s.refreshTokenRepo.DeleteExpired(ctx, olderThan); err != nil {
		logger.Error("Failed to delete expired tokens",
			zap.Error(err),
			zap.String("event", "token_cleanup_failed"),
		)
		return
	}

	logger.Debug("Expired tokens cleaned up successfully",
		zap.Duration("older_than", olderThan),
	)
}
