package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// IdentityRepository stores sign-in accounts and their password reset tokens.
type IdentityRepository interface {
	Create(ctx context.Context, identity *Identity) error
	GetByEmail(ctx context.Context, email string) (*Identity, error)
	GetByID(ctx context.Context, identityID uuid.UUID) (*Identity, error)
	// Update persists the pending sign-up details and the OTP fields.
	Update(ctx context.Context, identity *Identity) error
	// RecordOTPAttempt atomically counts one verification attempt and returns the
	// new count. The pending code is cleared once the count reaches maxAttempts.
	RecordOTPAttempt(ctx context.Context, identityID uuid.UUID, maxAttempts int) (int, error)
	MarkVerified(ctx context.Context, identityID uuid.UUID) error
	UpdatePassword(ctx context.Context, identityID uuid.UUID, passwordHash string) error

	CreatePasswordResetToken(ctx context.Context, token *PasswordResetToken) error
	GetPasswordResetToken(ctx context.Context, token string) (*PasswordResetToken, error)
	MarkTokenAsUsed(ctx context.Context, tokenID uuid.UUID) error
}

// Repository defines the interface for profile repository operations
type Repository interface {
	// Create fails with ErrUserAlreadyExists when a profile with the same ID exists.
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	GetByIDs(ctx context.Context, userIDs []uuid.UUID) ([]*User, error)
	Update(ctx context.Context, user *User) error
	SetType(ctx context.Context, userID uuid.UUID, userType Type) error
}

// RefreshTokenRepository defines the interface for refresh token operations
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *RefreshToken) error
	GetByToken(ctx context.Context, token string) (*RefreshToken, error)
	Revoke(ctx context.Context, tokenID uuid.UUID) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) error
}
