package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"seyyar/internal/domain/user"
	"seyyar/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IdentityRepository implements user.IdentityRepository
type IdentityRepository struct {
	db *DB
}

func NewIdentityRepository(db *DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

func (r *IdentityRepository) Create(ctx context.Context, i *user.Identity) error {
	i.ID = uuid.New()
	i.CreatedAt = time.Now()
	i.UpdatedAt = i.CreatedAt

	dbModel := toIdentityModel(i)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		if isUniqueViolation(err) {
			return user.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create identity: %w", err)
	}

	i.ID = dbModel.ID
	return nil
}

func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (*user.Identity, error) {
	var dbModel models.IdentityModel
	err := r.db.DB.WithContext(ctx).Where("email = ?", email).First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}

	return toIdentityEntity(&dbModel), nil
}

func (r *IdentityRepository) GetByID(ctx context.Context, identityID uuid.UUID) (*user.Identity, error) {
	var dbModel models.IdentityModel
	err := r.db.DB.WithContext(ctx).First(&dbModel, "id = ?", identityID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}

	return toIdentityEntity(&dbModel), nil
}

func (r *IdentityRepository) Update(ctx context.Context, i *user.Identity) error {
	i.UpdatedAt = time.Now()

	result := r.db.DB.WithContext(ctx).Model(&models.IdentityModel{}).
		Where("id = ?", i.ID).
		Updates(map[string]interface{}{
			"password_hash":  i.PasswordHash,
			"first_name":     i.FirstName,
			"last_name":      i.LastName,
			"phone":          i.Phone,
			"otp_hash":       i.OTPHash,
			"otp_expires_at": i.OTPExpiresAt,
			"otp_attempts":   i.OTPAttempts,
			"updated_at":     i.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update identity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}

	return nil
}

func (r *IdentityRepository) RecordOTPAttempt(ctx context.Context, identityID uuid.UUID, maxAttempts int) (int, error) {
	var dbModel models.IdentityModel

	// The CASE arms see the pre-update row, hence the repeated "+ 1".
	result := r.db.DB.WithContext(ctx).Model(&dbModel).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "otp_attempts"}}}).
		Where("id = ?", identityID).
		Updates(map[string]interface{}{
			"otp_attempts":   gorm.Expr("otp_attempts + 1"),
			"otp_hash":       gorm.Expr("CASE WHEN otp_attempts + 1 >= ? THEN '' ELSE otp_hash END", maxAttempts),
			"otp_expires_at": gorm.Expr("CASE WHEN otp_attempts + 1 >= ? THEN NULL ELSE otp_expires_at END", maxAttempts),
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to record verification attempt: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, user.ErrUserNotFound
	}

	return dbModel.OTPAttempts, nil
}

func (r *IdentityRepository) MarkVerified(ctx context.Context, identityID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).Model(&models.IdentityModel{}).
		Where("id = ?", identityID).
		Updates(map[string]interface{}{
			"email_verified": true,
			"otp_hash":       "",
			"otp_expires_at": nil,
			"otp_attempts":   0,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark identity verified: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}

	return nil
}

func (r *IdentityRepository) UpdatePassword(ctx context.Context, identityID uuid.UUID, passwordHash string) error {
	result := r.db.DB.WithContext(ctx).Model(&models.IdentityModel{}).
		Where("id = ?", identityID).
		Updates(map[string]interface{}{
			"password_hash": passwordHash,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}

	return nil
}

func (r *IdentityRepository) CreatePasswordResetToken(ctx context.Context, token *user.PasswordResetToken) error {
	token.ID = uuid.New()
	token.CreatedAt = time.Now()
	token.Used = false

	dbModel := toPasswordResetTokenModel(token)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	token.ID = dbModel.ID
	return nil
}

func (r *IdentityRepository) GetPasswordResetToken(ctx context.Context, token string) (*user.PasswordResetToken, error) {
	var dbModel models.PasswordResetTokenModel
	err := r.db.DB.WithContext(ctx).Where("token = ?", token).First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrTokenInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}

	return toPasswordResetTokenEntity(&dbModel), nil
}

func (r *IdentityRepository) MarkTokenAsUsed(ctx context.Context, tokenID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.PasswordResetTokenModel{}).
		Where("id = ? AND used = false", tokenID).
		Update("used", true)

	if result.Error != nil {
		return fmt.Errorf("failed to mark reset token as used: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return user.ErrResetTokenUsed
	}

	return nil
}

func toIdentityModel(i *user.Identity) *models.IdentityModel {
	return &models.IdentityModel{
		ID:            i.ID,
		Email:         i.Email,
		PasswordHash:  i.PasswordHash,
		EmailVerified: i.EmailVerified,
		FirstName:     i.FirstName,
		LastName:      i.LastName,
		Phone:         i.Phone,
		OTPHash:       i.OTPHash,
		OTPExpiresAt:  i.OTPExpiresAt,
		OTPAttempts:   i.OTPAttempts,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

func toIdentityEntity(m *models.IdentityModel) *user.Identity {
	return &user.Identity{
		ID:            m.ID,
		Email:         m.Email,
		PasswordHash:  m.PasswordHash,
		EmailVerified: m.EmailVerified,
		FirstName:     m.FirstName,
		LastName:      m.LastName,
		Phone:         m.Phone,
		OTPHash:       m.OTPHash,
		OTPExpiresAt:  m.OTPExpiresAt,
		OTPAttempts:   m.OTPAttempts,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toPasswordResetTokenModel(t *user.PasswordResetToken) *models.PasswordResetTokenModel {
	return &models.PasswordResetTokenModel{
		ID:        t.ID,
		UserID:    t.UserID,
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt,
		Used:      t.Used,
		CreatedAt: t.CreatedAt,
	}
}

func toPasswordResetTokenEntity(m *models.PasswordResetTokenModel) *user.PasswordResetToken {
	return &user.PasswordResetToken{
		ID:        m.ID,
		UserID:    m.UserID,
		Token:     m.Token,
		ExpiresAt: m.ExpiresAt,
		Used:      m.Used,
		CreatedAt: m.CreatedAt,
	}
}
