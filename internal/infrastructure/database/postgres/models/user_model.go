package models

import (
	"time"

	"github.com/google/uuid"
)

// IdentityModel represents the database model for sign-in accounts
type IdentityModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email         string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash  string     `gorm:"type:varchar(255);not null"`
	EmailVerified bool       `gorm:"default:false;not null"`
	FirstName     string     `gorm:"type:varchar(100)"`
	LastName      string     `gorm:"type:varchar(100)"`
	Phone         string     `gorm:"type:varchar(20)"`
	OTPHash       string     `gorm:"column:otp_hash;type:varchar(255)"`
	OTPExpiresAt  *time.Time `gorm:"column:otp_expires_at;type:timestamptz"`
	OTPAttempts   int        `gorm:"column:otp_attempts;not null;default:0"`
	CreatedAt     time.Time  `gorm:"not null"`
	UpdatedAt     time.Time  `gorm:"not null"`
}

func (IdentityModel) TableName() string {
	return "identities"
}

// UserModel represents the database model for public profiles
type UserModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Name      string    `gorm:"type:varchar(100)"`
	Firstname string    `gorm:"type:varchar(100)"`
	Email     string    `gorm:"type:varchar(255);not null"`
	Phone     string    `gorm:"type:varchar(20)"`
	Pfp       string    `gorm:"type:text"`
	TypeUser  string    `gorm:"column:typeUser;type:varchar(20);not null;default:'client'"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (UserModel) TableName() string {
	return "users"
}

// PasswordResetTokenModel represents the database model for PasswordResetToken
type PasswordResetTokenModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Token     string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null;index"`
	Used      bool      `gorm:"default:false;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (PasswordResetTokenModel) TableName() string {
	return "password_reset_tokens"
}

// RefreshTokenModel represents the database model for RefreshToken
type RefreshTokenModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Token     string     `gorm:"type:varchar(1000);not null;unique;index"`
	ExpiresAt time.Time  `gorm:"not null;index"`
	Revoked   bool       `gorm:"default:false;index"`
	RevokedAt *time.Time `gorm:"type:timestamptz"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
}

func (RefreshTokenModel) TableName() string {
	return "refresh_tokens"
}
