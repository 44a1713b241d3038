package user

import (
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Type is the role stored on the profile row.
type Type string

const (
	TypeClient Type = "client"
	TypeRenter Type = "renter"
)

func (t Type) Valid() bool {
	return t == TypeClient || t == TypeRenter
}

// User is the public profile shown to other users (car owners, booking clients).
// ID equals the ID of the Identity it was created for.
type User struct {
	ID        uuid.UUID
	Name      string // last name
	Firstname string
	Email     string
	Phone     string
	Pfp       string
	Type      Type
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsRenter reports whether the user passed identity verification and may list cars.
func (u *User) IsRenter() bool {
	return u.Type == TypeRenter
}

// Initial is the avatar letter: first name, then last name, then "U".
func (u *User) Initial() string {
	for _, s := range []string{u.Firstname, u.Name} {
		for _, r := range s {
			return string(unicode.ToUpper(r))
		}
	}
	return "U"
}

// Identity is the sign-in account. Sign-up details are kept on it until the email is
// verified, at which point the profile row is created from them.
type Identity struct {
	ID            uuid.UUID
	Email         string
	PasswordHash  string
	EmailVerified bool

	FirstName string
	LastName  string
	Phone     string

	OTPHash      string
	OTPExpiresAt *time.Time
	// OTPAttempts counts verification attempts against the pending code.
	OTPAttempts int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OTPExpired reports whether no usable code is pending at now.
func (i *Identity) OTPExpired(now time.Time) bool {
	return i.OTPHash == "" || i.OTPExpiresAt == nil || now.After(*i.OTPExpiresAt)
}

// PasswordResetToken represents a password reset token entity
type PasswordResetToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// RefreshToken represents a refresh token entity
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
	Revoked   bool
	RevokedAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive checks if the refresh token is neither revoked nor expired
func (rt *RefreshToken) IsActive(now time.Time) bool {
	return !rt.Revoked && now.Before(rt.ExpiresAt)
}
