package user

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")

	ErrEmailNotVerified     = errors.New("email address is not verified")
	ErrInvalidOTP           = errors.New("invalid verification code")
	ErrOTPExpired           = errors.New("verification code has expired")
	ErrAlreadyVerified      = errors.New("email address is already verified")
	ErrVerificationRequired = errors.New("identity verification required")

	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenExpired   = errors.New("token has expired")
	ErrResetTokenUsed = errors.New("reset token has already been used")
)
