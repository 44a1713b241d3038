package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"seyyar/internal/config"
	domainUser "seyyar/internal/domain/user"
	"seyyar/internal/logger"
	appErrors "seyyar/pkg/errors"
	"seyyar/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const resetTokenTTL = time.Hour

// Mailer delivers verification codes and reset links.
type Mailer interface {
	SendOTP(ctx context.Context, to, code string) error
	SendPasswordReset(ctx context.Context, to, link string) error
}

// Service implements sign-up, sign-in and profile use cases
type Service struct {
	identityRepo     domainUser.IdentityRepository
	userRepo         domainUser.Repository
	refreshTokenRepo domainUser.RefreshTokenRepository
	mailer           Mailer
	config           *config.Config
	now              func() time.Time
}

// NewService creates a new user service
func NewService(
	identityRepo domainUser.IdentityRepository,
	userRepo domainUser.Repository,
	refreshTokenRepo domainUser.RefreshTokenRepository,
	mailer Mailer,
	cfg *config.Config,
) *Service {
	return &Service{
		identityRepo:     identityRepo,
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		mailer:           mailer,
		config:           cfg,
		now:              time.Now,
	}
}

// SignUp registers an unverified identity, or refreshes the details of one that
// never completed verification, and emails a verification code.
func (s *Service) SignUp(ctx context.Context, req *SignUpRequest) (*OTPSentResponse, error) {
	req.Email = utils.SanitizeEmail(req.Email)
	req.FirstName = utils.SanitizeString(req.FirstName)
	req.LastName = utils.SanitizeString(req.LastName)
	req.Phone = utils.SanitizePhone(req.Phone)

	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewValidationError(err)
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	code, otpHash, expiresAt, err := s.newOTP()
	if err != nil {
		return nil, err
	}

	identity, err := s.identityRepo.GetByEmail(ctx, req.Email)
	switch {
	case errors.Is(err, domainUser.ErrUserNotFound):
		identity = &domainUser.Identity{Email: req.Email}
		applySignUp(identity, req, hashedPassword, otpHash, expiresAt)
		if err := s.identityRepo.Create(ctx, identity); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("failed to check existing identity: %w", err)
	case identity.EmailVerified:
		logger.Warn("Sign-up attempt with existing email",
			zap.String("email", req.Email),
			zap.String("event", "sign_up_failed_duplicate_email"),
		)
		return nil, domainUser.ErrUserAlreadyExists
	default:
		applySignUp(identity, req, hashedPassword, otpHash, expiresAt)
		if err := s.identityRepo.Update(ctx, identity); err != nil {
			return nil, err
		}
	}

	if err := s.mailer.SendOTP(ctx, identity.Email, code); err != nil {
		return nil, fmt.Errorf("failed to send verification code: %w", err)
	}

	logger.Info("Sign-up verification code sent",
		zap.String("identity_id", identity.ID.String()),
		zap.String("email", identity.Email),
		zap.String("event", "sign_up_otp_sent"),
	)

	return &OTPSentResponse{Email: identity.Email, ExpiresAt: expiresAt}, nil
}

func applySignUp(identity *domainUser.Identity, req *SignUpRequest, passwordHash, otpHash string, expiresAt time.Time) {
	identity.PasswordHash = passwordHash
	identity.FirstName = req.FirstName
	identity.LastName = req.LastName
	identity.Phone = req.Phone
	identity.OTPHash = otpHash
	identity.OTPExpiresAt = &expiresAt
	identity.OTPAttempts = 0
}

// VerifyOTP confirms the email address, creates the client profile and signs the user in.
func (s *Service) VerifyOTP(ctx context.Context, req *VerifyOTPRequest) (*AuthResponse, error) {
	req.Email = utils.SanitizeEmail(req.Email)
	req.Token = strings.TrimSpace(req.Token)

	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewValidationError(err)
	}

	identity, err := s.identityRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return nil, domainUser.ErrInvalidOTP
		}
		return nil, err
	}

	if identity.EmailVerified {
		return nil, domainUser.ErrAlreadyVerified
	}
	if identity.OTPExpired(s.now()) {
		return nil, domainUser.ErrOTPExpired
	}

	// Counted before comparing so concurrent guesses cannot exceed the cap.
	maxAttempts := s.config.OTP.MaxAttempts
	attempts, err := s.identityRepo.RecordOTPAttempt(ctx, identity.ID, maxAttempts)
	if err != nil {
		return nil, err
	}
	if attempts > maxAttempts {
		return nil, domainUser.ErrOTPExpired
	}
	if !utils.CheckPassword(identity.OTPHash, req.Token) {
		logger.Warn("Verification attempt with invalid code",
			zap.String("identity_id", identity.ID.String()),
			zap.Int("attempts", attempts),
			zap.String("event", "otp_verification_failed"),
		)
		if attempts >= maxAttempts {
			return nil, domainUser.ErrOTPExpired
		}
		return nil, domainUser.ErrInvalidOTP
	}

	if err := s.identityRepo.MarkVerified(ctx, identity.ID); err != nil {
		return nil, err
	}

	profile, err := s.ensureProfile(ctx, identity)
	if err != nil {
		return nil, err
	}

	logger.Info("Email verified",
		zap.String("user_id", identity.ID.String()),
		zap.String("email", identity.Email),
		zap.String("event", "email_verified"),
	)

	return s.issueTokens(ctx, profile)
}

func (s *Service) ResendOTP(ctx context.Context, req *ResendOTPRequest) (*OTPSentResponse, error) {
	req.Email = utils.SanitizeEmail(req.Email)

	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewValidationError(err)
	}

	identity, err := s.identityRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if identity.EmailVerified {
		return nil, domainUser.ErrAlreadyVerified
	}

	code, otpHash, expiresAt, err := s.newOTP()
	if err != nil {
		return nil, err
	}
	identity.OTPHash = otpHash
	identity.OTPExpiresAt = &expiresAt
	identity.OTPAttempts = 0

	if err := s.identityRepo.Update(ctx, identity); err != nil {
		return nil, err
	}
	if err := s.mailer.SendOTP(ctx, identity.Email, code); err != nil {
		return nil, fmt.Errorf("failed to send verification code: %w", err)
	}

	logger.Info("Verification code resent",
		zap.String("identity_id", identity.ID.String()),
		zap.String("event", "otp_resent"),
	)

	return &OTPSentResponse{Email: identity.Email, ExpiresAt: expiresAt}, nil
}

func (s *Service) SignIn(ctx context.Context, req *SignInRequest) (*AuthResponse, error) {
	req.Email = utils.SanitizeEmail(req.Email)

	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewValidationError(err)
	}

	identity, err := s.identityRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			logger.Warn("Sign-in attempt with non-existent email",
				zap.String("email", req.Email),
				zap.String("event", "user_not_found"),
			)
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.CheckPassword(identity.PasswordHash, req.Password) {
		logger.Warn("Sign-in attempt with invalid password",
			zap.String("user_id", identity.ID.String()),
			zap.String("event", "sign_in_failed_invalid_password"),
		)
		return nil, appErrors.ErrInvalidCredentials
	}

	if !identity.EmailVerified {
		return nil, domainUser.ErrEmailNotVerified
	}

	profile, err := s.ensureProfile(ctx, identity)
	if err != nil {
		return nil, err
	}

	logger.Info("User signed in",
		zap.String("user_id", profile.ID.String()),
		zap.String("type_user", string(profile.Type)),
		zap.String("event", "sign_in_success"),
	)

	return s.issueTokens(ctx, profile)
}

// ensureProfile returns the profile row of a verified identity, creating it when
// missing. A row inserted concurrently is accepted as is.
func (s *Service) ensureProfile(ctx context.Context, identity *domainUser.Identity) (*domainUser.User, error) {
	profile, err := s.userRepo.GetByID(ctx, identity.ID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, domainUser.ErrUserNotFound) {
		return nil, err
	}

	profile = &domainUser.User{
		ID:        identity.ID,
		Name:      identity.LastName,
		Firstname: identity.FirstName,
		Email:     identity.Email,
		Phone:     identity.Phone,
		Type:      domainUser.TypeClient,
	}
	if err := s.userRepo.Create(ctx, profile); err != nil {
		if !errors.Is(err, domainUser.ErrUserAlreadyExists) {
			return nil, err
		}
		logger.Debug("Profile already exists",
			zap.String("user_id", identity.ID.String()),
		)
		return s.userRepo.GetByID(ctx, identity.ID)
	}

	logger.Info("Profile created",
		zap.String("user_id", profile.ID.String()),
		zap.String("event", "profile_created"),
	)
	return profile, nil
}

func (s *Service) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) error {
	req.Email = utils.SanitizeEmail(req.Email)

	if err := utils.ValidateStruct(req); err != nil {
		return appErrors.NewValidationError(err)
	}

	identity, err := s.identityRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			logger.Info("Password reset requested for non-existent email",
				zap.String("email", req.Email),
				zap.String("event", "password_reset_requested_non_existent_email"),
			)
			return nil // Don't reveal if user exists
		}
		return fmt.Errorf("failed to retrieve identity: %w", err)
	}

	token, err := utils.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	resetToken := &domainUser.PasswordResetToken{
		UserID:    identity.ID,
		Token:     token,
		ExpiresAt: s.now().Add(resetTokenTTL),
	}
	if err := s.identityRepo.CreatePasswordResetToken(ctx, resetToken); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, identity.Email, ResetLink(s.config.SMTP.ResetURL, token)); err != nil {
		return fmt.Errorf("failed to send reset link: %w", err)
	}

	logger.Info("Password reset token generated",
		zap.String("user_id", identity.ID.String()),
		zap.String("token_id", resetToken.ID.String()),
		zap.Time("expires_at", resetToken.ExpiresAt),
		zap.String("event", "password_reset_token_generated"),
	)

	return nil
}

// ResetLink appends the token to the configured reset deep link.
func ResetLink(base, token string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "token=" + token
}

func (s *Service) ResetPassword(ctx context.Context, req *ResetPasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return appErrors.NewValidationError(err)
	}

	resetToken, err := s.identityRepo.GetPasswordResetToken(ctx, req.Token)
	if err != nil {
		logger.Warn("Password reset attempt with invalid token",
			zap.String("event", "password_reset_failed_invalid_token"),
		)
		return err
	}

	if resetToken.Used {
		return domainUser.ErrResetTokenUsed
	}
	if s.now().After(resetToken.ExpiresAt) {
		return domainUser.ErrTokenExpired
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// the token is spent before the password changes
	if err := s.identityRepo.MarkTokenAsUsed(ctx, resetToken.ID); err != nil {
		return err
	}

	if err := s.identityRepo.UpdatePassword(ctx, resetToken.UserID, hashedPassword); err != nil {
		return err
	}

	if err := s.refreshTokenRepo.RevokeAllUserTokens(ctx, resetToken.UserID); err != nil {
		logger.Error("Failed to revoke sessions after password reset",
			zap.String("user_id", resetToken.UserID.String()),
			zap.Error(err),
		)
	}

	logger.Info("Password reset successfully",
		zap.String("user_id", resetToken.UserID.String()),
		zap.String("token_id", resetToken.ID.String()),
		zap.String("event", "password_reset_success"),
	)

	return nil
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	profile, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return ToUserResponse(profile), nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*UserResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewValidationError(err)
	}

	profile, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		profile.Name = utils.SanitizeString(*req.Name)
	}
	if req.Firstname != nil {
		profile.Firstname = utils.SanitizeString(*req.Firstname)
	}
	if req.Phone != nil {
		profile.Phone = utils.SanitizePhone(*req.Phone)
	}
	if req.Pfp != nil {
		profile.Pfp = strings.TrimSpace(*req.Pfp)
	}

	if err := s.userRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	logger.Info("Profile updated",
		zap.String("user_id", userID.String()),
		zap.String("event", "profile_updated"),
	)

	return ToUserResponse(profile), nil
}

// VerifyIdentity upgrades a client to renter once an Algerian ID number is supplied.
func (s *Service) VerifyIdentity(ctx context.Context, userID uuid.UUID, req *VerifyIdentityRequest) (*UserResponse, error) {
	req.AlgeriaID = strings.TrimSpace(req.AlgeriaID)

	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewValidationError(err)
	}

	profile, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.IsRenter() {
		return ToUserResponse(profile), nil
	}

	if err := s.userRepo.SetType(ctx, userID, domainUser.TypeRenter); err != nil {
		return nil, err
	}
	profile.Type = domainUser.TypeRenter

	logger.Info("Identity verified",
		zap.String("user_id", userID.String()),
		zap.String("event", "identity_verified"),
	)

	return ToUserResponse(profile), nil
}

// RoleOf reads the current role from the profile row.
func (s *Service) RoleOf(ctx context.Context, userID uuid.UUID) (domainUser.Type, error) {
	profile, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return profile.Type, nil
}

func (s *Service) RefreshToken(ctx context.Context, req *RefreshTokenRequest) (*utils.TokenPair, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewValidationError(err)
	}

	claims, err := utils.ValidateTokenOfType(req.RefreshToken, s.config.JWT.Secret, utils.TokenTypeRefresh)
	if err != nil {
		logger.Warn("Token refresh attempt with invalid token",
			zap.String("event", "token_refresh_failed_invalid_token"),
			zap.Error(err),
		)
		return nil, appErrors.ErrInvalidToken
	}

	dbToken, err := s.refreshTokenRepo.GetByToken(ctx, req.RefreshToken)
	if err != nil {
		logger.Warn("Token refresh attempt with non-existent or invalid token",
			zap.String("user_id", claims.UserID.String()),
			zap.String("event", "token_refresh_failed_token_not_found"),
		)
		return nil, appErrors.ErrInvalidToken
	}

	if dbToken.UserID != claims.UserID {
		logger.Warn("Token refresh attempt with mismatched user ID",
			zap.String("token_user_id", dbToken.UserID.String()),
			zap.String("claim_user_id", claims.UserID.String()),
			zap.String("event", "token_refresh_failed_user_mismatch"),
		)
		return nil, appErrors.ErrInvalidToken
	}

	if err := s.refreshTokenRepo.Revoke(ctx, dbToken.ID); err != nil {
		// lost a race with another refresh of the same token
		return nil, appErrors.ErrInvalidToken
	}

	tokenPair, newToken, err := s.newTokenPair(ctx, claims.UserID, claims.Email)
	if err != nil {
		return nil, err
	}

	logger.Debug("Token refresh successfully",
		zap.String("user_id", claims.UserID.String()),
		zap.String("old_token_id", dbToken.ID.String()),
		zap.String("new_token_id", newToken.ID.String()),
		zap.String("event", "token_refresh_success"),
	)

	return tokenPair, nil
}

// SignOut revokes the given refresh token of userID.
func (s *Service) SignOut(ctx context.Context, userID uuid.UUID, req *RefreshTokenRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return appErrors.NewValidationError(err)
	}

	dbToken, err := s.refreshTokenRepo.GetByToken(ctx, req.RefreshToken)
	if err != nil {
		return appErrors.ErrInvalidToken
	}

	if dbToken.UserID != userID {
		return appErrors.ErrInvalidToken
	}

	if err := s.refreshTokenRepo.Revoke(ctx, dbToken.ID); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	logger.Info("User signed out",
		zap.String("user_id", userID.String()),
		zap.String("token_id", dbToken.ID.String()),
		zap.String("event", "sign_out"),
	)

	return nil
}

func (s *Service) issueTokens(ctx context.Context, profile *domainUser.User) (*AuthResponse, error) {
	tokenPair, _, err := s.newTokenPair(ctx, profile.ID, profile.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:         ToUserResponse(profile),
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresAt:    tokenPair.ExpiresAt,
	}, nil
}

func (s *Service) newTokenPair(ctx context.Context, userID uuid.UUID, email string) (*utils.TokenPair, *domainUser.RefreshToken, error) {
	tokenPair, err := utils.GenerateTokenPair(
		userID,
		email,
		s.config.JWT.Secret,
		s.config.JWT.ExpiryHours,
		s.config.JWT.RefreshExpiryHours,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	refreshToken := &domainUser.RefreshToken{
		UserID:    userID,
		Token:     tokenPair.RefreshToken,
		ExpiresAt: s.now().Add(time.Duration(s.config.JWT.RefreshExpiryHours) * time.Hour),
	}
	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return nil, nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return tokenPair, refreshToken, nil
}

func (s *Service) newOTP() (code, hash string, expiresAt time.Time, err error) {
	code, err = utils.GenerateOTP(s.config.OTP.Length)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("failed to generate verification code: %w", err)
	}
	hash, err = utils.HashPassword(code)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("failed to hash verification code: %w", err)
	}
	return code, hash, s.now().Add(s.config.OTP.TTL), nil
}
