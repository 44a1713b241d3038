package memory

import (
	"context"
	"strings"
	"time"

	"seyyar/internal/domain/user"

	"github.com/google/uuid"
)

type userRow struct {
	user user.User
}

type identityRow struct {
	identity user.Identity
}

type resetTokenRow struct {
	token user.PasswordResetToken
}

type refreshTokenRow struct {
	token user.RefreshToken
}

// UserRepository implements user.Repository
type UserRepository struct {
	s *Store
}

func NewUserRepository(s *Store) *UserRepository {
	return &UserRepository{s: s}
}

func (r *UserRepository) Create(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := u.ID.String()
	if _, ok := r.s.users[key]; ok {
		return user.ErrUserAlreadyExists
	}

	u.CreatedAt = r.s.now()
	u.UpdatedAt = u.CreatedAt
	if u.Type == "" {
		u.Type = user.TypeClient
	}
	r.s.users[key] = &userRow{user: *u}
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, userID uuid.UUID) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.users[userID.String()]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	u := row.user
	return &u, nil
}

func (r *UserRepository) GetByIDs(_ context.Context, userIDs []uuid.UUID) ([]*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]*user.User, 0, len(userIDs))
	for _, id := range userIDs {
		if row, ok := r.s.users[id.String()]; ok {
			u := row.user
			users = append(users, &u)
		}
	}
	return users, nil
}

func (r *UserRepository) Update(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.users[u.ID.String()]
	if !ok {
		return user.ErrUserNotFound
	}

	u.UpdatedAt = r.s.now()
	row.user.Name = u.Name
	row.user.Firstname = u.Firstname
	row.user.Phone = u.Phone
	row.user.Pfp = u.Pfp
	row.user.UpdatedAt = u.UpdatedAt
	return nil
}

func (r *UserRepository) SetType(_ context.Context, userID uuid.UUID, userType user.Type) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.users[userID.String()]
	if !ok {
		return user.ErrUserNotFound
	}
	row.user.Type = userType
	row.user.UpdatedAt = r.s.now()
	return nil
}

// IdentityRepository implements user.IdentityRepository. Emails are unique
// case-insensitively.
type IdentityRepository struct {
	s *Store
}

func NewIdentityRepository(s *Store) *IdentityRepository {
	return &IdentityRepository{s: s}
}

func (r *IdentityRepository) Create(_ context.Context, i *user.Identity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.findByEmail(i.Email) != nil {
		return user.ErrUserAlreadyExists
	}

	i.ID = uuid.New()
	i.CreatedAt = r.s.now()
	i.UpdatedAt = i.CreatedAt
	r.s.identities[i.ID.String()] = &identityRow{identity: copyIdentity(i)}
	return nil
}

func (r *IdentityRepository) GetByEmail(_ context.Context, email string) (*user.Identity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row := r.findByEmail(email)
	if row == nil {
		return nil, user.ErrUserNotFound
	}
	i := copyIdentity(&row.identity)
	return &i, nil
}

func (r *IdentityRepository) GetByID(_ context.Context, identityID uuid.UUID) (*user.Identity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.identities[identityID.String()]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	i := copyIdentity(&row.identity)
	return &i, nil
}

func (r *IdentityRepository) Update(_ context.Context, i *user.Identity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.identities[i.ID.String()]
	if !ok {
		return user.ErrUserNotFound
	}

	i.UpdatedAt = r.s.now()
	updated := copyIdentity(i)
	row.identity.PasswordHash = updated.PasswordHash
	row.identity.FirstName = updated.FirstName
	row.identity.LastName = updated.LastName
	row.identity.Phone = updated.Phone
	row.identity.OTPHash = updated.OTPHash
	row.identity.OTPExpiresAt = updated.OTPExpiresAt
	row.identity.OTPAttempts = updated.OTPAttempts
	row.identity.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *IdentityRepository) RecordOTPAttempt(_ context.Context, identityID uuid.UUID, maxAttempts int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.identities[identityID.String()]
	if !ok {
		return 0, user.ErrUserNotFound
	}
	row.identity.OTPAttempts++
	if row.identity.OTPAttempts >= maxAttempts {
		row.identity.OTPHash = ""
		row.identity.OTPExpiresAt = nil
	}
	row.identity.UpdatedAt = r.s.now()
	return row.identity.OTPAttempts, nil
}

func (r *IdentityRepository) MarkVerified(_ context.Context, identityID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.identities[identityID.String()]
	if !ok {
		return user.ErrUserNotFound
	}
	row.identity.EmailVerified = true
	row.identity.OTPHash = ""
	row.identity.OTPExpiresAt = nil
	row.identity.OTPAttempts = 0
	row.identity.UpdatedAt = r.s.now()
	return nil
}

func (r *IdentityRepository) UpdatePassword(_ context.Context, identityID uuid.UUID, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.identities[identityID.String()]
	if !ok {
		return user.ErrUserNotFound
	}
	row.identity.PasswordHash = passwordHash
	row.identity.UpdatedAt = r.s.now()
	return nil
}

func (r *IdentityRepository) CreatePasswordResetToken(_ context.Context, token *user.PasswordResetToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	token.ID = uuid.New()
	token.CreatedAt = r.s.now()
	token.Used = false
	r.s.resetTokens[token.Token] = &resetTokenRow{token: *token}
	return nil
}

func (r *IdentityRepository) GetPasswordResetToken(_ context.Context, token string) (*user.PasswordResetToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.resetTokens[token]
	if !ok {
		return nil, user.ErrTokenInvalid
	}
	t := row.token
	return &t, nil
}

func (r *IdentityRepository) MarkTokenAsUsed(_ context.Context, tokenID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, row := range r.s.resetTokens {
		if row.token.ID == tokenID && !row.token.Used {
			row.token.Used = true
			return nil
		}
	}
	return user.ErrResetTokenUsed
}

// findByEmail expects the caller to hold the store lock.
func (r *IdentityRepository) findByEmail(email string) *identityRow {
	for _, row := range r.s.identities {
		if strings.EqualFold(row.identity.Email, email) {
			return row
		}
	}
	return nil
}

func copyIdentity(i *user.Identity) user.Identity {
	out := *i
	if i.OTPExpiresAt != nil {
		expires := *i.OTPExpiresAt
		out.OTPExpiresAt = &expires
	}
	return out
}

// RefreshTokenRepository implements user.RefreshTokenRepository
type RefreshTokenRepository struct {
	s *Store
}

func NewRefreshTokenRepository(s *Store) *RefreshTokenRepository {
	return &RefreshTokenRepository{s: s}
}

func (r *RefreshTokenRepository) Create(_ context.Context, token *user.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	token.ID = uuid.New()
	token.CreatedAt = r.s.now()
	token.UpdatedAt = token.CreatedAt
	token.Revoked = false
	r.s.refreshTokens[token.Token] = &refreshTokenRow{token: *token}
	return nil
}

func (r *RefreshTokenRepository) GetByToken(_ context.Context, token string) (*user.RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.refreshTokens[token]
	if !ok || !row.token.IsActive(r.s.now()) {
		return nil, user.ErrTokenInvalid
	}
	t := row.token
	return &t, nil
}

func (r *RefreshTokenRepository) Revoke(_ context.Context, tokenID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, row := range r.s.refreshTokens {
		if row.token.ID == tokenID && !row.token.Revoked {
			r.revoke(row)
			return nil
		}
	}
	return user.ErrTokenInvalid
}

func (r *RefreshTokenRepository) RevokeAllUserTokens(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, row := range r.s.refreshTokens {
		if row.token.UserID == userID && !row.token.Revoked {
			r.revoke(row)
		}
	}
	return nil
}

func (r *RefreshTokenRepository) DeleteExpired(_ context.Context, olderThan time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cutoff := r.s.now().Add(-olderThan)
	for key, row := range r.s.refreshTokens {
		t := row.token
		if t.ExpiresAt.Before(cutoff) || (t.Revoked && t.RevokedAt.Before(cutoff)) {
			delete(r.s.refreshTokens, key)
		}
	}
	return nil
}

func (r *RefreshTokenRepository) revoke(row *refreshTokenRow) {
	now := r.s.now()
	row.token.Revoked = true
	row.token.RevokedAt = now
	row.token.UpdatedAt = now
}
