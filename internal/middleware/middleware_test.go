package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"seyyar/internal/config"
	domainUser "seyyar/internal/domain/user"
	"seyyar/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{JWT: config.JWTConfig{Secret: testSecret}}
}

func whoAmI(c *gin.Context) {
	if id, ok := CurrentUserID(c); ok {
		c.String(http.StatusOK, id.String())
		return
	}
	c.String(http.StatusOK, "anonymous")
}

func serve(r *gin.Engine, method, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	pair, err := utils.GenerateTokenPair(userID, "amel@example.com", testSecret, 1, 2)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthMiddleware(testConfig()), whoAmI)

	tests := []struct {
		name          string
		authorization string
		wantStatus    int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + pair.AccessToken, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"refresh token", "Bearer " + pair.RefreshToken, http.StatusUnauthorized},
		{"access token", "Bearer " + pair.AccessToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodGet, "/me", tt.authorization)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, userID.String(), w.Body.String())
			}
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	pair, err := utils.GenerateTokenPair(userID, "amel@example.com", testSecret, 1, 2)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", OptionalAuthMiddleware(testConfig()), whoAmI)

	assert.Equal(t, "anonymous", serve(r, http.MethodGet, "/me", "").Body.String())
	assert.Equal(t, "anonymous", serve(r, http.MethodGet, "/me", "Bearer expired-or-bad").Body.String())
	assert.Equal(t, userID.String(), serve(r, http.MethodGet, "/me", "Bearer "+pair.AccessToken).Body.String())
}

type stubResolver struct {
	roles map[uuid.UUID]domainUser.Type
	err   error
}

func (s stubResolver) RoleOf(_ context.Context, userID uuid.UUID) (domainUser.Type, error) {
	if s.err != nil {
		return "", s.err
	}
	role, ok := s.roles[userID]
	if !ok {
		return "", domainUser.ErrUserNotFound
	}
	return role, nil
}

func TestRenterOnly(t *testing.T) {
	renter, client, unknown := uuid.New(), uuid.New(), uuid.New()
	resolver := stubResolver{roles: map[uuid.UUID]domainUser.Type{
		renter: domainUser.TypeRenter,
		client: domainUser.TypeClient,
	}}

	newRouter := func(res RoleResolver, as *uuid.UUID) *gin.Engine {
		r := gin.New()
		r.GET("/my-cars", func(c *gin.Context) {
			if as != nil {
				c.Set(UserIDKey, *as)
			}
			c.Next()
		}, RenterOnly(res), whoAmI)
		return r
	}

	assert.Equal(t, http.StatusOK, serve(newRouter(resolver, &renter), http.MethodGet, "/my-cars", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(newRouter(resolver, &client), http.MethodGet, "/my-cars", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(newRouter(resolver, &unknown), http.MethodGet, "/my-cars", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(newRouter(resolver, nil), http.MethodGet, "/my-cars", "").Code)

	failing := stubResolver{err: errors.New("connection reset")}
	assert.Equal(t, http.StatusInternalServerError, serve(newRouter(failing, &renter), http.MethodGet, "/my-cars", "").Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/", RequestIDMiddleware(), func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 100))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	_, err := uuid.Parse(w.Body.String())
	assert.NoError(t, err, "oversized ids are replaced")
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewRateLimiter(0.001, 2)
	defer limiter.Stop()

	r := gin.New()
	r.GET("/", RateLimitMiddleware(limiter), whoAmI)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/", "").Code)
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.POST("/", RequestSizeLimitMiddleware(8), whoAmI)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", 16)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("ok"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.GET("/", SecurityHeadersMiddleware(), NoStoreMiddleware(), whoAmI)

	w := serve(r, http.MethodGet, "/", "")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
