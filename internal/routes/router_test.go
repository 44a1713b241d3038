package routes

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"seyyar/internal/app"
	"seyyar/internal/config"
	"seyyar/internal/events"
	"seyyar/internal/infrastructure/storage"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const publicURL = "http://localhost:8080"

var pngBytes = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 32)...)

type outbox struct {
	mu    sync.Mutex
	codes map[string]string
}

func (o *outbox) SendOTP(_ context.Context, to, code string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.codes[to] = code
	return nil
}

func (o *outbox) SendPasswordReset(context.Context, string, string) error {
	return nil
}

func (o *outbox) code(email string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.codes[email]
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	mail   *outbox
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server:    config.ServerConfig{Environment: "test", PublicURL: publicURL},
		Store:     config.StoreConfig{Driver: config.StoreDriverMemory},
		JWT:       config.JWTConfig{Secret: "test-secret", ExpiryHours: 1, RefreshExpiryHours: 24},
		OTP:       config.OTPConfig{Length: 6, TTL: 10 * time.Minute, MaxAttempts: 5},
		RateLimit: config.RateLimitConfig{GeneralRPS: 1000, GeneralBurst: 1000},
	}
	mail := &outbox{codes: map[string]string{}}

	container, err := app.NewWithOptions(cfg, app.Options{
		Mailer:    mail,
		Publisher: events.LogPublisher{},
		Blobs:     storage.NewBlobStoreWithFs(afero.NewMemMapFs(), "car-images", publicURL),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	router, limiter := SetupRoutes(container)
	t.Cleanup(limiter.Stop)

	return &testAPI{t: t, router: router, mail: mail}
}

func (a *testAPI) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.serve(req, token)
}

func (a *testAPI) serve(req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

type session struct {
	UserID       string
	AccessToken  string
	RefreshToken string
}

// register signs up and verifies email, returning the issued tokens.
func (a *testAPI) register(email string) session {
	a.t.Helper()

	w, _ := a.do(http.MethodPost, "/api/v1/auth/sign-up", "", map[string]string{
		"first_name":       "Amine",
		"last_name":        "Benali",
		"phone":            "+213 555 123 456",
		"email":            email,
		"password":         "secret1",
		"confirm_password": "secret1",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	w, env := a.do(http.MethodPost, "/api/v1/auth/verify-otp", "", map[string]string{
		"email": email,
		"token": a.mail.code(email),
	})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())

	var auth struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &auth))
	return session{UserID: auth.User.ID, AccessToken: auth.AccessToken, RefreshToken: auth.RefreshToken}
}

func (a *testAPI) registerRenter(email string) session {
	a.t.Helper()
	s := a.register(email)

	w, _ := a.do(http.MethodPost, "/api/v1/profile/verify-identity", s.AccessToken, map[string]string{
		"algeria_id": "109876543210",
	})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return s
}

func (a *testAPI) uploadImage(token string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "car.png")
	require.NoError(a.t, err)
	_, err = part.Write(pngBytes)
	require.NoError(a.t, err)
	require.NoError(a.t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/my-cars/images", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return a.serve(req, token)
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestHealthAndCatalog(t *testing.T) {
	api := newTestAPI(t)

	w, _ := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w, env := api.do(http.MethodGet, "/api/v1/catalog/brands/Renault/models", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[[]string](t, env), "Clio")

	w, _ = api.do(http.MethodGet, "/api/v1/catalog/brands/Lada/models", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = api.do(http.MethodGet, "/api/v1/catalog/wilayas/Oran/cities", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[[]string](t, env), "Oran")

	w, env = api.do(http.MethodGet, "/api/v1/catalog/filters", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	filters := decode[map[string]any](t, env)
	assert.Contains(t, filters, "price_ranges")
}

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t)
	s := api.register("amine@example.com")

	w, env := api.do(http.MethodGet, "/api/v1/profile", s.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode[map[string]any](t, env)
	assert.Equal(t, "client", profile["typeUser"])
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	w, _ = api.do(http.MethodGet, "/api/v1/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = api.do(http.MethodGet, "/api/v1/profile", s.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "refresh tokens are not bearer tokens")

	w, _ = api.do(http.MethodPost, "/api/v1/auth/sign-up", "", map[string]string{
		"first_name": "Amine", "last_name": "Benali", "phone": "+213 555 123 456",
		"email": "amine@example.com", "password": "secret1", "confirm_password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = api.do(http.MethodPost, "/api/v1/auth/sign-in", "", map[string]string{
		"email": "amine@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = api.do(http.MethodPost, "/api/v1/auth/sign-in", "", map[string]string{
		"email": "amine@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = api.do(http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": s.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)
	refreshed := decode[map[string]any](t, env)

	w, _ = api.do(http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": s.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "a refresh token is single use")

	w, _ = api.do(http.MethodPost, "/api/v1/auth/sign-out", s.AccessToken, map[string]any{"refresh_token": refreshed["refresh_token"]})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do(http.MethodPost, "/api/v1/auth/sign-in", "", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRentingFlow(t *testing.T) {
	api := newTestAPI(t)
	owner := api.registerRenter("owner@example.com")
	client := api.register("client@example.com")

	w, env := api.uploadImage(owner.AccessToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	imageURL := decode[map[string]string](t, env)["url"]
	require.True(t, strings.HasPrefix(imageURL, publicURL+"/api/v1/media/car-images/car-"), imageURL)

	w, _ = api.do(http.MethodGet, strings.TrimPrefix(imageURL, publicURL), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w, _ = api.uploadImage(client.AccessToken)
	assert.Equal(t, http.StatusForbidden, w.Code, "clients must verify their identity first")

	w, env = api.do(http.MethodPost, "/api/v1/my-cars", owner.AccessToken, map[string]any{
		"title":         "Clio 5 2021",
		"brand":         "Renault",
		"model":         "Clio",
		"year":          "2021",
		"license_plate": "12345-121-31",
		"daily_price":   "4500",
		"wilaya":        "Oran",
		"city":          "Oran",
		"images":        []string{imageURL},
		"features":      []string{"Bluetooth"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	carID := decode[map[string]any](t, env)["uuid"].(string)

	w, _ = api.do(http.MethodPost, "/api/v1/my-cars", client.AccessToken, map[string]any{"title": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// listing and filters
	w, env = api.do(http.MethodGet, "/api/v1/cars", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, env)["count"])

	w, env = api.do(http.MethodGet, "/api/v1/cars?brand=Renault&price_range=3000+-+5000+DZD&features=Bluetooth", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[map[string]any](t, env)
	assert.EqualValues(t, 1, listed["count"])
	assert.Equal(t, true, listed["filters_active"])

	w, env = api.do(http.MethodGet, "/api/v1/cars?features=Bluetooth&features=Air+Conditioning", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode[map[string]any](t, env)["count"])

	// detail states
	carPath := "/api/v1/cars/" + carID
	w, env = api.do(http.MethodGet, carPath, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "NOT_SIGNED_IN", decode[map[string]any](t, env)["state"])

	w, env = api.do(http.MethodGet, carPath, owner.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "IS_OWNER", decode[map[string]any](t, env)["state"])

	// reserving
	w, env = api.do(http.MethodPost, carPath+"/reservations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/sign-in", decode[map[string]string](t, env)["redirect"])

	w, _ = api.do(http.MethodPost, carPath+"/reservations", owner.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = api.do(http.MethodPost, carPath+"/reservations", client.AccessToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[struct {
		Reservation struct {
			ID string `json:"uuid"`
		} `json:"reservation"`
		State     string `json:"state"`
		CanCancel bool   `json:"can_cancel"`
	}](t, env)
	assert.Equal(t, "ALREADY_RESERVED", created.State)
	assert.True(t, created.CanCancel)

	w, _ = api.do(http.MethodPost, carPath+"/reservations", client.AccessToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = api.do(http.MethodGet, carPath, client.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[map[string]any](t, env)
	assert.Equal(t, "ALREADY_RESERVED", detail["state"])
	contact := detail["contact"].(map[string]any)
	assert.Equal(t, "tel:+213555123456", contact["call"])

	// bookings follow the car's availability
	w, env = api.do(http.MethodGet, "/api/v1/bookings", client.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, env)["active_count"])

	w, env = api.do(http.MethodPatch, "/api/v1/my-cars/"+carID+"/availability", owner.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode[map[string]any](t, env)["is_available"])

	w, env = api.do(http.MethodGet, "/api/v1/bookings?tab=past", client.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	past := decode[map[string]any](t, env)
	assert.Len(t, past["bookings"], 1)

	w, _ = api.do(http.MethodGet, "/api/v1/bookings?tab=upcoming", client.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// cancelling
	w, _ = api.do(http.MethodDelete, "/api/v1/reservations/"+created.Reservation.ID, owner.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = api.do(http.MethodDelete, "/api/v1/reservations/"+created.Reservation.ID, client.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "UNAVAILABLE", decode[map[string]any](t, env)["state"])

	// owner management
	w, _ = api.do(http.MethodDelete, "/api/v1/my-cars/"+carID, client.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = api.do(http.MethodGet, "/api/v1/my-cars", owner.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]any](t, env), 1)

	w, _ = api.do(http.MethodDelete, "/api/v1/my-cars/"+carID, owner.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do(http.MethodGet, carPath, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = api.do(http.MethodGet, "/api/v1/cars/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
