package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/crewlinkhq/crewlink/internal/api"
	"github.com/crewlinkhq/crewlink/internal/app"
	iauth "github.com/crewlinkhq/crewlink/internal/auth"
	"github.com/crewlinkhq/crewlink/internal/cache"
	sharedtestutil "github.com/crewlinkhq/crewlink/internal/database/testutil"
	"github.com/crewlinkhq/crewlink/internal/notifications"
	"github.com/crewlinkhq/crewlink/internal/realtime"
	"github.com/crewlinkhq/crewlink/internal/wage"
	"github.com/crewlinkhq/crewlink/pkg/response"
)

// Env encapsulates a fully-wired API instance backed by an in-memory database
// for handler tests.
type Env struct {
	T      *testing.T
	DB     *gorm.DB
	Router *gin.Engine
	JWT    *iauth.JWTService
}

// NewEnv provisions a fresh handler test environment with migrations applied.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t)

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:   "test-suite-super-secret-key-32-bytes!!",
		Issuer:   "test-suite",
		TokenTTL: time.Hour,
	})
	require.NoError(t, err)

	cfg := &app.Config{
		Auth: app.AuthConfig{
			JWT: app.JWTSettings{
				Secret: "test-suite-super-secret-key-32-bytes!!",
				Issuer: "test-suite",
				TTL:    time.Hour,
			},
		},
	}

	hub := realtime.NewHub()
	router, err := api.NewRouter(api.Dependencies{
		DB:         db,
		JWT:        jwtSvc,
		Config:     cfg,
		Cache:      cache.NewMemoryStore(),
		Hub:        hub,
		Gateway:    notifications.NewDispatcher(db, hub),
		Normalizer: wage.NewNormalizer(),
	})
	require.NoError(t, err)

	return &Env{
		T:      t,
		DB:     db,
		Router: router,
		JWT:    jwtSvc,
	}
}

// Registered bundles the id and bearer token returned from registration.
type Registered struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

// RegisterCompany creates a company account through the public endpoint.
func (e *Env) RegisterCompany(name string) Registered {
	e.T.Helper()

	w := e.Request(http.MethodPost, "/api/companies", map[string]any{"name": name}, "")
	require.Equal(e.T, http.StatusCreated, w.Code, w.Body.String())

	resp := DecodeResponse(e.T, w)
	require.True(e.T, resp.Success)

	var reg Registered
	DecodeInto(e.T, resp.Data, &reg)
	require.NotEmpty(e.T, reg.ID)
	require.NotEmpty(e.T, reg.Token)
	return reg
}

// RegisterWorker creates a worker account through the public endpoint.
func (e *Env) RegisterWorker(name string, skills ...string) Registered {
	e.T.Helper()

	body := map[string]any{"name": name}
	if len(skills) > 0 {
		body["skills"] = skills
	}
	w := e.Request(http.MethodPost, "/api/workers", body, "")
	require.Equal(e.T, http.StatusCreated, w.Code, w.Body.String())

	resp := DecodeResponse(e.T, w)
	require.True(e.T, resp.Success)

	var reg Registered
	DecodeInto(e.T, resp.Data, &reg)
	require.NotEmpty(e.T, reg.ID)
	require.NotEmpty(e.T, reg.Token)
	return reg
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Request executes an HTTP request against the test router, applying JSON
// encoding and the Authorization header automatically.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var payload *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(e.T, err)
		payload = bytes.NewReader(encoded)
	} else {
		payload = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}
