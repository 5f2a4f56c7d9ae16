package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/openioc/vmecore/internal/api/websocket"
	"github.com/openioc/vmecore/internal/auth"
	"github.com/openioc/vmecore/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthedServer(t *testing.T, manager *stubManager) *Server {
	t.Helper()

	hasher := auth.NewPasswordHasher()
	operatorHash, err := hasher.HashPassword("push-the-button")
	require.NoError(t, err)
	observerHash, err := hasher.HashPassword("look-dont-touch")
	require.NoError(t, err)

	logger := zap.NewNop()
	authService := auth.NewService(config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
		Operators: []config.OperatorConfig{
			{Name: "op", Role: string(auth.RoleOperator), PasswordHash: operatorHash},
			{Name: "viewer", Role: string(auth.RoleObserver), PasswordHash: observerHash},
		},
	}, logger)

	return NewServer(&config.Config{}, manager, logger, websocket.NewHub(logger), authService, nil)
}

func loginToken(t *testing.T, s *Server, name, password string) string {
	t.Helper()

	body := `{"name": "` + name + `", "password": "` + password + `"}`
	w := doRequest(t, s, http.MethodPost, "/api/v1/auth/login", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func TestLogin(t *testing.T) {
	s := newAuthedServer(t, &stubManager{statuses: stubStatuses()})

	t.Run("valid credentials", func(t *testing.T) {
		token := loginToken(t, s, "op", "push-the-button")
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := doRequest(t, s, http.MethodPost, "/api/v1/auth/login", `{"name": "op", "password": "nope"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := doRequest(t, s, http.MethodPost, "/api/v1/auth/login", `{"name": "op"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestWriteRequiresOperator(t *testing.T) {
	manager := &stubManager{statuses: stubStatuses()}
	s := newAuthedServer(t, manager)

	put := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/records/bl:do:shutter/value",
			strings.NewReader(`{"value": true}`))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		return w
	}

	t.Run("no token", func(t *testing.T) {
		w := put("")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, manager.wroteBinary)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := put("not.a.token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, manager.wroteBinary)
	})

	t.Run("observer role is rejected", func(t *testing.T) {
		w := put(loginToken(t, s, "viewer", "look-dont-touch"))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, manager.wroteBinary)
	})

	t.Run("operator role writes", func(t *testing.T) {
		w := put(loginToken(t, s, "op", "push-the-button"))
		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, manager.wroteBinary, 1)
		assert.True(t, manager.wroteBinary[0])
	})

	t.Run("reads stay open", func(t *testing.T) {
		w := doRequest(t, s, http.MethodGet, "/api/v1/records", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
