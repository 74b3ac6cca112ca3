package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mleng/courtmate/internal/auth"
	"github.com/mleng/courtmate/internal/identity"
	"github.com/mleng/courtmate/internal/models"
	"github.com/mleng/courtmate/internal/service"
	"github.com/mleng/courtmate/internal/storage/sqlite"
)

func newTestRouter(t *testing.T) (*gin.Engine, *sqlite.Store, *auth.JWTManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := sqlite.New(filepath.Join(t.TempDir(), "courtmate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	directory := identity.NewStoreDirectory(store)
	clock := service.SystemClock()
	activities := service.NewActivityService(store, directory, clock)
	expenses := service.NewExpenseService(store, store, directory, clock)
	passwords := auth.NewPasswordAuthenticator(store)
	tokens := auth.NewJWTManager("test-secret", time.Hour)

	server := NewServer(activities, expenses, store, passwords, tokens)
	return server.Router(), store, tokens
}

func seedUser(t *testing.T, store *sqlite.Store, nickname string) *models.User {
	t.Helper()

	now := time.Now()
	user := &models.User{
		Nickname:     nickname,
		Phone:        "555-" + nickname,
		PasswordHash: "irrelevant",
		Active:       true,
		TotalSettled: decimal.RequireFromString("12.50"),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUserRoutes(t *testing.T) {
	router, store, tokens := newTestRouter(t)
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")

	token, err := tokens.Generate(alice)
	require.NoError(t, err)

	t.Run("lookup by id", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/v1/users/"+bob.ID, token)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data struct {
				ID           string `json:"id"`
				Nickname     string `json:"nickname"`
				TotalSettled string `json:"total_settled"`
				Phone        string `json:"phone"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, bob.ID, body.Data.ID)
		assert.Equal(t, "bob", body.Data.Nickname)
		assert.Equal(t, "12.50", body.Data.TotalSettled)
		assert.Empty(t, body.Data.Phone, "phone is not exposed to other users")
	})

	t.Run("me includes phone", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/v1/me", token)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data struct {
				ID    string `json:"id"`
				Phone string `json:"phone"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, alice.ID, body.Data.ID)
		assert.Equal(t, alice.Phone, body.Data.Phone)
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/v1/users/missing", token)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("requires auth", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/v1/users/"+bob.ID, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
