package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reels-miniapp-backend/internal/features/user/models"
	filestore "reels-miniapp-backend/internal/features/user/repository/file"
	"reels-miniapp-backend/internal/features/user/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := filestore.New(t.TempDir(), "users.json")
	svc := service.NewUserService(store, 1000)

	router := gin.New()
	NewUserHandler(svc, store.Path()).RegisterRoutes(router)
	return router
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "reels-miniapp-api", body["service"])
	assert.NotEmpty(t, body["file"])
}

func TestUpsertRequiresIdentifier(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/users", map[string]any{"region": "USA"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "user_id or telegram_id required", body["error"])
}

func TestOnboardingScenario(t *testing.T) {
	router := newTestRouter(t)

	// bootstrap with a bare telegram identity
	w := doJSON(router, http.MethodPost, "/api/users", map[string]any{"telegram_id": 42})
	require.Equal(t, http.StatusOK, w.Code)

	var created models.UserProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.UserID)
	assert.Zero(t, created.PointsTotal)

	// complete the wizard
	w = doJSON(router, http.MethodPost, "/api/users", map[string]any{
		"telegram_id":     42,
		"region":          "USA",
		"language":        "en",
		"utc_offset":      "UTC-05:00",
		"reels_link":      "https://www.instagram.com/reel/XYZ",
		"nine_digit_code": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/users?telegram_id=42", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var fetched models.UserProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, created.UserID, fetched.UserID)
	assert.Equal(t, "USA", fetched.Region)
	assert.Equal(t, "en", fetched.Language)
	require.NotNil(t, fetched.UTCOffset)
	assert.Equal(t, "UTC-05:00", *fetched.UTCOffset)
	require.NotNil(t, fetched.ReelsLink)
	assert.Equal(t, "https://www.instagram.com/reel/XYZ", *fetched.ReelsLink)
	assert.True(t, fetched.NineDigitCode)
	assert.Equal(t, "pending", fetched.ReelsStatus)
}

func TestGetUsersListAndMiss(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())

	w = doJSON(router, http.MethodGet, "/api/users?telegram_id=404", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())
}

func TestUpdateStatusFlow(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodPut, "/api/users/42/status", map[string]any{"reels_status": "approved"})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodPut, "/api/users/42/status", map[string]any{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	doJSON(router, http.MethodPost, "/api/users", map[string]any{"telegram_id": 42})
	w = doJSON(router, http.MethodPut, "/api/users/42/status", map[string]any{"reels_status": "approved"})
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.UserProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "approved", updated.ReelsStatus)
	assert.NotNil(t, updated.ModeratedAt)
}

func TestLegacyEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/save_user_data", map[string]any{"region": "USA"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/save_user_data", map[string]any{"telegram_id": 7, "region": "USA"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true}`, w.Body.String())

	w = doJSON(router, http.MethodGet, "/get_user_data", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodGet, "/get_user_data?telegram_id=7", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var record models.UserProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, "USA", record.Region)

	w = doJSON(router, http.MethodGet, "/debug/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "\n  {", "debug dump is pretty-printed")
}

func TestStatsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	doJSON(router, http.MethodPost, "/api/users", map[string]any{
		"telegram_id": 1,
		"reels_link":  "https://www.instagram.com/reel/A",
	})
	doJSON(router, http.MethodPost, "/api/users", map[string]any{"telegram_id": 2})

	w := doJSON(router, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats models.GlobalStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 1, stats.TotalValidReels)
	assert.Equal(t, 1000, stats.ReelsLimit)
}

func TestUnknownAPIRoute(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/api/nope", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "Not found"}`, w.Body.String())

	w = doJSON(router, http.MethodGet, "/nope", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Body.String())
}

type failingRepo struct{}

func (failingRepo) ReadAll(context.Context) ([]*models.UserProfile, error) {
	return []*models.UserProfile{}, nil
}

func (failingRepo) WriteAll(context.Context, []*models.UserProfile) error {
	return errors.New("disk full")
}

func TestPersistenceFailureReturns500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := service.NewUserService(failingRepo{}, 1000)
	router := gin.New()
	NewUserHandler(svc, "users.json").RegisterRoutes(router)

	w := doJSON(router, http.MethodPost, "/api/users", map[string]any{"telegram_id": 1})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error": "Failed to save user data"}`, w.Body.String())
}
