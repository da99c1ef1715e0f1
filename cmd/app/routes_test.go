package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"tripwise/internal/api/controllers"
	"tripwise/internal/infra"
	"tripwise/pkg/middleware"
	"tripwise/pkg/utils"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return ProvideRouter(routerParams{
		Config:    &infra.Config{Environment: "test"},
		Log:       zap.NewNop(),
		Issuer:    utils.NewTokenIssuer("test-secret", time.Hour),
		Limiter:   middleware.NewRateLimiter(1, 1),
		Health:    controllers.NewHealthController(),
		Account:   controllers.NewAccountController(nil),
		Itinerary: controllers.NewItineraryController(nil, nil),
		Expense:   controllers.NewExpenseController(nil, nil),
		Voice:     controllers.NewVoiceController(nil),
		Map:       controllers.NewMapController(nil),
	})
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	r := testRouter()

	rec := serve(r, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.TraceHeader))

	rec = serve(r, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestRouter_BearerRoutesRequireToken(t *testing.T) {
	r := testRouter()

	for _, route := range [][2]string{
		{http.MethodGet, "/api/itinerary/list"},
		{http.MethodPost, "/api/itinerary/save"},
		{http.MethodPut, "/api/itinerary/abc"},
		{http.MethodGet, "/api/expenses"},
		{http.MethodGet, "/api/expenses/stats"},
		{http.MethodPost, "/api/expenses/ai-analysis"},
		{http.MethodGet, "/api/auth/me"},
	} {
		rec := serve(r, route[0], route[1])
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route[0], route[1])
	}
}

func TestRouter_TranscribeIsRateLimited(t *testing.T) {
	r := testRouter()

	rec := serve(r, http.MethodPost, "/api/voice/transcribe")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(r, http.MethodPost, "/api/voice/transcribe")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}
