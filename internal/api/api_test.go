package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/retailsense/backend-go/internal/adapter"
	"github.com/andresuchdata/retailsense/backend-go/internal/api/middleware"
	"github.com/andresuchdata/retailsense/backend-go/internal/apiclient"
	"github.com/andresuchdata/retailsense/backend-go/internal/domain"
	"github.com/andresuchdata/retailsense/backend-go/internal/metrics"
	"github.com/andresuchdata/retailsense/backend-go/internal/pipeline"
	"github.com/andresuchdata/retailsense/backend-go/internal/service"
	"github.com/andresuchdata/retailsense/backend-go/internal/stubbackend"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router  *gin.Engine
	svc     *service.DashboardService
	backend *stubbackend.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	backend := stubbackend.Start()
	t.Cleanup(backend.Close)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	client := apiclient.NewClient(backend.BaseURL(), 2*time.Second, nil)
	agg := pipeline.NewAggregator(adapter.New(client), pipeline.DefaultOptions(), m)
	svc := service.NewDashboardService(client, agg, nil, m)

	return &testEnv{
		router:  NewRouter(&Services{DashboardService: svc, Gatherer: reg}, []string{"http://dashboard.local"}),
		svc:     svc,
		backend: backend,
	}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRouter_Health(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_ViewBeforeFirstRefresh(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/v1/views/dashboard", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "idle", body["state"])
	assert.Nil(t, body["model"])
}

func TestRouter_ViewAfterRefresh(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.RefreshAndWait(context.Background(), domain.ViewDashboard)
	require.NoError(t, err)

	rec := env.do(http.MethodGet, "/api/v1/views/dashboard", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "ready", body["state"])
	assert.Equal(t, false, body["stale"])

	model, ok := body["model"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, model["aiInsights"], 3)
	assert.Len(t, model["topProducts"], 3)
	assert.NotEmpty(t, model["cycleId"])
	stats := model["stats"].(map[string]any)
	assert.EqualValues(t, 3, stats["totalProducts"])
}

func TestRouter_UnknownView(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/v1/views/inventory", "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPost, "/api/v1/views/inventory/refresh", "").Code)
}

func TestRouter_RefreshAcceptedThenConflict(t *testing.T) {
	env := newTestEnv(t)
	gate := make(chan struct{})
	t.Cleanup(func() { close(gate) })
	_, err := env.svc.RefreshAndWait(context.Background(), domain.ViewSales)
	require.NoError(t, err)
	env.backend.Set(stubbackend.PathSales, stubbackend.Route{Body: `[]`, Gate: gate})

	first := env.do(http.MethodPost, "/api/v1/views/sales/refresh", "")
	second := env.do(http.MethodPost, "/api/v1/views/sales/refresh", "")

	assert.Equal(t, http.StatusAccepted, first.Code)
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Equal(t, "refresh already in progress", decode(t, second)["message"])
}

func TestRouter_RefreshBeforeStartIsConflict(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/views/analytics/refresh", "")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "view has not started", decode(t, rec)["message"])
	assert.Equal(t, 0, env.backend.Hits(stubbackend.PathSalesTrend))
}

func TestRouter_ListViews(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/v1/views", "")

	require.Equal(t, http.StatusOK, rec.Code)
	views := decode(t, rec)["views"].([]any)
	require.Len(t, views, 4)
	assert.Equal(t, "dashboard", views[0].(map[string]any)["view"])
}

func TestRouter_Metrics(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.RefreshAndWait(context.Background(), domain.ViewProducts)
	require.NoError(t, err)

	rec := env.do(http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `retailsense_dashboard_refresh_total{outcome="ready",view="products"} 1`)
}

func TestRouter_SessionLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/session/login", `{"email":"owner@retailsense.test"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/session/login", `{"email":"owner@retailsense.test","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "owner@retailsense.test", body["user"].(map[string]any)["email"])
	assert.Equal(t, true, body["session"].(map[string]any)["authenticated"])

	rec = env.do(http.MethodGet, "/api/v1/session", "")
	assert.Equal(t, true, decode(t, rec)["authenticated"])

	rec = env.do(http.MethodPost, "/api/v1/session/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["authenticated"])
}

func TestRouter_CORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/views/dashboard", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()

	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://dashboard.local", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovery_ReturnsJSON500(t *testing.T) {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Recovery())
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	testCases := []struct {
		name     string
		input    []string
		want     []string
		allowAll bool
	}{
		{name: "comma separated", input: []string{"http://a.test, http://b.test"}, want: []string{"http://a.test", "http://b.test"}},
		{name: "wildcard", input: []string{"*"}, allowAll: true},
		{name: "blanks skipped", input: []string{" ", "http://a.test,"}, want: []string{"http://a.test"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, allowAll := normalizeAllowedOrigins(tc.input)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.allowAll, allowAll)
		})
	}
}
