package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/ghost-shift-audit/dto"
	"github.com/Aashish23092/ghost-shift-audit/middleware"
	"github.com/Aashish23092/ghost-shift-audit/service"
	"github.com/Aashish23092/ghost-shift-audit/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticEngine struct{ text string }

func (e staticEngine) Name() string { return "static" }

func (e staticEngine) ExtractText(_ context.Context, _ []byte) (string, error) {
	return e.text, nil
}

type testEnv struct {
	router  *gin.Engine
	roster  *store.RosterStore
	history *store.HistoryStore
}

func setupRouter(t *testing.T) *testEnv {
	t.Helper()

	db, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := zerolog.Nop()
	roster := store.NewRosterStore([]dto.RosterEntry{
		{ID: "TRB-101", Name: "John Doe", Role: "Packer", ScheduledStart: "08:00", ScheduledEnd: "16:00", GPSCheckIn: "07:55", GPSCheckOut: "16:05"},
		{ID: "TRB-GHOST", Name: "Marcus Rivera", Role: "Packer", ScheduledStart: "08:00", ScheduledEnd: "16:00", GPSCheckIn: "07:59", GPSCheckOut: "16:02"},
	})
	history := store.NewHistoryStore(db, 10)
	analytics := store.NewAnalyticsStore(db)
	limiter := middleware.NewMemoryLimiter(2, time.Hour)

	auditService := service.NewAuditService(service.NewReconciler(service.DefaultRuleConfig()), service.AuditDeps{
		Primary: staticEngine{text: "1. John Doe - In: 07:58 - Out: 16:02 - Sup: SUP-AK [signed]\n"},
		Roster:  roster,
		History: history,
		Tracker: analytics,
	}, &logger)

	r := NewRouter(RouterConfig{
		Audit:     NewAuditHandler(auditService, 1<<20),
		Roster:    NewRosterHandler(roster),
		History:   NewHistoryHandler(history),
		Analytics: NewAnalyticsHandler(analytics, "s3cret"),
		Health:    NewHealthHandler(limiter, false),
		Limiter:   limiter,
		Logger:    &logger,
	})

	return &testEnv{router: r, roster: roster, history: history}
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) upload(filename string, content []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", filename)
	_, _ = part.Write(content)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/audit/scan", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestReconcileEndpoint(t *testing.T) {
	env := setupRouter(t)
	gps := "07:55"

	w := env.do(http.MethodPost, "/api/v1/audit/reconcile", dto.ReconcileRequest{
		Shifts: []dto.DigitalShift{{ShiftID: "SH-1", WorkerID: "TRB-101", WorkerName: "John Doe", ScheduledStart: "08:00", ScheduledEnd: "16:00", GPSCheckIn: &gps, Status: dto.ShiftCompleted}},
		Logs:   []dto.PaperLogEntry{{LineNumber: 1, RawText: "Jon Doe 07:58", ExtractedName: "Jon Doe", ExtractedTimeIn: "07:58"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[dto.AuditResponse](t, w)
	require.Len(t, resp.Reports, 1)
	assert.Equal(t, dto.DiscrepancyClean, resp.Reports[0].IssueType)
	assert.InDelta(t, 0.93, resp.Reports[0].Confidence, 1e-9)
}

func TestReconcileEndpointErrors(t *testing.T) {
	env := setupRouter(t)

	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{"malformed body", "not an object", http.StatusBadRequest},
		{"duplicate lines", dto.ReconcileRequest{Logs: []dto.PaperLogEntry{{LineNumber: 1}, {LineNumber: 1}}}, http.StatusBadRequest},
		{"unknown audit", dto.ReconcileRequest{AuditID: "nope"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/api/v1/audit/reconcile", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantStatus, decode[dto.ErrorResponse](t, w).Code)
		})
	}
}

func TestScanEndpoint(t *testing.T) {
	env := setupRouter(t)

	w := env.upload("sheet.png", []byte("png-bytes"))
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[dto.AuditResponse](t, w)
	require.Len(t, resp.Reports, 2)
	assert.Equal(t, dto.DiscrepancyClean, resp.Reports[0].IssueType)
	assert.Equal(t, dto.DiscrepancyGhostShift, resp.Reports[1].IssueType)

	h := env.do(http.MethodGet, "/api/v1/history/"+resp.AuditID, nil)
	require.Equal(t, http.StatusOK, h.Code)
	rec := decode[dto.HistoryRecord](t, h)
	assert.Equal(t, "sheet.png", rec.SourceFile)
	assert.Equal(t, 1, rec.IssueCount)

	list := env.do(http.MethodGet, "/api/v1/history", nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Len(t, decode[map[string][]dto.HistorySummary](t, list)["audits"], 1)
}

func TestScanEndpointValidation(t *testing.T) {
	env := setupRouter(t)

	w := env.upload("sheet.docx", []byte("doc"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/audit/scan", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScanEndpointRateLimited(t *testing.T) {
	env := setupRouter(t)

	assert.Equal(t, http.StatusOK, env.upload("a.png", []byte("a")).Code)
	assert.Equal(t, http.StatusOK, env.upload("b.png", []byte("b")).Code)
	assert.Equal(t, http.StatusTooManyRequests, env.upload("c.png", []byte("c")).Code)

	w := env.do(http.MethodGet, "/api/v1/rate-limit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	status := decode[dto.RateLimitStatus](t, w)
	assert.False(t, status.IsAllowed)
	assert.Equal(t, 0, status.Remaining)
}

func TestDemoEndpoint(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodGet, "/api/v1/audit/demo/theft", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[dto.AuditResponse](t, w)
	assert.Equal(t, 1, resp.Summary.ByType[dto.DiscrepancyTimeTheft])

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/v1/audit/demo/nope", nil).Code)
}

func TestRosterEndpoints(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodPost, "/api/v1/roster", dto.RosterEntry{Name: "Chris Lee"})
	require.Equal(t, http.StatusCreated, w.Code)
	added := decode[dto.RosterEntry](t, w)
	assert.Equal(t, "TRB-202", added.ID)
	assert.Equal(t, "Temp", added.Role)

	assert.Equal(t, http.StatusConflict, env.do(http.MethodPost, "/api/v1/roster", dto.RosterEntry{ID: "TRB-101", Name: "Dup"}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/api/v1/roster", dto.RosterEntry{Name: " "}).Code)

	role := "Lead"
	w = env.do(http.MethodPut, "/api/v1/roster/TRB-202", dto.RosterUpdate{Role: &role})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Lead", decode[dto.RosterEntry](t, w).Role)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPut, "/api/v1/roster/TRB-999", dto.RosterUpdate{Role: &role}).Code)

	assert.Equal(t, http.StatusOK, env.do(http.MethodDelete, "/api/v1/roster/TRB-202", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/v1/roster/TRB-202", nil).Code)

	list := decode[map[string][]dto.RosterEntry](t, env.do(http.MethodGet, "/api/v1/roster", nil))
	assert.Len(t, list["workers"], 2)
}

func TestAnalyticsEndpoints(t *testing.T) {
	env := setupRouter(t)

	assert.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/v1/track", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/v1/audit/demo/clean", nil).Code)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/v1/analytics/wrong", nil).Code)

	w := env.do(http.MethodGet, "/api/v1/analytics/s3cret", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[dto.AnalyticsSummary](t, w)
	assert.Equal(t, 1, summary.TotalVisits)
	assert.Equal(t, 1, summary.AuditsRun)
}

func TestHealthEndpoint(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]any](t, w)
	assert.Equal(t, "operational", body["status"])
	assert.Equal(t, false, body["gemini_enabled"])
	assert.NotNil(t, body["rate_limit"])
}
