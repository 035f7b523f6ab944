package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Hosseinjeff/Wholesale-project/infrastructure/jwt"
	"github.com/Hosseinjeff/Wholesale-project/internal/api"
	"github.com/Hosseinjeff/Wholesale-project/internal/database"
	"github.com/Hosseinjeff/Wholesale-project/internal/domain"
	"github.com/Hosseinjeff/Wholesale-project/internal/ingest"
	"github.com/Hosseinjeff/Wholesale-project/internal/lock"
	"github.com/Hosseinjeff/Wholesale-project/internal/pipeline"
	"github.com/Hosseinjeff/Wholesale-project/internal/profile"
	"github.com/Hosseinjeff/Wholesale-project/internal/quality"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type stubIngest struct {
	outcome  ingest.Outcome
	err      error
	paused   bool
	replay   ingest.ReplayOptions
	payloads []ingest.Payload
}

func (s *stubIngest) Ingest(_ context.Context, p ingest.Payload) (ingest.Outcome, error) {
	s.payloads = append(s.payloads, p)
	if err := p.Validate(); err != nil {
		return ingest.Outcome{Status: ingest.StatusInvalid}, err
	}
	return s.outcome, s.err
}

func (s *stubIngest) Status(context.Context) (ingest.StatusReport, error) {
	return ingest.StatusReport{Paused: s.paused}, nil
}

func (s *stubIngest) Pause(context.Context) error {
	s.paused = true
	return nil
}

func (s *stubIngest) Resume(context.Context) error {
	s.paused = false
	return nil
}

func (s *stubIngest) Replay(_ context.Context, opts ingest.ReplayOptions) (ingest.ReplayReport, error) {
	s.replay = opts
	if s.err != nil {
		return ingest.ReplayReport{}, s.err
	}
	return ingest.ReplayReport{Total: 3, Unique: 2, Processed: 2}, nil
}

type stubStore struct {
	logLimit     int
	productLimit int
}

func (s *stubStore) GetMessage(_ context.Context, id string) (*domain.RawMessage, error) {
	if id != "42" {
		return nil, database.ErrNotFound
	}
	return &domain.RawMessage{ID: "42", Channel: "Shop", Text: "Cola 50,000"}, nil
}

func (s *stubStore) ListMessages(context.Context, database.MessageFilter) ([]domain.RawMessage, error) {
	return []domain.RawMessage{{ID: "42", Channel: "Shop", Text: "Cola 50,000"}}, nil
}

func (s *stubStore) ListProducts(_ context.Context, limit int) ([]domain.ProductRecord, error) {
	s.productLimit = limit
	return []domain.ProductRecord{{ID: "cola_1", Name: "Cola", SalePrice: 50000}}, nil
}

func (s *stubStore) AllProducts(context.Context) ([]domain.ProductRecord, error) {
	return []domain.ProductRecord{{ID: "cola_1", Name: "Cola", SalePrice: 50000, MessageID: "42"}}, nil
}

func (s *stubStore) RecentLogs(_ context.Context, limit int) ([]domain.LogEvent, error) {
	s.logLimit = limit
	return []domain.LogEvent{{ID: 1, Function: domain.FnNoProducts, Level: domain.LevelWarn}}, nil
}

type stubExtractor struct {
	got domain.RawMessage
}

func (e *stubExtractor) Extract(_ context.Context, msg domain.RawMessage) (pipeline.Result, error) {
	e.got = msg
	return pipeline.Result{
		Classification: domain.Classification{Type: domain.ProductListing},
		Profile:        "generic",
		Records:        []domain.ProductRecord{{Name: "Cola", SalePrice: 50000}},
	}, nil
}

type fixture struct {
	router    *gin.Engine
	ingest    *stubIngest
	store     *stubStore
	extractor *stubExtractor
}

func newFixture(t *testing.T, opts api.RouteOptions) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		ingest:    &stubIngest{outcome: ingest.Outcome{Status: ingest.StatusSuccess, MessageID: "1", Channel: "shop_ir", ProductsFound: 2, Inserted: 2}},
		store:     &stubStore{},
		extractor: &stubExtractor{},
	}
	monitor := quality.NewMonitor(quality.WindowConfig{}, nil)
	h := api.NewHandler(
		f.ingest,
		f.extractor,
		f.store,
		profile.NewStore(profile.Default(), nil),
		monitor,
		api.Config{Version: "1.2.3", MaxContentLength: 100},
		nil,
	)

	f.router = gin.New()
	api.SetupRoutes(f.router, h, opts)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestWebhook(t *testing.T) {
	t.Helper()

	testCases := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "accepted",
			body:       `{"id":"1","content":"Cola 50,000","channel_username":"shop_ir","timestamp":1740823200}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "malformed json",
			body:       `{"id":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "validation failure",
			body:       `{"content":"x"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "validation failed: missing message ID, missing channel information",
		},
		{
			name:       "content too long",
			body:       `{"id":"1","channel":"Shop","content":"` + strings.Repeat("ا", 101) + `"}`,
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:       "lock busy",
			body:       `{"id":"1","content":"x","channel":"Shop"}`,
			err:        lock.ErrBusy,
			wantStatus: http.StatusServiceUnavailable,
			wantError:  "server busy",
		},
		{
			name:       "paused",
			body:       `{"id":"1","content":"x","channel":"Shop"}`,
			err:        ingest.ErrPaused,
			wantStatus: http.StatusServiceUnavailable,
			wantError:  "ingestion paused",
		},
		{
			name:       "store failure",
			body:       `{"id":"1","content":"x","channel":"Shop"}`,
			err:        errors.New("ingest message 1: disk full"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, api.RouteOptions{})
			f.ingest.err = tc.err

			w := f.do(t, http.MethodPost, "/api/v1/webhook", tc.body)
			assert.Equal(t, tc.wantStatus, w.Code, w.Body.String())

			if tc.wantStatus == http.StatusOK {
				resp := decode[api.WebhookResponse](t, w)
				assert.Equal(t, "success", resp.Status)
				assert.Equal(t, 2, resp.ProductsFound)
				assert.Equal(t, "shop_ir", resp.Channel)
				assert.Equal(t, "1", resp.ID)
				require.Len(t, f.ingest.payloads, 1)
				assert.Equal(t, time.Unix(1740823200, 0).UTC(), f.ingest.payloads[0].Timestamp.Time)
				return
			}

			resp := decode[api.ErrorResponse](t, w)
			assert.Equal(t, "error", resp.Status)
			if tc.wantError != "" {
				assert.Equal(t, tc.wantError, resp.Error)
			}
		})
	}
}

func TestWebhook_RateLimited(t *testing.T) {
	t.Helper()

	f := newFixture(t, api.RouteOptions{WebhookRate: 0.001, WebhookBurst: 1})
	body := `{"id":"1","content":"x","channel":"Shop"}`

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/v1/webhook", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, f.do(t, http.MethodPost, "/api/v1/webhook", body).Code)
}

func TestOperationalRoutesRequireToken(t *testing.T) {
	t.Helper()

	f := newFixture(t, api.RouteOptions{JWTSecret: testSecret})

	w := f.do(t, http.MethodPost, "/api/v1/ingestion/pause", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, f.ingest.paused)

	token, err := jwt.Issue(testSecret, "ops", time.Hour)
	require.NoError(t, err)

	w = f.do(t, http.MethodPost, "/api/v1/ingestion/pause", "", "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, f.ingest.paused)

	w = f.do(t, http.MethodGet, "/api/v1/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[ingest.StatusReport](t, w).Paused)

	w = f.do(t, http.MethodPost, "/api/v1/ingestion/resume", "", "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, f.ingest.paused)
}

func TestReplay(t *testing.T) {
	t.Helper()

	f := newFixture(t, api.RouteOptions{})

	w := f.do(t, http.MethodPost, "/api/v1/replay", `{"channel":"shop_ir","limit":5,"resume":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[ingest.ReplayReport](t, w)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, ingest.ReplayOptions{Channel: "shop_ir", Limit: 5, Resume: true}, f.ingest.replay)

	f.ingest.err = ingest.ErrPaused
	w = f.do(t, http.MethodPost, "/api/v1/replay", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestLogsClampsLimit(t *testing.T) {
	t.Helper()

	f := newFixture(t, api.RouteOptions{})

	w := f.do(t, http.MethodGet, "/api/v1/logs?limit=5000", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, database.MaxLogLimit, f.store.logLimit)
	resp := decode[api.LogsResponse](t, w)
	assert.Equal(t, 1, resp.Count)

	w = f.do(t, http.MethodGet, "/api/v1/logs", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, database.DefaultLogLimit, f.store.logLimit)

	w = f.do(t, http.MethodGet, "/api/v1/logs?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductsAndMessages(t *testing.T) {
	t.Helper()

	f := newFixture(t, api.RouteOptions{})

	w := f.do(t, http.MethodGet, "/api/v1/products", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, database.DefaultProductLimit, f.store.productLimit)
	assert.Equal(t, 1, decode[api.ProductsResponse](t, w).Count)

	w = f.do(t, http.MethodGet, "/api/v1/messages/42", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Cola 50,000", decode[domain.RawMessage](t, w).Text)

	w = f.do(t, http.MethodGet, "/api/v1/messages/7", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExtractDoesNotIngest(t *testing.T) {
	t.Helper()

	f := newFixture(t, api.RouteOptions{})

	w := f.do(t, http.MethodPost, "/api/v1/extract", `{"content":"Cola 50,000","channel_username":"shop_ir"}`)
	require.Equal(t, http.StatusOK, w.Code)

	res := decode[pipeline.Result](t, w)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "shop_ir", f.extractor.got.ChannelUsername)
	assert.True(t, strings.HasPrefix(f.extractor.got.ID, "test_"))
	assert.Empty(t, f.ingest.payloads)

	w = f.do(t, http.MethodPost, "/api/v1/extract", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfilesAndWindow(t *testing.T) {
	t.Helper()

	f := newFixture(t, api.RouteOptions{})

	w := f.do(t, http.MethodGet, "/api/v1/profiles", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Profiles []api.ProfileResponse `json:"profiles"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Profiles)
	assert.True(t, body.Profiles[len(body.Profiles)-1].Fallback)
	for _, p := range body.Profiles[:len(body.Profiles)-1] {
		assert.False(t, p.Fallback, p.Name)
	}

	w = f.do(t, http.MethodGet, "/api/v1/quality/window", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[quality.Snapshot](t, w).Samples)
}

func TestExportWorkbook(t *testing.T) {
	t.Helper()

	f := newFixture(t, api.RouteOptions{})

	w := f.do(t, http.MethodGet, "/api/v1/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

func TestVersion(t *testing.T) {
	t.Helper()

	f := newFixture(t, api.RouteOptions{})

	w := f.do(t, http.MethodGet, "/version", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"version":"1.2.3"}`, w.Body.String())
}

func TestEventsRouteIsOptional(t *testing.T) {
	t.Helper()

	f := newFixture(t, api.RouteOptions{})
	w := f.do(t, http.MethodGet, "/api/v1/events", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	f = newFixture(t, api.RouteOptions{Events: func(c *gin.Context) { c.String(http.StatusOK, "stream") }})
	w = f.do(t, http.MethodGet, "/api/v1/events", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "stream", w.Body.String())
}
