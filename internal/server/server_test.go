package server

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/farellandr/theatre/config"
	"github.com/farellandr/theatre/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type publishedEvent struct {
	queue   string
	payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, queue string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{queue: queue, payload: payload})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type testServer struct {
	router    *gin.Engine
	db        *gorm.DB
	cfg       *config.Config
	publisher *recordingPublisher
}

func newTestServer(t *testing.T) *testServer {
	db := testutil.NewTestDB(t)
	cfg := testutil.NewTestConfig(t)
	publisher := &recordingPublisher{}

	router := NewRouter(Dependencies{
		Config:    cfg,
		DB:        db,
		Publisher: publisher,
	})
	return &testServer{router: router, db: db, cfg: cfg, publisher: publisher}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	w := testutil.Request(t, ts.router, http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	testutil.Request(t, ts.router, http.MethodGet, "/healthz", "", nil)
	w := testutil.Request(t, ts.router, http.MethodGet, "/metrics", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "theatre_http_requests_total")
	assert.Contains(t, w.Body.String(), `route="/healthz"`)
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	ts := newTestServer(t)

	w := testutil.Request(t, ts.router, http.MethodGet, "/api/theatre/nothing-here", "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"Not Found"`)
}

func TestRequestIDIsEchoed(t *testing.T) {
	ts := newTestServer(t)

	w := testutil.Request(t, ts.router, http.MethodGet, "/healthz", "", nil)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
