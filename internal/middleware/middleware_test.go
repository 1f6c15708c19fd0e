package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/farellandr/theatre/internal/helpers"
	"github.com/farellandr/theatre/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newProtectedRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	db := testutil.NewTestDB(t)
	cfg := testutil.NewTestConfig(t)

	r := gin.New()
	r.Use(ConfigMiddleware(cfg), DatabaseMiddleware(db), JWTAuthMiddleware())

	read := r.Group("/catalogue", AdminOrAuthenticatedReadOnly())
	read.GET("", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"user": GetCurrentUser(c).Email}) })
	read.POST("", func(c *gin.Context) { c.Status(http.StatusCreated) })

	r.POST("/admin", AdminOnly(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	return r, db
}

func TestJWTAuthMiddleware(t *testing.T) {
	r, _ := newProtectedRouter(t)

	w := testutil.Request(t, r, http.MethodGet, "/catalogue", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/catalogue", nil)
	req.Header.Set("Authorization", "Token abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutil.Request(t, r, http.MethodGet, "/catalogue", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	ghost, err := helpers.GenerateToken(testutil.JWTSecret, 404, helpers.AccessToken, time.Minute)
	require.NoError(t, err)
	w = testutil.Request(t, r, http.MethodGet, "/catalogue", ghost, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPermissions(t *testing.T) {
	r, db := newProtectedRouter(t)
	regular := testutil.AccessToken(t, testutil.CreateUser(t, db, "user@example.com", false))
	staff := testutil.AccessToken(t, testutil.CreateUser(t, db, "staff@example.com", true))

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"regular reads", http.MethodGet, "/catalogue", regular, http.StatusOK},
		{"regular cannot write", http.MethodPost, "/catalogue", regular, http.StatusForbidden},
		{"staff writes", http.MethodPost, "/catalogue", staff, http.StatusCreated},
		{"regular is not admin", http.MethodPost, "/admin", regular, http.StatusForbidden},
		{"staff is admin", http.MethodPost, "/admin", staff, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.Request(t, r, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	w := testutil.Request(t, r, http.MethodGet, "/catalogue", regular, nil)
	assert.JSONEq(t, `{"user":"user@example.com"}`, w.Body.String())
}

func TestGettersWithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, GetDB(c))
	assert.Nil(t, GetConfig(c))
	assert.Nil(t, GetCurrentUser(c))
	assert.NotNil(t, GetLogger(c))
	assert.NotNil(t, GetPublisher(c))
}

func TestRequestLoggerKeepsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = testutil.Request(t, r, http.MethodGet, "/ping", "", nil)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}
