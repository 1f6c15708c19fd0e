// Package testutil holds fixtures shared by the package tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/farellandr/theatre/config"
	"github.com/farellandr/theatre/internal/helpers"
	"github.com/farellandr/theatre/internal/models"
)

const JWTSecret = "test-secret-with-enough-length"

// NewTestDB creates a private in-memory SQLite database with the full schema.
func NewTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

func NewTestConfig(t *testing.T) *config.Config {
	return &config.Config{
		Env:             "test",
		Port:            "0",
		JWTSecret:       JWTSecret,
		AccessTokenTTL:  5 * time.Minute,
		RefreshTokenTTL: time.Hour,
		MediaRoot:       t.TempDir(),
		MediaURL:        "/media",
		CacheTTL:        time.Minute,
		LogLevel:        "debug",
	}
}

func CreateUser(t *testing.T, db *gorm.DB, email string, staff bool) *models.User {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{Email: email, Password: string(hashed), IsStaff: staff}
	require.NoError(t, db.Create(user).Error)
	return user
}

func AccessToken(t *testing.T, user *models.User) string {
	token, err := helpers.GenerateToken(JWTSecret, user.ID, helpers.AccessToken, 5*time.Minute)
	require.NoError(t, err)
	return token
}

// Request performs a request against handler with an optional bearer token.
// body is JSON encoded unless it is already an io.Reader.
func Request(t *testing.T, handler http.Handler, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	contentType := ""
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
		contentType = "application/json"
	}

	req := httptest.NewRequest(method, target, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

// PNGBytes renders a small valid PNG image.
func PNGBytes(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 20), G: uint8(y * 20), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type Catalogue struct {
	Drama       models.Genre
	Comedy      models.Genre
	Actor       models.Actor
	OtherActor  models.Actor
	Hall        models.TheatreHall
	Hamlet      models.Play
	Cats        models.Play
	Performance models.Performance
}

// SeedCatalogue inserts two plays with genres and actors, a hall and one performance of the first play.
func SeedCatalogue(t *testing.T, db *gorm.DB) Catalogue {
	cat := Catalogue{
		Drama:      models.Genre{Name: "Drama"},
		Comedy:     models.Genre{Name: "Comedy"},
		Actor:      models.Actor{FirstName: "George", LastName: "Clooney"},
		OtherActor: models.Actor{FirstName: "Keanu", LastName: "Reeves"},
		Hall:       models.TheatreHall{Name: "Blue", Rows: 10, SeatsInRow: 12},
	}
	require.NoError(t, db.Create(&cat.Drama).Error)
	require.NoError(t, db.Create(&cat.Comedy).Error)
	require.NoError(t, db.Create(&cat.Actor).Error)
	require.NoError(t, db.Create(&cat.OtherActor).Error)
	require.NoError(t, db.Create(&cat.Hall).Error)

	cat.Hamlet = models.Play{
		Title:       "Hamlet",
		Description: "Prince of Denmark",
		Duration:    180,
		Genres:      []models.Genre{cat.Drama},
		Actors:      []models.Actor{cat.Actor},
	}
	cat.Cats = models.Play{
		Title:       "Cats",
		Description: "Jellicle cats",
		Duration:    120,
		Genres:      []models.Genre{cat.Comedy},
		Actors:      []models.Actor{cat.OtherActor},
	}
	require.NoError(t, db.Create(&cat.Hamlet).Error)
	require.NoError(t, db.Create(&cat.Cats).Error)

	cat.Performance = models.Performance{
		PlayID:        cat.Hamlet.ID,
		TheatreHallID: cat.Hall.ID,
		ShowTime:      time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Omit("Play", "TheatreHall").Create(&cat.Performance).Error)
	return cat
}
