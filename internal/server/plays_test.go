package server

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farellandr/theatre/internal/handlers"
	"github.com/farellandr/theatre/internal/models"
	"github.com/farellandr/theatre/internal/testutil"
)

func uploadRequest(t *testing.T, ts *testServer, playID uint, token, field, filename string, content []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/theatre/plays/%d/upload-image", playID), &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func TestPlaysRequireAuthentication(t *testing.T) {
	ts := newTestServer(t)

	w := testutil.Request(t, ts.router, http.MethodGet, "/api/theatre/plays", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authentication credentials were not provided.")
}

func TestListPlays(t *testing.T) {
	ts := newTestServer(t)
	cat := testutil.SeedCatalogue(t, ts.db)
	token := testutil.AccessToken(t, testutil.CreateUser(t, ts.db, "user@example.com", false))

	w := testutil.Request(t, ts.router, http.MethodGet, "/api/theatre/plays", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var plays []handlers.PlayListResponse
	testutil.DecodeJSON(t, w, &plays)
	require.Len(t, plays, 2)
	assert.Equal(t, cat.Hamlet.ID, plays[0].ID)
	assert.Equal(t, []string{"Drama"}, plays[0].Genres)
	assert.Equal(t, []string{"George Clooney"}, plays[0].Actors)
	assert.Equal(t, 180, plays[0].Duration)
	assert.Nil(t, plays[0].Image)
}

func TestFilterPlays(t *testing.T) {
	ts := newTestServer(t)
	cat := testutil.SeedCatalogue(t, ts.db)
	token := testutil.AccessToken(t, testutil.CreateUser(t, ts.db, "user@example.com", false))

	tests := []struct {
		name     string
		query    string
		expected []uint
	}{
		{"by genre", fmt.Sprintf("genres=%d", cat.Drama.ID), []uint{cat.Hamlet.ID}},
		{"by several genres", fmt.Sprintf("genres=%d,%d", cat.Drama.ID, cat.Comedy.ID), []uint{cat.Hamlet.ID, cat.Cats.ID}},
		{"by actor", fmt.Sprintf("actors=%d", cat.OtherActor.ID), []uint{cat.Cats.ID}},
		{"by title case insensitive", "title=HAM", []uint{cat.Hamlet.ID}},
		{"by title and genre", fmt.Sprintf("title=cat&genres=%d", cat.Drama.ID), []uint{}},
		{"percent is literal", "title=%25", []uint{}},
		{"underscore is literal", "title=_", []uint{}},
		{"backslash is literal", "title=%5C", []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.Request(t, ts.router, http.MethodGet, "/api/theatre/plays?"+tt.query, token, nil)
			require.Equal(t, http.StatusOK, w.Code)

			var plays []handlers.PlayListResponse
			testutil.DecodeJSON(t, w, &plays)

			ids := []uint{}
			for _, p := range plays {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}

	w := testutil.Request(t, ts.router, http.MethodGet, "/api/theatre/plays?genres=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFilterPlaysByTitleWithWildcardCharacters(t *testing.T) {
	ts := newTestServer(t)
	testutil.SeedCatalogue(t, ts.db)
	token := testutil.AccessToken(t, testutil.CreateUser(t, ts.db, "user@example.com", false))

	sale := models.Play{Title: "100% Hamlet", Description: "Uncut", Duration: 240}
	snake := models.Play{Title: "snake_case", Description: "Sketch", Duration: 30}
	require.NoError(t, ts.db.Create(&sale).Error)
	require.NoError(t, ts.db.Create(&snake).Error)

	tests := []struct {
		query    string
		expected []uint
	}{
		{"title=%25", []uint{sale.ID}},
		{"title=0%25+h", []uint{sale.ID}},
		{"title=_", []uint{snake.ID}},
		{"title=e_c", []uint{snake.ID}},
		{"title=ham", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := testutil.Request(t, ts.router, http.MethodGet, "/api/theatre/plays?"+tt.query, token, nil)
			require.Equal(t, http.StatusOK, w.Code)

			var plays []handlers.PlayListResponse
			testutil.DecodeJSON(t, w, &plays)
			if tt.expected == nil {
				assert.Len(t, plays, 2)
				return
			}
			ids := []uint{}
			for _, p := range plays {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestRetrievePlay(t *testing.T) {
	ts := newTestServer(t)
	cat := testutil.SeedCatalogue(t, ts.db)
	token := testutil.AccessToken(t, testutil.CreateUser(t, ts.db, "user@example.com", false))

	w := testutil.Request(t, ts.router, http.MethodGet, fmt.Sprintf("/api/theatre/plays/%d", cat.Hamlet.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var play handlers.PlayDetailResponse
	testutil.DecodeJSON(t, w, &play)
	assert.Equal(t, "Hamlet", play.Title)
	require.Len(t, play.Genres, 1)
	assert.Equal(t, "Drama", play.Genres[0].Name)
	require.Len(t, play.Actors, 1)
	assert.Equal(t, "George Clooney", play.Actors[0].FullName)

	w = testutil.Request(t, ts.router, http.MethodGet, "/api/theatre/plays/999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatePlayForbiddenForRegularUser(t *testing.T) {
	ts := newTestServer(t)
	token := testutil.AccessToken(t, testutil.CreateUser(t, ts.db, "user@example.com", false))

	w := testutil.Request(t, ts.router, http.MethodPost, "/api/theatre/plays", token, map[string]interface{}{
		"title":       "Macbeth",
		"description": "Scottish play",
		"duration":    150,
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreatePlayAsStaff(t *testing.T) {
	ts := newTestServer(t)
	cat := testutil.SeedCatalogue(t, ts.db)
	token := testutil.AccessToken(t, testutil.CreateUser(t, ts.db, "admin@example.com", true))

	w := testutil.Request(t, ts.router, http.MethodPost, "/api/theatre/plays", token, map[string]interface{}{
		"title":       "Macbeth",
		"description": "Scottish play",
		"duration":    150,
		"genres":      []uint{cat.Drama.ID, cat.Comedy.ID},
		"actors":      []uint{cat.Actor.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created handlers.PlayResponse
	testutil.DecodeJSON(t, w, &created)
	assert.Equal(t, "Macbeth", created.Title)
	assert.ElementsMatch(t, []uint{cat.Drama.ID, cat.Comedy.ID}, created.Genres)
	assert.Equal(t, []uint{cat.Actor.ID}, created.Actors)

	var stored models.Play
	require.NoError(t, ts.db.Preload("Genres").Preload("Actors").First(&stored, created.ID).Error)
	assert.Len(t, stored.Genres, 2)
	assert.Len(t, stored.Actors, 1)
}

func TestCreatePlayWithForm(t *testing.T) {
	ts := newTestServer(t)
	cat := testutil.SeedCatalogue(t, ts.db)
	regular := testutil.AccessToken(t, testutil.CreateUser(t, ts.db, "user@example.com", false))
	staff := testutil.AccessToken(t, testutil.CreateUser(t, ts.db, "admin@example.com", true))

	form := url.Values{}
	form.Set("title", "Macbeth")
	form.Set("description", "Scottish play")
	form.Set("duration", "150")
	form.Add("genres", strconv.Itoa(int(cat.Drama.ID)))
	form.Add("genres", strconv.Itoa(int(cat.Comedy.ID)))
	form.Add("actors", strconv.Itoa(int(cat.Actor.ID)))
	form.Add("actors", strconv.Itoa(int(cat.OtherActor.ID)))

	postForm := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/theatre/plays", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		ts.router.ServeHTTP(w, req)
		return w
	}

	w := postForm(regular)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = postForm(staff)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created handlers.PlayResponse
	testutil.DecodeJSON(t, w, &created)
	assert.Equal(t, "Macbeth", created.Title)
	assert.Equal(t, 150, created.Duration)
	assert.ElementsMatch(t, []uint{cat.Drama.ID, cat.Comedy.ID}, created.Genres)
	assert.ElementsMatch(t, []uint{cat.Actor.ID, cat.OtherActor.ID}, created.Actors)

	var stored models.Play
	require.NoError(t, ts.db.Preload("Genres").Preload("Actors").First(&stored, created.ID).Error)
	assert.Len(t, stored.Genres, 2)
	assert.Len(t, stored.Actors, 2)
}

func TestCreatePlayRejectsBlankText(t *testing.T) {
	ts := newTestServer(t)
	token := testutil.AccessToken(t, testutil.CreateUser(t, ts.db, "admin@example.com", true))

	w := testutil.Request(t, ts.router, http.MethodPost, "/api/theatre/plays", token, map[string]interface{}{
		"title":       "   ",
		"description": "Scottish play",
		"duration":    150,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "title (required)")

	w = testutil.Request(t, ts.router, http.MethodPost, "/api/theatre/plays", token, map[string]interface{}{
		"title":       "Macbeth",
		"description": "\t\n",
		"duration":    150,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "description (required)")

	var count int64
	require.NoError(t, ts.db.Model(&models.Play{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreatePlayValidation(t *testing.T) {
	ts := newTestServer(t)
	testutil.SeedCatalogue(t, ts.db)
	token := testutil.AccessToken(t, testutil.CreateUser(t, ts.db, "admin@example.com", true))

	w := testutil.Request(t, ts.router, http.MethodPost, "/api/theatre/plays", token, map[string]interface{}{
		"title":       "Macbeth",
		"description": "Scottish play",
		"duration":    150,
		"genres":      []uint{999},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.Request(t, ts.router, http.MethodPost, "/api/theatre/plays", token, map[string]interface{}{
		"description": "No title",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "title (required)")
}

func TestPlayUpdateAndDeleteNotAllowed(t *testing.T) {
	ts := newTestServer(t)
	cat := testutil.SeedCatalogue(t, ts.db)
	staff := testutil.AccessToken(t, testutil.CreateUser(t, ts.db, "admin@example.com", true))
	url := fmt.Sprintf("/api/theatre/plays/%d", cat.Hamlet.ID)

	for _, method := range []string{http.MethodPut, http.MethodPatch, http.MethodDelete} {
		w := testutil.Request(t, ts.router, method, url, staff, map[string]string{"title": "Changed"})
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)

		w = testutil.Request(t, ts.router, method, url, "", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
	}

	var play models.Play
	require.NoError(t, ts.db.First(&play, cat.Hamlet.ID).Error)
	assert.Equal(t, "Hamlet", play.Title)
}

func TestUploadImageToPlay(t *testing.T) {
	ts := newTestServer(t)
	cat := testutil.SeedCatalogue(t, ts.db)
	token := testutil.AccessToken(t, testutil.CreateUser(t, ts.db, "admin@example.com", true))

	w := uploadRequest(t, ts, cat.Hamlet.ID, token, "image", "poster.png", testutil.PNGBytes(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp handlers.PlayImageResponse
	testutil.DecodeJSON(t, w, &resp)
	require.NotNil(t, resp.Image)
	assert.True(t, strings.HasPrefix(*resp.Image, "/media/uploads/plays/hamlet-"))
	assert.True(t, strings.HasSuffix(*resp.Image, ".png"))

	var play models.Play
	require.NoError(t, ts.db.First(&play, cat.Hamlet.ID).Error)
	require.NotNil(t, play.Image)
	firstPath := filepath.Join(ts.cfg.MediaRoot, filepath.FromSlash(*play.Image))
	_, err := os.Stat(firstPath)
	require.NoError(t, err)

	w = testutil.Request(t, ts.router, http.MethodGet, *resp.Image, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = uploadRequest(t, ts, cat.Hamlet.ID, token, "image", "poster2.png", testutil.PNGBytes(t))
	require.Equal(t, http.StatusOK, w.Code)
	_, err = os.Stat(firstPath)
	assert.True(t, os.IsNotExist(err), "previous image should be removed")
}

func TestUploadImageRejectsInvalidFiles(t *testing.T) {
	ts := newTestServer(t)
	cat := testutil.SeedCatalogue(t, ts.db)
	token := testutil.AccessToken(t, testutil.CreateUser(t, ts.db, "admin@example.com", true))

	w := uploadRequest(t, ts, cat.Hamlet.ID, token, "image", "poster.png", []byte("not image"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = uploadRequest(t, ts, cat.Hamlet.ID, token, "poster", "poster.png", testutil.PNGBytes(t))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = uploadRequest(t, ts, 999, token, "image", "poster.png", testutil.PNGBytes(t))
	assert.Equal(t, http.StatusNotFound, w.Code)

	regular := testutil.AccessToken(t, testutil.CreateUser(t, ts.db, "user@example.com", false))
	w = uploadRequest(t, ts, cat.Hamlet.ID, regular, "image", "poster.png", testutil.PNGBytes(t))
	assert.Equal(t, http.StatusForbidden, w.Code)

	var play models.Play
	require.NoError(t, ts.db.First(&play, cat.Hamlet.ID).Error)
	assert.Nil(t, play.Image)
}

func TestImageShownInListsAndDetails(t *testing.T) {
	ts := newTestServer(t)
	cat := testutil.SeedCatalogue(t, ts.db)
	token := testutil.AccessToken(t, testutil.CreateUser(t, ts.db, "admin@example.com", true))

	w := uploadRequest(t, ts, cat.Hamlet.ID, token, "image", "poster.png", testutil.PNGBytes(t))
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.Request(t, ts.router, http.MethodGet, "/api/theatre/plays", token, nil)
	var plays []handlers.PlayListResponse
	testutil.DecodeJSON(t, w, &plays)
	require.NotEmpty(t, plays)
	assert.NotNil(t, plays[0].Image)

	w = testutil.Request(t, ts.router, http.MethodGet, fmt.Sprintf("/api/theatre/plays/%d", cat.Hamlet.ID), token, nil)
	var detail handlers.PlayDetailResponse
	testutil.DecodeJSON(t, w, &detail)
	assert.NotNil(t, detail.Image)

	w = testutil.Request(t, ts.router, http.MethodGet, "/api/theatre/performances", token, nil)
	var performances []handlers.PerformanceListResponse
	testutil.DecodeJSON(t, w, &performances)
	require.Len(t, performances, 1)
	assert.NotNil(t, performances[0].PlayImage)
}
