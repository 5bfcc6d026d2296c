package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kitmoji/api/internal/auth"
	"github.com/kitmoji/api/internal/config"
	"github.com/kitmoji/api/internal/database"
	"github.com/kitmoji/api/internal/handler"
	"github.com/kitmoji/api/internal/middleware"
	"github.com/kitmoji/api/internal/model"
	"github.com/kitmoji/api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test-secret"

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	return store.New(db, config.Curated{
		PopularEmojis: []string{"😂", "😀"},
		NewVersions:   []string{"15.1", "15.0"},
	})
}

// newTestRouter wires the same route table the server uses, minus the
// Redis cache and metrics.
func newTestRouter(s *store.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	emojiHandler := handler.NewEmojiHandler(s, nil)
	adminHandler := handler.NewAdminHandler(s, nil)
	exportHandler := handler.NewExportHandler(s)
	sitemapHandler := handler.NewSitemapHandler(s, nil, "https://kitmoji.net")

	r.GET("/api/health", emojiHandler.Health)
	r.GET("/api/emojis", emojiHandler.List)
	r.GET("/api/emojis/popular", emojiHandler.Popular)
	r.GET("/api/emojis/new", emojiHandler.New)
	r.GET("/api/emojis/:id", emojiHandler.GetByID)
	r.GET("/api/emoji/:name", emojiHandler.GetByName)
	r.POST("/api/emoji/:name/copy", emojiHandler.Copy)
	r.GET("/api/emoji/:name/copy-count", emojiHandler.CopyCount)
	r.GET("/api/categories", emojiHandler.Categories)
	r.GET("/sitemap.xml", sitemapHandler.Serve)

	authed := r.Group("/api")
	authed.Use(middleware.AdminMiddleware(testJWTSecret))
	{
		authed.POST("/emojis", adminHandler.Create)
		authed.PUT("/emojis/:id", adminHandler.Update)
		authed.DELETE("/emojis/:id", adminHandler.Delete)
		authed.POST("/admin/fix-emojis", adminHandler.FixEmojis)
		authed.GET("/admin/export", exportHandler.Export)
	}

	return r
}

func seedEmojis(t *testing.T, s *store.Store) []model.Emoji {
	t.Helper()
	inputs := []store.CreateInput{
		{Name: "grinning face", Keywords: "grin, smile", Category: "Smileys & Emotion", Unicode: "1F600", UnicodeVersion: "1.0"},
		{Name: "face with tears of joy", Keywords: "laugh, lol", Category: "Smileys & Emotion", Unicode: "1F602", UnicodeVersion: "0.6"},
		{Name: "waving hand", Keywords: "wave, hello", Category: "People & Body", Unicode: "1F44B", UnicodeVersion: "0.6"},
		{Name: "waving hand: light skin tone", Keywords: "wave", Category: "People & Body", Unicode: "1F44B 1F3FB", UnicodeVersion: "1.0"},
		{Name: "melting face", Keywords: "melt", Category: "Smileys & Emotion", Unicode: "1FAE0", UnicodeVersion: "15.0"},
	}
	out := make([]model.Emoji, 0, len(inputs))
	for _, in := range inputs {
		created, err := s.Create(context.Background(), in)
		require.NoError(t, err)
		out = append(out, *created)
	}
	return out
}

func doRequest(r *gin.Engine, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func adminHeaders(t *testing.T) map[string]string {
	t.Helper()
	token, err := auth.GenerateAdminToken("tester", testJWTSecret)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestHealth(t *testing.T) {
	s := newTestStore(t)
	seedEmojis(t, s)
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, float64(5), body["totalEmojis"])
}

func TestListDefaults(t *testing.T) {
	s := newTestStore(t)
	seedEmojis(t, s)
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/emojis", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page store.Page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 50, page.Limit)
	assert.Len(t, page.Emojis, 5)
}

func TestListSearchAndPagination(t *testing.T) {
	s := newTestStore(t)
	seedEmojis(t, s)
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/emojis?search=WAVE&limit=1&page=2", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page store.Page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Emojis, 1)
	assert.Contains(t, page.Emojis[0].Name, "waving hand")
}

func TestListMalformedPaginationClamps(t *testing.T) {
	s := newTestStore(t)
	seedEmojis(t, s)
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/emojis?page=banana&limit=-3", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page store.Page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 50, page.Limit)
}

func TestPopularOrder(t *testing.T) {
	s := newTestStore(t)
	seedEmojis(t, s)
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/emojis/popular", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Emojis []model.Emoji `json:"emojis"`
		Total  int           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 2, body.Total)
	assert.Equal(t, "face with tears of joy", body.Emojis[0].Name)
	assert.Equal(t, "grinning face", body.Emojis[1].Name)
}

func TestNewEmojis(t *testing.T) {
	s := newTestStore(t)
	seedEmojis(t, s)
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/emojis/new", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Emojis []model.Emoji `json:"emojis"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Emojis, 1)
	assert.Equal(t, "melting face", body.Emojis[0].Name)
}

func TestGetByID(t *testing.T) {
	s := newTestStore(t)
	seeded := seedEmojis(t, s)
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/emojis/"+strconv.FormatInt(seeded[0].ID, 10), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var emoji model.Emoji
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &emoji))
	assert.Equal(t, "grinning face", emoji.Name)
}

func TestGetByIDNotFound(t *testing.T) {
	s := newTestStore(t)
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/emojis/9999", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodGet, "/api/emojis/not-a-number", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetByName(t *testing.T) {
	s := newTestStore(t)
	seedEmojis(t, s)
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/emoji/grinning-face", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var emoji model.Emoji
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &emoji))
	assert.Equal(t, "grinning face", emoji.Name)
}

func TestGetByNameSkinToneVariant(t *testing.T) {
	s := newTestStore(t)
	seedEmojis(t, s)
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/emoji/waving-hand-light-skin-tone", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var emoji model.Emoji
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &emoji))
	assert.Equal(t, "waving hand: light skin tone", emoji.Name)
}

func TestGetByNameNotFound(t *testing.T) {
	s := newTestStore(t)
	seedEmojis(t, s)
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/emoji/no-such-emoji", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCopyIncrements(t *testing.T) {
	s := newTestStore(t)
	seeded := seedEmojis(t, s)
	r := newTestRouter(s)
	id := strconv.FormatInt(seeded[0].ID, 10)

	for want := 1; want <= 3; want++ {
		w := doRequest(r, http.MethodPost, "/api/emoji/"+id+"/copy", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]int64
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, int64(want), body["copy_count"])
	}

	w := doRequest(r, http.MethodGet, "/api/emoji/"+id+"/copy-count", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]int64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(3), body["copy_count"])
}

func TestCopyNotFound(t *testing.T) {
	s := newTestStore(t)
	r := newTestRouter(s)

	w := doRequest(r, http.MethodPost, "/api/emoji/9999/copy", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCategories(t *testing.T) {
	s := newTestStore(t)
	seedEmojis(t, s)
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/categories", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var categories []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
	assert.Equal(t, []string{"People & Body", "Smileys & Emotion"}, categories)
}

func TestAdminRequiresToken(t *testing.T) {
	s := newTestStore(t)
	r := newTestRouter(s)

	body, _ := json.Marshal(store.CreateInput{Name: "x", Category: "y", Unicode: "1F9EA"})

	w := doRequest(r, http.MethodPost, "/api/emojis", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(r, http.MethodPost, "/api/emojis", body, map[string]string{
		"Authorization": "Bearer not-a-token",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminCreate(t *testing.T) {
	s := newTestStore(t)
	r := newTestRouter(s)

	body, _ := json.Marshal(store.CreateInput{
		Name:           "test tube",
		Keywords:       "science, chemistry",
		Category:       "Objects",
		Unicode:        "1F9EA",
		UnicodeVersion: "11.0",
	})
	w := doRequest(r, http.MethodPost, "/api/emojis", body, adminHeaders(t))
	require.Equal(t, http.StatusCreated, w.Code)

	var emoji model.Emoji
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &emoji))
	assert.NotZero(t, emoji.ID)
	assert.Equal(t, "🧪", emoji.Emoji)
	assert.Equal(t, model.TypeStandard, emoji.EmojiType)
}

func TestAdminCreateDuplicate(t *testing.T) {
	s := newTestStore(t)
	seedEmojis(t, s)
	r := newTestRouter(s)

	body, _ := json.Marshal(store.CreateInput{
		Name: "grinning face again", Category: "Smileys & Emotion", Unicode: "1F600",
	})
	w := doRequest(r, http.MethodPost, "/api/emojis", body, adminHeaders(t))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminCreateInvalidBody(t *testing.T) {
	s := newTestStore(t)
	r := newTestRouter(s)

	w := doRequest(r, http.MethodPost, "/api/emojis", []byte(`{"name":"x"}`), adminHeaders(t))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminUpdate(t *testing.T) {
	s := newTestStore(t)
	seeded := seedEmojis(t, s)
	r := newTestRouter(s)

	body, _ := json.Marshal(store.CreateInput{
		Name:     "grinning face",
		Keywords: "grin, smile, cheerful",
		Category: "Smileys & Emotion",
		Unicode:  "1F600",
	})
	w := doRequest(r, http.MethodPut, "/api/emojis/"+strconv.FormatInt(seeded[0].ID, 10), body, adminHeaders(t))
	require.Equal(t, http.StatusOK, w.Code)

	var emoji model.Emoji
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &emoji))
	assert.Equal(t, "grin, smile, cheerful", emoji.Keywords)
}

func TestAdminUpdateNotFound(t *testing.T) {
	s := newTestStore(t)
	r := newTestRouter(s)

	body, _ := json.Marshal(store.CreateInput{Name: "x", Category: "y", Unicode: "1F600"})
	w := doRequest(r, http.MethodPut, "/api/emojis/9999", body, adminHeaders(t))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminDelete(t *testing.T) {
	s := newTestStore(t)
	seeded := seedEmojis(t, s)
	r := newTestRouter(s)
	path := "/api/emojis/" + strconv.FormatInt(seeded[0].ID, 10)

	w := doRequest(r, http.MethodDelete, path, nil, adminHeaders(t))
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodDelete, path, nil, adminHeaders(t))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminFixEmojis(t *testing.T) {
	s := newTestStore(t)
	seedEmojis(t, s)
	r := newTestRouter(s)

	w := doRequest(r, http.MethodPost, "/api/admin/fix-emojis", nil, adminHeaders(t))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Emoji columns updated", body["message"])
}

func TestAdminExportJSON(t *testing.T) {
	s := newTestStore(t)
	seedEmojis(t, s)
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/admin/export", nil, adminHeaders(t))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Total  int           `json:"total"`
		Emojis []model.Emoji `json:"emojis"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 5, body.Total)
	assert.Len(t, body.Emojis, 5)
}

func TestAdminExportCSV(t *testing.T) {
	s := newTestStore(t)
	seedEmojis(t, s)
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/admin/export?format=csv", nil, adminHeaders(t))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 6)
	assert.Contains(t, lines[0], "Unicode")
}

func TestAdminExportInvalidFormat(t *testing.T) {
	s := newTestStore(t)
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/admin/export?format=xml", nil, adminHeaders(t))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSitemapXML(t *testing.T) {
	s := newTestStore(t)
	seedEmojis(t, s)
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/sitemap.xml", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/xml")
	assert.Equal(t, "public, max-age=86400", w.Header().Get("Cache-Control"))

	body := w.Body.String()
	assert.Contains(t, body, "<urlset")
	assert.Contains(t, body, "https://kitmoji.net/emoji/grinning-face")
	assert.Contains(t, body, "https://kitmoji.net/category/")
}
