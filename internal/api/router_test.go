package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pomtech-site/backend/internal/api"
	"github.com/pomtech-site/backend/internal/calendar"
	"github.com/pomtech-site/backend/internal/storage"
	"github.com/pomtech-site/backend/internal/storage/models"
	"github.com/pomtech-site/backend/internal/websocket"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	db, err := storage.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.RunMigrations(db))

	hub := websocket.NewHub()
	go hub.Run()

	eventRepo := storage.NewEventRepository(db)
	return api.NewRouter(api.Deps{
		DB:         db,
		Hub:        hub,
		Engine:     calendar.NewEngine(eventRepo, time.UTC, "sunday", hub),
		EventRepo:  eventRepo,
		PrefRepo:   storage.NewPreferenceRepository(db),
		SearchRepo: storage.NewSearchHistoryRepository(db, 5),
		StaticDir:  t.TempDir(),
	})
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestEventLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/events", map[string]string{
		"date": "2024-05-10",
		"text": "board meeting",
		"time": "10:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.CalendarEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)

	rec = doJSON(t, router, http.MethodGet, "/api/events?date=2024-05-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var events []models.CalendarEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "board meeting", events[0].Text)

	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/events/%d", created.ID), map[string]string{
		"date": "2024-05-10",
		"text": "board meeting (moved)",
		"time": "11:00",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/events/%d", created.ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/events/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/events?date=2024-05-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestCreateEventValidationErrors(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/events", map[string]string{
		"date": "2024-05-10",
		"text": "",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_error")

	rec = doJSON(t, router, http.MethodPost, "/api/events", map[string]string{
		"date":     "2024-05-10",
		"text":     "needs a time",
		"reminder": "30",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_error")
}

func TestGetMonth(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/events", map[string]string{
		"date": "2024-06-05",
		"text": "launch",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/months/2024/6", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var grid calendar.MonthGrid
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grid))
	assert.Equal(t, 2024, grid.Year)
	assert.Equal(t, time.June, grid.Month)
	assert.Equal(t, 42, len(grid.Cells))

	rec = doJSON(t, router, http.MethodGet, "/api/months/2024/13", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreferences(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/preferences", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), models.ThemeLight)

	rec = doJSON(t, router, http.MethodPut, "/api/preferences", map[string]string{"theme": models.ThemeDark})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/preferences", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), models.ThemeDark)

	rec = doJSON(t, router, http.MethodPut, "/api/preferences", map[string]string{"theme": "neon"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchHistory(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/search-history", map[string]string{"query": "pom tech ai"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/search-history", map[string]string{"query": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/search-history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pom tech ai")

	rec = doJSON(t, router, http.MethodDelete, "/api/search-history", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestWebSocketPingPong(t *testing.T) {
	router := newTestRouter(t)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	var reply websocket.Message
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, websocket.TypePong, reply.Type)

	// Unknown commands get an error reply instead of a pong.
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "subscribe"}))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, websocket.TypeError, reply.Type)
}
