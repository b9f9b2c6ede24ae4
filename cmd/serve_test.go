package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/visibility-cli/internal/model"
	"github.com/sells-group/visibility-cli/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestServeHealth(t *testing.T) {
	router := newRouter(newTestStore(t), func(model.BusinessProfile) {})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestServeWebhookValidation(t *testing.T) {
	router := newRouter(newTestStore(t), func(model.BusinessProfile) {
		t.Fatal("runScan must not be called for invalid requests")
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook/scan", strings.NewReader("{not json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook/scan", strings.NewReader(`{"domain":"acme.com"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name is required")
}

func TestServeWebhookAccepted(t *testing.T) {
	var (
		mu      sync.Mutex
		started *model.BusinessProfile
		done    = make(chan struct{})
	)
	router := newRouter(newTestStore(t), func(p model.BusinessProfile) {
		mu.Lock()
		started = &p
		mu.Unlock()
		close(done)
	})

	body := `{"name":"Acme Plumbing","domain":"acmeplumbing.com","services":["drain cleaning"]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook/scan", strings.NewReader(body)))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), "accepted")

	<-done
	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, started)
	assert.Equal(t, "Acme Plumbing", started.Name)
	assert.Equal(t, []string{"drain cleaning"}, started.Services)
}

func TestServeListScans(t *testing.T) {
	st := newTestStore(t)
	router := newRouter(st, func(model.BusinessProfile) {})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scans", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	scan, err := st.CreateScan(context.Background(), model.BusinessProfile{Name: "Acme", Domain: "acme.com"})
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scans?domain=acme.com", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var scans []model.Scan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scans))
	require.Len(t, scans, 1)
	assert.Equal(t, scan.ID, scans[0].ID)
}

func TestServeStats(t *testing.T) {
	st := newTestStore(t)
	router := newRouter(st, func(model.BusinessProfile) {})

	_, err := st.CreateScan(context.Background(), model.BusinessProfile{Name: "Acme"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var snap map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.EqualValues(t, 1, snap["scans_total"])
	assert.EqualValues(t, 24, snap["lookback_hours"])
}

func TestServeGetScan(t *testing.T) {
	st := newTestStore(t)
	router := newRouter(st, func(model.BusinessProfile) {})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scans/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	scan, err := st.CreateScan(context.Background(), model.BusinessProfile{Name: "Acme"})
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scans/"+scan.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var got model.Scan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Acme", got.Profile.Name)
}
