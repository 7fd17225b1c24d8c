package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-buddy/backend/config"
	"github.com/pageza/recipe-buddy/backend/internal/database"
	"github.com/pageza/recipe-buddy/backend/internal/model"
	"github.com/pageza/recipe-buddy/backend/internal/search"
	"github.com/pageza/recipe-buddy/backend/internal/service"
)

const snapshot = `[
  {"id": 1, "title": "Tomato Soup", "ingredients": ["4 tomatoes", "1 onion"], "categories": ["Soup"],
   "nutrition": {"calories": 120, "protein": 3}},
  {"id": 2, "title": "Chicken Curry", "ingredients": ["1 lb chicken", "1 cup coconut milk"],
   "nutrition": {"calories": 450, "protein": 35}},
  {"id": 3, "title": "Grilled Chicken", "ingredients": ["2 chicken breasts", "olive oil"],
   "nutrition": {"calories": 300, "protein": 40}}
]`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment:        config.Test,
		ServerHost:         "127.0.0.1",
		ServerPort:         "0",
		DBDriver:           config.DriverSQLite,
		DBPath:             filepath.Join(t.TempDir(), "recipes.db"),
		CandidateSource:    config.CandidateSourceMemory,
		MaxCandidates:      5000,
		TFIDFMinDF:         1,
		TFIDFMaxDF:         1,
		TFIDFMaxFeatures:   10000,
		CacheTTL:           time.Minute,
		CacheMaxEntries:    100,
		RateLimitPerMinute: 100,
		CORSAllowedOrigins: []string{"*"},
		JWTSecret:          "test-secret",
	}
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestNewFromSnapshot(t *testing.T) {
	cfg := testConfig(t)
	cfg.CorpusSource = filepath.Join(t.TempDir(), "recipes.json")
	require.NoError(t, os.WriteFile(cfg.CorpusSource, []byte(snapshot), 0o600))

	srv, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { srv.close() })

	w := get(srv.Router(), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy"`)

	w = get(srv.Router(), "/api/v1/search/simple?q=chicken")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_results":2`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "100", w.Header().Get("X-RateLimit-Limit"))

	w = get(srv.Router(), "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "recipe_http_requests_total")
}

func TestNewFailsWithoutCorpus(t *testing.T) {
	cfg := testConfig(t)
	cfg.CorpusSource = filepath.Join(t.TempDir(), "missing.json")

	_, err := New(context.Background(), cfg)
	assert.ErrorIs(t, err, search.ErrCorpusUnavailable)
}

func TestNewFromSQLiteStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.CorpusSource = config.CorpusSourceDatabase
	cfg.CandidateSource = config.CandidateSourceDatabase

	db, err := database.Open(cfg)
	require.NoError(t, err)
	_, err = database.RunMigrations(db, "")
	require.NoError(t, err)
	_, err = service.NewRecipeService(db).UpsertRecipes(context.Background(), []model.Recipe{
		{ID: 10, Title: "Lentil Stew", Ingredients: model.JSONBStringArray{"lentils", "carrot"}},
		{ID: 11, Title: "Carrot Cake", Ingredients: model.JSONBStringArray{"carrot", "flour", "sugar"}},
	}, 0)
	require.NoError(t, err)
	require.NoError(t, database.Close(db))

	srv, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { srv.close() })

	w := get(srv.Router(), "/api/v1/search/simple?q=carrot")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_results":2`)

	w = get(srv.Router(), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
}
