package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-buddy/backend/config"
	"github.com/pageza/recipe-buddy/backend/internal/database"
	"github.com/pageza/recipe-buddy/backend/internal/ingest"
	"github.com/pageza/recipe-buddy/backend/internal/server"
	"github.com/pageza/recipe-buddy/backend/internal/service"
	"github.com/pageza/recipe-buddy/backend/internal/testhelpers"
	"github.com/pageza/recipe-buddy/backend/internal/types"
)

const snapshot = `[
  {"id": 1, "title": "Tomato Basil Soup", "ingredients": [{"text": "tomatoes"}, {"text": "basil"}, {"text": "onion"}],
   "nutr_values_per100g": {"energy": 45, "protein": 1.2, "fat": 1.5, "salt": 0.4, "sugars": 3.1, "saturates": 0.2}},
  {"id": 2, "title": "Chicken Tikka Masala", "ingredients": ["chicken thighs", "yogurt", "tomato puree", "garam masala"],
   "nutr_values_per100g": {"energy": 150, "protein": 14, "fat": 8, "salt": 0.9, "sugars": 2.5, "saturates": 3}},
  {"id": 3, "title": "Lemon Garlic Chicken", "ingredients": ["chicken breast", "lemon", "garlic", "olive oil"],
   "nutr_values_per100g": {"energy": 165, "protein": 25, "fat": 6, "salt": 0.5, "sugars": 0.3, "saturates": 1}},
  {"id": 4, "title": "Spinach Omelette", "categories": ["Breakfast"], "ingredients": ["eggs", "spinach", "milk"],
   "nutr_values_per100g": {"energy": 140, "protein": 11, "fat": 10, "salt": 0.6, "sugars": 0.8, "saturates": 3.5}}
]`

type stack struct {
	cfg *config.Config
}

// setupStack starts postgres and redis, migrates and seeds the store the
// way cmd/migrate and cmd/seed_recipes do.
func setupStack(t *testing.T) stack {
	pg := testhelpers.StartPostgres(t)
	redisAddr := testhelpers.StartRedis(t)

	cfg := &config.Config{
		Environment:        config.Test,
		ServerHost:         "127.0.0.1",
		ServerPort:         "0",
		DBDriver:           config.DriverPostgres,
		DBHost:             pg.Host,
		DBPort:             pg.Port,
		DBUser:             pg.User,
		DBPassword:         pg.Password,
		DBName:             pg.Name,
		DBSSLMode:          "disable",
		RedisURL:           fmt.Sprintf("redis://%s/0", redisAddr),
		JWTSecret:          "integration-secret",
		CorpusSource:       config.CorpusSourceDatabase,
		CandidateSource:    config.CandidateSourceDatabase,
		MaxCandidates:      100,
		TFIDFMinDF:         1,
		TFIDFMaxDF:         1,
		TFIDFMaxFeatures:   10000,
		CacheTTL:           time.Minute,
		CacheMaxEntries:    100,
		RateLimitPerMinute: 1000,
		CORSAllowedOrigins: []string{"*"},
	}

	db, err := database.Open(cfg)
	require.NoError(t, err)
	applied, err := database.RunMigrations(db, "../../migrations")
	require.NoError(t, err)
	require.NotEmpty(t, applied)

	recipes, err := ingest.Decode(context.Background(), strings.NewReader(snapshot))
	require.NoError(t, err)
	_, err = service.NewRecipeService(db).UpsertRecipes(context.Background(), recipes, 2)
	require.NoError(t, err)
	require.NoError(t, database.Close(db))

	return stack{cfg: cfg}
}

func (s stack) newServer(t *testing.T) *server.Server {
	t.Helper()
	srv, err := server.New(context.Background(), s.cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
	return srv
}

func get(t *testing.T, srv *server.Server, path string, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil && w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w
}

func TestSearchStack(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	st := setupStack(t)
	first := st.newServer(t)
	second := st.newServer(t)

	var health types.HealthResponse
	w := get(t, first, "/health", &health)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "ok", health.Checks["database"])
	assert.Equal(t, "ok", health.Checks["redis"])
	assert.Equal(t, 4, health.Recipes)

	var resp types.SearchResponse
	w = get(t, first, "/api/v1/search/simple?q=chicken+no+yogurt", &resp)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, resp.Cached)
	require.Equal(t, 1, resp.TotalResults)
	assert.Equal(t, "Lemon Garlic Chicken", resp.Results[0].Recipe.Title)
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))

	w = get(t, second, "/api/v1/search/simple?q=Chicken+no+yogurt", &resp)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Cached, "replicas share the redis cache")

	var similar types.SimilarResponse
	w = get(t, first, "/api/v1/recipes/3/similar?min_score=0", &similar)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotEmpty(t, similar.Results)
	for _, r := range similar.Results {
		assert.NotEqual(t, int64(3), r.Recipe.ID)
	}

	var recipe struct {
		Nutrition struct {
			Sodium *float64 `json:"sodium"`
		} `json:"nutrition"`
	}
	w = get(t, first, "/api/v1/recipes/1", &recipe)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, recipe.Nutrition.Sodium)
	assert.Equal(t, 400.0, *recipe.Nutrition.Sodium)
}
