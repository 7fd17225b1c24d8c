package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-buddy/backend/internal/cache"
	"github.com/pageza/recipe-buddy/backend/internal/mealplan"
	"github.com/pageza/recipe-buddy/backend/internal/model"
	"github.com/pageza/recipe-buddy/backend/internal/nlp"
	"github.com/pageza/recipe-buddy/backend/internal/search"
	"github.com/pageza/recipe-buddy/backend/internal/service"
	"github.com/pageza/recipe-buddy/backend/internal/testhelpers"
)

type failingLoader struct{}

func (failingLoader) LoadRecipes(context.Context) ([]model.Recipe, error) {
	return nil, errors.New("store unreachable")
}

func newSearchService(t *testing.T, loader search.Loader) *service.SearchService {
	t.Helper()
	holder := search.NewHolder(loader, search.TFIDFOptions{})
	if loader == nil {
		holder.Set(search.NewCorpus(storeRecipes(), search.TFIDFOptions{}))
	}
	weights := search.DefaultWeights()
	engine := search.NewEngine(holder, nlp.NewParser(nlp.DefaultVocabulary()), weights)
	planner := mealplan.NewPlanner(holder, engine.Scorer())
	return service.NewSearchService(engine, planner, cache.New(cache.Config{}))
}

func TestSearchServiceCachesPages(t *testing.T) {
	svc := newSearchService(t, nil)
	ctx := context.Background()

	first, err := svc.Search(ctx, "chicken", search.Options{})
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 2, first.TotalResults)
	assert.Equal(t, search.DefaultMaxResults, first.PerPage)
	assert.Equal(t, []string{"chicken"}, first.ParsedQuery.Ingredients)

	second, err := svc.Search(ctx, "  CHICKEN ", search.Options{MaxResults: 20, Page: 1})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Results, second.Results)

	stats := svc.CacheStats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)

	require.NoError(t, svc.ClearCache(ctx))
	assert.Equal(t, 0, svc.CacheStats().TotalEntries)
}

func TestSearchServiceErrors(t *testing.T) {
	svc := newSearchService(t, nil)
	ctx := context.Background()

	_, err := svc.Search(ctx, "   ", search.Options{})
	assert.ErrorIs(t, err, nlp.ErrEmptyQuery)

	_, err = svc.Search(ctx, "soup", search.Options{Page: -1})
	assert.ErrorIs(t, err, search.ErrInvalidParameter)
	assert.Equal(t, 0, svc.CacheStats().TotalEntries)
}

func TestSearchServiceRandomAndListings(t *testing.T) {
	svc := newSearchService(t, nil)

	recipes, err := svc.Random(0)
	require.NoError(t, err)
	assert.Len(t, recipes, 4)

	recipes, err = svc.Random(2)
	require.NoError(t, err)
	assert.Len(t, recipes, 2)
	assert.NotEqual(t, recipes[0].ID, recipes[1].ID)

	cats, err := svc.Categories()
	require.NoError(t, err)
	assert.NotEmpty(t, cats)

	assert.Contains(t, svc.Ingredients(), "chicken")

	stats, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Recipes)
	assert.Positive(t, stats.TextVocabularySize)
}

func TestSearchServiceReloadFromStore(t *testing.T) {
	store := service.NewRecipeService(testhelpers.SetupSQLiteDB(t))
	_, err := store.UpsertRecipes(context.Background(), storeRecipes(), 0)
	require.NoError(t, err)

	svc := newSearchService(t, store)
	_, err = svc.Corpus()
	assert.ErrorIs(t, err, search.ErrCorpusUnavailable)

	c, err := svc.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, c.Len())

	r, err := svc.Recipe(3)
	require.NoError(t, err)
	assert.Equal(t, "Grilled Chicken", r.Title)
}

func TestSearchServiceReloadFailureClearsCorpus(t *testing.T) {
	svc := newSearchService(t, failingLoader{})

	_, err := svc.Reload(context.Background())
	assert.ErrorIs(t, err, search.ErrCorpusUnavailable)

	_, err = svc.Search(context.Background(), "chicken", search.Options{})
	assert.ErrorIs(t, err, search.ErrCorpusUnavailable)
}

func TestSearchServiceQuickMealPlan(t *testing.T) {
	svc := newSearchService(t, nil)

	_, err := svc.QuickMealPlan(context.Background(), "keto", 2)
	assert.ErrorIs(t, err, mealplan.ErrInvalidRequest)

	plan, err := svc.QuickMealPlan(context.Background(), "balanced", 2)
	require.NoError(t, err)
	assert.Len(t, plan.Days, 2)
}

func TestSearchServiceNeverServesPagesFromAnOlderCorpus(t *testing.T) {
	holder := search.NewHolder(nil, search.TFIDFOptions{})
	holder.Set(search.NewCorpus(storeRecipes(), search.TFIDFOptions{}))
	engine := search.NewEngine(holder, nlp.NewParser(nlp.DefaultVocabulary()), search.DefaultWeights())
	svc := service.NewSearchService(engine, mealplan.NewPlanner(holder, engine.Scorer()), cache.New(cache.Config{}))
	ctx := context.Background()

	first, err := svc.Search(ctx, "chicken", search.Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, first.TotalResults)

	// swap the corpus without clearing the cache
	holder.Set(search.NewCorpus(storeRecipes()[:2], search.TFIDFOptions{}))

	second, err := svc.Search(ctx, "chicken", search.Options{})
	require.NoError(t, err)
	assert.False(t, second.Cached)
	assert.Equal(t, 1, second.TotalResults)
}
