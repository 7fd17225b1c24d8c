package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/recipe-buddy/backend/internal/cache"
	"github.com/pageza/recipe-buddy/backend/internal/logger"
	"github.com/pageza/recipe-buddy/backend/internal/mealplan"
	"github.com/pageza/recipe-buddy/backend/internal/metrics"
	"github.com/pageza/recipe-buddy/backend/internal/model"
	"github.com/pageza/recipe-buddy/backend/internal/nlp"
	"github.com/pageza/recipe-buddy/backend/internal/search"
	"github.com/pageza/recipe-buddy/backend/internal/types"
)

// Random sample limits.
const (
	DefaultRandomCount = 5
	MaxRandomCount     = 50
)

// SearchService ties the engine, the planner and the query cache together
// for the HTTP layer.
type SearchService struct {
	engine  *search.Engine
	planner *mealplan.Planner
	cache   *cache.QueryCache

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewSearchService creates the façade. Shared cache store failures are
// logged and counted, never returned.
func NewSearchService(engine *search.Engine, planner *mealplan.Planner, qc *cache.QueryCache) *SearchService {
	qc.OnStoreError(func(op string, err error) {
		metrics.RecordCacheStoreError(op)
		logger.Warn("Shared cache store failed", zap.String("op", op), zap.Error(err))
	})
	return &SearchService{
		engine:  engine,
		planner: planner,
		cache:   qc,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Search runs or replays a cached search page.
func (s *SearchService) Search(ctx context.Context, query string, opts search.Options) (*types.SearchResponse, error) {
	start := time.Now()
	opts, err := search.NormalizeOptions(opts)
	if err != nil {
		return nil, err
	}

	// Keys carry the corpus fingerprint so a page ranked against an older
	// corpus, even one installed after a reload cleared the cache, is never
	// served again.
	c, err := s.engine.Holder().Corpus()
	if err != nil {
		return nil, err
	}
	key := cache.Key(query, opts) + "|" + c.Fingerprint()
	entry, cached, err := s.cache.GetOrCompute(ctx, key, opts, query, func(ctx context.Context) (*search.Result, error) {
		return s.engine.Search(ctx, query, opts)
	})
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)
	metrics.RecordSearch(cached, elapsed)

	res := entry.Result
	logger.Debug("Search served",
		zap.String("query", query),
		zap.Int("total", res.TotalResults),
		zap.Bool("cached", cached),
		zap.Duration("elapsed", elapsed))

	return &types.SearchResponse{
		Query:        query,
		ParsedQuery:  res.Query,
		TotalResults: res.TotalResults,
		Page:         res.Page,
		PerPage:      res.PerPage,
		HasNext:      res.HasNext,
		HasPrev:      res.HasPrev,
		QueryTimeMs:  float64(elapsed.Microseconds()) / 1000,
		Results:      res.Results,
		Cached:       cached,
	}, nil
}

// Parse exposes the query parser for debugging.
func (s *SearchService) Parse(query string) (*nlp.StructuredQuery, error) {
	return s.engine.Parse(query)
}

func (s *SearchService) Recipe(id int64) (*model.Recipe, error) {
	return s.engine.Recipe(id)
}

func (s *SearchService) Similar(ctx context.Context, id int64, limit int, minScore float64) ([]search.SimilarRecipe, error) {
	return s.engine.Similar(ctx, id, limit, minScore)
}

// Random returns up to count random recipes. count <= 0 selects
// DefaultRandomCount; larger values are capped at MaxRandomCount.
func (s *SearchService) Random(count int) ([]*model.Recipe, error) {
	c, err := s.engine.Holder().Corpus()
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		count = DefaultRandomCount
	}
	if count > MaxRandomCount {
		count = MaxRandomCount
	}
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return c.Random(count, s.rng), nil
}

func (s *SearchService) Categories() ([]search.CategoryCount, error) {
	c, err := s.engine.Holder().Corpus()
	if err != nil {
		return nil, err
	}
	return c.CountCategories(s.engine.Parser().Vocabulary()), nil
}

// Ingredients lists the ingredient gazetteer.
func (s *SearchService) Ingredients() []string {
	return append([]string(nil), s.engine.Parser().Vocabulary().Ingredients...)
}

// MealPlan generates a plan, counting unfillable slots by constraint.
func (s *SearchService) MealPlan(ctx context.Context, req mealplan.Request) (*mealplan.Plan, error) {
	plan, err := s.planner.Generate(ctx, req)
	if err != nil {
		var slotErr *mealplan.SlotUnfillableError
		if errors.As(err, &slotErr) {
			metrics.RecordMealPlanFailure(slotErr.Constraint)
		}
		return nil, err
	}
	return plan, nil
}

// QuickMealPlan generates a plan from a named preset.
func (s *SearchService) QuickMealPlan(ctx context.Context, diet string, days int) (*mealplan.Plan, error) {
	req, err := mealplan.Preset(diet, days)
	if err != nil {
		return nil, err
	}
	return s.MealPlan(ctx, req)
}

func (s *SearchService) CacheStats() cache.Stats {
	return s.cache.Stats()
}

func (s *SearchService) ClearCache(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

// Reload rebuilds the corpus from its loader and drops cached pages that
// were ranked against the old one.
func (s *SearchService) Reload(ctx context.Context) (*search.Corpus, error) {
	c, err := s.engine.Holder().Refresh(ctx)
	if err != nil {
		metrics.RecordCorpusReload(0, err)
		return nil, err
	}
	metrics.RecordCorpusReload(c.Len(), nil)
	if err := s.cache.Clear(ctx); err != nil {
		logger.Warn("Failed to clear query cache after reload", zap.Error(err))
	}
	logger.Info("Corpus reloaded",
		zap.Int("recipes", c.Len()),
		zap.Int("vocabulary", c.VocabularySize()))
	return c, nil
}

// Stats describes the published corpus and the cache.
func (s *SearchService) Stats() (*types.StatsResponse, error) {
	c, err := s.engine.Holder().Corpus()
	if err != nil {
		return nil, err
	}
	return &types.StatsResponse{
		Recipes:                  c.Len(),
		TextVocabularySize:       c.VocabularySize(),
		IngredientVocabularySize: c.IngredientVocabularySize(),
		LoadedAt:                 c.LoadedAt(),
		CacheEntries:             s.cache.Stats().TotalEntries,
	}, nil
}

// Corpus returns the published corpus.
func (s *SearchService) Corpus() (*search.Corpus, error) {
	return s.engine.Holder().Corpus()
}
