package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipe-buddy/backend/config"
	"github.com/pageza/recipe-buddy/backend/internal/api"
	"github.com/pageza/recipe-buddy/backend/internal/cache"
	"github.com/pageza/recipe-buddy/backend/internal/database"
	"github.com/pageza/recipe-buddy/backend/internal/ingest"
	"github.com/pageza/recipe-buddy/backend/internal/logger"
	"github.com/pageza/recipe-buddy/backend/internal/mealplan"
	"github.com/pageza/recipe-buddy/backend/internal/metrics"
	"github.com/pageza/recipe-buddy/backend/internal/middleware"
	"github.com/pageza/recipe-buddy/backend/internal/nlp"
	"github.com/pageza/recipe-buddy/backend/internal/router"
	"github.com/pageza/recipe-buddy/backend/internal/search"
	"github.com/pageza/recipe-buddy/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
	rdb    *redis.Client
	fatal  chan error
}

// New wires the search stack and loads the corpus. A corpus that cannot
// be loaded is returned as an error wrapping search.ErrCorpusUnavailable.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	gin.SetMode(cfg.Environment.GinMode())
	s := &Server{cfg: cfg, fatal: make(chan error, 1)}

	weights := search.DefaultWeights()
	if cfg.ScoringWeightsFile != "" {
		w, err := search.LoadWeights(cfg.ScoringWeightsFile)
		if err != nil {
			return nil, err
		}
		weights = w
		logger.Info("Loaded scoring weights", zap.String("file", cfg.ScoringWeightsFile))
	}

	needDB := cfg.CorpusSource == config.CorpusSourceDatabase || cfg.CandidateSource == config.CandidateSourceDatabase
	var store *service.RecipeService
	if needDB {
		db, err := database.Open(cfg)
		if err != nil {
			return nil, err
		}
		s.db = db
		store = service.NewRecipeService(db)
	}

	if cfg.RedisEnabled() {
		rdb, err := database.NewRedisClient(cfg)
		if err != nil {
			// Continue with the local cache and limiter.
			logger.Warn("Redis unavailable, using in-process cache and rate limiting", zap.Error(err))
		} else {
			s.rdb = rdb
		}
	}

	loader, err := s.corpusLoader(ctx, store)
	if err != nil {
		s.close()
		return nil, err
	}
	holder := search.NewHolder(loader, search.TFIDFOptions{
		MinDF:       cfg.TFIDFMinDF,
		MaxDF:       cfg.TFIDFMaxDF,
		MaxFeatures: cfg.TFIDFMaxFeatures,
	})

	opts := []search.EngineOption{search.WithMaxCandidates(cfg.MaxCandidates)}
	if cfg.CandidateSource == config.CandidateSourceDatabase {
		opts = append(opts, search.WithCandidateSource(store), search.WithNeighborSource(store))
	}
	engine := search.NewEngine(holder, nlp.NewParser(nlp.DefaultVocabulary()), weights, opts...)
	planner := mealplan.NewPlanner(holder, engine.Scorer())

	cacheCfg := cache.Config{TTL: cfg.CacheTTL, MaxEntries: cfg.CacheMaxEntries}
	var limiter middleware.Limiter = middleware.NewLocalRateLimiter(middleware.PerMinute(cfg.RateLimitPerMinute))
	if s.rdb != nil {
		cacheCfg.Store = cache.NewRedisStore(s.rdb, "")
		limiter = middleware.NewRateLimiter(s.rdb, middleware.PerMinute(cfg.RateLimitPerMinute))
	}
	svc := service.NewSearchService(engine, planner, cache.New(cacheCfg))

	corpus, err := holder.Refresh(ctx)
	metrics.RecordCorpusReload(corpusLen(corpus), err)
	if err != nil {
		s.close()
		return nil, err
	}
	logger.Info("Corpus loaded",
		zap.String("source", cfg.CorpusSource),
		zap.Int("recipes", corpus.Len()),
		zap.Int("vocabulary", corpus.VocabularySize()))

	handler := api.NewHandler(svc, service.NewTokenService(cfg.JWTSecret, 0))
	handler.OnCorpusFailure(func(err error) {
		select {
		case s.fatal <- err:
		default:
		}
	})
	s.router = router.SetupRouter(handler, api.NewSystemHandler(svc, s.db, s.rdb), router.Options{
		CORSOrigins: cfg.CORSAllowedOrigins,
		Limiter:     limiter,
	})
	s.http = &http.Server{
		Addr:              cfg.Address(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func corpusLen(c *search.Corpus) int {
	if c == nil {
		return 0
	}
	return c.Len()
}

func (s *Server) corpusLoader(ctx context.Context, store *service.RecipeService) (search.Loader, error) {
	src := s.cfg.CorpusSource
	if src == config.CorpusSourceDatabase {
		return store, nil
	}
	var s3cfg *config.S3Config
	if _, _, ok := config.ParseS3URI(src); ok {
		c, err := config.NewS3Config(ctx, s.cfg.AWSRegion, s.cfg.S3BucketName)
		if err != nil {
			return nil, err
		}
		s3cfg = c
	}
	return ingest.NewSnapshotLoader(src, s3cfg), nil
}

// Router exposes the HTTP handler.
func (s *Server) Router() http.Handler {
	return s.router
}

// Fatal delivers an error when the server can no longer serve, such as a
// corpus reload that failed.
func (s *Server) Fatal() <-chan error {
	return s.fatal
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	logger.Info("Starting server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and closes
// the backends.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	s.close()
	return err
}

func (s *Server) close() {
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}
	if s.db != nil {
		if err := database.Close(s.db); err != nil {
			logger.Warn("Failed to close database", zap.Error(err))
		}
	}
}
