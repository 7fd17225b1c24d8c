package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/pageza/recipe-buddy/backend/config"
	"github.com/pageza/recipe-buddy/backend/internal/database"
	"github.com/pageza/recipe-buddy/backend/internal/ingest"
	"github.com/pageza/recipe-buddy/backend/internal/logger"
	"github.com/pageza/recipe-buddy/backend/internal/service"
)

func main() {
	source := flag.String("source", "", "snapshot to import: a .json or .json.gz path, or s3://bucket/key")
	batchSize := flag.Int("batch", service.DefaultUpsertBatchSize, "rows per insert batch")
	limit := flag.Int("limit", 0, "import at most this many recipes (0 imports all)")
	migrate := flag.Bool("migrate", true, "run migrations before importing")
	migrationsDir := flag.String("migrations", "migrations", "directory holding the *.sql migrations")
	flag.Parse()

	if *source == "" {
		log.Fatal("-source is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Init(string(cfg.Environment), cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var s3cfg *config.S3Config
	if _, _, ok := config.ParseS3URI(*source); ok {
		s3cfg, err = config.NewS3Config(ctx, cfg.AWSRegion, cfg.S3BucketName)
		if err != nil {
			logger.Fatal("Failed to configure S3", zap.Error(err))
		}
	}
	recipes, err := ingest.NewSnapshotLoader(*source, s3cfg).LoadRecipes(ctx)
	if err != nil {
		logger.Fatal("Failed to read snapshot", zap.Error(err))
	}
	if *limit > 0 && len(recipes) > *limit {
		recipes = recipes[:*limit]
	}

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if *migrate {
		if _, err := database.RunMigrations(db, *migrationsDir); err != nil {
			logger.Fatal("Migration failed", zap.Error(err))
		}
	}

	store := service.NewRecipeService(db)
	n, err := store.UpsertRecipes(ctx, recipes, *batchSize)
	if err != nil {
		logger.Fatal("Failed to import recipes", zap.Error(err))
	}
	total, err := store.Count(ctx)
	if err != nil {
		logger.Warn("Failed to count recipes", zap.Error(err))
	}
	logger.Info("Recipes imported", zap.Int("imported", n), zap.Int64("total", total))
}
