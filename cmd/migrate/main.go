package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/pageza/recipe-buddy/backend/config"
	"github.com/pageza/recipe-buddy/backend/internal/database"
	"github.com/pageza/recipe-buddy/backend/internal/logger"
)

func main() {
	migrationsDir := flag.String("dir", "migrations", "directory holding the *.sql migrations")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Init(string(cfg.Environment), cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	applied, err := database.RunMigrations(db, *migrationsDir)
	if err != nil {
		logger.Fatal("Migration failed", zap.Strings("applied", applied), zap.Error(err))
	}
	logger.Info("All migrations applied successfully", zap.Strings("applied", applied))
}
