package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/recipe-buddy/backend/config"
	"github.com/pageza/recipe-buddy/backend/internal/logger"
	"github.com/pageza/recipe-buddy/backend/internal/service"
)

func main() {
	subject := flag.String("subject", "admin", "subject recorded in the token")
	ttl := flag.Duration("ttl", service.DefaultAdminTokenTTL, "token lifetime")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Init(string(cfg.Environment), cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	if err := issue(os.Stdout, cfg.JWTSecret, *subject, *ttl); err != nil {
		logger.Fatal("Failed to issue admin token", zap.Error(err))
	}
	logger.Info("Admin token issued", zap.String("subject", *subject), zap.Duration("ttl", *ttl))
}

// issue writes a signed admin token for subject to w.
func issue(w io.Writer, secret, subject string, ttl time.Duration) error {
	if subject == "" {
		return errors.New("subject is required")
	}
	token, err := service.NewTokenService(secret, ttl).IssueAdminToken(subject)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, token)
	return err
}
