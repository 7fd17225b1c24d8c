package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/pageza/recipe-buddy/backend/config"
	"github.com/pageza/recipe-buddy/backend/internal/logger"
	"github.com/pageza/recipe-buddy/backend/internal/model"
	"github.com/pageza/recipe-buddy/backend/internal/search"
)

// SnapshotLoader loads the corpus from a snapshot file or an s3:// object.
type SnapshotLoader struct {
	source string
	s3     *config.S3Config
}

var _ search.Loader = (*SnapshotLoader)(nil)

// NewSnapshotLoader creates a loader for source. s3cfg is only needed for
// s3:// sources.
func NewSnapshotLoader(source string, s3cfg *config.S3Config) *SnapshotLoader {
	return &SnapshotLoader{source: source, s3: s3cfg}
}

// LoadRecipes reads and decodes the snapshot.
func (l *SnapshotLoader) LoadRecipes(ctx context.Context) ([]model.Recipe, error) {
	rc, name, err := l.open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	recipes, err := Decode(ctx, rc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	logger.Info("Loaded recipe snapshot", zap.String("source", name), zap.Int("recipes", len(recipes)))
	return recipes, nil
}

func (l *SnapshotLoader) open(ctx context.Context) (io.ReadCloser, string, error) {
	if bucket, key, ok := config.ParseS3URI(l.source); ok {
		if l.s3 == nil {
			return nil, l.source, errors.New("s3 snapshot source requires S3 configuration")
		}
		rc, err := l.s3.Open(ctx, bucket, key)
		return rc, l.source, err
	}

	// A missing plain path falls back to its gzipped sibling.
	candidates := []string{l.source}
	if !strings.HasSuffix(l.source, ".gz") {
		candidates = append(candidates, l.source+".gz")
	}
	for _, path := range candidates {
		f, err := os.Open(path)
		if err == nil {
			return f, path, nil
		}
		if !os.IsNotExist(err) {
			return nil, path, fmt.Errorf("failed to open snapshot: %w", err)
		}
	}
	return nil, l.source, fmt.Errorf("snapshot not found: %s", l.source)
}
