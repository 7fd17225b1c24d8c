package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipe-buddy/backend/internal/logger"
	"github.com/pageza/recipe-buddy/backend/internal/search"
	"github.com/pageza/recipe-buddy/backend/internal/types"
)

func (h *Handler) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.CacheStats())
}

func (h *Handler) ClearCache(c *gin.Context) {
	if err := h.svc.ClearCache(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	logger.Info("Query cache cleared", zap.String("by", c.GetString("admin_subject")))
	c.JSON(http.StatusOK, gin.H{"message": "cache cleared"})
}

// ReloadCorpus rebuilds the corpus from its source. A failed reload leaves
// nothing to serve, so the failure is reported after responding. The reload
// outlives the admin client's connection.
func (h *Handler) ReloadCorpus(c *gin.Context) {
	corpus, err := h.svc.Reload(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		respondError(c, err)
		if errors.Is(err, search.ErrCorpusUnavailable) && h.onCorpusFailure != nil {
			h.onCorpusFailure(err)
		}
		return
	}
	c.JSON(http.StatusOK, types.ReloadResponse{Recipes: corpus.Len(), LoadedAt: corpus.LoadedAt()})
}
