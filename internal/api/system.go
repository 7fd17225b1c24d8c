package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/recipe-buddy/backend/internal/database"
	"github.com/pageza/recipe-buddy/backend/internal/service"
	"github.com/pageza/recipe-buddy/backend/internal/types"
)

const healthTimeout = 2 * time.Second

// SystemHandler serves the unversioned /health and /stats routes.
// db and rdb may be nil when the deployment does not use them.
type SystemHandler struct {
	svc *service.SearchService
	db  *gorm.DB
	rdb *redis.Client
}

func NewSystemHandler(svc *service.SearchService, db *gorm.DB, rdb *redis.Client) *SystemHandler {
	return &SystemHandler{svc: svc, db: db, rdb: rdb}
}

func (h *SystemHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", h.Health)
	r.GET("/stats", h.Stats)
}

// Health reports "healthy" when the corpus and every configured backend
// respond, "degraded" when only a backend is down, and 503 "unhealthy"
// without a corpus.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	resp := types.HealthResponse{Status: "healthy", Checks: map[string]string{}}
	status := http.StatusOK

	if corpus, err := h.svc.Corpus(); err != nil {
		resp.Checks["corpus"] = err.Error()
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	} else {
		resp.Checks["corpus"] = "ok"
		resp.Recipes = corpus.Len()
		loaded := corpus.LoadedAt()
		resp.LoadedAt = &loaded
	}

	if h.db != nil {
		resp.Checks["database"] = checkResult(database.HealthCheck(ctx, h.db))
	}
	if h.rdb != nil {
		resp.Checks["redis"] = checkResult(h.rdb.Ping(ctx).Err())
	}
	if resp.Status == "healthy" {
		for _, v := range resp.Checks {
			if v != "ok" {
				resp.Status = "degraded"
			}
		}
	}
	c.JSON(status, resp)
}

func checkResult(err error) string {
	if err != nil {
		return err.Error()
	}
	return "ok"
}

// Stats reports corpus and index sizes.
func (h *SystemHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
