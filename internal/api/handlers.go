package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-buddy/backend/internal/middleware"
	"github.com/pageza/recipe-buddy/backend/internal/service"
)

// Handler serves the /api/v1 routes.
type Handler struct {
	svc    *service.SearchService
	tokens middleware.TokenValidator

	// onCorpusFailure is told when a reload leaves no corpus loaded.
	onCorpusFailure func(error)
}

// NewHandler creates the API handler. tokens guards the admin routes.
func NewHandler(svc *service.SearchService, tokens middleware.TokenValidator) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

// OnCorpusFailure registers fn to run after a failed corpus reload. The
// server uses it to stop the process, since nothing can be served.
func (h *Handler) OnCorpusFailure(fn func(error)) {
	h.onCorpusFailure = fn
}

// RegisterRoutes registers all API routes on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/search", h.Search)
	rg.GET("/search/simple", h.SimpleSearch)
	rg.POST("/parse", h.Parse)

	recipes := rg.Group("/recipes")
	{
		recipes.GET("/random", h.RandomRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.GET("/:id/similar", h.SimilarRecipes)
	}
	rg.GET("/categories", h.Categories)
	rg.GET("/ingredients", h.Ingredients)

	rg.POST("/meal-plan", h.MealPlan)
	rg.GET("/meal-plan/quick", h.QuickMealPlan)

	rg.GET("/cache/stats", h.CacheStats)

	admin := rg.Group("/admin")
	admin.Use(middleware.AdminAuth(h.tokens))
	{
		admin.DELETE("/cache", h.ClearCache)
		admin.POST("/corpus/reload", h.ReloadCorpus)
	}
}

// queryInt reads an optional integer query parameter.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, name+" must be an integer")
		return 0, false
	}
	return v, true
}

func queryFloat(c *gin.Context, name string, def float64) (float64, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		badRequest(c, name+" must be a number")
		return 0, false
	}
	return v, true
}

func queryBool(c *gin.Context, name string, def bool) (bool, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		badRequest(c, name+" must be a boolean")
		return false, false
	}
	return v, true
}

func recipeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return 0, false
	}
	return id, true
}
