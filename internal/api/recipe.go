package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-buddy/backend/internal/search"
	"github.com/pageza/recipe-buddy/backend/internal/types"
)

func (h *Handler) GetRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	recipe, err := h.svc.Recipe(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// SimilarRecipes handles GET /recipes/:id/similar?limit=&min_score=.
func (h *Handler) SimilarRecipes(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", search.DefaultSimilarLimit)
	if !ok {
		return
	}
	minScore, ok := queryFloat(c, "min_score", search.DefaultSimilarMinScore)
	if !ok {
		return
	}
	results, err := h.svc.Similar(c.Request.Context(), id, limit, minScore)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.SimilarResponse{RecipeID: id, Results: results, Count: len(results)})
}

func (h *Handler) RandomRecipes(c *gin.Context) {
	count, ok := queryInt(c, "count", 0)
	if !ok {
		return
	}
	recipes, err := h.svc.Random(count)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.RandomResponse{Recipes: recipes, Count: len(recipes)})
}

func (h *Handler) Categories(c *gin.Context) {
	cats, err := h.svc.Categories()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.CategoriesResponse{Categories: cats})
}

func (h *Handler) Ingredients(c *gin.Context) {
	ings := h.svc.Ingredients()
	c.JSON(http.StatusOK, types.IngredientsResponse{Ingredients: ings, Count: len(ings)})
}
