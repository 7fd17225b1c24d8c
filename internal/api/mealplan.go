package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-buddy/backend/internal/mealplan"
)

// MealPlan handles POST /meal-plan.
func (h *Handler) MealPlan(c *gin.Context) {
	var req mealplan.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	plan, err := h.svc.MealPlan(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// QuickMealPlan handles GET /meal-plan/quick?diet=&days=.
func (h *Handler) QuickMealPlan(c *gin.Context) {
	days, ok := queryInt(c, "days", mealplan.DefaultPresetDays)
	if !ok {
		return
	}
	plan, err := h.svc.QuickMealPlan(c.Request.Context(), c.DefaultQuery("diet", "balanced"), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}
