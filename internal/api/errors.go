package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipe-buddy/backend/internal/logger"
	"github.com/pageza/recipe-buddy/backend/internal/mealplan"
	"github.com/pageza/recipe-buddy/backend/internal/middleware"
	"github.com/pageza/recipe-buddy/backend/internal/nlp"
	"github.com/pageza/recipe-buddy/backend/internal/search"
	"github.com/pageza/recipe-buddy/backend/internal/types"
)

// respondError maps service errors to HTTP statuses.
func respondError(c *gin.Context, err error) {
	var slotErr *mealplan.SlotUnfillableError
	switch {
	case errors.As(err, &slotErr):
		c.JSON(http.StatusUnprocessableEntity, types.SlotErrorResponse{
			Error:      slotErr.Error(),
			Day:        slotErr.Day,
			Slot:       slotErr.Slot,
			MealType:   slotErr.MealType,
			Constraint: slotErr.Constraint,
		})
	case errors.Is(err, nlp.ErrEmptyQuery),
		errors.Is(err, nlp.ErrQueryTooLong),
		errors.Is(err, search.ErrInvalidParameter),
		errors.Is(err, mealplan.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, search.ErrRecipeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
	case errors.Is(err, search.ErrCorpusUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request cancelled"})
	default:
		logger.Error("Unhandled request error",
			zap.Error(err),
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(middleware.RequestIDKey)))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
	_ = c.Error(err)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
