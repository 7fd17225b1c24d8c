package mealplan

import (
	"errors"
	"fmt"
	"time"

	"github.com/pageza/recipe-buddy/backend/internal/model"
)

// Request limits.
const (
	MinDays        = 1
	MaxDays        = 7
	MinMealsPerDay = 2
	MaxMealsPerDay = 4

	DefaultVarietyWeight = 0.5
)

// ErrInvalidRequest is returned for out-of-range or unknown parameters.
var ErrInvalidRequest = errors.New("invalid meal plan request")

// SlotUnfillableError reports a meal slot that no recipe in the corpus can
// fill under the request's hard constraints.
type SlotUnfillableError struct {
	Day        int    `json:"day"`
	Slot       int    `json:"slot"`
	MealType   string `json:"meal_type"`
	Constraint string `json:"constraint"`
}

func (e *SlotUnfillableError) Error() string {
	return fmt.Sprintf("no recipe can fill day %d slot %d (%s) under constraint %q", e.Day, e.Slot, e.MealType, e.Constraint)
}

// Goals are daily nutrition targets. Zero means "no goal" for that nutrient.
type Goals struct {
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein"`
	Fat       float64 `json:"fat"`
	Sodium    float64 `json:"sodium"`
	Sugar     float64 `json:"sugar,omitempty"`
	Saturates float64 `json:"saturates,omitempty"`
}

// DefaultGoals returns the standard daily targets.
func DefaultGoals() Goals {
	return Goals{Calories: 2000, Protein: 75, Fat: 65, Sodium: 2300}
}

func (g Goals) get(name string) float64 {
	switch name {
	case "calories":
		return g.Calories
	case "protein":
		return g.Protein
	case "fat":
		return g.Fat
	case "sodium":
		return g.Sodium
	case "sugar":
		return g.Sugar
	case "saturates":
		return g.Saturates
	}
	return 0
}

// Request holds the generation parameters.
type Request struct {
	Days          int      `json:"days"`
	MealsPerDay   int      `json:"meals_per_day"`
	Preferences   []string `json:"preferences,omitempty"`
	Goals         *Goals   `json:"nutrition_goals,omitempty"`
	VarietyWeight *float64 `json:"variety_weight,omitempty"`
}

// Meal is one filled slot.
type Meal struct {
	Slot      int             `json:"slot"`
	MealType  string          `json:"meal_type"`
	RecipeID  int64           `json:"recipe_id"`
	Title     string          `json:"title"`
	Nutrition model.Nutrition `json:"nutrition"`
	Score     float64         `json:"score"`
}

// DayPlan is one day of a plan.
type DayPlan struct {
	Day    int             `json:"day"`
	Date   string          `json:"date"`
	Meals  []Meal          `json:"meals"`
	Totals model.Nutrition `json:"totals"`
}

// Summary aggregates a plan.
type Summary struct {
	Total           model.Nutrition    `json:"total"`
	DailyAverage    model.Nutrition    `json:"daily_average"`
	GoalAchievement map[string]float64 `json:"goal_achievement"`
	DistinctRecipes int                `json:"distinct_recipes"`
}

// Plan is a generated meal plan. It is never persisted.
type Plan struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	Request     Request   `json:"request"`
	Days        []DayPlan `json:"days"`
	Summary     Summary   `json:"summary"`
	Warnings    []string  `json:"warnings,omitempty"`
}
