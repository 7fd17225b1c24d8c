package search

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// Weights is the tunable point table of the rule scorer and the blend
// factors of the combiners. Values are points out of 100 unless noted.
type Weights struct {
	DishExact          float64 `json:"dish_exact"`
	DishTitleStart     float64 `json:"dish_title_start"`
	DishTitleEnd       float64 `json:"dish_title_end"`
	DishTitleMiddle    float64 `json:"dish_title_middle"`
	DishTitlePhrase    float64 `json:"dish_title_phrase"`
	DishTitleSubstring float64 `json:"dish_title_substring"`
	DishText           float64 `json:"dish_text"`

	IngredientTitle        float64   `json:"ingredient_title"`
	IngredientPosition     []float64 `json:"ingredient_position"`
	IngredientPositionLate float64   `json:"ingredient_position_late"`
	IngredientSubstring    float64   `json:"ingredient_substring"`
	IngredientText         float64   `json:"ingredient_text"`

	Combo           float64 `json:"combo"`
	Proximity       float64 `json:"proximity"`
	ProximityWindow int     `json:"proximity_window"`

	Category  float64 `json:"category"`
	MealType  float64 `json:"meal_type"`
	Nutrition float64 `json:"nutrition"`

	// Blend factors, fractions of 1.
	Semantic         float64 `json:"semantic"`
	Rule             float64 `json:"rule"`
	SimilarOverlap   float64 `json:"similar_overlap"`
	SimilarNutrition float64 `json:"similar_nutrition"`
}

// DefaultWeights returns the built-in scoring table.
func DefaultWeights() Weights {
	return Weights{
		DishExact:          100,
		DishTitleStart:     60,
		DishTitleEnd:       65,
		DishTitleMiddle:    55,
		DishTitlePhrase:    50,
		DishTitleSubstring: 35,
		DishText:           20,

		IngredientTitle:        15,
		IngredientPosition:     []float64{10, 8, 5},
		IngredientPositionLate: 2,
		IngredientSubstring:    5,
		IngredientText:         10,

		Combo:           20,
		Proximity:       10,
		ProximityWindow: 2,

		Category:  12,
		MealType:  15,
		Nutrition: 20,

		Semantic:         0.3,
		Rule:             0.7,
		SimilarOverlap:   0.7,
		SimilarNutrition: 0.3,
	}
}

// LoadWeights reads a JSON settings file on top of the defaults. Keys
// missing from the file keep their default value.
func LoadWeights(path string) (Weights, error) {
	w := DefaultWeights()
	data, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("failed to read weights file: %w", err)
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return w, fmt.Errorf("failed to parse weights file: %w", err)
	}
	if err := w.Validate(); err != nil {
		return w, err
	}
	return w, nil
}

// Validate rejects tables that would break the [0, 1] score range.
func (w Weights) Validate() error {
	if w.Semantic < 0 || w.Rule < 0 || w.Semantic+w.Rule > 1.000001 {
		return fmt.Errorf("%w: semantic and rule blend must be non-negative and sum to at most 1", ErrInvalidParameter)
	}
	if w.SimilarOverlap < 0 || w.SimilarNutrition < 0 || w.SimilarOverlap+w.SimilarNutrition > 1.000001 {
		return fmt.Errorf("%w: similar-recipe blend must be non-negative and sum to at most 1", ErrInvalidParameter)
	}
	if w.ProximityWindow < 0 {
		return fmt.Errorf("%w: proximity window must be non-negative", ErrInvalidParameter)
	}
	return nil
}

func (w Weights) positionBonus(index int) float64 {
	if index < len(w.IngredientPosition) {
		return w.IngredientPosition[index]
	}
	return w.IngredientPositionLate
}
