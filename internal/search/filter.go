package search

import (
	"strings"

	"github.com/pageza/recipe-buddy/backend/internal/model"
	"github.com/pageza/recipe-buddy/backend/internal/nlp"
)

// Stage names a hard-filter step.
type Stage string

const (
	StageExcluded  Stage = "excluded"
	StageNutrition Stage = "nutrition"
	StageRequired  Stage = "required"
	StageDish      Stage = "dish"
)

// Rejection says which stage eliminated a recipe and on which term. The
// zero value means the recipe passed.
type Rejection struct {
	Stage Stage  `json:"stage,omitempty"`
	Term  string `json:"term,omitempty"`
}

// Passed reports whether the recipe survived every stage.
func (r Rejection) Passed() bool {
	return r.Stage == ""
}

// Check runs the hard filter stages in order and stops at the first
// failure: excluded ingredients, nutrition bounds, required ingredients,
// dish name.
func Check(r *model.Recipe, q *nlp.StructuredQuery) Rejection {
	title := strings.ToLower(r.Title)
	text := r.SearchText
	if text == "" {
		text = model.BuildSearchText(r.Title, r.Ingredients, r.Description)
	}

	if len(q.ExcludedIngredients) > 0 {
		ingredients := r.IngredientText()
		for _, term := range q.ExcludedIngredients {
			t := strings.ToLower(term)
			if strings.Contains(ingredients, t) || strings.Contains(text, t) || strings.Contains(title, t) {
				return Rejection{Stage: StageExcluded, Term: term}
			}
		}
	}

	for _, name := range q.NutrientNames() {
		b := q.Nutrition[name]
		v, ok := r.Nutrition.Get(name)
		if !ok {
			return Rejection{Stage: StageNutrition, Term: name}
		}
		if b.Min != nil && v < *b.Min {
			return Rejection{Stage: StageNutrition, Term: name}
		}
		if b.Max != nil && v > *b.Max {
			return Rejection{Stage: StageNutrition, Term: name}
		}
	}

	for _, ing := range q.Ingredients {
		t := strings.ToLower(ing)
		if !strings.Contains(title, t) && !strings.Contains(text, t) {
			return Rejection{Stage: StageRequired, Term: ing}
		}
	}

	if q.DishName != "" {
		d := strings.ToLower(q.DishName)
		if !strings.Contains(title, d) && !strings.Contains(text, d) {
			return Rejection{Stage: StageDish, Term: q.DishName}
		}
	}

	return Rejection{}
}

// Filter returns the recipes that pass Check, in input order.
func Filter(recipes []*model.Recipe, q *nlp.StructuredQuery) []*model.Recipe {
	out := make([]*model.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if Check(r, q).Passed() {
			out = append(out, r)
		}
	}
	return out
}
