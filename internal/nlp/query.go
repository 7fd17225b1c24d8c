package nlp

import (
	"errors"
	"sort"
)

// MaxTerms caps both the required and the excluded ingredient lists.
const MaxTerms = 10

// MaxQueryLength is the longest query text the parser accepts.
const MaxQueryLength = 500

var (
	// ErrEmptyQuery is returned for blank query text.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrQueryTooLong is returned when the query exceeds MaxQueryLength.
	ErrQueryTooLong = errors.New("query is too long")
)

// Bound is an inclusive nutrient range. A nil side is unbounded.
type Bound struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// StructuredQuery is the parsed form of a free-text recipe query.
type StructuredQuery struct {
	OriginalQuery       string           `json:"original_query"`
	CorrectedQuery      string           `json:"corrected_query,omitempty"`
	SpellingCorrections []Correction     `json:"spelling_corrections"`
	DishName            string           `json:"dish_name,omitempty"`
	Ingredients         []string         `json:"ingredients"`
	ExcludedIngredients []string         `json:"excluded_ingredients"`
	Categories          []string         `json:"categories"`
	MealType            string           `json:"meal_type,omitempty"`
	Nutrition           map[string]Bound `json:"nutrition"`
	// SearchTerms is the corrected text with negated clauses removed.
	SearchTerms string `json:"search_terms"`
}

// HasNutrition reports whether any nutrient constraint was extracted.
func (q *StructuredQuery) HasNutrition() bool {
	return len(q.Nutrition) > 0
}

// NutrientNames returns the constrained nutrients in a stable order.
func (q *StructuredQuery) NutrientNames() []string {
	names := make([]string, 0, len(q.Nutrition))
	for n := range q.Nutrition {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SetMin sets the lower bound for nutrient.
func (q *StructuredQuery) SetMin(nutrient string, v float64) {
	q.setBound(nutrient, BoundMin, v)
}

// SetMax sets the upper bound for nutrient.
func (q *StructuredQuery) SetMax(nutrient string, v float64) {
	q.setBound(nutrient, BoundMax, v)
}

func (q *StructuredQuery) setBound(nutrient string, kind BoundKind, v float64) {
	if q.Nutrition == nil {
		q.Nutrition = make(map[string]Bound)
	}
	b := q.Nutrition[nutrient]
	val := v
	if kind == BoundMin {
		b.Min = &val
	} else {
		b.Max = &val
	}
	q.Nutrition[nutrient] = b
}
