package search

import (
	"time"

	"github.com/pageza/recipe-buddy/backend/internal/model"
	"github.com/pageza/recipe-buddy/backend/internal/nlp"
)

// Paging limits.
const (
	DefaultMaxResults = 20
	MaxResultsLimit   = 100
)

// Options controls one search request.
type Options struct {
	MaxResults int
	Page       int
	// DisableSemantic skips TF-IDF scoring; semantic scores are then 0.
	DisableSemantic bool
}

// ScoredRecipe is a hard-filter survivor with its scores.
type ScoredRecipe struct {
	Recipe        *model.Recipe `json:"recipe"`
	RulePoints    float64       `json:"rule_points"`
	RuleScore     float64       `json:"rule_score"`
	SemanticScore float64       `json:"semantic_score"`
	CombinedScore float64       `json:"combined_score"`
	MatchReasons  []string      `json:"match_reasons"`
}

// Result is one page of a ranked search. An empty Results with
// TotalResults 0 is the normal outcome when nothing survives filtering.
type Result struct {
	Query        *nlp.StructuredQuery `json:"parsed_query"`
	Results      []ScoredRecipe       `json:"results"`
	TotalResults int                  `json:"total_results"`
	Page         int                  `json:"page"`
	PerPage      int                  `json:"per_page"`
	HasNext      bool                 `json:"has_next"`
	HasPrev      bool                 `json:"has_prev"`
	QueryTime    time.Duration        `json:"-"`
}

// SimilarRecipe is a recommendation relative to a source recipe.
type SimilarRecipe struct {
	Recipe              *model.Recipe `json:"recipe"`
	Similarity          float64       `json:"similarity"`
	IngredientOverlap   float64       `json:"ingredient_overlap"`
	NutritionSimilarity float64       `json:"nutrition_similarity"`
	Reasons             []string      `json:"reasons"`
}
