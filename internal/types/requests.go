package types

import (
	"time"

	"github.com/pageza/recipe-buddy/backend/internal/model"
	"github.com/pageza/recipe-buddy/backend/internal/nlp"
	"github.com/pageza/recipe-buddy/backend/internal/search"
)

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
	Page       int    `json:"page"`
	// UseTFIDF defaults to true when omitted.
	UseTFIDF *bool `json:"use_tfidf"`
}

// SearchResponse is one page of ranked results.
type SearchResponse struct {
	Query        string                `json:"query"`
	ParsedQuery  *nlp.StructuredQuery  `json:"parsed_query"`
	TotalResults int                   `json:"total_results"`
	Page         int                   `json:"page"`
	PerPage      int                   `json:"per_page"`
	HasNext      bool                  `json:"has_next"`
	HasPrev      bool                  `json:"has_prev"`
	QueryTimeMs  float64               `json:"query_time_ms"`
	Results      []search.ScoredRecipe `json:"results"`
	Cached       bool                  `json:"cached"`
}

// ParseRequest is the body of POST /parse.
type ParseRequest struct {
	Query string `json:"query"`
}

type ParseResponse struct {
	Query  string               `json:"query"`
	Parsed *nlp.StructuredQuery `json:"parsed"`
}

type SimilarResponse struct {
	RecipeID int64                  `json:"recipe_id"`
	Results  []search.SimilarRecipe `json:"results"`
	Count    int                    `json:"count"`
}

type RandomResponse struct {
	Recipes []*model.Recipe `json:"recipes"`
	Count   int             `json:"count"`
}

type CategoriesResponse struct {
	Categories []search.CategoryCount `json:"categories"`
}

type IngredientsResponse struct {
	Ingredients []string `json:"ingredients"`
	Count       int      `json:"count"`
}

// SlotErrorResponse describes a meal-plan slot no recipe could fill.
type SlotErrorResponse struct {
	Error      string `json:"error"`
	Day        int    `json:"day"`
	Slot       int    `json:"slot"`
	MealType   string `json:"meal_type"`
	Constraint string `json:"constraint"`
}

type ReloadResponse struct {
	Recipes  int       `json:"recipes"`
	LoadedAt time.Time `json:"loaded_at"`
}

type HealthResponse struct {
	Status   string            `json:"status"`
	Checks   map[string]string `json:"checks"`
	Recipes  int               `json:"recipes"`
	LoadedAt *time.Time        `json:"loaded_at,omitempty"`
}

type StatsResponse struct {
	Recipes                  int       `json:"recipes"`
	TextVocabularySize       int       `json:"text_vocabulary_size"`
	IngredientVocabularySize int       `json:"ingredient_vocabulary_size"`
	LoadedAt                 time.Time `json:"loaded_at"`
	CacheEntries             int       `json:"cache_entries"`
}
