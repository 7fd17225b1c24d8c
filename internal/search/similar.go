package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pageza/recipe-buddy/backend/internal/model"
	"github.com/pageza/recipe-buddy/backend/internal/nlp"
)

// Similar-recipe defaults and limits.
const (
	DefaultSimilarLimit    = 10
	MaxSimilarLimit        = 20
	DefaultSimilarMinScore = 0.3
	// NeutralNutritionScore is used when two recipes share no known
	// nutrition field.
	NeutralNutritionScore = 0.5

	similarKeyIngredients = 5
	similarNeighbors      = 50
	maxSimilarReasons     = 3
)

// Similar returns recipes resembling the recipe id, scored as
// SimilarOverlap*ingredientOverlap + SimilarNutrition*nutritionSimilarity.
// minScore must lie in [0, 1].
func (e *Engine) Similar(ctx context.Context, id int64, limit int, minScore float64) ([]SimilarRecipe, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrInvalidParameter)
	}
	if limit == 0 {
		limit = DefaultSimilarLimit
	}
	if limit > MaxSimilarLimit {
		limit = MaxSimilarLimit
	}
	if minScore < 0 || minScore > 1 || math.IsNaN(minScore) {
		return nil, fmt.Errorf("%w: min_score must be between 0 and 1", ErrInvalidParameter)
	}

	c, err := e.holder.Corpus()
	if err != nil {
		return nil, err
	}
	src, ok := c.Recipe(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrRecipeNotFound, id)
	}
	srcIdx := c.index(id)

	ids, err := e.similarCandidates(ctx, c, src)
	if err != nil {
		return nil, err
	}

	keyWords := nlp.KeyIngredientWords(src.Ingredients, similarKeyIngredients)
	out := make([]SimilarRecipe, 0, len(ids))
	for _, cid := range ids {
		if cid == id {
			continue
		}
		cand, ok := c.Recipe(cid)
		if !ok {
			continue
		}
		overlap := c.ingredients.DocSimilarity(srcIdx, c.index(cid))
		nutri := nutritionSimilarity(src.Nutrition, cand.Nutrition)
		score := clamp01(e.weights.SimilarOverlap*overlap + e.weights.SimilarNutrition*nutri)
		if score < minScore {
			continue
		}
		out = append(out, SimilarRecipe{
			Recipe:              cand,
			Similarity:          score,
			IngredientOverlap:   overlap,
			NutritionSimilarity: nutri,
			Reasons:             similarReasons(src, cand, keyWords, overlap),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		if out[i].IngredientOverlap != out[j].IngredientOverlap {
			return out[i].IngredientOverlap > out[j].IngredientOverlap
		}
		return out[i].Recipe.ID < out[j].Recipe.ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// similarCandidates unions the ingredient pre-filter and the nutrition
// neighbours. When both come back empty the whole corpus is scanned.
func (e *Engine) similarCandidates(ctx context.Context, c *Corpus, src *model.Recipe) ([]int64, error) {
	cands := e.candidates
	if cands == nil {
		cands = c
	}
	neigh := e.neighbors
	if neigh == nil {
		neigh = c
	}

	var ids []int64
	seen := map[int64]struct{}{src.ID: {}}
	add := func(list []int64) {
		for _, id := range list {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	if terms := nlp.KeyIngredientWords(src.Ingredients, similarKeyIngredients); len(terms) > 0 {
		byIngredient, err := cands.PreFilter(ctx, terms, e.maxCandidates)
		if err != nil {
			return nil, fmt.Errorf("similar pre-filter failed: %w", err)
		}
		add(byIngredient)
	}
	byNutrition, err := neigh.NearestByNutrition(ctx, src.ID, similarNeighbors)
	if err != nil {
		return nil, fmt.Errorf("nutrition neighbours failed: %w", err)
	}
	add(byNutrition)

	if len(ids) == 0 {
		add(c.IDs())
	}
	return ids, nil
}

// nutritionSimilarity is exp(-d/100) over the fields both recipes know,
// or NeutralNutritionScore when they share none.
func nutritionSimilarity(a, b model.Nutrition) float64 {
	d, shared := a.Distance(b)
	if shared == 0 {
		return NeutralNutritionScore
	}
	return math.Exp(-d / 100)
}

func similarReasons(src, cand *model.Recipe, keyWords []string, overlap float64) []string {
	reasons := newReasons(maxSimilarReasons)

	candText := cand.IngredientText()
	var shared []string
	for _, w := range keyWords {
		if strings.Contains(candText, w) {
			shared = append(shared, w)
			if len(shared) == 3 {
				break
			}
		}
	}
	if len(shared) > 0 {
		reasons.add("Shares ingredients: " + strings.Join(shared, ", "))
	}

	for _, tag := range src.Categories {
		if cand.HasCategory(tag) {
			reasons.add("Same category: " + tag)
			break
		}
	}

	if within(src.Nutrition.Calories, cand.Nutrition.Calories, 0.2) {
		reasons.add("Similar calories")
	}
	if within(src.Nutrition.Protein, cand.Nutrition.Protein, 0.2) {
		reasons.add("Similar protein")
	}
	if overlap > 0.5 {
		reasons.add("High ingredient similarity")
	}

	if len(reasons.list()) == 0 {
		reasons.add("Similar recipe profile")
	}
	return reasons.list()
}

// within reports whether b is within frac of a, relative to a.
func within(a, b *float64, frac float64) bool {
	if a == nil || b == nil || *a <= 0 {
		return false
	}
	return math.Abs(*a-*b) <= frac**a
}
