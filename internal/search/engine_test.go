package search

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-buddy/backend/internal/nlp"
)

func TestCheckRejectsOnionPowderAtExcludedStage(t *testing.T) {
	p := nlp.NewParser(nlp.DefaultVocabulary())
	q, err := p.Parse("high protein chicken include tomato no onion")
	require.NoError(t, err)

	r := testRecipes()[1]
	r.Normalize()
	rej := Check(&r, q)
	assert.Equal(t, StageExcluded, rej.Stage)
	assert.Contains(t, rej.Term, "onion")
}

func TestCheckStageOrder(t *testing.T) {
	r := testRecipes()[4] // vegetable soup, no nutrition
	r.Normalize()

	tests := []struct {
		name  string
		q     *nlp.StructuredQuery
		stage Stage
	}{
		{"excluded before nutrition", &nlp.StructuredQuery{
			ExcludedIngredients: []string{"celery"},
			Nutrition:           map[string]nlp.Bound{"protein": {Min: f(10)}},
		}, StageExcluded},
		{"unknown nutrient fails", &nlp.StructuredQuery{
			Nutrition: map[string]nlp.Bound{"calories": {Max: f(500)}},
		}, StageNutrition},
		{"required is conjunctive", &nlp.StructuredQuery{
			Ingredients: []string{"carrot", "beef"},
		}, StageRequired},
		{"dish must appear", &nlp.StructuredQuery{
			Ingredients: []string{"carrot"},
			DishName:    "curry",
		}, StageDish},
		{"passes", &nlp.StructuredQuery{
			Ingredients: []string{"carrot", "celery"},
			DishName:    "soup",
		}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.stage, Check(&r, tt.q).Stage)
		})
	}
}

func TestCheckNutritionBounds(t *testing.T) {
	r := testRecipes()[0]
	r.Normalize()

	assert.True(t, Check(&r, &nlp.StructuredQuery{Nutrition: map[string]nlp.Bound{"protein": {Min: f(18.6)}}}).Passed())
	assert.False(t, Check(&r, &nlp.StructuredQuery{Nutrition: map[string]nlp.Bound{"protein": {Min: f(19)}}}).Passed())
	assert.False(t, Check(&r, &nlp.StructuredQuery{Nutrition: map[string]nlp.Bound{"calories": {Max: f(300)}}}).Passed())
}

func TestSearchScenario(t *testing.T) {
	e := newTestEngine()

	res, err := e.Search(context.Background(), "high protein chicken include tomato no onion", Options{})
	require.NoError(t, err)

	require.Equal(t, 1, res.TotalResults)
	top := res.Results[0]
	assert.Equal(t, int64(1), top.Recipe.ID)
	assert.Equal(t, 97.0, top.RulePoints)
	assert.InDelta(t, 0.97, top.RuleScore, 1e-9)
	assert.Greater(t, top.SemanticScore, 0.0)
}

func TestSearchExclusionInvariant(t *testing.T) {
	e := newTestEngine()

	res, err := e.Search(context.Background(), "chicken without onion", Options{})
	require.NoError(t, err)
	require.NotEmpty(t, res.Results)

	for _, r := range res.Results {
		for _, ex := range res.Query.ExcludedIngredients {
			assert.NotContains(t, r.Recipe.SearchText, ex)
			assert.NotContains(t, r.Recipe.IngredientText(), ex)
		}
	}
}

func TestSearchDishInvariant(t *testing.T) {
	e := newTestEngine()

	res, err := e.Search(context.Background(), "pasta", Options{})
	require.NoError(t, err)
	require.Equal(t, "pasta", res.Query.DishName)
	require.NotEmpty(t, res.Results)

	for _, r := range res.Results {
		inTitle := strings.Contains(strings.ToLower(r.Recipe.Title), "pasta")
		assert.True(t, inTitle || strings.Contains(r.Recipe.SearchText, "pasta"))
	}
}

func TestSearchCombinedScoreLaw(t *testing.T) {
	e := newTestEngine()

	res, err := e.Search(context.Background(), "tomato", Options{})
	require.NoError(t, err)
	require.Equal(t, 3, res.TotalResults)

	for _, r := range res.Results {
		want := math.Min(1, math.Max(0, 0.3*r.SemanticScore+0.7*r.RuleScore))
		assert.InDelta(t, want, r.CombinedScore, 1e-12)
	}
	for i := 1; i < len(res.Results); i++ {
		assert.GreaterOrEqual(t, res.Results[i-1].CombinedScore, res.Results[i].CombinedScore)
	}
}

func TestSearchWithoutSemantic(t *testing.T) {
	e := newTestEngine()

	res, err := e.Search(context.Background(), "tomato", Options{DisableSemantic: true})
	require.NoError(t, err)
	for _, r := range res.Results {
		assert.Zero(t, r.SemanticScore)
		assert.InDelta(t, 0.7*r.RuleScore, r.CombinedScore, 1e-12)
	}
}

func TestSearchNoCandidatesIsEmptyResult(t *testing.T) {
	e := newTestEngine()

	res, err := e.Search(context.Background(), "lobster", Options{})
	require.NoError(t, err)
	assert.Zero(t, res.TotalResults)
	assert.Empty(t, res.Results)
	assert.False(t, res.HasNext)
}

func TestSearchPagination(t *testing.T) {
	e := newTestEngine()

	res, err := e.Search(context.Background(), "easy recipe", Options{MaxResults: 2, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 6, res.TotalResults)
	assert.Len(t, res.Results, 2)
	assert.True(t, res.HasNext)
	assert.True(t, res.HasPrev)

	res, err = e.Search(context.Background(), "easy recipe", Options{MaxResults: 2, Page: 4})
	require.NoError(t, err)
	assert.Empty(t, res.Results)
	assert.False(t, res.HasNext)

	res, err = e.Search(context.Background(), "easy recipe", Options{MaxResults: 500})
	require.NoError(t, err)
	assert.Equal(t, MaxResultsLimit, res.PerPage)

	_, err = e.Search(context.Background(), "easy recipe", Options{Page: -1})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestSearchTieBreakByID(t *testing.T) {
	e := newTestEngine()

	res, err := e.Search(context.Background(), "easy recipe", Options{DisableSemantic: true})
	require.NoError(t, err)
	for i := 1; i < len(res.Results); i++ {
		assert.Less(t, res.Results[i-1].Recipe.ID, res.Results[i].Recipe.ID)
	}
}

func TestSearchParseFailure(t *testing.T) {
	e := newTestEngine()

	_, err := e.Search(context.Background(), "  ", Options{})
	assert.ErrorIs(t, err, nlp.ErrEmptyQuery)
}

func TestSearchCorpusUnavailable(t *testing.T) {
	holder := NewHolder(&staticLoader{err: errStoreDown}, TFIDFOptions{})
	e := NewEngine(holder, nlp.NewParser(nlp.DefaultVocabulary()), DefaultWeights())

	_, err := e.Search(context.Background(), "chicken", Options{})
	assert.ErrorIs(t, err, ErrCorpusUnavailable)
}

type recordingSource struct {
	terms []string
	ids   []int64
}

func (s *recordingSource) PreFilter(ctx context.Context, terms []string, limit int) ([]int64, error) {
	s.terms = terms
	return s.ids, nil
}

func TestSearchUsesCandidateSource(t *testing.T) {
	src := &recordingSource{ids: []int64{6, 99}}
	e := newTestEngine(WithCandidateSource(src))

	res, err := e.Search(context.Background(), "chicken soup", Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"chicken", "soup"}, src.terms)
	require.Equal(t, 1, res.TotalResults)
	assert.Equal(t, int64(6), res.Results[0].Recipe.ID)
}

func TestEngineRecipe(t *testing.T) {
	e := newTestEngine()

	r, err := e.Recipe(3)
	require.NoError(t, err)
	assert.Equal(t, "Creamy Tomato Pasta", r.Title)

	_, err = e.Recipe(404)
	assert.ErrorIs(t, err, ErrRecipeNotFound)
}
