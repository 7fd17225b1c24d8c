package search

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-buddy/backend/internal/model"
	"github.com/pageza/recipe-buddy/backend/internal/nlp"
)

func TestCorpusPreFilter(t *testing.T) {
	c := NewCorpus(testRecipes(), TFIDFOptions{})
	ctx := context.Background()

	ids, err := c.PreFilter(ctx, []string{"Carrot"}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 6}, ids)

	ids, err = c.PreFilter(ctx, []string{"carrot"}, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, ids)

	ids, err = c.PreFilter(ctx, nil, 0)
	require.NoError(t, err)
	assert.Len(t, ids, 6)
}

func TestCorpusNearestByNutrition(t *testing.T) {
	c := NewCorpus(testRecipes(), TFIDFOptions{})

	ids, err := c.NearestByNutrition(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{6, 2}, ids)

	_, err = c.NearestByNutrition(context.Background(), 42, 2)
	assert.ErrorIs(t, err, ErrRecipeNotFound)
}

func TestCorpusDropsDuplicateIDs(t *testing.T) {
	recipes := append(testRecipes(), model.Recipe{ID: 1, Title: "Impostor"})
	c := NewCorpus(recipes, TFIDFOptions{})

	assert.Equal(t, 6, c.Len())
	r, ok := c.Recipe(1)
	require.True(t, ok)
	assert.NotEqual(t, "Impostor", r.Title)
	assert.NotEmpty(t, r.SearchText)
}

func TestCorpusCountCategories(t *testing.T) {
	c := NewCorpus(testRecipes(), TFIDFOptions{})

	counts := map[string]int{}
	for _, cc := range c.CountCategories(nlp.DefaultVocabulary()) {
		counts[cc.Name] = cc.Count
	}
	assert.Equal(t, 2, counts["soup"])
	assert.Equal(t, 2, counts["italian"])
	assert.Equal(t, 1, counts["vegetarian"])
	assert.Equal(t, 3, counts["chicken"])
}

func TestCorpusRandom(t *testing.T) {
	c := NewCorpus(testRecipes(), TFIDFOptions{})
	rng := rand.New(rand.NewSource(1))

	picked := c.Random(3, rng)
	require.Len(t, picked, 3)
	seen := map[int64]bool{}
	for _, r := range picked {
		assert.False(t, seen[r.ID])
		seen[r.ID] = true
	}
	assert.Len(t, c.Random(100, rng), 6)
}

func TestHolderRefreshFailureClearsCorpus(t *testing.T) {
	loader := &staticLoader{recipes: testRecipes()}
	h := NewHolder(loader, TFIDFOptions{})

	_, err := h.Corpus()
	assert.ErrorIs(t, err, ErrCorpusUnavailable)

	c, err := h.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, c.Len())

	loader.err = errStoreDown
	_, err = h.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrCorpusUnavailable)
	_, err = h.Corpus()
	assert.ErrorIs(t, err, ErrCorpusUnavailable)
}

func TestHolderCancelledRefreshKeepsCorpus(t *testing.T) {
	h := NewHolder(&staticLoader{recipes: testRecipes()}, TFIDFOptions{})
	loaded, err := h.Refresh(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = h.Refresh(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrCorpusUnavailable)

	c, err := h.Corpus()
	require.NoError(t, err)
	assert.Same(t, loaded, c)
}

func TestCorpusFingerprint(t *testing.T) {
	a := NewCorpus(testRecipes(), TFIDFOptions{})
	b := NewCorpus(testRecipes(), TFIDFOptions{})
	assert.NotEmpty(t, a.Fingerprint())
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	changed := testRecipes()
	changed[0].Title = "Renamed"
	assert.NotEqual(t, a.Fingerprint(), NewCorpus(changed, TFIDFOptions{}).Fingerprint())
}

func TestLoadWeights(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "weights.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"category": 20, "semantic": 0.5, "rule": 0.5}`), 0o600))
	w, err := LoadWeights(path)
	require.NoError(t, err)
	assert.Equal(t, 20.0, w.Category)
	assert.Equal(t, 0.5, w.Semantic)
	assert.Equal(t, 100.0, w.DishExact)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"semantic": 0.9, "rule": 0.9}`), 0o600))
	_, err = LoadWeights(bad)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{`), 0o600))
	_, err = LoadWeights(broken)
	assert.Error(t, err)

	_, err = LoadWeights(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
