package search

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/pageza/recipe-buddy/backend/internal/model"
	"github.com/pageza/recipe-buddy/backend/internal/nlp"
)

// Loader fetches the full recipe corpus from its store.
type Loader interface {
	LoadRecipes(ctx context.Context) ([]model.Recipe, error)
}

// CandidateSource narrows the corpus before hard filtering. It returns
// the ids of recipes whose searchable text contains at least one of
// terms, or every recipe when terms is empty. limit <= 0 means no limit.
type CandidateSource interface {
	PreFilter(ctx context.Context, terms []string, limit int) ([]int64, error)
}

// NeighborSource returns recipes closest to id in nutrition space,
// excluding id itself.
type NeighborSource interface {
	NearestByNutrition(ctx context.Context, id int64, limit int) ([]int64, error)
}

// Corpus is an immutable recipe set with its precomputed vector spaces.
// Build a new Corpus to change anything; never modify one in place.
type Corpus struct {
	recipes     []model.Recipe
	byID        map[int64]int
	text        *TFIDFIndex
	ingredients *TFIDFIndex
	loadedAt    time.Time
	fingerprint string
}

// NewCorpus copies and normalises recipes and builds both TF-IDF indexes:
// one over searchable text plus tags, one over ingredient lines only.
// Duplicate ids keep their first occurrence.
func NewCorpus(recipes []model.Recipe, opts TFIDFOptions) *Corpus {
	c := &Corpus{
		recipes:  make([]model.Recipe, 0, len(recipes)),
		byID:     make(map[int64]int, len(recipes)),
		loadedAt: time.Now(),
	}
	for _, r := range recipes {
		if _, dup := c.byID[r.ID]; dup {
			continue
		}
		r.Normalize()
		c.byID[r.ID] = len(c.recipes)
		c.recipes = append(c.recipes, r)
	}

	textDocs := make([]string, len(c.recipes))
	ingDocs := make([]string, len(c.recipes))
	for i := range c.recipes {
		r := &c.recipes[i]
		textDocs[i] = r.SearchText + " " + strings.Join(r.Categories, " ")
		ingDocs[i] = r.IngredientText()
	}
	c.text = BuildTFIDF(textDocs, opts)
	c.ingredients = BuildTFIDF(ingDocs, opts)
	c.fingerprint = fingerprint(c.recipes)
	return c
}

// fingerprint hashes the recipe content so replicas that loaded the same
// data agree on it and any change to the data changes it.
func fingerprint(recipes []model.Recipe) string {
	d := xxhash.New()
	for i := range recipes {
		r := &recipes[i]
		_, _ = d.WriteString(strconv.FormatInt(r.ID, 10))
		_, _ = d.WriteString("\x00" + r.Title + "\x00" + r.IngredientText() + "\x00")
	}
	return strconv.FormatUint(d.Sum64(), 16)
}

// Len returns the number of recipes.
func (c *Corpus) Len() int {
	return len(c.recipes)
}

// Fingerprint identifies the recipe data the corpus was built from.
func (c *Corpus) Fingerprint() string {
	return c.fingerprint
}

// LoadedAt is the corpus build time.
func (c *Corpus) LoadedAt() time.Time {
	return c.loadedAt
}

// VocabularySize is the size of the searchable-text index.
func (c *Corpus) VocabularySize() int {
	return c.text.VocabularySize()
}

// IngredientVocabularySize is the size of the ingredient-only index.
func (c *Corpus) IngredientVocabularySize() int {
	return c.ingredients.VocabularySize()
}

// Recipe returns the recipe with the given id. The pointer is shared and
// must not be modified.
func (c *Corpus) Recipe(id int64) (*model.Recipe, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &c.recipes[i], true
}

// At returns the i-th recipe in corpus order.
func (c *Corpus) At(i int) *model.Recipe {
	return &c.recipes[i]
}

func (c *Corpus) index(id int64) int {
	if i, ok := c.byID[id]; ok {
		return i
	}
	return -1
}

// IDs returns every recipe id in corpus order.
func (c *Corpus) IDs() []int64 {
	ids := make([]int64, len(c.recipes))
	for i := range c.recipes {
		ids[i] = c.recipes[i].ID
	}
	return ids
}

// Resolve maps ids to corpus recipes, dropping ids the corpus does not
// know. Order is preserved.
func (c *Corpus) Resolve(ids []int64) []*model.Recipe {
	out := make([]*model.Recipe, 0, len(ids))
	for _, id := range ids {
		if r, ok := c.Recipe(id); ok {
			out = append(out, r)
		}
	}
	return out
}

// PreFilter implements CandidateSource with a substring scan.
func (c *Corpus) PreFilter(ctx context.Context, terms []string, limit int) ([]int64, error) {
	lowered := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			lowered = append(lowered, t)
		}
	}

	var ids []int64
	for i := range c.recipes {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		r := &c.recipes[i]
		if len(lowered) > 0 && !containsAny(r.SearchText, lowered) {
			continue
		}
		ids = append(ids, r.ID)
		if limit > 0 && len(ids) >= limit {
			break
		}
	}
	return ids, nil
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// NearestByNutrition implements NeighborSource with a linear scan using
// euclidean distance over the stored nutrition vectors, the same metric
// as the pgvector <-> operator.
func (c *Corpus) NearestByNutrition(ctx context.Context, id int64, limit int) ([]int64, error) {
	src, ok := c.Recipe(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrRecipeNotFound, id)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sv := src.NutritionVector.Slice()

	type neighbor struct {
		id   int64
		dist float64
	}
	ns := make([]neighbor, 0, len(c.recipes))
	for i := range c.recipes {
		r := &c.recipes[i]
		if r.ID == id {
			continue
		}
		ns = append(ns, neighbor{id: r.ID, dist: model.VectorDistance(sv, r.NutritionVector.Slice())})
	}
	sort.Slice(ns, func(i, j int) bool {
		if ns[i].dist != ns[j].dist {
			return ns[i].dist < ns[j].dist
		}
		return ns[i].id < ns[j].id
	})
	if limit > 0 && len(ns) > limit {
		ns = ns[:limit]
	}
	ids := make([]int64, len(ns))
	for i, n := range ns {
		ids[i] = n.id
	}
	return ids, nil
}

// Random returns up to n distinct recipes drawn with rng.
func (c *Corpus) Random(n int, rng *rand.Rand) []*model.Recipe {
	if n > len(c.recipes) {
		n = len(c.recipes)
	}
	out := make([]*model.Recipe, 0, n)
	for _, i := range rng.Perm(len(c.recipes))[:n] {
		out = append(out, &c.recipes[i])
	}
	return out
}

// CategoryCount is the number of recipes that match a category label.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CountCategories counts, for every vocabulary category, the recipes
// tagged with it or mentioning it as a word.
func (c *Corpus) CountCategories(vocab *nlp.Vocabulary) []CategoryCount {
	names := vocab.CategoryNames()
	out := make([]CategoryCount, len(names))
	for i, n := range names {
		out[i].Name = n
	}
	for i := range c.recipes {
		r := &c.recipes[i]
		tokens := nlp.Tokenize(r.SearchText)
		for j, n := range names {
			if tagOrWord(r, tokens, n) {
				out[j].Count++
			}
		}
	}
	return out
}

// Holder publishes the current corpus. Readers never block; Refresh
// builds a complete replacement before swapping it in.
type Holder struct {
	current atomic.Pointer[Corpus]
	loader  Loader
	opts    TFIDFOptions
	mu      sync.Mutex
}

// NewHolder creates an empty holder. Call Refresh before serving.
func NewHolder(loader Loader, opts TFIDFOptions) *Holder {
	return &Holder{loader: loader, opts: opts}
}

// Corpus returns the published corpus or ErrCorpusUnavailable.
func (h *Holder) Corpus() (*Corpus, error) {
	c := h.current.Load()
	if c == nil {
		return nil, ErrCorpusUnavailable
	}
	return c, nil
}

// Set publishes c directly.
func (h *Holder) Set(c *Corpus) {
	h.current.Store(c)
}

// Refresh reloads the corpus from the loader. On failure the holder is
// cleared so no outdated vector space keeps being served, and the error
// wraps ErrCorpusUnavailable. A load abandoned because ctx was cancelled
// says nothing about the source, so it keeps the current corpus and returns
// the context error instead.
func (h *Holder) Refresh(ctx context.Context) (*Corpus, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.loader == nil {
		h.current.Store(nil)
		return nil, fmt.Errorf("%w: no loader configured", ErrCorpusUnavailable)
	}
	recipes, err := h.loader.LoadRecipes(ctx)
	if err != nil && errors.Is(err, context.Canceled) {
		return nil, fmt.Errorf("corpus refresh abandoned: %w", err)
	}
	if err != nil {
		h.current.Store(nil)
		return nil, fmt.Errorf("%w: %v", ErrCorpusUnavailable, err)
	}
	c := NewCorpus(recipes, h.opts)
	h.current.Store(c)
	return c, nil
}
