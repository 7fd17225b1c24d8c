package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pageza/recipe-buddy/backend/internal/model"
	"github.com/pageza/recipe-buddy/backend/internal/nlp"
)

// DefaultMaxCandidates bounds the pre-filtered candidate set.
const DefaultMaxCandidates = 5000

// Engine runs the parse, filter, score and rank pipeline over the
// corpus published by a Holder.
type Engine struct {
	holder        *Holder
	parser        *nlp.Parser
	scorer        *Scorer
	weights       Weights
	candidates    CandidateSource
	neighbors     NeighborSource
	maxCandidates int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCandidateSource routes the pre-filter to an external store instead
// of the in-memory corpus.
func WithCandidateSource(src CandidateSource) EngineOption {
	return func(e *Engine) { e.candidates = src }
}

// WithNeighborSource routes nutrition nearest-neighbour lookups to an
// external store.
func WithNeighborSource(src NeighborSource) EngineOption {
	return func(e *Engine) { e.neighbors = src }
}

// WithMaxCandidates sets the pre-filter limit.
func WithMaxCandidates(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxCandidates = n
		}
	}
}

// NewEngine creates a search engine.
func NewEngine(holder *Holder, parser *nlp.Parser, w Weights, opts ...EngineOption) *Engine {
	e := &Engine{
		holder:        holder,
		parser:        parser,
		scorer:        NewScorer(w),
		weights:       w,
		maxCandidates: DefaultMaxCandidates,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Parser returns the engine's query parser.
func (e *Engine) Parser() *nlp.Parser {
	return e.parser
}

// Scorer returns the engine's rule scorer.
func (e *Engine) Scorer() *Scorer {
	return e.scorer
}

// Holder returns the corpus holder.
func (e *Engine) Holder() *Holder {
	return e.holder
}

// Parse runs spell correction and parsing only.
func (e *Engine) Parse(text string) (*nlp.StructuredQuery, error) {
	return e.parser.Parse(text)
}

// Recipe looks up a recipe by id in the current corpus.
func (e *Engine) Recipe(id int64) (*model.Recipe, error) {
	c, err := e.holder.Corpus()
	if err != nil {
		return nil, err
	}
	r, ok := c.Recipe(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrRecipeNotFound, id)
	}
	return r, nil
}

// Search parses text and returns the requested page of ranked results.
func (e *Engine) Search(ctx context.Context, text string, opts Options) (*Result, error) {
	q, err := e.parser.Parse(text)
	if err != nil {
		return nil, err
	}
	return e.SearchQuery(ctx, q, opts)
}

// SearchQuery runs the pipeline for an already parsed query.
func (e *Engine) SearchQuery(ctx context.Context, q *nlp.StructuredQuery, opts Options) (*Result, error) {
	start := time.Now()
	opts, err := NormalizeOptions(opts)
	if err != nil {
		return nil, err
	}
	c, err := e.holder.Corpus()
	if err != nil {
		return nil, err
	}

	survivors, err := e.candidateRecipes(ctx, c, q)
	if err != nil {
		return nil, err
	}
	survivors = Filter(survivors, q)

	scored, err := e.score(ctx, c, q, survivors, !opts.DisableSemantic)
	if err != nil {
		return nil, err
	}
	SortScored(scored)

	res := paginate(scored, opts)
	res.Query = q
	res.QueryTime = time.Since(start)
	return res, nil
}

// PreFilterTerms returns the terms every survivor must contain at least
// one of: the required ingredients and the dish name. Survivors contain
// all of them, so using "any" never drops a recipe the filter would keep.
func PreFilterTerms(q *nlp.StructuredQuery) []string {
	terms := append([]string(nil), q.Ingredients...)
	if q.DishName != "" {
		terms = append(terms, q.DishName)
	}
	return terms
}

func (e *Engine) candidateRecipes(ctx context.Context, c *Corpus, q *nlp.StructuredQuery) ([]*model.Recipe, error) {
	src := e.candidates
	if src == nil {
		src = c
	}
	ids, err := src.PreFilter(ctx, PreFilterTerms(q), e.maxCandidates)
	if err != nil {
		return nil, fmt.Errorf("candidate pre-filter failed: %w", err)
	}
	return c.Resolve(ids), nil
}

// score computes rule and semantic scores concurrently and combines them.
func (e *Engine) score(ctx context.Context, c *Corpus, q *nlp.StructuredQuery, recipes []*model.Recipe, semantic bool) ([]ScoredRecipe, error) {
	scored := make([]ScoredRecipe, len(recipes))
	semScores := make([]float64, len(recipes))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for i, r := range recipes {
			if i%256 == 0 {
				if err := gctx.Err(); err != nil {
					return err
				}
			}
			points, reasons := e.scorer.Score(r, q)
			scored[i] = ScoredRecipe{
				Recipe:       r,
				RulePoints:   points,
				RuleScore:    RuleScore(points),
				MatchReasons: reasons,
			}
		}
		return nil
	})
	if semantic {
		g.Go(func() error {
			qv := c.text.Vectorize(q.SearchTerms)
			if len(qv) == 0 {
				return nil
			}
			all := c.text.Scores(qv)
			for i, r := range recipes {
				if idx := c.index(r.ID); idx >= 0 {
					semScores[i] = all[idx]
				}
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range scored {
		scored[i].SemanticScore = semScores[i]
		scored[i].CombinedScore = Combine(e.weights, semScores[i], scored[i].RuleScore)
	}
	return scored, nil
}

// SortScored orders by combined score, then rule score, both descending,
// then by ascending id.
func SortScored(s []ScoredRecipe) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].CombinedScore != s[j].CombinedScore {
			return s[i].CombinedScore > s[j].CombinedScore
		}
		if s[i].RuleScore != s[j].RuleScore {
			return s[i].RuleScore > s[j].RuleScore
		}
		return s[i].Recipe.ID < s[j].Recipe.ID
	})
}

// NormalizeOptions applies paging defaults and the result cap.
func NormalizeOptions(o Options) (Options, error) {
	if o.MaxResults < 0 {
		return o, fmt.Errorf("%w: max_results must be positive", ErrInvalidParameter)
	}
	if o.Page < 0 {
		return o, fmt.Errorf("%w: page must be at least 1", ErrInvalidParameter)
	}
	if o.MaxResults == 0 {
		o.MaxResults = DefaultMaxResults
	}
	if o.MaxResults > MaxResultsLimit {
		o.MaxResults = MaxResultsLimit
	}
	if o.Page == 0 {
		o.Page = 1
	}
	return o, nil
}

func paginate(all []ScoredRecipe, o Options) *Result {
	total := len(all)
	from := (o.Page - 1) * o.MaxResults
	if from > total {
		from = total
	}
	to := from + o.MaxResults
	if to > total {
		to = total
	}
	return &Result{
		Results:      append([]ScoredRecipe{}, all[from:to]...),
		TotalResults: total,
		Page:         o.Page,
		PerPage:      o.MaxResults,
		HasNext:      o.Page*o.MaxResults < total,
		HasPrev:      o.Page > 1,
	}
}
