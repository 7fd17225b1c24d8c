package search

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pageza/recipe-buddy/backend/internal/model"
	"github.com/pageza/recipe-buddy/backend/internal/nlp"
)

// MaxMatchReasons caps the reasons attached to a scored recipe.
const MaxMatchReasons = 4

// Scorer computes the additive rule score of a recipe against a parsed
// query. It is stateless and safe for concurrent use.
type Scorer struct {
	w Weights
}

// NewScorer creates a scorer with the given point table.
func NewScorer(w Weights) *Scorer {
	return &Scorer{w: w}
}

// Weights returns the scorer's point table.
func (s *Scorer) Weights() Weights {
	return s.w
}

// Score returns the raw points of r for q together with the reasons that
// produced them. Points may exceed 100; see RuleScore.
func (s *Scorer) Score(r *model.Recipe, q *nlp.StructuredQuery) (float64, []string) {
	title := strings.ToLower(r.Title)
	words := titleWords(title)
	text := r.SearchText
	if text == "" {
		text = model.BuildSearchText(r.Title, r.Ingredients, r.Description)
	}

	var points float64
	reasons := newReasons(MaxMatchReasons)

	dishIdx := -1
	dishInTitle := false
	if q.DishName != "" {
		dish := strings.ToLower(q.DishName)
		pts, idx, inTitle := s.dishPoints(title, words, text, dish)
		points += pts
		dishIdx, dishInTitle = idx, inTitle
		switch {
		case inTitle:
			reasons.add(fmt.Sprintf("Title matches %q", q.DishName))
		case pts > 0:
			reasons.add(fmt.Sprintf("Mentions %s", q.DishName))
		}
	}

	var titleHits []int
	anyInTitle := false
	for _, ing := range q.Ingredients {
		t := strings.ToLower(ing)
		if idx := phraseIndex(words, strings.Fields(t)); idx >= 0 {
			points += s.w.IngredientTitle + s.w.positionBonus(idx)
			titleHits = append(titleHits, idx)
			anyInTitle = true
			reasons.add(fmt.Sprintf("%s in title", ing))
		} else if strings.Contains(title, t) {
			points += s.w.IngredientTitle + s.w.IngredientSubstring
			anyInTitle = true
			reasons.add(fmt.Sprintf("%s in title", ing))
		}
		if strings.Contains(text, t) {
			points += s.w.IngredientText
			reasons.add(fmt.Sprintf("Contains %s", ing))
		}
	}

	if dishInTitle && anyInTitle {
		points += s.w.Combo
		reasons.add("Dish and ingredient in title")
		if dishIdx >= 0 {
			for _, i := range titleHits {
				if absInt(i-dishIdx) <= s.w.ProximityWindow {
					points += s.w.Proximity
					break
				}
			}
		}
	}

	var textTokens []string
	if len(q.Categories) > 0 || q.MealType != "" {
		textTokens = nlp.Tokenize(text)
	}
	for _, c := range q.Categories {
		if tagOrWord(r, textTokens, c) {
			points += s.w.Category
			reasons.add(fmt.Sprintf("Category: %s", c))
		}
	}
	if q.MealType != "" && tagOrWord(r, textTokens, q.MealType) {
		points += s.w.MealType
		reasons.add(fmt.Sprintf("Meal type: %s", q.MealType))
	}

	if q.HasNutrition() {
		points += s.w.Nutrition
		reasons.add("Meets nutrition goals")
	}

	return points, reasons.list()
}

// dishPoints grades the dish match. idx is the title word index of a
// whole-word match, or -1.
func (s *Scorer) dishPoints(title string, words []string, text, dish string) (pts float64, idx int, inTitle bool) {
	if strings.TrimSpace(title) == dish {
		return s.w.DishExact, 0, true
	}
	dw := strings.Fields(dish)
	if i := phraseIndex(words, dw); i >= 0 {
		if len(dw) > 1 {
			return s.w.DishTitlePhrase, i, true
		}
		switch {
		case i == 0:
			return s.w.DishTitleStart, i, true
		case i == len(words)-1:
			return s.w.DishTitleEnd, i, true
		default:
			return s.w.DishTitleMiddle, i, true
		}
	}
	if strings.Contains(title, dish) {
		return s.w.DishTitleSubstring, -1, true
	}
	if strings.Contains(text, dish) {
		return s.w.DishText, -1, false
	}
	return 0, -1, false
}

// RuleScore normalizes raw points to [0, 1].
func RuleScore(points float64) float64 {
	return clamp01(points / 100)
}

// Combine blends the semantic and rule scores with the configured weights
// and clamps the result to [0, 1].
func Combine(w Weights, semantic, rule float64) float64 {
	return clamp01(w.Semantic*semantic + w.Rule*rule)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// titleWords splits a lower-cased title into words with surrounding
// punctuation removed. Inner hyphens are kept, so "sun-dried" stays whole.
func titleWords(title string) []string {
	fields := strings.Fields(title)
	out := fields[:0]
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

// phraseIndex returns the index in words where phrase starts, or -1.
func phraseIndex(words, phrase []string) int {
	if len(phrase) == 0 {
		return -1
	}
outer:
	for i := 0; i+len(phrase) <= len(words); i++ {
		for j, p := range phrase {
			if words[i+j] != p {
				continue outer
			}
		}
		return i
	}
	return -1
}

// tagOrWord reports whether label is one of the recipe's tags or appears
// as a whole word (or word sequence) in its searchable text.
func tagOrWord(r *model.Recipe, tokens []string, label string) bool {
	if r.HasCategory(label) {
		return true
	}
	return phraseIndex(tokens, nlp.Tokenize(label)) >= 0
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

type reasonList struct {
	limit int
	seen  map[string]struct{}
	out   []string
}

func newReasons(limit int) *reasonList {
	return &reasonList{limit: limit, seen: map[string]struct{}{}}
}

func (l *reasonList) add(reason string) {
	if len(l.out) >= l.limit {
		return
	}
	if _, dup := l.seen[reason]; dup {
		return
	}
	l.seen[reason] = struct{}{}
	l.out = append(l.out, reason)
}

func (l *reasonList) list() []string {
	return l.out
}
