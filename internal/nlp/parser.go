package nlp

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const negatedTerm = `(\w+(?:\s+\w+)?)`

// negationPatterns are tried in order; each captures the negated term in
// its last group.
var negationPatterns = []string{
	`\b(?:doesn'?t|does\s+not|dont)\s+(?:have|include|contain|want|use|need)\s+(?:any\s+)?` + negatedTerm,
	`\b(?:don'?t|do\s+not)\s+(?:want|use|add|include|need)\s+(?:any\s+)?` + negatedTerm,
	`\b(?:but|and)\s+no\s+` + negatedTerm,
	`\bwithout\s+(?:any\s+)?` + negatedTerm,
	`\bno\s+` + negatedTerm,
	`\bavoid(?:ing)?\s+` + negatedTerm,
	`\bexclud(?:e|ing)\s+` + negatedTerm,
	`\b(\w+)[\s-]free\b`,
	`\bskip(?:ping)?\s+(?:the\s+)?` + negatedTerm,
	`\bhold\s+(?:the\s+)?` + negatedTerm,
	`\bminus\s+(?:the\s+)?` + negatedTerm,
	`\bleave\s+out\s+(?:the\s+)?` + negatedTerm,
	`\bnot?\s+(?:any|the)\s+` + negatedTerm,
}

// negators flag the single word right before an ingredient as a negation
// when no pattern caught it ("chicken not tomato").
var negators = map[string]struct{}{
	"not": {}, "never": {}, "except": {}, "no": {}, "without": {},
}

// clauseWords end a negated term; "no garlic no onion" negates two single
// words, not the phrase "garlic no".
var clauseWords = map[string]struct{}{
	"no": {}, "not": {}, "without": {}, "never": {}, "except": {},
	"and": {}, "but": {}, "or": {}, "nor": {}, "with": {},
}

const (
	gramNutrients = `(protein|fat|sodium|sugar|saturates)`
	calorieWords  = `(?:kcal|calories|calorie|cals|cal)`
	number        = `(\d+(?:\.\d+)?)`
	gramUnit      = `\s*(?:g|grams?|mg)?\s*(?:of\s+)?`
)

type numericPattern struct {
	re       *regexp.Regexp
	kind     BoundKind
	calories bool
}

var numericPatterns = []numericPattern{
	{re: regexp.MustCompile(`\bat\s+least\s+` + number + gramUnit + gramNutrients + `\b`), kind: BoundMin},
	{re: regexp.MustCompile(`\bat\s+least\s+` + number + `\s*` + calorieWords + `\b`), kind: BoundMin, calories: true},
	{re: regexp.MustCompile(`\b(?:more\s+than|over|above)\s+` + number + gramUnit + gramNutrients + `\b`), kind: BoundMin},
	{re: regexp.MustCompile(`\b(?:more\s+than|over|above)\s+` + number + `\s*` + calorieWords + `\b`), kind: BoundMin, calories: true},
	{re: regexp.MustCompile(`\b(?:less\s+than|under|below|at\s+most)\s+` + number + gramUnit + gramNutrients + `\b`), kind: BoundMax},
	{re: regexp.MustCompile(`\b(?:less\s+than|under|below|at\s+most)\s+` + number + `\s*` + calorieWords + `\b`), kind: BoundMax, calories: true},
}

type phrasePattern struct {
	name string
	re   *regexp.Regexp
}

type modifierPattern struct {
	mod NutritionModifier
	re  *regexp.Regexp
}

// Parser turns free-text queries into StructuredQuery values. All regular
// expressions are compiled once in NewParser; Parse is safe for concurrent
// use.
type Parser struct {
	vocab     *Vocabulary
	speller   *SpellCorrector
	negations []*regexp.Regexp
	ingreds   []phrasePattern
	dishes    []phrasePattern
	cats      []phrasePattern
	meals     []phrasePattern
	modifiers []modifierPattern
}

// NewParser compiles a parser for vocab.
func NewParser(vocab *Vocabulary) *Parser {
	p := &Parser{
		vocab:   vocab,
		speller: NewSpellCorrector(vocab),
	}
	for _, pat := range negationPatterns {
		p.negations = append(p.negations, regexp.MustCompile(pat))
	}
	for _, ing := range vocab.Ingredients {
		p.ingreds = append(p.ingreds, phrasePattern{name: ing, re: pluralPattern(ing)})
	}
	for _, dish := range vocab.DishNames {
		p.dishes = append(p.dishes, phrasePattern{name: dish, re: pluralPattern(dish)})
	}
	for _, c := range vocab.Categories {
		p.cats = append(p.cats, phrasePattern{name: c.Name, re: keywordPattern(c.Keywords)})
	}
	for _, m := range vocab.MealTypes {
		p.meals = append(p.meals, phrasePattern{name: m.Name, re: keywordPattern(m.Keywords)})
	}
	for _, m := range vocab.Modifiers {
		p.modifiers = append(p.modifiers, modifierPattern{mod: m, re: wordPattern(m.Phrase)})
	}
	return p
}

// Vocabulary returns the vocabulary the parser was built with.
func (p *Parser) Vocabulary() *Vocabulary {
	return p.vocab
}

// Parse spell-corrects text and extracts a StructuredQuery from it.
// Blank text yields ErrEmptyQuery; everything else produces a best-effort
// query, never a partial failure.
func (p *Parser) Parse(text string) (*StructuredQuery, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyQuery
	}
	if utf8.RuneCountInString(trimmed) > MaxQueryLength {
		return nil, ErrQueryTooLong
	}

	corrected, corrections := p.speller.Correct(trimmed)
	q := &StructuredQuery{
		OriginalQuery:       trimmed,
		SpellingCorrections: corrections,
		Ingredients:         []string{},
		ExcludedIngredients: []string{},
		Categories:          []string{},
		Nutrition:           map[string]Bound{},
	}
	if q.SpellingCorrections == nil {
		q.SpellingCorrections = []Correction{}
	}
	if len(corrections) > 0 {
		q.CorrectedQuery = corrected
	}

	remaining := p.extractNegations(corrected, q)
	p.extractIngredients(remaining, q)
	q.DishName = p.extractDish(remaining)
	p.extractCategories(remaining, q)
	p.extractNutrition(corrected, q)
	q.SearchTerms = strings.Join(strings.Fields(remaining), " ")

	return q, nil
}

// extractNegations fills q.ExcludedIngredients and returns text with every
// consumed negation clause blanked out. Each pattern is rerun until it
// consumes nothing more, since a capture may have overlapped the keyword
// of the following clause. The term each clause names is kept ahead of its
// expansions when the list is capped.
func (p *Parser) extractNegations(text string, q *StructuredQuery) string {
	buf := []byte(text)
	var named, expanded []string

	for _, re := range p.negations {
		for consumed := true; consumed; {
			consumed = false
			work := string(buf)
			for _, m := range re.FindAllStringSubmatchIndex(work, -1) {
				gs, ge := m[len(m)-2], m[len(m)-1]
				if gs < 0 {
					continue
				}
				matches, consumedEnd, ok := p.resolveNegated(work[gs:ge], gs)
				if !ok {
					continue
				}
				if len(matches) > 0 {
					name := primaryTerm(strings.TrimSpace(work[gs:consumedEnd]), matches)
					named = append(named, name)
					expanded = append(expanded, matches...)
				}
				end := consumedEnd
				if consumedEnd == ge {
					// the whole capture was used, so trailing pattern text
					// such as "-free" goes too
					end = m[1]
				}
				blank(buf, m[0], end)
				consumed = true
			}
		}
	}

	seen := map[string]struct{}{}
	for _, list := range [][]string{named, expanded} {
		for _, ing := range list {
			if _, dup := seen[ing]; dup || len(q.ExcludedIngredients) >= MaxTerms {
				continue
			}
			seen[ing] = struct{}{}
			q.ExcludedIngredients = append(q.ExcludedIngredients, ing)
		}
	}
	return string(buf)
}

// primaryTerm picks the expansion that stands for what the user typed: the
// term itself when it is an ingredient, else the shortest expansion.
func primaryTerm(term string, matches []string) string {
	best := matches[0]
	for _, m := range matches {
		if m == term {
			return m
		}
		if len(m) < len(best) {
			best = m
		}
	}
	return best
}

// resolveNegated picks the ingredient term out of a one- or two-word
// capture. It prefers a two-word ingredient, then the first word, then the
// second. The returned offset is where the consumed term ends in text. A
// negated dish name is consumed without producing exclusions so it cannot
// resurface as the query's dish.
func (p *Parser) resolveNegated(capture string, offset int) ([]string, int, bool) {
	words := strings.Fields(capture)
	if len(words) == 0 {
		return nil, offset, false
	}
	if len(words) == 2 {
		if _, ok := clauseWords[words[1]]; ok {
			words = words[:1]
		}
	}
	firstEnd := offset + strings.Index(capture, words[0]) + len(words[0])
	if len(words) == 2 {
		phrase := words[0] + " " + words[1]
		if p.vocab.IsDishName(phrase) {
			return nil, offset + len(capture), true
		}
		if p.isIngredient(phrase) {
			if m := p.expandExcluded(phrase); len(m) > 0 {
				return m, offset + len(capture), true
			}
		}
	}
	if p.vocab.IsDishName(words[0]) {
		return nil, firstEnd, true
	}
	if m := p.expandExcluded(words[0]); len(m) > 0 {
		return m, firstEnd, true
	}
	if len(words) == 2 {
		if m := p.expandExcluded(words[1]); len(m) > 0 {
			return m, offset + len(capture), true
		}
	}
	return nil, offset, false
}

// expandExcluded lists the gazetteer ingredients a negated term covers:
// ingredients containing the term, and ingredients named as a whole word
// inside it.
func (p *Parser) expandExcluded(term string) []string {
	if term == "" || p.vocab.IsSkipWord(term) || p.vocab.IsStopWord(term) {
		return nil
	}
	var out []string
	for _, pat := range p.ingreds {
		if p.vocab.IsSkipWord(pat.name) {
			continue
		}
		if strings.Contains(pat.name, term) || pat.re.MatchString(term) {
			out = append(out, pat.name)
		}
	}
	return out
}

func (p *Parser) isIngredient(term string) bool {
	for _, ing := range p.vocab.Ingredients {
		if ing == term {
			return true
		}
	}
	return false
}

func (p *Parser) extractIngredients(text string, q *StructuredQuery) {
	excluded := toSet(q.ExcludedIngredients)
	for _, pat := range p.ingreds {
		if len(q.Ingredients) >= MaxTerms {
			return
		}
		ing := pat.name
		if p.vocab.IsDishName(ing) || p.vocab.IsSkipWord(ing) {
			continue
		}
		if _, ok := excluded[ing]; ok {
			continue
		}
		loc := pat.re.FindStringIndex(text)
		if loc == nil || pluralOfAny(ing, q.Ingredients) {
			continue
		}
		if precededByNegator(text[:loc[0]]) {
			if len(q.ExcludedIngredients) < MaxTerms {
				q.ExcludedIngredients = append(q.ExcludedIngredients, ing)
				excluded[ing] = struct{}{}
			}
			continue
		}
		q.Ingredients = append(q.Ingredients, ing)
	}
}

// extractDish returns the longest dish name present, first in gazetteer
// order on ties.
func (p *Parser) extractDish(text string) string {
	best := ""
	for _, pat := range p.dishes {
		if len(pat.name) > len(best) && pat.re.MatchString(text) {
			best = pat.name
		}
	}
	return best
}

func (p *Parser) extractCategories(text string, q *StructuredQuery) {
	for _, pat := range p.cats {
		if pat.re.MatchString(text) {
			q.Categories = append(q.Categories, pat.name)
		}
	}
	for _, pat := range p.meals {
		if pat.re.MatchString(text) {
			q.MealType = pat.name
			return
		}
	}
}

// extractNutrition applies the modifier table first so explicit numbers in
// the same query take precedence.
func (p *Parser) extractNutrition(text string, q *StructuredQuery) {
	for _, m := range p.modifiers {
		if !m.re.MatchString(text) {
			continue
		}
		if m.mod.Bound == BoundMin {
			q.SetMin(m.mod.Nutrient, m.mod.Value)
		} else {
			q.SetMax(m.mod.Nutrient, m.mod.Value)
		}
	}

	for _, np := range numericPatterns {
		for _, sub := range np.re.FindAllStringSubmatch(text, -1) {
			v, err := strconv.ParseFloat(sub[1], 64)
			if err != nil {
				continue
			}
			nutrient := NutrientCalories
			if !np.calories {
				nutrient = sub[2]
			}
			if np.kind == BoundMin {
				q.SetMin(nutrient, v)
			} else {
				q.SetMax(nutrient, v)
			}
		}
	}
}

func pluralPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `(?:e?s)?\b`)
}

func wordPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`)
}

func keywordPattern(words []string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

func pluralOfAny(term string, taken []string) bool {
	for _, t := range taken {
		if term == t+"s" || term == t+"es" || t == term+"s" || t == term+"es" {
			return true
		}
	}
	return false
}

func precededByNegator(prefix string) bool {
	words := strings.Fields(prefix)
	if len(words) == 0 {
		return false
	}
	_, ok := negators[words[len(words)-1]]
	return ok
}

func blank(buf []byte, from, to int) {
	for i := from; i < to && i < len(buf); i++ {
		buf[i] = ' '
	}
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
