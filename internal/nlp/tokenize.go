package nlp

import (
	"regexp"
	"strings"
	"unicode"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

var stopWords = func() map[string]struct{} {
	m := make(map[string]struct{}, len(defaultStopWords))
	for _, w := range defaultStopWords {
		m[w] = struct{}{}
	}
	return m
}()

// Tokenize lower-cases s and splits it into alphanumeric words.
func Tokenize(s string) []string {
	return strings.FieldsFunc(nonAlnum.ReplaceAllString(strings.ToLower(s), " "), unicode.IsSpace)
}

// Terms tokenizes s and drops stop words and single characters. It is the
// term extractor for vector-space similarity.
func Terms(s string) []string {
	toks := Tokenize(s)
	out := toks[:0]
	for _, t := range toks {
		if len(t) < 2 {
			continue
		}
		if _, stop := stopWords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// KeyIngredientWords returns the distinctive words of the first n
// ingredient lines: longer than three letters and not starting with a
// digit. Quantities and units are dropped that way.
func KeyIngredientWords(ingredients []string, n int) []string {
	if n > len(ingredients) {
		n = len(ingredients)
	}
	seen := map[string]struct{}{}
	var out []string
	for _, line := range ingredients[:n] {
		for _, w := range Tokenize(line) {
			if len(w) <= 3 || unicode.IsDigit(rune(w[0])) || isUnit(w) {
				continue
			}
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	return out
}

// MainIngredient returns the first significant word of an ingredient line,
// used to spot repeated staples across a meal plan.
func MainIngredient(line string) string {
	for _, w := range Tokenize(line) {
		if len(w) > 4 && !unicode.IsDigit(rune(w[0])) && !isUnit(w) {
			return w
		}
	}
	return ""
}

var units = map[string]struct{}{
	"cup": {}, "cups": {}, "tablespoon": {}, "tablespoons": {}, "teaspoon": {},
	"teaspoons": {}, "tbsp": {}, "tsp": {}, "ounce": {}, "ounces": {},
	"pound": {}, "pounds": {}, "gram": {}, "grams": {}, "pinch": {},
	"large": {}, "small": {}, "medium": {}, "chopped": {}, "sliced": {},
	"diced": {}, "minced": {}, "fresh": {}, "whole": {}, "piece": {},
	"pieces": {}, "clove": {}, "cloves": {}, "can": {}, "cans": {},
}

func isUnit(w string) bool {
	_, ok := units[w]
	return ok
}
