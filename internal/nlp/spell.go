package nlp

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Correction records a single token rewritten by the spell corrector.
type Correction struct {
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
}

// SpellCorrector rewrites misspelled query tokens to the closest
// vocabulary word. It holds no mutable state and is safe for concurrent use.
type SpellCorrector struct {
	vocab *Vocabulary
	words []string
}

// NewSpellCorrector creates a corrector backed by vocab's dictionary.
func NewSpellCorrector(vocab *Vocabulary) *SpellCorrector {
	return &SpellCorrector{vocab: vocab, words: vocab.Dictionary()}
}

// Correct returns text with unknown tokens replaced by their nearest
// dictionary word, together with the list of replacements made. Tokens
// with no candidate inside the edit-distance threshold pass through.
func (s *SpellCorrector) Correct(text string) (string, []Correction) {
	tokens := strings.Fields(text)
	out := make([]string, 0, len(tokens))
	var corrections []Correction

	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		clean := strings.Trim(lower, ".,!?")
		if utf8.RuneCountInString(clean) <= 2 || hasDigit(clean) || s.vocab.IsKnown(clean) {
			out = append(out, lower)
			continue
		}

		if best, ok := s.closest(clean); ok && best != clean {
			out = append(out, best)
			corrections = append(corrections, Correction{Original: tok, Corrected: best})
			continue
		}
		out = append(out, lower)
	}

	return strings.Join(out, " "), corrections
}

func (s *SpellCorrector) closest(word string) (string, bool) {
	n := utf8.RuneCountInString(word)
	limit := 1
	if n >= 8 {
		limit = 2
	}

	best, bestDist := "", limit+1
	for _, cand := range s.words {
		m := utf8.RuneCountInString(cand)
		if abs(m-n) > limit {
			continue
		}
		if d := levenshtein(word, cand); d < bestDist {
			best, bestDist = cand, d
			if d == 1 {
				// nothing closer than 1 can exist for an unknown word
				break
			}
		}
	}
	return best, best != ""
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
