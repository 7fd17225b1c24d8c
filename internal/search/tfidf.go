package search

import (
	"math"
	"sort"

	"github.com/pageza/recipe-buddy/backend/internal/nlp"
)

// TFIDFOptions prunes the index vocabulary. Zero values disable pruning.
type TFIDFOptions struct {
	// MinDF drops terms seen in fewer documents.
	MinDF int `json:"min_df"`
	// MaxDF drops terms seen in more than this fraction of documents.
	MaxDF float64 `json:"max_df"`
	// MaxFeatures keeps only the most frequent terms across the corpus.
	MaxFeatures int `json:"max_features"`
}

type entry struct {
	term   int
	weight float64
}

type posting struct {
	doc    int
	weight float64
}

// Vector is an L2-normalised sparse term vector, sorted by term id.
type Vector []entry

// TFIDFIndex is a term-frequency / inverse-document-frequency vector space
// over a fixed document set. It is built once and read concurrently.
type TFIDFIndex struct {
	terms    map[string]int
	idf      []float64
	docs     []Vector
	postings [][]posting
}

// BuildTFIDF indexes docs. Document i of the index is docs[i].
//
// idf(t) = ln((1+N)/(1+df(t))) + 1 and weights are raw term counts times
// idf, normalised to unit length.
func BuildTFIDF(docs []string, opts TFIDFOptions) *TFIDFIndex {
	n := len(docs)
	tokenized := make([][]string, n)
	df := map[string]int{}
	total := map[string]int{}
	for i, d := range docs {
		toks := nlp.Terms(d)
		tokenized[i] = toks
		seen := map[string]struct{}{}
		for _, t := range toks {
			total[t]++
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				df[t]++
			}
		}
	}

	vocab := make([]string, 0, len(df))
	for t, c := range df {
		if opts.MinDF > 0 && c < opts.MinDF {
			continue
		}
		if opts.MaxDF > 0 && n > 0 && float64(c)/float64(n) > opts.MaxDF {
			continue
		}
		vocab = append(vocab, t)
	}
	if opts.MaxFeatures > 0 && len(vocab) > opts.MaxFeatures {
		sort.Slice(vocab, func(i, j int) bool {
			if total[vocab[i]] != total[vocab[j]] {
				return total[vocab[i]] > total[vocab[j]]
			}
			return vocab[i] < vocab[j]
		})
		vocab = vocab[:opts.MaxFeatures]
	}
	sort.Strings(vocab)

	ix := &TFIDFIndex{
		terms:    make(map[string]int, len(vocab)),
		idf:      make([]float64, len(vocab)),
		docs:     make([]Vector, n),
		postings: make([][]posting, len(vocab)),
	}
	for i, t := range vocab {
		ix.terms[t] = i
		ix.idf[i] = math.Log(float64(1+n)/float64(1+df[t])) + 1
	}

	for i, toks := range tokenized {
		v := ix.vectorize(toks)
		ix.docs[i] = v
		for _, e := range v {
			ix.postings[e.term] = append(ix.postings[e.term], posting{doc: i, weight: e.weight})
		}
	}
	return ix
}

// Len is the number of indexed documents.
func (ix *TFIDFIndex) Len() int {
	return len(ix.docs)
}

// VocabularySize is the number of distinct indexed terms.
func (ix *TFIDFIndex) VocabularySize() int {
	return len(ix.idf)
}

// Vectorize projects text into the index space. Terms unknown to the
// corpus are ignored.
func (ix *TFIDFIndex) Vectorize(text string) Vector {
	return ix.vectorize(nlp.Terms(text))
}

func (ix *TFIDFIndex) vectorize(toks []string) Vector {
	counts := map[int]float64{}
	for _, t := range toks {
		if id, ok := ix.terms[t]; ok {
			counts[id]++
		}
	}
	if len(counts) == 0 {
		return nil
	}
	v := make(Vector, 0, len(counts))
	var norm float64
	for id, c := range counts {
		w := c * ix.idf[id]
		norm += w * w
		v = append(v, entry{term: id, weight: w})
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i].weight /= norm
	}
	sort.Slice(v, func(i, j int) bool { return v[i].term < v[j].term })
	return v
}

// Scores returns the cosine similarity of q against every document,
// accumulated over the posting lists of q's terms.
func (ix *TFIDFIndex) Scores(q Vector) []float64 {
	out := make([]float64, len(ix.docs))
	for _, e := range q {
		for _, p := range ix.postings[e.term] {
			out[p.doc] += e.weight * p.weight
		}
	}
	for i := range out {
		out[i] = clamp01(out[i])
	}
	return out
}

// Similarity is the cosine between q and document doc.
func (ix *TFIDFIndex) Similarity(q Vector, doc int) float64 {
	if doc < 0 || doc >= len(ix.docs) {
		return 0
	}
	return dot(q, ix.docs[doc])
}

// DocSimilarity is the cosine between two indexed documents.
func (ix *TFIDFIndex) DocSimilarity(a, b int) float64 {
	if a < 0 || b < 0 || a >= len(ix.docs) || b >= len(ix.docs) {
		return 0
	}
	return dot(ix.docs[a], ix.docs[b])
}

func dot(a, b Vector) float64 {
	var s float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].term == b[j].term:
			s += a[i].weight * b[j].weight
			i++
			j++
		case a[i].term < b[j].term:
			i++
		default:
			j++
		}
	}
	return clamp01(s)
}
