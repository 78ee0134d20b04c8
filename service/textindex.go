package service

import (
	"errors"
	"math"
	"sort"
	"strings"

	"hukumchat-backend/models"

	"golang.org/x/text/unicode/norm"
)

// ErrEmptyCorpus is returned when an index is built over zero reference phrases
var ErrEmptyCorpus = errors.New("similarity corpus is empty")

// Normalize canonicalizes text for matching: NFKC fold, lower-case,
// collapse whitespace runs, trim. Idempotent.
func Normalize(text string) string {
	s := norm.NFKC.String(text)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// TextIndex answers nearest-match queries over a fixed corpus using two
// independent TF-IDF spaces: word 1-2 grams and character 2-4 grams.
// The character space keeps typo'd queries matchable when word overlap
// collapses. Read-only after construction, safe for concurrent queries.
type TextIndex struct {
	refs      []string
	wordSpace *vectorSpace
	charSpace *vectorSpace
}

// NewTextIndex fits both vector spaces over the given reference phrases.
// Phrases are normalized before fitting; the corpus must be non-empty.
func NewTextIndex(refs []string) (*TextIndex, error) {
	if len(refs) == 0 {
		return nil, ErrEmptyCorpus
	}

	normalized := make([]string, len(refs))
	for i, r := range refs {
		normalized[i] = Normalize(r)
	}

	return &TextIndex{
		refs:      normalized,
		wordSpace: fitSpace(normalized, wordGrams),
		charSpace: fitSpace(normalized, charGrams),
	}, nil
}

// Len returns the number of indexed reference phrases
func (ix *TextIndex) Len() int {
	return len(ix.refs)
}

// Query embeds text into both spaces and returns the single best record:
// per record the more charitable of its word-space and char-space cosine
// scores wins, then the global maximum is taken. Ties resolve to the
// lowest index. An empty or fully out-of-vocabulary query scores 0.0
// against record 0.
func (ix *TextIndex) Query(text string) models.MatchResult {
	q := Normalize(text)
	wordVec := ix.wordSpace.embed(q)
	charVec := ix.charSpace.embed(q)

	bestIdx := 0
	bestScore := 0.0
	for i := range ix.refs {
		score := dot(wordVec, ix.wordSpace.docs[i])
		if cs := dot(charVec, ix.charSpace.docs[i]); cs > score {
			score = cs
		}
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	return models.MatchResult{
		Index:   bestIdx,
		Score:   clampScore(bestScore),
		Matched: ix.refs[bestIdx],
	}
}

// clampScore guards against float drift outside [0,1]
func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// termWeight is one component of a sparse document vector
type termWeight struct {
	term   int
	weight float64
}

// sparseVec is a sparse vector sorted by term id
type sparseVec []termWeight

// vectorSpace is a fitted TF-IDF representation: vocabulary, smoothed
// inverse document frequencies, and the L2-normalized corpus vectors.
type vectorSpace struct {
	analyze func(string) []string
	vocab   map[string]int
	idf     []float64
	docs    []sparseVec
}

// fitSpace learns a vocabulary and IDF weights from the corpus and embeds
// every document. Weights follow tf * (ln((1+n)/(1+df)) + 1) with L2
// normalization, matching the standard smoothed TF-IDF formulation.
func fitSpace(corpus []string, analyze func(string) []string) *vectorSpace {
	s := &vectorSpace{
		analyze: analyze,
		vocab:   make(map[string]int),
	}

	counts := make([]map[int]int, len(corpus))
	df := []int{}
	for i, doc := range corpus {
		counts[i] = make(map[int]int)
		for _, term := range analyze(doc) {
			id, ok := s.vocab[term]
			if !ok {
				id = len(s.vocab)
				s.vocab[term] = id
				df = append(df, 0)
			}
			if counts[i][id] == 0 {
				df[id]++
			}
			counts[i][id]++
		}
	}

	n := float64(len(corpus))
	s.idf = make([]float64, len(df))
	for id, d := range df {
		s.idf[id] = math.Log((1+n)/(1+float64(d))) + 1
	}

	s.docs = make([]sparseVec, len(corpus))
	for i, c := range counts {
		s.docs[i] = s.weigh(c)
	}
	return s
}

// embed maps query text into the fitted space; out-of-vocabulary terms
// contribute nothing.
func (s *vectorSpace) embed(text string) sparseVec {
	counts := make(map[int]int)
	for _, term := range s.analyze(text) {
		if id, ok := s.vocab[term]; ok {
			counts[id]++
		}
	}
	return s.weigh(counts)
}

// weigh turns raw term counts into an L2-normalized TF-IDF vector
func (s *vectorSpace) weigh(counts map[int]int) sparseVec {
	vec := make(sparseVec, 0, len(counts))
	var norm2 float64
	for id, tf := range counts {
		w := float64(tf) * s.idf[id]
		vec = append(vec, termWeight{term: id, weight: w})
		norm2 += w * w
	}
	if norm2 > 0 {
		inv := 1 / math.Sqrt(norm2)
		for i := range vec {
			vec[i].weight *= inv
		}
	}
	sort.Slice(vec, func(i, j int) bool { return vec[i].term < vec[j].term })
	return vec
}

// dot computes the inner product of two sorted sparse vectors. Both sides
// are unit-length, so this is the cosine similarity.
func dot(a, b sparseVec) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].term == b[j].term:
			sum += a[i].weight * b[j].weight
			i++
			j++
		case a[i].term < b[j].term:
			i++
		default:
			j++
		}
	}
	return sum
}

// wordGrams emits whitespace-token unigrams and bigrams
func wordGrams(text string) []string {
	tokens := strings.Fields(text)
	grams := make([]string, 0, len(tokens)*2)
	grams = append(grams, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		grams = append(grams, tokens[i]+" "+tokens[i+1])
	}
	return grams
}

// charGrams emits overlapping character 2-4 grams per word, padded with a
// space at each word boundary. Words shorter than the gram size emit the
// whole padded word once for that size.
func charGrams(text string) []string {
	var grams []string
	for _, word := range strings.Fields(text) {
		padded := []rune(" " + word + " ")
		for n := 2; n <= 4; n++ {
			if len(padded) < n {
				grams = append(grams, string(padded))
				continue
			}
			for off := 0; off+n <= len(padded); off++ {
				grams = append(grams, string(padded[off:off+n]))
			}
		}
	}
	return grams
}
