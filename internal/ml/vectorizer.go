package ml

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

const maxFeatures = 5000

// A minimal english stop word list; transaction descriptions are short, so
// this mostly strips connective noise from augmented samples.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "at": {}, "by": {}, "for": {}, "from": {},
	"in": {}, "of": {}, "on": {}, "or": {}, "the": {}, "to": {}, "with": {},
}

// Vectorizer is a TF-IDF text vectorizer over unigrams and bigrams, capped
// at maxFeatures terms selected by corpus frequency.
type Vectorizer struct {
	Vocabulary map[string]int
	IDF        []float64
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := stopWords[f]; ok {
			continue
		}
		words = append(words, f)
	}

	tokens := make([]string, 0, len(words)*2)
	tokens = append(tokens, words...)
	for i := 0; i+1 < len(words); i++ {
		tokens = append(tokens, words[i]+" "+words[i+1])
	}
	return tokens
}

// Fit builds the vocabulary and IDF table from the training corpus.
func (v *Vectorizer) Fit(docs []string) {
	docFreq := make(map[string]int)
	corpusFreq := make(map[string]int)

	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range tokenize(doc) {
			corpusFreq[tok]++
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				docFreq[tok]++
			}
		}
	}

	terms := make([]string, 0, len(corpusFreq))
	for term := range corpusFreq {
		terms = append(terms, term)
	}
	// Keep the most frequent terms; ties broken lexicographically so the
	// vocabulary is deterministic.
	sort.Slice(terms, func(i, j int) bool {
		if corpusFreq[terms[i]] != corpusFreq[terms[j]] {
			return corpusFreq[terms[i]] > corpusFreq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	n := len(docs)
	v.Vocabulary = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	for i, term := range terms {
		v.Vocabulary[term] = i
		v.IDF[i] = math.Log(float64(1+n)/float64(1+docFreq[term])) + 1
	}
}

// Transform maps one document to its L2-normalized TF-IDF vector.
func (v *Vectorizer) Transform(doc string) []float64 {
	vec := make([]float64, len(v.IDF))
	for _, tok := range tokenize(doc) {
		if i, ok := v.Vocabulary[tok]; ok {
			vec[i] += v.IDF[i]
		}
	}

	var norm float64
	for _, x := range vec {
		norm += x * x
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}
