package textutil

import (
	"math"
	"regexp"
	"strings"
)

var tokenSplitPattern = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Tokenize lowercases text and splits it into alphanumeric words.
func Tokenize(text string) []string {
	fields := tokenSplitPattern.Split(strings.ToLower(text), -1)
	tokens := fields[:0]
	for _, f := range fields {
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// TitleSimilarity returns the cosine similarity of the word-frequency vectors
// of a and b, in the range [0, 1].
func TitleSimilarity(a, b string) float64 {
	va, vb := termCounts(a), termCounts(b)
	if len(va) == 0 || len(vb) == 0 {
		return 0
	}
	var dot, na, nb float64
	for token, count := range va {
		na += count * count
		dot += count * vb[token]
	}
	for _, count := range vb {
		nb += count * count
	}
	if dot == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func termCounts(text string) map[string]float64 {
	tokens := Tokenize(text)
	counts := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	return counts
}
