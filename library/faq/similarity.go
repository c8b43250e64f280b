package faq

import "strings"

// MatchFunc reports whether query token q matches candidate token c
type MatchFunc func(q, c string) bool

// SubstringMatch matches when either token contains the other.
//
// It is permissive on purpose: "трекер" matches "трекеры",
// but it also matches unrelated words sharing a short substring.
func SubstringMatch(q, c string) bool {
	return strings.Contains(c, q) || strings.Contains(q, c)
}

// ExactMatch matches only identical tokens
func ExactMatch(q, c string) bool {
	return q == c
}

// Similarity scores query against candidate with SubstringMatch
func Similarity(query, candidate []string) float64 {
	return similarity(query, candidate, SubstringMatch)
}

// similarity returns the fraction of query tokens that match
// at least one candidate token.
//
// The denominator is the query length including repeats,
// so the score is always in [0, 1].
func similarity(query, candidate []string, match MatchFunc) float64 {
	if len(query) == 0 || len(candidate) == 0 {
		return 0
	}

	var matched int
	for _, q := range query {
		for _, c := range candidate {
			if match(q, c) {
				matched++
				break
			}
		}
	}

	return float64(matched) / float64(len(query))
}
