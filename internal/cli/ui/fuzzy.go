package ui

import (
	"cmp"
	"slices"
	"strings"
)

const (
	// DefaultMaxDistance is the largest edit distance reported as similar
	DefaultMaxDistance = 3
	// DefaultMaxSuggestions caps the number of suggestions
	DefaultMaxSuggestions = 3
)

// FuzzyMatchOptions configures FindSimilar
type FuzzyMatchOptions struct {
	MaxDistance    int
	MaxSuggestions int
	CaseSensitive  bool
}

type suggestion struct {
	value    string
	distance int
}

// FindSimilar returns the candidates closest to target by Levenshtein
// distance, closest first
func FindSimilar(target string, candidates []string, opts *FuzzyMatchOptions) []string {
	o := FuzzyMatchOptions{}
	if opts != nil {
		o = *opts
	}
	if o.MaxDistance == 0 {
		o.MaxDistance = DefaultMaxDistance
	}
	if o.MaxSuggestions == 0 {
		o.MaxSuggestions = DefaultMaxSuggestions
	}

	var suggestions []suggestion
	for _, candidate := range candidates {
		a, b := target, candidate
		if !o.CaseSensitive {
			a, b = strings.ToLower(a), strings.ToLower(b)
		}
		if d := LevenshteinDistance(a, b); d <= o.MaxDistance {
			suggestions = append(suggestions, suggestion{value: candidate, distance: d})
		}
	}
	slices.SortStableFunc(suggestions, func(a, b suggestion) int {
		return cmp.Compare(a.distance, b.distance)
	})

	result := make([]string, 0, min(len(suggestions), o.MaxSuggestions))
	for _, s := range suggestions[:min(len(suggestions), o.MaxSuggestions)] {
		result = append(result, s.value)
	}
	return result
}

// LevenshteinDistance counts the single-byte edits turning s1 into s2
func LevenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(s2)]
}
