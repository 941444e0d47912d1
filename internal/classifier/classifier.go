// Package classifier scores text blobs into discrete sensitivity levels.
// Classification is a pure function over the input: a keyword signal and a
// structural match density signal are summed into one integer score and
// mapped through fixed thresholds.
package classifier

import (
	"strings"
	"unicode/utf8"

	"dlpgate/internal/core"
	"dlpgate/internal/patterns"
)

// Score thresholds for the summed keyword + density signal.
const (
	thresholdTopSecret    = 30
	thresholdConfidential = 15
	thresholdInternal     = 5
)

// densityMultiplier scales structural matches per 1000 characters into
// score points.
const densityMultiplier = 2

// Classify returns the sensitivity level for a text blob. It is
// deterministic, side-effect free and safe for concurrent use. It does not
// consult the detector's output; the density signal comes from a second raw
// scan of the pattern library.
func Classify(text string) core.SensitivityLevel {
	return levelForScore(Score(text))
}

// Score computes the raw sensitivity score: the sum of keyword-category
// weights for every vocabulary keyword present in the case-folded text,
// plus the structural match density scaled and truncated to an integer.
func Score(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	score := keywordScore(text)
	score += densityScore(text)
	return score
}

func keywordScore(text string) int {
	folded := strings.ToLower(text)

	score := 0
	for _, cat := range patterns.KeywordCategories() {
		for _, kw := range cat.Keywords {
			if strings.Contains(folded, kw) {
				score += cat.Weight
			}
		}
	}
	return score
}

func densityScore(text string) int {
	matches := patterns.CountMatches(text)
	if matches == 0 {
		return 0
	}

	// Density is per character, not per byte; multi-byte runes in Spanish
	// text must not deflate the signal.
	perThousand := float64(matches) / float64(utf8.RuneCountInString(text)) * 1000
	return int(perThousand * densityMultiplier)
}

func levelForScore(score int) core.SensitivityLevel {
	switch {
	case score >= thresholdTopSecret:
		return core.LevelTopSecret
	case score >= thresholdConfidential:
		return core.LevelConfidential
	case score >= thresholdInternal:
		return core.LevelInternal
	default:
		return core.LevelPublic
	}
}
