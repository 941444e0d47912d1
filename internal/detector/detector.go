// Package detector applies the structural pattern library to text blobs,
// producing a redacted copy plus match metadata. Detection is a pure
// function over the input text and safe for concurrent use.
package detector

import (
	"log/slog"
	"sort"
	"strings"

	"dlpgate/internal/classifier"
	"dlpgate/internal/core"
	"dlpgate/internal/patterns"
)

// Detect scans text with every pattern in the library, replaces each match
// with its format-preserving mask and records type names and occurrence
// counts. The original matched substrings exist only inside this function;
// the returned result structurally cannot carry them.
//
// Occurrences are counted per pattern against the raw input, so a value
// matching two categories is counted twice. This is accepted behavior, not
// deduplicated.
//
// On any internal pattern execution failure, Detect fails closed: it returns
// an empty redaction with the highest sensitivity level and RequiresLocal
// set, so callers default to the safest path instead of leaking content.
func Detect(text string) (result core.AnonymizationResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("pattern execution failed, failing closed", "panic", r)
			result = failClosedResult()
		}
	}()

	if strings.TrimSpace(text) == "" {
		return core.AnonymizationResult{
			RedactedText:  text,
			DetectedTypes: []string{},
			Level:         core.LevelPublic,
		}
	}

	redacted := text
	matchCount := 0
	seen := make(map[string]struct{})

	for _, p := range patterns.Library() {
		matches := p.Regexp.FindAllString(text, -1)
		if len(matches) == 0 {
			continue
		}

		matchCount += len(matches)
		seen[p.Type] = struct{}{}

		for _, m := range matches {
			// The literal may already be gone from the working copy if an
			// earlier, more specific pattern consumed it; ReplaceAll is
			// then a no-op and the count still reflects the raw scan.
			redacted = strings.ReplaceAll(redacted, m, p.Masker(m))
		}
	}

	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)

	level := classifier.Classify(text)

	return core.AnonymizationResult{
		RedactedText:  redacted,
		DetectedTypes: types,
		MatchCount:    matchCount,
		Level:         level,
		RequiresLocal: matchCount > 0 || level >= core.LevelConfidential,
	}
}

// Matches returns the per-occurrence match metadata for text without the
// masked values ever leaving the result type.
func Matches(text string) []core.DetectionMatch {
	var out []core.DetectionMatch
	for _, p := range patterns.Library() {
		for _, m := range p.Regexp.FindAllString(text, -1) {
			out = append(out, core.DetectionMatch{
				Type:        p.Type,
				MaskedValue: p.Masker(m),
			})
		}
	}
	return out
}

// failClosedResult is the detection-failure fallback: no text is returned
// and the caller is forced onto the local/rejected path.
func failClosedResult() core.AnonymizationResult {
	return core.AnonymizationResult{
		RedactedText:  "",
		DetectedTypes: []string{},
		Level:         core.LevelTopSecret,
		RequiresLocal: true,
	}
}
