package versioning

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// SignificanceThreshold is the similarity ratio below which an edit is
// treated as a significant change and mints a new version.
const SignificanceThreshold = 0.92

// Similarity computes the character-level longest-matching-blocks ratio
// between two texts. Range [0,1], 1.0 for identical inputs.
func Similarity(oldText, newText string) float64 {
	return difflib.NewMatcher(splitChars(oldText), splitChars(newText)).Ratio()
}

// Classify decides whether newText is a significant change from oldText.
// An empty oldText is always significant with no diff (first version).
// Otherwise a ratio below SignificanceThreshold is significant and yields a
// line-oriented unified diff; at or above the threshold the change is minor
// and the diff is empty. Pure function, no I/O.
func Classify(newText, oldText string) (significant bool, diff string) {
	if oldText == "" {
		return true, ""
	}
	if Similarity(oldText, newText) >= SignificanceThreshold {
		return false, ""
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldText),
		B:        difflib.SplitLines(newText),
		FromFile: "current",
		ToFile:   "proposed",
		Context:  3,
	})
	if err != nil {
		// Diffing two in-memory strings cannot fail in practice; the
		// significance verdict stands regardless.
		return true, ""
	}
	return true, diff
}

// splitChars breaks a string into per-rune elements for the matcher.
func splitChars(s string) []string {
	return strings.Split(s, "")
}
