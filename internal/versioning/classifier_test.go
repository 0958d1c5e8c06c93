package versioning

import (
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
)

func TestClassifyIdenticalText(t *testing.T) {
	text := "You are a helpful assistant."
	significant, diff := Classify(text, text)
	if significant {
		t.Errorf("identical text classified as significant")
	}
	if diff != "" {
		t.Errorf("expected empty diff for identical text, got %q", diff)
	}
}

func TestClassifyFirstVersion(t *testing.T) {
	significant, diff := Classify("Anything at all.", "")
	if !significant {
		t.Errorf("first version must always be significant")
	}
	if diff != "" {
		t.Errorf("first version should carry no diff, got %q", diff)
	}
}

func TestClassifyMinorEdit(t *testing.T) {
	oldText := strings.Repeat("a", 99) + "x"
	newText := strings.Repeat("a", 99) + "y"
	// One char in a hundred: ratio 0.99, well above the threshold.
	significant, diff := Classify(newText, oldText)
	if significant {
		t.Errorf("single-character change classified as significant (ratio %f)", Similarity(oldText, newText))
	}
	if diff != "" {
		t.Errorf("minor edit should carry no diff")
	}
}

func TestClassifySignificantEdit(t *testing.T) {
	oldText := "You are a calculator.\nAnswer with a single number.\n"
	newText := "You are a translator.\nRespond only in French.\n"
	significant, diff := Classify(newText, oldText)
	if !significant {
		t.Fatalf("rewrite classified as minor (ratio %f)", Similarity(oldText, newText))
	}
	if !strings.Contains(diff, "--- current") || !strings.Contains(diff, "+++ proposed") {
		t.Errorf("diff missing file headers:\n%s", diff)
	}
	if !strings.Contains(diff, "-You are a calculator.") {
		t.Errorf("diff missing removed line:\n%s", diff)
	}
	if !strings.Contains(diff, "+You are a translator.") {
		t.Errorf("diff missing added line:\n%s", diff)
	}
}

func TestClassifyThreshold(t *testing.T) {
	// Nine substituted characters out of a hundred drop the ratio to
	// 0.91, just below the threshold; eight keep it at exactly 0.92.
	base := strings.Repeat("a", 100)

	atThreshold := strings.Repeat("a", 92) + strings.Repeat("b", 8)
	if got := Similarity(base, atThreshold); got < SignificanceThreshold {
		t.Fatalf("expected ratio >= %f, got %f", SignificanceThreshold, got)
	}
	if significant, _ := Classify(atThreshold, base); significant {
		t.Errorf("ratio at the threshold must be minor")
	}

	belowThreshold := strings.Repeat("a", 91) + strings.Repeat("b", 9)
	if got := Similarity(base, belowThreshold); got >= SignificanceThreshold {
		t.Fatalf("expected ratio < %f, got %f", SignificanceThreshold, got)
	}
	if significant, _ := Classify(belowThreshold, base); !significant {
		t.Errorf("ratio below the threshold must be significant")
	}
}

func TestSimilarityMatchesReference(t *testing.T) {
	// The verdict for realistic edits must come from the computed ratio,
	// not an assumed one.
	cases := []struct {
		name string
		old  string
		new  string
	}{
		{"appended qualifier", "Summarize the text.", "Summarize the text concisely."},
		{"identical", "same", "same"},
		{"disjoint", "abcdef", "uvwxyz"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			want := difflib.NewMatcher(strings.Split(tc.old, ""), strings.Split(tc.new, "")).Ratio()
			got := Similarity(tc.old, tc.new)
			if got != want {
				t.Errorf("Similarity(%q, %q) = %f, reference matcher says %f", tc.old, tc.new, got, want)
			}
			significant, _ := Classify(tc.new, tc.old)
			if want >= SignificanceThreshold && significant {
				t.Errorf("ratio %f is above threshold but classified significant", want)
			}
			if want < SignificanceThreshold && !significant {
				t.Errorf("ratio %f is below threshold but classified minor", want)
			}
		})
	}
}
