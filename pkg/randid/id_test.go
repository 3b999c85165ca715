package randid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate_LengthAndAlphabet(t *testing.T) {
	for _, n := range []int{-1, 0, 1, 6, 32} {
		id := Generate(n)

		assert.Len(t, id, max(n, 0))
		for _, r := range id {
			assert.True(t, strings.ContainsRune(alphabet, r), "unexpected rune %q in %q", r, id)
		}
	}
}

// Collision suffixes are six characters; a run of them should not repeat.
func TestGenerate_SuffixesDiffer(t *testing.T) {
	seen := make(map[string]struct{}, 200)
	for range 200 {
		seen[Generate(6)] = struct{}{}
	}
	assert.Greater(t, len(seen), 195)
}
