package trait

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullScores(score int) []Score {
	out := make([]Score, 0, Count)
	for _, t := range Order {
		out = append(out, Score{Trait: t, Score: score})
	}
	return out
}

func TestOrderIsDistinct(t *testing.T) {
	seen := map[Trait]bool{}
	for i, tr := range Order {
		assert.False(t, seen[tr], "duplicate trait %s", tr)
		seen[tr] = true
		assert.Equal(t, i, Index(tr))
	}
	assert.Equal(t, -1, Index("charisma"))
	assert.False(t, Valid("charisma"))
}

func TestCanonicalizeSortsIntoOrder(t *testing.T) {
	scores := fullScores(50)
	// reverse the oracle output order
	for i, j := 0, len(scores)-1; i < j; i, j = i+1, j-1 {
		scores[i], scores[j] = scores[j], scores[i]
	}
	scores[0].Score = 77 // flexibility after reversal

	snap, err := Canonicalize(scores)
	require.NoError(t, err)
	for i, s := range snap {
		assert.Equal(t, Order[i], s.Trait)
	}
	got, ok := snap.Get(Flexibility)
	require.True(t, ok)
	assert.Equal(t, 77, got.Score)

	// input untouched
	assert.Equal(t, Flexibility, scores[0].Trait)
}

func TestCanonicalizeRejectsBadSets(t *testing.T) {
	short := fullScores(50)[:7]
	_, err := Canonicalize(short)
	assert.True(t, errors.Is(err, ErrIncompleteSnapshot))

	dup := fullScores(50)
	dup[7].Trait = SelfEsteem
	_, err = Canonicalize(dup)
	assert.True(t, errors.Is(err, ErrIncompleteSnapshot))

	unknown := fullScores(50)
	unknown[3].Trait = "charisma"
	_, err = Canonicalize(unknown)
	assert.True(t, errors.Is(err, ErrIncompleteSnapshot))
}

func TestVectorMissingTraitsAreZero(t *testing.T) {
	v := Vector([]Score{{Trait: Ethics, Score: 40}, {Trait: "charisma", Score: 99}})
	require.Len(t, v, Count)
	assert.Equal(t, []float64{0, 0, 40, 0, 0, 0, 0, 0}, v)
}
