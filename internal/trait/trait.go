package trait

import (
	"errors"
	"fmt"
	"sort"
)

// #region trait
// Trait is one of the eight fixed dimensions scored by the interview.
type Trait string

const (
	SelfEsteem          Trait = "self-esteem"
	Cooperativeness     Trait = "cooperativeness"
	Ethics              Trait = "ethics"
	NeedForApproval     Trait = "need-for-approval"
	Perseverance        Trait = "perseverance"
	EmotionalRegulation Trait = "emotional-regulation"
	StressTolerance     Trait = "stress-tolerance"
	Flexibility         Trait = "flexibility"
)

// Count is the number of traits in every snapshot.
const Count = 8

// Order is the canonical interview order. Every component ranks, sorts and
// vectorises traits by this order.
var Order = [Count]Trait{
	SelfEsteem,
	Cooperativeness,
	Ethics,
	NeedForApproval,
	Perseverance,
	EmotionalRegulation,
	StressTolerance,
	Flexibility,
}

var index = func() map[Trait]int {
	m := make(map[Trait]int, Count)
	for i, t := range Order {
		m[t] = i
	}
	return m
}()

// Index returns the canonical position of t, or -1 if t is unknown.
func Index(t Trait) int {
	if i, ok := index[t]; ok {
		return i
	}
	return -1
}

// Valid reports whether t is one of the eight traits.
func Valid(t Trait) bool {
	_, ok := index[t]
	return ok
}

// #endregion trait

// #region score
// Score is a single trait estimate produced by the oracle.
type Score struct {
	Trait       Trait  `json:"trait" yaml:"trait"`
	Score       int    `json:"score" yaml:"score"`
	Reason      string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Explanation string `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Advice      string `json:"advice,omitempty" yaml:"advice,omitempty"`
}

// #endregion score

// #region snapshot
// ErrIncompleteSnapshot is returned when a score set does not cover each
// trait exactly once.
var ErrIncompleteSnapshot = errors.New("snapshot must contain each trait exactly once")

// Snapshot holds exactly one score per trait in canonical order.
type Snapshot []Score

// Canonicalize validates scores and returns them sorted into Order.
// The input slice is not modified.
func Canonicalize(scores []Score) (Snapshot, error) {
	if len(scores) != Count {
		return nil, fmt.Errorf("%w: got %d scores", ErrIncompleteSnapshot, len(scores))
	}
	seen := make(map[Trait]bool, Count)
	for _, s := range scores {
		if !Valid(s.Trait) {
			return nil, fmt.Errorf("%w: unknown trait %q", ErrIncompleteSnapshot, s.Trait)
		}
		if seen[s.Trait] {
			return nil, fmt.Errorf("%w: duplicate trait %q", ErrIncompleteSnapshot, s.Trait)
		}
		seen[s.Trait] = true
	}

	out := make(Snapshot, len(scores))
	copy(out, scores)
	sort.Slice(out, func(i, j int) bool {
		return Index(out[i].Trait) < Index(out[j].Trait)
	})
	return out, nil
}

// Get returns the score for t. Snapshots are canonical, so this is a direct index.
func (s Snapshot) Get(t Trait) (Score, bool) {
	i := Index(t)
	if i < 0 || i >= len(s) || s[i].Trait != t {
		return Score{}, false
	}
	return s[i], true
}

// Vector returns the scores as a canonical-order vector.
func (s Snapshot) Vector() []float64 {
	return Vector(s)
}

// #endregion snapshot

// #region vector
// Vector maps scores onto Order. Traits missing from scores are 0.
func Vector(scores []Score) []float64 {
	v := make([]float64, Count)
	for _, s := range scores {
		if i := Index(s.Trait); i >= 0 {
			v[i] = float64(s.Score)
		}
	}
	return v
}

// #endregion vector
