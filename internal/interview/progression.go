package interview

import (
	"fmt"

	"github.com/danielpatrickdp/trait-interview/internal/trait"
)

// #region stability
// nextStability returns the stability counter for target after a turn.
// Skips and turns without a previous snapshot reset it to 0; otherwise a
// score change within threshold extends the streak and anything larger
// resets it.
func nextStability(counter int, prev, curr trait.Snapshot, target trait.Trait, skip bool, threshold int) (int, string) {
	if skip {
		return 0, "skip resets stability"
	}
	if prev == nil {
		return 0, "no previous snapshot"
	}
	old, okOld := prev.Get(target)
	now, okNow := curr.Get(target)
	if !okOld || !okNow {
		return 0, "target score missing"
	}

	diff := now.Score - old.Score
	if diff < 0 {
		diff = -diff
	}
	if diff <= threshold {
		return counter + 1, fmt.Sprintf("stable: |%d-%d|=%d<=%d", old.Score, now.Score, diff, threshold)
	}
	return 0, fmt.Sprintf("unstable: |%d-%d|=%d>%d", old.Score, now.Score, diff, threshold)
}

// #endregion stability

// #region advance
// shouldAdvance applies the exploration floor and the stability gate.
func shouldAdvance(config Config, asked, stability int) bool {
	return asked >= config.MinQuestionsPerTrait && stability >= config.RequiredStability
}

// #endregion advance
