package quality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const fast = 500 * time.Millisecond

func TestFastAnswerWarnsOnThirdAndRestarts(t *testing.T) {
	m := NewMonitor(DefaultConfig())

	assert.False(t, m.ObserveAnswer(fast).Raised)
	assert.False(t, m.ObserveAnswer(fast).Raised)
	f := m.ObserveAnswer(fast)
	assert.True(t, f.Raised)
	assert.Equal(t, KindFast, f.Kind)
	assert.NotEmpty(t, f.Warning)

	fastStreak, _ := m.Streaks()
	assert.Equal(t, 0, fastStreak)

	// fresh count toward 3
	assert.False(t, m.ObserveAnswer(fast).Raised)
	fastStreak, _ = m.Streaks()
	assert.Equal(t, 1, fastStreak)
}

func TestSlowAnswerResetsFastStreak(t *testing.T) {
	m := NewMonitor(DefaultConfig())
	m.ObserveAnswer(fast)
	m.ObserveAnswer(fast)
	assert.False(t, m.ObserveAnswer(2000*time.Millisecond).Raised)
	assert.False(t, m.ObserveAnswer(fast).Raised)
	assert.False(t, m.ObserveAnswer(fast).Raised)
	assert.True(t, m.ObserveAnswer(fast).Raised)
}

func TestSkipStreakWarnsOnFourth(t *testing.T) {
	m := NewMonitor(DefaultConfig())
	for i := 0; i < 3; i++ {
		assert.False(t, m.ObserveSkip().Raised)
	}
	f := m.ObserveSkip()
	assert.True(t, f.Raised)
	assert.Equal(t, KindSkip, f.Kind)

	// 5th consecutive skip starts a new streak
	assert.False(t, m.ObserveSkip().Raised)
	for i := 0; i < 2; i++ {
		assert.False(t, m.ObserveSkip().Raised)
	}
	assert.True(t, m.ObserveSkip().Raised)
}

func TestStreaksResetEachOther(t *testing.T) {
	m := NewMonitor(DefaultConfig())
	m.ObserveSkip()
	m.ObserveSkip()
	m.ObserveAnswer(fast)
	fastStreak, skipStreak := m.Streaks()
	assert.Equal(t, 1, fastStreak)
	assert.Equal(t, 0, skipStreak)

	m.ObserveSkip()
	fastStreak, skipStreak = m.Streaks()
	assert.Equal(t, 0, fastStreak)
	assert.Equal(t, 1, skipStreak)
}

type q string

func (s q) Identity() string { return string(s) }

func TestMergeFlaggedDeduplicates(t *testing.T) {
	merged, flagged := MergeFlagged([]q{"a", "b"}, []q{"b", "c"})
	assert.Equal(t, []q{"a", "b", "c"}, merged)
	assert.Equal(t, map[string]bool{"b": true, "c": true}, flagged)
}
