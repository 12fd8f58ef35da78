package quality

import "time"

// #region config
// Config holds the streak thresholds for low-effort detection.
type Config struct {
	FastAnswerWindow time.Duration // answers quicker than this count as fast
	FastStreakLimit  int           // consecutive fast answers before a warning
	SkipStreakLimit  int           // consecutive skips before a warning
	FastWarning      string
	SkipWarning      string
}

// DefaultConfig returns the standard thresholds: 3 answers under 2s, or 4 skips in a row.
func DefaultConfig() Config {
	return Config{
		FastAnswerWindow: 2000 * time.Millisecond,
		FastStreakLimit:  3,
		SkipStreakLimit:  4,
		FastWarning: "You're answering really quickly! Try taking a moment with each question. " +
			"Thinking it through a little helps me understand you better.",
		SkipWarning: "Looks like you've skipped a few in a row. Was that one hard to answer? " +
			"It's fine to take a break if you're tired, and go at your own pace. " +
			"An honest answer helps a lot.",
	}
}

// #endregion config

// #region kind
// Kind identifies which streak raised a flag.
type Kind string

const (
	KindNone Kind = ""
	KindFast Kind = "fast_answer"
	KindSkip Kind = "skip_streak"
)

// Flag is the monitor's verdict for one interaction. A raised flag means the
// current question belongs on the improper list and Warning should be shown.
type Flag struct {
	Raised  bool
	Kind    Kind
	Warning string
}

// #endregion kind

// #region monitor
// Monitor tracks consecutive fast answers and consecutive skips.
// It is advisory only: it never blocks or discards an answer.
// Monitor is a value type so a session can snapshot it cheaply.
type Monitor struct {
	config     Config
	fastStreak int
	skipStreak int
}

// NewMonitor creates a monitor with the given thresholds.
func NewMonitor(config Config) Monitor {
	return Monitor{config: config}
}

// ObserveAnswer records an answer given elapsed after the question was shown.
func (m *Monitor) ObserveAnswer(elapsed time.Duration) Flag {
	m.skipStreak = 0

	if elapsed >= m.config.FastAnswerWindow {
		m.fastStreak = 0
		return Flag{}
	}

	m.fastStreak++
	if m.fastStreak < m.config.FastStreakLimit {
		return Flag{}
	}
	m.fastStreak = 0
	return Flag{Raised: true, Kind: KindFast, Warning: m.config.FastWarning}
}

// ObserveSkip records an explicit skip.
func (m *Monitor) ObserveSkip() Flag {
	m.fastStreak = 0

	m.skipStreak++
	if m.skipStreak < m.config.SkipStreakLimit {
		return Flag{}
	}
	m.skipStreak = 0
	return Flag{Raised: true, Kind: KindSkip, Warning: m.config.SkipWarning}
}

// Streaks returns the current fast-answer and skip counters.
func (m Monitor) Streaks() (fast, skip int) {
	return m.fastStreak, m.skipStreak
}

// #endregion monitor
