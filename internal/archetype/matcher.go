package archetype

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/danielpatrickdp/trait-interview/internal/trait"
)

// #region cosine
// Cosine returns the cosine similarity of a and b. It is 0 when the vectors
// differ in length, are empty, or either has zero norm.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// #endregion cosine

// #region matcher
// Match is the archetype closest to a score profile.
type Match struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Similarity  float64 `json:"similarity"`
	Index       int     `json:"index"`
}

// MatcherConfig controls the result cache. CacheSize 0 disables caching.
type MatcherConfig struct {
	CacheSize int
}

// DefaultMatcherConfig returns a small result cache.
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{CacheSize: 256}
}

// Matcher classifies score profiles against a shared corpus.
// It is safe for concurrent use.
type Matcher struct {
	corpus *Corpus
	cache  *lru.Cache[string, Match]
}

// NewMatcher creates a matcher over corpus.
func NewMatcher(corpus *Corpus, config MatcherConfig) (*Matcher, error) {
	if corpus == nil {
		return nil, fmt.Errorf("matcher requires a corpus")
	}
	m := &Matcher{corpus: corpus}
	if config.CacheSize > 0 {
		cache, err := lru.New[string, Match](config.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("match cache: %w", err)
		}
		m.cache = cache
	}
	return m, nil
}

// Match returns the archetype with the highest cosine similarity to scores.
// Scores are placed in canonical order; missing traits count as 0. Only a
// strictly greater similarity replaces the current best, so the first
// maximum in corpus order wins. ok is false for an empty corpus.
func (m *Matcher) Match(scores []trait.Score) (Match, bool) {
	if m.corpus.Len() == 0 {
		return Match{}, false
	}
	v := trait.Vector(scores)

	key := vectorKey(v)
	if m.cache != nil {
		if hit, ok := m.cache.Get(key); ok {
			return hit, true
		}
	}

	best := 0
	bestSim := -1.0
	for i, av := range m.corpus.vectors {
		if sim := Cosine(v, av); sim > bestSim {
			best = i
			bestSim = sim
		}
	}

	a := m.corpus.archetypes[best]
	result := Match{
		Name:        a.Name,
		Description: a.Description,
		Similarity:  bestSim,
		Index:       best,
	}
	if m.cache != nil {
		m.cache.Add(key, result)
	}
	return result, true
}

func vectorKey(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// #endregion matcher
