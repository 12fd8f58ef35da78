package archetype

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/trait-interview/internal/trait"
)

// #region helpers
func corpusOf(profiles ...Profile) *Corpus {
	c := &Corpus{seed: 1}
	for i, p := range profiles {
		c.archetypes = append(c.archetypes, Archetype{
			Name:        string(rune('A' + i)),
			Description: "desc " + string(rune('A'+i)),
			Profile:     p,
		})
		c.vectors = append(c.vectors, p.Vector())
	}
	return c
}

func uniform(v int) Profile {
	var p Profile
	for i := range p {
		p[i] = v
	}
	return p
}

// #endregion helpers

// #region generator-tests
func TestGenerateUniqueNames(t *testing.T) {
	for _, n := range []int{1, 200, NameSpace()} {
		c, err := Generate(GeneratorConfig{Size: n, Seed: 42})
		require.NoError(t, err)
		require.Equal(t, n, c.Len())

		seen := make(map[string]bool, n)
		for _, a := range c.All() {
			assert.False(t, seen[a.Name], "duplicate name %q", a.Name)
			seen[a.Name] = true
		}
	}
}

func TestGenerateRejectsImpossibleSizes(t *testing.T) {
	_, err := Generate(GeneratorConfig{Size: NameSpace() + 1})
	assert.True(t, errors.Is(err, ErrNameSpaceExhausted))

	_, err = Generate(GeneratorConfig{Size: 0})
	assert.Error(t, err)
}

func TestGenerateIsReproducibleFromSeed(t *testing.T) {
	a, err := Generate(GeneratorConfig{Size: 50, Seed: 7})
	require.NoError(t, err)
	b, err := Generate(GeneratorConfig{Size: 50, Seed: 7})
	require.NoError(t, err)
	assert.Equal(t, a.All(), b.All())
	assert.Equal(t, uint64(7), a.Seed())

	random, err := Generate(GeneratorConfig{Size: 5})
	require.NoError(t, err)
	assert.NotZero(t, random.Seed())
}

func TestProfilesFollowModifiers(t *testing.T) {
	c, err := Generate(GeneratorConfig{Size: 200, Seed: 99})
	require.NoError(t, err)

	parts := func(list []Part, word string) Part {
		for _, p := range list {
			if p.Word == word {
				return p
			}
		}
		t.Fatalf("unknown part %q", word)
		return Part{}
	}

	for _, a := range c.All() {
		m := parts(motifs, a.Motif)
		d := parts(dispositions, a.Disposition)
		r := parts(roles, a.Role)
		assert.Equal(t, a.Disposition+" "+a.Role+" of the "+a.Motif, a.Name)
		for i, tr := range trait.Order {
			expected := baseScore + m.Modifier(tr) + d.Modifier(tr) + r.Modifier(tr)
			got := a.Profile[i]
			assert.GreaterOrEqual(t, got, minScore)
			assert.LessOrEqual(t, got, maxScore)
			assert.LessOrEqual(t, math.Abs(float64(got-clamp(expected))), float64(jitter),
				"%s %s: %d vs base %d", a.Name, tr, got, expected)
		}
	}
}

func TestVocabularyWordsAreDistinct(t *testing.T) {
	for name, list := range map[string][]Part{"motifs": motifs, "dispositions": dispositions, "roles": roles} {
		seen := make(map[string]bool, len(list))
		for _, p := range list {
			assert.False(t, seen[p.Word], "%s repeats %q", name, p.Word)
			seen[p.Word] = true
			for tr := range p.Modifiers {
				assert.True(t, trait.Valid(tr), "%s %q modifies unknown trait %q", name, p.Word, tr)
			}
		}
		assert.Len(t, list, 16, name)
	}
	assert.Equal(t, 16*16*16, NameSpace())
}

func TestDescriptionNamesRankedTraits(t *testing.T) {
	p := Profile{80, 20, 90, 50, 90, 10, 40, 10}
	ranked := rankTraits(p)
	// ties keep canonical order: ethics before perseverance, emotional-regulation before flexibility
	assert.Equal(t, []trait.Trait{
		trait.Ethics, trait.Perseverance, trait.SelfEsteem, trait.NeedForApproval,
		trait.StressTolerance, trait.Cooperativeness, trait.EmotionalRegulation, trait.Flexibility,
	}, ranked)

	desc := describe(descriptionTemplates[1], "Calm Sage of the Forest",
		Part{Word: "Forest"}, Part{Word: "Calm"}, Part{Word: "Sage"}, p)
	assert.Contains(t, desc, "Calm Sage of the Forest")
	assert.Contains(t, desc, "outstanding ethics")
	assert.Contains(t, desc, "perseverance and self-esteem")
	assert.Contains(t, desc, "toward flexibility")
	assert.NotContains(t, desc, "%!")
}

func TestAllTemplatesRender(t *testing.T) {
	for _, tmpl := range descriptionTemplates {
		desc := describe(tmpl, "X", Part{Word: "m"}, Part{Word: "d"}, Part{Word: "r"}, uniform(50))
		assert.NotContains(t, desc, "%!")
	}
}

// #endregion generator-tests

// #region matcher-tests
func TestCosine(t *testing.T) {
	v := []float64{60, 40, 50, 70, 30, 55, 45, 65}
	assert.InDelta(t, 1.0, Cosine(v, v), 1e-12)
	assert.Equal(t, 0.0, Cosine(make([]float64, 8), v))
	assert.Equal(t, 0.0, Cosine(v, v[:7]))
	assert.Equal(t, 0.0, Cosine(nil, nil))
}

func TestMatchIdenticalProfile(t *testing.T) {
	target := Profile{90, 10, 80, 20, 70, 30, 60, 40}
	c := corpusOf(uniform(50), target, Profile{10, 90, 20, 80, 30, 70, 40, 60})
	m, err := NewMatcher(c, MatcherConfig{})
	require.NoError(t, err)

	got, ok := m.Match(target.Scores())
	require.True(t, ok)
	assert.Equal(t, "B", got.Name)
	assert.Equal(t, "desc B", got.Description)
	assert.InDelta(t, 1.0, got.Similarity, 1e-12)
}

func TestMatchFirstMaximumWins(t *testing.T) {
	tied := Profile{55, 45, 60, 40, 50, 50, 65, 35}
	c := corpusOf(Profile{90, 10, 80, 20, 70, 30, 60, 40}, tied, tied, tied)
	m, err := NewMatcher(c, MatcherConfig{})
	require.NoError(t, err)

	got, ok := m.Match(uniform(50).Scores())
	require.True(t, ok)
	assert.Equal(t, "B", got.Name)
	assert.Equal(t, 1, got.Index)

	got, ok = m.Match(tied.Scores())
	require.True(t, ok)
	assert.Equal(t, "B", got.Name)
}

func TestMatchZeroVector(t *testing.T) {
	c := corpusOf(uniform(50), uniform(70))
	m, err := NewMatcher(c, MatcherConfig{})
	require.NoError(t, err)

	got, ok := m.Match(nil)
	require.True(t, ok)
	assert.Equal(t, 0.0, got.Similarity)
	assert.Equal(t, "A", got.Name)
}

func TestMatchEmptyCorpus(t *testing.T) {
	m, err := NewMatcher(&Corpus{}, MatcherConfig{})
	require.NoError(t, err)
	_, ok := m.Match(uniform(50).Scores())
	assert.False(t, ok)

	_, err = NewMatcher(nil, MatcherConfig{})
	assert.Error(t, err)
}

func TestMatchCacheReturnsSameResult(t *testing.T) {
	c, err := Generate(GeneratorConfig{Size: 200, Seed: 3})
	require.NoError(t, err)
	m, err := NewMatcher(c, DefaultMatcherConfig())
	require.NoError(t, err)

	scores := Profile{61, 45, 72, 30, 55, 68, 40, 50}.Scores()
	first, ok := m.Match(scores)
	require.True(t, ok)
	assert.Equal(t, 1, m.cache.Len())

	second, ok := m.Match(scores)
	require.True(t, ok)
	assert.Equal(t, first, second)
	assert.Equal(t, c.At(first.Index).Name, first.Name)
}

// #endregion matcher-tests

// #region export-tests
func TestExportFormats(t *testing.T) {
	c, err := Generate(GeneratorConfig{Size: 3, Seed: 11})
	require.NoError(t, err)

	var jsonBuf bytes.Buffer
	require.NoError(t, c.Export(&jsonBuf, "json"))
	var fromJSON ExportDocument
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &fromJSON))
	assert.Equal(t, 3, fromJSON.Size)
	assert.Equal(t, uint64(11), fromJSON.Seed)
	assert.Len(t, fromJSON.Archetypes[0].Scores, trait.Count)

	var yamlBuf bytes.Buffer
	require.NoError(t, c.Export(&yamlBuf, "yaml"))
	var fromYAML ExportDocument
	require.NoError(t, yaml.Unmarshal(yamlBuf.Bytes(), &fromYAML))
	assert.Equal(t, fromJSON.Archetypes[0].Name, fromYAML.Archetypes[0].Name)

	err = c.Export(&bytes.Buffer{}, "xml")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "xml"))
}

// #endregion export-tests
