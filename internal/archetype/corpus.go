package archetype

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/danielpatrickdp/trait-interview/internal/trait"
	"gopkg.in/yaml.v3"
)

// #region types
// Profile is an archetype's score per trait, indexed by trait.Order.
type Profile [trait.Count]int

// Vector returns the profile as a canonical-order vector.
func (p Profile) Vector() []float64 {
	v := make([]float64, trait.Count)
	for i, s := range p {
		v[i] = float64(s)
	}
	return v
}

// Scores returns the profile as trait scores in canonical order.
func (p Profile) Scores() []trait.Score {
	out := make([]trait.Score, trait.Count)
	for i, t := range trait.Order {
		out[i] = trait.Score{Trait: t, Score: p[i]}
	}
	return out
}

// Archetype is a generated, labelled reference personality.
type Archetype struct {
	Name        string
	Motif       string
	Disposition string
	Role        string
	Description string
	Profile     Profile
}

// #endregion types

// #region generator-config
// ErrNameSpaceExhausted is returned when more unique names are requested
// than the vocabulary can produce.
var ErrNameSpaceExhausted = errors.New("archetype name space exhausted")

const (
	baseScore = 50
	jitter    = 10
	minScore  = 1
	maxScore  = 100
)

// GeneratorConfig controls corpus generation.
type GeneratorConfig struct {
	Size int
	Seed uint64 // 0 draws a random seed; the seed used is kept on the corpus
}

// DefaultGeneratorConfig returns the standard 200-archetype corpus with a random seed.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{Size: 200}
}

// #endregion generator-config

// #region corpus
// Corpus is an immutable, ordered archetype population. It is safe for
// concurrent readers.
type Corpus struct {
	seed       uint64
	archetypes []Archetype
	vectors    [][]float64
}

// Generate builds a corpus of config.Size archetypes with unique names.
func Generate(config GeneratorConfig) (*Corpus, error) {
	if config.Size <= 0 {
		return nil, fmt.Errorf("corpus size must be positive, got %d", config.Size)
	}
	if config.Size > NameSpace() {
		return nil, fmt.Errorf("%w: %d requested, %d possible", ErrNameSpaceExhausted, config.Size, NameSpace())
	}

	seed := config.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	c := &Corpus{
		seed:       seed,
		archetypes: make([]Archetype, 0, config.Size),
		vectors:    make([][]float64, 0, config.Size),
	}
	used := make(map[string]bool, config.Size)

	for len(c.archetypes) < config.Size {
		motif := motifs[rng.IntN(len(motifs))]
		disposition := dispositions[rng.IntN(len(dispositions))]
		role := roles[rng.IntN(len(roles))]

		name := fmt.Sprintf("%s %s of the %s", disposition.Word, role.Word, motif.Word)
		if used[name] {
			continue
		}
		used[name] = true

		var p Profile
		for i, t := range trait.Order {
			score := baseScore + motif.Modifier(t) + disposition.Modifier(t) + role.Modifier(t)
			score += rng.IntN(2*jitter+1) - jitter
			p[i] = clamp(score)
		}

		tmpl := descriptionTemplates[rng.IntN(len(descriptionTemplates))]
		a := Archetype{
			Name:        name,
			Motif:       motif.Word,
			Disposition: disposition.Word,
			Role:        role.Word,
			Description: describe(tmpl, name, motif, disposition, role, p),
			Profile:     p,
		}
		c.archetypes = append(c.archetypes, a)
		c.vectors = append(c.vectors, p.Vector())
	}

	return c, nil
}

// Seed returns the seed the corpus was generated from.
func (c *Corpus) Seed() uint64 {
	return c.seed
}

// Len returns the number of archetypes.
func (c *Corpus) Len() int {
	return len(c.archetypes)
}

// At returns the i-th archetype by value.
func (c *Corpus) At(i int) Archetype {
	return c.archetypes[i]
}

// All returns a copy of the archetypes in generation order.
func (c *Corpus) All() []Archetype {
	out := make([]Archetype, len(c.archetypes))
	copy(out, c.archetypes)
	return out
}

// Find looks an archetype up by name.
func (c *Corpus) Find(name string) (Archetype, bool) {
	for _, a := range c.archetypes {
		if a.Name == name {
			return a, true
		}
	}
	return Archetype{}, false
}

func clamp(score int) int {
	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}

// #endregion corpus

// #region export
// ExportRecord is the serialised form of one archetype.
type ExportRecord struct {
	Name        string              `json:"name" yaml:"name"`
	Motif       string              `json:"motif" yaml:"motif"`
	Disposition string              `json:"disposition" yaml:"disposition"`
	Role        string              `json:"role" yaml:"role"`
	Scores      map[trait.Trait]int `json:"scores" yaml:"scores"`
	Description string              `json:"description" yaml:"description"`
}

// ExportDocument is the serialised corpus.
type ExportDocument struct {
	Seed       uint64         `json:"seed" yaml:"seed"`
	Size       int            `json:"size" yaml:"size"`
	Archetypes []ExportRecord `json:"archetypes" yaml:"archetypes"`
}

// Document converts the corpus to its serialisable form.
func (c *Corpus) Document() ExportDocument {
	doc := ExportDocument{Seed: c.seed, Size: len(c.archetypes)}
	for _, a := range c.archetypes {
		scores := make(map[trait.Trait]int, trait.Count)
		for i, t := range trait.Order {
			scores[t] = a.Profile[i]
		}
		doc.Archetypes = append(doc.Archetypes, ExportRecord{
			Name:        a.Name,
			Motif:       a.Motif,
			Disposition: a.Disposition,
			Role:        a.Role,
			Scores:      scores,
			Description: a.Description,
		})
	}
	return doc
}

// Export writes the corpus as "json" or "yaml".
func (c *Corpus) Export(w io.Writer, format string) error {
	doc := c.Document()
	switch format {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
	return nil
}

// #endregion export
