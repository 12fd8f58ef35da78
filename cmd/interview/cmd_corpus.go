package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/trait-interview/internal/archetype"
	"github.com/danielpatrickdp/trait-interview/internal/trait"
)

// #region corpus
func newCorpusCmd() *cobra.Command {
	var format string
	var seed uint64
	var size int

	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Generate and print the archetype corpus",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				a.cfg.Corpus.Seed = seed
			}
			if cmd.Flags().Changed("size") {
				a.cfg.Corpus.Size = size
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			c, err := a.corpus()
			if err != nil {
				return err
			}
			return c.Export(cmd.OutOrStdout(), format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "generator seed (0 picks one at random)")
	cmd.Flags().IntVar(&size, "size", 0, "number of archetypes")
	return cmd
}

// #endregion corpus

// #region match
func newMatchCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "match trait=score...",
		Short: "Match a score profile against the corpus",
		Example: "  interview match self-esteem=70 cooperativeness=65 ethics=80 need-for-approval=30 \\\n" +
			"    perseverance=55 emotional-regulation=60 stress-tolerance=45 flexibility=70",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scores, err := parseScores(args)
			if err != nil {
				return err
			}
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			_, matcher, err := a.matcher()
			if err != nil {
				return err
			}
			m, ok := matcher.Match(scores)
			if !ok {
				return fmt.Errorf("no archetype matched")
			}
			return printMatch(cmd.OutOrStdout(), m, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the match as JSON")
	return cmd
}

// parseScores reads "trait=score" pairs. Traits may be given in any order
// but each only once.
func parseScores(args []string) ([]trait.Score, error) {
	seen := make(map[trait.Trait]bool, len(args))
	out := make([]trait.Score, 0, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("expected trait=score, got %q", arg)
		}
		t := trait.Trait(strings.TrimSpace(name))
		if !trait.Valid(t) {
			return nil, fmt.Errorf("unknown trait %q", name)
		}
		if seen[t] {
			return nil, fmt.Errorf("trait %s given twice", t)
		}
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("score for %s: %w", t, err)
		}
		seen[t] = true
		out = append(out, trait.Score{Trait: t, Score: v})
	}
	slices.SortStableFunc(out, func(a, b trait.Score) int {
		return trait.Index(a.Trait) - trait.Index(b.Trait)
	})
	return out, nil
}

func printMatch(w io.Writer, m archetype.Match, asJSON bool) error {
	if asJSON {
		return printJSON(w, m)
	}
	fmt.Fprintf(w, "%s (similarity %.4f, #%d)\n\n%s\n", m.Name, m.Similarity, m.Index, m.Description)
	return nil
}

// #endregion match
