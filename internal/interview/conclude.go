package interview

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/danielpatrickdp/trait-interview/internal/archetype"
	"github.com/danielpatrickdp/trait-interview/internal/trait"
)

// ErrNoArchetype means the matcher had nothing to compare against.
var ErrNoArchetype = errors.New("no archetype available")

// Matcher finds the closest archetype to a score profile.
type Matcher interface {
	Match(scores []trait.Score) (archetype.Match, bool)
}

// Result is the final outcome of an interview.
type Result struct {
	PersonalityType  string        `json:"personality_type"`
	TypeDescription  string        `json:"type_description"`
	Similarity       float64       `json:"similarity"`
	Analysis         []trait.Score `json:"analysis"`
	RoleInContext    string        `json:"role_in_context"`
	LearningStyle    string        `json:"learning_style"`
	MotivationSource string        `json:"motivation_source"`
}

// Conclude runs the final analysis on a completed interview and matches the
// resulting scores against the archetype corpus. Analysis scores are placed
// in canonical order when they cover all traits and kept as returned
// otherwise.
func Conclude(ctx context.Context, analyzer Analyzer, matcher Matcher, done Completion) (Result, error) {
	analysis, err := analyzer.Analyze(ctx, AnalysisRequest{
		Answers: slices.Clone(done.Answers),
		Skipped: slices.Clone(done.Skipped),
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: analyze: %w", ErrOracleUnavailable, err)
	}
	if len(analysis.Traits) == 0 {
		return Result{}, ErrEmptyAnalysis
	}

	scores := analysis.Traits
	if snap, err := trait.Canonicalize(scores); err == nil {
		scores = snap
	}

	match, ok := matcher.Match(scores)
	if !ok {
		return Result{}, ErrNoArchetype
	}

	return Result{
		PersonalityType:  match.Name,
		TypeDescription:  match.Description,
		Similarity:       match.Similarity,
		Analysis:         scores,
		RoleInContext:    analysis.RoleInContext,
		LearningStyle:    analysis.LearningStyle,
		MotivationSource: analysis.MotivationSource,
	}, nil
}
