package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/trait-interview/internal/archetype"
	"github.com/danielpatrickdp/trait-interview/internal/interview"
	"github.com/danielpatrickdp/trait-interview/internal/oracle"
	"github.com/danielpatrickdp/trait-interview/internal/results"
	"github.com/danielpatrickdp/trait-interview/internal/trait"
)

// #region helpers
func scores(v int) []trait.Score {
	out := make([]trait.Score, 0, trait.Count)
	for _, t := range trait.Order {
		out = append(out, trait.Score{Trait: t, Score: v, Reason: "steady"})
	}
	return out
}

func newTestChat(t *testing.T, input string) (*chat, *bytes.Buffer) {
	t.Helper()
	fixture := oracle.NewFixtureOracle(&oracle.Fixture{
		Steps: []interview.Step{
			{Question: "How do you react to praise?", Choices: []string{"smile", "deflect", "shrug"}, Scores: scores(60)},
			{Question: "How do you handle deadlines?", Choices: []string{"early", "on time", "late"}, Scores: scores(61)},
		},
		Analysis: interview.Analysis{
			RoleInContext:    "organiser",
			LearningStyle:    "structured",
			MotivationSource: "mastery",
			Traits:           scores(70),
		},
	}, true)

	corpus, err := archetype.Generate(archetype.GeneratorConfig{Size: 10, Seed: 1})
	require.NoError(t, err)
	matcher, err := archetype.NewMatcher(corpus, archetype.DefaultMatcherConfig())
	require.NoError(t, err)
	store, err := results.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := interview.DefaultConfig()
	cfg.HandoffDelay = 0

	var out bytes.Buffer
	return &chat{
		sess:     interview.NewSession(fixture, cfg, interview.WithLogger(log)),
		messages: cfg.Messages,
		analyzer: fixture,
		matcher:  matcher,
		store:    store,
		in:       bufio.NewScanner(strings.NewReader(input)),
		out:      &out,
		name:     "Robin",
		log:      log,
	}, &out
}

// #endregion helpers

// #region chat-tests
func TestChatRunsToStoredResult(t *testing.T) {
	input := "/back\n/skip\n\n" + strings.Repeat("1\n", 40)
	c, out := newTestChat(t, input)

	rec, err := c.run(context.Background())
	require.NoError(t, err)

	// the skipped opener still counts toward the first trait's floor
	assert.Len(t, rec.Answers, 30)
	assert.Equal(t, "early", rec.Answers[0].Text, "choice numbers resolve to choice text")
	assert.Equal(t, "Robin", rec.Respondent)
	assert.Equal(t, "organiser", rec.Result.RoleInContext)
	require.NotEmpty(t, rec.Flagged)
	assert.Equal(t, "How do you react to praise?", rec.Flagged[0].Question.Text)

	text := out.String()
	assert.Contains(t, text, "Nothing to go back to.")
	assert.Contains(t, text, "  1) smile")
	assert.Contains(t, text, "Saved as "+rec.ID)

	stored, err := c.store.GetResult(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Result.PersonalityType, stored.Result.PersonalityType)

	turns, err := c.store.ListTurns(c.sess.ID())
	require.NoError(t, err)
	require.NotEmpty(t, turns)
	assert.Equal(t, "start", turns[0].Action)
	assert.Equal(t, "skip", turns[1].Action)
	assert.Equal(t, "terminate", turns[len(turns)-1].Action)
}

type flakyAnalyzer struct {
	failures int
	calls    int
	next     interview.Analyzer
}

func (f *flakyAnalyzer) Analyze(ctx context.Context, req interview.AnalysisRequest) (interview.Analysis, error) {
	f.calls++
	if f.calls <= f.failures {
		return interview.Analysis{}, errors.New("analysis backend down")
	}
	return f.next.Analyze(ctx, req)
}

func TestChatRetriesFailedAnalysis(t *testing.T) {
	c, out := newTestChat(t, strings.Repeat("1\n", 31)+"\n")
	flaky := &flakyAnalyzer{failures: 1, next: c.analyzer}
	c.analyzer = flaky

	rec, err := c.run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, flaky.calls)
	assert.Len(t, rec.Answers, 31)
	assert.Equal(t, "organiser", rec.Result.RoleInContext)

	text := out.String()
	assert.Contains(t, text, c.messages.AnalysisApology)
	assert.Contains(t, text, "Press Enter to retry")
	assert.Contains(t, text, "Saved as "+rec.ID)
}

func TestChatQuitAfterFailedAnalysis(t *testing.T) {
	c, _ := newTestChat(t, strings.Repeat("1\n", 31)+"/quit\n")
	flaky := &flakyAnalyzer{failures: 5, next: c.analyzer}
	c.analyzer = flaky

	_, err := c.run(context.Background())
	assert.ErrorIs(t, err, errQuit)
	assert.Equal(t, 1, flaky.calls)
	assert.True(t, c.sess.Snapshot().Finished)
}

func TestChatQuit(t *testing.T) {
	c, _ := newTestChat(t, "1\n/quit\n1\n")
	_, err := c.run(context.Background())
	assert.ErrorIs(t, err, errQuit)

	v := c.sess.Snapshot()
	assert.Len(t, v.Answers, 1)
	assert.False(t, v.Finished)
}

func TestChatInputClosed(t *testing.T) {
	c, _ := newTestChat(t, "")
	_, err := c.run(context.Background())
	assert.ErrorIs(t, err, errQuit)
}

func TestResolveChoice(t *testing.T) {
	q := &interview.Question{Choices: []string{"a", "b", "c"}}
	assert.Equal(t, "b", resolveChoice("2", q))
	assert.Equal(t, "4", resolveChoice("4", q))
	assert.Equal(t, "0", resolveChoice("0", q))
	assert.Equal(t, "I am not sure", resolveChoice("I am not sure", q))
	assert.Equal(t, "1", resolveChoice("1", nil))
}

// #endregion chat-tests

// #region command-tests
func TestParseScores(t *testing.T) {
	got, err := parseScores([]string{"flexibility=40", "self-esteem= 70"})
	require.NoError(t, err)
	assert.Equal(t, []trait.Score{
		{Trait: trait.SelfEsteem, Score: 70},
		{Trait: trait.Flexibility, Score: 40},
	}, got)

	for _, bad := range [][]string{
		{"self-esteem"},
		{"charisma=50"},
		{"ethics=high"},
		{"ethics=50", "ethics=60"},
	} {
		_, err := parseScores(bad)
		assert.Error(t, err, bad)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCorpusCommand(t *testing.T) {
	out, err := execute(t, "corpus", "--size", "5", "--seed", "7", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "seed: 7")
	assert.Contains(t, out, "size: 5")

	_, err = execute(t, "corpus", "--size", "5", "--format", "xml")
	assert.Error(t, err)
}

func TestMatchCommand(t *testing.T) {
	out, err := execute(t, "match", "--json",
		"self-esteem=70", "cooperativeness=65", "ethics=80", "need-for-approval=30",
		"perseverance=55", "emotional-regulation=60", "stress-tolerance=45", "flexibility=70")
	require.NoError(t, err)
	assert.Contains(t, out, `"similarity"`)

	_, err = execute(t, "match", "charisma=10")
	assert.Error(t, err)
}

// #endregion command-tests
