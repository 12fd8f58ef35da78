package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/trait-interview/internal/interview"
	"github.com/danielpatrickdp/trait-interview/internal/results"
)

var errQuit = errors.New("quit")

func newChatCmd() *cobra.Command {
	var fixture, name string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Run an interview in the terminal",
		Long: "Run an interview in the terminal. Answer with a choice number or free text.\n" +
			"Commands: /skip, /back, /quit.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			o, analyzer, closeOracle, err := a.oracle(fixture)
			if err != nil {
				return err
			}
			defer closeOracle()
			_, matcher, err := a.matcher()
			if err != nil {
				return err
			}
			store, err := a.store()
			if err != nil {
				return err
			}
			defer store.Close()

			settings := a.cfg.InterviewSettings()
			c := &chat{
				sess:     interview.NewSession(o, settings, interview.WithLogger(a.log)),
				messages: settings.Messages,
				analyzer: analyzer,
				matcher:  matcher,
				store:    store,
				in:       bufio.NewScanner(cmd.InOrStdin()),
				out:      cmd.OutOrStdout(),
				name:     name,
				log:      a.log,
			}
			_, err = c.run(cmd.Context())
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&fixture, "fixture", "", "scripted oracle fixture (JSON) instead of the gRPC oracle")
	cmd.Flags().StringVar(&name, "name", "", "respondent name stored with the result")
	return cmd
}

// #region repl
type chat struct {
	sess     *interview.Session
	messages interview.Messages
	analyzer interview.Analyzer
	matcher  interview.Matcher
	store    *results.Store
	in       *bufio.Scanner
	out      io.Writer
	name     string
	log      logrus.FieldLogger
}

// run drives one session to its stored result.
func (c *chat) run(ctx context.Context) (results.Record, error) {
	turn, err := c.sess.Start(ctx)
	c.journal(turn, err)
	c.print(turn)
	if err != nil {
		return results.Record{}, err
	}
	active := turn.Question

	for !turn.Done() {
		fmt.Fprint(c.out, "> ")
		if !c.in.Scan() {
			if err := c.in.Err(); err != nil {
				return results.Record{}, fmt.Errorf("read input: %w", err)
			}
			return results.Record{}, errQuit
		}
		line := strings.TrimSpace(c.in.Text())

		switch line {
		case "":
			continue
		case "/quit", "quit":
			return results.Record{}, errQuit
		case "/skip":
			turn, err = c.sess.Skip(ctx)
		case "/back":
			turn, err = c.sess.GoBack()
			if err == nil && turn.NoOp {
				fmt.Fprintln(c.out, "Nothing to go back to.")
				continue
			}
		default:
			turn, err = c.sess.SubmitAnswer(ctx, resolveChoice(line, active))
		}

		c.journal(turn, err)
		c.print(turn)
		if err != nil {
			if errors.Is(err, interview.ErrOracleUnavailable) {
				continue
			}
			return results.Record{}, err
		}
		if turn.Question != nil {
			active = turn.Question
		}
	}

	return c.conclude(ctx, *turn.Completion)
}

// conclude runs the final analysis. An oracle failure pauses on a retry
// prompt with the same completion; nothing the respondent gave is lost.
func (c *chat) conclude(ctx context.Context, done interview.Completion) (results.Record, error) {
	if err := done.Wait(ctx); err != nil {
		return results.Record{}, err
	}

	var res interview.Result
	for {
		var err error
		res, err = interview.Conclude(ctx, c.analyzer, c.matcher, done)
		if err == nil {
			break
		}
		if !errors.Is(err, interview.ErrOracleUnavailable) && !errors.Is(err, interview.ErrEmptyAnalysis) {
			return results.Record{}, err
		}
		c.log.WithError(err).Warn("final analysis failed")
		fmt.Fprintf(c.out, "! %s\n", c.messages.AnalysisApology)
		fmt.Fprint(c.out, "Press Enter to retry, /quit to exit: ")
		if !c.in.Scan() {
			if err := c.in.Err(); err != nil {
				return results.Record{}, fmt.Errorf("read input: %w", err)
			}
			return results.Record{}, errQuit
		}
		switch strings.TrimSpace(c.in.Text()) {
		case "/quit", "quit":
			return results.Record{}, errQuit
		}
	}

	rec, err := c.store.SaveResult(results.NewRecord(c.sess.ID(), c.name, res, done))
	if err != nil {
		return results.Record{}, err
	}
	printResult(c.out, rec)
	return rec, nil
}

// #endregion repl

// #region output
func (c *chat) print(turn interview.Turn) {
	for _, m := range turn.Messages {
		switch m.Kind {
		case interview.MessageQuestion:
			if turn.Question != nil {
				printQuestion(c.out, *turn.Question)
				continue
			}
			fmt.Fprintln(c.out, m.Text)
		case interview.MessageWarning, interview.MessageApology:
			fmt.Fprintf(c.out, "! %s\n", m.Text)
		default:
			fmt.Fprintln(c.out, m.Text)
		}
	}
	// an apology turn repeats the still-active question
	if len(turn.Messages) == 1 && turn.Messages[0].Kind == interview.MessageApology && turn.Question != nil {
		printQuestion(c.out, *turn.Question)
	}
}

func (c *chat) journal(turn interview.Turn, err error) {
	if turn.Decision.Action == "" || turn.NoOp {
		return
	}
	if jerr := c.store.LogTurn(results.EntryFromTurn(c.sess.ID(), turn, err != nil)); jerr != nil {
		c.log.WithError(jerr).Warn("journal write failed")
	}
}

func printQuestion(w io.Writer, q interview.Question) {
	fmt.Fprintf(w, "\n%s\n", q.Text)
	for i, choice := range q.Choices {
		fmt.Fprintf(w, "  %d) %s\n", i+1, choice)
	}
}

func printResult(w io.Writer, rec results.Record) {
	r := rec.Result
	fmt.Fprintf(w, "\n=== %s (similarity %.3f) ===\n", r.PersonalityType, r.Similarity)
	fmt.Fprintln(w, r.TypeDescription)
	fmt.Fprintf(w, "\nRole:        %s\n", r.RoleInContext)
	fmt.Fprintf(w, "Learning:    %s\n", r.LearningStyle)
	fmt.Fprintf(w, "Motivation:  %s\n\n", r.MotivationSource)

	fmt.Fprintf(w, "%-16s %5s  %s\n", "TRAIT", "SCORE", "REASON")
	for _, s := range r.Analysis {
		fmt.Fprintf(w, "%-16s %5d  %s\n", s.Trait, s.Score, s.Reason)
		if s.Advice != "" {
			fmt.Fprintf(w, "%-16s %5s  advice: %s\n", "", "", s.Advice)
		}
	}
	if len(rec.Flagged) > 0 {
		fmt.Fprintln(w, "\nFlagged questions:")
		for _, f := range rec.Flagged {
			mark := "skipped"
			if f.Improper {
				mark = "low effort"
			}
			fmt.Fprintf(w, "  [%s] %s\n", mark, f.Question.Text)
		}
	}
	fmt.Fprintf(w, "\nSaved as %s\n", rec.ID)
}

// #endregion output

// resolveChoice maps a choice number to its text. Anything else is taken
// as a free-text answer.
func resolveChoice(line string, q *interview.Question) string {
	if q == nil {
		return line
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(q.Choices) {
		return line
	}
	return q.Choices[n-1]
}
