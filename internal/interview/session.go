package interview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/danielpatrickdp/trait-interview/internal/quality"
	"github.com/danielpatrickdp/trait-interview/internal/trait"
)

var errMalformedStep = errors.New("malformed oracle step")

// #region state
type state struct {
	started   bool
	finished  bool
	target    int
	answers   []Answer
	history   []Question
	active    *Question
	skipped   []Question
	improper  []Question
	snapshots []trait.Snapshot
	last      trait.Snapshot
	stability [trait.Count]int
	asked     int
	monitor   quality.Monitor
	shownAt   time.Time
	done      *Completion
}

// clone copies every slice header so a turn can be built without touching
// the committed state. Snapshots and questions are never mutated in place,
// so element sharing is safe.
func (st state) clone() state {
	out := st
	out.answers = slices.Clone(st.answers)
	out.history = slices.Clone(st.history)
	out.skipped = slices.Clone(st.skipped)
	out.improper = slices.Clone(st.improper)
	out.snapshots = slices.Clone(st.snapshots)
	if st.active != nil {
		q := *st.active
		out.active = &q
	}
	return out
}

// #endregion state

// #region session
// Session is one respondent's interview. Operations are serialised: a call
// made while another is waiting on the oracle fails with ErrBusy.
type Session struct {
	id     string
	oracle Oracle
	config Config
	clock  func() time.Time
	log    logrus.FieldLogger

	op      sync.Mutex
	stateMu sync.RWMutex
	st      state
}

// Option customises a Session.
type Option func(*Session)

// WithClock replaces time.Now, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) { s.clock = clock }
}

// WithLogger sets the logger used for turn records.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Session) { s.log = log }
}

// WithID fixes the session ID instead of generating one.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// NewSession creates an unstarted interview backed by oracle.
func NewSession(oracle Oracle, config Config, opts ...Option) *Session {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Session{
		id:     uuid.NewString(),
		oracle: oracle,
		config: config,
		clock:  time.Now,
		log:    discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.st.monitor = quality.NewMonitor(config.Quality)
	s.log = s.log.WithField("session", s.id)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// #endregion session

// #region start
// Start asks the first question for the first trait.
func (s *Session) Start(ctx context.Context) (Turn, error) {
	if !s.op.TryLock() {
		return Turn{}, ErrBusy
	}
	defer s.op.Unlock()

	cur := s.current()
	if cur.started {
		return Turn{}, ErrAlreadyStarted
	}

	next := cur.clone()
	q, snap, err := s.fetch(ctx, &next, 0)
	if err != nil {
		return s.fail(ActionStart, trait.Order[0], err)
	}

	next.started = true
	next.target = 0
	next.snapshots = append(next.snapshots, snap)
	next.last = snap
	next.asked = 0
	s.show(&next, q)

	turn := Turn{
		Messages: []Message{
			{Kind: MessageGreeting, Text: s.config.Messages.Greeting},
			{Kind: MessageQuestion, Text: q.Text},
		},
		Question: &q,
		Decision: Decision{
			Action: ActionStart,
			Trait:  trait.Order[0],
			Asked:  next.asked,
			Reason: "first question",
		},
	}
	s.commit(next)
	s.logTurn(turn)
	return turn, nil
}

// #endregion start

// #region submit
// SubmitAnswer records text as the answer to the active question and
// moves the interview on.
func (s *Session) SubmitAnswer(ctx context.Context, text string) (Turn, error) {
	return s.respond(ctx, text, false)
}

// Skip records the active question as skipped and moves the interview on.
// A skip always resets the current trait's stability.
func (s *Session) Skip(ctx context.Context) (Turn, error) {
	return s.respond(ctx, "", true)
}

func (s *Session) respond(ctx context.Context, text string, skip bool) (Turn, error) {
	if !s.op.TryLock() {
		return Turn{}, ErrBusy
	}
	defer s.op.Unlock()

	cur := s.current()
	if !cur.started {
		return Turn{}, ErrNotStarted
	}
	if cur.finished {
		return Turn{}, ErrSessionFinished
	}

	next := cur.clone()
	target := trait.Order[next.target]
	active := *next.active
	priorAnswers := len(next.answers)

	var msgs []Message
	var flag quality.Flag
	if skip {
		flag = next.monitor.ObserveSkip()
		next.skipped = append(next.skipped, active)
	} else {
		flag = next.monitor.ObserveAnswer(s.clock().Sub(next.shownAt))
		next.answers = append(next.answers, Answer{Question: active, Text: text})
	}
	if flag.Raised {
		msgs = append(msgs, Message{Kind: MessageWarning, Text: flag.Warning})
		next.improper = append(next.improper, active)
	}

	q, snap, err := s.fetch(ctx, &next, next.target)
	if err != nil {
		action := ActionContinue
		if skip {
			action = ActionSkip
		}
		return s.fail(action, target, err)
	}

	stability, reason := nextStability(next.stability[next.target], next.last, snap, target, skip, s.config.StabilityThreshold)
	next.stability[next.target] = stability
	next.snapshots = append(next.snapshots, snap)
	next.last = snap

	decision := Decision{Trait: target, Stability: stability, Asked: next.asked, Reason: reason}

	if !skip && shouldAdvance(s.config, next.asked, stability) {
		if next.target == trait.Count-1 {
			return s.terminate(next, msgs, decision, flag.Kind), nil
		}

		next.target++
		newTarget := trait.Order[next.target]
		q, _, err = s.fetch(ctx, &next, next.target)
		if err != nil {
			return s.fail(ActionAdvance, newTarget, err)
		}
		s.show(&next, q)
		// the opening question of a trait does not count toward its floor
		next.asked = 0

		msgs = append(msgs,
			Message{Kind: MessageTransition, Text: s.config.Messages.Transition},
			Message{Kind: MessageQuestion, Text: q.Text},
		)
		decision.Action = ActionAdvance
		decision.Reason = fmt.Sprintf("%s; advance to %s", reason, newTarget)
		turn := Turn{Messages: msgs, Question: &q, Decision: decision, Flag: flag.Kind}
		s.commit(next)
		s.logTurn(turn)
		return turn, nil
	}

	decision.Action = ActionContinue
	ack := s.config.Messages.AnswerAck
	if skip {
		decision.Action = ActionSkip
		ack = s.config.Messages.SkipAck
	}
	if priorAnswers > 0 {
		msgs = append(msgs, Message{Kind: MessageAck, Text: ack})
	}
	s.show(&next, q)
	msgs = append(msgs, Message{Kind: MessageQuestion, Text: q.Text})

	turn := Turn{Messages: msgs, Question: &q, Decision: decision, Flag: flag.Kind}
	s.commit(next)
	s.logTurn(turn)
	return turn, nil
}

func (s *Session) terminate(next state, msgs []Message, decision Decision, flag quality.Kind) Turn {
	next.finished = true
	next.active = nil
	done := &Completion{
		Answers:      slices.Clone(next.answers),
		Skipped:      slices.Clone(next.skipped),
		Improper:     slices.Clone(next.improper),
		HandoffDelay: s.config.HandoffDelay,
	}
	next.done = done

	decision.Action = ActionTerminate
	decision.Reason += "; all traits covered"
	turn := Turn{
		Messages:   append(msgs, Message{Kind: MessageClosing, Text: s.config.Messages.Closing}),
		Decision:   decision,
		Completion: done,
		Flag:       flag,
	}
	s.commit(next)
	s.logTurn(turn)
	return turn
}

// #endregion submit

// #region back
// GoBack withdraws the most recent answer and re-activates the previous
// question. It never crosses back into an earlier trait. Without a prior
// answer it is a no-op.
func (s *Session) GoBack() (Turn, error) {
	if !s.op.TryLock() {
		return Turn{}, ErrBusy
	}
	defer s.op.Unlock()

	cur := s.current()
	if !cur.started {
		return Turn{}, ErrNotStarted
	}
	if cur.finished {
		return Turn{}, ErrSessionFinished
	}
	target := trait.Order[cur.target]
	if len(cur.answers) == 0 || len(cur.history) < 2 {
		return Turn{NoOp: true, Decision: Decision{Action: ActionBack, Trait: target, Asked: cur.asked, Reason: "nothing to go back to"}}, nil
	}

	next := cur.clone()
	next.answers = next.answers[:len(next.answers)-1]
	next.history = next.history[:len(next.history)-1]
	prev := next.history[len(next.history)-1]
	next.active = &prev

	if len(next.snapshots) > 1 {
		next.snapshots = next.snapshots[:len(next.snapshots)-1]
		if n := len(next.snapshots); n >= 2 {
			next.last = next.snapshots[n-2]
		} else {
			next.last = nil
		}
	}
	if next.asked > 1 {
		next.asked--
	}
	next.shownAt = s.clock()

	turn := Turn{
		Messages: []Message{{Kind: MessageQuestion, Text: prev.Text}},
		Question: &prev,
		Decision: Decision{
			Action:    ActionBack,
			Trait:     target,
			Stability: next.stability[next.target],
			Asked:     next.asked,
			Reason:    "withdrew last answer",
		},
	}
	s.commit(next)
	s.logTurn(turn)
	return turn, nil
}

// #endregion back

// #region view
// View is a read-only copy of a session's progress.
type View struct {
	ID          string              `json:"id"`
	Started     bool                `json:"started"`
	Finished    bool                `json:"finished"`
	Target      trait.Trait         `json:"target_trait,omitempty"`
	TargetIndex int                 `json:"target_index"`
	Asked       int                 `json:"questions_asked"`
	Stability   map[trait.Trait]int `json:"stability"`
	Active      *Question           `json:"active_question,omitempty"`
	Answers     []Answer            `json:"answers"`
	Skipped     []Question          `json:"skipped_questions"`
	Improper    []Question          `json:"improper_questions"`
	Questions   int                 `json:"questions_shown"`
	Snapshots   int                 `json:"snapshots"`
	Last        trait.Snapshot      `json:"last_snapshot,omitempty"`
	FastStreak  int                 `json:"fast_streak"`
	SkipStreak  int                 `json:"skip_streak"`
}

// Snapshot returns the session's current progress. It does not wait for an
// in-flight oracle call.
func (s *Session) Snapshot() View {
	st := s.current().clone()
	v := View{
		ID:          s.id,
		Started:     st.started,
		Finished:    st.finished,
		TargetIndex: st.target,
		Asked:       st.asked,
		Stability:   make(map[trait.Trait]int, trait.Count),
		Active:      st.active,
		Answers:     st.answers,
		Skipped:     st.skipped,
		Improper:    st.improper,
		Questions:   len(st.history),
		Snapshots:   len(st.snapshots),
		Last:        st.last,
	}
	if st.started {
		v.Target = trait.Order[st.target]
	}
	for i, t := range trait.Order {
		v.Stability[t] = st.stability[i]
	}
	v.FastStreak, v.SkipStreak = st.monitor.Streaks()
	return v
}

// Completion returns the hand-off of a finished session.
func (s *Session) Completion() (Completion, bool) {
	st := s.current()
	if st.done == nil {
		return Completion{}, false
	}
	return *st.done, true
}

// #endregion view

// #region helpers
func (s *Session) current() state {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.st
}

func (s *Session) commit(next state) {
	s.stateMu.Lock()
	s.st = next
	s.stateMu.Unlock()
}

// show makes q the active question and counts it toward the current trait.
func (s *Session) show(st *state, q Question) {
	st.history = append(st.history, q)
	st.active = &q
	st.asked++
	st.shownAt = s.clock()
}

// fetch asks the oracle for the next question on target and validates the
// result. The request carries the answers and snapshots as they stand in st.
func (s *Session) fetch(ctx context.Context, st *state, target int) (Question, trait.Snapshot, error) {
	req := StepRequest{
		Answers:      slices.Clone(st.answers),
		ScoreHistory: slices.Clone(st.snapshots),
		Target:       trait.Order[target],
	}
	step, err := s.oracle.NextStep(ctx, req)
	if err != nil {
		return Question{}, nil, fmt.Errorf("next step for %s: %w", req.Target, err)
	}

	if strings.TrimSpace(step.Question) == "" {
		return Question{}, nil, fmt.Errorf("%w: empty question", errMalformedStep)
	}
	if len(step.Choices) == 0 {
		return Question{}, nil, fmt.Errorf("%w: question has no choices", errMalformedStep)
	}
	snap, err := trait.Canonicalize(step.Scores)
	if err != nil {
		return Question{}, nil, fmt.Errorf("%w: %w", errMalformedStep, err)
	}
	for _, sc := range snap {
		if sc.Score < 1 || sc.Score > 100 {
			return Question{}, nil, fmt.Errorf("%w: %s score %d out of range", errMalformedStep, sc.Trait, sc.Score)
		}
	}

	q := Question{
		ID:      uuid.NewString(),
		Text:    step.Question,
		Choices: slices.Clone(step.Choices),
	}
	return q, snap, nil
}

// fail builds the apology turn. Session state is not touched.
func (s *Session) fail(action Action, target trait.Trait, err error) (Turn, error) {
	s.log.WithFields(logrus.Fields{
		"trait":  target,
		"action": action,
	}).WithError(err).Warn("oracle call failed")

	turn := Turn{
		Messages: []Message{{Kind: MessageApology, Text: s.config.Messages.Apology}},
		Decision: Decision{Action: action, Trait: target, Reason: "oracle unavailable"},
	}
	if active := s.current().active; active != nil {
		q := *active
		turn.Question = &q
	}
	return turn, fmt.Errorf("%w: %w", ErrOracleUnavailable, err)
}

func (s *Session) logTurn(turn Turn) {
	s.log.WithFields(logrus.Fields{
		"trait":     turn.Decision.Trait,
		"action":    turn.Decision.Action,
		"stability": turn.Decision.Stability,
		"asked":     turn.Decision.Asked,
	}).Info(turn.Decision.Reason)
}

// #endregion helpers
