package interview

import (
	"context"
	"errors"
	"time"

	"github.com/danielpatrickdp/trait-interview/internal/quality"
	"github.com/danielpatrickdp/trait-interview/internal/trait"
)

// #region errors
var (
	// ErrOracleUnavailable covers failed or malformed oracle calls. The
	// session is left exactly as it was before the call.
	ErrOracleUnavailable = errors.New("oracle unavailable")
	// ErrEmptyAnalysis means the analysis call succeeded with no trait records.
	ErrEmptyAnalysis = errors.New("analysis returned no trait records")

	ErrNotStarted      = errors.New("session not started")
	ErrAlreadyStarted  = errors.New("session already started")
	ErrSessionFinished = errors.New("session finished")
	// ErrBusy is returned when an operation arrives while an oracle call is in flight.
	ErrBusy = errors.New("session busy")
)

// #endregion errors

// #region question
// Question is a single interview prompt. ID is fixed at creation.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Choices []string `json:"choices,omitempty"`
}

// Identity implements quality.Identified.
func (q Question) Identity() string {
	return q.ID
}

// Answer pairs a question with the respondent's reply.
type Answer struct {
	Question Question `json:"question"`
	Text     string   `json:"answer_text"`
}

// #endregion question

// #region message
// MessageKind tags in-band conversation messages.
type MessageKind string

const (
	MessageGreeting   MessageKind = "greeting"
	MessageQuestion   MessageKind = "question"
	MessageAck        MessageKind = "ack"
	MessageTransition MessageKind = "transition"
	MessageWarning    MessageKind = "warning"
	MessageClosing    MessageKind = "closing"
	MessageApology    MessageKind = "apology"
)

// Message is one bot line for the conversation stream.
type Message struct {
	Kind MessageKind `json:"kind"`
	Text string      `json:"text"`
}

// Messages holds the fixed bot lines.
type Messages struct {
	Greeting        string
	AnswerAck       string
	SkipAck         string
	Transition      string
	Closing         string
	Apology         string
	AnalysisApology string
}

// DefaultMessages returns the standard conversational lines.
func DefaultMessages() Messages {
	return Messages{
		Greeting: "Hey there! Let's start a little psychology test that peeks into the back of your mind.\n" +
			"I'll ask you a few questions, just answer however feels natural.\n\nOkay, first question!",
		AnswerAck:  "Thanks! On to the next question.",
		SkipAck:    "Okay! We'll skip that one.",
		Transition: "Hmm, interesting answer, thank you.\nAlright, let me ask from a slightly different angle.",
		Closing: "Thanks for answering so many questions! I feel like I've got a good picture of you on every point.\n" +
			"I'm starting the final analysis now, give me just a moment!",
		Apology: "Sorry! Something isn't working right on my side and I hit an error.\n" +
			"Could you wait a little and try again?",
		AnalysisApology: "Sorry! I couldn't finish analysing your answers. Please try again in a little while.",
	}
}

// #endregion message

// #region oracle
// StepRequest is the input of the oracle's next-question call.
type StepRequest struct {
	Answers      []Answer         `json:"answers"`
	ScoreHistory []trait.Snapshot `json:"score_history"`
	Target       trait.Trait      `json:"target_trait"`
}

// Step is the oracle's next question plus a fresh 8-trait estimate.
type Step struct {
	Question string        `json:"question"`
	Choices  []string      `json:"choices"`
	Scores   []trait.Score `json:"trait_scores"`
}

// Oracle produces the next question for a target trait.
type Oracle interface {
	NextStep(ctx context.Context, req StepRequest) (Step, error)
}

// AnalysisRequest is the input of the oracle's final analysis call.
type AnalysisRequest struct {
	Answers []Answer   `json:"answers"`
	Skipped []Question `json:"skipped_questions"`
}

// Analysis is the oracle's qualitative and per-trait result.
type Analysis struct {
	RoleInContext    string        `json:"role_in_context"`
	LearningStyle    string        `json:"learning_style"`
	MotivationSource string        `json:"motivation_source"`
	Traits           []trait.Score `json:"analysis"`
}

// Analyzer produces the final analysis of a finished interview.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) (Analysis, error)
}

// #endregion oracle

// #region config
// Config holds the progression thresholds.
type Config struct {
	StabilityThreshold   int           // max score change that still counts as stable
	RequiredStability    int           // stable turns needed to leave a trait
	MinQuestionsPerTrait int           // questions asked before a trait may be left
	HandoffDelay         time.Duration // pause after the closing message before analysis
	Quality              quality.Config
	Messages             Messages
}

// DefaultConfig returns the standard progression rules.
func DefaultConfig() Config {
	return Config{
		StabilityThreshold:   3,
		RequiredStability:    1,
		MinQuestionsPerTrait: 3,
		HandoffDelay:         2 * time.Second,
		Quality:              quality.DefaultConfig(),
		Messages:             DefaultMessages(),
	}
}

// #endregion config

// #region decision
// Action names what a turn did.
type Action string

const (
	ActionStart     Action = "start"
	ActionContinue  Action = "continue"
	ActionSkip      Action = "skip"
	ActionAdvance   Action = "advance"
	ActionTerminate Action = "terminate"
	ActionBack      Action = "back"
)

// Decision records the progression outcome of a turn.
type Decision struct {
	Action    Action      `json:"action"`
	Trait     trait.Trait `json:"trait"`
	Stability int         `json:"stability"`
	Asked     int         `json:"asked"`
	Reason    string      `json:"reason"`
}

// #endregion decision

// #region turn
// Completion is handed to the consumer when the interview ends.
type Completion struct {
	Answers      []Answer      `json:"answers"`
	Skipped      []Question    `json:"skipped_questions"`
	Improper     []Question    `json:"improper_questions"`
	HandoffDelay time.Duration `json:"handoff_delay"`
}

// Wait blocks for the handoff delay so the closing message can be shown
// before analysis starts.
func (c Completion) Wait(ctx context.Context) error {
	if c.HandoffDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(c.HandoffDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Turn is the result of one session operation.
type Turn struct {
	Messages   []Message    `json:"messages"`
	Question   *Question    `json:"question,omitempty"`
	Decision   Decision     `json:"decision"`
	Completion *Completion  `json:"completion,omitempty"`
	Flag       quality.Kind `json:"flag,omitempty"` // low-effort pattern flagged on this turn
	NoOp       bool         `json:"no_op,omitempty"`
}

// Done reports whether this turn ended the interview.
func (t Turn) Done() bool {
	return t.Completion != nil
}

// #endregion turn
