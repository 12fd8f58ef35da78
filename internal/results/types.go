package results

import (
	"time"

	"github.com/danielpatrickdp/trait-interview/internal/interview"
	"github.com/danielpatrickdp/trait-interview/internal/quality"
)

// #region record
// FlaggedQuestion is a skipped or low-effort question shown on the result.
type FlaggedQuestion struct {
	Question interview.Question `json:"question"`
	Improper bool               `json:"improper"`
}

// Record is one stored interview outcome.
type Record struct {
	ID         string             `json:"id"`
	SessionID  string             `json:"session_id"`
	Respondent string             `json:"respondent"`
	Result     interview.Result   `json:"result"`
	Answers    []interview.Answer `json:"answers"`
	Flagged    []FlaggedQuestion  `json:"flagged_questions"`
	CreatedAt  time.Time          `json:"created_at"`
}

// NewRecord builds a record from a concluded interview. Skipped and
// improper questions are merged into one de-duplicated list.
func NewRecord(sessionID, respondent string, res interview.Result, done interview.Completion) Record {
	merged, improper := quality.MergeFlagged(done.Skipped, done.Improper)
	flagged := make([]FlaggedQuestion, len(merged))
	for i, q := range merged {
		flagged[i] = FlaggedQuestion{Question: q, Improper: improper[q.ID]}
	}
	return Record{
		SessionID:  sessionID,
		Respondent: respondent,
		Result:     res,
		Answers:    done.Answers,
		Flagged:    flagged,
	}
}

// Summary is the listing form of a Record.
type Summary struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	Respondent      string    `json:"respondent"`
	PersonalityType string    `json:"personality_type"`
	Similarity      float64   `json:"similarity"`
	CreatedAt       time.Time `json:"created_at"`
}

// #endregion record

// #region turn-entry
// TurnEntry is a single row in the turn_log table.
type TurnEntry struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Action    string    `json:"action"` // "start" | "continue" | "skip" | "advance" | "terminate" | "back"
	Trait     string    `json:"trait"`
	Stability int       `json:"stability"`
	Asked     int       `json:"asked"`
	Reason    string    `json:"reason"`
	Failed    bool      `json:"failed"`
	CreatedAt time.Time `json:"created_at"`
}

// EntryFromTurn converts a session turn into a journal entry.
func EntryFromTurn(sessionID string, turn interview.Turn, failed bool) TurnEntry {
	d := turn.Decision
	return TurnEntry{
		SessionID: sessionID,
		Action:    string(d.Action),
		Trait:     string(d.Trait),
		Stability: d.Stability,
		Asked:     d.Asked,
		Reason:    d.Reason,
		Failed:    failed,
	}
}

// #endregion turn-entry
