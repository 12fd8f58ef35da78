package results

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a result ID does not exist.
var ErrNotFound = errors.New("result not found")

// timeFormat is fixed-width so created_at sorts lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS results (
	result_id         TEXT PRIMARY KEY,
	session_id        TEXT NOT NULL,
	respondent        TEXT,
	personality_type  TEXT NOT NULL,
	similarity        REAL NOT NULL,
	result_json       TEXT NOT NULL,
	answers_json      TEXT NOT NULL,
	flagged_json      TEXT NOT NULL,
	created_at        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS turn_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT NOT NULL,
	action        TEXT NOT NULL,
	trait         TEXT,
	stability     INTEGER NOT NULL,
	asked         INTEGER NOT NULL,
	reason        TEXT,
	failed        INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_turn_log_session ON turn_log(session_id, id);
`

// #endregion schema

// #region store-struct
// Store keeps concluded interviews and the per-turn journal in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations. ":memory:" keeps
// everything in process. turn_log rows are keyed by session, not by result:
// abandoned sessions keep their journal without any result row.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// one connection so an in-memory database is shared by every query
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region save-result
// SaveResult stores rec, assigning an ID and timestamp when missing.
func (s *Store) SaveResult(rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	resultJSON, err := json.Marshal(rec.Result)
	if err != nil {
		return Record{}, fmt.Errorf("marshal result: %w", err)
	}
	answersJSON, err := json.Marshal(nonNil(rec.Answers))
	if err != nil {
		return Record{}, fmt.Errorf("marshal answers: %w", err)
	}
	flaggedJSON, err := json.Marshal(nonNil(rec.Flagged))
	if err != nil {
		return Record{}, fmt.Errorf("marshal flagged: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO results (result_id, session_id, respondent, personality_type, similarity, result_json, answers_json, flagged_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SessionID, nullIfEmpty(rec.Respondent), rec.Result.PersonalityType, rec.Result.Similarity,
		string(resultJSON), string(answersJSON), string(flaggedJSON), rec.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert result: %w", err)
	}
	return rec, nil
}

// #endregion save-result

// #region get-result
// GetResult reads a stored result by ID.
func (s *Store) GetResult(id string) (Record, error) {
	var (
		rec                                  Record
		respondent                           sql.NullString
		resultJSON, answersJSON, flaggedJSON string
		createdAt                            string
	)
	err := s.db.QueryRow(
		`SELECT result_id, session_id, respondent, result_json, answers_json, flagged_json, created_at
		 FROM results WHERE result_id = ?`, id,
	).Scan(&rec.ID, &rec.SessionID, &respondent, &resultJSON, &answersJSON, &flaggedJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get result %s: %w", id, err)
	}

	rec.Respondent = respondent.String
	if err := json.Unmarshal([]byte(resultJSON), &rec.Result); err != nil {
		return Record{}, fmt.Errorf("unmarshal result: %w", err)
	}
	if err := json.Unmarshal([]byte(answersJSON), &rec.Answers); err != nil {
		return Record{}, fmt.Errorf("unmarshal answers: %w", err)
	}
	if err := json.Unmarshal([]byte(flaggedJSON), &rec.Flagged); err != nil {
		return Record{}, fmt.Errorf("unmarshal flagged: %w", err)
	}
	rec.CreatedAt, err = time.Parse(timeFormat, createdAt)
	if err != nil {
		return Record{}, fmt.Errorf("parse created_at: %w", err)
	}
	return rec, nil
}

// #endregion get-result

// #region list-results
// ListResults returns the newest results first. limit <= 0 means all.
func (s *Store) ListResults(limit int) ([]Summary, error) {
	query := `SELECT result_id, session_id, respondent, personality_type, similarity, created_at
		FROM results ORDER BY created_at DESC, result_id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum        Summary
			respondent sql.NullString
			createdAt  string
		)
		if err := rows.Scan(&sum.ID, &sum.SessionID, &respondent, &sum.PersonalityType, &sum.Similarity, &createdAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		sum.Respondent = respondent.String
		if sum.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// #endregion list-results

// #region turn-log
// LogTurn appends a journal entry to the turn_log table.
func (s *Store) LogTurn(entry TurnEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	failed := 0
	if entry.Failed {
		failed = 1
	}

	_, err := s.db.Exec(
		`INSERT INTO turn_log (session_id, action, trait, stability, asked, reason, failed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID,
		entry.Action,
		nullIfEmpty(entry.Trait),
		entry.Stability,
		entry.Asked,
		nullIfEmpty(entry.Reason),
		failed,
		entry.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("log turn: %w", err)
	}
	return nil
}

// ListTurns returns a session's journal in insertion order.
func (s *Store) ListTurns(sessionID string) ([]TurnEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, action, trait, stability, asked, reason, failed, created_at
		 FROM turn_log WHERE session_id = ? ORDER BY id`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	var out []TurnEntry
	for rows.Next() {
		var (
			e             TurnEntry
			trait, reason sql.NullString
			failed        int
			createdAt     string
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Action, &trait, &e.Stability, &e.Asked, &reason, &failed, &createdAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		e.Trait = trait.String
		e.Reason = reason.String
		e.Failed = failed != 0
		if e.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion turn-log

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// #endregion helpers
