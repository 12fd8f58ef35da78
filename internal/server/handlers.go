package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/danielpatrickdp/trait-interview/internal/interview"
	"github.com/danielpatrickdp/trait-interview/internal/metrics"
	"github.com/danielpatrickdp/trait-interview/internal/results"
)

// #region types
type errorResponse struct {
	Error string `json:"error"`
}

type turnResponse struct {
	SessionID string `json:"session_id"`
	interview.Turn
	Error string `json:"error,omitempty"`
}

type answerRequest struct {
	Text string `json:"text"`
}

type concludeRequest struct {
	Name string `json:"name"`
}

type concludeFailure struct {
	Error   string            `json:"error"`
	Message interview.Message `json:"message"`
}

// #endregion types

// #region health
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": s.sessions.len(),
		"corpus":   s.deps.Corpus.Len(),
	})
}

// #endregion health

// #region sessions
func (s *Server) createSession(c *gin.Context) {
	sess := interview.NewSession(s.deps.Oracle, s.deps.Interview, interview.WithLogger(s.deps.Log))
	if err := s.sessions.add(sess); err != nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	turn, err := sess.Start(oracleContext(c))
	if err != nil {
		s.sessions.remove(sess.ID())
	}
	s.respondTurn(c, sess.ID(), turn, err, http.StatusCreated)
}

func (s *Server) getSession(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

func (s *Server) deleteSession(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	s.sessions.remove(sess.ID())
	if v := sess.Snapshot(); v.Started && !v.Finished {
		s.deps.Metrics.SessionDropped()
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) submitAnswer(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request: " + err.Error()})
		return
	}
	turn, err := sess.SubmitAnswer(oracleContext(c), req.Text)
	s.respondTurn(c, sess.ID(), turn, err, http.StatusOK)
}

func (s *Server) skip(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	turn, err := sess.Skip(oracleContext(c))
	s.respondTurn(c, sess.ID(), turn, err, http.StatusOK)
}

func (s *Server) goBack(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	turn, err := sess.GoBack()
	s.respondTurn(c, sess.ID(), turn, err, http.StatusOK)
}

func (s *Server) listTurns(c *gin.Context) {
	entries, err := s.deps.Store.ListTurns(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if entries == nil {
		entries = []results.TurnEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// #endregion sessions

// #region conclude
func (s *Server) conclude(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	var req concludeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request: " + err.Error()})
			return
		}
	}

	done, finished := sess.Completion()
	if !finished {
		c.JSON(http.StatusConflict, errorResponse{Error: "interview not finished"})
		return
	}

	res, err := interview.Conclude(oracleContext(c), s.deps.Analyzer, s.deps.Matcher, done)
	if err != nil {
		if errors.Is(err, interview.ErrOracleUnavailable) {
			s.deps.Metrics.RecordOracleFailure(metrics.CallAnalyze)
		}
		s.log.WithField("session", sess.ID()).WithError(err).Warn("conclude failed")
		c.JSON(statusFor(err), concludeFailure{
			Error:   err.Error(),
			Message: interview.Message{Kind: interview.MessageApology, Text: s.deps.Interview.Messages.AnalysisApology},
		})
		return
	}
	s.deps.Metrics.RecordMatch(res.Similarity)

	rec, err := s.deps.Store.SaveResult(results.NewRecord(sess.ID(), req.Name, res, done))
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	s.sessions.remove(sess.ID())
	c.JSON(http.StatusOK, rec)
}

// #endregion conclude

// #region results
func (s *Server) listResults(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			return
		}
		limit = n
	}
	list, err := s.deps.Store.ListResults(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if list == nil {
		list = []results.Summary{}
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) getResult(c *gin.Context) {
	rec, err := s.deps.Store.GetResult(c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) listArchetypes(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	if format == "json" {
		c.JSON(http.StatusOK, s.deps.Corpus.Document())
		return
	}
	var buf bytes.Buffer
	if err := s.deps.Corpus.Export(&buf, format); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/yaml", buf.Bytes())
}

// #endregion results

// #region helpers
func (s *Server) lookup(c *gin.Context) (*interview.Session, bool) {
	sess, err := s.sessions.get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		return nil, false
	}
	return sess, true
}

func (s *Server) respondTurn(c *gin.Context, id string, turn interview.Turn, err error, okStatus int) {
	s.record(id, turn, err)
	if err != nil {
		resp := turnResponse{SessionID: id, Error: err.Error()}
		if len(turn.Messages) > 0 {
			resp.Turn = turn
		}
		c.JSON(statusFor(err), resp)
		return
	}
	c.JSON(okStatus, turnResponse{SessionID: id, Turn: turn})
}

// record feeds a turn to metrics and the journal. Calls rejected before
// reaching the engine carry no decision and are skipped.
func (s *Server) record(id string, turn interview.Turn, err error) {
	if turn.Decision.Action == "" || turn.NoOp {
		return
	}
	if err != nil {
		if errors.Is(err, interview.ErrOracleUnavailable) {
			s.deps.Metrics.RecordOracleFailure(metrics.CallNextStep)
		}
	} else {
		s.deps.Metrics.RecordTurn(turn)
	}
	if jerr := s.deps.Store.LogTurn(results.EntryFromTurn(id, turn, err != nil)); jerr != nil {
		s.log.WithField("session", id).WithError(jerr).Warn("journal write failed")
	}
}

// oracleContext detaches oracle calls from client disconnects: once issued,
// a call runs to completion or failure.
func oracleContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, interview.ErrOracleUnavailable), errors.Is(err, interview.ErrEmptyAnalysis):
		return http.StatusBadGateway
	case errors.Is(err, interview.ErrBusy),
		errors.Is(err, interview.ErrSessionFinished),
		errors.Is(err, interview.ErrAlreadyStarted),
		errors.Is(err, interview.ErrNotStarted):
		return http.StatusConflict
	case errors.Is(err, results.ErrNotFound), errors.Is(err, errUnknownSession):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// #endregion helpers
