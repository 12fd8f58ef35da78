package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.Equal(t, 200, cfg.Corpus.Size)

	ic := cfg.InterviewSettings()
	assert.Equal(t, 3, ic.StabilityThreshold)
	assert.Equal(t, 1, ic.RequiredStability)
	assert.Equal(t, 3, ic.MinQuestionsPerTrait)
	assert.Equal(t, 2*time.Second, ic.HandoffDelay)
	assert.Equal(t, 2*time.Second, ic.Quality.FastAnswerWindow)
	assert.NotEmpty(t, ic.Messages.Greeting)
}

func TestParseOverrides(t *testing.T) {
	cfg, err := parse(env.Options{Environment: map[string]string{
		"INTERVIEW_ORACLE_ADDR":      "oracle:9000",
		"INTERVIEW_ORACLE_TIMEOUT":   "5s",
		"INTERVIEW_CORPUS_SIZE":      "64",
		"INTERVIEW_CORPUS_SEED":      "42",
		"INTERVIEW_HANDOFF_DELAY":    "0s",
		"INTERVIEW_MIN_QUESTIONS":    "2",
		"INTERVIEW_DB_PATH":          "/tmp/results.db",
		"INTERVIEW_LOG_FORMAT":       "json",
		"INTERVIEW_MATCH_CACHE_SIZE": "0",
	}})
	require.NoError(t, err)

	assert.Equal(t, "oracle:9000", cfg.Oracle.Addr)
	assert.Equal(t, 5*time.Second, cfg.OracleClientSettings().CallTimeout)
	assert.Equal(t, 64, cfg.GeneratorSettings().Size)
	assert.Equal(t, uint64(42), cfg.GeneratorSettings().Seed)
	assert.Equal(t, 0, cfg.MatcherSettings().CacheSize)
	assert.Equal(t, time.Duration(0), cfg.InterviewSettings().HandoffDelay)
	assert.Equal(t, 2, cfg.InterviewSettings().MinQuestionsPerTrait)
	assert.Equal(t, "/tmp/results.db", cfg.DBPath)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestParseRejectsBadValues(t *testing.T) {
	_, err := parse(env.Options{Environment: map[string]string{"INTERVIEW_CORPUS_SIZE": "5000"}})
	assert.Error(t, err)

	_, err = parse(env.Options{Environment: map[string]string{"INTERVIEW_ORACLE_TIMEOUT": "soon"}})
	assert.Error(t, err)

	_, err = parse(env.Options{Environment: map[string]string{"INTERVIEW_MIN_QUESTIONS": "0"}})
	assert.Error(t, err)
}

func TestLoadReadsDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("INTERVIEW_HTTP_ADDR=:9191\nINTERVIEW_CORPUS_SIZE=32\n"), 0o644))
	t.Setenv("INTERVIEW_CORPUS_SIZE", "16")
	t.Setenv("INTERVIEW_HTTP_ADDR", "")
	os.Unsetenv("INTERVIEW_HTTP_ADDR")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9191", cfg.Server.Addr)
	// real environment wins over the file
	assert.Equal(t, 16, cfg.Corpus.Size)

	_, err = Load(filepath.Join(dir, "missing.env"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	_, err = NewLogger(LogConfig{Level: "loud"})
	assert.Error(t, err)
	_, err = NewLogger(LogConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}
