package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/danielpatrickdp/trait-interview/internal/archetype"
	"github.com/danielpatrickdp/trait-interview/internal/interview"
	"github.com/danielpatrickdp/trait-interview/internal/oracle"
)

// #region types
// OracleConfig locates and limits the external oracle.
type OracleConfig struct {
	Addr          string        `env:"INTERVIEW_ORACLE_ADDR"`
	CallTimeout   time.Duration `env:"INTERVIEW_ORACLE_TIMEOUT"`
	RatePerSecond float64       `env:"INTERVIEW_ORACLE_RATE"`
	Burst         int           `env:"INTERVIEW_ORACLE_BURST"`
}

// CorpusConfig controls archetype generation and matching.
type CorpusConfig struct {
	Size           int    `env:"INTERVIEW_CORPUS_SIZE"`
	Seed           uint64 `env:"INTERVIEW_CORPUS_SEED"`
	MatchCacheSize int    `env:"INTERVIEW_MATCH_CACHE_SIZE"`
}

// InterviewConfig holds the progression and quality thresholds.
type InterviewConfig struct {
	StabilityThreshold   int           `env:"INTERVIEW_STABILITY_THRESHOLD"`
	RequiredStability    int           `env:"INTERVIEW_REQUIRED_STABILITY"`
	MinQuestionsPerTrait int           `env:"INTERVIEW_MIN_QUESTIONS"`
	HandoffDelay         time.Duration `env:"INTERVIEW_HANDOFF_DELAY"`
	FastAnswerWindow     time.Duration `env:"INTERVIEW_FAST_ANSWER_WINDOW"`
	FastStreakLimit      int           `env:"INTERVIEW_FAST_STREAK"`
	SkipStreakLimit      int           `env:"INTERVIEW_SKIP_STREAK"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string `env:"INTERVIEW_HTTP_ADDR"`
	MaxSessions int    `env:"INTERVIEW_MAX_SESSIONS"`
}

// LogConfig selects level and output format ("text" or "json").
type LogConfig struct {
	Level  string `env:"INTERVIEW_LOG_LEVEL"`
	Format string `env:"INTERVIEW_LOG_FORMAT"`
}

// Config is the full application configuration.
type Config struct {
	Oracle    OracleConfig
	Corpus    CorpusConfig
	Interview InterviewConfig
	Server    ServerConfig
	Log       LogConfig
	DBPath    string `env:"INTERVIEW_DB_PATH"`
}

// #endregion types

// #region defaults
// DefaultConfig returns the built-in settings. Results stay in memory unless
// DBPath names a file.
func DefaultConfig() *Config {
	client := oracle.DefaultClientConfig()
	progression := interview.DefaultConfig()
	gen := archetype.DefaultGeneratorConfig()

	return &Config{
		Oracle: OracleConfig{
			Addr:          "localhost:50051",
			CallTimeout:   client.CallTimeout,
			RatePerSecond: client.RatePerSecond,
			Burst:         client.Burst,
		},
		Corpus: CorpusConfig{
			Size:           gen.Size,
			Seed:           gen.Seed,
			MatchCacheSize: archetype.DefaultMatcherConfig().CacheSize,
		},
		Interview: InterviewConfig{
			StabilityThreshold:   progression.StabilityThreshold,
			RequiredStability:    progression.RequiredStability,
			MinQuestionsPerTrait: progression.MinQuestionsPerTrait,
			HandoffDelay:         progression.HandoffDelay,
			FastAnswerWindow:     progression.Quality.FastAnswerWindow,
			FastStreakLimit:      progression.Quality.FastStreakLimit,
			SkipStreakLimit:      progression.Quality.SkipStreakLimit,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			MaxSessions: 1000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		DBPath: ":memory:",
	}
}

// #endregion defaults

// #region load
// Load applies dotenv files and then INTERVIEW_* variables over the
// defaults. Without arguments an optional ".env" in the working directory is
// read. Variables already set in the environment win over dotenv values.
func Load(dotenvFiles ...string) (*Config, error) {
	optional := len(dotenvFiles) == 0
	if optional {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil {
			if optional && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return parse(env.Options{Environment: env.ToMap(os.Environ())})
}

func parse(opts env.Options) (*Config, error) {
	cfg := DefaultConfig()
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the interview cannot run with.
func (c *Config) Validate() error {
	if c.Corpus.Size <= 0 || c.Corpus.Size > archetype.NameSpace() {
		return fmt.Errorf("corpus size %d out of range 1-%d", c.Corpus.Size, archetype.NameSpace())
	}
	if c.Interview.StabilityThreshold < 0 || c.Interview.RequiredStability < 0 || c.Interview.MinQuestionsPerTrait < 1 {
		return fmt.Errorf("invalid progression thresholds %+v", c.Interview)
	}
	if c.Interview.FastStreakLimit < 1 || c.Interview.SkipStreakLimit < 1 {
		return fmt.Errorf("streak limits must be positive")
	}
	if c.Oracle.CallTimeout < 0 || c.Interview.HandoffDelay < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

// #endregion load

// #region component-configs
// InterviewSettings converts to the engine configuration.
func (c *Config) InterviewSettings() interview.Config {
	out := interview.DefaultConfig()
	out.StabilityThreshold = c.Interview.StabilityThreshold
	out.RequiredStability = c.Interview.RequiredStability
	out.MinQuestionsPerTrait = c.Interview.MinQuestionsPerTrait
	out.HandoffDelay = c.Interview.HandoffDelay
	out.Quality.FastAnswerWindow = c.Interview.FastAnswerWindow
	out.Quality.FastStreakLimit = c.Interview.FastStreakLimit
	out.Quality.SkipStreakLimit = c.Interview.SkipStreakLimit
	return out
}

// OracleClientSettings converts to the gRPC client configuration.
func (c *Config) OracleClientSettings() oracle.ClientConfig {
	out := oracle.DefaultClientConfig()
	out.CallTimeout = c.Oracle.CallTimeout
	out.RatePerSecond = c.Oracle.RatePerSecond
	out.Burst = c.Oracle.Burst
	return out
}

// GeneratorSettings converts to the corpus generator configuration.
func (c *Config) GeneratorSettings() archetype.GeneratorConfig {
	return archetype.GeneratorConfig{Size: c.Corpus.Size, Seed: c.Corpus.Seed}
}

// MatcherSettings converts to the matcher configuration.
func (c *Config) MatcherSettings() archetype.MatcherConfig {
	return archetype.MatcherConfig{CacheSize: c.Corpus.MatchCacheSize}
}

// #endregion component-configs

// #region logger
// NewLogger builds the process logger.
func NewLogger(c LogConfig) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	log := logrus.New()
	log.SetLevel(level)
	switch c.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q", c.Format)
	}
	return log, nil
}

// #endregion logger
