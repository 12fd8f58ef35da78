package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/trait-interview/internal/archetype"
	"github.com/danielpatrickdp/trait-interview/internal/config"
	"github.com/danielpatrickdp/trait-interview/internal/interview"
	"github.com/danielpatrickdp/trait-interview/internal/oracle"
	"github.com/danielpatrickdp/trait-interview/internal/results"
)

// #region main
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "interview",
		Short:         "Adaptive trait interview and archetype matcher",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String("env-file", "", "dotenv file to load (default: optional .env)")
	cmd.AddCommand(
		newChatCmd(),
		newServeCmd(),
		newCorpusCmd(),
		newMatchCmd(),
		newResultsCmd(),
	)
	return cmd
}

// #endregion main

// #region app
// app is the per-command composition root.
type app struct {
	cfg *config.Config
	log *logrus.Logger
}

func loadApp(cmd *cobra.Command) (*app, error) {
	var files []string
	if f, _ := cmd.Flags().GetString("env-file"); f != "" {
		files = append(files, f)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}
	log, err := config.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	log.SetOutput(cmd.ErrOrStderr())
	return &app{cfg: cfg, log: log}, nil
}

func (a *app) corpus() (*archetype.Corpus, error) {
	c, err := archetype.Generate(a.cfg.GeneratorSettings())
	if err != nil {
		return nil, fmt.Errorf("generate corpus: %w", err)
	}
	a.log.WithFields(logrus.Fields{"size": c.Len(), "seed": c.Seed()}).Info("archetype corpus ready")
	return c, nil
}

func (a *app) matcher() (*archetype.Corpus, *archetype.Matcher, error) {
	c, err := a.corpus()
	if err != nil {
		return nil, nil, err
	}
	m, err := archetype.NewMatcher(c, a.cfg.MatcherSettings())
	if err != nil {
		return nil, nil, err
	}
	return c, m, nil
}

func (a *app) store() (*results.Store, error) {
	s, err := results.NewStore(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open results store %s: %w", a.cfg.DBPath, err)
	}
	return s, nil
}

// oracle returns a scripted oracle when fixturePath is set and the gRPC
// client otherwise. The close func releases the connection.
func (a *app) oracle(fixturePath string) (interview.Oracle, interview.Analyzer, func() error, error) {
	if fixturePath != "" {
		f, err := oracle.LoadFixture(fixturePath)
		if err != nil {
			return nil, nil, nil, err
		}
		a.log.WithField("fixture", fixturePath).Info("using scripted oracle")
		o := oracle.NewFixtureOracle(f, true)
		return o, o, func() error { return nil }, nil
	}

	client, err := oracle.NewClient(a.cfg.Oracle.Addr, a.cfg.OracleClientSettings(), a.log)
	if err != nil {
		return nil, nil, nil, err
	}
	a.log.WithField("addr", a.cfg.Oracle.Addr).Info("oracle client ready")
	return client, client, client.Close, nil
}

// #endregion app
