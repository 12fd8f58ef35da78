package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/trait-interview/internal/metrics"
	"github.com/danielpatrickdp/trait-interview/internal/server"
)

func newServeCmd() *cobra.Command {
	var fixture string
	var debug bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interview HTTP API",
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
			corpus, matcher, err := a.matcher()
			if err != nil {
				return err
			}
			store, err := a.store()
			if err != nil {
				return err
			}
			defer store.Close()

			cfg := server.DefaultConfig()
			cfg.Addr = a.cfg.Server.Addr
			cfg.MaxSessions = a.cfg.Server.MaxSessions
			cfg.Debug = debug

			srv, err := server.New(cfg, server.Deps{
				Oracle:    o,
				Analyzer:  analyzer,
				Matcher:   matcher,
				Corpus:    corpus,
				Store:     store,
				Metrics:   metrics.New(prometheus.DefaultRegisterer),
				Gatherer:  prometheus.DefaultGatherer,
				Interview: a.cfg.InterviewSettings(),
				Log:       a.log,
			})
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&fixture, "fixture", "", "scripted oracle fixture (JSON) instead of the gRPC oracle")
	cmd.Flags().BoolVar(&debug, "debug", false, "gin debug mode")
	return cmd
}
