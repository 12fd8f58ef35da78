package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/trait-interview/internal/results"
)

// #region results
func newResultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Inspect stored interview results",
	}
	cmd.PersistentFlags().Bool("json", false, "output as JSON instead of a table")
	cmd.AddCommand(newResultsListCmd(), newResultsShowCmd(), newResultsTurnsCmd())
	return cmd
}

func newResultsListCmd() *cobra.Command {
	var last int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(store *results.Store, jsonOut bool) error {
				list, err := store.ListResults(last)
				if err != nil {
					return err
				}
				if jsonOut {
					return printJSON(cmd.OutOrStdout(), list)
				}
				printSummaries(cmd.OutOrStdout(), list)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&last, "last", 20, "show N most recent results")
	return cmd
}

func newResultsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <result-id>",
		Short: "Show one result in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(store *results.Store, jsonOut bool) error {
				rec, err := store.GetResult(args[0])
				if err != nil {
					return err
				}
				if jsonOut {
					return printJSON(cmd.OutOrStdout(), rec)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Respondent: %s\nSession:    %s\nCreated:    %s\n",
					orDash(rec.Respondent), rec.SessionID, rec.CreatedAt.Format("2006-01-02T15:04:05Z"))
				printResult(cmd.OutOrStdout(), rec)
				return nil
			})
		},
	}
}

func newResultsTurnsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "turns <session-id>",
		Short: "Show the turn journal of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(store *results.Store, jsonOut bool) error {
				entries, err := store.ListTurns(args[0])
				if err != nil {
					return err
				}
				if jsonOut {
					return printJSON(cmd.OutOrStdout(), entries)
				}
				printTurns(cmd.OutOrStdout(), entries)
				return nil
			})
		},
	}
}

func withStore(cmd *cobra.Command, fn func(*results.Store, bool) error) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	store, err := a.store()
	if err != nil {
		return err
	}
	defer store.Close()
	jsonOut, _ := cmd.Flags().GetBool("json")
	return fn(store, jsonOut)
}

// #endregion results

// #region tables
func printSummaries(w io.Writer, list []results.Summary) {
	if len(list) == 0 {
		fmt.Fprintln(w, "no results found")
		return
	}
	fmt.Fprintf(w, "%-36s  %-16s  %-28s  %10s  %s\n", "Result", "Respondent", "Type", "Similarity", "Time")
	for _, s := range list {
		fmt.Fprintf(w, "%-36s  %-16s  %-28s  %10.4f  %s\n",
			s.ID, orDash(s.Respondent), s.PersonalityType, s.Similarity, s.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}
}

func printTurns(w io.Writer, entries []results.TurnEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no turns recorded")
		return
	}
	fmt.Fprintf(w, "%4s  %-10s  %-21s  %5s  %9s  %s\n", "#", "Action", "Trait", "Asked", "Stability", "Reason")
	for i, e := range entries {
		reason := e.Reason
		if e.Failed {
			reason = "FAILED: " + reason
		}
		fmt.Fprintf(w, "%4d  %-10s  %-21s  %5d  %9d  %s\n", i+1, e.Action, e.Trait, e.Asked, e.Stability, reason)
	}
}

// #endregion tables

// #region helpers
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// #endregion helpers
