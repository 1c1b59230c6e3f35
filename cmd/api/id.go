package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/semantic-guard/internal/domain/analyses"
)

// newIDCmd recomputes a record id from its inputs, e.g. to check that a
// stored record's id matches its query, timestamp and submitter.
func newIDCmd() *cobra.Command {
	var (
		query     string
		timestamp uint64
		submitter string
	)
	cmd := &cobra.Command{
		Use:   "id",
		Short: "Print the identifier derived from query, timestamp and submitter",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), analyses.GenerateID(query, timestamp, submitter))
			return nil
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "query text")
	cmd.Flags().Uint64Var(&timestamp, "timestamp", 0, "submission timestamp in nanoseconds")
	cmd.Flags().StringVar(&submitter, "submitter", "", "submitter account")
	_ = cmd.MarkFlagRequired("timestamp")
	_ = cmd.MarkFlagRequired("submitter")
	return cmd
}
