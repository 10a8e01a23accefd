/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yw4343/llm-role-framing-and-decision-bias/store"
)

func newListCommand(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored experiments, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := store.NewFileStore(cfg.ResultsDir)
			if err != nil {
				return err
			}
			sums, err := fs.List()
			if err != nil {
				return err
			}
			if len(sums) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no experiments found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tTIME\tSTATUS\tTRIALS\tSUCCEEDED")
			for _, sum := range sums {
				id := sum.RunID
				if len(id) > 8 {
					id = id[:8]
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
					id,
					sum.Timestamp.Format("2006-01-02 15:04:05"),
					sum.Status,
					sum.Trials,
					sum.Succeeded)
			}
			return w.Flush()
		},
	}
}
