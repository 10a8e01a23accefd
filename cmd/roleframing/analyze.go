/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yw4343/llm-role-framing-and-decision-bias/analyze"
	"github.com/yw4343/llm-role-framing-and-decision-bias/store"
)

func newAnalyzeCommand(cfg *config) *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "analyze <run-id>",
		Short: "Render the score report for a stored experiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := store.NewFileStore(cfg.ResultsDir)
			if err != nil {
				return err
			}
			exp, err := fs.Load(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), analyze.Report(exp))

			if csvPath != "" {
				f, err := os.Create(csvPath)
				if err != nil {
					return fmt.Errorf("creating %s: %w", csvPath, err)
				}
				defer f.Close()
				if err := analyze.WriteCSV(f, analyze.Flatten(exp)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", csvPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "also export scored trials as CSV to this path")
	return cmd
}
