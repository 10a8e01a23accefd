/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"

	"github.com/yw4343/llm-role-framing-and-decision-bias/analyze"
)

func newRunCommand(cfg *config) *cobra.Command {
	var (
		models     []string
		scenarios  []string
		roles      []string
		iterations int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full trial matrix and save the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if cfg.APIKey == "" {
				return errors.New("OPENROUTER_API_KEY is required")
			}
			r, _, err := buildRunner(cfg)
			if err != nil {
				return err
			}

			run, err := r.Start(ctx, runnerConfig(cfg, models, scenarios, roles, iterations))
			if err != nil {
				return err
			}
			clog.InfoContextf(ctx, "Started run %s", run.RunID())

			// Forward interrupts as cancellation so a partial run is
			// still finalized and saved.
			stop := make(chan struct{})
			defer close(stop)
			go func() {
				select {
				case <-ctx.Done():
					run.Cancel()
				case <-stop:
				}
			}()

			// Wait past an interrupt: cancellation still finalizes and
			// saves the partial run before Wait returns.
			exp, err := run.Wait(context.WithoutCancel(ctx))
			if err != nil {
				return fmt.Errorf("saving results: %w", err)
			}

			st := run.Status()
			clog.InfoContextf(ctx, "Run %s finished: %s (%d/%d succeeded), saved to %s",
				exp.ShortID(), exp.Status, st.Succeeded, st.Total, st.Path)

			fmt.Fprintln(cmd.OutOrStdout(), analyze.Report(exp))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&models, "model", nil, "response model id (repeatable, default from environment)")
	cmd.Flags().StringSliceVar(&scenarios, "scenario", nil, "scenario id to include (repeatable, default all)")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "role id to include (repeatable, default all)")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "iterations per trial cell (default from environment)")
	return cmd
}
