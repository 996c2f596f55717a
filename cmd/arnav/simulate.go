package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/kunalpal97/ar-indoor-nav/internal/parser"
	"github.com/spf13/cobra"
)

var (
	flagScript      string
	flagSettleAfter time.Duration
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Replay a pose/touch script against a simulated AR session",
	Long: `Replays a script of camera poses, tracking states and touches against a
simulated session, waits for marker models to attach and prints the markers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagScript == "" {
			return fmt.Errorf("--script is required")
		}
		f, err := os.Open(flagScript)
		if err != nil {
			return fmt.Errorf("open script: %w", err)
		}
		steps, err := parser.NewParser(Logger).Parse(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("parse %s: %w", flagScript, err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		rt, err := newApp(ctx)
		if err != nil {
			return err
		}
		runErr := playAndReport(ctx, rt, steps, cmd)
		closeErr := rt.Close()
		if runErr != nil {
			return runErr
		}
		return closeErr
	},
}

func init() {
	simulateCmd.Flags().StringVar(&flagScript, "script", "", "script file to replay")
	simulateCmd.Flags().DurationVar(&flagSettleAfter, "settle-timeout", time.Minute, "how long to wait for attachments after the script ends")
}

func playAndReport(ctx context.Context, rt *app, steps []parser.Step, cmd *cobra.Command) error {
	if err := rt.sess.Play(ctx, rt.sim, steps); err != nil {
		return fmt.Errorf("play script: %w", err)
	}
	settleCtx, cancel := context.WithTimeout(ctx, flagSettleAfter)
	defer cancel()
	if err := rt.sess.Settle(settleCtx); err != nil {
		Logger.Warn("Attachments did not settle", "error", err)
	}

	markers, err := rt.sess.Markers()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(markers); err != nil {
		return err
	}
	for _, e := range rt.sess.Notifications().Events() {
		fmt.Fprintln(cmd.ErrOrStderr(), e.Text())
	}
	return nil
}
