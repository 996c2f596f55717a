package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kunalpal97/ar-indoor-nav/internal/httpapi"
	"github.com/kunalpal97/ar-indoor-nav/internal/parser"
	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
	"github.com/spf13/cobra"
)

var (
	flagAddr        string
	flagServeScript string
	flagCameraY     float64
	flagUploadDir   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a simulated session behind the debug HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var steps []parser.Step
		if flagServeScript != "" {
			f, err := os.Open(flagServeScript)
			if err != nil {
				return fmt.Errorf("open script: %w", err)
			}
			steps, err = parser.NewParser(Logger).Parse(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("parse %s: %w", flagServeScript, err)
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := newApp(ctx)
		if err != nil {
			return err
		}
		// a tracked camera at standing height so touches place markers right away
		rt.sim.SetFrame(core.MakeTranslation(0, flagCameraY, 0), core.Tracking)

		srv := &http.Server{
			Addr:              flagAddr,
			Handler:           httpapi.NewServer(rt.sess, flagUploadDir, Logger).NewRouter(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		serveErr := make(chan error, 1)
		go func() {
			Logger.Info("HTTP API listening", "addr", flagAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()

		if len(steps) > 0 {
			go func() {
				if err := rt.sess.Play(ctx, rt.sim, steps); err != nil && !errors.Is(err, context.Canceled) {
					Logger.Error("Script failed", "error", err)
				}
			}()
		}

		var runErr error
		select {
		case <-ctx.Done():
		case runErr = <-serveErr:
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			Logger.Error("HTTP shutdown failed", "error", err)
		}
		return errors.Join(runErr, rt.Close())
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "127.0.0.1:8080", "listen address")
	serveCmd.Flags().StringVar(&flagServeScript, "script", "", "optional script to replay while serving")
	serveCmd.Flags().Float64Var(&flagCameraY, "camera-height", 1.5, "initial simulated camera height")
	serveCmd.Flags().StringVar(&flagUploadDir, "upload-dir", "", "directory for staged uploads (default: OS temp dir)")
}
