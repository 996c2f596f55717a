package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/kunalpal97/ar-indoor-nav/internal/api"
	"github.com/kunalpal97/ar-indoor-nav/internal/asset"
	"github.com/kunalpal97/ar-indoor-nav/internal/attach"
	"github.com/kunalpal97/ar-indoor-nav/internal/config"
	"github.com/kunalpal97/ar-indoor-nav/internal/database"
	"github.com/kunalpal97/ar-indoor-nav/internal/dispatcher"
	"github.com/kunalpal97/ar-indoor-nav/internal/influx"
	"github.com/kunalpal97/ar-indoor-nav/internal/logging"
	"github.com/kunalpal97/ar-indoor-nav/internal/notify"
	"github.com/kunalpal97/ar-indoor-nav/internal/placement"
	"github.com/kunalpal97/ar-indoor-nav/internal/session"
	"github.com/kunalpal97/ar-indoor-nav/internal/storage"
	"github.com/kunalpal97/ar-indoor-nav/internal/tracking"
	"github.com/spf13/viper"
)

// activeSession feeds the log context provider.
var activeSession atomic.Pointer[session.Session]

// app bundles a session with the resources built around it.
type app struct {
	sess    *session.Session
	sim     *tracking.Simulator
	backend storage.Backend
	influx  *influx.Manager
	cleanup func() error
}

// newApp builds a simulator-driven session from the loaded config.
func newApp(ctx context.Context) (*app, error) {
	sessionID := uuid.NewString()
	SlogManager.SetContextProvider(logging.SessionContext(sessionID, func() int {
		if s := activeSession.Load(); s != nil {
			return s.Status().Markers
		}
		return 0
	}))
	SlogManager.Setup(fileWriter(), viper.GetString("logLevel"), otelLogProvider(), remoteWriter())
	Logger = SlogManager.Logger()
	slog.SetDefault(Logger)

	backend, cleanup, err := createStorageBackend(config.GetStorageConfig())
	if err != nil {
		return nil, fmt.Errorf("create storage backend: %w", err)
	}

	var sinks []notify.Sink
	var influxMgr *influx.Manager
	if influxCfg := config.GetInfluxConfig(); influxCfg.Enabled {
		backupPath := filepath.Join(viper.GetString("logsDir"),
			fmt.Sprintf("%s_%s.influx.gz", database.AppName, SessionStartTime.Format("20060102_150405")))
		influxMgr = influx.NewManager(influxCfg, Zlog, backupPath)
		if err := influxMgr.Connect(ctx); err != nil {
			Logger.Error("Failed to set up InfluxDB metrics", "error", err)
			influxMgr = nil
		} else {
			sinks = append(sinks, influx.Sink{Manager: influxMgr, SessionID: sessionID})
		}
	}

	placeCfg := config.GetPlacementConfig()
	assetCfg := config.GetAssetConfig()
	apiCfg := config.GetAPIConfig()
	loopCfg := config.GetLoopConfig()

	sim := tracking.NewSimulator()
	sess, err := session.New(session.Config{
		ID:     sessionID,
		Device: viper.GetString("device"),
		Placement: placement.Config{
			ForwardOffset: placeCfg.ForwardOffset,
			FloorY:        placeCfg.FloorY,
		},
		Attach: attach.Config{
			AssetID: assetCfg.Path,
			Scale:   assetCfg.Scale,
			OffsetY: assetCfg.OffsetY,
			Timeout: assetCfg.LoadTimeout,
		},
		Loop: dispatcher.Config{
			QueueSize: loopCfg.QueueSize,
			Blocking:  loopCfg.Blocking,
		},
	}, session.Dependencies{
		Provider: sim,
		Assets:   asset.NewLoader(flagConfigDir),
		Uploader: api.New(apiCfg.ServerURL, api.Config{
			ConnectTimeout: apiCfg.ConnectTimeout,
			ReadTimeout:    apiCfg.ReadTimeout,
			WriteTimeout:   apiCfg.WriteTimeout,
		}),
		Backend:    backend,
		Sinks:      sinks,
		Logger:     Logger,
		LoopLogger: logging.NewLoopLogger(Zlog, sessionID),
	})
	if err != nil {
		if influxMgr != nil {
			_ = influxMgr.Close()
		}
		return nil, errors.Join(err, cleanup())
	}
	activeSession.Store(sess)

	return &app{
		sess:    sess,
		sim:     sim,
		backend: backend,
		influx:  influxMgr,
		cleanup: cleanup,
	}, nil
}

// Close ends the session and releases the journal and metrics resources.
func (r *app) Close() error {
	dropped, err := r.sess.Close()
	activeSession.Store(nil)
	Logger.Info("Session ended", "session", r.sess.ID(), "dropped", dropped)

	if exp, ok := r.backend.(storage.Exportable); ok {
		if path := exp.GetExportedFilePath(); path != "" {
			Logger.Info("Session journal exported", "path", path)
		}
	}
	errs := []error{err, r.cleanup()}
	if r.influx != nil {
		errs = append(errs, r.influx.Close())
	}
	return errors.Join(errs...)
}
