package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kunalpal97/ar-indoor-nav/internal/config"
	"github.com/kunalpal97/ar-indoor-nav/internal/database"
	"github.com/kunalpal97/ar-indoor-nav/internal/storage"
	"github.com/kunalpal97/ar-indoor-nav/internal/storage/gormstore"
	"github.com/kunalpal97/ar-indoor-nav/internal/storage/memory"
	wsstorage "github.com/kunalpal97/ar-indoor-nav/internal/storage/websocket"
	"github.com/spf13/viper"
)

// createStorageBackend builds the journal backend named by storageCfg.Type.
// The returned cleanup releases resources the backend does not own, such as
// the database connection, and must run after the backend is closed.
func createStorageBackend(storageCfg config.StorageConfig) (storage.Backend, func() error, error) {
	noop := func() error { return nil }

	switch storageCfg.Type {
	case "postgres":
		mgr := database.NewManager(Zlog)
		if err := mgr.ConnectPostgres(storageCfg.DB); err != nil {
			return nil, noop, err
		}
		Logger.Info("Postgres storage backend initialized", "host", storageCfg.DB.Host)
		backend := gormstore.New(gormstore.Dependencies{
			DB:            mgr.DB,
			Logger:        Logger,
			FlushInterval: storageCfg.SQLite.FlushInterval,
		})
		return backend, mgr.Close, nil

	case "sqlite":
		mgr := database.NewManager(Zlog)
		if err := mgr.ConnectSQLite(storageCfg.SQLite.Path); err != nil {
			return nil, noop, err
		}
		Logger.Info("SQLite storage backend initialized", "path", storageCfg.SQLite.Path)
		backend := gormstore.New(gormstore.Dependencies{
			DB:            mgr.DB,
			Logger:        Logger,
			FlushInterval: storageCfg.SQLite.FlushInterval,
		})
		if storageCfg.SQLite.Path == "" {
			mgr.SqliteFilePath = filepath.Join(viper.GetString("logsDir"),
				fmt.Sprintf("%s_%s.db", database.AppName, SessionStartTime.Format("20060102_150405")))
		}
		cleanup := func() error {
			var dumpErr error
			if mgr.SqliteFilePath != "" {
				dumpErr = mgr.DumpMemoryToDisk()
				Logger.Info("Dumped in-memory journal", "path", mgr.SqliteFilePath, "error", dumpErr)
			}
			return errors.Join(dumpErr, mgr.Close())
		}
		return backend, cleanup, nil

	case "websocket":
		wsURL := storageCfg.WebSocket.URL
		if wsURL == "" {
			wsURL = httpToWS(viper.GetString("api.serverUrl")) + "/api/journal"
		}
		Logger.Info("WebSocket storage backend initialized", "url", wsURL)
		return wsstorage.New(wsstorage.Config{
			URL:        wsURL,
			Secret:     storageCfg.WebSocket.Secret,
			AppVersion: Version,
			Logger:     Logger,
		}), noop, nil

	case "memory", "":
		Logger.Info("Memory storage backend initialized", "dir", storageCfg.Memory.OutputDir)
		return memory.New(storageCfg.Memory, Version), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}

// httpToWS converts an HTTP(S) URL to a WebSocket URL.
func httpToWS(httpURL string) string {
	s := strings.TrimRight(httpURL, "/")
	s = strings.Replace(s, "https://", "wss://", 1)
	s = strings.Replace(s, "http://", "ws://", 1)
	return s
}
