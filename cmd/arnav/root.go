package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/kunalpal97/ar-indoor-nav/internal/config"
	"github.com/kunalpal97/ar-indoor-nav/internal/database"
	"github.com/kunalpal97/ar-indoor-nav/internal/logging"
	intOtel "github.com/kunalpal97/ar-indoor-nav/internal/otel"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// Global flag values.
var (
	flagConfigDir string
	flagLogLevel  string
	flagDevice    string
)

// process-wide state set up by PersistentPreRunE
var (
	SessionStartTime = time.Now()

	SlogManager  *logging.SlogManager
	Logger       *slog.Logger
	Zlog         zerolog.Logger
	OTelProvider *intOtel.Provider

	logFile     *os.File
	gelfWriter  io.WriteCloser
	logFilePath string
)

var rootCmd = &cobra.Command{
	Use:     "arnav",
	Short:   "AR marker placement and waypoint ingestion",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		return setup()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", ".", "directory containing "+config.FileName)
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagDevice, "device", "", "device name recorded in the session journal")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(journalCmd)
}

// setup loads config and builds the logging stack: text log file, optional OTel
// export and optional Graylog shipping.
func setup() error {
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, "info", nil, nil)
	Logger = SlogManager.Logger()

	if err := config.Load(flagConfigDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config", "dir", flagConfigDir)
	}
	if flagLogLevel != "" {
		viper.Set("logLevel", flagLogLevel)
	}
	if flagDevice != "" {
		viper.Set("device", flagDevice)
	}
	level := viper.GetString("logLevel")

	f, path, err := logging.OpenSessionLog(viper.GetString("logsDir"), database.AppName, viper.GetString("device"), SessionStartTime)
	logFilePath = path
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", logFilePath)
	} else {
		logFile = f
	}

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		OTelProvider, err = intOtel.New(intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    fileWriter(),
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		})
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
			OTelProvider = nil
		}
	}

	glCfg := config.GetGraylogConfig()
	if glCfg.Enabled {
		gelfWriter, err = logging.NewGELFWriter(glCfg.Address, database.AppName)
		if err != nil {
			Logger.Error("Failed to connect to Graylog", "error", err, "address", glCfg.Address)
			gelfWriter = nil
		}
	}

	SlogManager.Setup(fileWriter(), level, otelLogProvider(), remoteWriter())
	Logger = SlogManager.Logger()
	slog.SetDefault(Logger)

	var zw io.Writer = os.Stderr
	if logFile != nil {
		zw = logFile
	}
	Zlog = logging.NewZerolog(zw, level)

	Logger.Info("Logging to file", "path", logFilePath, "version", Version, "build", BuildDate)
	return nil
}

// fileWriter, otelLogProvider and remoteWriter return untyped nils when the
// sink is off so Setup skips it.
func fileWriter() io.Writer {
	if logFile == nil {
		return nil
	}
	return logFile
}

func otelLogProvider() *sdklog.LoggerProvider {
	if OTelProvider == nil {
		return nil
	}
	return OTelProvider.LoggerProvider()
}

func remoteWriter() io.Writer {
	if gelfWriter == nil {
		return nil
	}
	return gelfWriter
}

func teardown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			Logger.Error("OTel shutdown failed", "error", err)
		}
	}
	if gelfWriter != nil {
		_ = gelfWriter.Close()
	}
	if logFile != nil {
		return logFile.Close()
	}
	return nil
}
