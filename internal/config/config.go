package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "arnav.cfg.json"

// PlacementConfig holds the pose projection parameters
type PlacementConfig struct {
	ForwardOffset float64 `json:"forwardOffset" mapstructure:"forwardOffset"`
	FloorY        float64 `json:"floorY" mapstructure:"floorY"`
}

// AssetConfig holds the marker model settings
type AssetConfig struct {
	Path        string        `json:"path" mapstructure:"path"`
	Scale       float64       `json:"scale" mapstructure:"scale"`
	OffsetY     float64       `json:"offsetY" mapstructure:"offsetY"`
	LoadTimeout time.Duration `json:"loadTimeout" mapstructure:"loadTimeout"`
}

// APIConfig holds the recognition service client settings
type APIConfig struct {
	ServerURL      string        `json:"serverUrl" mapstructure:"serverUrl"`
	ConnectTimeout time.Duration `json:"connectTimeout" mapstructure:"connectTimeout"`
	ReadTimeout    time.Duration `json:"readTimeout" mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `json:"writeTimeout" mapstructure:"writeTimeout"`
}

// LoopConfig holds the event loop settings
type LoopConfig struct {
	QueueSize int  `json:"queueSize" mapstructure:"queueSize"`
	Blocking  bool `json:"blocking" mapstructure:"blocking"`
}

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds SQLite journal settings
type SQLiteConfig struct {
	Path          string        `json:"path" mapstructure:"path"`
	FlushInterval time.Duration `json:"flushInterval" mapstructure:"flushInterval"`
}

// WebSocketConfig holds the streaming journal settings
type WebSocketConfig struct {
	URL    string `json:"url" mapstructure:"url"`
	Secret string `json:"secret" mapstructure:"secret"`
}

// DBConfig holds Postgres connection settings
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// StorageConfig selects and configures the journal backend
type StorageConfig struct {
	Type      string          `json:"type" mapstructure:"type"`
	Memory    MemoryConfig    `json:"memory" mapstructure:"memory"`
	SQLite    SQLiteConfig    `json:"sqlite" mapstructure:"sqlite"`
	WebSocket WebSocketConfig `json:"websocket" mapstructure:"websocket"`
	DB        DBConfig        `json:"db" mapstructure:"db"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// InfluxConfig holds InfluxDB metrics settings
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
	Bucket   string `json:"bucket" mapstructure:"bucket"`
}

// GraylogConfig holds remote log shipping settings
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
}

// SetDefaults registers default values without reading a file.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./arnavlogs")
	viper.SetDefault("device", "simulator")

	viper.SetDefault("placement.forwardOffset", 1.0)
	viper.SetDefault("placement.floorY", 0.0)

	viper.SetDefault("asset.path", "test.glb")
	viper.SetDefault("asset.scale", 0.1)
	viper.SetDefault("asset.offsetY", 0.05)
	viper.SetDefault("asset.loadTimeout", "30s")

	viper.SetDefault("api.serverUrl", "http://192.168.1.215:5000")
	viper.SetDefault("api.connectTimeout", "500s")
	viper.SetDefault("api.readTimeout", "120s")
	viper.SetDefault("api.writeTimeout", "120s")

	viper.SetDefault("loop.queueSize", 256)
	viper.SetDefault("loop.blocking", false)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./sessions")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.path", "./arnav.db")
	viper.SetDefault("storage.sqlite.flushInterval", "2s")
	viper.SetDefault("storage.websocket.url", "")
	viper.SetDefault("storage.websocket.secret", "")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "arnav")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "arnav")
	viper.SetDefault("influx.bucket", "arnav_sessions")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "arnav")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetPlacementConfig returns the projection parameters.
func GetPlacementConfig() PlacementConfig {
	return PlacementConfig{
		ForwardOffset: viper.GetFloat64("placement.forwardOffset"),
		FloorY:        viper.GetFloat64("placement.floorY"),
	}
}

// GetAssetConfig returns the marker model settings.
func GetAssetConfig() AssetConfig {
	return AssetConfig{
		Path:        viper.GetString("asset.path"),
		Scale:       viper.GetFloat64("asset.scale"),
		OffsetY:     viper.GetFloat64("asset.offsetY"),
		LoadTimeout: viper.GetDuration("asset.loadTimeout"),
	}
}

// GetAPIConfig returns the recognition service settings.
func GetAPIConfig() APIConfig {
	return APIConfig{
		ServerURL:      viper.GetString("api.serverUrl"),
		ConnectTimeout: viper.GetDuration("api.connectTimeout"),
		ReadTimeout:    viper.GetDuration("api.readTimeout"),
		WriteTimeout:   viper.GetDuration("api.writeTimeout"),
	}
}

// GetLoopConfig returns the event loop settings.
func GetLoopConfig() LoopConfig {
	return LoopConfig{
		QueueSize: viper.GetInt("loop.queueSize"),
		Blocking:  viper.GetBool("loop.blocking"),
	}
}

// GetStorageConfig returns the journal backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path:          viper.GetString("storage.sqlite.path"),
			FlushInterval: viper.GetDuration("storage.sqlite.flushInterval"),
		},
		WebSocket: WebSocketConfig{
			URL:    viper.GetString("storage.websocket.url"),
			Secret: viper.GetString("storage.websocket.secret"),
		},
		DB: DBConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetInfluxConfig returns the metrics settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Protocol: viper.GetString("influx.protocol"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}

// GetGraylogConfig returns the remote log settings.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}
