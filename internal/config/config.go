package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreDriverFile   = "file"
	StoreDriverSQLite = "sqlite"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// ShutdownTimeout bounds graceful HTTP shutdown after SIGINT/SIGTERM.
	ShutdownTimeout time.Duration

	// StoreDriver selects the record store backend: "file" or "sqlite".
	StoreDriver string
	// DataFile is the JSON file holding the record collection (file driver).
	DataFile string

	SQLiteDSN             string
	SQLitePath            string
	SQLiteMaxOpenConns    int
	SQLiteMaxIdleConns    int
	SQLiteConnMaxLifetime time.Duration

	// AllowZeroReading accepts reading=0 on create.
	AllowZeroReading bool

	// MQTTBroker empty disables MQTT ingest.
	MQTTBroker   string
	MQTTPort     int
	MQTTTopic    string
	MQTTClientID string
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := envOr("HTTP_ADDR", ":8080")

	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}

	storeDriver := strings.ToLower(envOr("STORE_DRIVER", StoreDriverFile))
	switch storeDriver {
	case StoreDriverFile, StoreDriverSQLite:
	default:
		return Config{}, fmt.Errorf("invalid STORE_DRIVER %q (allowed: file, sqlite)", storeDriver)
	}

	dataFile := envOr("DATA_FILE", "./data.json")

	sqlitePath := envOr("SQLITE_PATH", "./data/powertrack.db")
	sqliteDSN := strings.TrimSpace(os.Getenv("DB_DSN"))

	maxOpenConns, err := envInt("DB_MAX_OPEN_CONNS", "1")
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := envInt("DB_MAX_IDLE_CONNS", "1")
	if err != nil {
		return Config{}, err
	}
	connMaxLifetime, err := envDuration("DB_CONN_MAX_LIFETIME", "0s")
	if err != nil {
		return Config{}, err
	}

	allowZeroStr := envOr("ALLOW_ZERO_READING", "false")
	allowZero, err := strconv.ParseBool(allowZeroStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid ALLOW_ZERO_READING %q: %w", allowZeroStr, err)
	}

	mqttPort, err := envInt("MQTT_PORT", "1883")
	if err != nil {
		return Config{}, err
	}
	if mqttPort <= 0 || mqttPort > 65535 {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %d (must be 1-65535)", mqttPort)
	}

	return Config{
		AppEnv:                appEnv,
		LogLevel:              level,
		HTTPAddr:              httpAddr,
		ShutdownTimeout:       shutdownTimeout,
		StoreDriver:           storeDriver,
		DataFile:              dataFile,
		SQLiteDSN:             sqliteDSN,
		SQLitePath:            sqlitePath,
		SQLiteMaxOpenConns:    maxOpenConns,
		SQLiteMaxIdleConns:    maxIdleConns,
		SQLiteConnMaxLifetime: connMaxLifetime,
		AllowZeroReading:      allowZero,
		MQTTBroker:            strings.TrimSpace(os.Getenv("MQTT_BROKER")),
		MQTTPort:              mqttPort,
		MQTTTopic:             envOr("MQTT_TOPIC", "powertrack/readings"),
		MQTTClientID:          envOr("MQTT_CLIENT_ID", "powertrack-server"),
	}, nil
}

// MQTTEnabled reports whether a broker was configured.
func (c Config) MQTTEnabled() bool {
	return c.MQTTBroker != ""
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(key, def string) (int, error) {
	s := envOr(key, def)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func envDuration(key, def string) (time.Duration, error) {
	s := envOr(key, def)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
