// Package config reads the process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"financas/internal/state"
)

// Config holds everything the binaries read from the environment.
type Config struct {
	// HTTP
	Port     int
	LogLevel string

	// State backend
	Backend       state.BackendType
	StateFilePath string
	SQLiteDBPath  string

	// AMQP audit stream. Optional: an empty URL disables publishing.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Sheets export worker
	SheetsCredentialsJSON string
	SheetsSpreadsheetID   string
	SheetsSheetName       string
}

// Load builds a Config from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:          getEnvInt("PORT", 8080),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Backend:       state.BackendType(getEnv("DATA_BACKEND", string(state.FileBackend))),
		StateFilePath: getEnv("STATE_FILE_PATH", "financas.json"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "financas.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "financas"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "transaction-events"),

		SheetsCredentialsJSON: getEnv("SHEETS_CREDENTIALS_JSON", ""),
		SheetsSpreadsheetID:   getEnv("SHEETS_SPREADSHEET_ID", ""),
		SheetsSheetName:       getEnv("SHEETS_SHEET_NAME", "Lançamentos"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate collects every problem instead of stopping at the first one.
func (c Config) Validate() error {
	var problems []string

	if c.Port < 1 || c.Port > 65535 {
		problems = append(problems, fmt.Sprintf("PORT %d out of range", c.Port))
	}
	switch c.Backend {
	case state.FileBackend:
		if c.StateFilePath == "" {
			problems = append(problems, "STATE_FILE_PATH required for the file backend")
		}
	case state.SQLiteBackend:
		if c.SQLiteDBPath == "" {
			problems = append(problems, "SQLITE_DB_PATH required for the sqlite backend")
		}
	case state.MemoryBackend:
	default:
		problems = append(problems, fmt.Sprintf("unknown DATA_BACKEND %q", c.Backend))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("unknown LOG_LEVEL %q", c.LogLevel))
	}
	if c.AMQPURL != "" {
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP_EXCHANGE required when AMQP_URL is set")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP_QUEUE required when AMQP_URL is set")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// StateConfig maps the relevant fields onto the backend factory input.
func (c Config) StateConfig() state.Config {
	return state.Config{
		Type:         c.Backend,
		FilePath:     c.StateFilePath,
		SQLiteDBPath: c.SQLiteDBPath,
	}
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
