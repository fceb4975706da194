// Package config reads process settings from the environment. Command line
// flags take their defaults from here and override them.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

type Server struct {
	Addr       string        `env:"COVERT_ADDR" envDefault:":8080"`
	DataDir    string        `env:"COVERT_DATA_DIR" envDefault:"./data"`
	Seed       int64         `env:"COVERT_SEED" envDefault:"1"`
	TuningPath string        `env:"COVERT_TUNING"`
	LogLevel   slog.Level    `env:"COVERT_LOG_LEVEL" envDefault:"INFO"`
	Debounce   time.Duration `env:"COVERT_SAVE_DEBOUNCE" envDefault:"250ms"`
	AllowDebug bool          `env:"COVERT_ALLOW_DEBUG" envDefault:"false"`
	AuditLog   bool          `env:"COVERT_AUDIT_LOG" envDefault:"true"`
}

type Sim struct {
	Seed       int64      `env:"COVERT_SEED" envDefault:"1"`
	Turns      int        `env:"COVERT_SIM_TURNS" envDefault:"100"`
	Intellect  string     `env:"COVERT_SIM_INTELLECT" envDefault:"basic"`
	TuningPath string     `env:"COVERT_TUNING"`
	LogLevel   slog.Level `env:"COVERT_LOG_LEVEL" envDefault:"WARN"`
}

// NewLogger builds the text logger every binary writes to stdout.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
