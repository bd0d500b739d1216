package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/lumina/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"LUMINA_RUNTIME_PATH" envDefault:".lumina"`

	// Transport flags
	EnableWeb bool `env:"LUMINA_ENABLE_WEB" envDefault:"true"`
	EnableCLI bool `env:"LUMINA_ENABLE_CLI" envDefault:"false"`

	// Prompt context
	HistoryLimit       int    `env:"LUMINA_HISTORY_LIMIT" envDefault:"10"`
	HistoryTokenBudget int    `env:"LUMINA_HISTORY_TOKEN_BUDGET" envDefault:"6000"`
	TimeZone           string `env:"LUMINA_TIMEZONE" envDefault:"Europe/Berlin"`
}

func ParseAppConfig() (*AppConfig, error) {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	if c.HistoryLimit <= 0 {
		return nil, fmt.Errorf("LUMINA_HISTORY_LIMIT must be positive, got %d", c.HistoryLimit)
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return nil, fmt.Errorf("invalid LUMINA_TIMEZONE %q: %w", c.TimeZone, err)
	}
	if !filepath.IsAbs(c.RuntimePath) {
		c.RuntimePath = GetRuntimePath()
	}
	return c, nil
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c, err := ParseAppConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetIdentityPath() string {
	return filepath.Join(c.RuntimePath, "IDENTITY.md")
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "lumina.db")
}

func (c AppConfig) GetInputHistoryPath() string {
	return filepath.Join(c.RuntimePath, "input_history")
}

// Location returns the configured zone; ParseAppConfig already validated it.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
