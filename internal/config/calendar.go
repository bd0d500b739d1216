package config

import (
	"context"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/lumina/pkg/log"
)

type CalendarConfig struct {
	Enabled         bool   `env:"LUMINA_CALENDAR_ENABLED" envDefault:"false"`
	CredentialsPath string `env:"LUMINA_CALENDAR_CREDENTIALS" envDefault:"credentials.json"`
	TokenPath       string `env:"LUMINA_CALENDAR_TOKEN" envDefault:"token.json"`
	CalendarID      string `env:"LUMINA_CALENDAR_ID" envDefault:"primary"`
	TimeZone        string `env:"LUMINA_TIMEZONE" envDefault:"Europe/Berlin"`
}

func ParseCalendarConfig() (*CalendarConfig, error) {
	c := &CalendarConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	if !c.Enabled {
		return c, nil
	}
	if _, err := os.Stat(c.CredentialsPath); err != nil {
		return nil, fmt.Errorf("calendar credentials not readable: %w", err)
	}
	return c, nil
}

func NewCalendarConfig(ctx context.Context) *CalendarConfig {
	c, err := ParseCalendarConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Calendar config")
	}
	return c
}
