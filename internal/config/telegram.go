package config

import (
	"context"
	"errors"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/lumina/pkg/log"
)

var ErrTelegramOwnerMissing = errors.New("TELEGRAM_BOT_TOKEN is set but ALLOWED_TELEGRAM_ID is missing")

type TelegramConfig struct {
	Token   string `env:"TELEGRAM_BOT_TOKEN"`
	OwnerID int64  `env:"ALLOWED_TELEGRAM_ID"`
}

func ParseTelegramConfig() (*TelegramConfig, error) {
	c := &TelegramConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	if c.Token != "" && c.OwnerID == 0 {
		return nil, ErrTelegramOwnerMissing
	}
	return c, nil
}

func NewTelegramConfig(ctx context.Context) *TelegramConfig {
	c, err := ParseTelegramConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Telegram config")
	}
	return c
}

func (c TelegramConfig) Enabled() bool {
	return c.Token != ""
}
