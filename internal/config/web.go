package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/lumina/pkg/log"
)

type WebConfig struct {
	Addr         string `env:"LUMINA_WEB_ADDR" envDefault:"127.0.0.1:8000"`
	StaticDir    string `env:"LUMINA_WEB_STATIC_DIR" envDefault:"frontend"`
	MaxUploadMB  int64  `env:"LUMINA_MAX_UPLOAD_MB" envDefault:"10"`
	HistoryLimit int    `env:"LUMINA_WEB_HISTORY_LIMIT" envDefault:"50"`
}

func ParseWebConfig() (*WebConfig, error) {
	c := &WebConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	return c, nil
}

func NewWebConfig(ctx context.Context) *WebConfig {
	c, err := ParseWebConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Web config")
	}
	return c
}

func (c WebConfig) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
