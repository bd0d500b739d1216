package srv

import (
	"context"
	"time"

	"github.com/sandevgo/lumina/pkg/log"
)

const shutdownTimeout = 10 * time.Second

type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

func StartServices(ctx context.Context, services []Service) {
	logger := log.FromCtx(ctx)
	for _, service := range services {
		go func(service Service) {
			if err := service.Start(ctx); err != nil {
				logger.Fatal().Err(err).Msgf("%T failed to start", service)
			}
		}(service)
	}
}

// ShutdownServices blocks until ctx is cancelled, then stops the services in
// reverse start order so front ends stop before the storage they write to.
func ShutdownServices(ctx context.Context, services []Service) {
	<-ctx.Done()
	StopServices(ctx, services)
}

// StopServices shuts the services down in reverse order. Each gets a
// fresh deadline since ctx is usually already cancelled.
func StopServices(ctx context.Context, services []Service) {
	logger := log.FromCtx(ctx)
	base := context.WithoutCancel(ctx)

	for i := len(services) - 1; i >= 0; i-- {
		service := services[i]

		sctx, cancel := context.WithTimeout(base, shutdownTimeout)
		if err := service.Shutdown(sctx); err != nil {
			logger.Error().Err(err).Msgf("%T failed to shutdown", service)
		}
		cancel()
	}
}
