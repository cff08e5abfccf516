package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// loggerFrom returns the request-scoped logger stored in ctx by the HTTP
// logging middleware, or the global logger.
func loggerFrom(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}
