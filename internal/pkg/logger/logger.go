// Package logger adapts zerolog to the ports.Logger abstraction.
package logger

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/pbooth01/cli2ansible/internal/ports"
)

// ZerologAdapter implements ports.Logger on a zerolog.Logger.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// New builds a stderr logger at the given level. Unknown levels fall back to
// info.
func New(level string) *ZerologAdapter {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		parsed = zerolog.InfoLevel
	}
	l := zerolog.New(os.Stderr).Level(parsed).With().Timestamp().Logger()
	return &ZerologAdapter{logger: l}
}

// NewWithLogger wraps an existing zerolog.Logger, mainly for tests.
func NewWithLogger(l zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: l}
}

func (z *ZerologAdapter) Debug(msg string, fields map[string]interface{}) {
	z.logger.Debug().Fields(fields).Msg(msg)
}

func (z *ZerologAdapter) Info(msg string, fields map[string]interface{}) {
	z.logger.Info().Fields(fields).Msg(msg)
}

func (z *ZerologAdapter) Warn(msg string, fields map[string]interface{}) {
	z.logger.Warn().Fields(fields).Msg(msg)
}

func (z *ZerologAdapter) Error(msg string, err error, fields map[string]interface{}) {
	z.logger.Error().Err(err).Fields(fields).Msg(msg)
}

var _ ports.Logger = (*ZerologAdapter)(nil)
