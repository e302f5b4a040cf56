package session

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// ZerologAdapter bridges a zerolog.Logger into the package's Logger
// interface so host applications keep their structured logging pipeline.
type ZerologAdapter struct {
	log zerolog.Logger
}

var _ Logger = (*ZerologAdapter)(nil)

// NewZerologAdapter wraps the given zerolog logger.
func NewZerologAdapter(log zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{log: log}
}

func (z *ZerologAdapter) Debug(format string, args ...any) {
	z.log.Debug().Msg(sprintf(format, args...))
}

func (z *ZerologAdapter) Info(format string, args ...any) {
	z.log.Info().Msg(sprintf(format, args...))
}

func (z *ZerologAdapter) Warn(format string, args ...any) {
	z.log.Warn().Msg(sprintf(format, args...))
}

func (z *ZerologAdapter) Error(format string, args ...any) {
	z.log.Error().Msg(sprintf(format, args...))
}

// sprintf tolerates the logger being called in key/value style rather than
// printf style: when the format carries no verbs the extra arguments are
// appended instead of triggering %!EXTRA noise.
func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	if containsVerb(format) {
		return fmt.Sprintf(format, args...)
	}
	return strings.TrimRight(format+" "+fmt.Sprintln(args...), "\n")
}

func containsVerb(format string) bool {
	for i := 0; i < len(format)-1; i++ {
		if format[i] == '%' && format[i+1] != '%' {
			return true
		}
	}
	return false
}
