package session

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds the client core settings. Values are read from the
// environment with sensible development defaults.
type Config struct {
	BaseURL        string        `env:"FARMVINE_API_URL,       default=http://localhost:4000"`
	APIPrefix      string        `env:"FARMVINE_API_PREFIX,    default=/api/v1"`
	RequestTimeout time.Duration `env:"FARMVINE_HTTP_TIMEOUT,  default=30s"`
	DevMode        bool          `env:"FARMVINE_DEV_MODE,      default=false"`
	FixtureLatency time.Duration `env:"FARMVINE_MOCK_LATENCY,  default=500ms"`
	StoragePath    string        `env:"FARMVINE_STORAGE_PATH"`
	LogLevel       string        `env:"FARMVINE_LOG_LEVEL,     default=info"`
}

// LoadConfig reads configuration from environment variables using go-envconfig.
func LoadConfig(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
