package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Search struct {
		DefaultDriver     string `env:"SEARCH_DEFAULT_DRIVER" envDefault:"random"`
		DefaultIterations int    `env:"SEARCH_DEFAULT_ITERATIONS" envDefault:"200"`
		WorkerCount       int    `env:"SEARCH_WORKER_COUNT" envDefault:"1"`
	}
}

func Load() (*Config, error) {
	cfg := &Config{}

	// Parse environment variables
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Guard against zero or negative values from the environment
	if cfg.Search.WorkerCount < 1 {
		cfg.Search.WorkerCount = 1
	}
	if cfg.Search.DefaultIterations < 1 {
		cfg.Search.DefaultIterations = 200
	}

	return cfg, nil
}
