package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// PageLimit is the fixed catalog page size.
	PageLimit int `env:"PAGE_LIMIT, default=20"`
	// CheckWindow is the quiet period before a debounced field check fires.
	CheckWindow time.Duration `env:"CHECK_WINDOW, default=500ms"`

	PokeAPI PokeAPIConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type PokeAPIConfig struct {
	BaseURL string        `env:"POKEAPI_BASE_URL, default=https://pokeapi.co/api/v2"`
	Timeout time.Duration `env:"POKEAPI_TIMEOUT,  default=10s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=pokecodex"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
