package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	"github.com/davidbz/cinder/internal/provider/openai"
)

// Config represents the service configuration.
type Config struct {
	Server ServerConfig
	CORS   CORSConfig
	OpenAI openai.Config
	Policy PolicyConfig
	Redis  RedisConfig
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int `env:"SERVER_PORT"          envDefault:"8080"`
	ReadTimeout  int `env:"SERVER_READ_TIMEOUT"  envDefault:"30"`
	WriteTimeout int `env:"SERVER_WRITE_TIMEOUT" envDefault:"300"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// PolicyConfig contains decision-pipeline settings.
type PolicyConfig struct {
	// LexiconPath points at a YAML lexicon file; empty uses the
	// built-in lexicon.
	LexiconPath     string `env:"POLICY_LEXICON_PATH"`
	MaxOutputTokens int    `env:"POLICY_MAX_OUTPUT_TOKENS" envDefault:"2048"`
	DefaultModel    string `env:"POLICY_DEFAULT_MODEL"     envDefault:"script-1"`
}

// RedisConfig contains session-store settings. When disabled the
// service keeps session state in process memory.
type RedisConfig struct {
	Enabled           bool   `env:"REDIS_ENABLED"             envDefault:"false"`
	Addr              string `env:"REDIS_ADDR"                envDefault:"localhost:6379"`
	Password          string `env:"REDIS_PASSWORD"`
	DB                int    `env:"REDIS_DB"                  envDefault:"0"`
	SessionTTLMinutes int    `env:"REDIS_SESSION_TTL_MINUTES" envDefault:"1440"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out
	*ServerConfig
	*CORSConfig
	*openai.Config
	*PolicyConfig
	*RedisConfig
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		dig.Out{},
		&cfg.Server,
		&cfg.CORS,
		&cfg.OpenAI,
		&cfg.Policy,
		&cfg.Redis,
	}
}
