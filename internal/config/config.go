package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	BackendOllama = "ollama"
	BackendGemini = "gemini"
	BackendNone   = "none"
)

type Config struct {
	// Server
	Port               string        `env:"PORT" envDefault:"8080"`
	Env                string        `env:"ENV" envDefault:"development"`
	ServerWriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"5m"`
	AllowedOrigin      string        `env:"ALLOWED_ORIGIN"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	// Model
	ModelBackend      string        `env:"MODEL_BACKEND" envDefault:"ollama" validate:"oneof=ollama gemini none"`
	ModelName         string        `env:"MODEL_NAME" envDefault:"tinyllama" validate:"required_unless=ModelBackend none"`
	ModelDevice       string        `env:"MODEL_DEVICE" envDefault:"auto" validate:"oneof=auto cpu cuda mps"`
	MaxNewTokens      int           `env:"MAX_NEW_TOKENS" envDefault:"128" validate:"min=1,max=4096"`
	TokenizerEncoding string        `env:"TOKENIZER_ENCODING" envDefault:"cl100k_base" validate:"required"`
	ModelLoadTimeout  time.Duration `env:"MODEL_LOAD_TIMEOUT" envDefault:"30s"`

	// Ollama
	OllamaURL string `env:"OLLAMA_URL" envDefault:"http://localhost:11434" validate:"omitempty,url"`

	// Gemini AI
	GeminiAPIKey string `env:"GEMINI_API_KEY" validate:"required_if=ModelBackend gemini"`

	// Redis (optional, shares rate limit windows between replicas)
	RedisURL string `env:"REDIS_URL"`

	// Rate limiting for /api/chat, off unless set
	ChatRateLimitPerMinute int `env:"CHAT_RATE_LIMIT_PER_MINUTE" envDefault:"0" validate:"min=0"`
}

var validate = validator.New()

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.ModelBackend = strings.ToLower(strings.TrimSpace(cfg.ModelBackend))
	cfg.ModelDevice = strings.ToLower(strings.TrimSpace(cfg.ModelDevice))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// SlogLevel maps LOG_LEVEL onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
