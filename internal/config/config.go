// Package config loads process configuration from the environment, after
// merging any .env.local and .env files found in the working directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/fpang/vibe-fashion/internal/stylist"
	"github.com/joho/godotenv"
)

// Text-generation backends selectable with TEXT_BACKEND.
const (
	BackendOllama = "ollama"
	BackendGemini = "gemini"
	BackendNone   = "none"
)

// Config is read once at startup and passed down explicitly.
type Config struct {
	// HTTP
	Host        string   `env:"API_HOST" envDefault:"0.0.0.0"`
	Port        string   `env:"PORT"`
	APIPort     int      `env:"API_PORT" envDefault:"8000"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000,http://localhost:8501"`
	MaxUpload   int64    `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	Debug       bool     `env:"DEBUG" envDefault:"false"`

	// Text generation
	TextBackend     string        `env:"TEXT_BACKEND" envDefault:"ollama"`
	OllamaBaseURL   string        `env:"OLLAMA_API_BASE" envDefault:"http://localhost:11434"`
	GemmaModel      string        `env:"GEMMA_MODEL_NAME" envDefault:"gemma3:12b"`
	GeminiTextModel string        `env:"GEMINI_TEXT_MODEL" envDefault:"gemini-2.5-flash"`
	TextTimeout     time.Duration `env:"TEXT_TIMEOUT" envDefault:"60s"`

	// Image editing
	GeminiAPIKey      string        `env:"GEMINI_API_KEY"`
	GeminiBaseURL     string        `env:"GEMINI_API_BASE" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	GeminiImageModel  string        `env:"GEMINI_IMAGE_MODEL" envDefault:"gemini-2.5-flash-image"`
	ImageTimeout      time.Duration `env:"IMAGE_TIMEOUT" envDefault:"120s"`
	MaxImageDimension int           `env:"MAX_IMAGE_DIMENSION" envDefault:"1024"`

	// Workflow
	VariantCount        int  `env:"VARIANT_COUNT" envDefault:"4"`
	MaxConcurrency      int  `env:"MAX_CONCURRENCY" envDefault:"4"`
	ClassifierFailOpen  bool `env:"CLASSIFIER_FAIL_OPEN" envDefault:"true"`
	PhraseRedirect      bool `env:"PHRASE_REDIRECT" envDefault:"false"`
	PlaceholderFallback bool `env:"PLACEHOLDER_FALLBACK" envDefault:"true"`
	EmitMetrics         bool `env:"EMIT_METRICS" envDefault:"false"`
}

// Load reads .env.local then .env (either may be absent; existing environment
// variables always win), parses the environment and validates the result.
func Load() (Config, error) {
	for _, file := range []string{".env.local", ".env"} {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}
	return parse(env.Options{})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.TextBackend = strings.ToLower(strings.TrimSpace(cfg.TextBackend))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the workflow cannot run with.
func (c Config) Validate() error {
	switch c.TextBackend {
	case BackendOllama, BackendGemini, BackendNone:
	default:
		return fmt.Errorf("TEXT_BACKEND must be one of ollama, gemini, none; got %q", c.TextBackend)
	}
	if c.VariantCount < 1 || c.VariantCount > stylist.MaxVariantCount {
		return fmt.Errorf("VARIANT_COUNT must be between 1 and %d; got %d", stylist.MaxVariantCount, c.VariantCount)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("MAX_CONCURRENCY must be at least 1; got %d", c.MaxConcurrency)
	}
	if c.MaxImageDimension < 64 {
		return fmt.Errorf("MAX_IMAGE_DIMENSION must be at least 64; got %d", c.MaxImageDimension)
	}
	if c.MaxUpload <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive; got %d", c.MaxUpload)
	}
	if c.TextTimeout <= 0 || c.ImageTimeout <= 0 {
		return errors.New("TEXT_TIMEOUT and IMAGE_TIMEOUT must be positive")
	}
	return nil
}

// Addr returns the listen address. PORT, when set by a hosting platform,
// takes precedence over API_PORT.
func (c Config) Addr() string {
	port := c.Port
	if port == "" {
		port = strconv.Itoa(c.APIPort)
	}
	return net.JoinHostPort(c.Host, port)
}
