// Package config assembles service configuration from defaults, an
// optional YAML file, a .env file and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/examgen/internal/llm"
	"github.com/abhisek/examgen/internal/observability"
	"github.com/abhisek/examgen/internal/pipeline"
	"github.com/abhisek/examgen/internal/render"
)

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig         `yaml:"server"`
	Log      LogConfig            `yaml:"log"`
	LLM      llm.Config           `yaml:"llm"`
	Pipeline pipeline.Config      `yaml:"pipeline"`
	Render   render.Config        `yaml:"render"`
	Store    StoreConfig          `yaml:"store"`
	Tracing  observability.Config `yaml:"tracing"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `yaml:"addr"`

	// StaticDir holds the built web UI served under /app.
	StaticDir string `yaml:"static_dir"`

	CORSOrigins     []string      `yaml:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig selects the logger mode ("dev" or "prod") and level.
type LogConfig struct {
	Mode  string `yaml:"mode"`
	Level string `yaml:"level"`
}

// StoreConfig configures the LLM audit log database.
type StoreConfig struct {
	// Path of the SQLite file. Empty means the default location.
	Path     string `yaml:"path"`
	Disabled bool   `yaml:"disabled"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":2024",
			StaticDir:       "frontend/dist",
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
		Log:      LogConfig{Mode: "dev", Level: "info"},
		LLM:      llm.DefaultConfig(),
		Pipeline: pipeline.DefaultConfig(),
		Render:   render.DefaultConfig(),
		Tracing:  observability.DefaultConfig(),
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// (skipped when path is empty), then variables from ./.env, then the
// process environment. The environment wins over .env. The result is
// not validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if err := applyEnv(&cfg, os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks everything the service needs before it starts.
func (c Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Render.OutputDir) == "" {
		return errors.New("render.output_dir is required")
	}
	if strings.TrimSpace(c.Pipeline.Language) == "" {
		return errors.New("pipeline.language is required")
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	return nil
}

// applyEnv overlays environment variables onto cfg.
func applyEnv(cfg *Config, getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	str("EXAMGEN_LLM_PROVIDER", &cfg.LLM.Provider)

	str("OPENAI_API_KEY", &cfg.LLM.OpenAI.APIKey)
	str("OPENAI_BASE_URL", &cfg.LLM.OpenAI.BaseURL)
	str("OPENAI_MODEL", &cfg.LLM.OpenAI.Model)

	str("OPENROUTER_API_KEY", &cfg.LLM.OpenRouter.APIKey)
	str("OPENROUTER_MODEL", &cfg.LLM.OpenRouter.Model)
	str("OPENROUTER_BASE_URL", &cfg.LLM.OpenRouter.BaseURL)
	str("OPENROUTER_APP_NAME", &cfg.LLM.OpenRouter.AppName)
	str("OPENROUTER_APP_URL", &cfg.LLM.OpenRouter.AppURL)

	str("ANTHROPIC_API_KEY", &cfg.LLM.Anthropic.APIKey)
	str("ANTHROPIC_MODEL", &cfg.LLM.Anthropic.Model)
	str("ANTHROPIC_BASE_URL", &cfg.LLM.Anthropic.BaseURL)

	str("GEMINI_API_KEY", &cfg.LLM.Gemini.APIKey)
	str("GEMINI_MODEL", &cfg.LLM.Gemini.Model)
	str("GEMINI_BASE_URL", &cfg.LLM.Gemini.BaseURL)

	str("EXAMGEN_ADDR", &cfg.Server.Addr)
	if p := strings.TrimSpace(getenv("PORT")); p != "" && getenv("EXAMGEN_ADDR") == "" {
		cfg.Server.Addr = ":" + p
	}
	str("EXAMGEN_STATIC_DIR", &cfg.Server.StaticDir)
	if v := strings.TrimSpace(getenv("EXAMGEN_CORS_ORIGINS")); v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}

	str("EXAMGEN_LOG_MODE", &cfg.Log.Mode)
	str("EXAMGEN_LOG_LEVEL", &cfg.Log.Level)

	str("EXAMGEN_LANGUAGE", &cfg.Pipeline.Language)
	str("EXAMGEN_OUTPUT_DIR", &cfg.Render.OutputDir)
	str("EXAMGEN_FONT_PATH", &cfg.Render.FontPath)

	str("EXAMGEN_DB", &cfg.Store.Path)

	if v := getenv("EXAMGEN_LLM_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("EXAMGEN_LLM_MAX_ATTEMPTS: %w", err)
		}
		cfg.LLM.Retry.MaxAttempts = n
	}
	if v := getenv("EXAMGEN_LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("EXAMGEN_LLM_TIMEOUT: %w", err)
		}
		cfg.LLM.Timeout = d
	}

	if v := getenv("OTEL_ENABLED"); v != "" {
		cfg.Tracing.Enabled = truthy(v)
	}
	str("OTEL_SERVICE_NAME", &cfg.Tracing.ServiceName)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.Tracing.Endpoint)
	if v := getenv("OTEL_EXPORTER_OTLP_HEADERS"); v != "" {
		cfg.Tracing.Headers = observability.ParseHeaders(v)
	}
	if v := getenv("OTEL_EXPORTER_OTLP_INSECURE"); v != "" {
		cfg.Tracing.Insecure = truthy(v)
	}
	if v := getenv("OTEL_SAMPLER_RATIO"); v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("OTEL_SAMPLER_RATIO: %w", err)
		}
		cfg.Tracing.SampleRatio = f
	}
	return nil
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
