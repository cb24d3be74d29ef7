package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv  = "PERSUADER_CONFIG"
	dotEnvFile     = ".env"
	maxBatchSize   = 5
	defaultModel   = "gemini-1.5-flash"
	defaultChatURL = "https://api.openai.com/v1/chat/completions"
)

// Store drivers.
const (
	DriverREST     = "rest"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// LLM providers.
const (
	ProviderGemini  = "gemini"
	ProviderChatGPT = "chatgpt"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Store   StoreConfig   `yaml:"store"`
	LLM     LLMConfig     `yaml:"llm"`
	Worker  WorkerConfig  `yaml:"worker"`
	Retry   RetryConfig   `yaml:"retry"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// StoreConfig describes how to reach the record store.
// For the rest driver URL is the project URL; for SQL drivers it is the DSN.
type StoreConfig struct {
	Driver       string       `yaml:"driver" env:"STORE_DRIVER"`
	URL          string       `yaml:"url" env:"SUPABASE_URL"`
	Key          string       `yaml:"key" env:"SUPABASE_KEY"`
	EnsureSchema bool         `yaml:"ensureSchema" env:"STORE_ENSURE_SCHEMA"`
	Tables       TablesConfig `yaml:"tables"`
}

// TablesConfig names the tables of each entity.
type TablesConfig struct {
	Campaigns     string `yaml:"campaigns"`
	TalkingPoints string `yaml:"talkingPoints"`
	Prospects     string `yaml:"prospects"`
}

// LLMConfig selects the text-completion backend.
type LLMConfig struct {
	Provider string        `yaml:"provider" env:"LLM_PROVIDER"`
	Model    string        `yaml:"model" env:"LLM_MODEL"`
	APIKey   string        `yaml:"apiKey" env:"GOOGLE_API_KEY"`
	ChatGPT  ChatGPTConfig `yaml:"chatgpt"`
}

// ChatGPTConfig defines how to contact the ChatGPT API.
type ChatGPTConfig struct {
	Endpoint     string `yaml:"endpoint" env:"CHATGPT_ENDPOINT"`
	Model        string `yaml:"model" env:"CHATGPT_MODEL"`
	APIKey       string `yaml:"apiKey" env:"OPENAI_API_KEY"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// WorkerConfig tunes the drafting cycle and its loop.
type WorkerConfig struct {
	Interval  time.Duration `yaml:"interval" env:"PERSUADER_INTERVAL"`
	BatchSize int           `yaml:"batchSize" env:"PERSUADER_BATCH_SIZE"`
	Pause     time.Duration `yaml:"pause" env:"PERSUADER_PAUSE"`
}

// RetryConfig bounds retries of a failed cycle.
type RetryConfig struct {
	MaxTries     uint          `yaml:"maxTries" env:"RETRY_MAX_TRIES"`
	InitialDelay time.Duration `yaml:"initialDelay" env:"RETRY_INITIAL_DELAY"`
	MaxDelay     time.Duration `yaml:"maxDelay" env:"RETRY_MAX_DELAY"`
	MaxElapsed   time.Duration `yaml:"maxElapsed" env:"RETRY_MAX_ELAPSED"`
}

// MetricsConfig enables the Prometheus listener when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr" env:"METRICS_ADDR"`
}

// Load reads .env and YAML configuration (if present) and applies environment overrides.
func Load() (Config, error) {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: cannot load %s: %v", dotEnvFile, err)
	}

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			fileCfg := cfg
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = fileCfg
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

// Validate reports missing credentials; the worker cannot start without them.
func (c Config) Validate() error {
	var problems []string

	switch c.Store.Driver {
	case DriverREST:
		if c.Store.URL == "" {
			problems = append(problems, "store url (SUPABASE_URL) is required")
		}
		if c.Store.Key == "" {
			problems = append(problems, "store key (SUPABASE_KEY) is required")
		}
	case DriverPostgres, DriverSQLite:
		if c.Store.URL == "" {
			problems = append(problems, "store dsn (SUPABASE_URL) is required")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown store driver %q", c.Store.Driver))
	}

	switch c.LLM.Provider {
	case ProviderGemini:
		if c.LLM.APIKey == "" {
			problems = append(problems, "text service key (GOOGLE_API_KEY) is required")
		}
	case ProviderChatGPT:
		if c.LLM.ChatGPT.APIKey == "" {
			problems = append(problems, "text service key (OPENAI_API_KEY) is required")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown llm provider %q", c.LLM.Provider))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) normalize() {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))

	if c.Worker.BatchSize <= 0 || c.Worker.BatchSize > maxBatchSize {
		c.Worker.BatchSize = maxBatchSize
	}
	if c.Worker.Interval <= 0 {
		c.Worker.Interval = time.Hour
	}
	if c.Worker.Pause < 0 {
		c.Worker.Pause = 0
	}
	if c.LLM.Model == "" {
		c.LLM.Model = defaultModel
	}
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Store: StoreConfig{
			Driver: DriverREST,
		},
		LLM: LLMConfig{
			Provider: ProviderGemini,
			Model:    defaultModel,
			ChatGPT: ChatGPTConfig{
				Endpoint:     defaultChatURL,
				Model:        "gpt-4o-mini",
				SystemPrompt: "Eres un redactor de ventas B2B.",
			},
		},
		Worker: WorkerConfig{
			Interval:  time.Hour,
			BatchSize: maxBatchSize,
			Pause:     time.Second,
		},
		Retry: RetryConfig{
			MaxTries:     3,
			InitialDelay: 30 * time.Second,
			MaxDelay:     5 * time.Minute,
			MaxElapsed:   15 * time.Minute,
		},
	}
}
