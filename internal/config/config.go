package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	APIAddr   string
	LogLevel  string
	LogFormat string

	PostgresURL       string
	TemporalAddress   string
	TemporalTaskQueue string

	LLMProviders       string
	AgentModel         string
	ChatModel          string
	AgentMaxIterations int
	AgentTemperature   float64

	ProductHuntToken     string
	ProductHuntAPIURL    string
	ProductHuntPublicURL string
	FeedTimeoutSecs      int
	FeedRetries          int

	OpenAIAPIKey  string
	OpenAIBaseURL string
	GroqBaseURL   string
	GroqModel     string
	OllamaBaseURL string
	OllamaModel   string

	HistoryLimit   int
	DigestLimit    int
	DigestDetailed int
}

// StorageEnabled reports whether a Postgres DSN was configured.
func (c Config) StorageEnabled() bool { return c.PostgresURL != "" }

// DigestsEnabled reports whether digests can be started and read back.
func (c Config) DigestsEnabled() bool { return c.TemporalAddress != "" && c.StorageEnabled() }

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("huntbrief")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.SetEnvPrefix("HUNTBRIEF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// The upstream tooling reads these two without a prefix.
	_ = v.BindEnv("openai_api_key", "HUNTBRIEF_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("producthunt_token", "HUNTBRIEF_PRODUCTHUNT_TOKEN", "PRODUCTHUNT_TOKEN")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		APIAddr:              v.GetString("api_addr"),
		LogLevel:             v.GetString("log_level"),
		LogFormat:            v.GetString("log_format"),
		PostgresURL:          v.GetString("postgres_url"),
		TemporalAddress:      v.GetString("temporal_address"),
		TemporalTaskQueue:    v.GetString("temporal_task_queue"),
		LLMProviders:         v.GetString("llm_providers"),
		AgentModel:           v.GetString("agent_model"),
		ChatModel:            v.GetString("chat_model"),
		AgentMaxIterations:   v.GetInt("agent_max_iterations"),
		AgentTemperature:     v.GetFloat64("agent_temperature"),
		ProductHuntToken:     v.GetString("producthunt_token"),
		ProductHuntAPIURL:    v.GetString("producthunt_api_url"),
		ProductHuntPublicURL: v.GetString("producthunt_public_url"),
		FeedTimeoutSecs:      v.GetInt("feed_timeout_secs"),
		FeedRetries:          v.GetInt("feed_retries"),
		OpenAIAPIKey:         v.GetString("openai_api_key"),
		OpenAIBaseURL:        v.GetString("openai_base_url"),
		GroqBaseURL:          v.GetString("groq_base_url"),
		GroqModel:            v.GetString("groq_model"),
		OllamaBaseURL:        v.GetString("ollama_base_url"),
		OllamaModel:          v.GetString("ollama_model"),
		HistoryLimit:         v.GetInt("history_limit"),
		DigestLimit:          v.GetInt("digest_limit"),
		DigestDetailed:       v.GetInt("digest_detailed"),
	}
	if cfg.DigestLimit > 0 && cfg.DigestDetailed > cfg.DigestLimit {
		cfg.DigestDetailed = cfg.DigestLimit
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration Load produces with no file and no environment.
func Default() Config {
	return Config{
		APIAddr:              ":8080",
		LogLevel:             "info",
		LogFormat:            "json",
		TemporalTaskQueue:    "huntbrief",
		LLMProviders:         "openai|mock",
		AgentModel:           "gpt-4o-mini",
		ChatModel:            "gpt-3.5-turbo",
		AgentMaxIterations:   5,
		ProductHuntAPIURL:    "https://api.producthunt.com/v2/api/graphql",
		ProductHuntPublicURL: "https://www.producthunt.com/frontend/graphql",
		FeedTimeoutSecs:      20,
		FeedRetries:          2,
		GroqBaseURL:          "https://api.groq.com/openai/v1/",
		GroqModel:            "llama-3.1-8b-instant",
		OllamaBaseURL:        "http://localhost:11434/v1/",
		OllamaModel:          "llama3.1",
		HistoryLimit:         20,
		DigestLimit:          10,
		DigestDetailed:       3,
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("api_addr", d.APIAddr)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("postgres_url", "")
	v.SetDefault("temporal_address", "")
	v.SetDefault("temporal_task_queue", d.TemporalTaskQueue)
	v.SetDefault("llm_providers", d.LLMProviders)
	v.SetDefault("agent_model", d.AgentModel)
	v.SetDefault("chat_model", d.ChatModel)
	v.SetDefault("agent_max_iterations", d.AgentMaxIterations)
	v.SetDefault("agent_temperature", d.AgentTemperature)
	v.SetDefault("producthunt_token", "")
	v.SetDefault("producthunt_api_url", d.ProductHuntAPIURL)
	v.SetDefault("producthunt_public_url", d.ProductHuntPublicURL)
	v.SetDefault("feed_timeout_secs", d.FeedTimeoutSecs)
	v.SetDefault("feed_retries", d.FeedRetries)
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_base_url", "")
	v.SetDefault("groq_base_url", d.GroqBaseURL)
	v.SetDefault("groq_model", d.GroqModel)
	v.SetDefault("ollama_base_url", d.OllamaBaseURL)
	v.SetDefault("ollama_model", d.OllamaModel)
	v.SetDefault("history_limit", d.HistoryLimit)
	v.SetDefault("digest_limit", d.DigestLimit)
	v.SetDefault("digest_detailed", d.DigestDetailed)
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.APIAddr) == "" {
		errs = append(errs, errors.New("api_addr must not be empty"))
	}
	if c.AgentMaxIterations <= 0 {
		errs = append(errs, fmt.Errorf("agent_max_iterations must be > 0, got %d", c.AgentMaxIterations))
	}
	if c.FeedRetries < 0 {
		errs = append(errs, fmt.Errorf("feed_retries must be >= 0, got %d", c.FeedRetries))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
