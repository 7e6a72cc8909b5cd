package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	Env            string        `mapstructure:"ENV"`
	AuthMode       string        `mapstructure:"AUTH_MODE"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32         `mapstructure:"DB_MIN_CONNS"`
	DBSchema       string        `mapstructure:"DB_SCHEMA"`
	AuthIssuer     string        `mapstructure:"AUTH_ISSUER"`
	AuthAudience   string        `mapstructure:"AUTH_AUDIENCE"`
	AuthSigningKey string        `mapstructure:"AUTH_SIGNING_KEY"`
	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	// LLM providers
	LLMProvider     string `mapstructure:"LLM_PROVIDER"`
	OllamaURL       string `mapstructure:"OLLAMA_URL"`
	OpenAIAPIKey    string `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `mapstructure:"OPENAI_BASE_URL"`
	AnthropicAPIKey string `mapstructure:"ANTHROPIC_API_KEY"`
	GeminiAPIKey    string `mapstructure:"GEMINI_API_KEY"`

	// Agent routing and per-specialist models. A blank model name falls back
	// to the specialist's default.
	RouterStrategy  string `mapstructure:"ROUTER_STRATEGY"`
	RouterModel     string `mapstructure:"ROUTER_MODEL"`
	AnatomyModel    string `mapstructure:"ANATOMY_MODEL"`
	ComplianceModel string `mapstructure:"COMPLIANCE_MODEL"`
	MarketModel     string `mapstructure:"MARKET_MODEL"`
	TrialsModel     string `mapstructure:"TRIALS_MODEL"`

	// External tool services
	ClinicalTrialsURL string `mapstructure:"CLINICAL_TRIALS_URL"`
	SearchAPIKey      string `mapstructure:"SEARCH_API_KEY"`
	SearchEngineID    string `mapstructure:"SEARCH_ENGINE_ID"`

	RetrievalEnabled       bool `mapstructure:"RETRIEVAL_ENABLED"`
	SampleResponsesEnabled bool `mapstructure:"SAMPLE_RESPONSES_ENABLED"`
}

var envKeys = []string{
	"PORT", "ENV", "AUTH_MODE", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "DB_SCHEMA",
	"AUTH_ISSUER", "AUTH_AUDIENCE", "AUTH_SIGNING_KEY", "CORS_ORIGINS", "REQUEST_TIMEOUT",
	"LLM_PROVIDER", "OLLAMA_URL", "OPENAI_API_KEY", "OPENAI_BASE_URL", "ANTHROPIC_API_KEY",
	"GEMINI_API_KEY", "ROUTER_STRATEGY", "ROUTER_MODEL", "ANATOMY_MODEL", "COMPLIANCE_MODEL",
	"MARKET_MODEL", "TRIALS_MODEL", "CLINICAL_TRIALS_URL", "SEARCH_API_KEY", "SEARCH_ENGINE_ID",
	"RETRIEVAL_ENABLED", "SAMPLE_RESPONSES_ENABLED",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("AUTH_MODE", "") // "" -> inferred from ENV
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("DB_SCHEMA", "medical")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("REQUEST_TIMEOUT", "120s")
	v.SetDefault("LLM_PROVIDER", "ollama")
	v.SetDefault("OLLAMA_URL", "http://localhost:11434")
	v.SetDefault("ROUTER_STRATEGY", "keyword")
	v.SetDefault("ROUTER_MODEL", "gemini-2.0-flash")
	v.SetDefault("CLINICAL_TRIALS_URL", "https://clinicaltrials.gov")
	v.SetDefault("RETRIEVAL_ENABLED", true)
	v.SetDefault("SAMPLE_RESPONSES_ENABLED", true)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) <= 1 {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() && cfg.ResolvedAuthMode() == "development" {
		log.Println("WARNING: running with ENV=development; every request is treated as admin.")
		log.Println("WARNING: set ENV=production and AUTH_SIGNING_KEY before exposing this server.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ResolvedAuthMode returns the effective auth mode. An explicit AUTH_MODE wins;
// otherwise development maps to "development" and everything else to "jwt".
func (c *Config) ResolvedAuthMode() string {
	if c.AuthMode != "" {
		return c.AuthMode
	}
	if c.IsDev() {
		return "development"
	}
	return "jwt"
}

var (
	validProviders  = map[string]bool{"ollama": true, "openai": true, "anthropic": true}
	validStrategies = map[string]bool{"keyword": true, "llm": true}
)

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	mode := c.ResolvedAuthMode()
	if mode != "development" && mode != "jwt" {
		return fmt.Errorf("AUTH_MODE must be \"development\" or \"jwt\", got %q", mode)
	}
	if mode == "jwt" && c.AuthSigningKey == "" {
		return fmt.Errorf("AUTH_SIGNING_KEY must be set when AUTH_MODE is \"jwt\" (current ENV=%q)", c.Env)
	}
	if c.IsProduction() && mode == "development" {
		return fmt.Errorf("AUTH_MODE=development is not allowed in production")
	}

	if !validProviders[c.LLMProvider] {
		return fmt.Errorf("LLM_PROVIDER must be one of ollama, openai, anthropic, got %q", c.LLMProvider)
	}
	if c.LLMProvider == "openai" && c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER is \"openai\"")
	}
	if c.LLMProvider == "anthropic" && c.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER is \"anthropic\"")
	}

	if !validStrategies[c.RouterStrategy] {
		return fmt.Errorf("ROUTER_STRATEGY must be \"keyword\" or \"llm\", got %q", c.RouterStrategy)
	}
	if c.RouterStrategy == "llm" && c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required when ROUTER_STRATEGY is \"llm\"")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	return nil
}
