package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the assistant
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Tools     ToolsConfig     `mapstructure:"tools"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Resources ResourcesConfig `mapstructure:"resources"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug             bool          `mapstructure:"debug"`
	LogLevel          string        `mapstructure:"log_level"`
	MaxProcessingTime time.Duration `mapstructure:"max_processing_time"`
	DefaultTimeout    time.Duration `mapstructure:"default_timeout"`
}

// Normalize applies defaults for unset general values.
func (g GeneralConfig) Normalize() GeneralConfig {
	if g.MaxProcessingTime <= 0 {
		g.MaxProcessingTime = 2 * time.Minute
	}
	if g.DefaultTimeout <= 0 {
		g.DefaultTimeout = 30 * time.Second
	}
	return g
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address      string   `mapstructure:"address"`
	StaticDir    string   `mapstructure:"static_dir"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// Normalize applies defaults for unset server values.
func (s ServerConfig) Normalize() ServerConfig {
	if strings.TrimSpace(s.Address) == "" {
		s.Address = ":8000"
	}
	if len(s.AllowOrigins) == 0 {
		s.AllowOrigins = []string{"*"}
	}
	return s
}

// LLMConfig contains LLM provider configurations
type LLMConfig struct {
	Providers map[string]LLMProvider `mapstructure:"providers"`
	Routing   LLMRoutingConfig       `mapstructure:"routing"`
}

// LLMProvider represents a single LLM provider configuration
type LLMProvider struct {
	Type       string              `mapstructure:"type"` // openai, groq, google
	APIKey     string              `mapstructure:"api_key"`
	BaseURL    string              `mapstructure:"base_url"`
	Models     map[string]LLMModel `mapstructure:"models"`
	MaxRetries int                 `mapstructure:"max_retries"`
	Timeout    time.Duration       `mapstructure:"timeout"`
}

// LLMModel represents a specific model configuration
type LLMModel struct {
	Name            string  `mapstructure:"name"`
	APIName         string  `mapstructure:"api_name"`
	MaxTokens       int     `mapstructure:"max_tokens"`
	Temperature     float64 `mapstructure:"temperature"`
	CostPer1K       float64 `mapstructure:"cost_per_1k_input"`
	CostPer1KOutput float64 `mapstructure:"cost_per_1k_output"`
}

// LLMRoutingConfig defines which model to use for each pipeline role
type LLMRoutingConfig struct {
	Rewrite   string `mapstructure:"rewrite"`   // query normalization
	Analysis  string `mapstructure:"analysis"`  // emotion classification
	Therapy   string `mapstructure:"therapy"`   // CBT response drafting
	Resources string `mapstructure:"resources"` // resource and schedule suggestions
	Safety    string `mapstructure:"safety"`    // ethics review
	Writing   string `mapstructure:"writing"`   // final composition
	Fallback  string `mapstructure:"fallback"`  // used when a role is unset
}

// Resolve returns the configured model for a role, falling back to the
// routing fallback when the role is unset.
func (r LLMRoutingConfig) Resolve(role string) string {
	var m string
	switch role {
	case "rewrite":
		m = r.Rewrite
	case "analysis":
		m = r.Analysis
	case "therapy":
		m = r.Therapy
	case "resources":
		m = r.Resources
	case "safety":
		m = r.Safety
	case "writing":
		m = r.Writing
	}
	if m == "" {
		m = r.Fallback
	}
	return m
}

func (l LLMConfig) Validate() error {
	if len(l.Providers) == 0 {
		return fmt.Errorf("llm.providers: at least one provider required")
	}
	for name, p := range l.Providers {
		switch p.Type {
		case "openai", "groq", "google":
		default:
			return fmt.Errorf("llm.providers.%s: unsupported type %q", name, p.Type)
		}
		if len(p.Models) == 0 {
			return fmt.Errorf("llm.providers.%s: at least one model required", name)
		}
	}
	if l.Routing.Fallback == "" {
		return fmt.Errorf("llm.routing.fallback is required")
	}
	return nil
}

// PipelineConfig controls orchestrator behaviour.
type PipelineConfig struct {
	MaxEthicsRetries    int    `mapstructure:"max_ethics_retries"`
	SafeFallbackMessage string `mapstructure:"safe_fallback_message"`
	ApologyMessage      string `mapstructure:"apology_message"`
	IncludeTrace        bool   `mapstructure:"include_trace"`
}

// DefaultSafeFallbackMessage is returned when the ethics review blocks a response.
const DefaultSafeFallbackMessage = "I apologize, but I'm unable to provide a suitable response at this time. Please consider speaking with a qualified mental health professional for personalized support."

// DefaultApologyMessage is returned when any pipeline step fails.
const DefaultApologyMessage = "I'm sorry, something went wrong while preparing your response. Please try again in a moment."

// Normalize applies defaults for unset pipeline values.
func (p PipelineConfig) Normalize() PipelineConfig {
	if strings.TrimSpace(p.SafeFallbackMessage) == "" {
		p.SafeFallbackMessage = DefaultSafeFallbackMessage
	}
	if strings.TrimSpace(p.ApologyMessage) == "" {
		p.ApologyMessage = DefaultApologyMessage
	}
	return p
}

func (p PipelineConfig) Validate() error {
	if p.MaxEthicsRetries < 0 {
		return fmt.Errorf("pipeline.max_ethics_retries cannot be negative")
	}
	if p.MaxEthicsRetries > 5 {
		return fmt.Errorf("pipeline.max_ethics_retries must be at most 5")
	}
	return nil
}

// TelemetryConfig contains telemetry and monitoring settings
type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	LogFile      string `mapstructure:"log_file"`
	CostTracking bool   `mapstructure:"cost_tracking"`
	PeriodicLogs bool   `mapstructure:"periodic_logs"`
}

// ToolsConfig groups external tool settings.
type ToolsConfig struct {
	WebSearch WebSearchConfig `mapstructure:"web_search"`
	WebFetch  WebFetchConfig  `mapstructure:"web_fetch"`
}

// WebSearchConfig selects the optional web search provider used by the
// resource step. An empty provider disables enrichment.
type WebSearchConfig struct {
	Provider     string        `mapstructure:"provider"` // serper or brave
	SerperAPIKey string        `mapstructure:"serper_api_key"`
	BraveAPIKey  string        `mapstructure:"brave_api_key"`
	MaxResults   int           `mapstructure:"max_results"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// Normalize applies defaults for unset web search values.
func (w WebSearchConfig) Normalize() WebSearchConfig {
	if w.MaxResults <= 0 {
		w.MaxResults = 3
	}
	if w.Timeout <= 0 {
		w.Timeout = 10 * time.Second
	}
	return w
}

func (w WebSearchConfig) Validate() error {
	switch w.Provider {
	case "", "serper", "brave":
	default:
		return fmt.Errorf("tools.web_search.provider must be serper or brave")
	}
	if w.Provider == "serper" && strings.TrimSpace(w.SerperAPIKey) == "" {
		return fmt.Errorf("tools.web_search.serper_api_key required for serper")
	}
	if w.Provider == "brave" && strings.TrimSpace(w.BraveAPIKey) == "" {
		return fmt.Errorf("tools.web_search.brave_api_key required for brave")
	}
	return nil
}

// WebFetchConfig controls readable-page extraction for enrichment notes.
type WebFetchConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Timeout  time.Duration `mapstructure:"timeout"`
	MaxChars int           `mapstructure:"max_chars"`
}

// Normalize applies defaults for unset web fetch values.
func (w WebFetchConfig) Normalize() WebFetchConfig {
	if w.Timeout <= 0 {
		w.Timeout = 8 * time.Second
	}
	if w.MaxChars <= 0 {
		w.MaxChars = 400
	}
	return w
}

// CacheConfig selects the lookup cache backend for enrichment results.
type CacheConfig struct {
	Backend string        `mapstructure:"backend"` // memory or redis
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// Normalize applies defaults for unset cache values.
func (c CacheConfig) Normalize() CacheConfig {
	if c.Backend == "" {
		c.Backend = "memory"
	}
	if c.TTL <= 0 {
		c.TTL = time.Hour
	}
	return c
}

func (c CacheConfig) Validate() error {
	switch c.Backend {
	case "memory":
		return nil
	case "redis":
		return c.Redis.Validate()
	default:
		return fmt.Errorf("cache.backend must be memory or redis")
	}
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (r RedisConfig) Validate() error {
	if strings.TrimSpace(r.Host) == "" {
		return fmt.Errorf("cache.redis.host required")
	}
	if strings.TrimSpace(r.Port) == "" {
		return fmt.Errorf("cache.redis.port required")
	}
	return nil
}

// ResourcesConfig controls the curated resource library.
type ResourcesConfig struct {
	MaxLibraryHits int `mapstructure:"max_library_hits"`
}

// Normalize applies defaults for unset resource values.
func (r ResourcesConfig) Normalize() ResourcesConfig {
	if r.MaxLibraryHits <= 0 {
		r.MaxLibraryHits = 3
	}
	return r
}

// LoadConfig loads config from file
func LoadConfig(path string) *Config {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yaml")
	viper.SetDefault("server.address", ":8000")
	viper.SetDefault("pipeline.max_ethics_retries", 0)
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("tools.web_search.max_results", 3)
	viper.SetDefault("resources.max_library_hits", 3)

	if path == "" {
		viper.AddConfigPath("./config") // path to look for the config file in
		viper.AddConfigPath(".")        // optionally look for config in the working directory
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("MINDMATE")
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	viper.AutomaticEnv() // read in environment variables that match (MINDMATE_*)

	err := viper.ReadInConfig() // Find and read the config file
	if err != nil {             // Handle errors reading the config file
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	// unmarshal config
	var config Config

	if err = viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	config.General = config.General.Normalize()
	config.Server = config.Server.Normalize()
	config.Pipeline = config.Pipeline.Normalize()
	config.Tools.WebSearch = config.Tools.WebSearch.Normalize()
	config.Tools.WebFetch = config.Tools.WebFetch.Normalize()
	config.Cache = config.Cache.Normalize()
	config.Resources = config.Resources.Normalize()

	if err := config.LLM.Validate(); err != nil {
		panic(err)
	}
	if err := config.Pipeline.Validate(); err != nil {
		panic(err)
	}
	if err := config.Tools.WebSearch.Validate(); err != nil {
		panic(err)
	}
	if err := config.Cache.Validate(); err != nil {
		panic(err)
	}
	return &config
}
