// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	Browser    BrowserConfig    `mapstructure:"browser" yaml:"browser"`
	LLM        LLMRouterConfig  `mapstructure:"llm" yaml:"llm"`
	Decomposer DecomposerConfig `mapstructure:"decomposer" yaml:"decomposer"`
	Report     ReportConfig     `mapstructure:"report" yaml:"report"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig holds settings for the headless browser instance.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	IgnoreTLSErrors   bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	ActionTimeout     time.Duration `mapstructure:"action_timeout" yaml:"action_timeout"`
	Args              []string      `mapstructure:"args" yaml:"args"`
}

// LLMProvider identifies a supported model provider.
type LLMProvider string

const (
	ProviderGemini LLMProvider = "gemini"
	ProviderOpenAI LLMProvider = "openai"
)

// LLMRouterConfig configures the model set and which model handles which
// request class.
type LLMRouterConfig struct {
	// DefaultModel names the entry in Models used when a request does not
	// name one explicitly.
	DefaultModel string                    `mapstructure:"default_model" yaml:"default_model"`
	Models       map[string]LLMModelConfig `mapstructure:"models" yaml:"models"`

	// RequestsPerMinute caps outbound LLM calls across all clients.
	// Zero disables rate limiting.
	RequestsPerMinute float64 `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
}

// LLMModelConfig defines the configuration for a single model.
type LLMModelConfig struct {
	Provider    LLMProvider   `mapstructure:"provider" yaml:"provider"`
	Model       string        `mapstructure:"model" yaml:"model"`
	APIKey      string        `mapstructure:"api_key" yaml:"-"`
	Endpoint    string        `mapstructure:"endpoint" yaml:"endpoint"`
	APITimeout  time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	Temperature float32       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// DecomposerMode selects how instructions are turned into commands.
type DecomposerMode string

const (
	// ModeThreePass plans, generates and validates against snapshots without
	// executing anything; execution happens afterwards.
	ModeThreePass DecomposerMode = "three_pass"
	// ModeEOP executes each command immediately after generating it so the
	// next prompt sees current DOM state.
	ModeEOP DecomposerMode = "eop"
)

// DecomposerConfig tunes the decomposition engine. The engine takes this
// explicitly; it never reads the environment on its own.
type DecomposerConfig struct {
	Mode DecomposerMode `mapstructure:"mode" yaml:"mode"`

	// MaxAttempts bounds generation plus refinement per step in three-pass
	// mode, counting the first generation.
	MaxAttempts int `mapstructure:"max_attempts" yaml:"max_attempts"`

	// MaxIterations caps the observe/plan/execute loop in EOP mode.
	MaxIterations int `mapstructure:"max_iterations" yaml:"max_iterations"`

	// Fidelity is the snapshot fidelity requested from the page state
	// provider for prompting and validation.
	Fidelity string `mapstructure:"fidelity" yaml:"fidelity"`

	// DomCharBudget bounds how many snapshot characters are embedded in a
	// prompt before truncation kicks in.
	DomCharBudget int `mapstructure:"dom_char_budget" yaml:"dom_char_budget"`
}

// ReportConfig selects report outputs.
type ReportConfig struct {
	OutputDir string   `mapstructure:"output_dir" yaml:"output_dir"`
	Formats   []string `mapstructure:"formats" yaml:"formats"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "oxtest-cli")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.navigation_timeout", "90s")
	v.SetDefault("browser.action_timeout", "15s")

	// -- LLM --
	v.SetDefault("llm.default_model", "gemini-flash")
	v.SetDefault("llm.requests_per_minute", 30.0)
	v.SetDefault("llm.models.gemini-flash.provider", "gemini")
	v.SetDefault("llm.models.gemini-flash.model", "gemini-2.5-flash")
	v.SetDefault("llm.models.gemini-flash.api_timeout", "90s")
	v.SetDefault("llm.models.gemini-flash.max_tokens", 4096)

	// -- Decomposer --
	v.SetDefault("decomposer.mode", "three_pass")
	v.SetDefault("decomposer.max_attempts", 3)
	v.SetDefault("decomposer.max_iterations", 10)
	v.SetDefault("decomposer.fidelity", "simplified")
	v.SetDefault("decomposer.dom_char_budget", 4000)

	// -- Report --
	v.SetDefault("report.output_dir", "oxtest-reports")
	v.SetDefault("report.formats", []string{"console"})
}

// NewDefaultConfig creates a configuration populated with defaults only.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a configuration instance from a viper object,
// binding API keys from the environment.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	v.BindEnv("llm.api_key", "OXTEST_LLM_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// API keys live in the environment, not the config file. A model-specific
	// variable (OXTEST_GEMINI_API_KEY) wins over the shared one.
	shared := os.Getenv("OXTEST_LLM_API_KEY")
	for name, model := range cfg.LLM.Models {
		if model.APIKey != "" {
			continue
		}
		switch model.Provider {
		case ProviderGemini:
			model.APIKey = os.Getenv("OXTEST_GEMINI_API_KEY")
		case ProviderOpenAI:
			model.APIKey = os.Getenv("OXTEST_OPENAI_API_KEY")
		}
		if model.APIKey == "" {
			model.APIKey = shared
		}
		cfg.LLM.Models[name] = model
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Decomposer.Mode != ModeThreePass && c.Decomposer.Mode != ModeEOP {
		return fmt.Errorf("decomposer.mode must be %q or %q, got %q", ModeThreePass, ModeEOP, c.Decomposer.Mode)
	}
	if c.Decomposer.MaxAttempts <= 0 {
		return fmt.Errorf("decomposer.max_attempts must be a positive integer")
	}
	if c.Decomposer.MaxIterations <= 0 {
		return fmt.Errorf("decomposer.max_iterations must be a positive integer")
	}
	if c.Decomposer.DomCharBudget <= 0 {
		return fmt.Errorf("decomposer.dom_char_budget must be a positive integer")
	}
	if len(c.LLM.Models) == 0 {
		return fmt.Errorf("at least one model must be configured under llm.models")
	}
	if _, ok := c.LLM.Models[c.LLM.DefaultModel]; !ok {
		return fmt.Errorf("llm.default_model %q not found in llm.models", c.LLM.DefaultModel)
	}
	for name, m := range c.LLM.Models {
		if m.Provider != ProviderGemini && m.Provider != ProviderOpenAI {
			return fmt.Errorf("llm.models.%s.provider %q is not supported", name, m.Provider)
		}
		if m.Model == "" {
			return fmt.Errorf("llm.models.%s.model is required", name)
		}
	}
	return nil
}
