// internal/config/config_test.go
package config_test

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/oxtest-cli/internal/config"
)

// TestNewDefaultConfig: the defaults alone form a valid configuration.
func TestNewDefaultConfig(t *testing.T) {
	cfg := config.NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, config.ModeThreePass, cfg.Decomposer.Mode)
	assert.Equal(t, 3, cfg.Decomposer.MaxAttempts)
	assert.Equal(t, 10, cfg.Decomposer.MaxIterations)
	assert.Equal(t, 4000, cfg.Decomposer.DomCharBudget)
	assert.Equal(t, "simplified", cfg.Decomposer.Fidelity)
	assert.Equal(t, "gemini-flash", cfg.LLM.DefaultModel)
	assert.Contains(t, cfg.LLM.Models, "gemini-flash")
	assert.Equal(t, []string{"console"}, cfg.Report.Formats)

	assert.NoError(t, cfg.Validate())
}

// TestNewConfigFromViper_EnvAPIKey binds the shared API key from the
// environment into every model missing one.
func TestNewConfigFromViper_EnvAPIKey(t *testing.T) {
	t.Setenv("OXTEST_LLM_API_KEY", "shared-key")

	v := viper.New()
	config.SetDefaults(v)

	cfg, err := config.NewConfigFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "shared-key", cfg.LLM.Models["gemini-flash"].APIKey)
}

// TestNewConfigFromViper_ProviderKeyWins: a provider-specific variable beats
// the shared one.
func TestNewConfigFromViper_ProviderKeyWins(t *testing.T) {
	t.Setenv("OXTEST_LLM_API_KEY", "shared-key")
	t.Setenv("OXTEST_GEMINI_API_KEY", "gemini-key")

	v := viper.New()
	config.SetDefaults(v)

	cfg, err := config.NewConfigFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "gemini-key", cfg.LLM.Models["gemini-flash"].APIKey)
}

// TestValidate_Failures enumerates rejected configurations.
func TestValidate_Failures(t *testing.T) {
	base := func() *config.Config { return config.NewDefaultConfig() }

	cfg := base()
	cfg.Decomposer.Mode = "yolo"
	assert.ErrorContains(t, cfg.Validate(), "decomposer.mode")

	cfg = base()
	cfg.Decomposer.MaxAttempts = 0
	assert.ErrorContains(t, cfg.Validate(), "max_attempts")

	cfg = base()
	cfg.Decomposer.MaxIterations = -1
	assert.ErrorContains(t, cfg.Validate(), "max_iterations")

	cfg = base()
	cfg.Decomposer.DomCharBudget = 0
	assert.ErrorContains(t, cfg.Validate(), "dom_char_budget")

	cfg = base()
	cfg.LLM.Models = nil
	assert.ErrorContains(t, cfg.Validate(), "llm.models")

	cfg = base()
	cfg.LLM.DefaultModel = "missing"
	assert.ErrorContains(t, cfg.Validate(), "default_model")

	cfg = base()
	m := cfg.LLM.Models["gemini-flash"]
	m.Provider = "mystery"
	cfg.LLM.Models["gemini-flash"] = m
	assert.ErrorContains(t, cfg.Validate(), "provider")

	cfg = base()
	m = cfg.LLM.Models["gemini-flash"]
	m.Model = ""
	cfg.LLM.Models["gemini-flash"] = m
	assert.ErrorContains(t, cfg.Validate(), "model is required")
}
