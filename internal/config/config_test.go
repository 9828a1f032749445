package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultServerLogLevel, cfg.Server.LogLevel)
	assert.Equal(t, DefaultModelDefault, cfg.Models.Default)
	assert.Equal(t, DefaultModelFallback, cfg.Models.Fallback)
	assert.Equal(t, DefaultOrchestratorMaxPasses, cfg.Orchestrator.MaxPasses)
	assert.Equal(t, DefaultOrchestratorHistoryWindow, cfg.Orchestrator.HistoryWindow)
	assert.Equal(t, DefaultSuggestTopK, cfg.Suggest.TopK)
	assert.Equal(t, DefaultSuggestMinScore, cfg.Suggest.MinScore)
	assert.Equal(t, DefaultSessionsIdleTTL, cfg.Sessions.IdleTTL)
	assert.NotEmpty(t, cfg.Prompts.System)
	require.NotEmpty(t, cfg.Models.Registry)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SALONMATE_SERVER_PORT", "9797")
	t.Setenv("SALONMATE_ORCHESTRATOR_MAX_PASSES", "2")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 9797, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Orchestrator.MaxPasses)
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `server:
  port: 7070
orchestrator:
  history_window: 8
tools:
  salon:
    base_url: "http://salon-api:9090"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", "", "")
	require.NoError(t, cmd.Flags().Set("config", path))

	cfg, err := Load(cmd)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Orchestrator.HistoryWindow)
	assert.Equal(t, "http://salon-api:9090", cfg.Tools.Salon.BaseURL)
	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultModelDefault, cfg.Models.Default)
}

func TestLoadAPIKeyInjection(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OPENAI_API_KEY", "sk-test-123")

	cfg, err := Load(nil)
	require.NoError(t, err)

	found := false
	for _, m := range cfg.Models.Registry {
		if m.Provider == "openai" {
			assert.Equal(t, "sk-test-123", m.APIKey)
			found = true
		}
	}
	assert.True(t, found)
}

func TestDurationOrDefault(t *testing.T) {
	d, err := DurationOrDefault("45s", "10s")
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, d)

	d, err = DurationOrDefault("", "10s")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, d)

	_, err = DurationOrDefault("soon", "10s")
	assert.Error(t, err)

	_, err = DurationOrDefault("", "")
	assert.Error(t, err)
}
