package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithMockProvider(t *testing.T) {
	t.Setenv("AGENTWEB_LLM_PROVIDER", "mock")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:5000", cfg.Server.Addr())
	assert.True(t, cfg.Server.EnableCORS)
	assert.Equal(t, ProviderMock, cfg.LLM.Provider)
	assert.Equal(t, 120*time.Second, cfg.LLM.StepTimeout)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agentweb.yaml")
	content := []byte(`
server:
  port: 8080
  debug: true
llm:
  provider: mock
  model: test-model
log_level: DEBUG
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, "test-model", cfg.LLM.Model)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestValidateRejectsErnieWithoutCredentials(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: 5000},
		LLM:    LLMConfig{Provider: ProviderErnie},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: 5000},
		LLM:    LLMConfig{Provider: "gpt"},
	}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: 0},
		LLM:    LLMConfig{Provider: ProviderMock},
	}
	assert.Error(t, cfg.Validate())
}
