// Package config loads service configuration from an optional config file and
// environment variables, with sensible defaults for local development.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Provider names accepted for llm.provider.
const (
	ProviderErnie = "ernie"
	ProviderMock  = "mock"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	EnableCORS   bool          `mapstructure:"enable_cors"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
	Debug        bool          `mapstructure:"debug"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LLMConfig holds text-completion gateway settings.
type LLMConfig struct {
	// Provider selects the gateway backend. "mock" substitutes canned
	// deterministic responses and must never be the production default.
	Provider    string        `mapstructure:"provider"`
	APIKey      string        `mapstructure:"api_key"`
	SecretKey   string        `mapstructure:"secret_key"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	StepTimeout time.Duration `mapstructure:"step_timeout"`
}

// Config is the root configuration object.
type Config struct {
	Server   ServerConfig `mapstructure:"server"`
	LLM      LLMConfig    `mapstructure:"llm"`
	LogLevel string       `mapstructure:"log_level"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.enable_cors", true)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.debug", false)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("llm.provider", ProviderErnie)
	v.SetDefault("llm.model", "ERNIE-Bot-4")
	v.SetDefault("llm.base_url", "https://aip.baidubce.com")
	v.SetDefault("llm.step_timeout", 120*time.Second)

	v.SetDefault("log_level", "INFO")
}

// Load reads configuration from the given file (optional) and from
// AGENTWEB_-prefixed environment variables.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("AGENTWEB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("agentweb")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		if err := v.ReadInConfig(); err != nil {
			// Missing config file is fine; env vars and defaults apply.
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks invariants that would otherwise surface as confusing
// runtime failures.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderErnie:
		if c.LLM.APIKey == "" || c.LLM.SecretKey == "" {
			return fmt.Errorf("llm provider %q requires api_key and secret_key", c.LLM.Provider)
		}
	case ProviderMock:
		// No credentials needed.
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}
