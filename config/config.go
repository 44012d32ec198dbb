package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/voicetypr/remote/logger"
	"github.com/voicetypr/remote/sharing"
)

// ServerConfig configures the sharing server started at boot.
type ServerConfig struct {
	Port     int    `yaml:"port" mapstructure:"port" validate:"min=0,max=65535"`
	Password string `yaml:"password" mapstructure:"password"`
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
}

// ModelConfig names the model offered over the network.
type ModelConfig struct {
	Path   string `yaml:"path" mapstructure:"path"`
	Name   string `yaml:"name" mapstructure:"name"`
	Engine string `yaml:"engine" mapstructure:"engine"`
}

// WhisperConfig configures the local whisper.cpp provider.
type WhisperConfig struct {
	Binary string `yaml:"binary" mapstructure:"binary"`
}

// ParakeetConfig configures the parakeet sidecar provider.
type ParakeetConfig struct {
	SidecarURL string `yaml:"sidecar_url" mapstructure:"sidecar_url"`
}

// CloudConfig configures the hosted transcription provider.
type CloudConfig struct {
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	APIKey   string `yaml:"api_key" mapstructure:"api_key"`
}

// ProvidersConfig groups per-engine provider settings.
type ProvidersConfig struct {
	Whisper  WhisperConfig  `yaml:"whisper" mapstructure:"whisper"`
	Parakeet ParakeetConfig `yaml:"parakeet" mapstructure:"parakeet"`
	Cloud    CloudConfig    `yaml:"cloud" mapstructure:"cloud"`
}

// Config is the full daemon configuration.
type Config struct {
	// DataDir is where persisted settings live.
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	Logging   logger.Config   `yaml:"logging" mapstructure:"logging"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Model     ModelConfig     `yaml:"model" mapstructure:"model"`
	Providers ProvidersConfig `yaml:"providers" mapstructure:"providers"`
}

// ApplyDefaults fills in unset fields.
func (c *Config) ApplyDefaults() {
	if c.DataDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.DataDir = filepath.Join(home, ".voicetypr")
		} else {
			c.DataDir = ".voicetypr"
		}
	}
	if c.Server.Port == 0 {
		c.Server.Port = sharing.DefaultPort
	}
	if c.Model.Engine == "" {
		c.Model.Engine = "whisper"
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the configuration after defaults have been applied.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if c.Server.Enabled && c.Model.Path == "" {
		return fmt.Errorf("config: server.enabled requires model.path")
	}
	return nil
}
