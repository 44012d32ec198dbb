package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoaderConfig holds optional file overrides for Load.
type LoaderConfig struct {
	ConfigFile string
	EnvFile    string
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load reads the daemon configuration. File values are overridden by .env
// values, which are overridden by the process environment. Defaults are
// applied and the result validated before it is returned.
func Load(opts ...LoaderOption) (*Config, error) {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.ConfigFile == "" {
		lc.ConfigFile = findFile("config.yml")
	}
	if lc.EnvFile == "" {
		lc.EnvFile = findFile(".env")
	}

	v := viper.New()

	if lc.ConfigFile != "" && fileExists(lc.ConfigFile) {
		v.SetConfigFile(lc.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", lc.ConfigFile, err)
		}
	}

	if lc.EnvFile != "" && fileExists(lc.EnvFile) {
		if err := godotenv.Load(lc.EnvFile); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", lc.EnvFile, err)
		}
	}

	v.SetEnvPrefix("VOICETYPR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// bindEnvKeys registers every config key with viper so AutomaticEnv can
// resolve nested keys like server.port from VOICETYPR_SERVER_PORT.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"data_dir",
		"logging.level", "logging.format", "logging.output",
		"server.port", "server.password", "server.enabled",
		"model.path", "model.name", "model.engine",
		"providers.whisper.binary",
		"providers.parakeet.sidecar_url",
		"providers.cloud.endpoint", "providers.cloud.api_key",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// findFile searches the working directory and up to two parents.
func findFile(name string) string {
	for _, prefix := range []string{".", "..", "../.."} {
		path := prefix + string(os.PathSeparator) + name
		if fileExists(path) {
			return path
		}
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
