package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the CLI's yaml configuration. All fields have working
// defaults so the tool runs without a config file at all.
type Config struct {
	// GatewayURL is the remote ledger gateway the info/locate commands
	// talk to directly.
	GatewayURL string `yaml:"gateway_url" validate:"required,url"`

	// ServerURL is the scanner service the probe command connects to.
	ServerURL string `yaml:"server_url" validate:"required,url"`

	// RequestsPerSecond paces direct gateway calls.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0,lte=50"`

	// LogDir enables file logging when set.
	LogDir string `yaml:"log_dir"`
}

func defaultConfig() Config {
	return Config{
		GatewayURL:        "http://localhost:1984",
		ServerURL:         "http://localhost:12310",
		RequestsPerSecond: 4,
	}
}

// LoadConfig reads the yaml config, falling back to defaults when the
// file does not exist. A file that exists but fails to parse or
// validate is an error; silently ignoring a broken config hides
// operator mistakes.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
