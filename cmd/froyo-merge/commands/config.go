package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/openfroyo/froyo-merge/pkg/telemetry"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Config is the froyo-merge configuration file.
type Config struct {
	Telemetry telemetry.Config `yaml:"telemetry"`
	Host      HostConfig       `yaml:"host"`
}

// HostConfig describes the files and commands of the host package manager.
type HostConfig struct {
	// Manifest is the root manifest file name, relative to the project dir.
	Manifest string `yaml:"manifest" validate:"required"`

	// LockFile is the lock artifact backed up around the follow-up
	// resolution, relative to the project dir.
	LockFile string `yaml:"lock_file" validate:"required"`

	// Resolver is the command line of the host's update command. The
	// allow-listed packages and mode flags are appended to it.
	Resolver string `yaml:"resolver" validate:"required"`

	// ResolverTimeout bounds the follow-up resolution. Zero means no limit.
	ResolverTimeout time.Duration `yaml:"resolver_timeout" validate:"gte=0"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Telemetry: *telemetry.DefaultConfig(),
		Host: HostConfig{
			Manifest:        "composer.json",
			LockFile:        "composer.lock",
			Resolver:        "composer update --no-interaction",
			ResolverTimeout: 10 * time.Minute,
		},
	}
}

// LoadConfig reads path over the defaults. An empty path returns the
// defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the host section and the telemetry configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c.Host); err != nil {
		return fmt.Errorf("invalid host config: %w", err)
	}
	return c.Telemetry.Validate()
}
