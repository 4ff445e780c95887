// Package config handles configuration loading for the iDEAL client.
//
// Configuration is loaded from a YAML file with support for environment
// variable expansion (${VAR} or $VAR syntax), so passphrases and file
// paths can be injected at runtime.
//
// # Example Configuration
//
//	merchant:
//	  id: "123456789"
//	  subId: 0
//	  privateKeyFile: /etc/ideal/merchant.key
//	  certificateFile: /etc/ideal/merchant.crt
//	  acquirerCertificateFile: /etc/ideal/acquirer.crt
//	  passphrase: ${IDEAL_PASSPHRASE}
//
//	acquirer: ing
//	environment: test
//	protocol: "3.3.1"
//
// See [Load] for loading configuration from a file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure
type Config struct {
	Merchant    MerchantConfig `yaml:"merchant"`
	Acquirer    string         `yaml:"acquirer"`
	Environment string         `yaml:"environment"` // "test" or "live"
	Protocol    string         `yaml:"protocol"`    // "1.1.0" or "3.3.1"
}

// MerchantConfig holds the merchant identity settings
type MerchantConfig struct {
	ID                      string `yaml:"id"`
	SubID                   int    `yaml:"subId"`
	Passphrase              string `yaml:"passphrase"`
	PrivateKeyFile          string `yaml:"privateKeyFile"`
	CertificateFile         string `yaml:"certificateFile"`
	AcquirerCertificateFile string `yaml:"acquirerCertificateFile"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// TestMode reports whether the configured environment is the acquirer's
// test environment.
func (c *Config) TestMode() bool {
	return c.Environment != "live"
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = "test"
	}
	if c.Protocol == "" {
		c.Protocol = "3.3.1"
	}
}

func (c *Config) validate() error {
	if c.Merchant.ID == "" {
		return fmt.Errorf("merchant.id is required")
	}
	if c.Merchant.PrivateKeyFile == "" {
		return fmt.Errorf("merchant.privateKeyFile is required")
	}
	if c.Merchant.CertificateFile == "" {
		return fmt.Errorf("merchant.certificateFile is required")
	}
	if c.Acquirer == "" {
		return fmt.Errorf("acquirer is required")
	}

	switch c.Environment {
	case "test", "live":
		// Valid environments
	default:
		return fmt.Errorf("environment must be 'test' or 'live', got '%s'", c.Environment)
	}

	return nil
}
