package internal

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Environment     string                         `mapstructure:"environment"`
	DefaultCurrency string                         `mapstructure:"default_currency"`
	Database        DatabaseConfig                 `mapstructure:"database"`
	Redis           RedisConfig                    `mapstructure:"redis"`
	Providers       map[string]ProviderCredentials `mapstructure:"providers"`
	FraudDetection  FraudDetectionConfig           `mapstructure:"fraud_detection"`
	Logging         LoggingConfig                  `mapstructure:"logging"`
}

type DatabaseConfig struct {
	Source          string        `mapstructure:"source"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ProviderCredentials struct {
	APIURL    string        `mapstructure:"api_url"`
	APIKey    string        `mapstructure:"api_key"`
	SecretKey string        `mapstructure:"secret_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type FraudDetectionConfig struct {
	Enabled    bool           `mapstructure:"enabled"`
	Thresholds RiskThresholds `mapstructure:"thresholds"`
}

type RiskThresholds struct {
	HighRisk   float64 `mapstructure:"high_risk"`
	MediumRisk float64 `mapstructure:"medium_risk"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const (
	DefaultHighRiskThreshold   = 0.8
	DefaultMediumRiskThreshold = 0.5
)

// ApplyDefaults fills the defaulted sub-objects the caller may omit. Missing
// environment, currency or credentials are not defaulted; Validate rejects
// those outright.
func (c *Config) ApplyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.FraudDetection.Thresholds.HighRisk == 0 {
		c.FraudDetection.Thresholds.HighRisk = DefaultHighRiskThreshold
	}
	if c.FraudDetection.Thresholds.MediumRisk == 0 {
		c.FraudDetection.Thresholds.MediumRisk = DefaultMediumRiskThreshold
	}
	for name, creds := range c.Providers {
		if creds.Timeout <= 0 {
			creds.Timeout = 30 * time.Second
			c.Providers[name] = creds
		}
	}
}

func (c *Config) Validate() error {
	var errs []string

	if c.Environment == "" {
		errs = append(errs, "environment is required")
	}
	if c.DefaultCurrency == "" {
		errs = append(errs, "default_currency is required")
	} else if len(c.DefaultCurrency) != 3 {
		errs = append(errs, fmt.Sprintf("default_currency %q is not a 3-letter ISO code", c.DefaultCurrency))
	}
	if len(c.Providers) == 0 {
		errs = append(errs, "at least one provider credential set is required")
	}
	for name, creds := range c.Providers {
		if err := creds.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("provider %s: %v", name, err))
		}
	}
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}
	if err := c.FraudDetection.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("fraud detection config: %v", err))
	}

	if len(errs) > 0 {
		return NewConfigurationError(strings.Join(errs, "; "))
	}
	return nil
}

func (c ProviderCredentials) Validate() error {
	if c.APIURL == "" {
		return errors.New("api_url is required")
	}
	if c.APIKey == "" {
		return errors.New("api_key is required")
	}
	return nil
}

func (c LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Level)
	}
	switch c.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format %q", c.Format)
	}
	return nil
}

func (c FraudDetectionConfig) Validate() error {
	t := c.Thresholds
	if t.HighRisk < 0 || t.HighRisk > 1 || t.MediumRisk < 0 || t.MediumRisk > 1 {
		return errors.New("risk thresholds must be within [0,1]")
	}
	if t.MediumRisk > t.HighRisk {
		return errors.New("medium_risk threshold cannot exceed high_risk threshold")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}
