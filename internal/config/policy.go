package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/viper"

	"naijatax/internal/taxengine"
)

// TaxPolicy holds the tunable parameters of the tax engine and the API
// around it. It is read from an optional YAML file.
type TaxPolicy struct {
	Rules   RulesPolicy   `mapstructure:"rules"`
	Savings SavingsPolicy `mapstructure:"savings"`
	Ingest  IngestPolicy  `mapstructure:"ingest"`
}

// RulesPolicy configures the compliance rule engine.
type RulesPolicy struct {
	EntertainmentTurnover float64 `mapstructure:"entertainment_turnover"`
}

// SavingsPolicy configures the savings analyzers.
type SavingsPolicy struct {
	// DefaultOwnerNeeds is used when a company profile has no owner needs set.
	DefaultOwnerNeeds float64 `mapstructure:"default_owner_needs"`
}

// IngestPolicy limits statement imports.
type IngestPolicy struct {
	BulkLimit int `mapstructure:"bulk_limit"`
}

// RuleConfig converts the policy into the rule engine configuration.
func (p TaxPolicy) RuleConfig() taxengine.RuleConfig {
	return taxengine.RuleConfig{EntertainmentTurnover: p.Rules.EntertainmentTurnover}
}

func setPolicyDefaults(v *viper.Viper) {
	v.SetDefault("rules.entertainment_turnover", taxengine.DefaultEntertainmentTurnover)
	v.SetDefault("savings.default_owner_needs", 0)
	v.SetDefault("ingest.bulk_limit", 1000)
}

// LoadTaxPolicy reads the tax policy from path. A missing file yields the
// defaults. TAX_ENTERTAINMENT_TURNOVER overrides the file.
func LoadTaxPolicy(path string) (*TaxPolicy, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setPolicyDefaults(v)

	if err := v.BindEnv("rules.entertainment_turnover", "TAX_ENTERTAINMENT_TURNOVER"); err != nil {
		return nil, fmt.Errorf("failed to bind policy env: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read tax policy: %w", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat tax policy: %w", err)
		}
	}

	var policy TaxPolicy
	if err := v.Unmarshal(&policy); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tax policy: %w", err)
	}

	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tax policy: %w", err)
	}
	return &policy, nil
}

// Validate checks the policy values.
func (p TaxPolicy) Validate() error {
	if p.Rules.EntertainmentTurnover <= 0 {
		return fmt.Errorf("rules.entertainment_turnover must be positive")
	}
	if p.Savings.DefaultOwnerNeeds < 0 {
		return fmt.Errorf("savings.default_owner_needs must not be negative")
	}
	if p.Ingest.BulkLimit <= 0 {
		return fmt.Errorf("ingest.bulk_limit must be positive")
	}
	return nil
}
