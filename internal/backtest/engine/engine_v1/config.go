package engine

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/plantrade/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/plantrade/pkg/errors"
	"github.com/rxtech-lab/plantrade/pkg/marketdata"
)

// Config is the engine configuration. Each simulated day restarts from
// InitialCapital; equity does not carry over between days.
type Config struct {
	InitialCapital float64 `yaml:"initial_capital" json:"initial_capital" jsonschema:"title=Initial Capital,description=Starting capital for each simulated day in USD,minimum=0"`
	Broker         commission_fee.Broker `yaml:"broker" json:"broker" jsonschema:"title=Broker,description=The broker to use for commission calculations"`
	// DecimalPrecision controls quantity rounding; 0 means whole units.
	DecimalPrecision int `yaml:"decimal_precision" json:"decimal_precision" jsonschema:"title=Decimal Precision,description=Decimal places kept when rounding order quantities,minimum=0"`
	// Interval is the bar interval requested from the data provider.
	Interval marketdata.Interval `yaml:"interval" json:"interval" jsonschema:"title=Interval,description=Bar interval requested from the market data provider"`
	// WarmupDays is the number of calendar days of history fetched before
	// each trade date so indicator warm-up windows are covered.
	WarmupDays int `yaml:"warmup_days" json:"warmup_days" jsonschema:"title=Warmup Days,description=Calendar days of history fetched before each trade date,minimum=0"`
}

// Validate checks the configuration before a run.
func (c *Config) Validate() error {
	if c.InitialCapital <= 0 {
		return errors.New(errors.ErrCodeBacktestConfigError, "initial_capital must be positive")
	}

	if c.DecimalPrecision < 0 {
		return errors.New(errors.ErrCodeBacktestConfigError, "decimal_precision must not be negative")
	}

	return nil
}

// GenerateSchema generates a JSON schema for the engine config.
func (c *Config) GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if strings.Contains(t.String(), "commission_fee.Broker") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: commission_fee.AllBrokers,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)
	schema.Title = "plan-backtest-engine-config"
	schema.Description = "Configuration schema for the plan backtest engine"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON generates a JSON schema string for the engine config.
func (c *Config) GenerateSchemaJSON() (string, error) {
	schemaBytes, err := json.MarshalIndent(c.GenerateSchema(), "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// DefaultConfig returns a Config with working defaults.
func DefaultConfig() Config {
	return Config{
		InitialCapital:   10000,
		Broker:           commission_fee.BrokerZero,
		DecimalPrecision: 0,
		Interval:         marketdata.IntervalHour,
		WarmupDays:       10,
	}
}

// TestConfig returns a deterministic config for tests.
func TestConfig() Config {
	cfg := DefaultConfig()
	cfg.Broker = commission_fee.BrokerZero

	return cfg
}
