package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"ledgerdesk/internal/domain"
)

// Config models ledgerdesk.yml.
type Config struct {
	Workspace struct {
		Currency string `yaml:"currency"`
	} `yaml:"workspace"`
	Tax struct {
		Rate string `yaml:"rate"`
	} `yaml:"tax"`
	Rounding struct {
		Places int32 `yaml:"places"`
	} `yaml:"rounding"`
	Depreciation struct {
		DefaultMethod string `yaml:"default_method"`
		MaxLifeYears  int    `yaml:"max_life_years"`
	} `yaml:"depreciation"`
	Validation struct {
		// Required maps workflow kind -> wizard step -> field identifiers the
		// advisory gate reports on.
		Required map[string]map[string][]string `yaml:"required"`
	} `yaml:"validation"`
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	rate, err := decimal.NewFromString(c.Tax.Rate)
	if err != nil {
		return fmt.Errorf("config.tax.rate %q is not a decimal", c.Tax.Rate)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("config.tax.rate must be in [0,1)")
	}
	if c.Rounding.Places < 0 || c.Rounding.Places > 6 {
		return fmt.Errorf("config.rounding.places must be in [0,6]")
	}
	if !domain.ValidMethod(domain.Method(c.Depreciation.DefaultMethod)) {
		return fmt.Errorf("config.depreciation.default_method %q unknown", c.Depreciation.DefaultMethod)
	}
	if c.Depreciation.MaxLifeYears < 1 {
		return fmt.Errorf("config.depreciation.max_life_years must be >= 1")
	}
	if c.Validation.Required == nil {
		return fmt.Errorf("config.validation.required is required")
	}
	for kind, steps := range c.Validation.Required {
		if !domain.ValidKind(domain.Kind(kind)) {
			return fmt.Errorf("config.validation.required has unknown kind %s", kind)
		}
		for step, fields := range steps {
			if domain.StepIndex(domain.Step(step)) < 0 {
				return fmt.Errorf("kind %s has unknown step %s", kind, step)
			}
			for _, f := range fields {
				if f == "" {
					return fmt.Errorf("kind %s step %s has empty field id", kind, step)
				}
			}
		}
	}
	return nil
}

// TaxRate returns the parsed fixed tax rate. Validate must have passed.
func (c *Config) TaxRate() decimal.Decimal {
	rate, err := decimal.NewFromString(c.Tax.Rate)
	if err != nil {
		return decimal.Zero
	}
	return rate
}

// RequiredFields returns the field identifiers the gate checks for one kind
// and step.
func (c *Config) RequiredFields(kind domain.Kind, step domain.Step) []string {
	steps, ok := c.Validation.Required[string(kind)]
	if !ok {
		return nil
	}
	return steps[string(step)]
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "ledgerdesk.yml")
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create with ld config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns nil,nil if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Default returns the default Config struct.
func Default() *Config {
	var cfg Config
	_ = yaml.Unmarshal([]byte(defaultTemplate), &cfg)
	return &cfg
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `workspace:
  currency: USD

tax:
  rate: "0.08"

rounding:
  places: 2

depreciation:
  default_method: straight_line
  max_life_years: 50

validation:
  required:
    asset:
      basic: [name, category]
      detail: [cost, useful_life, method]
      assignment: [location, custodian]
      review: []

    payroll:
      basic: [run_name, period_start, period_end]
      detail: [items]
      assignment: [pay_date, approver]
      review: []

    procurement:
      basic: [department, order_date]
      detail: [items]
      assignment: [vendor, required_date]
      review: []
`
