package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"
	"github.com/rpgo/lifecastor/internal/calculation"
	"github.com/rpgo/lifecastor/internal/domain"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of planning parameter files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads planning parameters from a YAML, TOML or JSON file.
// The format is chosen by extension; anything unrecognised is read as YAML.
func (ip *InputParser) LoadFromFile(filename string) (*domain.PlanningParameters, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	params, err := ip.Parse(data, formatOf(filename))
	if err != nil {
		return nil, err
	}
	return params, nil
}

// Parse decodes, defaults and validates planning parameters.
func (ip *InputParser) Parse(data []byte, format string) (*domain.PlanningParameters, error) {
	var params domain.PlanningParameters
	switch format {
	case "toml":
		if _, err := toml.Decode(string(data), &params); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&params); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &params); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	params.ApplyDefaults()
	if err := ip.ValidateParameters(&params); err != nil {
		return nil, fmt.Errorf("parameter validation failed: %w", err)
	}
	return &params, nil
}

func formatOf(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		return "toml"
	case ".json":
		return "json"
	default:
		return "yaml"
	}
}

func invalid(field string, value any, reason string) error {
	return &calculation.ConfigurationError{Field: field, Value: value, Reason: reason}
}

// ValidateParameters rejects parameters the engine cannot simulate.
func (ip *InputParser) ValidateParameters(p *domain.PlanningParameters) error {
	if _, err := calculation.NewTax(p.FilingStatus); err != nil {
		return err
	}

	if err := ip.validateMember("primary", &p.Primary); err != nil {
		return err
	}
	if p.Secondary != nil {
		if err := ip.validateMember("secondary", p.Secondary); err != nil {
			return err
		}
	}
	if p.SpousalBenefitFactor < 0 {
		return invalid("spousal_benefit_factor", p.SpousalBenefitFactor, "cannot be negative")
	}

	for name, d := range map[string]domain.Distribution{
		"income_growth":  p.IncomeGrowth,
		"expense":        p.Expense,
		"inflation":      p.Inflation,
		"savings_growth": p.SavingsGrowth,
	} {
		if d.StdDev < 0 {
			return invalid(name+".sd", d.StdDev, "standard deviation cannot be negative")
		}
	}
	if p.Expense.Mean < 0 {
		return invalid("expense.mean", p.Expense.Mean, "cannot be negative")
	}
	if p.Inflation.Mean <= -1 {
		return invalid("inflation.mean", p.Inflation.Mean, "must be greater than -100%")
	}

	for name, f := range map[string]float64{
		"first_two_year_factor":         p.FirstTwoYearFactor,
		"expense_after_retirement":      p.ExpenseAfterRetirement,
		"expense_after_life_expectancy": p.ExpenseAfterLifeExpectancy,
	} {
		if f < 0 {
			return invalid(name, f, "factor cannot be negative")
		}
	}

	if pe := p.PeriodicExpense; pe.Monthly != 0 {
		if pe.Monthly < 0 {
			return invalid("periodic_expense.monthly", pe.Monthly, "cannot be negative")
		}
		if pe.EndYear < pe.StartYear {
			return invalid("periodic_expense.end_year", pe.EndYear, "before start_year")
		}
	}

	return ip.validateSimulation(&p.Simulation)
}

func (ip *InputParser) validateMember(name string, m *domain.Member) error {
	if m.Age < 0 {
		return invalid(name+".age", m.Age, "cannot be negative")
	}
	if m.AgeToRetire < 0 {
		return invalid(name+".age_to_retire", m.AgeToRetire, "cannot be negative")
	}
	if m.LifeExpectancy < m.Age {
		return invalid(name+".life_expectancy", m.LifeExpectancy, "must be at least the current age")
	}
	if m.Income < 0 {
		return invalid(name+".income", m.Income, "cannot be negative")
	}
	if m.HealthCostBase < 0 {
		return invalid(name+".health_cost_base", m.HealthCostBase, "cannot be negative")
	}
	return nil
}

func (ip *InputParser) validateSimulation(s *domain.SimulationSettings) error {
	if s.Runs <= 0 {
		return invalid("simulation.runs", s.Runs, "must be positive")
	}
	if s.Workers < 0 {
		return invalid("simulation.workers", s.Workers, "cannot be negative")
	}
	switch s.Mode {
	case domain.ModeSimple, domain.ModeTaxedSavings:
	default:
		return invalid("simulation.mode", s.Mode, "must be 'simple' or 'taxed_savings'")
	}
	switch s.Bankruptcy {
	case domain.BankruptcyContinue, domain.BankruptcyHalt:
	default:
		return invalid("simulation.bankruptcy", s.Bankruptcy, "must be 'continue' or 'halt'")
	}
	return nil
}

// CreateExampleParameters returns a sample two-member household plan.
func (ip *InputParser) CreateExampleParameters() *domain.PlanningParameters {
	p := &domain.PlanningParameters{
		FilingStatus: domain.FilingMarriedJointly,
		Primary: domain.Member{
			Age:            45,
			AgeToRetire:    67,
			LifeExpectancy: 90,
			Income:         95000,
			HealthCostBase: 100,
		},
		Secondary: &domain.Member{
			Age:             43,
			AgeToRetire:     65,
			LifeExpectancy:  92,
			Income:          42000,
			HealthCostBase:  100,
			HealthCostShift: 0,
		},
		SpousalBenefitFactor:       0.5,
		IncomeGrowth:               domain.Distribution{Mean: 0.03, StdDev: 0.02},
		Expense:                    domain.Distribution{Mean: 70000, StdDev: 7000},
		Inflation:                  domain.Distribution{Mean: 0.025, StdDev: 0.01},
		FirstTwoYearFactor:         1.1,
		ExpenseAfterRetirement:     0.8,
		ExpenseAfterLifeExpectancy: 0.7,
		Savings:                    350000,
		SavingsGrowth:              domain.Distribution{Mean: 0.05, StdDev: 0.1},
		PeriodicExpense: domain.PeriodicExpense{
			Monthly:   1800,
			StartYear: 2024,
			EndYear:   2039,
		},
		Simulation: domain.SimulationSettings{
			Runs:       1000,
			SeedOffset: 0,
			Mode:       domain.ModeSimple,
			Bankruptcy: domain.BankruptcyContinue,
		},
	}
	p.ApplyDefaults()
	return p
}

// SaveParameters writes parameters to filename in the format its extension names.
func (ip *InputParser) SaveParameters(p *domain.PlanningParameters, filename string) error {
	var buf bytes.Buffer
	switch formatOf(filename) {
	case "toml":
		if err := toml.NewEncoder(&buf).Encode(p); err != nil {
			return fmt.Errorf("failed to encode TOML: %w", err)
		}
	case "json":
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
	default:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(filename, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filename, err)
	}
	return nil
}
