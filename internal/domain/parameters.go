package domain

// FilingStatus identifies the household's tax filing status.
type FilingStatus string

const (
	FilingSingle                  FilingStatus = "single"
	FilingMarriedSeparately       FilingStatus = "married_filing_separately"
	FilingMarriedJointly          FilingStatus = "married_filing_jointly"
	FilingHeadOfHousehold         FilingStatus = "head_of_household"
	FilingQualifyingWidow         FilingStatus = "qualifying_widow"
	filingQualifyingWidowMisspelt FilingStatus = "qualifying_window"
)

// Canonical folds accepted aliases onto their canonical status.
func (fs FilingStatus) Canonical() FilingStatus {
	if fs == filingQualifyingWidowMisspelt {
		return FilingQualifyingWidow
	}
	return fs
}

// SimulationMode selects how a negative leftover is funded from savings.
type SimulationMode string

const (
	// ModeSimple adds the leftover (positive or negative) straight to savings.
	ModeSimple SimulationMode = "simple"
	// ModeTaxedSavings treats cashed-out savings as additional taxable income.
	ModeTaxedSavings SimulationMode = "taxed_savings"
)

// BankruptcyPolicy decides what a run does after net worth first goes negative.
type BankruptcyPolicy string

const (
	// BankruptcyContinue keeps simulating to the end of the horizon.
	BankruptcyContinue BankruptcyPolicy = "continue"
	// BankruptcyHalt stops the run after the bankruptcy year is recorded.
	BankruptcyHalt BankruptcyPolicy = "halt"
)

// Distribution is a normal distribution described by its mean and standard deviation.
type Distribution struct {
	Mean   float64 `yaml:"mean" toml:"mean" json:"mean"`
	StdDev float64 `yaml:"sd" toml:"sd" json:"sd"`
}

// Member describes one household member.
type Member struct {
	Age            int     `yaml:"age" toml:"age" json:"age"`
	AgeToRetire    int     `yaml:"age_to_retire" toml:"age_to_retire" json:"age_to_retire"`
	LifeExpectancy int     `yaml:"life_expectancy" toml:"life_expectancy" json:"life_expectancy"`
	Income         float64 `yaml:"income" toml:"income" json:"income"`

	// Health cost curve: Base is a percentage scale on the fitted cost table,
	// Shift moves the age at which costs start (55 + Shift).
	HealthCostBase  float64 `yaml:"health_cost_base,omitempty" toml:"health_cost_base,omitempty" json:"health_cost_base,omitempty"`
	HealthCostShift int     `yaml:"health_cost_shift,omitempty" toml:"health_cost_shift,omitempty" json:"health_cost_shift,omitempty"`
}

// YearsToWork is the number of simulated years before retirement.
func (m Member) YearsToWork() int {
	if m.AgeToRetire > m.Age {
		return m.AgeToRetire - m.Age
	}
	return 0
}

// YearsToLive is the number of simulated years before life expectancy.
func (m Member) YearsToLive() int {
	return m.LifeExpectancy - m.Age
}

// PeriodicExpense is a fixed monthly cost active in calendar years (StartYear, EndYear].
type PeriodicExpense struct {
	Monthly   float64 `yaml:"monthly" toml:"monthly" json:"monthly"`
	StartYear int     `yaml:"start_year" toml:"start_year" json:"start_year"`
	EndYear   int     `yaml:"end_year" toml:"end_year" json:"end_year"`
}

// SimulationSettings controls the batch rather than the household.
type SimulationSettings struct {
	Runs       int              `yaml:"runs" toml:"runs" json:"runs"`
	SeedOffset int64            `yaml:"seed_offset" toml:"seed_offset" json:"seed_offset"`
	Mode       SimulationMode   `yaml:"mode,omitempty" toml:"mode,omitempty" json:"mode,omitempty"`
	Bankruptcy BankruptcyPolicy `yaml:"bankruptcy,omitempty" toml:"bankruptcy,omitempty" json:"bankruptcy,omitempty"`
	// StartYear anchors year 0 to a calendar year; 0 means the current year.
	StartYear int `yaml:"start_year,omitempty" toml:"start_year,omitempty" json:"start_year,omitempty"`
	Workers   int `yaml:"workers,omitempty" toml:"workers,omitempty" json:"workers,omitempty"`
}

// ChartSettings lists the result columns drawn on each chart.
type ChartSettings struct {
	Primary   []string `yaml:"primary,omitempty" toml:"primary,omitempty" json:"primary,omitempty"`
	Secondary []string `yaml:"secondary,omitempty" toml:"secondary,omitempty" json:"secondary,omitempty"`
}

// PlanningParameters is the immutable input shared by every run of a batch.
type PlanningParameters struct {
	FilingStatus FilingStatus `yaml:"filing_status" toml:"filing_status" json:"filing_status"`

	Primary              Member  `yaml:"primary" toml:"primary" json:"primary"`
	Secondary            *Member `yaml:"secondary,omitempty" toml:"secondary,omitempty" json:"secondary,omitempty"`
	SpousalBenefitFactor float64 `yaml:"spousal_benefit_factor,omitempty" toml:"spousal_benefit_factor,omitempty" json:"spousal_benefit_factor,omitempty"`

	IncomeGrowth Distribution `yaml:"income_growth" toml:"income_growth" json:"income_growth"`
	Expense      Distribution `yaml:"expense" toml:"expense" json:"expense"`
	Inflation    Distribution `yaml:"inflation" toml:"inflation" json:"inflation"`

	FirstTwoYearFactor         float64 `yaml:"first_two_year_factor" toml:"first_two_year_factor" json:"first_two_year_factor"`
	ExpenseAfterRetirement     float64 `yaml:"expense_after_retirement" toml:"expense_after_retirement" json:"expense_after_retirement"`
	ExpenseAfterLifeExpectancy float64 `yaml:"expense_after_life_expectancy" toml:"expense_after_life_expectancy" json:"expense_after_life_expectancy"`

	Savings       float64      `yaml:"savings" toml:"savings" json:"savings"`
	SavingsGrowth Distribution `yaml:"savings_growth" toml:"savings_growth" json:"savings_growth"`

	PeriodicExpense PeriodicExpense `yaml:"periodic_expense,omitempty" toml:"periodic_expense,omitempty" json:"periodic_expense,omitempty"`

	Simulation SimulationSettings `yaml:"simulation" toml:"simulation" json:"simulation"`
	Chart      ChartSettings      `yaml:"chart,omitempty" toml:"chart,omitempty" json:"chart,omitempty"`
}

// Members returns the household members, primary first.
func (p *PlanningParameters) Members() []Member {
	if p.Secondary == nil {
		return []Member{p.Primary}
	}
	return []Member{p.Primary, *p.Secondary}
}

// HorizonYears is the number of simulated years per run.
func (p *PlanningParameters) HorizonYears() int {
	return p.Primary.LifeExpectancy - p.Primary.Age + 1
}

// ApplyDefaults fills optional settings left empty by the loader.
func (p *PlanningParameters) ApplyDefaults() {
	p.FilingStatus = p.FilingStatus.Canonical()
	if p.Simulation.Mode == "" {
		p.Simulation.Mode = ModeSimple
	}
	if p.Simulation.Bankruptcy == "" {
		p.Simulation.Bankruptcy = BankruptcyContinue
	}
	// An omitted expense factor leaves the cost unscaled.
	for _, f := range []*float64{&p.FirstTwoYearFactor, &p.ExpenseAfterRetirement, &p.ExpenseAfterLifeExpectancy} {
		if *f == 0 {
			*f = 1
		}
	}
	if len(p.Chart.Primary) == 0 {
		p.Chart.Primary = []string{ColumnIncome, ColumnFederal, ColumnState, ColumnExpense, ColumnLeftover}
	}
	if len(p.Chart.Secondary) == 0 {
		p.Chart.Secondary = []string{ColumnNetWorth}
	}
}
