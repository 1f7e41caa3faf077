package calculation

import (
	"github.com/rpgo/lifecastor/internal/domain"
)

// SpousalBenefitAge is the age from which a non-earning spouse draws a spousal benefit.
const SpousalBenefitAge = 62

// RetirementBenefit returns the fixed annual benefit for a retirement age.
//
//	<=61  -> 0
//	62-66 -> 17016
//	67-69 -> 24984
//	>=70  -> 34092
func RetirementBenefit(retireAge int) (float64, error) {
	switch {
	case retireAge < 0:
		return 0, &ConfigurationError{Field: "age_to_retire", Value: retireAge, Reason: "no benefit defined for a negative age"}
	case retireAge <= 61:
		return 0, nil
	case retireAge <= 66:
		return 17016, nil
	case retireAge <= 69:
		return 24984, nil
	default:
		return 34092, nil
	}
}

// Earner produces one member's income stream.
type Earner struct {
	base        float64
	age         int
	yearsToWork int
	benefit     float64
	growth      domain.Distribution
	sampler     *Sampler
}

// NewEarner creates an earner from a household member.
func NewEarner(m domain.Member, growth domain.Distribution, sampler *Sampler) (*Earner, error) {
	benefit, err := RetirementBenefit(m.AgeToRetire)
	if err != nil {
		return nil, err
	}
	return &Earner{
		base:        m.Income,
		age:         m.Age,
		yearsToWork: m.YearsToWork(),
		benefit:     benefit,
		growth:      growth,
		sampler:     sampler,
	}, nil
}

// Benefit is the earner's own post-retirement benefit.
func (e *Earner) Benefit() float64 { return e.benefit }

// YearsToWork is the number of years before the earner retires.
func (e *Earner) YearsToWork() int { return e.yearsToWork }

// Total returns the earner's income for a simulation year. A growth rate is
// drawn every year but the salary only grows from year 1.
func (e *Earner) Total(year int) float64 {
	rate := e.sampler.SampleUpperBounded(e.growth.Mean, e.growth.StdDev)
	if year > 0 {
		e.base *= 1.0 + rate
	}
	if year < e.yearsToWork {
		return e.base
	}
	return e.benefit
}

// Income is the household income model.
type Income struct {
	primary   *Earner
	secondary *Earner

	spousalFactor   float64
	secondarySpouse bool // secondary has no income of its own
}

// NewIncome builds the household income model from the planning parameters.
func NewIncome(params *domain.PlanningParameters, sampler *Sampler) (*Income, error) {
	primary, err := NewEarner(params.Primary, params.IncomeGrowth, sampler)
	if err != nil {
		return nil, err
	}
	inc := &Income{primary: primary, spousalFactor: params.SpousalBenefitFactor}
	if params.Secondary != nil {
		inc.secondary, err = NewEarner(*params.Secondary, params.IncomeGrowth, sampler)
		if err != nil {
			return nil, err
		}
		inc.secondarySpouse = params.Secondary.Income == 0
	}
	return inc, nil
}

// Total returns the household income for a simulation year.
func (inc *Income) Total(year int) float64 {
	total := inc.primary.Total(year)
	if inc.secondary == nil {
		return total
	}
	secondary := inc.secondary.Total(year)
	if inc.secondarySpouse {
		secondary = 0
		if inc.secondary.age+year >= SpousalBenefitAge {
			secondary = inc.spousalFactor * inc.primary.benefit
		}
	}
	return total + secondary
}
