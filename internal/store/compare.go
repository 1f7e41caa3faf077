package store

import (
	money "github.com/rpgo/lifecastor/pkg/decimal"
	"github.com/shopspring/decimal"
)

// YearDelta compares the averaged net worth of two batches at one year index.
type YearDelta struct {
	Age       int
	NetWorthA decimal.Decimal
	NetWorthB decimal.Decimal
	Delta     decimal.Decimal
}

// Comparison is the difference B minus A between two stored batches.
type Comparison struct {
	A, B BatchInfo

	ProbabilityDelta float64
	TerminalDelta    decimal.Decimal
	// Years covers the year indexes present in both batches.
	Years []YearDelta
}

// Compare loads two batches and reports how b differs from a.
func (s *Store) Compare(a, b string) (*Comparison, error) {
	infoA, err := s.info(a)
	if err != nil {
		return nil, err
	}
	infoB, err := s.info(b)
	if err != nil {
		return nil, err
	}
	batchA, err := s.LoadBatch(a)
	if err != nil {
		return nil, err
	}
	batchB, err := s.LoadBatch(b)
	if err != nil {
		return nil, err
	}

	cmp := &Comparison{
		A:                infoA,
		B:                infoB,
		ProbabilityDelta: infoB.BankruptcyProbability - infoA.BankruptcyProbability,
		TerminalDelta:    moneyDelta(infoA.TerminalNetWorth, infoB.TerminalNetWorth),
	}
	n := min(len(batchA.Averaged), len(batchB.Averaged))
	for i := 0; i < n; i++ {
		ya, yb := batchA.Averaged[i], batchB.Averaged[i]
		cmp.Years = append(cmp.Years, YearDelta{
			Age:       ya.Age,
			NetWorthA: ya.NetWorth,
			NetWorthB: yb.NetWorth,
			Delta:     moneyDelta(ya.NetWorth, yb.NetWorth),
		})
	}
	return cmp, nil
}

// moneyDelta is b minus a to the cent.
func moneyDelta(a, b decimal.Decimal) decimal.Decimal {
	return money.NewMoneyFromDecimal(b).Sub(money.NewMoneyFromDecimal(a)).Round().Decimal
}
