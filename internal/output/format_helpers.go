package output

import (
	"fmt"
	"strconv"

	"github.com/rpgo/lifecastor/internal/domain"
	money "github.com/rpgo/lifecastor/pkg/decimal"
	"github.com/shopspring/decimal"
)

// FormatCurrency formats an amount as USD with cents and thousands separators.
func FormatCurrency(amount decimal.Decimal) string { return money.NewMoneyFromDecimal(amount).Format() }

// FormatWholeCurrency formats an amount as whole dollars with thousands separators.
func FormatWholeCurrency(amount decimal.Decimal) string {
	return money.NewMoneyFromDecimal(amount).FormatWhole()
}

// FormatAmount formats an amount as a grouped whole number for table cells.
func FormatAmount(amount decimal.Decimal) string { return money.NewMoneyFromDecimal(amount).Grouped() }

// FormatPercentage formats a fraction (0.125) as a percentage ("12.50%").
func FormatPercentage(fraction float64) string { return fmt.Sprintf("%.2f%%", fraction*100) }

func cell(column string, yr domain.YearRecord) string {
	if column == domain.ColumnAge {
		return strconv.Itoa(yr.Age)
	}
	v, _ := yr.Amount(column)
	return FormatAmount(v)
}

// SummaryLines returns the batch headline figures. The bankruptcy age line is
// present only when at least one run went bankrupt.
func SummaryLines(batch *domain.BatchResult) []string {
	lines := []string{
		fmt.Sprintf("Bankrupt probability: %.1f%%", batch.BankruptcyProbability*100),
	}
	if batch.AverageBankruptcyAge != nil {
		lines = append(lines, fmt.Sprintf("Average bankrupt age: %.1f", *batch.AverageBankruptcyAge))
	}
	lines = append(lines, fmt.Sprintf("Average horizon wealth: %s", FormatWholeCurrency(batch.TerminalNetWorth)))
	return lines
}
