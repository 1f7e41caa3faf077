package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/rpgo/lifecastor/internal/domain"
)

// CSVFormatter writes the averaged yearly table, one row per year.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(batch *domain.BatchResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := append([]string{}, domain.Columns...)
	header = append(header, "Retired")
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, yr := range batch.Averaged {
		row := make([]string, 0, len(header))
		for _, col := range domain.Columns {
			if col == domain.ColumnAge {
				row = append(row, strconv.Itoa(yr.Age))
				continue
			}
			v, _ := yr.Amount(col)
			row = append(row, v.StringFixed(2))
		}
		row = append(row, strconv.FormatBool(yr.Retired))
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
