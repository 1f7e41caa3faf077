package output

import (
	"github.com/goccy/go-json"

	"github.com/rpgo/lifecastor/internal/domain"
)

// JSONFormatter serializes the batch summary as pretty-printed JSON.
// Individual runs are left out; the HTTP API returns them on request.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(batch *domain.BatchResult) ([]byte, error) {
	return json.MarshalIndent(batch.Summary(), "", "  ")
}
