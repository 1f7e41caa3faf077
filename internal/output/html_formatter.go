package output

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/rpgo/lifecastor/internal/domain"
)

// HTMLFormatter produces a standalone report with the summary figures and
// both configured charts.
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

// chartSeries is one Chart.js dataset.
type chartSeries struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

type chartData struct {
	ID     string
	Title  string
	Labels []int
	Series []chartSeries
}

// seriesFor extracts the named columns of the averaged table. Unknown column
// names are skipped.
func seriesFor(batch *domain.BatchResult, id, title string, columns []string) chartData {
	cd := chartData{ID: id, Title: title, Labels: make([]int, len(batch.Averaged))}
	for i, yr := range batch.Averaged {
		cd.Labels[i] = yr.Age
	}
	for _, col := range columns {
		if col == domain.ColumnAge {
			continue
		}
		if _, ok := (domain.YearRecord{}).Value(col); !ok {
			continue
		}
		s := chartSeries{Label: col, Data: make([]float64, len(batch.Averaged))}
		for i, yr := range batch.Averaged {
			s.Data[i], _ = yr.Value(col)
		}
		cd.Series = append(cd.Series, s)
	}
	return cd
}

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"curr":  FormatWholeCurrency,
	"pct":   FormatPercentage,
	"deref": func(f *float64) float64 { return *f },
	"json": func(v any) (template.JS, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return template.JS(b), nil
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background: #f5f7fa; color: #2c3e50; margin: 0; padding: 20px; }
        .container { max-width: 1200px; margin: 0 auto; }
        .header { background: #100F0F; color: #FFFCF0; padding: 24px; border-radius: 10px; text-align: center; }
        .summary { display: grid; grid-template-columns: repeat(auto-fit, minmax(220px, 1fr)); gap: 16px; margin: 20px 0; }
        .card { background: white; padding: 16px; border-radius: 10px; box-shadow: 0 2px 8px rgba(0,0,0,0.08); }
        .card .label { font-size: 0.85em; color: #6F6E69; text-transform: uppercase; }
        .card .value { font-size: 1.5em; font-weight: bold; color: #3AA99F; }
        .card .value.alert { color: #D14D41; }
        .chart-container { background: white; padding: 20px; border-radius: 10px; box-shadow: 0 2px 8px rgba(0,0,0,0.08); margin-bottom: 20px; }
        .chart-container h3 { margin-top: 0; }
        .hint { font-size: 0.85em; color: #6F6E69; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h1>{{.Title}}</h1>
        <p>{{.Batch.RunCount}} runs, {{.Batch.Parameters.Simulation.Mode}} mode, generated {{.Batch.GeneratedAt.Format "2006-01-02 15:04"}}</p>
    </div>
    {{if .ShowSummary}}
    <div class="summary">
        <div class="card"><div class="label">Bankrupt probability</div><div class="value{{if gt .Batch.BankruptCount 0}} alert{{end}}">{{pct .Batch.BankruptcyProbability}}</div></div>
        {{with .Batch.AverageBankruptcyAge}}<div class="card"><div class="label">Average bankrupt age</div><div class="value alert">{{printf "%.1f" (deref .)}}</div></div>{{end}}
        <div class="card"><div class="label">Average horizon wealth</div><div class="value">{{curr .Batch.TerminalNetWorth}}</div></div>
        <div class="card"><div class="label">P10 / P50 / P90 horizon wealth</div><div class="value">{{curr .Batch.TerminalPercentiles.P10}} / {{curr .Batch.TerminalPercentiles.P50}} / {{curr .Batch.TerminalPercentiles.P90}}</div></div>
    </div>
    {{end}}
    {{range .Charts}}
    <div class="chart-container">
        <h3>{{.Title}}</h3>
        <p class="hint">Click a legend entry to show or hide that column.</p>
        <canvas id="{{.ID}}" width="800" height="400"></canvas>
    </div>
    {{end}}
</div>
<script>
    Chart.defaults.font.family = "'Segoe UI', Tahoma, Geneva, Verdana, sans-serif";
    Chart.defaults.color = '#2c3e50';
    const palette = ['#3AA99F', '#D14D41', '#879A39', '#DA702C', '#4385BE', '#8B7EC8', '#CE5D97', '#D0A215'];
    {{range $i, $c := .Charts}}
    new Chart(document.getElementById({{$c.ID}}).getContext('2d'), {
        type: 'line',
        data: {
            labels: {{json $c.Labels}},
            datasets: {{json $c.Series}}.map((s, j) => Object.assign(s, {
                borderColor: palette[j % palette.length],
                backgroundColor: palette[j % palette.length],
                pointRadius: 0,
                tension: 0.2
            }))
        },
        options: {
            responsive: true,
            interaction: { mode: 'index', intersect: false },
            scales: {
                x: { title: { display: true, text: 'Age' } },
                y: { ticks: { callback: v => '$' + v.toLocaleString() } }
            }
        }
    });
    {{end}}
</script>
</body>
</html>
`))

type htmlPage struct {
	Title       string
	Batch       *domain.BatchResult
	ShowSummary bool
	Charts      []chartData
}

func renderPage(page htmlPage) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("failed to render HTML: %w", err)
	}
	return buf.Bytes(), nil
}

func (h HTMLFormatter) Format(batch *domain.BatchResult) ([]byte, error) {
	chart := batch.Parameters.Chart
	return renderPage(htmlPage{
		Title:       "Lifecastor Household Forecast",
		Batch:       batch,
		ShowSummary: true,
		Charts: []chartData{
			seriesFor(batch, "primaryChart", "Cash flow (average across runs)", chart.Primary),
			seriesFor(batch, "secondaryChart", "Net worth (average across runs)", chart.Secondary),
		},
	})
}

// ChartPage renders a single chart of the given columns.
func ChartPage(batch *domain.BatchResult, title string, columns []string) ([]byte, error) {
	return renderPage(htmlPage{
		Title:  title,
		Batch:  batch,
		Charts: []chartData{seriesFor(batch, "chart", title, columns)},
	})
}

// WriteCharts writes the two standalone chart pages into dir: every column
// except net worth, and net worth on its own. It returns the written paths.
func WriteCharts(batch *domain.BatchResult, dir string) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var flows []string
	for _, col := range domain.Columns {
		if col != domain.ColumnAge && col != domain.ColumnNetWorth {
			flows = append(flows, col)
		}
	}
	pages := []struct {
		file    string
		title   string
		columns []string
	}{
		{"lifecastor_chart_cashflow.html", "Cash flow", flows},
		{"lifecastor_chart_networth.html", "Net worth", []string{domain.ColumnNetWorth}},
	}

	paths := make([]string, 0, len(pages))
	for _, p := range pages {
		data, err := ChartPage(batch, p.title, p.columns)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(dir, p.file)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("failed to write chart %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
