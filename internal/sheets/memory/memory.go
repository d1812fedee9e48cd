package memory

import (
	"context"
	"fmt"
	"sync"

	"finpanel/internal/analytics"
	"finpanel/internal/sheets"
)

// Export is one recorded call to Exporter.Export.
type Export struct {
	Range  string
	Period string
	Rows   [][]any
}

// Exporter keeps exported rows in memory. It backs dry runs and tests.
type Exporter struct {
	mu      sync.Mutex
	sheet   string
	exports []Export
}

var _ sheets.DashboardExporter = (*Exporter)(nil)

func New(sheet string) *Exporter {
	if sheet == "" {
		sheet = "Dashboard"
	}
	return &Exporter{sheet: sheet}
}

// Export records the rows the dashboard would be written as.
func (e *Exporter) Export(_ context.Context, d analytics.Dashboard) (string, error) {
	rows := sheets.Rows(d)
	rng := fmt.Sprintf("mem:%s!A1:%d", e.sheet, len(rows))

	e.mu.Lock()
	defer e.mu.Unlock()
	e.exports = append(e.exports, Export{Range: rng, Period: d.Period, Rows: rows})
	return rng, nil
}

// Exports returns every recorded export, oldest first.
func (e *Exporter) Exports() []Export {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Export(nil), e.exports...)
}

// Last returns the most recent export.
func (e *Exporter) Last() (Export, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.exports) == 0 {
		return Export{}, false
	}
	return e.exports[len(e.exports)-1], true
}
