package sheets

import (
	"context"

	"finpanel/internal/analytics"
)

// Ports for outbound adapters.
type (
	// DashboardExporter writes a computed dashboard to a spreadsheet and
	// returns the range it updated.
	DashboardExporter interface {
		Export(ctx context.Context, d analytics.Dashboard) (string, error)
	}
)
