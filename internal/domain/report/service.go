package report

import "context"

// ReportService defines the interface for report generation
type ReportService interface {
	// Summarize returns daily counts and per-employee rollups for a range
	Summarize(ctx context.Context, req SummaryRequest) (SummaryResponse, error)

	// Aggregate is the raw aggregation used by downstream calculators
	Aggregate(ctx context.Context, period Period, employeeID *string) (Summary, error)
}
