package adjustment

import "context"

type AdjustmentService interface {
	// RecordAdjustment corrects an attendance record and appends the audit
	// entry in one transaction.
	RecordAdjustment(ctx context.Context, req RecordAdjustmentRequest) (AdjustmentResponse, error)

	// ListAdjustments returns the audit trail of a record, oldest first.
	ListAdjustments(ctx context.Context, attendanceID string) ([]AdjustmentResponse, error)
}
