package report

import "errors"

var (
	ErrInvalidDateRange = errors.New("end date must not be before start date")
	ErrRangeTooLong     = errors.New("date range must not exceed 366 days")
)
