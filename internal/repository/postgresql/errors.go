package postgresql

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/apperror"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// classify marks connectivity failures as apperror.ErrStorageUnavailable so
// the transport can answer 503 instead of 500.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	var connErr *pgconn.ConnectError
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &connErr),
		errors.As(err, &netErr),
		pgconn.Timeout(err):
		return fmt.Errorf("%w: %w", apperror.ErrStorageUnavailable, err)
	}
	return err
}
