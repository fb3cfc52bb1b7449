package postgresql

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
)

//go:embed schema.sql
var schema string

// Migrate creates the tables used by the repositories if they do not exist.
func Migrate(ctx context.Context, db *database.DB) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return classify(fmt.Errorf("failed to apply schema: %w", err))
	}
	return nil
}
