package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const profileColumns = `
	id, employee_code, full_name, department, employment_status,
	base_salary, hire_date, resignation_date`

type profileRepositoryImpl struct {
	db *database.DB
}

func NewProfileRepository(db *database.DB) employee.ProfileRepository {
	return &profileRepositoryImpl{db: db}
}

func scanProfile(row pgx.Row) (employee.Profile, error) {
	var p employee.Profile
	err := row.Scan(
		&p.ID, &p.EmployeeCode, &p.FullName, &p.Department, &p.EmploymentStatus,
		&p.BaseSalary, &p.HireDate, &p.ResignationDate,
	)
	return p, err
}

func collectProfiles(rows pgx.Rows) ([]employee.Profile, error) {
	defer rows.Close()

	profiles := make([]employee.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("failed to iterate employee profiles: %w", err))
	}
	return profiles, nil
}

// GetByID implements employee.ProfileRepository.
func (e *profileRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Profile, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + profileColumns + ` FROM employees WHERE id = $1 AND deleted_at IS NULL`
	p, err := scanProfile(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Profile{}, employee.ErrEmployeeNotFound
		}
		return employee.Profile{}, classify(fmt.Errorf("failed to get employee profile with id %s: %w", id, err))
	}
	return p, nil
}

// GetByIDs implements employee.ProfileRepository.
func (e *profileRepositoryImpl) GetByIDs(ctx context.Context, ids []string) (map[string]employee.Profile, error) {
	profiles := make(map[string]employee.Profile, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}

	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + profileColumns + ` FROM employees WHERE id = ANY($1) AND deleted_at IS NULL`
	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to get employee profiles: %w", err))
	}
	found, err := collectProfiles(rows)
	if err != nil {
		return nil, err
	}
	for _, p := range found {
		profiles[p.ID] = p
	}
	return profiles, nil
}

// ListEmployedOn implements employee.ProfileRepository.
func (e *profileRepositoryImpl) ListEmployedOn(ctx context.Context, date time.Time) ([]employee.Profile, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT ` + profileColumns + `
		FROM employees
		WHERE employment_status = $1
		  AND hire_date <= $2
		  AND (resignation_date IS NULL OR resignation_date >= $2)
		  AND deleted_at IS NULL
		ORDER BY id`

	rows, err := q.Query(ctx, query, employee.EmploymentStatusActive, date)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to list employed profiles: %w", err))
	}
	return collectProfiles(rows)
}
