package employee

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProfileIsEmployedOn(t *testing.T) {
	resigned := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	p := Profile{
		EmploymentStatus: EmploymentStatusActive,
		HireDate:         time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		ResignationDate:  &resigned,
	}

	assert.False(t, p.IsEmployedOn(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)))
	assert.True(t, p.IsEmployedOn(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, p.IsEmployedOn(resigned))
	assert.False(t, p.IsEmployedOn(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)))

	p.EmploymentStatus = EmploymentStatusInactive
	assert.False(t, p.IsEmployedOn(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
}
