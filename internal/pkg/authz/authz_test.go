package authz

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequire(t *testing.T) {
	tests := []struct {
		name       string
		ctx        context.Context
		permission user.Permission
		wantErr    bool
	}{
		{
			name:       "missing principal",
			ctx:        context.Background(),
			permission: user.PermissionAttendanceCreate,
			wantErr:    true,
		},
		{
			name:       "employee cannot adjust",
			ctx:        user.WithPrincipal(context.Background(), user.Principal{EmployeeID: "e1", Role: user.RoleEmployee}),
			permission: user.PermissionAttendanceAdjust,
			wantErr:    true,
		},
		{
			name:       "manager can approve leave",
			ctx:        user.WithPrincipal(context.Background(), user.Principal{EmployeeID: "m1", Role: user.RoleManager}),
			permission: user.PermissionLeaveApprove,
		},
		{
			name:       "system actor can adjust",
			ctx:        user.SystemContext(context.Background()),
			permission: user.PermissionAttendanceAdjust,
		},
		{
			name:       "pending role has nothing",
			ctx:        user.WithPrincipal(context.Background(), user.Principal{EmployeeID: "p1", Role: user.RolePending}),
			permission: user.PermissionAttendanceCreate,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Require(tt.ctx, tt.permission)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperror.ErrForbidden)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, p.EmployeeID)
		})
	}
}

func TestRequireSelfOr(t *testing.T) {
	ctx := user.WithPrincipal(context.Background(), user.Principal{EmployeeID: "e1", Role: user.RoleEmployee})

	_, err := RequireSelfOr(ctx, "e1", user.PermissionAttendanceViewAll)
	assert.NoError(t, err)

	_, err = RequireSelfOr(ctx, "e2", user.PermissionAttendanceViewAll)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}
