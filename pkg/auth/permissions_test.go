package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usecasehq/usecase-engine/pkg/apperrors"
	"github.com/usecasehq/usecase-engine/pkg/models"
)

func userWithRole(role string) *models.User {
	return &models.User{ID: 1, Email: "test@example.com", Role: role}
}

func TestCheckPermission_Grid(t *testing.T) {
	reader := userWithRole(models.RoleReader)
	maintainer := userWithRole(models.RoleMaintainer)
	admin := userWithRole(models.RoleAdmin)

	tests := []struct {
		action     string
		reader     bool
		maintainer bool
		admin      bool
	}{
		{ActionRead, true, true, true},
		{ActionWrite, false, true, true},
		{ActionCreate, false, true, true},
		{ActionEdit, false, true, true},
		{ActionUpdate, false, true, true},
		{ActionDelete, false, false, true},
		{ActionArchive, false, false, true},
		{ActionManageUsers, false, false, true},
		{ActionCreateUser, false, false, true},
		{ActionDeleteUser, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			assert.Equal(t, tt.reader, CheckPermission(reader, tt.action), "reader")
			assert.Equal(t, tt.maintainer, CheckPermission(maintainer, tt.action), "maintainer")
			assert.Equal(t, tt.admin, CheckPermission(admin, tt.action), "admin")
		})
	}
}

func TestCheckPermission_NilUserDeniesEverything(t *testing.T) {
	for _, action := range []string{
		ActionRead, ActionWrite, ActionCreate, ActionEdit, ActionUpdate,
		ActionDelete, ActionArchive, ActionManageUsers, ActionCreateUser, ActionDeleteUser,
	} {
		assert.False(t, CheckPermission(nil, action), action)
	}
}

func TestCheckPermission_UnknownActionDenied(t *testing.T) {
	admin := userWithRole(models.RoleAdmin)
	assert.False(t, CheckPermission(admin, "drop_tables"))
	assert.False(t, CheckPermission(admin, ""))
}

func TestCheckPermission_UnknownRoleDenied(t *testing.T) {
	intern := userWithRole("intern")
	assert.False(t, CheckPermission(intern, ActionRead))
	assert.False(t, CheckPermission(intern, ActionWrite))
}

func TestRequirePermission_Unauthenticated(t *testing.T) {
	err := RequirePermission(nil, ActionRead)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
	assert.Equal(t, "you must be logged in to perform this action", err.Error())
}

func TestRequirePermission_DeniedMessageNamesRoleAndAction(t *testing.T) {
	err := RequirePermission(userWithRole(models.RoleReader), ActionDelete)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
	assert.Contains(t, err.Error(), "reader")
	assert.Contains(t, err.Error(), "delete")
	assert.Contains(t, err.Error(), "admin")
}

func TestRequirePermission_Allowed(t *testing.T) {
	require.NoError(t, RequirePermission(userWithRole(models.RoleReader), ActionRead))
	require.NoError(t, RequirePermission(userWithRole(models.RoleMaintainer), ActionUpdate))
	require.NoError(t, RequirePermission(userWithRole(models.RoleAdmin), ActionDeleteUser))
}
