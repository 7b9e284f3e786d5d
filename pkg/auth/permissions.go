// Package auth provides role-based permission checks and acting-user
// context helpers. Every data access layer operation consults
// RequirePermission as its first statement; the checks are not optional
// middleware and are never trusted to the language model.
package auth

import (
	"github.com/usecasehq/usecase-engine/pkg/apperrors"
	"github.com/usecasehq/usecase-engine/pkg/models"
)

// Action tags recognized by the permission checker. Actions are lower-cased
// semantic tags; anything outside this set is denied for every role.
const (
	ActionRead        = "read"
	ActionWrite       = "write"
	ActionCreate      = "create"
	ActionEdit        = "edit"
	ActionUpdate      = "update"
	ActionDelete      = "delete"
	ActionArchive     = "archive"
	ActionManageUsers = "manage_users"
	ActionCreateUser  = "create_user"
	ActionDeleteUser  = "delete_user"
)

// CheckPermission reports whether the user may perform the action.
//
// Role permissions:
//
//	reader      read only
//	maintainer  read, create, edit, update
//	admin       full access (plus delete, archive, user management)
//
// A nil user (not authenticated) is denied every action, including read.
// Unknown actions are denied for everybody.
func CheckPermission(user *models.User, action string) bool {
	if user == nil {
		return false
	}

	switch action {
	case ActionRead:
		return true
	case ActionWrite, ActionCreate, ActionEdit, ActionUpdate:
		return user.Role == models.RoleMaintainer || user.Role == models.RoleAdmin
	case ActionDelete, ActionArchive:
		return user.Role == models.RoleAdmin
	case ActionManageUsers, ActionCreateUser, ActionDeleteUser:
		return user.Role == models.RoleAdmin
	default:
		return false
	}
}

// RequirePermission returns a PermissionDeniedError if the user may not
// perform the action. The error message names the action and the minimum
// role and is suitable for direct surfacing to the end user.
func RequirePermission(user *models.User, action string) error {
	if CheckPermission(user, action) {
		return nil
	}

	denied := &apperrors.PermissionDeniedError{
		Action:   action,
		Required: requiredRole(action),
	}
	if user != nil {
		denied.Role = user.Role
	}
	return denied
}

// requiredRole describes the minimum role for an action in human terms.
func requiredRole(action string) string {
	switch action {
	case ActionRead:
		return "any logged-in user"
	case ActionWrite, ActionCreate, ActionEdit, ActionUpdate:
		return "maintainer or admin"
	case ActionDelete, ActionArchive, ActionManageUsers, ActionCreateUser, ActionDeleteUser:
		return "admin only"
	default:
		return "unknown"
	}
}
