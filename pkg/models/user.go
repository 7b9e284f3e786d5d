package models

// User is the authentication and authorization subject. Users are owned by
// the authentication collaborator; the agent never creates or modifies them
// except through the admin-only user management operations.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	Name         string `json:"name,omitempty"`
}

// UserRecord is the transport shape for users. It never carries the
// password hash.
type UserRecord struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name,omitempty"`
}

// Record strips the password hash for transport.
func (u *User) Record() *UserRecord {
	return &UserRecord{ID: u.ID, Email: u.Email, Role: u.Role, Name: u.Name}
}

// User role constants.
const (
	RoleReader     = "reader"
	RoleMaintainer = "maintainer"
	RoleAdmin      = "admin"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleReader, RoleMaintainer, RoleAdmin}

// IsValidRole checks if the given role is valid.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
