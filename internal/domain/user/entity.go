package user

import "time"

// Role is the access level of a user.
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleEditor Role = "Editor"
	RoleViewer Role = "Viewer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// Status is the account state of a user.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// CreatedAtLayout is the timestamp format stored in CreatedAt.
const CreatedAtLayout = "2006-01-02T15:04:05.000Z"

// User represents a user entity in the system.
type User struct {
	ID        int64  `json:"id"`        // ID is the unique identifier for the user
	Name      string `json:"name"`      // Name is the full name of the user
	Email     string `json:"email"`     // Email is the contact address of the user
	Role      Role   `json:"role"`      // Role is the access level of the user
	Status    Status `json:"status"`    // Status tells whether the account is active
	CreatedAt string `json:"createdAt"` // CreatedAt is set once on creation
}

// NewUser builds a user ready to be stored. Empty role and status fall back
// to Viewer and Active; the id is left for the store to assign.
func NewUser(name, email string, role Role, status Status, now time.Time) User {
	if role == "" {
		role = RoleViewer
	}
	if status == "" {
		status = StatusActive
	}
	return User{
		Name:      name,
		Email:     email,
		Role:      role,
		Status:    status,
		CreatedAt: now.UTC().Format(CreatedAtLayout),
	}
}

// UserPatch holds the fields of a partial update. Nil fields are left untouched.
type UserPatch struct {
	Name   *string
	Email  *string
	Role   *Role
	Status *Status
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Role == nil && p.Status == nil
}

// Apply merges the supplied fields onto u. ID and CreatedAt are never touched.
func (u *User) Apply(p UserPatch) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Status != nil {
		u.Status = *p.Status
	}
}
