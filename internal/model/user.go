package model

import "time"

// Role values stored in users.role.  The role is the only authorization
// discriminator in the system: STAFF bypasses the booking duration cap,
// sees booking owners in listings and may cancel anyone's reservation.
const (
	RoleStudent = "STUDENT"
	RoleStaff   = "STAFF"
)

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column in the database.  Handlers
// define separate response types with JSON tags; this struct is used by
// the repository layer only.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address (natural key).
//  Name         – display name shown to staff and to the user themselves.
//  PasswordHash – bcrypt hashed password.
//  Role         – STUDENT or STAFF.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	Name         string    // users.name
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Identity is the authenticated caller as extracted from a verified access
// token.  It is passed explicitly into every lifecycle operation instead of
// being read from ambient state, so the service layer never touches the
// HTTP context.
type Identity struct {
	UserID uint64 // token subject
	Email  string // email claim
	Name   string // name claim
	Role   string // role claim (STUDENT or STAFF)
}

// IsStaff reports whether the identity holds the elevated role.
func (i Identity) IsStaff() bool { return i.Role == RoleStaff }
