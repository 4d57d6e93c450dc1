package models

import "time"

// Valid user roles. "entendant" is a hearing user, "sourd" a deaf user.
const (
	RoleEntendant = "entendant"
	RoleSourd     = "sourd"
)

// Signals emitted through util.Sig().
const (
	SigUserCreate = "user:create"
)

// User is the profile row. Email uniqueness is enforced by an
// application-level scan at sign-up, not a database constraint; the
// maintenance pass collapses any duplicates that slip through.
type User struct {
	ID        string `gorm:"primaryKey;size:64"`
	Email     string `gorm:"size:255;index"`
	FullName  string `gorm:"size:255"`
	UserRole  string `gorm:"size:32"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }

// ValidRole reports whether role is one of the two enum values.
func ValidRole(role string) bool {
	return role == RoleEntendant || role == RoleSourd
}

// AuthIdentity is the credential record, deliberately separate from the
// profile row: sign-up writes both in two non-atomic phases with a
// compensating delete when the second phase fails.
type AuthIdentity struct {
	ID           string `gorm:"primaryKey;size:64"`
	Email        string `gorm:"size:255;index"`
	PasswordHash string `gorm:"size:255"`
	RoleHint     string `gorm:"size:32"` // provider metadata used by role repair
	CreatedAt    time.Time
}

func (AuthIdentity) TableName() string { return "auth_identities" }
