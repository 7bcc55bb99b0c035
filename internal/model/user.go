package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Role is a user's system-wide permission level
type Role string

const (
	RolePlayer     Role = "player"
	RoleSuperadmin Role = "superadmin"
)

// rank orders roles so a higher role satisfies a lower requirement
func (r Role) rank() int {
	switch r {
	case RoleSuperadmin:
		return 2
	case RolePlayer:
		return 1
	default:
		return 0
	}
}

// Satisfies reports whether r grants at least the required role
func (r Role) Satisfies(required Role) bool {
	return r.rank() >= required.rank()
}

// IsValid returns true for known roles
func (r Role) IsValid() bool {
	return r.rank() > 0
}

// User is a registered identity
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"` // bcrypt hash
	PlayerID     PlayerID  `json:"player_id"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsSuperadmin returns true if the user holds the elevated role
func (u *User) IsSuperadmin() bool {
	return u != nil && u.Role == RoleSuperadmin
}
