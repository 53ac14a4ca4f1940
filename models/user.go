package models

import "time"

// UserRole соответствует ENUM user_role в БД.
type UserRole string

const (
	RoleParticipant UserRole = "participant"
	RoleJudge       UserRole = "judge"
	RoleAdmin       UserRole = "admin"
	RoleSuperAdmin  UserRole = "superadmin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleParticipant, RoleJudge, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

type User struct {
	ID           int       `json:"id" db:"id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
