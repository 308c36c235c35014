package models

import "time"

// UserRole is the authorization role of a user.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAgent UserRole = "agent"
	RoleAdmin UserRole = "admin"
)

// UserRoles lists every accepted role.
var UserRoles = []string{string(RoleUser), string(RoleAgent), string(RoleAdmin)}

// UserStatus is the account state of a user.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusPending  UserStatus = "pending"
)

// UserStatuses lists every accepted user status.
var UserStatuses = []string{string(UserStatusActive), string(UserStatusInactive), string(UserStatusPending)}

// User represents an account.
type User struct {
	ID           int64      `bson:"_id" json:"id" db:"id"`
	Name         string     `bson:"name" json:"name" db:"name" validate:"required,max=120"`
	Email        string     `bson:"email" json:"email" db:"email" validate:"required,email"`
	PasswordHash string     `bson:"password_hash" json:"-" db:"password_hash"`
	Role         UserRole   `bson:"role" json:"role" db:"role" validate:"required,oneof=user agent admin"`
	Status       UserStatus `bson:"status" json:"status" db:"status" validate:"required,oneof=active inactive pending"`
	Phone        string     `bson:"phone" json:"phone" db:"phone" validate:"max=30"`
	CreatedAt    time.Time  `bson:"created_at" json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at" json:"updatedAt" db:"updated_at"`
}

// IsActiveAdmin reports whether the user counts towards the admin minimum.
func (u *User) IsActiveAdmin() bool {
	return u.Role == RoleAdmin && u.Status == UserStatusActive
}
