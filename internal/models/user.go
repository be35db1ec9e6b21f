// Package models contains data structures for the application's domain models.
package models

import "time"

// UserRole is the coarse permission level of an account.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// UserStatus marks whether an account may sign in.
type UserStatus string

const (
	StatusActive UserStatus = "active"
	StatusBanned UserStatus = "banned"
)

// User represents a registered cook.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email,omitempty"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	Firstname    string     `gorm:"size:100;not null" json:"firstname"`
	Lastname     string     `gorm:"size:100;not null" json:"lastname"`
	Bio          string     `gorm:"type:text" json:"bio"`
	AvatarURL    *string    `json:"avatar_url"`
	Role         UserRole   `gorm:"size:16;not null;default:user" json:"role"`
	Status       UserStatus `gorm:"size:16;not null;default:active" json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsBanned() bool {
	return u.Status == StatusBanned
}

// PublicProfile is what other users see on /users/:username.
type PublicProfile struct {
	User    *User            `json:"profile"`
	Recipes []*RecipeSummary `json:"recipes"`
}
