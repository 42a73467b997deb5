package models

import "time"

// User represents a registered identity.
// The access token is opaque and single-valued: it is regenerated whenever
// the password changes, which invalidates every previously issued copy.
// Accounts delete hard: a soft-deleted row would keep occupying the
// username, email and token unique indexes and block re-registration.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex;type:varchar(100);not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialized
	Token     string    `json:"-" gorm:"uniqueIndex;type:varchar(64);not null"`
	Role      Role      `json:"role" gorm:"type:varchar(16);not null;default:USER"`
	Bio       string    `json:"bio"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// PublicUser is the identity projection handed to other users. Credentials,
// token and email are stripped.
type PublicUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Bio      string `json:"bio"`
	Location string `json:"location"`
}

// Public returns the sanitized projection of u.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
		Bio:      u.Bio,
		Location: u.Location,
	}
}

// PublicUsers sanitizes a slice of identities.
func PublicUsers(users []User) []PublicUser {
	out := make([]PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out
}
