package domain

import "time"

// User models an account. RoleID references a Role by identity.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	RoleID       string    `json:"role_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserSummary is the public-safe view of a User. It never carries the hash.
type UserSummary struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	RoleRemoved bool   `json:"role_removed,omitempty"`
}

// Summarize builds the public view of u. A nil role means the reference no
// longer resolves.
func Summarize(u *User, role *Role) UserSummary {
	s := UserSummary{ID: u.ID, Username: u.Username, Email: u.Email}
	if role == nil {
		s.RoleRemoved = true
		return s
	}
	s.Role = role.Name
	return s
}
