package user

import "time"

// User is a staff account able to call the API: an admin or a procurement
// officer.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Active       bool
	CreatedAt    time.Time
}

type CreateParams struct {
	Name     string
	Email    string
	Password string
	Role     string
	// MaxActiveOrders seeds the officer profile; zero means the default.
	MaxActiveOrders int
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}
