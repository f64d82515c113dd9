package models

import "time"

// User is a registered account. ID, Email and PasswordHash are set once by the
// registration flow; Created, Modified and LastLogin are owned by storage.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Created      time.Time
	Modified     time.Time
	LastLogin    time.Time
	// Token is attached to the registration result only; the users.token
	// column is reserved and reads back empty.
	Token        string
	Active       bool
	Phones       []Phone
}

// Phone belongs to exactly one user, referenced by UserID.
type Phone struct {
	ID          string
	UserID      string
	Number      string
	CityCode    string
	CountryCode string
}
