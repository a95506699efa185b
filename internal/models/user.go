package models

import "time"

// User represents a registered account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	Website      string    `json:"website"`
	Avatar       []byte    `json:"-"` // Served separately as a PNG
	Views        int64     `json:"views"`
	Joined       time.Time `json:"joined"`
}
