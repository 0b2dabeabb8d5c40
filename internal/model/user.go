package model

import "time"

// User is the identity anchor, created on the first magic-link request
type User struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          *string    `json:"name"`
	Image         *string    `json:"image,omitempty"`
	EmailVerified *time.Time `json:"emailVerified"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// PublicUser is the profile returned to clients
type PublicUser struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          *string    `json:"name"`
	EmailVerified *time.Time `json:"emailVerified"`
}

// Public strips internal fields
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		EmailVerified: u.EmailVerified,
	}
}

// VerificationToken is a pending magic link, deleted once redeemed
type VerificationToken struct {
	Identifier string    `json:"identifier"` // email the link was sent to
	Token      string    `json:"token"`
	Expires    time.Time `json:"expires"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Valid reports whether the token may still be redeemed at now
func (v *VerificationToken) Valid(now time.Time) bool {
	return v.Expires.After(now)
}

// Identity is what the session guard attaches to a request
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}
