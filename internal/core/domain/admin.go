package domain

import "time"

// RoleAdmin is the only role the API issues today. The claim is still
// carried in the token so reader-only roles can be added without a token
// format change.
const RoleAdmin = "admin"

// Admin models a reviewer identity. Credential checks happen in the auth
// service; everywhere else an Admin arrives already authenticated.
type Admin struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
