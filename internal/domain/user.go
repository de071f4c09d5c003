package domain

import "time"

type User struct {
	ID        string    `json:"id" bson:"id"`
	Email     string    `json:"email" bson:"email"`
	FullName  string    `json:"full_name" bson:"full_name"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Credential is an opaque bearer token. The zero value means no credential.
type Credential string

func (c Credential) IsZero() bool {
	return c == ""
}

func (c Credential) String() string {
	return string(c)
}

// AuthResult is what the server returns on login and registration.
type AuthResult struct {
	User  User       `json:"user"`
	Token Credential `json:"token"`
}
