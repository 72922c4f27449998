package models

import "github.com/golang-jwt/jwt/v5"

// HostClaims are the claims this service reads from the host-issued JWT.
// Authentication is owned by the host; the service only verifies the
// signature and forwards the subject.
type HostClaims struct {
	jwt.RegisteredClaims
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
}
