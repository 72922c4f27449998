package auth

import (
	"slugtree/internal/domain/models"
)

// JWTVerifier validates bearer tokens issued by the host application.
type JWTVerifier interface {
	// VerifyToken validates a JWT and extracts the host's claims.
	VerifyToken(tokenString string) (*models.HostClaims, error)

	// Close releases resources held by the verifier.
	Close() error
}
