package ports

import "github.com/taskly/task-tracker/internal/core/domain"

// TokenIssuer signs a time-limited session token for an identity.
type TokenIssuer interface {
	Issue(identity domain.Identity) (string, error)
}

// TokenVerifier checks signature and expiry and returns the embedded identity.
// Failures wrap domain.ErrUnauthorized.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

type TokenManager interface {
	TokenIssuer
	TokenVerifier
}

// PasswordHasher is a one-way, cost-parameterised hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
