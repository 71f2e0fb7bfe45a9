package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskly/task-tracker/internal/api/metrics"
	"github.com/taskly/task-tracker/internal/core/domain"
	"github.com/taskly/task-tracker/internal/core/ports"
	"github.com/taskly/task-tracker/internal/core/validation"
)

// AuthService implements registration, login and session token handling.
type AuthService struct {
	repo     ports.UserRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenManager
	validate *validation.Validator
	log      zerolog.Logger
	now      func() time.Time

	// dummyHash is compared against on unknown usernames so that login
	// takes the same time whether or not the account exists.
	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenManager,
	validate *validation.Validator,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		validate: validate,
		log:      log,
		now:      time.Now,
	}
}

// Register creates an account and returns it with a fresh session token.
// The existence check is only a fast path: the store's unique constraint is
// what actually rejects concurrent duplicates.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	if err := s.validate.Validate(in); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "invalid_input").Inc()
		return nil, err
	}

	_, err := s.repo.FindByUsername(ctx, in.Username)
	switch {
	case err == nil:
		metrics.AuthAttemptsTotal.WithLabelValues("register", "conflict").Inc()
		return nil, domain.ErrUserExists
	case !errors.Is(err, domain.ErrUserNotFound):
		metrics.AuthAttemptsTotal.WithLabelValues("register", "error").Inc()
		return nil, fmt.Errorf("register: lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}

	user, err := s.repo.Create(ctx, &domain.User{
		Username:     in.Username,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC().Truncate(domain.TimestampPrecision),
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			s.log.Info().Str("username", in.Username).Msg("concurrent registration lost unique constraint race")
			metrics.AuthAttemptsTotal.WithLabelValues("register", "conflict").Inc()
			return nil, domain.ErrUserExists
		}
		metrics.AuthAttemptsTotal.WithLabelValues("register", "error").Inc()
		return nil, fmt.Errorf("register: create user: %w", err)
	}

	token, err := s.tokens.Issue(user.Identity())
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	s.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")

	return &ports.AuthResult{User: user.Identity(), Token: token}, nil
}

// Login verifies credentials. Unknown usernames and wrong passwords both
// return domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	if err := s.validate.Validate(in); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid_input").Inc()
		return nil, err
	}

	user, err := s.repo.FindByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = s.hasher.Compare(s.timingHash(), in.Password)
			s.log.Debug().Str("username", in.Username).Msg("login rejected: unknown user")
			metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid_credentials").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		metrics.AuthAttemptsTotal.WithLabelValues("login", "error").Inc()
		return nil, fmt.Errorf("login: lookup user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, in.Password); err != nil {
		s.log.Debug().Str("username", in.Username).Msg("login rejected: wrong password")
		metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Identity())
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	return &ports.AuthResult{User: user.Identity(), Token: token}, nil
}

// WhoAmI returns the identity embedded in a valid token.
func (s *AuthService) WhoAmI(_ context.Context, token string) (domain.Identity, error) {
	identity, err := s.tokens.Verify(token)
	if err != nil {
		s.rejected(err)
		return domain.Identity{}, err
	}
	return identity, nil
}

// Refresh exchanges a still-valid token for a new one with a fresh expiry.
func (s *AuthService) Refresh(_ context.Context, token string) (string, error) {
	identity, err := s.tokens.Verify(token)
	if err != nil {
		s.rejected(err)
		return "", err
	}

	fresh, err := s.tokens.Issue(identity)
	if err != nil {
		return "", fmt.Errorf("refresh: %w", err)
	}
	return fresh, nil
}

func (s *AuthService) rejected(err error) {
	reason := domain.RejectionReason(err)
	metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
	s.log.Debug().Err(err).Str("reason", reason).Msg("token rejected")
}

func (s *AuthService) timingHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("timing-equalisation-password")
	})
	return s.dummyHash
}
