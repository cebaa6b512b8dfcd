// Package users contains the user domain of the Insight API: the internal
// user model, the repository port with its in-memory and Postgres adapters,
// and the Service implementing registration, both authentication schemes, and
// the role gate.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/insight/internal/common"
	"github.com/dmitrijs2005/insight/internal/server/auth"
)

// Service provides user-related operations:
//   - Register: create users, rejecting duplicates
//   - Authenticate: verify Basic credentials
//   - IssueToken / ResolveToken: the bearer-token scheme
//
// Both authentication schemes converge on the same invariant: they return
// either a concrete *InternalUser or a uniform sentinel error, never a
// partial result.
type Service struct {
	repo   Repository
	hasher auth.PasswordHasher
	tokens auth.TokenService
}

func NewService(repo Repository, hasher auth.PasswordHasher, tokens auth.TokenService) *Service {
	return &Service{repo: repo, hasher: hasher, tokens: tokens}
}

// Register hashes the password and stores a new user. A username that already
// exists (case-insensitively) yields common.ErrUserAlreadyExists.
func (s *Service) Register(ctx context.Context, username, email string, age int, password string, role Role) (*InternalUser, error) {
	username = strings.TrimSpace(username)

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil, common.ErrUserAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("%w: checking username: %w", common.ErrorInternal, err)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &InternalUser{
		User:           User{Username: username, Email: email, Age: age},
		HashedPassword: digest,
		Role:           role,
	}

	if err := s.repo.Add(ctx, user); err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Authenticate resolves a user from Basic credentials. An unknown username
// and a wrong password both fail with the same common.ErrInvalidCredentials,
// so the response cannot be used to probe which usernames exist.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*InternalUser, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: resolving user: %w", common.ErrorInternal, err)
	}

	if !s.hasher.Verify(password, user.HashedPassword) {
		return nil, common.ErrInvalidCredentials
	}

	return user, nil
}

// IssueToken authenticates the credentials and mints an access token carrying
// the user's name and role.
func (s *Service) IssueToken(ctx context.Context, username, password string) (string, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.CreateAccessToken(user.Username, string(user.Role))
	if err != nil {
		return "", fmt.Errorf("%w: signing token: %w", common.ErrorInternal, err)
	}

	return token, nil
}

// ResolveToken decodes a bearer token and re-resolves the user it names.
// Missing claims, an unknown role, or a token referencing a user that no
// longer exists all fail with common.ErrInvalidToken.
func (s *Service) ResolveToken(ctx context.Context, token string) (*InternalUser, error) {
	claims, err := s.tokens.DecodeAccessToken(token)
	if err != nil {
		return nil, err
	}

	if claims.Subject == "" || claims.Role == "" {
		return nil, common.ErrInvalidToken
	}

	user, err := s.repo.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// a token referencing a deleted identity is not trusted
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("%w: resolving user: %w", common.ErrorInternal, err)
	}

	return user, nil
}

// List returns all stored users.
func (s *Service) List(ctx context.Context) ([]*InternalUser, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing users: %w", common.ErrorInternal, err)
	}
	return list, nil
}

// RequireRoles checks an already-resolved user against an allow-list of
// roles. Failure means "who you are is known, but you may not do this":
// common.ErrForbidden, distinct from the authentication errors.
func RequireRoles(user *InternalUser, allowed ...Role) error {
	for _, role := range allowed {
		if user.Role == role {
			return nil
		}
	}
	return common.ErrForbidden
}
