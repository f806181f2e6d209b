package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alloneword/internal/models"
	"alloneword/internal/repository"
	"alloneword/internal/security"
)

// ErrInvalidToken is returned for bearer tokens that fail verification or name a deleted account
var ErrInvalidToken = errors.New("invalid or expired token")

// IssuedToken is the response to a successful token request
type IssuedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenService issues and verifies bearer tokens for the JSON API
type TokenService struct {
	auth     *AuthService
	accounts *repository.AccountRepository
	issuer   *security.TokenIssuer
}

// NewTokenService creates a new token service
func NewTokenService(auth *AuthService, accounts *repository.AccountRepository, issuer *security.TokenIssuer) *TokenService {
	return &TokenService{auth: auth, accounts: accounts, issuer: issuer}
}

// Issue checks credentials and signs a token for the account
func (s *TokenService) Issue(ctx context.Context, login, password string) (*IssuedToken, error) {
	account, err := s.auth.Authenticate(ctx, login, password)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.issuer.Issue(account.ID, account.Username, account.Role.String())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &IssuedToken{Token: token, ExpiresAt: expiresAt}, nil
}

// Account verifies a token and loads the account it was issued to
func (s *TokenService) Account(ctx context.Context, token string) (*models.Account, error) {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	id, err := claims.AccountID()
	if err != nil {
		return nil, ErrInvalidToken
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrInvalidToken
	}
	return account, nil
}
