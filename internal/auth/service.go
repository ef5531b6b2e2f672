package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arkicoffee/storefront-backend/pkg/config"
	pkgerrors "github.com/arkicoffee/storefront-backend/pkg/errors"
	"github.com/arkicoffee/storefront-backend/pkg/security"
)

// User is the public identity attached to a session.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Account is the stored signup record. This is deliberately a mock: there is
// no user database, accounts live in the account store with a TTL and nothing
// depends on them beyond the login flow.
type Account struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

// AccountStore persists signup records keyed by normalized email.
type AccountStore interface {
	// Create stores the account unless one already exists for the email.
	Create(ctx context.Context, account Account) (bool, error)
	Get(ctx context.Context, email string) (Account, bool, error)
}

// Service implements the storefront's mock authentication: signup stores an
// account, login issues a session token. Signing up does not log the user in,
// and logging out does not delete the account — both match the storefront UI.
type Service struct {
	accounts AccountStore
	password config.PasswordConfig
	tokens   *TokenIssuer
}

// NewService builds the auth service.
func NewService(accounts AccountStore, passwordCfg config.PasswordConfig, jwtCfg config.JWTConfig) (*Service, error) {
	if accounts == nil {
		return nil, fmt.Errorf("account store required")
	}
	issuer, err := NewTokenIssuer(jwtCfg)
	if err != nil {
		return nil, err
	}
	return &Service{
		accounts: accounts,
		password: passwordCfg,
		tokens:   issuer,
	}, nil
}

// Signup registers a new account. Duplicate emails are rejected; the caller
// must log in separately afterwards.
func (s *Service) Signup(ctx context.Context, name, email, password string) error {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	password = strings.TrimSpace(password)

	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if password == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}

	hash, err := security.HashPassword(password, s.password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	created, err := s.accounts.Create(ctx, Account{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store account")
	}
	if !created {
		return pkgerrors.New(pkgerrors.CodeConflict, "account already exists")
	}
	return nil
}

// Login verifies credentials and returns a session token for the user.
func (s *Service) Login(ctx context.Context, email, password string) (string, User, error) {
	email = normalizeEmail(email)
	password = strings.TrimSpace(password)

	account, ok, err := s.accounts.Get(ctx, email)
	if err != nil {
		return "", User{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	if !ok {
		return "", User{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}

	valid, err := security.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		return "", User{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return "", User{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}

	user := User{Name: account.Name, Email: account.Email}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", User{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issue session token")
	}
	return token, user, nil
}

// CurrentUser resolves the user behind a session token.
func (s *Service) CurrentUser(token string) (User, error) {
	user, err := s.tokens.Verify(token)
	if err != nil {
		return User{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid session")
	}
	return user, nil
}

// SessionTTL exposes the session token lifetime for cookie expiry.
func (s *Service) SessionTTL() time.Duration {
	return s.tokens.TTL()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
