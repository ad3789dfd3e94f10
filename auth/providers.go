package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"zyan/contract"
	"zyan/domain"
	"zyan/errors"
	"zyan/repositories"

	"github.com/google/uuid"
)

const (
	TypeAnonymous = "anonymous"
	TypePassword  = "password"
	TypeJWT       = "jwt"

	CredentialName     = "name"
	CredentialEmail    = "email"
	CredentialPassword = "password"
	CredentialToken    = "token"
)

var (
	_ contract.AuthenticationProvider = (*AnonymousProvider)(nil)
	_ contract.AuthenticationProvider = (*PasswordProvider)(nil)
	_ contract.AuthenticationProvider = (*TokenProvider)(nil)
)

func failure(err error) domain.AuthResult {
	return domain.AuthResult{Success: false, ErrorMessage: err.Error()}
}

// AnonymousProvider accepts every logon. The identity name is taken from the
// "name" credential when present.
type AnonymousProvider struct{}

func (AnonymousProvider) Authenticate(_ context.Context, req domain.AuthRequest) domain.AuthResult {
	name := strings.TrimSpace(req.Credentials[CredentialName])
	if name == "" {
		name = "anonymous-" + uuid.NewString()[:8]
	}
	return domain.AuthResult{
		Success:  true,
		Identity: domain.Identity{Name: name, AuthenticationType: TypeAnonymous},
	}
}

// PasswordProvider checks email and password against the user repository.
type PasswordProvider struct {
	users repositories.IUserRepository
	log   *slog.Logger
}

func NewPasswordProvider(users repositories.IUserRepository, log *slog.Logger) *PasswordProvider {
	return &PasswordProvider{users: users, log: log}
}

func (p *PasswordProvider) Authenticate(_ context.Context, req domain.AuthRequest) domain.AuthResult {
	creds := logonCredentials{
		Email:    req.Credentials[CredentialEmail],
		Password: req.Credentials[CredentialPassword],
	}
	if err := validateLogon(creds); err != nil {
		return failure(err)
	}
	user, err := p.users.GetUserByEmail(creds.Email)
	if err != nil {
		p.log.Debug("Unknown user", "email", creds.Email, "error", err)
		return failure(errors.ErrInvalidCredentials)
	}
	ok, err := ComparePassword(creds.Password, user.PasswordHash)
	if err != nil {
		p.log.Warn("Stored hash unreadable", "email", creds.Email, "error", err)
		return failure(errors.ErrInvalidCredentials)
	}
	if !ok {
		return failure(errors.ErrInvalidCredentials)
	}
	return domain.AuthResult{
		Success: true,
		Identity: domain.Identity{
			Name:               user.Email,
			AuthenticationType: TypePassword,
			Roles:              user.Roles,
		},
	}
}

// TokenProvider accepts a JWT previously signed by the same TokenIssuer.
type TokenProvider struct {
	issuer *TokenIssuer
}

func NewTokenProvider(issuer *TokenIssuer) *TokenProvider {
	return &TokenProvider{issuer: issuer}
}

func (p *TokenProvider) Authenticate(_ context.Context, req domain.AuthRequest) domain.AuthResult {
	raw := strings.TrimPrefix(req.Credentials[CredentialToken], "Bearer ")
	if raw == "" {
		return failure(fmt.Errorf("%w: token is missing", errors.ErrInvalidCredentials))
	}
	claims, err := p.issuer.ValidateToken(raw)
	if err != nil {
		return failure(err)
	}
	return domain.AuthResult{
		Success: true,
		Identity: domain.Identity{
			Name:               claims.UserID,
			AuthenticationType: TypeJWT,
			Roles:              claims.Roles,
		},
	}
}
