package auth

import (
	"context"
	"fmt"

	"ats-portal/internal/rbac"
	"ats-portal/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ExchangeClaims is the identity assertion issued by the upstream
// authentication service.
type ExchangeClaims struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	jwt.RegisteredClaims
}

// ExchangeConfig holds the shared secret and expected claims.
type ExchangeConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

// Exchange trades a signed identity assertion for an Identity.
type Exchange struct {
	secret   []byte
	issuer   string
	audience string
}

// NewExchange validates cfg and creates an Exchange.
func NewExchange(cfg ExchangeConfig) (*Exchange, error) {
	if len(cfg.Secret) < minSecretLength {
		return nil, fmt.Errorf(msgSecretTooShortFmt, minSecretLength)
	}
	if cfg.Issuer == "" {
		return nil, fmt.Errorf(msgIssuerRequired)
	}
	if cfg.Audience == "" {
		return nil, fmt.Errorf(msgAudienceRequired)
	}
	return &Exchange{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
	}, nil
}

// Verify checks the assertion signature, expiry, issuer and audience, then
// maps the claims to an Identity. Every failure wraps ErrInvalidCredentials.
func (e *Exchange) Verify(_ context.Context, assertion string) (*session.Identity, error) {
	token, err := jwt.ParseWithClaims(assertion, &ExchangeClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf(msgUnexpectedSigningMethod, token.Header["alg"])
		}
		return e.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(e.issuer),
		jwt.WithAudience(e.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: "+msgTokenParseFailed, ErrInvalidCredentials, err)
	}

	claims, ok := token.Claims.(*ExchangeClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, msgInvalidTokenClaims)
	}

	return claimsToIdentity(claims)
}

func claimsToIdentity(claims *ExchangeClaims) (*session.Identity, error) {
	role, err := rbac.ParseRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject: %w", ErrInvalidCredentials, err)
	}
	if claims.Email == "" || claims.Name == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, msgInvalidTokenClaims)
	}

	return &session.Identity{
		ID:         id,
		Name:       claims.Name,
		Email:      normalizeEmail(claims.Email),
		Role:       role,
		Department: claims.Department,
	}, nil
}
