// Package auth adapts JWT validation to the application's auth port.
package auth

import (
	"context"

	"boardcore/application/ports"
	pkgauth "boardcore/pkg/auth"
	pkgerrors "boardcore/pkg/errors"
)

// JWTProvider implements ports.AuthProvider over a JWT validator
type JWTProvider struct {
	validator *pkgauth.JWTValidator
}

// NewJWTProvider creates a provider from validator configuration
func NewJWTProvider(config pkgauth.JWTConfig) (ports.AuthProvider, error) {
	validator, err := pkgauth.NewJWTValidator(config)
	if err != nil {
		return nil, err
	}
	return &JWTProvider{validator: validator}, nil
}

// Verify validates a token and returns the user id
func (p *JWTProvider) Verify(_ context.Context, token string) (string, error) {
	claims, err := p.validator.ValidateToken(token)
	if err != nil {
		return "", pkgerrors.NewUnauthorizedError("invalid session token")
	}
	return claims.UserID, nil
}
