package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpiredToken indicates the token's expiry has passed
	ErrExpiredToken = errors.New("token has expired")
	// ErrInvalidSignature indicates the token signature did not verify
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrInvalidToken covers all other validation failures
	ErrInvalidToken = errors.New("invalid token")
)

// Claims carries the identity attached to a session token
type Claims struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email,omitempty"`
	Roles  []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// JWTConfig configures token validation
type JWTConfig struct {
	SigningMethod string
	SecretKey     string
	Issuer        string
	Audience      []string
}

// JWTValidator validates session tokens
type JWTValidator struct {
	config JWTConfig
}

// NewJWTValidator creates a validator. Only HMAC signing is supported.
func NewJWTValidator(config JWTConfig) (*JWTValidator, error) {
	if config.SecretKey == "" {
		return nil, errors.New("secret key is required")
	}
	if config.SigningMethod == "" {
		config.SigningMethod = "HS256"
	}
	if config.SigningMethod != "HS256" && config.SigningMethod != "HS384" && config.SigningMethod != "HS512" {
		return nil, fmt.Errorf("unsupported signing method: %s", config.SigningMethod)
	}
	return &JWTValidator{config: config}, nil
}

// ValidateToken parses and verifies a token, returning its claims
func (v *JWTValidator) ValidateToken(tokenString string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{v.config.SigningMethod}),
	}
	if v.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(v.config.Issuer))
	}
	if len(v.config.Audience) > 0 {
		options = append(options, jwt.WithAudience(v.config.Audience[0]))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(v.config.SecretKey), nil
	}, options...)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrInvalidToken
		}
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// JWTGeneratorConfig configures token generation
type JWTGeneratorConfig struct {
	SigningMethod string
	SecretKey     string
	Issuer        string
	Audience      []string
	ExpiryTime    time.Duration
}

// JWTGenerator mints session tokens
type JWTGenerator struct {
	config JWTGeneratorConfig
}

// NewJWTGenerator creates a token generator
func NewJWTGenerator(config JWTGeneratorConfig) (*JWTGenerator, error) {
	if config.SecretKey == "" {
		return nil, errors.New("secret key is required")
	}
	if config.SigningMethod == "" {
		config.SigningMethod = "HS256"
	}
	if config.ExpiryTime <= 0 {
		config.ExpiryTime = 24 * time.Hour
	}
	return &JWTGenerator{config: config}, nil
}

// GenerateToken mints a signed token for a user
func (g *JWTGenerator) GenerateToken(userID, email string, roles []string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.config.Issuer,
			Audience:  g.config.Audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.config.ExpiryTime)),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.GetSigningMethod(g.config.SigningMethod), claims)
	return token.SignedString([]byte(g.config.SecretKey))
}
