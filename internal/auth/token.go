// Package auth provides JWT issuance, validation and the HTTP access-control
// middleware built on top of it.
package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// tokenTTL is the fixed validity window for issued tokens.
// It is deliberately not configurable per call.
const tokenTTL = 2 * time.Hour

// minSecretLength is the minimum accepted signing key length in bytes.
// A shorter key is a configuration error, not a degraded mode.
const minSecretLength = 32

// Claims is the validated identity carried by a token
type Claims struct {
	UserID   int
	Username string
	Roles    []string
}

// TokenIssuer builds, signs and validates bearer tokens
type TokenIssuer struct {
	secret   []byte
	issuer   string
	audience string
}

// NewTokenIssuer creates a token issuer.
//
// It fails when the signing key is shorter than minSecretLength so that a
// weak key aborts startup instead of silently weakening every token.
func NewTokenIssuer(secret, issuer, audience string) (*TokenIssuer, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("signing key must be at least %d bytes, got %d", minSecretLength, len(secret))
	}
	if issuer == "" {
		return nil, fmt.Errorf("token issuer name cannot be empty")
	}
	if audience == "" {
		return nil, fmt.Errorf("token audience cannot be empty")
	}

	return &TokenIssuer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
	}, nil
}

// Issue creates a signed token for the user and returns it together with its
// absolute expiry timestamp. Each call embeds a fresh jti.
func (ti *TokenIssuer) Issue(userID int, username string, roles []string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(tokenTTL)

	claims := jwt.MapClaims{
		"sub":         strconv.Itoa(userID),
		"unique_name": username,
		"jti":         uuid.New().String(),
		"roles":       roles,
		"iss":         ti.issuer,
		"aud":         ti.audience,
		"iat":         now.Unix(),
		"exp":         expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(ti.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Validate parses a token and verifies its signature, issuer, audience and
// expiry. Expiry is checked with zero clock-skew tolerance.
func (ti *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ti.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(ti.issuer),
		jwt.WithAudience(ti.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	sub, ok := mapClaims["sub"].(string)
	if !ok {
		return nil, fmt.Errorf("sub not found in token")
	}
	userID, err := strconv.Atoi(sub)
	if err != nil {
		return nil, fmt.Errorf("invalid sub claim: %w", err)
	}

	username, ok := mapClaims["unique_name"].(string)
	if !ok {
		return nil, fmt.Errorf("unique_name not found in token")
	}

	// Roles claim is optional; a token without roles is authenticated but
	// passes no role checks
	var roles []string
	if rawRoles, ok := mapClaims["roles"].([]any); ok {
		roles = make([]string, 0, len(rawRoles))
		for _, r := range rawRoles {
			role, ok := r.(string)
			if !ok {
				return nil, fmt.Errorf("invalid role claim type %T", r)
			}
			roles = append(roles, role)
		}
	}

	return &Claims{
		UserID:   userID,
		Username: username,
		Roles:    roles,
	}, nil
}

// HasRole reports whether the claims include the given role
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}
