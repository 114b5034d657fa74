package auth

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// JWTConfig configures the bearer token authenticator.
type JWTConfig struct {
	// SigningKey is the HMAC key used to verify JWT signatures.
	SigningKey []byte

	// Issuer, when set, must match the iss claim.
	Issuer string
}

// JWTAuthenticator validates HMAC-signed bearer tokens and takes the user
// from the sub claim.
type JWTAuthenticator struct {
	cfg JWTConfig
}

// NewJWTAuthenticator creates a new JWT authenticator.
func NewJWTAuthenticator(cfg JWTConfig) (*JWTAuthenticator, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, errors.New("jwt signing key is required")
	}
	return &JWTAuthenticator{cfg: cfg}, nil
}

// Authenticate validates the bearer token and returns user info.
func (a *JWTAuthenticator) Authenticate(r *http.Request) (*UserContext, error) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return nil, fmt.Errorf("%w: no bearer token", ErrNoCredentials)
	}

	claims, err := a.parseAndValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		return nil, errors.New("missing sub claim")
	}

	return &UserContext{
		UserID:   userID,
		Claims:   claims,
		AuthType: AuthTypeJWT,
	}, nil
}

// parseAndValidateToken parses and validates the JWT.
func (a *JWTAuthenticator) parseAndValidateToken(tokenString string) (map[string]any, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.cfg.SigningKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims type")
	}

	if a.cfg.Issuer != "" {
		iss, _ := claims["iss"].(string)
		if iss != a.cfg.Issuer {
			return nil, fmt.Errorf("invalid issuer: got %q, want %q", iss, a.cfg.Issuer)
		}
	}

	claimsMap := make(map[string]any, len(claims))
	maps.Copy(claimsMap, claims)
	return claimsMap, nil
}

// Verify interface compliance.
var _ Authenticator = (*JWTAuthenticator)(nil)
