package capability

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer is the issuer claim of service tokens minted by the router.
const TokenIssuer = "neurohub-router"

// SignServiceToken issues an HS256 token for calling the given agent.
func SignServiceToken(secret []byte, audience string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("service secret is empty")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": TokenIssuer,
		"sub": TokenIssuer,
		"aud": audience,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseServiceToken validates signature, expiry, issuer and audience.
func ParseServiceToken(tok string, secret []byte, audience string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(tok, claims,
		func(t *jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid service token: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("invalid service token")
	}
	return claims, nil
}
