package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// defaultTokenTTL applies when the caller passes a non-positive TTL.
const defaultTokenTTL = 30 * time.Minute

// Claims holds the JWT payload for access tokens. Subject is the
// username, so tokens survive nothing the account record doesn't:
// deleting or renaming the user invalidates outstanding tokens at the
// CurrentUser lookup.
type Claims struct {
	jwt.RegisteredClaims
}

// signingMethod maps an algorithm name to its HMAC signing method.
// Only the HS family is supported; config validation enforces this
// before any token is issued.
func signingMethod(algorithm string) *jwt.SigningMethodHMAC {
	switch algorithm {
	case "HS384":
		return jwt.SigningMethodHS384
	case "HS512":
		return jwt.SigningMethodHS512
	default:
		return jwt.SigningMethodHS256
	}
}

// GenerateAccessToken creates a signed JWT for a username. Tokens are
// short-lived and validated by signature plus a store lookup; there is
// no revocation list.
func GenerateAccessToken(username, secret, algorithm string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(signingMethod(algorithm), claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a JWT access token and returns its claims.
// It checks the signature, restricts accepted signing methods to the
// configured algorithm, enforces expiry, and requires a subject.
// Every failure mode maps to ErrTokenInvalid so callers cannot leak
// why a token was rejected.
func ParseToken(tokenString, secret, algorithm string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{signingMethod(algorithm).Alg()}),
		// exp is only checked when present; a token without one would
		// otherwise never expire.
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	return claims, nil
}
