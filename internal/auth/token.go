package auth // package auth provides password hashing and session token helpers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// ErrInvalidSession is the single failure outcome of VerifySession. Bad
// signature, malformed structure and natural expiry all collapse into it
// so a caller cannot leak the distinction to an end user; the underlying
// cause is still attached for server-side logs.
var ErrInvalidSession = errors.New("invalid session")

// SessionToken represents a signed session token along with its expiry.
// The Token field contains the serialized JWT string carried in the
// session cookie; Exp is the UTC expiration time used for the cookie's
// own expiry attribute.
type SessionToken struct {
	Token string
	Exp   time.Time
}

// IssueSession builds and signs an HS256 JWT for a user. The payload is
// minimal: subject (sub), issued-at (iat) and expiration (exp). The TTL is
// fixed from issuance; there is no sliding renewal.
func IssueSession(secret string, userID uint64, ttl time.Duration) (SessionToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// VerifySession checks signature integrity and expiry of a session token
// and returns the subject user ID. Every failure path returns an error
// wrapping ErrInvalidSession.
func VerifySession(secret, token string) (uint64, error) {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything other than HMAC; an
		// attacker-supplied "none" or RSA token must not pass.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("%w: unexpected claims type", ErrInvalidSession)
	}
	// jwt.Parse already rejected expired tokens; only the subject needs
	// decoding. Numeric JSON values arrive as float64.
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return 0, fmt.Errorf("%w: missing subject", ErrInvalidSession)
	}
	return uint64(sub), nil
}
