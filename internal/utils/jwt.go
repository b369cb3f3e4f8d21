package utils // package utils provides helpers for session tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"
)

// SessionToken is a signed JWT naming a visitor session.  The session id
// in the subject claim namespaces the visitor's wizard state.
type SessionToken struct {
	Token     string    // the serialized JWT string
	SessionID string    // subject claim
	Exp       time.Time // the UTC expiration time
}

// ErrInvalidSession is returned for tokens that fail verification or
// carry no usable subject.
var ErrInvalidSession = errors.New("invalid session token")

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string { return uuid.NewString() }

// NewSessionToken signs an HS256 JWT for sessionID valid for ttl.
func NewSessionToken(secret, sessionID string, ttl time.Duration) (SessionToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, SessionID: sessionID, Exp: exp}, nil
}

// ParseSessionToken verifies raw and returns its session id.  Only HMAC
// signatures are accepted and the subject must be a UUID.
func ParseSessionToken(secret, raw string) (string, error) {
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", ErrInvalidSession
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", ErrInvalidSession
	}
	return claims.Subject, nil
}
