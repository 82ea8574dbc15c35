package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidPlayToken = errors.New("invalid play token")

// playTokenClaims is the JWT payload for a student sign-in.
type playTokenClaims struct {
	StudentID int64  `json:"sid"`
	Username  string `json:"username"`
	jwt.RegisteredClaims
}

// PlayTokenIssuer mints and verifies the bearer tokens students carry
// for the duration of a play session. Tokens are HMAC-signed; there is
// no server-side state to look up on each request.
type PlayTokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewPlayTokenIssuer creates an issuer with the given signing secret
// and token lifetime.
func NewPlayTokenIssuer(secret string, ttl time.Duration) *PlayTokenIssuer {
	return &PlayTokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed token for a student.
func (i *PlayTokenIssuer) Issue(studentID int64, username string) (string, error) {
	now := time.Now()
	claims := playTokenClaims{
		StudentID: studentID,
		Username:  username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("student:%d", studentID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign play token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the student ID.
func (i *PlayTokenIssuer) Verify(tokenString string) (int64, error) {
	claims := &playTokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidPlayToken
	}
	if claims.StudentID == 0 {
		return 0, ErrInvalidPlayToken
	}
	return claims.StudentID, nil
}
