package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const DefaultTTL = 60 * time.Minute

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Issuer signs and verifies access tokens with one process-wide secret.
// It holds no mutable state after construction.
type Issuer struct {
	secret []byte
	method jwtlib.SigningMethod
	ttl    time.Duration
}

func NewIssuer(secret []byte, algorithm string, ttl time.Duration) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret is required")
	}
	if algorithm == "" {
		algorithm = jwtlib.SigningMethodHS256.Alg()
	}
	var method jwtlib.SigningMethod
	switch algorithm {
	case jwtlib.SigningMethodHS256.Alg():
		method = jwtlib.SigningMethodHS256
	case jwtlib.SigningMethodHS384.Alg():
		method = jwtlib.SigningMethodHS384
	case jwtlib.SigningMethodHS512.Alg():
		method = jwtlib.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported jwt algorithm %q", algorithm)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &Issuer{secret: key, method: method, ttl: ttl}, nil
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

func (i *Issuer) Issue(userID int64, now time.Time) (string, error) {
	claims := jwtlib.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwtlib.NewNumericDate(now),
		ExpiresAt: jwtlib.NewNumericDate(now.Add(i.ttl)),
	}
	return jwtlib.NewWithClaims(i.method, claims).SignedString(i.secret)
}

// Verify returns the subject of a token that is correctly signed with the
// configured algorithm and whose expiry is after now.
func (i *Issuer) Verify(tokenString string, now time.Time) (int64, error) {
	claims := &jwtlib.RegisteredClaims{}
	token, err := jwtlib.ParseWithClaims(tokenString, claims, func(token *jwtlib.Token) (interface{}, error) {
		if token.Method.Alg() != i.method.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	},
		jwtlib.WithValidMethods([]string{i.method.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithStrictDecoding(),
		jwtlib.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return 0, ErrExpiredToken
		}
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return 0, ErrInvalidToken
	}
	if claims.Subject == "" {
		return 0, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return userID, nil
}
