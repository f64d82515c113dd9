// Package auth issues and checks the signed session tokens handed out at
// registration. Tokens are HS256 JWTs whose subject is the user's email.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/userreg/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the minimum HMAC key size in bytes (256 bits).
const MinSecretLength = 32

var (
	ErrSecretTooShort  = errors.New("secret key must be at least 32 bytes")
	ErrInvalidLifetime = errors.New("token lifetime must be positive")
)

func init() {
	// iat and exp keep the full issuance instant; see Claims.UnmarshalJSON.
	jwt.TimePrecision = time.Nanosecond
}

// Claims holds the standard registered claims plus the user identifier and email.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// UnmarshalJSON decodes iat and exp from their decimal text instead of a
// float64, so a token expires exactly lifetime after it was issued.
func (c *Claims) UnmarshalJSON(data []byte) error {
	type plain Claims
	if err := json.Unmarshal(data, (*plain)(c)); err != nil {
		return err
	}

	var raw struct {
		IssuedAt  json.Number `json:"iat"`
		ExpiresAt json.Number `json:"exp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if t, ok := parseSeconds(raw.IssuedAt); ok {
		c.IssuedAt = &jwt.NumericDate{Time: t}
	}
	if t, ok := parseSeconds(raw.ExpiresAt); ok {
		c.ExpiresAt = &jwt.NumericDate{Time: t}
	}

	return nil
}

// parseSeconds reads "<seconds>[.<up to 9 digits>]". Other forms are left to
// the float decoding done by jwt.NumericDate.
func parseSeconds(n json.Number) (time.Time, bool) {
	whole, frac, _ := strings.Cut(string(n), ".")

	sec, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || len(frac) > 9 {
		return time.Time{}, false
	}

	var nsec int64
	if frac != "" {
		nsec, err = strconv.ParseInt(frac+strings.Repeat("0", 9-len(frac)), 10, 64)
		if err != nil || nsec < 0 {
			return time.Time{}, false
		}
	}

	return time.Unix(sec, nsec), true
}

// TokenCodec signs and decodes session tokens. It is immutable and safe for
// concurrent use. Time is always supplied by the caller.
type TokenCodec struct {
	secret   []byte
	lifetime time.Duration
}

func NewTokenCodec(secret []byte, lifetime time.Duration) (*TokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: got %d", ErrSecretTooShort, len(secret))
	}
	if lifetime <= 0 {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidLifetime, lifetime)
	}

	key := make([]byte, len(secret))
	copy(key, secret)

	return &TokenCodec{secret: key, lifetime: lifetime}, nil
}

func (c *TokenCodec) Lifetime() time.Duration {
	return c.lifetime
}

// Issue builds a token for the user, valid from now until now+lifetime.
func (c *TokenCodec) Issue(userID, email string, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.lifetime)),
		},
		UserID: userID,
		Email:  email,
	})

	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify reports whether token has a valid signature, has not expired at now
// and was issued for expectedEmail. It never returns an error.
func (c *TokenCodec) Verify(token, expectedEmail string, now time.Time) bool {
	_, err := c.Validate(token, expectedEmail, now)
	return err == nil
}

// Validate is Verify with a reason: common.ErrMalformedToken when the token
// cannot be decoded, common.ErrInvalidToken when it is expired or belongs to
// someone else.
func (c *TokenCodec) Validate(token, expectedEmail string, now time.Time) (*Claims, error) {
	claims, err := c.Claims(token)
	if err != nil {
		return nil, err
	}

	if claims.ExpiresAt == nil || !now.Before(claims.ExpiresAt.Time) {
		return nil, fmt.Errorf("%w: expired", common.ErrInvalidToken)
	}

	if claims.Subject != expectedEmail {
		return nil, fmt.Errorf("%w: subject mismatch", common.ErrInvalidToken)
	}

	return claims, nil
}

// Claims decodes token and checks its signature without looking at time.
func (c *TokenCodec) Claims(tokenString string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedToken, err)
	}

	return claims, nil
}

// DecodeUserID extracts the userId claim.
func (c *TokenCodec) DecodeUserID(token string) (string, error) {
	claims, err := c.Claims(token)
	if err != nil {
		return "", err
	}
	if claims.UserID == "" {
		return "", fmt.Errorf("%w: no userId claim", common.ErrMalformedToken)
	}
	return claims.UserID, nil
}

// DecodeEmail extracts the subject (email).
func (c *TokenCodec) DecodeEmail(token string) (string, error) {
	claims, err := c.Claims(token)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: no subject", common.ErrMalformedToken)
	}
	return claims.Subject, nil
}
