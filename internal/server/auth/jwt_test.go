package auth

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/userreg/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

var (
	testSecret = []byte("0123456789abcdef0123456789abcdef")
	t0         = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
)

func newCodec(t *testing.T, lifetime time.Duration) *TokenCodec {
	t.Helper()
	c, err := NewTokenCodec(testSecret, lifetime)
	if err != nil {
		t.Fatalf("NewTokenCodec error: %v", err)
	}
	return c
}

func TestNewTokenCodec_RejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewTokenCodec([]byte("short"), time.Hour)
	if !errors.Is(err, ErrSecretTooShort) {
		t.Fatalf("want ErrSecretTooShort, got %v", err)
	}

	_, err = NewTokenCodec(nil, time.Hour)
	if !errors.Is(err, ErrSecretTooShort) {
		t.Fatalf("want ErrSecretTooShort for nil secret, got %v", err)
	}
}

func TestNewTokenCodec_RejectsNonPositiveLifetime(t *testing.T) {
	t.Parallel()

	for _, d := range []time.Duration{0, -time.Second} {
		_, err := NewTokenCodec(testSecret, d)
		if !errors.Is(err, ErrInvalidLifetime) {
			t.Fatalf("lifetime %s: want ErrInvalidLifetime, got %v", d, err)
		}
	}
}

func TestIssue_ClaimsAndPrefix(t *testing.T) {
	t.Parallel()

	c := newCodec(t, time.Hour)
	tok, err := c.Issue("user-123", "test@example.com", t0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if !strings.HasPrefix(tok, "eyJ") {
		t.Fatalf("token should start with eyJ, got %q", tok)
	}
	if n := strings.Count(tok, "."); n != 2 {
		t.Fatalf("token should have three parts, got %d dots", n)
	}

	claims, err := c.Claims(tok)
	if err != nil {
		t.Fatalf("Claims error: %v", err)
	}
	if claims.Subject != "test@example.com" || claims.UserID != "user-123" || claims.Email != "test@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.IssuedAt.Time.Equal(t0) {
		t.Fatalf("iat: got %v want %v", claims.IssuedAt.Time, t0)
	}
	if !claims.ExpiresAt.Time.Equal(t0.Add(time.Hour)) {
		t.Fatalf("exp: got %v want %v", claims.ExpiresAt.Time, t0.Add(time.Hour))
	}
}

func TestVerify_WithinLifetime(t *testing.T) {
	t.Parallel()

	c := newCodec(t, time.Hour)
	tok, err := c.Issue("u1", "test@example.com", t0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	for _, at := range []time.Time{t0, t0.Add(30 * time.Minute), t0.Add(time.Hour - time.Nanosecond)} {
		if !c.Verify(tok, "test@example.com", at) {
			t.Fatalf("expected token valid at %v", at)
		}
	}
}

func TestVerify_ExpiresExactlyAtLifetime(t *testing.T) {
	t.Parallel()

	c := newCodec(t, time.Hour)
	tok, err := c.Issue("u1", "test@example.com", t0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if c.Verify(tok, "test@example.com", t0.Add(time.Hour)) {
		t.Fatal("token must be invalid at now == exp")
	}
}

func TestVerify_ExpiredAfter3601Seconds(t *testing.T) {
	t.Parallel()

	c := newCodec(t, 3600000*time.Millisecond)
	tok, err := c.Issue("u1", "juan@rodriguez.org", t0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if c.Verify(tok, "juan@rodriguez.org", t0.Add(3601*time.Second)) {
		t.Fatal("token must be expired after 3601s")
	}
}

func TestVerify_SubjectMismatch(t *testing.T) {
	t.Parallel()

	c := newCodec(t, time.Hour)
	tok, err := c.Issue("u1", "test@example.com", t0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if c.Verify(tok, "other@example.com", t0) {
		t.Fatal("token must not verify for a different email")
	}
	if c.Verify(tok, "TEST@example.com", t0) {
		t.Fatal("email comparison must be case-sensitive")
	}
}

func TestVerify_WrongSecretAndGarbage(t *testing.T) {
	t.Parallel()

	c := newCodec(t, time.Hour)
	other, err := NewTokenCodec([]byte("ffffffffffffffffffffffffffffffff"), time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec error: %v", err)
	}

	tok, err := other.Issue("u1", "test@example.com", t0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if c.Verify(tok, "test@example.com", t0) {
		t.Fatal("token signed with another key must not verify")
	}
	if c.Verify("not.a.jwt", "test@example.com", t0) {
		t.Fatal("garbage must not verify")
	}
	if c.Verify("", "test@example.com", t0) {
		t.Fatal("empty token must not verify")
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	c := newCodec(t, time.Hour)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "test@example.com",
			ExpiresAt: jwt.NewNumericDate(t0.Add(time.Hour)),
		},
		UserID: "u1",
	}).SignedString(testSecret)
	if err != nil {
		t.Fatalf("SignedString error: %v", err)
	}

	if c.Verify(tok, "test@example.com", t0) {
		t.Fatal("HS512 token must be rejected")
	}
}

func TestValidate_DistinguishesMalformedFromExpired(t *testing.T) {
	t.Parallel()

	c := newCodec(t, time.Hour)
	tok, err := c.Issue("u1", "test@example.com", t0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = c.Validate(tok, "test@example.com", t0.Add(2*time.Hour))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken for expired token, got %v", err)
	}

	_, err = c.Validate("not.a.jwt", "test@example.com", t0)
	if !errors.Is(err, common.ErrMalformedToken) {
		t.Fatalf("want ErrMalformedToken, got %v", err)
	}
}

func TestDecode_ExpiredTokenStillDecodes(t *testing.T) {
	t.Parallel()

	c := newCodec(t, time.Hour)
	tok, err := c.Issue("user-42", "test@example.com", t0.Add(-48*time.Hour))
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	id, err := c.DecodeUserID(tok)
	if err != nil || id != "user-42" {
		t.Fatalf("DecodeUserID: got %q, %v", id, err)
	}

	email, err := c.DecodeEmail(tok)
	if err != nil || email != "test@example.com" {
		t.Fatalf("DecodeEmail: got %q, %v", email, err)
	}
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	c := newCodec(t, time.Hour)

	if _, err := c.DecodeUserID("not.a.jwt"); !errors.Is(err, common.ErrMalformedToken) {
		t.Fatalf("DecodeUserID: want ErrMalformedToken, got %v", err)
	}
	if _, err := c.DecodeEmail("abc"); !errors.Is(err, common.ErrMalformedToken) {
		t.Fatalf("DecodeEmail: want ErrMalformedToken, got %v", err)
	}
}

func TestDecode_MissingClaims(t *testing.T) {
	t.Parallel()

	c := newCodec(t, time.Hour)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{}).SignedString(testSecret)
	if err != nil {
		t.Fatalf("SignedString error: %v", err)
	}

	if _, err := c.DecodeUserID(tok); !errors.Is(err, common.ErrMalformedToken) {
		t.Fatalf("DecodeUserID: want ErrMalformedToken, got %v", err)
	}
	if _, err := c.DecodeEmail(tok); !errors.Is(err, common.ErrMalformedToken) {
		t.Fatalf("DecodeEmail: want ErrMalformedToken, got %v", err)
	}
}

func TestNewTokenCodec_CopiesSecret(t *testing.T) {
	t.Parallel()

	secret := append([]byte(nil), testSecret...)
	c, err := NewTokenCodec(secret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec error: %v", err)
	}
	tok, err := c.Issue("u1", "a@b.co", t0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	secret[0] = 'X'
	if !c.Verify(tok, "a@b.co", t0) {
		t.Fatal("mutating the caller's slice must not affect the codec")
	}
	if c.Lifetime() != time.Hour {
		t.Fatalf("Lifetime: got %s", c.Lifetime())
	}
}

func TestClocks(t *testing.T) {
	t.Parallel()

	if !FixedClock(t0).Now().Equal(t0) {
		t.Fatal("FixedClock must return its instant")
	}
	if (SystemClock{}).Now().IsZero() {
		t.Fatal("SystemClock must return wall time")
	}
}

func TestVerify_FractionalIssueInstant(t *testing.T) {
	t.Parallel()

	issued := t0.Add(900*time.Millisecond + 123*time.Nanosecond)
	c := newCodec(t, time.Hour)
	tok, err := c.Issue("u1", "test@example.com", issued)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := c.Claims(tok)
	if err != nil {
		t.Fatalf("Claims error: %v", err)
	}
	if !claims.IssuedAt.Time.Equal(issued) {
		t.Fatalf("iat: got %v want %v", claims.IssuedAt.Time, issued)
	}
	if !claims.ExpiresAt.Time.Equal(issued.Add(time.Hour)) {
		t.Fatalf("exp: got %v want %v", claims.ExpiresAt.Time, issued.Add(time.Hour))
	}

	for _, at := range []time.Time{
		issued,
		issued.Add(time.Hour - 500*time.Millisecond),
		issued.Add(time.Hour - time.Nanosecond),
	} {
		if !c.Verify(tok, "test@example.com", at) {
			t.Fatalf("expected token valid at %v", at)
		}
	}
	if c.Verify(tok, "test@example.com", issued.Add(time.Hour)) {
		t.Fatal("token must be invalid at now == exp")
	}
}

func TestParseSeconds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"1741946400", time.Unix(1741946400, 0), true},
		{"1741946400.9", time.Unix(1741946400, 900000000), true},
		{"1741946400.900000123", time.Unix(1741946400, 900000123), true},
		{"1741946400.9000001234", time.Time{}, false},
		{"1.7e9", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		got, ok := parseSeconds(json.Number(tt.in))
		if ok != tt.ok || (ok && !got.Equal(tt.want)) {
			t.Fatalf("parseSeconds(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
