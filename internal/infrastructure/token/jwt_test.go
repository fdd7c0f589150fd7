package token

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/cargo-transport-api/internal/core/domain"
)

var fixedNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newCodec(t *testing.T, now func() time.Time) *JWTCodec {
	t.Helper()
	c, err := NewJWTCodec(Config{Secret: "test-secret", Algorithm: "HS256", DefaultTTL: 30 * time.Minute}, WithClock(now))
	require.NoError(t, err)
	return c
}

func TestNewJWTCodec_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"empty secret", Config{Secret: "", Algorithm: "HS256", DefaultTTL: time.Minute}, ErrEmptySecret},
		{"unknown algorithm", Config{Secret: "s", Algorithm: "HS999", DefaultTTL: time.Minute}, ErrUnsupportedAlgorithm},
		{"asymmetric algorithm", Config{Secret: "s", Algorithm: "RS256", DefaultTTL: time.Minute}, ErrUnsupportedAlgorithm},
		{"none algorithm", Config{Secret: "s", Algorithm: "none", DefaultTTL: time.Minute}, ErrUnsupportedAlgorithm},
		{"empty algorithm", Config{Secret: "s", Algorithm: "", DefaultTTL: time.Minute}, ErrUnsupportedAlgorithm},
		{"zero ttl", Config{Secret: "s", Algorithm: "HS256"}, ErrInvalidTTL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewJWTCodec(tt.cfg)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, c)
		})
	}
}

func TestJWTCodec_RoundTrip(t *testing.T) {
	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		t.Run(alg, func(t *testing.T) {
			c, err := NewJWTCodec(Config{Secret: "k", Algorithm: alg, DefaultTTL: time.Minute})
			require.NoError(t, err)

			tok, err := c.Issue("alice", c.DefaultTTL())
			require.NoError(t, err)

			sub, err := c.Decode(tok)
			require.NoError(t, err)
			assert.Equal(t, "alice", sub)
		})
	}
}

func TestJWTCodec_ClaimsCarryExpiry(t *testing.T) {
	c := newCodec(t, func() time.Time { return fixedNow })

	tok, err := c.Issue("alice", 15*time.Minute)
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)
	assert.True(t, fixedNow.Add(15*time.Minute).Equal(claims.ExpiresAt.Time))
	assert.Equal(t, "alice", claims.Subject)
}

func TestJWTCodec_Deterministic(t *testing.T) {
	c := newCodec(t, func() time.Time { return fixedNow })

	a, err := c.Issue("alice", time.Minute)
	require.NoError(t, err)
	b, err := c.Issue("alice", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestJWTCodec_ZeroTTLIsRejected(t *testing.T) {
	c := newCodec(t, func() time.Time { return fixedNow })

	tok, err := c.Issue("alice", 0)
	require.NoError(t, err)

	_, err = c.Decode(tok)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTCodec_ExpiredIsRejected(t *testing.T) {
	now := fixedNow
	c := newCodec(t, func() time.Time { return now })

	tok, err := c.Issue("alice", time.Minute)
	require.NoError(t, err)

	now = fixedNow.Add(59 * time.Second)
	_, err = c.Decode(tok)
	require.NoError(t, err)

	now = fixedNow.Add(2 * time.Minute)
	_, err = c.Decode(tok)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTCodec_TamperedSignature(t *testing.T) {
	c := newCodec(t, time.Now)

	tok, err := c.Issue("alice", time.Minute)
	require.NoError(t, err)

	// Flip a character in the middle of the signature segment; the last
	// character only carries padding bits in raw base64url.
	i := strings.LastIndex(tok, ".") + 10
	b := []byte(tok)
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}

	_, err = c.Decode(string(b))
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTCodec_RejectsForeignTokens(t *testing.T) {
	c := newCodec(t, time.Now)
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	otherSecret, err := NewJWTCodec(Config{Secret: "other", Algorithm: "HS256", DefaultTTL: time.Minute})
	require.NoError(t, err)
	wrongSecret, err := otherSecret.Issue("alice", time.Minute)
	require.NoError(t, err)

	otherAlg, err := NewJWTCodec(Config{Secret: "test-secret", Algorithm: "HS512", DefaultTTL: time.Minute})
	require.NoError(t, err)
	wrongAlg, err := otherAlg.Issue("alice", time.Minute)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "alice", ExpiresAt: exp}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{ExpiresAt: exp}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "alice"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"wrong secret":    wrongSecret,
		"wrong algorithm": wrongAlg,
		"alg none":        unsigned,
		"missing sub":     noSubject,
		"missing exp":     noExpiry,
		"malformed":       "not-a-token",
		"empty":           "",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			sub, err := c.Decode(tok)
			assert.ErrorIs(t, err, domain.ErrInvalidToken)
			assert.Empty(t, sub)
		})
	}
}

func TestJWTCodec_ConcurrentUse(t *testing.T) {
	c := newCodec(t, time.Now)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := c.Issue("alice", time.Minute)
			if !assert.NoError(t, err) {
				return
			}
			sub, err := c.Decode(tok)
			assert.NoError(t, err)
			assert.Equal(t, "alice", sub)
		}()
	}
	wg.Wait()
}
