package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/stadium-tickets-go/config"
)

func newTestCodec(t *testing.T, secret string, duration time.Duration) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(&config.AuthConfig{
		JWTSecret:     secret,
		TokenDuration: duration,
		Issuer:        "stadium-tickets-test",
	})
	require.NoError(t, err)
	return codec
}

func TestNewTokenCodecRequiresSecret(t *testing.T) {
	_, err := NewTokenCodec(&config.AuthConfig{JWTSecret: "", TokenDuration: time.Hour})
	assert.Error(t, err)
}

func TestIssueAndVerify(t *testing.T) {
	codec := newTestCodec(t, "test-secret", time.Hour)

	token, expiresAt, err := codec.Issue("alice")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	assert.True(t, codec.Verify(token))

	subject, err := codec.Subject(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	codec := newTestCodec(t, "test-secret", -time.Minute)

	token, _, err := codec.Issue("alice")
	require.NoError(t, err)

	assert.False(t, codec.Verify(token))

	_, err = codec.Subject(token)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := newTestCodec(t, "secret-one", time.Hour)
	verifier := newTestCodec(t, "secret-two", time.Hour)

	token, _, err := issuer.Issue("alice")
	require.NoError(t, err)

	assert.True(t, issuer.Verify(token))
	assert.False(t, verifier.Verify(token))
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	codec := newTestCodec(t, "test-secret", time.Hour)

	token, _, err := codec.Issue("alice")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "X." + parts[2]

	assert.False(t, codec.Verify(tampered))
}

func TestVerifyRejectsGarbage(t *testing.T) {
	codec := newTestCodec(t, "test-secret", time.Hour)

	for _, token := range []string{
		"",
		"not-a-token",
		"a.b",
		"a.b.c",
		"a.b.c.d",
	} {
		assert.False(t, codec.Verify(token), "token %q should not verify", token)
	}
}
