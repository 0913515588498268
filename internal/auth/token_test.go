package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenCodec_IssueAndVerify(t *testing.T) {
	codec := NewTokenCodec([]byte("test-secret-key-0123"), time.Hour)

	token, err := codec.Issue("alice@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := codec.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "alice@x.com", subject)
}

func TestTokenCodec_Expired(t *testing.T) {
	codec := NewTokenCodec([]byte("test-secret-key-0123"), -time.Minute)

	token, err := codec.Issue("alice@x.com")
	require.NoError(t, err)

	_, err = codec.Verify(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenCodec_BadSignature(t *testing.T) {
	issuer := NewTokenCodec([]byte("test-secret-key-0123"), time.Hour)
	verifier := NewTokenCodec([]byte("another-secret-key-x"), time.Hour)

	token, err := issuer.Issue("alice@x.com")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrTokenSignature)
}

func TestTokenCodec_Malformed(t *testing.T) {
	codec := NewTokenCodec([]byte("test-secret-key-0123"), time.Hour)

	for _, token := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := codec.Verify(token)
		require.ErrorIs(t, err, ErrTokenMalformed, "token %q", token)
	}
}

func TestPrincipal_Authorize(t *testing.T) {
	principal := Principal{UserID: 7, Email: "alice@x.com"}

	require.True(t, principal.Authorize(7))
	require.False(t, principal.Authorize(8))

	var anonymous Principal
	require.False(t, anonymous.Authorize(7))
}
