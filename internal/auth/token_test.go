package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestIssueThenVerifySession(t *testing.T) {
	st, err := IssueSession(testSecret, 42, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, st.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), st.Exp, 5*time.Second)

	uid, err := VerifySession(testSecret, st.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), uid)
}

func TestVerifySessionTamperedSignature(t *testing.T) {
	st, err := IssueSession(testSecret, 42, time.Hour)
	require.NoError(t, err)

	// Flip the last byte of the signature.
	raw := []byte(st.Token)
	if raw[len(raw)-1] == 'A' {
		raw[len(raw)-1] = 'B'
	} else {
		raw[len(raw)-1] = 'A'
	}
	_, err = VerifySession(testSecret, string(raw))
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestVerifySessionExpired(t *testing.T) {
	st, err := IssueSession(testSecret, 42, -time.Minute)
	require.NoError(t, err)
	_, err = VerifySession(testSecret, st.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestVerifySessionWrongSecret(t *testing.T) {
	st, err := IssueSession(testSecret, 42, time.Hour)
	require.NoError(t, err)
	_, err = VerifySession("ffffffffffffffffffffffffffffffff", st.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestVerifySessionMalformed(t *testing.T) {
	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := VerifySession(testSecret, tok)
		assert.ErrorIs(t, err, ErrInvalidSession, "token %q", tok)
	}
}
