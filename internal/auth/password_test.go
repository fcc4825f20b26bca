package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("User123!", bcryptTestCost)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "User123!"))
	assert.False(t, VerifyPassword(hash, "user123!"))
	assert.False(t, VerifyPassword(hash, ""))
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	// A garbage stored hash must read as a mismatch, never panic or error.
	assert.False(t, VerifyPassword("not-a-bcrypt-hash", "whatever"))
	assert.False(t, VerifyPassword("", "whatever"))
}

func TestValidatePasswordStrength(t *testing.T) {
	cases := []struct {
		name     string
		password string
		wantOK   bool
	}{
		{"acceptable", "Abc12345", true},
		{"too short", "Ab1", false},
		{"too long", strings.Repeat("a1", 65), false},
		{"no digit", "abcdefgh", false},
		{"no letter", "12345678", false},
		{"exactly eight", "a1a1a1a1", true},
		// Length counts runes: seven multibyte characters stay too short
		// even though the byte length clears eight.
		{"seven runes multibyte", "päss1wö", false},
		{"eight runes multibyte", "päss1wör", true},
		{"129 runes", "a1" + strings.Repeat("ä", 127), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := ValidatePasswordStrength(tc.password)
			if tc.wantOK {
				assert.Empty(t, msg)
			} else {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

func TestGenerateRandomPassword(t *testing.T) {
	pw, err := GenerateRandomPassword(12)
	require.NoError(t, err)
	assert.Len(t, pw, 12)
	assert.True(t, strings.ContainsAny(pw, upperChars), "wants an uppercase letter: %q", pw)
	assert.True(t, strings.ContainsAny(pw, lowerChars), "wants a lowercase letter: %q", pw)
	assert.True(t, strings.ContainsAny(pw, digitChars), "wants a digit: %q", pw)
	assert.True(t, strings.ContainsAny(pw, symbolChars), "wants a symbol: %q", pw)

	// Generated passwords always clear the registration rules.
	assert.Empty(t, ValidatePasswordStrength(pw))

	// Short requests are raised to the minimum length.
	pw, err = GenerateRandomPassword(4)
	require.NoError(t, err)
	assert.Len(t, pw, 12)
}

// bcryptTestCost keeps the hashing tests fast; production cost comes from
// config.
const bcryptTestCost = 4
