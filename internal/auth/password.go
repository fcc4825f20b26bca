package auth

import (
	"crypto/rand"
	"log"
	"math/big"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// Password strength bounds. bcrypt truncates input at 72 bytes but the
// upper bound exists to reject pathological form input early.
const (
	minPasswordLen = 8
	maxPasswordLen = 128
)

// Character classes used by GenerateRandomPassword.
const (
	upperChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	lowerChars  = "abcdefghjkmnpqrstuvwxyz"
	digitChars  = "23456789"
	symbolChars = "!@#$%^&*"
)

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password. A
// malformed stored hash is reported as a mismatch, never an error; the
// anomaly is logged because it points at corrupted credential data.
func VerifyPassword(hash, plain string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if err == nil {
		return true
	}
	if err != bcrypt.ErrMismatchedHashAndPassword {
		log.Printf("auth: malformed password hash: %v", err)
	}
	return false
}

// ValidatePasswordStrength checks a candidate password against the
// registration rules and returns the first violated rule's message, or ""
// when the password is acceptable. Callers show the message to the user
// verbatim.
func ValidatePasswordStrength(plain string) string {
	// Bounds count runes, not bytes, so multibyte input is measured the
	// way the user typed it.
	switch n := utf8.RuneCountInString(plain); {
	case n < minPasswordLen:
		return "password must be at least 8 characters"
	case n > maxPasswordLen:
		return "password must be at most 128 characters"
	}
	var hasLetter, hasDigit bool
	for _, r := range plain {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasLetter {
		return "password must contain at least one letter"
	}
	if !hasDigit {
		return "password must contain at least one digit"
	}
	return ""
}

// GenerateRandomPassword produces a password of the given length (minimum
// 12) that contains at least one uppercase letter, one lowercase letter,
// one digit and one symbol. Used for administrator-initiated resets; the
// result must never be written to logs.
func GenerateRandomPassword(length int) (string, error) {
	if length < 12 {
		length = 12
	}
	classes := []string{upperChars, lowerChars, digitChars, symbolChars}
	all := upperChars + lowerChars + digitChars + symbolChars

	buf := make([]byte, 0, length)
	// One character from each class guarantees the composition rules.
	for _, class := range classes {
		ch, err := randomChar(class)
		if err != nil {
			return "", err
		}
		buf = append(buf, ch)
	}
	for len(buf) < length {
		ch, err := randomChar(all)
		if err != nil {
			return "", err
		}
		buf = append(buf, ch)
	}
	// Fisher-Yates shuffle so the guaranteed characters are not always in
	// the leading positions.
	for i := len(buf) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		buf[i], buf[j.Int64()] = buf[j.Int64()], buf[i]
	}
	return string(buf), nil
}

func randomChar(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, err
	}
	return set[n.Int64()], nil
}
