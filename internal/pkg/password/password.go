// Package password generates temporary store passwords and checks new
// passwords against the store password policy.
package password

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/dlclark/regexp2"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultLength = 10
	MinSecureLen  = 8

	// Ambiguous characters (I, O, l, o, 0, 1) are left out.
	uppercaseChars = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	lowercaseChars = "abcdefghijkmnpqrstuvwxyz"
	numberChars    = "23456789"
	specialChars   = "!@#$%^&*-_=+"
	allChars       = uppercaseChars + lowercaseChars + numberChars + specialChars

	secureRegexPattern = `^(?=.*[A-Z])(?=.*[a-z])(?=.*[0-9])(?=.*[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>/?]).{8,}$`
)

var (
	ErrTooShort = errors.New("password length must be at least 4")

	secureExp = regexp2.MustCompile(secureRegexPattern, regexp2.Singleline)
)

// Generate returns a random password of the given length with at least one
// uppercase letter, one lowercase letter, one digit and one special character.
func Generate(length int) (string, error) {
	if length < 4 {
		return "", ErrTooShort
	}

	buf := make([]byte, 0, length)
	for _, set := range []string{uppercaseChars, lowercaseChars, numberChars, specialChars} {
		c, err := pick(set)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}

	for len(buf) < length {
		c, err := pick(allChars)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}

	if err := shuffle(buf); err != nil {
		return "", err
	}

	return string(buf), nil
}

// IsSecure reports whether p has at least 8 characters and contains an
// uppercase letter, a lowercase letter, a digit and a special character.
func IsSecure(p string) bool {
	ok, err := secureExp.MatchString(p)

	return err == nil && ok
}

func Hash(p string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(p), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
	}

	return string(hash), nil
}

func Compare(hash, p string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(p)) == nil
}

func pick(set string) (byte, error) {
	n, err := randInt(len(set))
	if err != nil {
		return 0, err
	}

	return set[n], nil
}

// shuffle is a Fisher-Yates shuffle driven by crypto/rand.
func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		j, err := randInt(i + 1)
		if err != nil {
			return err
		}
		b[i], b[j] = b[j], b[i]
	}

	return nil
}

func randInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, fmt.Errorf("rand.Int -> %w", err)
	}

	return int(n.Int64()), nil
}
