package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	for _, length := range []int{4, 5, 8, DefaultLength, 16, 64} {
		for i := 0; i < 50; i++ {
			p, err := Generate(length)
			require.NoError(t, err)

			assert.Len(t, p, length)
			assert.True(t, strings.ContainsAny(p, uppercaseChars), "missing uppercase in %q", p)
			assert.True(t, strings.ContainsAny(p, lowercaseChars), "missing lowercase in %q", p)
			assert.True(t, strings.ContainsAny(p, numberChars), "missing digit in %q", p)
			assert.True(t, strings.ContainsAny(p, specialChars), "missing special in %q", p)

			for _, r := range p {
				assert.True(t, strings.ContainsRune(allChars, r), "unexpected char %q", r)
			}
		}
	}
}

func TestGenerate_DefaultLengthIsSecure(t *testing.T) {
	for i := 0; i < 100; i++ {
		p, err := Generate(DefaultLength)
		require.NoError(t, err)
		assert.True(t, IsSecure(p), p)
	}
}

func TestGenerate_TooShort(t *testing.T) {
	for _, length := range []int{-1, 0, 3} {
		_, err := Generate(length)
		assert.ErrorIs(t, err, ErrTooShort)
	}
}

func TestGenerate_NotConstant(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		p, err := Generate(DefaultLength)
		require.NoError(t, err)
		seen[p] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestIsSecure(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"eight chars all classes", "Abcdef1!", true},
		{"seven chars all classes", "Abcde1!", false},
		{"missing uppercase", "abcdefg1!", false},
		{"missing lowercase", "ABCDEFG1!", false},
		{"missing digit", "Abcdefgh!", false},
		{"missing special", "Abcdefg12", false},
		{"bracket special", "Abcdefg1[", true},
		{"backslash special", `Abcdefg1\`, true},
		{"question mark special", "Abcdefg1?", true},
		{"space is not special", "Abcdef 1x", false},
		{"empty", "", false},
		{"long passphrase", "Mi-Bodega-2024-Segura", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSecure(tt.in))
		})
	}
}

func TestHashAndCompare(t *testing.T) {
	hash, err := Hash("Abcdef1!")
	require.NoError(t, err)

	assert.NotEqual(t, "Abcdef1!", hash)
	assert.True(t, Compare(hash, "Abcdef1!"))
	assert.False(t, Compare(hash, "abcdef1!"))
}
