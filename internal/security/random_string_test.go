package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomStringRejectsBadArguments(t *testing.T) {
	_, err := RandomString(-1, "abc")
	assert.ErrorIs(t, err, errNegativeLength)

	_, err = RandomString(4, "")
	assert.ErrorIs(t, err, errEmptyAlphabet)

	_, err = RandomString(4, strings.Repeat("a", 257))
	assert.ErrorIs(t, err, errLongAlphabet)

	got, err := RandomString(0, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRandomStringStaysInAlphabet(t *testing.T) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	got, err := RandomString(64, alphabet)
	require.NoError(t, err)
	require.Len(t, got, 64)
	for _, char := range got {
		assert.Truef(t, strings.ContainsRune(alphabet, char), "char %q outside alphabet", char)
	}

	single, err := RandomString(8, "X")
	require.NoError(t, err)
	assert.Equal(t, "XXXXXXXX", single)
}

func TestRandomStringEventuallyUsesEveryCharacter(t *testing.T) {
	const alphabet = "abcdefg"

	got, err := RandomString(2000, alphabet)
	require.NoError(t, err)
	for _, char := range alphabet {
		assert.Truef(t, strings.ContainsRune(got, char), "char %q never drawn", char)
	}
}
