package secret

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealer_RoundTrip(t *testing.T) {
	s := NewSealer("correct horse")

	sealed, err := s.Seal("token-123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, sealedPrefix))
	assert.NotContains(t, sealed, "token-123")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "token-123", plain)
}

func TestSealer_WrongKey(t *testing.T) {
	sealed, err := NewSealer("one").Seal("token-123")
	require.NoError(t, err)

	_, err = NewSealer("two").Open(sealed)
	assert.ErrorIs(t, err, ErrOpen)

	_, err = NewSealer("").Open(sealed)
	assert.ErrorIs(t, err, ErrOpen)
}

func TestSealer_Disabled(t *testing.T) {
	s := NewSealer("")
	assert.False(t, s.Enabled())

	sealed, err := s.Seal("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", sealed)

	plain, err := NewSealer("any").Open("legacy-plain")
	require.NoError(t, err)
	assert.Equal(t, "legacy-plain", plain)
}
