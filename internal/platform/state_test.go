package platform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRoundTrip(t *testing.T) {
	state, err := NewState("user-42")
	require.NoError(t, err)

	prefix, suffix, found := strings.Cut(state, ":")
	require.True(t, found)
	assert.Len(t, prefix, 32) // 16 random bytes, hex-encoded
	assert.Equal(t, "user-42", suffix)

	userID, err := UserIDFromState(state)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestStateIsUnique(t *testing.T) {
	a, err := NewState("u")
	require.NoError(t, err)
	b, err := NewState("u")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestUserIDFromStateMalformed(t *testing.T) {
	_, err := UserIDFromState("no-separator")
	assert.Error(t, err)

	_, err = UserIDFromState("abcdef:")
	assert.Error(t, err)
}
