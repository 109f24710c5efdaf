package invite_test

import (
	"testing"

	"github.com/pviana/futmatch/internal/invite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewCode(t *testing.T) {
	code, err := invite.NewCode()
	require.NoError(t, err)
	assert.Len(t, code, invite.Length)
	assert.True(t, invite.Valid(code))
}

func TestNewCode_AlwaysValid(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		code, err := invite.NewCode()
		require.NoError(rt, err)
		require.True(rt, invite.Valid(code))
		require.NotContains(rt, code, "0")
		require.NotContains(rt, code, "O")
		require.NotContains(rt, code, "1")
		require.NotContains(rt, code, "I")
	})
}

func TestValid(t *testing.T) {
	assert.False(t, invite.Valid("short"))
	assert.False(t, invite.Valid("ABCDEFGHJKL0"), "rejects ambiguous characters")
	assert.False(t, invite.Valid("abcdefghjklm"), "rejects lowercase")
	assert.True(t, invite.Valid("ABCDEFGHJKLM"))
}
