package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerVerifiesOwnTokens(t *testing.T) {
	m := NewManager("test-secret", "shoplive")

	token, err := m.Sign("user-1", "alice", time.Minute)
	require.NoError(t, err)

	id, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id.UserID)
	assert.Equal(t, "alice", id.Username)
}

func TestManagerRejectsExpiredToken(t *testing.T) {
	m := NewManager("test-secret", "shoplive")

	token, err := m.Sign("user-1", "alice", -time.Minute)
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestManagerRejectsForeignSecret(t *testing.T) {
	issuer := NewManager("other-secret", "shoplive")
	m := NewManager("test-secret", "shoplive")

	token, err := issuer.Sign("user-1", "alice", time.Minute)
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManagerRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", "shoplive")

	_, err := m.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
