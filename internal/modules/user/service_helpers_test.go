package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := hashPassword("longenough1")
	require.NoError(t, err)

	assert.True(t, checkPasswordHash("longenough1", hash))
	assert.False(t, checkPasswordHash("longenough2", hash))
	assert.False(t, checkPasswordHash("longenough1", "not-a-hash"))
}

func TestGenerateSecureToken(t *testing.T) {
	a, err := generateSecureToken(32)
	require.NoError(t, err)
	b, err := generateSecureToken(32)
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestHashToken(t *testing.T) {
	h := hashToken("some-token")
	assert.NotEqual(t, "some-token", h)
	assert.Equal(t, h, hashToken("some-token"), "hash must be deterministic for lookups")
	assert.NotEqual(t, h, hashToken("some-other-token"))
}

func TestTransientValueRoundTrip(t *testing.T) {
	signed, err := signTransientValue("secret", "the-state", time.Hour)
	require.NoError(t, err)

	v, err := parseTransientValue("secret", signed)
	require.NoError(t, err)
	assert.Equal(t, "the-state", v)
}

func TestTransientValueRejectsTampering(t *testing.T) {
	signed, err := signTransientValue("secret", "the-state", time.Hour)
	require.NoError(t, err)

	_, err = parseTransientValue("other-secret", signed)
	assert.Error(t, err)

	_, err = parseTransientValue("secret", signed+"x")
	assert.Error(t, err)

	_, err = parseTransientValue("secret", "garbage")
	assert.Error(t, err)
}

func TestTransientValueExpires(t *testing.T) {
	signed, err := signTransientValue("secret", "the-state", -time.Minute)
	require.NoError(t, err)

	_, err = parseTransientValue("secret", signed)
	assert.Error(t, err, "expired transient values must not validate")
}
