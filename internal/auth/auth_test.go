package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tangerinesoft/photo-service/internal/config"
	"github.com/tangerinesoft/photo-service/internal/utils/jwt"
	"github.com/tangerinesoft/photo-service/internal/utils/password"
)

func TestAuthenticate_PlainPassword(t *testing.T) {
	a, err := New(config.Auth{AdminUsername: "admin", AdminPassword: "s3cret", JWTSecret: "k", TokenTTL: time.Hour})
	require.NoError(t, err)

	assert.True(t, a.Authenticate("admin", "s3cret"))
	assert.False(t, a.Authenticate("admin", "wrong"))
	assert.False(t, a.Authenticate("Admin", "s3cret"))
	assert.False(t, a.Authenticate("", ""))
}

func TestAuthenticate_PasswordHash(t *testing.T) {
	hash, err := password.HashPassword("from-hash")
	require.NoError(t, err)

	a, err := New(config.Auth{
		AdminUsername:     "admin",
		AdminPassword:     "ignored",
		AdminPasswordHash: hash,
		JWTSecret:         "k",
		TokenTTL:          time.Hour,
	})
	require.NoError(t, err)

	assert.True(t, a.Authenticate("admin", "from-hash"))
	assert.False(t, a.Authenticate("admin", "ignored"))
}

func TestLogin(t *testing.T) {
	a, err := New(config.Auth{AdminUsername: "admin", AdminPassword: "pw", JWTSecret: "k", TokenTTL: time.Hour})
	require.NoError(t, err)

	token, err := a.Login("admin", "pw")
	require.NoError(t, err)
	sub, err := jwt.ExtractSubjectFromToken(token, "k")
	require.NoError(t, err)
	assert.Equal(t, "admin", sub)

	_, err = a.Login("admin", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := New(config.Auth{AdminUsername: "admin", JWTSecret: "k"})
	assert.Error(t, err)
	_, err = New(config.Auth{AdminPassword: "pw", JWTSecret: "k"})
	assert.Error(t, err)
	_, err = New(config.Auth{AdminUsername: "admin", AdminPassword: "pw"})
	assert.Error(t, err)
}
