// Package auth checks the single shared admin credential and issues bearer
// tokens for it.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/tangerinesoft/photo-service/internal/config"
	"github.com/tangerinesoft/photo-service/internal/utils/jwt"
	"github.com/tangerinesoft/photo-service/internal/utils/password"
)

var ErrInvalidCredentials = errors.New("incorrect username or password")

type Authenticator struct {
	username     string
	passwordHash string
	secret       string
	ttl          time.Duration
}

// New prefers cfg.AdminPasswordHash. A plain AdminPassword is hashed once
// here so both paths are checked the same way.
func New(cfg config.Auth) (*Authenticator, error) {
	if cfg.AdminUsername == "" {
		return nil, errors.New("admin username is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}

	hash := cfg.AdminPasswordHash
	if hash == "" {
		if cfg.AdminPassword == "" {
			return nil, errors.New("admin password or password hash is required")
		}
		h, err := password.HashPassword(cfg.AdminPassword)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		hash = h
	}

	return &Authenticator{
		username:     cfg.AdminUsername,
		passwordHash: hash,
		secret:       cfg.JWTSecret,
		ttl:          cfg.TokenTTL,
	}, nil
}

// Authenticate reports whether username and pass match the admin credential.
func (a *Authenticator) Authenticate(username, pass string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := password.CheckPasswordHash(pass, a.passwordHash)
	return userOK && passOK
}

// Login returns a signed token for valid credentials.
func (a *Authenticator) Login(username, pass string) (string, error) {
	if !a.Authenticate(username, pass) {
		return "", ErrInvalidCredentials
	}
	return jwt.CreateToken(a.username, a.secret, a.ttl)
}

func (a *Authenticator) Username() string {
	return a.username
}

func (a *Authenticator) Secret() string {
	return a.secret
}
