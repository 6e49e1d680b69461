// Package auth checks admin credentials and issues short-lived admin tokens.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Authenticator verifies an admin username/password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) error
}

// StaticAuthenticator holds one admin account from configuration. A bcrypt
// hash takes precedence over a plaintext password.
type StaticAuthenticator struct {
	username     string
	password     string
	passwordHash []byte
}

func NewStaticAuthenticator(username, password, passwordHash string) (*StaticAuthenticator, error) {
	if username == "" {
		return nil, errors.New("admin username is required")
	}
	if password == "" && passwordHash == "" {
		return nil, errors.New("admin password or password hash is required")
	}
	if passwordHash != "" {
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("invalid admin password hash: %w", err)
		}
	}
	return &StaticAuthenticator{
		username:     username,
		password:     password,
		passwordHash: []byte(passwordHash),
	}, nil
}

func (a *StaticAuthenticator) Authenticate(_ context.Context, username, password string) error {
	if !usernameMatches(a.username, username) {
		return ErrInvalidCredentials
	}
	if len(a.passwordHash) > 0 {
		return checkHash(a.passwordHash, password)
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

func usernameMatches(want, got string) bool {
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), []byte(want)) == 1
}

func checkHash(hash []byte, password string) error {
	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("compare password hash: %w", err)
	}
	return nil
}
