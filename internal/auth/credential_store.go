package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// CredentialStore holds the single operator credential. The password is kept
// only as a bcrypt hash.
type CredentialStore struct {
	username     string
	passwordHash []byte
}

// NewCredentialStore hashes password and returns a store for username.
func NewCredentialStore(username, password string) (*CredentialStore, error) {
	if username == "" || password == "" {
		return nil, errors.New("operator username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &CredentialStore{username: username, passwordHash: hash}, nil
}

// NewCredentialStoreFromHash builds a store from a precomputed bcrypt hash.
func NewCredentialStoreFromHash(username, hash string) (*CredentialStore, error) {
	if username == "" {
		return nil, errors.New("operator username is required")
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("parse password hash: %w", err)
	}
	return &CredentialStore{username: username, passwordHash: []byte(hash)}, nil
}

// Username returns the configured operator name.
func (s *CredentialStore) Username() string {
	return s.username
}

// Verify reports whether username and password match the stored credential.
// The bcrypt comparison runs even when the username is wrong.
func (s *CredentialStore) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) == nil
	return userOK && passOK
}
