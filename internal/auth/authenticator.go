// Package auth provides password authentication and JWT session tokens.
package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/mmynk/debtplan/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidDisplayName = errors.New("display name must be 1 to 64 characters")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
)

// MaxDisplayNameLength is the longest accepted display name, in characters.
const MaxDisplayNameLength = 64

// Registration is the identity part of a sign-up: a normalized email and a
// trimmed display name. Credentials are checked by each Authenticator.
type Registration struct {
	Email       string
	DisplayName string
}

// NewRegistration normalizes and validates the identity fields of a sign-up.
// A bare address is required; "Ana <ana@example.com>" is rejected.
func NewRegistration(email, displayName string) (Registration, error) {
	r := Registration{
		Email:       NormalizeEmail(email),
		DisplayName: strings.TrimSpace(displayName),
	}
	addr, err := mail.ParseAddress(r.Email)
	if err != nil || addr.Address != r.Email {
		return Registration{}, ErrInvalidEmail
	}
	if n := utf8.RuneCountInString(r.DisplayName); n == 0 || n > MaxDisplayNameLength {
		return Registration{}, ErrInvalidDisplayName
	}
	return r, nil
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Authenticator creates and verifies accounts. Implementations differ in the
// credential they accept; identity rules are shared through NewRegistration.
type Authenticator interface {
	// Register validates the registration and credential and creates the
	// account. Rejected input yields ErrInvalidEmail, ErrInvalidDisplayName,
	// ErrWeakPassword or ErrEmailExists.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the account for valid credentials, and
	// ErrInvalidCredentials for an unknown email or a wrong credential.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential reports whether a credential would be accepted by
	// Register.
	ValidateCredential(credential string) error
}
