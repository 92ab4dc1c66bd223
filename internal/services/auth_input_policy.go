package services

import (
	"errors"
	"net/mail"
	"strings"
)

var (
	ErrAuthCredentialsInvalid = errors.New("auth credentials invalid")
	ErrAuthPasswordMismatch   = errors.New("auth password mismatch")
)

func NormalizeAuthEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return ""
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ""
	}
	return email
}

func NormalizeCredentialsInput(emailRaw string, passwordRaw string) (string, string, error) {
	email := NormalizeAuthEmail(emailRaw)
	password := strings.TrimSpace(passwordRaw)
	if email == "" || password == "" {
		return "", "", ErrAuthCredentialsInvalid
	}
	return email, password, nil
}

// ValidateNewPassword checks strength and that the confirmation matches.
func ValidateNewPassword(password string, confirm string) error {
	if strings.TrimSpace(password) != strings.TrimSpace(confirm) {
		return ErrAuthPasswordMismatch
	}
	return ValidatePasswordStrength(strings.TrimSpace(password))
}
