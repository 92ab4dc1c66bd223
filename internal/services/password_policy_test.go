package services

import (
	"errors"
	"testing"
)

func TestValidatePasswordStrengthRejectsWeakPasswords(t *testing.T) {
	for _, password := range []string{"Short1", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere", ""} {
		if err := ValidatePasswordStrength(password); !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("expected ErrWeakPassword for %q, got %v", password, err)
		}
	}
}

func TestValidatePasswordStrengthAcceptsStrongPassword(t *testing.T) {
	for _, password := range []string{"StrongPass1", "Übung2024x"} {
		if err := ValidatePasswordStrength(password); err != nil {
			t.Fatalf("expected %q to pass, got %v", password, err)
		}
	}
}
