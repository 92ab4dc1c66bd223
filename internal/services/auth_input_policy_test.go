package services

import (
	"errors"
	"testing"
)

func TestNormalizeAuthEmail(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "normalizes case and spaces", raw: " USER@EXAMPLE.COM ", want: "user@example.com"},
		{name: "invalid email returns empty", raw: "not-email", want: ""},
		{name: "empty returns empty", raw: "   ", want: ""},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			if got := NormalizeAuthEmail(testCase.raw); got != testCase.want {
				t.Fatalf("NormalizeAuthEmail(%q) = %q, want %q", testCase.raw, got, testCase.want)
			}
		})
	}
}

func TestNormalizeCredentialsInput(t *testing.T) {
	email, password, err := NormalizeCredentialsInput(" USER@EXAMPLE.COM ", "  StrongPass1  ")
	if err != nil {
		t.Fatalf("expected valid credentials input, got %v", err)
	}
	if email != "user@example.com" || password != "StrongPass1" {
		t.Fatalf("unexpected normalized credentials %q %q", email, password)
	}

	if _, _, err := NormalizeCredentialsInput("not-email", "StrongPass1"); !errors.Is(err, ErrAuthCredentialsInvalid) {
		t.Fatalf("expected ErrAuthCredentialsInvalid for invalid email, got %v", err)
	}
	if _, _, err := NormalizeCredentialsInput("user@example.com", " "); !errors.Is(err, ErrAuthCredentialsInvalid) {
		t.Fatalf("expected ErrAuthCredentialsInvalid for empty password, got %v", err)
	}
}

func TestValidateNewPassword(t *testing.T) {
	if err := ValidateNewPassword("StrongPass1", "StrongPass2"); !errors.Is(err, ErrAuthPasswordMismatch) {
		t.Fatalf("expected ErrAuthPasswordMismatch, got %v", err)
	}
	if err := ValidateNewPassword("weak", "weak"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if err := ValidateNewPassword(" StrongPass1", "StrongPass1 "); err != nil {
		t.Fatalf("expected trimmed passwords to match, got %v", err)
	}
}
