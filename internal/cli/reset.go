package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/terraincognita07/daybook/internal/db"
	"github.com/terraincognita07/daybook/internal/security"
	"github.com/terraincognita07/daybook/internal/services"
	"gorm.io/gorm"
)

const temporaryPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

type ResetPasswordOptions struct {
	DBPath string
	Email  string
	// Prompt asks for the new password on the terminal instead of
	// generating a temporary one.
	Prompt bool
	Stdin  *os.File
	Stdout io.Writer
}

func RunResetPasswordCommand(opts ResetPasswordOptions) error {
	email := services.NormalizeAuthEmail(opts.Email)
	if email == "" {
		return errors.New("a valid email is required")
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	password, mustChange, err := choosePassword(opts)
	if err != nil {
		return err
	}

	database, err := db.OpenSQLite(opts.DBPath, nil)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}
	return resetPassword(database, opts.Stdout, email, password, mustChange)
}

func resetPassword(database *gorm.DB, out io.Writer, email string, password string, mustChange bool) error {
	auth := services.NewAuthService(db.NewUserRepository(database))
	if _, err := auth.ResetPassword(email, password, mustChange); err != nil {
		if errors.Is(err, services.ErrAuthUserNotFound) {
			return fmt.Errorf("user %s not found", email)
		}
		return err
	}

	fmt.Fprintln(out, "Password reset successful")
	if mustChange {
		fmt.Fprintf(out, "Temporary password: %s\n", password)
		fmt.Fprintln(out, "User must change password on next login.")
	}
	return nil
}

func choosePassword(opts ResetPasswordOptions) (string, bool, error) {
	if !opts.Prompt {
		password, err := generateTemporaryPassword(12)
		if err != nil {
			return "", false, fmt.Errorf("generate temporary password: %w", err)
		}
		return password, true, nil
	}

	stdin := opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	fmt.Fprint(opts.Stdout, "New password: ")
	first, err := readPasswordNoEcho(stdin)
	fmt.Fprintln(opts.Stdout)
	if err != nil {
		return "", false, fmt.Errorf("read password: %w", err)
	}
	fmt.Fprint(opts.Stdout, "Repeat password: ")
	second, err := readPasswordNoEcho(stdin)
	fmt.Fprintln(opts.Stdout)
	if err != nil {
		return "", false, fmt.Errorf("read password: %w", err)
	}

	if err := services.ValidateNewPassword(string(first), string(second)); err != nil {
		return "", false, err
	}
	return strings.TrimSpace(string(first)), false, nil
}

func generateTemporaryPassword(length int) (string, error) {
	if length < 8 {
		length = 8
	}
	for {
		password, err := security.RandomString(length, temporaryPasswordAlphabet)
		if err != nil {
			return "", err
		}
		// The login form enforces the same strength rules.
		if services.ValidatePasswordStrength(password) == nil {
			return password, nil
		}
	}
}
