package gcal

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

var (
	// ErrTokenExpired means the stored Google credential no longer works and
	// the user has to go through the consent flow again.
	ErrTokenExpired = errors.New("google calendar token expired")
	ErrNotConnected = errors.New("google calendar not connected")
)

// classify maps credential failures onto ErrTokenExpired and leaves every
// other error untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTokenExpired) {
		return err
	}
	if IsUnauthorized(err) {
		return errors.Join(ErrTokenExpired, err)
	}
	return err
}

func IsUnauthorized(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusUnauthorized
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.ErrorCode == "invalid_grant" {
			return true
		}
		if retrieveErr.Response != nil {
			return retrieveErr.Response.StatusCode == http.StatusUnauthorized ||
				retrieveErr.Response.StatusCode == http.StatusBadRequest
		}
	}

	return strings.Contains(err.Error(), "401")
}
