package gcal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/terraincognita07/daybook/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

type TokenStore interface {
	SaveGoogleToken(userID uint, accessToken string, refreshToken string, expiry *time.Time) error
}

type OAuthSettings struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Connector runs the OAuth consent flow and hands out per-user clients whose
// refreshed tokens are written back through the TokenStore.
type Connector struct {
	config   *oauth2.Config
	store    TokenStore
	location *time.Location
	options  []option.ClientOption
}

func NewConnector(settings OAuthSettings, store TokenStore, location *time.Location, options ...option.ClientOption) *Connector {
	return &Connector{
		config: &oauth2.Config{
			ClientID:     settings.ClientID,
			ClientSecret: settings.ClientSecret,
			RedirectURL:  settings.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{calendar.CalendarScope},
		},
		store:    store,
		location: location,
		options:  options,
	}
}

func (connector *Connector) AuthCodeURL(state string) string {
	return connector.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades the callback code for a token and stores it for the user.
func (connector *Connector) Exchange(ctx context.Context, userID uint, code string) error {
	token, err := connector.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange oauth code: %w", err)
	}
	return connector.store.SaveGoogleToken(userID, token.AccessToken, token.RefreshToken, tokenExpiry(token))
}

func (connector *Connector) ClientFor(ctx context.Context, user models.User) (*Client, error) {
	if !user.HasCalendarToken() {
		return nil, ErrNotConnected
	}

	token := &oauth2.Token{
		AccessToken:  user.GoogleAccessToken,
		RefreshToken: user.GoogleRefreshToken,
		TokenType:    "Bearer",
	}
	if user.GoogleTokenExpiry != nil {
		token.Expiry = *user.GoogleTokenExpiry
	}

	source := &persistingTokenSource{
		base:   connector.config.TokenSource(ctx, token),
		store:  connector.store,
		userID: user.ID,
		last:   token.AccessToken,
	}
	options := append([]option.ClientOption{option.WithTokenSource(source)}, connector.options...)
	return NewClient(ctx, connector.location, options...)
}

type persistingTokenSource struct {
	base   oauth2.TokenSource
	store  TokenStore
	userID uint

	mu   sync.Mutex
	last string
}

func (source *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := source.base.Token()
	if err != nil {
		return nil, classify(err)
	}

	source.mu.Lock()
	defer source.mu.Unlock()
	if token.AccessToken == source.last {
		return token, nil
	}
	source.last = token.AccessToken
	if err := source.store.SaveGoogleToken(source.userID, token.AccessToken, token.RefreshToken, tokenExpiry(token)); err != nil {
		return nil, errors.Join(errors.New("persist refreshed google token"), err)
	}
	return token, nil
}

func tokenExpiry(token *oauth2.Token) *time.Time {
	if token.Expiry.IsZero() {
		return nil
	}
	expiry := token.Expiry.UTC()
	return &expiry
}
