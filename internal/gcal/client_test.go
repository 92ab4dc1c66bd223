package gcal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/daybook/internal/models"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(context.Background(), time.UTC,
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)
	return client
}

func writeJSON(t *testing.T, writer http.ResponseWriter, payload any) {
	t.Helper()
	writer.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(writer).Encode(payload))
}

func TestListCalendars(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.True(t, strings.HasSuffix(request.URL.Path, "/users/me/calendarList"), request.URL.Path)
		writeJSON(t, writer, map[string]any{
			"items": []map[string]any{
				{"id": "primary@example.com", "summary": "Me", "backgroundColor": "#123456", "primary": true},
				{"id": "team@group.calendar.google.com", "summary": "Team"},
			},
		})
	}))

	calendars, err := client.ListCalendars(context.Background())
	require.NoError(t, err)
	require.Len(t, calendars, 2)
	assert.Equal(t, "primary@example.com", calendars[0].ID)
	assert.Equal(t, "#123456", calendars[0].BackgroundColor)
	assert.True(t, calendars[0].Primary)
	assert.Equal(t, "", calendars[1].BackgroundColor)
}

func TestListEventsMapsTimedAndAllDayEvents(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Contains(t, request.URL.Path, "/calendars/primary/events")
		assert.Equal(t, "2025-03-01T00:00:00Z", request.URL.Query().Get("timeMin"))
		assert.Equal(t, "2025-04-01T00:00:00Z", request.URL.Query().Get("timeMax"))
		assert.Equal(t, "true", request.URL.Query().Get("singleEvents"))
		writeJSON(t, writer, map[string]any{
			"items": []map[string]any{
				{"id": "a", "summary": "Standup", "start": map[string]any{"dateTime": "2025-03-05T09:30:00Z"}},
				{"id": "b", "summary": "", "start": map[string]any{"date": "2025-03-06"}},
			},
		})
	}))

	events, err := client.ListEvents(context.Background(), models.PrimaryCalendarID,
		time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "Standup", events[0].Title)
	assert.Equal(t, "2025-03-05", events[0].Date)
	assert.Equal(t, "09:30", events[0].Time)
	assert.False(t, events[0].AllDay)

	assert.Equal(t, untitledEvent, events[1].Title)
	assert.Equal(t, "2025-03-06", events[1].Date)
	assert.Empty(t, events[1].Time)
	assert.True(t, events[1].AllDay)
}

func TestUnauthorizedResponseMapsToTokenExpired(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusUnauthorized)
		_, _ = writer.Write([]byte(`{"error":{"code":401,"message":"Invalid Credentials"}}`))
	}))

	_, err := client.ListCalendars(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestForbiddenResponseIsNotTokenExpired(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusForbidden)
		_, _ = writer.Write([]byte(`{"error":{"code":403,"message":"forbidden"}}`))
	}))

	_, err := client.ListEvents(context.Background(), "shared", time.Now(), time.Now().Add(time.Hour))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTokenExpired))
}

func TestCreateAllDayEventUsesDateFields(t *testing.T) {
	var received map[string]any
	client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, http.MethodPost, request.Method)
		require.NoError(t, json.NewDecoder(request.Body).Decode(&received))
		writeJSON(t, writer, map[string]any{
			"id":      "created",
			"summary": "Holiday",
			"start":   map[string]any{"date": "2025-03-07"},
		})
	}))

	day := time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC)
	event, err := client.CreateEvent(context.Background(), "primary", NewEvent{Title: "Holiday", Start: day, End: day, AllDay: true})
	require.NoError(t, err)
	assert.Equal(t, "created", event.ID)
	assert.True(t, event.AllDay)

	start := received["start"].(map[string]any)
	end := received["end"].(map[string]any)
	assert.Equal(t, "2025-03-07", start["date"])
	assert.Equal(t, "2025-03-08", end["date"])
	assert.NotContains(t, start, "dateTime")
}

func TestCreateTimedEventUsesDateTimeFields(t *testing.T) {
	var received map[string]any
	client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		require.NoError(t, json.NewDecoder(request.Body).Decode(&received))
		writeJSON(t, writer, map[string]any{
			"id":    "timed",
			"start": map[string]any{"dateTime": "2025-03-07T15:00:00Z"},
		})
	}))

	start := time.Date(2025, time.March, 7, 15, 0, 0, 0, time.UTC)
	_, err := client.CreateEvent(context.Background(), "primary", NewEvent{Title: "Dentist", Start: start, End: start.Add(30 * time.Minute)})
	require.NoError(t, err)

	assert.Equal(t, "2025-03-07T15:00:00Z", received["start"].(map[string]any)["dateTime"])
	assert.Equal(t, "2025-03-07T15:30:00Z", received["end"].(map[string]any)["dateTime"])
}

func TestDeleteEvent(t *testing.T) {
	var path string
	client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, http.MethodDelete, request.Method)
		path = request.URL.Path
		writer.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, client.DeleteEvent(context.Background(), "primary", "evt-1"))
	assert.True(t, strings.HasSuffix(path, "/calendars/primary/events/evt-1"), path)
}

func TestIsUnauthorized(t *testing.T) {
	assert.True(t, IsUnauthorized(&googleapi.Error{Code: http.StatusUnauthorized}))
	assert.False(t, IsUnauthorized(&googleapi.Error{Code: http.StatusNotFound}))
	assert.True(t, IsUnauthorized(&oauth2.RetrieveError{ErrorCode: "invalid_grant"}))
	assert.True(t, IsUnauthorized(errors.New("request failed with status 401")))
	assert.False(t, IsUnauthorized(errors.New("connection reset")))
}

type tokenStoreStub struct {
	saved []string
}

func (stub *tokenStoreStub) SaveGoogleToken(userID uint, accessToken string, refreshToken string, expiry *time.Time) error {
	stub.saved = append(stub.saved, accessToken)
	return nil
}

type staticTokenSource struct {
	tokens []*oauth2.Token
	index  int
}

func (source *staticTokenSource) Token() (*oauth2.Token, error) {
	token := source.tokens[source.index]
	if source.index < len(source.tokens)-1 {
		source.index++
	}
	return token, nil
}

func TestPersistingTokenSourceSavesOnlyChangedTokens(t *testing.T) {
	store := &tokenStoreStub{}
	source := &persistingTokenSource{
		base: &staticTokenSource{tokens: []*oauth2.Token{
			{AccessToken: "initial"},
			{AccessToken: "refreshed", Expiry: time.Now().Add(time.Hour)},
			{AccessToken: "refreshed", Expiry: time.Now().Add(time.Hour)},
		}},
		store:  store,
		userID: 3,
		last:   "initial",
	}

	for range 3 {
		_, err := source.Token()
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"refreshed"}, store.saved)
}

func TestClientForRequiresLinkedAccount(t *testing.T) {
	connector := NewConnector(OAuthSettings{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost/cb"}, &tokenStoreStub{}, time.UTC)
	_, err := connector.ClientFor(context.Background(), models.User{ID: 1})
	assert.ErrorIs(t, err, ErrNotConnected)

	url := connector.AuthCodeURL("state-123")
	assert.Contains(t, url, "state=state-123")
	assert.Contains(t, url, "access_type=offline")
}
