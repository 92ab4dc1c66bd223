package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/daybook/internal/db"
	"github.com/terraincognita07/daybook/internal/gcal"
	"github.com/terraincognita07/daybook/internal/i18n"
	"github.com/terraincognita07/daybook/internal/logger"
	"github.com/terraincognita07/daybook/internal/models"
	"github.com/terraincognita07/daybook/internal/services"
	"github.com/terraincognita07/daybook/internal/workout"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "StrongPass1"

type testEnv struct {
	app      *fiber.App
	handler  *Handler
	database *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "daybook-test.db"), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	i18nManager, err := i18n.NewManager(i18n.LangEN)
	if err != nil {
		t.Fatalf("init i18n: %v", err)
	}
	sessions, err := workout.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("init session store: %v", err)
	}

	handler, err := NewHandler(database, Options{
		SecretKey:    "test-secret-key-0123456789abcdef",
		Location:     time.UTC,
		I18n:         i18nManager,
		Logger:       logger.Discard(),
		SessionStore: sessions,
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}
	handler.auth.WithHashCost(bcrypt.MinCost)
	t.Cleanup(handler.Shutdown)

	app := fiber.New()
	app.Use(handler.LanguageMiddleware)
	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return &testEnv{app: app, handler: handler, database: database}
}

// stubGateway serves canned calendar data; listErr is returned by every
// ListEvents call when set.
type stubGateway struct {
	calendars []gcal.CalendarEntry
	events    []gcal.Event
	listErr   error
}

func (gateway *stubGateway) ListCalendars(context.Context) ([]gcal.CalendarEntry, error) {
	return gateway.calendars, nil
}

func (gateway *stubGateway) ListEvents(context.Context, string, time.Time, time.Time) ([]gcal.Event, error) {
	if gateway.listErr != nil {
		return nil, gateway.listErr
	}
	return gateway.events, nil
}

func (gateway *stubGateway) CreateEvent(_ context.Context, _ string, input gcal.NewEvent) (gcal.Event, error) {
	return gcal.Event{ID: "created", Title: input.Title, Start: input.Start, AllDay: input.AllDay}, nil
}

func (gateway *stubGateway) DeleteEvent(context.Context, string, string) error {
	return nil
}

func (env *testEnv) useGateway(gateway services.CalendarGateway) {
	env.handler.gatewayFor = func(context.Context, models.User) (services.CalendarGateway, error) {
		return gateway, nil
	}
}

func (env *testEnv) do(t *testing.T, method string, target string, body any, cookie string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	request := httptest.NewRequest(method, target, reader)
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, target, err)
	}
	t.Cleanup(func() {
		_ = response.Body.Close()
	})
	return response
}

func (env *testEnv) registerUser(t *testing.T, email string) string {
	t.Helper()

	response := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email":            email,
		"password":         testPassword,
		"confirm_password": testPassword,
	}, "")
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected register status 201, got %d", response.StatusCode)
	}
	return authCookieHeader(t, response)
}

func authCookieHeader(t *testing.T, response *http.Response) string {
	t.Helper()
	cookie := responseCookie(response.Cookies(), authCookieName)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("auth cookie is missing in response")
	}
	return cookie.Name + "=" + cookie.Value
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func decodeJSON(t *testing.T, response *http.Response, target any) {
	t.Helper()
	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func readAPIError(t *testing.T, response *http.Response) string {
	t.Helper()
	payload := map[string]any{}
	decodeJSON(t, response, &payload)
	message, _ := payload["error"].(string)
	return message
}

func todayKey() string {
	return time.Now().UTC().Format(models.DateLayout)
}

func readBody(t *testing.T, response *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return string(body)
}
