package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/daybook/internal/gcal"
	"github.com/terraincognita07/daybook/internal/models"
	"github.com/terraincognita07/daybook/internal/security"
	"github.com/terraincognita07/daybook/internal/services"
)

const (
	oauthStateAlphabet      = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	oauthStateLength        = 32
	defaultEventLength      = time.Hour
	calendarEventTimeLayout = "15:04"
)

func (handler *Handler) calendarGateway(c *fiber.Ctx, user *models.User) (services.CalendarGateway, error) {
	return handler.gatewayFor(c.UserContext(), *user)
}

func (handler *Handler) ListCalendars(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	gateway, err := handler.calendarGateway(c, user)
	if err != nil {
		return handler.respondError(c, err)
	}
	calendars, err := handler.calendar.ListCalendars(c.UserContext(), user.ID, gateway)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(calendars)
}

func (handler *Handler) SaveCalendarSetting(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	payload := calendarSettingInput{}
	if err := handler.bindAndValidate(c, &payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	config := services.CalendarConfig{
		GoogleID:  c.Params("googleID"),
		Name:      payload.Name,
		Color:     payload.Color,
		IsVisible: payload.IsVisible,
	}
	if err := handler.calendar.SaveSetting(user.ID, config); err != nil {
		return handler.respondError(c, err)
	}
	handler.months.InvalidateUser(user.ID)
	return c.JSON(config)
}

// ListEvents serves the events held by the month cache, so the calendar is
// only queried when the month batch runs.
func (handler *Handler) ListEvents(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	window, err := handler.resolveMonth(c)
	if err != nil {
		return handler.respondError(c, err)
	}
	payload, err := handler.monthPayload(c, user.ID, window)
	if err != nil {
		return handler.respondError(c, err)
	}
	if dateKey := c.Query("date"); dateKey != "" {
		return c.JSON(services.EventsForDay(payload.Events, dateKey))
	}
	return c.JSON(payload.Events)
}

func (handler *Handler) CreateEvent(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	payload := eventInput{}
	if err := handler.bindAndValidate(c, &payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	input, err := handler.eventFromPayload(payload)
	if err != nil {
		return handler.respondError(c, err)
	}

	gateway, err := handler.calendarGateway(c, user)
	if err != nil {
		return handler.respondError(c, err)
	}
	event, err := handler.calendar.CreateEvent(c.UserContext(), gateway, input)
	if err != nil {
		return handler.respondError(c, err)
	}
	handler.months.InvalidateUser(user.ID)
	return c.Status(fiber.StatusCreated).JSON(event)
}

func (handler *Handler) eventFromPayload(payload eventInput) (services.EventInput, error) {
	day, err := services.ParseDateKey(payload.Date, handler.location)
	if err != nil {
		return services.EventInput{}, err
	}
	input := services.EventInput{
		CalendarID: payload.CalendarID,
		Title:      payload.Title,
	}
	if strings.TrimSpace(payload.Time) == "" {
		input.AllDay = true
		input.Start = day
		input.End = day.AddDate(0, 0, 1)
		return input, nil
	}

	clock, err := time.ParseInLocation(calendarEventTimeLayout, payload.Time, handler.location)
	if err != nil {
		return services.EventInput{}, services.ErrInvalidDate
	}
	input.Start = time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, handler.location)
	length := defaultEventLength
	if payload.DurationMinutes > 0 {
		length = time.Duration(payload.DurationMinutes) * time.Minute
	}
	input.End = input.Start.Add(length)
	return input, nil
}

func (handler *Handler) DeleteEvent(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	calendarID := c.Query("calendar_id", models.PrimaryCalendarID)
	gateway, err := handler.calendarGateway(c, user)
	if err != nil {
		return handler.respondError(c, err)
	}
	if err := handler.calendar.DeleteEvent(c.UserContext(), gateway, calendarID, c.Params("eventID")); err != nil {
		return handler.respondError(c, err)
	}
	handler.months.InvalidateUser(user.ID)
	return c.JSON(fiber.Map{"ok": true})
}

// GoogleLogin starts the consent flow. The state value is kept in a short
// lived cookie and checked on callback.
func (handler *Handler) GoogleLogin(c *fiber.Ctx) error {
	if handler.google == nil {
		return handler.respondError(c, gcal.ErrNotConnected)
	}
	state, err := security.RandomString(oauthStateLength, oauthStateAlphabet)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to start google login")
	}
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Path:     "/auth/google",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  time.Now().Add(10 * time.Minute),
	})
	return c.Redirect(handler.google.AuthCodeURL(state), fiber.StatusSeeOther)
}

func (handler *Handler) GoogleCallback(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	if handler.google == nil {
		return handler.respondError(c, gcal.ErrNotConnected)
	}

	expected := c.Cookies(oauthStateCookieName)
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookieName,
		Value:    "",
		Path:     "/auth/google",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	if expected == "" || c.Query("state") != expected {
		return apiError(c, fiber.StatusBadRequest, "invalid oauth state")
	}
	if reason := c.Query("error"); reason != "" {
		handler.logger.Warn("google consent declined", "user_id", user.ID, "reason", reason)
		return c.Redirect("/settings", fiber.StatusSeeOther)
	}

	if err := handler.google.Exchange(c.UserContext(), user.ID, c.Query("code")); err != nil {
		handler.logger.Error("google token exchange failed", "user_id", user.ID, "err", err)
		return apiError(c, fiber.StatusBadGateway, "google token exchange failed")
	}
	handler.months.InvalidateUser(user.ID)
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (handler *Handler) DisconnectCalendar(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if err := handler.repositories.Users.ClearGoogleToken(user.ID); err != nil {
		return handler.respondError(c, err)
	}
	handler.months.InvalidateUser(user.ID)
	return c.JSON(fiber.Map{"ok": true})
}
