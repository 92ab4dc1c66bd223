package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/daybook/internal/models"
	"github.com/terraincognita07/daybook/internal/services"
)

const (
	settingsSuccessSaved    = "settings saved"
	settingsSuccessPassword = "password changed"
)

func (handler *Handler) GetSettings(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	settings, err := handler.settings.Load(user.ID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(settings)
}

func (handler *Handler) SaveSettings(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	payload := settingsInput{}
	if err := handler.bindAndValidate(c, &payload); err != nil {
		return handler.respondSettingsError(c, fiber.StatusBadRequest, err.Error())
	}
	saved, err := handler.settings.Save(user.ID, models.AppSettings{
		ShowStats:    payload.ShowStats,
		ShowCalendar: payload.ShowCalendar,
		ShowSports:   payload.ShowSports,
		Theme:        payload.Theme,
	})
	if err != nil {
		return handler.respondError(c, err)
	}
	if acceptsJSON(c) {
		return c.JSON(saved)
	}
	handler.setFlashCookie(c, FlashPayload{SettingsSuccess: settingsSuccessSaved})
	return c.Redirect("/settings", fiber.StatusSeeOther)
}

func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	payload := changePasswordInput{}
	if err := handler.bindAndValidate(c, &payload); err != nil {
		return handler.respondSettingsError(c, fiber.StatusBadRequest, "invalid input")
	}

	err := handler.auth.ChangePassword(user.ID, payload.CurrentPassword, payload.NewPassword, payload.ConfirmPassword)
	switch {
	case errors.Is(err, services.ErrAuthCurrentPassword):
		return handler.respondSettingsError(c, fiber.StatusBadRequest, "current password invalid")
	case errors.Is(err, services.ErrAuthPasswordMismatch):
		return handler.respondSettingsError(c, fiber.StatusBadRequest, "password mismatch")
	case errors.Is(err, services.ErrWeakPassword):
		return handler.respondSettingsError(c, fiber.StatusBadRequest, "weak password")
	case errors.Is(err, services.ErrAuthPasswordUnchanged):
		return handler.respondSettingsError(c, fiber.StatusBadRequest, "new password must differ from the current one")
	case err != nil:
		return handler.respondError(c, err)
	}

	handler.logger.Info("password changed", "user_id", user.ID)
	if acceptsJSON(c) {
		return c.JSON(fiber.Map{"ok": true})
	}
	handler.setFlashCookie(c, FlashPayload{SettingsSuccess: settingsSuccessPassword})
	return c.Redirect("/settings", fiber.StatusSeeOther)
}

func (handler *Handler) respondSettingsError(c *fiber.Ctx, status int, message string) error {
	if acceptsJSON(c) {
		return apiError(c, status, message)
	}
	handler.setFlashCookie(c, FlashPayload{SettingsError: message})
	return c.Redirect("/settings", fiber.StatusSeeOther)
}

func settingsSuccessTranslationKey(message string) string {
	switch message {
	case settingsSuccessSaved:
		return "settings.success.saved"
	case settingsSuccessPassword:
		return "settings.success.password"
	default:
		return ""
	}
}

// ShowSettingsPage lists the linked calendars when Google is reachable. An
// unreachable or expired account only hides the list.
func (handler *Handler) ShowSettingsPage(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	settings, err := handler.settings.Load(user.ID)
	if err != nil {
		return handler.respondError(c, err)
	}
	flash := handler.popFlashCookie(c)

	var calendars []services.CalendarConfig
	connected := user.HasCalendarToken()
	if connected {
		if gateway, err := handler.calendarGateway(c, user); err == nil {
			calendars, err = handler.calendar.ListCalendars(c.UserContext(), user.ID, gateway)
			if err != nil {
				handler.logger.Warn("list calendars for settings page", "user_id", user.ID, "err", err)
			}
		}
	}

	return handler.render(c, "settings", fiber.Map{
		"Title":              localizedPageTitle(currentMessages(c), "meta.title.settings", "Daybook | Settings"),
		"Settings":           settings,
		"Theme":              settings.Theme,
		"ErrorKey":           authErrorTranslationKey(flash.SettingsError),
		"SuccessKey":         settingsSuccessTranslationKey(flash.SettingsSuccess),
		"MustChangePassword": user.MustChangePassword,
		"Connected":          connected,
		"GoogleEnabled":      handler.google != nil,
		"Calendars":          calendars,
	})
}
