package api

import (
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) SetLanguage(c *fiber.Ctx) error {
	language := handler.i18n.NormalizeLanguage(c.Params("lang"))
	handler.setLanguageCookie(c, language)
	return c.Redirect(sanitizeRedirectPath(c.Query("next"), "/"), fiber.StatusSeeOther)
}

func (handler *Handler) ShowPrivacyPage(c *fiber.Ctx) error {
	messages := currentMessages(c)
	user := handler.optionalAuthenticatedUser(c)
	backPath := "/login"
	if user != nil {
		backPath = sanitizeRedirectPath(c.Query("back"), "/")
	}
	return handler.render(c, "privacy", fiber.Map{
		"Title":       localizedPageTitle(messages, "meta.title.privacy", "Daybook | Privacy"),
		"CurrentUser": user,
		"BackPath":    backPath,
	})
}

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	if isAPIPath(c.Path()) || acceptsJSON(c) {
		return apiError(c, fiber.StatusNotFound, "not found")
	}

	user := handler.optionalAuthenticatedUser(c)
	primaryPath := "/login"
	if user != nil {
		c.Locals(contextUserKey, user)
		primaryPath = "/"
	}

	c.Status(fiber.StatusNotFound)
	return handler.render(c, "not_found", fiber.Map{
		"Title":       localizedPageTitle(currentMessages(c), "meta.title.not_found", "Daybook | Page Not Found"),
		"CurrentUser": user,
		"PrimaryPath": primaryPath,
	})
}
