package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/daybook/internal/services"
)

const postLoginPath = "/"

func (handler *Handler) ShowLoginPage(c *fiber.Ctx) error {
	if user := handler.optionalAuthenticatedUser(c); user != nil {
		return c.Redirect(postLoginPath, fiber.StatusSeeOther)
	}
	flash := handler.popFlashCookie(c)
	return handler.render(c, "login", fiber.Map{
		"Title":     localizedPageTitle(currentMessages(c), "meta.title.login", "Daybook | Sign in"),
		"ErrorKey":  authErrorTranslationKey(flash.AuthError),
		"Email":     flash.LoginEmail,
	})
}

func (handler *Handler) ShowRegisterPage(c *fiber.Ctx) error {
	if user := handler.optionalAuthenticatedUser(c); user != nil {
		return c.Redirect(postLoginPath, fiber.StatusSeeOther)
	}
	flash := handler.popFlashCookie(c)
	return handler.render(c, "register", fiber.Map{
		"Title":    localizedPageTitle(currentMessages(c), "meta.title.register", "Daybook | Create account"),
		"ErrorKey": authErrorTranslationKey(flash.AuthError),
		"Email":    flash.RegisterEmail,
	})
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	credentials := credentialsInput{}
	if err := handler.bindAndValidate(c, &credentials); err != nil {
		return handler.respondAuthError(c, fiber.StatusBadRequest, "invalid input")
	}

	user, err := handler.auth.Register(credentials.Email, credentials.Password, credentials.ConfirmPassword, time.Now().In(handler.location))
	switch {
	case errors.Is(err, services.ErrAuthCredentialsInvalid):
		return handler.respondAuthError(c, fiber.StatusBadRequest, "invalid input")
	case errors.Is(err, services.ErrAuthPasswordMismatch):
		return handler.respondAuthError(c, fiber.StatusBadRequest, "password mismatch")
	case errors.Is(err, services.ErrWeakPassword):
		return handler.respondAuthError(c, fiber.StatusBadRequest, "weak password")
	case errors.Is(err, services.ErrAuthEmailExists):
		return handler.respondAuthError(c, fiber.StatusConflict, "email already exists")
	case err != nil:
		return handler.respondError(c, err)
	}

	if err := handler.setAuthCookie(c, &user, true); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	if acceptsJSON(c) {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "user": user})
	}
	return c.Redirect(postLoginPath, fiber.StatusSeeOther)
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	limiterKey := requestLimiterKey(c)
	now := time.Now()
	if handler.loginLimiter.tooManyRecent(limiterKey, now) {
		return handler.respondAuthError(c, fiber.StatusTooManyRequests, "too many login attempts")
	}

	credentials := credentialsInput{}
	if err := handler.bindAndValidate(c, &credentials); err != nil {
		handler.loginLimiter.addFailure(limiterKey, now)
		return handler.respondAuthError(c, fiber.StatusBadRequest, "invalid input")
	}
	credentials.RememberMe = credentials.RememberMe || parseBoolValue(c.FormValue("remember_me"))

	user, err := handler.auth.Authenticate(credentials.Email, credentials.Password)
	if err != nil {
		if errors.Is(err, services.ErrAuthCredentialsInvalid) {
			handler.loginLimiter.addFailure(limiterKey, now)
			return handler.respondAuthError(c, fiber.StatusUnauthorized, "invalid credentials")
		}
		return handler.respondError(c, err)
	}
	handler.loginLimiter.reset(limiterKey)

	if err := handler.setAuthCookie(c, &user, credentials.RememberMe); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	if user.MustChangePassword {
		if acceptsJSON(c) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "password change required"})
		}
		return c.Redirect("/settings", fiber.StatusSeeOther)
	}
	return redirectOrJSON(c, postLoginPath)
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	if user, ok := currentUser(c); ok {
		handler.months.Drop(user.ID)
	}
	handler.clearAuthCookie(c)
	return redirectOrJSON(c, "/login")
}

// respondAuthError sends browser form posts back to the page they came from
// with the error in a flash cookie. JSON clients get the error body.
func (handler *Handler) respondAuthError(c *fiber.Ctx, status int, message string) error {
	if acceptsJSON(c) {
		return apiError(c, status, message)
	}

	flash := FlashPayload{AuthError: message}
	switch c.Path() {
	case "/api/auth/register":
		flash.RegisterEmail = c.FormValue("email")
		handler.setFlashCookie(c, flash)
		return c.Redirect("/register", fiber.StatusSeeOther)
	default:
		flash.LoginEmail = c.FormValue("email")
		handler.setFlashCookie(c, flash)
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
}

func authErrorTranslationKey(message string) string {
	switch strings.ToLower(strings.TrimSpace(message)) {
	case "":
		return ""
	case "invalid input":
		return "auth.error.invalid_input"
	case "invalid credentials":
		return "auth.error.invalid_credentials"
	case "password mismatch":
		return "auth.error.password_mismatch"
	case "weak password":
		return "auth.error.weak_password"
	case "email already exists":
		return "auth.error.email_exists"
	case "too many login attempts":
		return "auth.error.too_many_attempts"
	case "current password invalid":
		return "settings.error.current_password"
	case "new password must differ from the current one":
		return "settings.error.password_unchanged"
	default:
		return "auth.error.generic"
	}
}
