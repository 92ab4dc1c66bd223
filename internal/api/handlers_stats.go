package api

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/daybook/internal/services"
)

type progressPayload struct {
	Date   string  `json:"date" form:"date" validate:"omitempty,datekey"`
	Weight float64 `json:"weight" form:"weight" validate:"gt=0,lt=1000"`
	Notes  string  `json:"notes" form:"notes" validate:"max=2000"`
}

func (handler *Handler) StatsSummary(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	summary, err := handler.stats.Summary(user.ID, handler.now())
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(summary)
}

func (handler *Handler) ProgressHistory(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	history, err := handler.stats.ProgressHistory(user.ID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(history)
}

// AddProgress accepts JSON or a multipart form with an optional "photo".
func (handler *Handler) AddProgress(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	payload := progressPayload{}
	if err := handler.bindAndValidate(c, &payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	input := services.ProgressInput{Date: payload.Date, Weight: payload.Weight, Notes: payload.Notes}

	var closer io.Closer
	if isMultipart(c) {
		upload, fileCloser, err := formUpload(c, "photo")
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, err.Error())
		}
		input.Upload, closer = upload, fileCloser
	}
	defer closeUpload(closer)

	entry, err := handler.stats.AddProgress(c.UserContext(), user.ID, input, handler.now())
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (handler *Handler) DeleteProgress(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	entryID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	if err := handler.stats.DeleteProgress(user.ID, entryID); err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) StrengthHistory(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	exerciseID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	points, err := handler.stats.StrengthHistory(user.ID, exerciseID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(points)
}

func (handler *Handler) ShowStatsPage(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	summary, err := handler.stats.Summary(user.ID, handler.now())
	if err != nil {
		return handler.respondError(c, err)
	}
	history, err := handler.stats.ProgressHistory(user.ID)
	if err != nil {
		return handler.respondError(c, err)
	}
	exercises, err := handler.sport.ListExercises(user.ID)
	if err != nil {
		return handler.respondError(c, err)
	}
	settings, err := handler.settings.Load(user.ID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return handler.render(c, "stats", fiber.Map{
		"Title":     localizedPageTitle(currentMessages(c), "meta.title.stats", "Daybook | Stats"),
		"Summary":   summary,
		"Progress":  history,
		"Exercises": exercises,
		"Today":     services.DateKey(handler.now(), handler.location),
		"Theme":     settings.Theme,
	})
}
