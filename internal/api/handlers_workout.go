package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/daybook/internal/workout"
)

type activeWorkoutResponse struct {
	Active         bool             `json:"active"`
	Session        *workout.Session `json:"session,omitempty"`
	ElapsedSeconds int64            `json:"elapsed_seconds"`
	DoneCount      int              `json:"done_count"`
}

func (handler *Handler) activeWorkout(userID uint) (activeWorkoutResponse, error) {
	session, err := handler.workouts.Active(userID)
	if err != nil {
		return activeWorkoutResponse{}, err
	}
	if session == nil {
		return activeWorkoutResponse{}, nil
	}
	return activeWorkoutResponse{
		Active:         true,
		Session:        session,
		ElapsedSeconds: int64(session.Elapsed(time.Now()) / time.Second),
		DoneCount:      session.DoneCount(),
	}, nil
}

func (handler *Handler) GetActiveWorkout(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	response, err := handler.activeWorkout(user.ID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(response)
}

func (handler *Handler) StartWorkout(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	payload := workoutStartInput{}
	if err := handler.bindAndValidate(c, &payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	session, err := handler.workouts.Start(user.ID, payload.RoutineID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

func (handler *Handler) UpdateWorkoutLog(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil || index < 0 {
		return apiError(c, fiber.StatusBadRequest, "invalid index")
	}
	update := workout.LogUpdate{}
	if err := c.BodyParser(&update); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if update.Weight != nil && *update.Weight < 0 {
		return apiError(c, fiber.StatusBadRequest, "invalid weight")
	}
	session, err := handler.workouts.UpdateLog(user.ID, index, update)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(session)
}

// confirmationRequired answers an unconfirmed cancel or finish with the
// prompt the client should show before retrying with confirm=true.
func confirmationRequired(c *fiber.Ctx, prompt string) error {
	return c.Status(fiber.StatusConflict).JSON(fiber.Map{
		"error":   workout.ErrConfirmationRequired.Error(),
		"confirm": prompt,
	})
}

func (handler *Handler) readConfirmation(c *fiber.Ctx) bool {
	payload := confirmInput{}
	if len(c.Body()) > 0 {
		_ = c.BodyParser(&payload)
	}
	return payload.Confirm || parseBoolValue(c.Query("confirm"))
}

func (handler *Handler) CancelWorkout(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	err := handler.workouts.Cancel(user.ID, handler.readConfirmation(c))
	if errors.Is(err, workout.ErrConfirmationRequired) {
		return confirmationRequired(c, workout.CancelPrompt())
	}
	if err != nil {
		return handler.respondError(c, err)
	}
	return redirectOrJSON(c, "/sports")
}

func (handler *Handler) FinishWorkout(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	record, err := handler.workouts.Finish(user.ID, handler.readConfirmation(c))
	if errors.Is(err, workout.ErrConfirmationRequired) {
		session, activeErr := handler.workouts.Active(user.ID)
		if activeErr != nil {
			return handler.respondError(c, activeErr)
		}
		if session == nil {
			return handler.respondError(c, workout.ErrNoActiveSession)
		}
		return confirmationRequired(c, workout.FinishPrompt(session))
	}
	if err != nil {
		return handler.respondError(c, err)
	}

	if acceptsJSON(c) {
		return c.JSON(record)
	}
	return c.Redirect("/sports", fiber.StatusSeeOther)
}

func (handler *Handler) ShowSessionPage(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	active, err := handler.activeWorkout(user.ID)
	if err != nil {
		return handler.respondError(c, err)
	}
	if !active.Active {
		return c.Redirect("/sports/routines", fiber.StatusSeeOther)
	}
	settings, err := handler.settings.Load(user.ID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return handler.render(c, "session", fiber.Map{
		"Title":   localizedPageTitle(currentMessages(c), "meta.title.session", "Daybook | Workout"),
		"Workout": active,
		"Theme":   settings.Theme,
	})
}
