package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/daybook/internal/gcal"
	"github.com/terraincognita07/daybook/internal/media"
	"github.com/terraincognita07/daybook/internal/monthcache"
	"github.com/terraincognita07/daybook/internal/services"
	"github.com/terraincognita07/daybook/internal/workout"
)

const googleLoginPath = "/auth/google/login"

var errInvalidID = errors.New("invalid id")

type errorStatus struct {
	err    error
	status int
}

// serviceErrorStatuses is checked in order; the first match wins and its
// sentinel text becomes the response message.
var serviceErrorStatuses = []errorStatus{
	{errInvalidID, fiber.StatusBadRequest},
	{services.ErrInvalidDate, fiber.StatusBadRequest},

	{services.ErrHabitNotFound, fiber.StatusNotFound},
	{services.ErrTaskNotFound, fiber.StatusNotFound},
	{services.ErrExerciseNotFound, fiber.StatusNotFound},
	{services.ErrRoutineNotFound, fiber.StatusNotFound},
	{services.ErrProgressNotFound, fiber.StatusNotFound},
	{workout.ErrNoActiveSession, fiber.StatusNotFound},

	{services.ErrHabitNameRequired, fiber.StatusBadRequest},
	{services.ErrHabitFrequencyInvalid, fiber.StatusBadRequest},
	{services.ErrHabitFutureCompletion, fiber.StatusBadRequest},
	{services.ErrTaskTitleRequired, fiber.StatusBadRequest},
	{services.ErrCalendarIDRequired, fiber.StatusBadRequest},
	{services.ErrEventTitleRequired, fiber.StatusBadRequest},
	{services.ErrCalendarColorFormat, fiber.StatusBadRequest},
	{services.ErrExerciseNameRequired, fiber.StatusBadRequest},
	{services.ErrExerciseWeightInvalid, fiber.StatusBadRequest},
	{services.ErrRoutineNameRequired, fiber.StatusBadRequest},
	{services.ErrRoutineExerciseUnknown, fiber.StatusBadRequest},
	{services.ErrWorkoutEmpty, fiber.StatusBadRequest},
	{services.ErrProgressWeightInvalid, fiber.StatusBadRequest},
	{services.ErrSettingsThemeInvalid, fiber.StatusBadRequest},
	{media.ErrUnsupportedType, fiber.StatusBadRequest},
	{services.ErrMediaUploadFailed, fiber.StatusBadGateway},
	{workout.ErrRoutineEmpty, fiber.StatusBadRequest},
	{workout.ErrLogIndexOutOfRange, fiber.StatusBadRequest},
	{workout.ErrSessionActive, fiber.StatusConflict},

	{services.ErrAuthPasswordMismatch, fiber.StatusBadRequest},
	{services.ErrWeakPassword, fiber.StatusBadRequest},
	{services.ErrAuthCurrentPassword, fiber.StatusBadRequest},
	{services.ErrAuthPasswordUnchanged, fiber.StatusBadRequest},
	{services.ErrAuthCredentialsInvalid, fiber.StatusUnauthorized},
	{services.ErrAuthEmailExists, fiber.StatusConflict},

	{gcal.ErrNotConnected, fiber.StatusConflict},
	{monthcache.ErrMonthChanged, fiber.StatusConflict},
}

// respondError maps service and gateway errors onto HTTP responses. Expired
// Google credentials send the user back through the consent flow.
func (handler *Handler) respondError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gcal.ErrTokenExpired) {
		if !isAPIPath(c.Path()) {
			return c.Redirect(googleLoginPath, fiber.StatusSeeOther)
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":      "calendar reauth required",
			"reauth_url": googleLoginPath,
		})
	}

	for _, candidate := range serviceErrorStatuses {
		if errors.Is(err, candidate.err) {
			return apiError(c, candidate.status, candidate.err.Error())
		}
	}

	handler.logger.Error("request failed", "method", c.Method(), "path", c.Path(), "err", err)
	return apiError(c, fiber.StatusInternalServerError, "internal error")
}
