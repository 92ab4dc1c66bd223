package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/daybook/internal/services"
)

func (handler *Handler) ListHabits(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	habits, err := handler.habits.ListHabits(user.ID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(habits)
}

func (handler *Handler) CreateHabit(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	payload := habitInput{}
	if err := handler.bindAndValidate(c, &payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	habit, err := handler.habits.CreateHabit(user.ID, payload.Name, payload.Frequency, payload.Color)
	if err != nil {
		return handler.respondError(c, err)
	}
	handler.months.InvalidateUser(user.ID)
	return c.Status(fiber.StatusCreated).JSON(habit)
}

func (handler *Handler) UpdateHabit(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	habitID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	payload := habitPatchInput{}
	if err := handler.bindAndValidate(c, &payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	if payload.Name == nil && payload.Frequency == nil {
		return apiError(c, fiber.StatusBadRequest, "nothing to update")
	}

	if payload.Name != nil {
		if err := handler.habits.RenameHabit(user.ID, habitID, strings.TrimSpace(*payload.Name)); err != nil {
			return handler.respondError(c, err)
		}
	}
	if payload.Frequency != nil {
		if err := handler.habits.UpdateFrequency(user.ID, habitID, payload.Frequency); err != nil {
			return handler.respondError(c, err)
		}
	}
	handler.months.InvalidateUser(user.ID)
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) DeleteHabit(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	habitID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	if err := handler.habits.DeleteHabit(user.ID, habitID); err != nil {
		return handler.respondError(c, err)
	}
	handler.months.InvalidateUser(user.ID)
	return c.JSON(fiber.Map{"ok": true})
}

// ToggleHabit records or clears the completion of one habit on one day. The
// cached month is updated optimistically.
func (handler *Handler) ToggleHabit(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	habitID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	payload := toggleInput{}
	if err := handler.bindAndValidate(c, &payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	dateKey := payload.Date
	if dateKey == "" {
		dateKey = services.DateKey(handler.now(), handler.location)
	}

	if err := handler.months.ForUser(user.ID).ToggleHabit(c.UserContext(), habitID, dateKey, payload.Completed); err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "habit_id": habitID, "date": dateKey, "completed": payload.Completed})
}

func (handler *Handler) GetHabitDayLogs(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	dateKey := c.Query("date")
	if dateKey == "" {
		dateKey = services.DateKey(handler.now(), handler.location)
	}
	if _, err := services.ParseDateKey(dateKey, handler.location); err != nil {
		return handler.respondError(c, err)
	}

	completed, err := handler.habits.DayLogs(user.ID, dateKey)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"date": dateKey, "completed_habit_ids": completed})
}

func (handler *Handler) ShowHabitsPage(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	habits, err := handler.habits.ListHabits(user.ID)
	if err != nil {
		return handler.respondError(c, err)
	}
	settings, err := handler.settings.Load(user.ID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return handler.render(c, "habits", fiber.Map{
		"Title":    localizedPageTitle(currentMessages(c), "meta.title.habits", "Daybook | Habits"),
		"Habits":   habits,
		"Weekdays": []int{1, 2, 3, 4, 5, 6, 7},
		"Theme":    settings.Theme,
	})
}
