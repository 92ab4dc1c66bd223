package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/daybook/internal/services"
)

func (handler *Handler) ListTasks(c *fiber.Ctx) error {
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

	tasks, err := handler.daily.TasksForDay(user.ID, dateKey)
	if err != nil {
		return handler.respondError(c, err)
	}
	pending, completed := services.PartitionTasks(tasks, dateKey)
	return c.JSON(fiber.Map{"date": dateKey, "pending": pending, "completed": completed})
}

func (handler *Handler) CreateTask(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	payload := taskInput{}
	if err := handler.bindAndValidate(c, &payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	task, err := handler.daily.CreateTask(user.ID, payload.Date, payload.Title)
	if err != nil {
		return handler.respondError(c, err)
	}
	handler.months.InvalidateUser(user.ID)
	return c.Status(fiber.StatusCreated).JSON(task)
}

func (handler *Handler) ToggleTask(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	payload := toggleInput{}
	if err := handler.bindAndValidate(c, &payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := handler.months.ForUser(user.ID).ToggleTask(c.UserContext(), taskID, payload.Completed); err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "task_id": taskID, "completed": payload.Completed})
}

func (handler *Handler) DeleteTask(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	if err := handler.daily.DeleteTask(user.ID, taskID); err != nil {
		return handler.respondError(c, err)
	}
	handler.months.InvalidateUser(user.ID)
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) GetNote(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	dateKey := c.Params("date")
	if _, err := services.ParseDateKey(dateKey, handler.location); err != nil {
		return handler.respondError(c, err)
	}
	content, err := handler.daily.NoteForDay(user.ID, dateKey)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"date": dateKey, "content": content})
}

func (handler *Handler) SaveNote(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	dateKey := c.Params("date")
	if _, err := services.ParseDateKey(dateKey, handler.location); err != nil {
		return handler.respondError(c, err)
	}
	payload := noteInput{}
	if err := handler.bindAndValidate(c, &payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	note, err := handler.daily.SaveNote(user.ID, dateKey, payload.Content)
	if err != nil {
		return handler.respondError(c, err)
	}
	handler.months.InvalidateUser(user.ID)
	return c.JSON(note)
}
