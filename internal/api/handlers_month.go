package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/daybook/internal/models"
	"github.com/terraincognita07/daybook/internal/services"
)

type monthResponse struct {
	Month     string                  `json:"month"`
	From      string                  `json:"from"`
	To        string                  `json:"to"`
	Habits    []models.Habit          `json:"habits"`
	Logs      []models.HabitLog       `json:"habit_logs"`
	Tasks     []models.Task           `json:"tasks"`
	Notes     []models.DayNote        `json:"notes"`
	Events    []models.CalendarEvent  `json:"events"`
	Days      []services.MonthGridDay `json:"days"`
	FetchedAt time.Time               `json:"fetched_at"`
}

func (handler *Handler) now() time.Time {
	return time.Now().In(handler.location)
}

// resolveMonth reads ?month=YYYY-MM and defaults to the current month.
func (handler *Handler) resolveMonth(c *fiber.Ctx) (services.MonthWindow, error) {
	raw := c.Query("month")
	if raw == "" {
		return services.NewMonthWindow(handler.now(), handler.location), nil
	}
	return services.ParseMonthKey(raw, handler.location)
}

func (handler *Handler) monthPayload(c *fiber.Ctx, userID uint, window services.MonthWindow) (monthResponse, error) {
	cache := handler.months.ForUser(userID)
	ctx := c.UserContext()
	snapshot, err := cache.SnapshotFor(ctx, window.Start)
	if err != nil {
		return monthResponse{}, err
	}
	days := services.BuildMonthGrid(snapshot, handler.now(), handler.location)
	return monthResponse{
		Month:     snapshot.Window.Key(),
		From:      snapshot.Window.FromKey(),
		To:        snapshot.Window.ToKey(),
		Habits:    snapshot.Habits,
		Logs:      snapshot.Logs,
		Tasks:     snapshot.Tasks,
		Notes:     snapshot.Notes,
		Events:    snapshot.Events,
		Days:      days,
		FetchedAt: snapshot.FetchedAt,
	}, nil
}

func (handler *Handler) GetMonth(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	window, err := handler.resolveMonth(c)
	if err != nil {
		return handler.respondError(c, err)
	}
	if parseBoolValue(c.Query("refresh")) {
		handler.months.ForUser(user.ID).Invalidate()
	}

	payload, err := handler.monthPayload(c, user.ID, window)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(payload)
}

// RefreshMonth re-runs the whole month batch for the month currently held by
// the cache, or for ?month when given.
func (handler *Handler) RefreshMonth(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	cache := handler.months.ForUser(user.ID)
	window := cache.Window()
	if c.Query("month") != "" {
		parsed, err := handler.resolveMonth(c)
		if err != nil {
			return handler.respondError(c, err)
		}
		window = parsed
	}

	cache.Invalidate()
	if err := cache.SetMonth(c.UserContext(), window.Start); err != nil {
		return handler.respondError(c, err)
	}
	payload, err := handler.monthPayload(c, user.ID, window)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(payload)
}

func (handler *Handler) GetDay(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	day, err := services.ParseDateKey(c.Params("date"), handler.location)
	if err != nil {
		return handler.respondError(c, err)
	}
	view, err := handler.months.ForUser(user.ID).DayView(c.UserContext(), day)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(view)
}

func (handler *Handler) ShowDashboard(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	window, err := handler.resolveMonth(c)
	if err != nil {
		window = services.NewMonthWindow(handler.now(), handler.location)
	}
	payload, err := handler.monthPayload(c, user.ID, window)
	if err != nil {
		return handler.respondError(c, err)
	}
	settings, err := handler.settings.Load(user.ID)
	if err != nil {
		return handler.respondError(c, err)
	}

	var today *services.DayView
	if window.Contains(services.DateKey(handler.now(), handler.location)) {
		view, err := handler.months.ForUser(user.ID).DayView(c.UserContext(), handler.now())
		if err != nil {
			return handler.respondError(c, err)
		}
		today = &view
	}

	return handler.render(c, "dashboard", fiber.Map{
		"Title":     localizedPageTitle(currentMessages(c), "meta.title.dashboard", "Daybook"),
		"Month":     payload,
		"MonthName": window.Start.Format("January 2006"),
		"PrevMonth": window.Start.AddDate(0, -1, 0).Format("2006-01"),
		"NextMonth": window.Start.AddDate(0, 1, 0).Format("2006-01"),
		"Today":     today,
		"Settings":  settings,
		"Theme":     settings.Theme,
		"Connected": user.HasCalendarToken(),
	})
}

func (handler *Handler) ShowDayPage(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	day, err := services.ParseDateKey(c.Params("date"), handler.location)
	if err != nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	view, err := handler.months.ForUser(user.ID).DayView(c.UserContext(), day)
	if err != nil {
		return handler.respondError(c, err)
	}
	settings, err := handler.settings.Load(user.ID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return handler.render(c, "day", fiber.Map{
		"Title":     localizedPageTitle(currentMessages(c), "meta.title.day", "Daybook | Day"),
		"Day":       view,
		"DayLabel":  day.Format("Monday, 2 January 2006"),
		"PrevDay":   services.DateKey(day.AddDate(0, 0, -1), handler.location),
		"NextDay":   services.DateKey(day.AddDate(0, 0, 1), handler.location),
		"Settings":  settings,
		"Theme":     settings.Theme,
		"Connected": user.HasCalendarToken(),
	})
}
