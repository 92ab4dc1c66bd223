package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	registerPageRoutes(app, handler)
	registerAPIRoutes(app, handler)
}

func registerPageRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/favicon.ico", sendNoContent)
	app.Get("/lang/:lang", handler.SetLanguage)

	app.Get("/login", handler.ShowLoginPage)
	app.Get("/register", handler.ShowRegisterPage)
	app.Get("/privacy", handler.ShowPrivacyPage)
	app.Get("/", handler.AuthRequired, handler.ShowDashboard)
	app.Get("/day/:date", handler.AuthRequired, handler.ShowDayPage)
	app.Get("/habits", handler.AuthRequired, handler.ShowHabitsPage)
	app.Get("/settings", handler.AuthRequired, handler.ShowSettingsPage)

	sports := app.Group("/sports", handler.AuthRequired)
	sports.Get("", handler.ShowSportsHub)
	sports.Get("/exercises", handler.ShowExercisesPage)
	sports.Get("/routines", handler.ShowRoutinesPage)
	sports.Get("/session", handler.ShowSessionPage)
	sports.Get("/stats", handler.ShowStatsPage)

	google := app.Group("/auth/google", handler.AuthRequired)
	google.Get("/login", handler.GoogleLogin)
	google.Get("/callback", handler.GoogleCallback)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)

	month := api.Group("/month", handler.AuthRequired)
	month.Get("", handler.GetMonth)
	month.Post("/refresh", handler.RefreshMonth)

	days := api.Group("/days", handler.AuthRequired)
	days.Get("/:date", handler.GetDay)

	habits := api.Group("/habits", handler.AuthRequired)
	habits.Get("", handler.ListHabits)
	habits.Post("", handler.CreateHabit)
	habits.Get("/logs", handler.GetHabitDayLogs)
	habits.Patch("/:id", handler.UpdateHabit)
	habits.Delete("/:id", handler.DeleteHabit)
	habits.Post("/:id/toggle", handler.ToggleHabit)

	tasks := api.Group("/tasks", handler.AuthRequired)
	tasks.Get("", handler.ListTasks)
	tasks.Post("", handler.CreateTask)
	tasks.Post("/:id/toggle", handler.ToggleTask)
	tasks.Delete("/:id", handler.DeleteTask)

	notes := api.Group("/notes", handler.AuthRequired)
	notes.Get("/:date", handler.GetNote)
	notes.Put("/:date", handler.SaveNote)

	calendar := api.Group("/calendar", handler.AuthRequired)
	calendar.Get("/calendars", handler.ListCalendars)
	calendar.Put("/calendars/:googleID", handler.SaveCalendarSetting)
	calendar.Get("/events", handler.ListEvents)
	calendar.Post("/events", handler.CreateEvent)
	calendar.Delete("/events/:eventID", handler.DeleteEvent)
	calendar.Delete("/connection", handler.DisconnectCalendar)

	exercises := api.Group("/exercises", handler.AuthRequired)
	exercises.Get("", handler.ListExercises)
	exercises.Post("", handler.CreateExercise)
	exercises.Put("/:id", handler.UpdateExercise)
	exercises.Delete("/:id", handler.DeleteExercise)
	exercises.Get("/:id/history", handler.ExerciseHistory)

	routines := api.Group("/routines", handler.AuthRequired)
	routines.Get("", handler.ListRoutines)
	routines.Post("", handler.CreateRoutine)
	routines.Get("/:id", handler.GetRoutine)
	routines.Put("/:id", handler.UpdateRoutine)
	routines.Delete("/:id", handler.DeleteRoutine)
	routines.Delete("/links/:id", handler.RemoveRoutineExercise)

	workouts := api.Group("/workout", handler.AuthRequired)
	workouts.Get("", handler.GetActiveWorkout)
	workouts.Get("/recent", handler.RecentWorkouts)
	workouts.Post("/start", handler.StartWorkout)
	workouts.Patch("/logs/:index", handler.UpdateWorkoutLog)
	workouts.Post("/cancel", handler.CancelWorkout)
	workouts.Post("/finish", handler.FinishWorkout)

	stats := api.Group("/stats", handler.AuthRequired)
	stats.Get("/summary", handler.StatsSummary)
	stats.Get("/progress", handler.ProgressHistory)
	stats.Post("/progress", handler.AddProgress)
	stats.Delete("/progress/:id", handler.DeleteProgress)
	stats.Get("/strength/:id", handler.StrengthHistory)

	settings := api.Group("/settings", handler.AuthRequired)
	settings.Get("", handler.GetSettings)
	settings.Put("", handler.SaveSettings)
	settings.Post("", handler.SaveSettings)
	settings.Post("/password", handler.ChangePassword)
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
