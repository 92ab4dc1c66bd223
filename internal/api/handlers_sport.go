package api

import (
	"errors"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/daybook/internal/services"
)

const maxRecentWorkouts = 10

type exercisePayload struct {
	Name       string   `json:"name" form:"name" validate:"required,max=120"`
	VideoURL   string   `json:"video_url" form:"video_url" validate:"omitempty,url"`
	Tags       []string `json:"tags" validate:"max=20,dive,max=40"`
	LastWeight *float64 `json:"last_weight" validate:"omitempty,min=0"`
}

// parseExerciseInput accepts JSON or a multipart form carrying an optional
// "video" file. The returned closer releases the uploaded file.
func (handler *Handler) parseExerciseInput(c *fiber.Ctx) (services.ExerciseInput, io.Closer, error) {
	payload := exercisePayload{}
	if err := handler.bindAndValidate(c, &payload); err != nil {
		return services.ExerciseInput{}, nil, err
	}
	input := services.ExerciseInput{
		Name:       payload.Name,
		VideoURL:   payload.VideoURL,
		Tags:       payload.Tags,
		LastWeight: payload.LastWeight,
	}
	if !isMultipart(c) {
		return input, nil, nil
	}

	input.Tags = strings.Split(c.FormValue("tags"), ",")
	if raw := strings.TrimSpace(c.FormValue("last_weight")); raw != "" {
		weight, err := strconv.ParseFloat(raw, 64)
		if err != nil || weight < 0 {
			return services.ExerciseInput{}, nil, errors.New("invalid last_weight")
		}
		input.LastWeight = &weight
	}
	upload, closer, err := formUpload(c, "video")
	if err != nil {
		return services.ExerciseInput{}, nil, err
	}
	input.Upload = upload
	return input, closer, nil
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

// formUpload returns a nil upload when the field carries no file.
func formUpload(c *fiber.Ctx, field string) (*services.MediaUpload, io.Closer, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, nil, nil
	}
	return openUpload(header)
}

func openUpload(header *multipart.FileHeader) (*services.MediaUpload, io.Closer, error) {
	file, err := header.Open()
	if err != nil {
		return nil, nil, errors.New("invalid upload")
	}
	return &services.MediaUpload{Filename: header.Filename, Body: file}, file, nil
}

func closeUpload(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

func (handler *Handler) ListExercises(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	exercises, err := handler.sport.ListExercises(user.ID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(exercises)
}

func (handler *Handler) CreateExercise(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	input, closer, err := handler.parseExerciseInput(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	defer closeUpload(closer)

	exercise, err := handler.sport.CreateExercise(c.UserContext(), user.ID, input)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(exercise)
}

func (handler *Handler) UpdateExercise(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	exerciseID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	input, closer, err := handler.parseExerciseInput(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	defer closeUpload(closer)

	exercise, err := handler.sport.UpdateExercise(c.UserContext(), user.ID, exerciseID, input, handler.now())
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(exercise)
}

func (handler *Handler) DeleteExercise(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	exerciseID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	if err := handler.sport.DeleteExercise(user.ID, exerciseID); err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) ExerciseHistory(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	exerciseID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	history, err := handler.sport.ExerciseHistory(user.ID, exerciseID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(history)
}

func (handler *Handler) ListRoutines(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	routines, err := handler.sport.ListRoutines(user.ID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(routines)
}

func (handler *Handler) GetRoutine(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	routineID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	routine, err := handler.sport.RoutineDetails(user.ID, routineID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(routine)
}

func routineItems(payload routineInput) []services.RoutineItem {
	items := make([]services.RoutineItem, 0, len(payload.Items))
	for _, item := range payload.Items {
		items = append(items, services.RoutineItem{ExerciseID: item.ExerciseID, Sets: item.Sets, Reps: item.Reps})
	}
	return items
}

func (handler *Handler) CreateRoutine(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	payload := routineInput{}
	if err := handler.bindAndValidate(c, &payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	routine, err := handler.sport.CreateRoutine(user.ID, payload.Name, routineItems(payload))
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(routine)
}

func (handler *Handler) UpdateRoutine(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	routineID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	payload := routineInput{}
	if err := handler.bindAndValidate(c, &payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := handler.sport.UpdateRoutine(user.ID, routineID, payload.Name, routineItems(payload)); err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) DeleteRoutine(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	routineID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	if err := handler.sport.DeleteRoutine(user.ID, routineID); err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) RemoveRoutineExercise(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	linkID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondError(c, err)
	}
	if err := handler.sport.RemoveRoutineExercise(user.ID, linkID); err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) RecentWorkouts(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	workouts, err := handler.sport.RecentWorkouts(user.ID, maxRecentWorkouts)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(workouts)
}

func (handler *Handler) ShowSportsHub(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	summary, err := handler.stats.Summary(user.ID, handler.now())
	if err != nil {
		return handler.respondError(c, err)
	}
	recent, err := handler.sport.RecentWorkouts(user.ID, maxRecentWorkouts)
	if err != nil {
		return handler.respondError(c, err)
	}
	active, err := handler.activeWorkout(user.ID)
	if err != nil {
		return handler.respondError(c, err)
	}
	settings, err := handler.settings.Load(user.ID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return handler.render(c, "sports", fiber.Map{
		"Title":   localizedPageTitle(currentMessages(c), "meta.title.sports", "Daybook | Sports"),
		"Summary": summary,
		"Recent":  recent,
		"Workout": active,
		"Theme":   settings.Theme,
	})
}

func (handler *Handler) ShowExercisesPage(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	exercises, err := handler.sport.ListExercises(user.ID)
	if err != nil {
		return handler.respondError(c, err)
	}
	settings, err := handler.settings.Load(user.ID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return handler.render(c, "exercises", fiber.Map{
		"Title":     localizedPageTitle(currentMessages(c), "meta.title.exercises", "Daybook | Exercises"),
		"Exercises": exercises,
		"Theme":     settings.Theme,
	})
}

func (handler *Handler) ShowRoutinesPage(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	routines, err := handler.sport.ListRoutines(user.ID)
	if err != nil {
		return handler.respondError(c, err)
	}
	exercises, err := handler.sport.ListExercises(user.ID)
	if err != nil {
		return handler.respondError(c, err)
	}
	active, err := handler.activeWorkout(user.ID)
	if err != nil {
		return handler.respondError(c, err)
	}
	settings, err := handler.settings.Load(user.ID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return handler.render(c, "routines", fiber.Map{
		"Title":     localizedPageTitle(currentMessages(c), "meta.title.routines", "Daybook | Routines"),
		"Routines":  routines,
		"Exercises": exercises,
		"Workout":   active,
		"Theme":     settings.Theme,
	})
}
