package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/terraincognita07/daybook/internal/models"
	"gorm.io/gorm"
)

var (
	ErrExerciseNotFound       = errors.New("exercise not found")
	ErrExerciseNameRequired   = errors.New("exercise name required")
	ErrExerciseWeightInvalid  = errors.New("exercise weight must not be negative")
	ErrRoutineNotFound        = errors.New("routine not found")
	ErrRoutineNameRequired    = errors.New("routine name required")
	ErrRoutineExerciseUnknown = errors.New("routine references an unknown exercise")
	ErrWorkoutEmpty           = errors.New("workout has no logs")
	ErrMediaUploadFailed      = errors.New("media upload failed")
)

// MediaStore persists uploaded files and returns the URL they are served at.
type MediaStore interface {
	Put(ctx context.Context, folder string, filename string, body io.Reader) (string, error)
}

type MediaUpload struct {
	Filename string
	Body     io.Reader
}

type ExerciseRepository interface {
	ListByUser(userID uint) ([]models.Exercise, error)
	ListByIDs(userID uint, exerciseIDs []uint) ([]models.Exercise, error)
	FindByIDForUser(userID uint, exerciseID uint) (models.Exercise, error)
	Create(exercise *models.Exercise) error
	Save(exercise *models.Exercise) error
	UpdateLastWeight(userID uint, exerciseID uint, weight float64) error
	Delete(userID uint, exerciseID uint) (bool, error)
	ListLogs(userID uint, exerciseID uint, ascending bool) ([]models.WorkoutLog, error)
}

type RoutineRepository interface {
	ListByUser(userID uint) ([]models.Routine, error)
	FindWithExercises(userID uint, routineID uint) (models.Routine, error)
	CreateWithExercises(routine *models.Routine, links []models.RoutineExercise) error
	ReplaceExercises(userID uint, routineID uint, name string, links []models.RoutineExercise) (bool, error)
	RemoveExercise(userID uint, linkID uint) (bool, error)
	Delete(userID uint, routineID uint) (bool, error)
}

type WorkoutRepository interface {
	CreateWithLogs(workout *models.Workout, logs []models.WorkoutLog) error
	AppendManualAdjustment(userID uint, exerciseID uint, exerciseName string, weight float64, dayStart time.Time, dayEnd time.Time, now time.Time) error
	ListRecentByUser(userID uint, limit int) ([]models.Workout, error)
	CountSessions(userID uint) (int64, error)
}

// ExerciseInput carries create and update fields. A nil LastWeight on update
// leaves the stored weight untouched.
type ExerciseInput struct {
	Name       string
	VideoURL   string
	Tags       []string
	LastWeight *float64
	Upload     *MediaUpload
}

type RoutineItem struct {
	ExerciseID uint   `json:"exercise_id"`
	Sets       int    `json:"sets"`
	Reps       string `json:"reps"`
}

type SportService struct {
	exercises ExerciseRepository
	routines  RoutineRepository
	workouts  WorkoutRepository
	media     MediaStore
	location  *time.Location
}

func NewSportService(exercises ExerciseRepository, routines RoutineRepository, workouts WorkoutRepository, media MediaStore, location *time.Location) *SportService {
	return &SportService{
		exercises: exercises,
		routines:  routines,
		workouts:  workouts,
		media:     media,
		location:  location,
	}
}

func (service *SportService) ListExercises(userID uint) ([]models.Exercise, error) {
	return service.exercises.ListByUser(userID)
}

func (service *SportService) CreateExercise(ctx context.Context, userID uint, input ExerciseInput) (models.Exercise, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.Exercise{}, ErrExerciseNameRequired
	}
	weight := 0.0
	if input.LastWeight != nil {
		if *input.LastWeight < 0 {
			return models.Exercise{}, ErrExerciseWeightInvalid
		}
		weight = *input.LastWeight
	}

	videoURL, err := service.resolveMedia(ctx, "exercises", strings.TrimSpace(input.VideoURL), input.Upload)
	if err != nil {
		return models.Exercise{}, err
	}

	exercise := models.Exercise{
		UserID:     userID,
		Name:       name,
		VideoURL:   videoURL,
		LastWeight: weight,
		Tags:       NormalizeTags(input.Tags),
	}
	if err := service.exercises.Create(&exercise); err != nil {
		return models.Exercise{}, fmt.Errorf("create exercise: %w", err)
	}
	return exercise, nil
}

// UpdateExercise saves the edited fields. When the weight changes it also
// records a manual adjustment so the strength history reflects the edit.
func (service *SportService) UpdateExercise(ctx context.Context, userID uint, exerciseID uint, input ExerciseInput, now time.Time) (models.Exercise, error) {
	exercise, err := service.findExercise(userID, exerciseID)
	if err != nil {
		return models.Exercise{}, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.Exercise{}, ErrExerciseNameRequired
	}
	if input.LastWeight != nil && *input.LastWeight < 0 {
		return models.Exercise{}, ErrExerciseWeightInvalid
	}

	videoURL := strings.TrimSpace(input.VideoURL)
	if videoURL == "" && input.Upload == nil {
		videoURL = exercise.VideoURL
	}
	videoURL, err = service.resolveMedia(ctx, "exercises", videoURL, input.Upload)
	if err != nil {
		return models.Exercise{}, err
	}

	exercise.Name = name
	exercise.VideoURL = videoURL
	exercise.Tags = NormalizeTags(input.Tags)

	if input.LastWeight != nil && *input.LastWeight != exercise.LastWeight {
		dayStart, dayEnd := DayRange(now, service.location)
		if err := service.workouts.AppendManualAdjustment(userID, exercise.ID, name, *input.LastWeight, dayStart, dayEnd, now); err != nil {
			return models.Exercise{}, fmt.Errorf("record manual adjustment: %w", err)
		}
		exercise.LastWeight = *input.LastWeight
	}

	if err := service.exercises.Save(&exercise); err != nil {
		return models.Exercise{}, fmt.Errorf("update exercise: %w", err)
	}
	return exercise, nil
}

func (service *SportService) DeleteExercise(userID uint, exerciseID uint) error {
	removed, err := service.exercises.Delete(userID, exerciseID)
	if err != nil {
		return fmt.Errorf("delete exercise: %w", err)
	}
	if !removed {
		return ErrExerciseNotFound
	}
	return nil
}

// ExerciseHistory lists every logged set of the exercise, most recent first.
func (service *SportService) ExerciseHistory(userID uint, exerciseID uint) ([]models.WorkoutLog, error) {
	if _, err := service.findExercise(userID, exerciseID); err != nil {
		return nil, err
	}
	return service.exercises.ListLogs(userID, exerciseID, false)
}

func (service *SportService) ListRoutines(userID uint) ([]models.Routine, error) {
	return service.routines.ListByUser(userID)
}

func (service *SportService) RoutineDetails(userID uint, routineID uint) (models.Routine, error) {
	routine, err := service.routines.FindWithExercises(userID, routineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Routine{}, ErrRoutineNotFound
		}
		return models.Routine{}, fmt.Errorf("load routine: %w", err)
	}
	return routine, nil
}

func (service *SportService) CreateRoutine(userID uint, name string, items []RoutineItem) (models.Routine, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Routine{}, ErrRoutineNameRequired
	}
	links, err := service.routineLinks(userID, items)
	if err != nil {
		return models.Routine{}, err
	}

	routine := models.Routine{UserID: userID, Name: name}
	if err := service.routines.CreateWithExercises(&routine, links); err != nil {
		return models.Routine{}, fmt.Errorf("create routine: %w", err)
	}
	return routine, nil
}

// UpdateRoutine renames the routine and replaces its whole exercise list.
func (service *SportService) UpdateRoutine(userID uint, routineID uint, name string, items []RoutineItem) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrRoutineNameRequired
	}
	links, err := service.routineLinks(userID, items)
	if err != nil {
		return err
	}
	found, err := service.routines.ReplaceExercises(userID, routineID, name, links)
	if err != nil {
		return fmt.Errorf("update routine: %w", err)
	}
	if !found {
		return ErrRoutineNotFound
	}
	return nil
}

func (service *SportService) DeleteRoutine(userID uint, routineID uint) error {
	removed, err := service.routines.Delete(userID, routineID)
	if err != nil {
		return fmt.Errorf("delete routine: %w", err)
	}
	if !removed {
		return ErrRoutineNotFound
	}
	return nil
}

func (service *SportService) RemoveRoutineExercise(userID uint, linkID uint) error {
	removed, err := service.routines.RemoveExercise(userID, linkID)
	if err != nil {
		return fmt.Errorf("remove routine exercise: %w", err)
	}
	if !removed {
		return ErrRoutineNotFound
	}
	return nil
}

// RecordWorkout stores a finished session. Header and logs are written
// together or not at all.
func (service *SportService) RecordWorkout(userID uint, workout *models.Workout, logs []models.WorkoutLog) error {
	if len(logs) == 0 {
		return ErrWorkoutEmpty
	}
	workout.UserID = userID
	if strings.TrimSpace(workout.RoutineTitle) == "" {
		workout.RoutineTitle = "Workout"
	}
	if err := service.workouts.CreateWithLogs(workout, logs); err != nil {
		return fmt.Errorf("record workout: %w", err)
	}
	return nil
}

// UpdateLastWeights stores the weight used for each exercise in a finished
// session. Every exercise is attempted and the failures are joined.
func (service *SportService) UpdateLastWeights(userID uint, weights map[uint]float64) error {
	var errs []error
	for exerciseID, weight := range weights {
		if err := service.exercises.UpdateLastWeight(userID, exerciseID, weight); err != nil {
			errs = append(errs, fmt.Errorf("exercise %d: %w", exerciseID, err))
		}
	}
	return errors.Join(errs...)
}

func (service *SportService) RecentWorkouts(userID uint, limit int) ([]models.Workout, error) {
	return service.workouts.ListRecentByUser(userID, limit)
}

func (service *SportService) findExercise(userID uint, exerciseID uint) (models.Exercise, error) {
	exercise, err := service.exercises.FindByIDForUser(userID, exerciseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Exercise{}, ErrExerciseNotFound
		}
		return models.Exercise{}, fmt.Errorf("load exercise: %w", err)
	}
	return exercise, nil
}

func (service *SportService) routineLinks(userID uint, items []RoutineItem) ([]models.RoutineExercise, error) {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ExerciseID)
	}
	owned, err := service.exercises.ListByIDs(userID, ids)
	if err != nil {
		return nil, fmt.Errorf("load routine exercises: %w", err)
	}
	known := make(map[uint]struct{}, len(owned))
	for _, exercise := range owned {
		known[exercise.ID] = struct{}{}
	}

	links := make([]models.RoutineExercise, 0, len(items))
	for _, item := range items {
		if _, ok := known[item.ExerciseID]; !ok {
			return nil, ErrRoutineExerciseUnknown
		}
		sets := item.Sets
		if sets <= 0 {
			sets = models.DefaultRoutineSets
		}
		reps := strings.TrimSpace(item.Reps)
		if reps == "" {
			reps = models.DefaultRoutineReps
		}
		links = append(links, models.RoutineExercise{ExerciseID: item.ExerciseID, Sets: sets, Reps: reps})
	}
	return links, nil
}

func (service *SportService) resolveMedia(ctx context.Context, folder string, current string, upload *MediaUpload) (string, error) {
	if upload == nil || upload.Body == nil {
		return current, nil
	}
	if service.media == nil {
		return "", ErrMediaUploadFailed
	}
	url, err := service.media.Put(ctx, folder, upload.Filename, upload.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMediaUploadFailed, err)
	}
	return url, nil
}

// NormalizeTags trims tags and drops blanks and case-insensitive duplicates.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, duplicate := seen[key]; duplicate {
			continue
		}
		seen[key] = struct{}{}
		normalized = append(normalized, tag)
	}
	return normalized
}
