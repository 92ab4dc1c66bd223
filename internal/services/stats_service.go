package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/terraincognita07/daybook/internal/models"
)

var (
	ErrProgressNotFound      = errors.New("progress entry not found")
	ErrProgressWeightInvalid = errors.New("progress weight must be positive")
)

type ProgressRepository interface {
	ListByUser(userID uint) ([]models.UserProgress, error)
	Create(entry *models.UserProgress) error
	Delete(userID uint, entryID uint) (bool, error)
}

type StatsExerciseReader interface {
	FindByIDForUser(userID uint, exerciseID uint) (models.Exercise, error)
	ListLogs(userID uint, exerciseID uint, ascending bool) ([]models.WorkoutLog, error)
}

type StatsWorkoutReader interface {
	ListRecentByUser(userID uint, limit int) ([]models.Workout, error)
	CountSessions(userID uint) (int64, error)
}

type ProgressInput struct {
	Date   string
	Weight float64
	Notes  string
	Upload *MediaUpload
}

// StrengthPoint is one logged set rendered for the strength chart.
type StrengthPoint struct {
	Date      string  `json:"date"`
	Weight    float64 `json:"weight"`
	Reps      int     `json:"reps"`
	OneRepMax int     `json:"one_rep_max"`
}

type StatsSummary struct {
	Sessions       int64           `json:"sessions"`
	SessionsLabel  string          `json:"sessions_label"`
	LastWorkout    *models.Workout `json:"last_workout,omitempty"`
	LastWorkoutAgo string          `json:"last_workout_ago,omitempty"`
	LatestWeight   *float64        `json:"latest_weight,omitempty"`
	WeightChange   float64         `json:"weight_change"`
	WeightLabel    string          `json:"weight_label,omitempty"`
}

type StatsService struct {
	progress  ProgressRepository
	exercises StatsExerciseReader
	workouts  StatsWorkoutReader
	media     MediaStore
	location  *time.Location
}

func NewStatsService(progress ProgressRepository, exercises StatsExerciseReader, workouts StatsWorkoutReader, media MediaStore, location *time.Location) *StatsService {
	return &StatsService{
		progress:  progress,
		exercises: exercises,
		workouts:  workouts,
		media:     media,
		location:  location,
	}
}

func (service *StatsService) ProgressHistory(userID uint) ([]models.UserProgress, error) {
	return service.progress.ListByUser(userID)
}

// AddProgress stores a body-weight entry. A failed photo upload drops the
// photo but still saves the weight.
func (service *StatsService) AddProgress(ctx context.Context, userID uint, input ProgressInput, now time.Time) (models.UserProgress, error) {
	if input.Weight <= 0 {
		return models.UserProgress{}, ErrProgressWeightInvalid
	}
	dateKey := strings.TrimSpace(input.Date)
	if dateKey == "" {
		dateKey = DateKey(now, service.location)
	} else if _, err := ParseDateKey(dateKey, service.location); err != nil {
		return models.UserProgress{}, err
	}

	photoURL := ""
	if input.Upload != nil && input.Upload.Body != nil && service.media != nil {
		url, err := service.media.Put(ctx, "progress", input.Upload.Filename, input.Upload.Body)
		if err == nil {
			photoURL = url
		}
	}

	entry := models.UserProgress{
		UserID:   userID,
		Date:     dateKey,
		Weight:   input.Weight,
		PhotoURL: photoURL,
		Notes:    strings.TrimSpace(input.Notes),
	}
	if err := service.progress.Create(&entry); err != nil {
		return models.UserProgress{}, fmt.Errorf("create progress entry: %w", err)
	}
	return entry, nil
}

func (service *StatsService) DeleteProgress(userID uint, entryID uint) error {
	removed, err := service.progress.Delete(userID, entryID)
	if err != nil {
		return fmt.Errorf("delete progress entry: %w", err)
	}
	if !removed {
		return ErrProgressNotFound
	}
	return nil
}

// StrengthHistory returns every logged set of the exercise in chronological
// order with its estimated one-rep max.
func (service *StatsService) StrengthHistory(userID uint, exerciseID uint) ([]StrengthPoint, error) {
	if _, err := service.exercises.FindByIDForUser(userID, exerciseID); err != nil {
		return nil, ErrExerciseNotFound
	}
	logs, err := service.exercises.ListLogs(userID, exerciseID, true)
	if err != nil {
		return nil, fmt.Errorf("load strength history: %w", err)
	}

	points := make([]StrengthPoint, 0, len(logs))
	for _, entry := range logs {
		points = append(points, StrengthPoint{
			Date:      DateKey(entry.CreatedAt, service.location),
			Weight:    entry.Weight,
			Reps:      entry.Reps,
			OneRepMax: EstimateOneRepMax(entry.Weight, entry.Reps),
		})
	}
	return points, nil
}

// EstimateOneRepMax applies the Epley formula w * (1 + r/30), rounded.
func EstimateOneRepMax(weight float64, reps int) int {
	if weight <= 0 {
		return 0
	}
	if reps < 0 {
		reps = 0
	}
	return int(math.Round(weight * (1 + float64(reps)/30)))
}

func (service *StatsService) Summary(userID uint, now time.Time) (StatsSummary, error) {
	sessions, err := service.workouts.CountSessions(userID)
	if err != nil {
		return StatsSummary{}, fmt.Errorf("count workouts: %w", err)
	}
	summary := StatsSummary{
		Sessions:      sessions,
		SessionsLabel: humanize.Comma(sessions),
	}

	recent, err := service.workouts.ListRecentByUser(userID, 1)
	if err != nil {
		return StatsSummary{}, fmt.Errorf("load last workout: %w", err)
	}
	if len(recent) > 0 {
		last := recent[0]
		summary.LastWorkout = &last
		summary.LastWorkoutAgo = humanize.RelTime(last.StartTime, now, "ago", "from now")
	}

	history, err := service.progress.ListByUser(userID)
	if err != nil {
		return StatsSummary{}, fmt.Errorf("load progress: %w", err)
	}
	if len(history) > 0 {
		latest := history[len(history)-1].Weight
		summary.LatestWeight = &latest
		summary.WeightChange = math.Round((latest-history[0].Weight)*10) / 10
		summary.WeightLabel = humanize.FtoaWithDigits(latest, 1) + " kg"
	}
	return summary, nil
}
