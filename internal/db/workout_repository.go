package db

import (
	"errors"
	"time"

	"github.com/terraincognita07/daybook/internal/models"
	"gorm.io/gorm"
)

type WorkoutRepository struct {
	database *gorm.DB
}

func NewWorkoutRepository(database *gorm.DB) *WorkoutRepository {
	return &WorkoutRepository{database: database}
}

// CreateWithLogs writes the workout header and its per-exercise logs in one
// transaction, so a failure never leaves an orphaned header.
func (repo *WorkoutRepository) CreateWithLogs(workout *models.Workout, logs []models.WorkoutLog) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		header := *workout
		header.Logs = nil
		if err := tx.Create(&header).Error; err != nil {
			return err
		}
		if len(logs) > 0 {
			rows := make([]models.WorkoutLog, len(logs))
			for index, entry := range logs {
				entry.WorkoutID = header.ID
				rows[index] = entry
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
			logs = rows
		}
		*workout = header
		workout.Logs = logs
		return nil
	})
}

// AppendManualAdjustment logs a weight edit against the single manual
// adjustment workout of the day that contains now, creating it on first use.
func (repo *WorkoutRepository) AppendManualAdjustment(userID uint, exerciseID uint, exerciseName string, weight float64, dayStart time.Time, dayEnd time.Time, now time.Time) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		var workout models.Workout
		err := tx.
			Where("user_id = ? AND routine_title = ? AND start_time >= ? AND start_time < ?",
				userID, models.ManualAdjustmentTitle, dayStart.UTC(), dayEnd.UTC()).
			Order("id ASC").
			First(&workout).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			workout = models.Workout{
				UserID:          userID,
				RoutineTitle:    models.ManualAdjustmentTitle,
				StartTime:       now.UTC(),
				DurationSeconds: 0,
			}
			err = tx.Create(&workout).Error
		}
		if err != nil {
			return err
		}

		return tx.Create(&models.WorkoutLog{
			WorkoutID:    workout.ID,
			ExerciseID:   exerciseID,
			ExerciseName: exerciseName,
			Weight:       weight,
			Reps:         0,
		}).Error
	})
}

func (repo *WorkoutRepository) ListRecentByUser(userID uint, limit int) ([]models.Workout, error) {
	workouts := make([]models.Workout, 0)
	query := repo.database.Where("user_id = ? AND duration_seconds > 0", userID).Order("start_time DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Preload("Logs").Find(&workouts).Error; err != nil {
		return nil, err
	}
	return workouts, nil
}

func (repo *WorkoutRepository) CountSessions(userID uint) (int64, error) {
	var count int64
	err := repo.database.Model(&models.Workout{}).
		Where("user_id = ? AND duration_seconds > 0", userID).
		Count(&count).Error
	return count, err
}

type ProgressRepository struct {
	database *gorm.DB
}

func NewProgressRepository(database *gorm.DB) *ProgressRepository {
	return &ProgressRepository{database: database}
}

func (repo *ProgressRepository) ListByUser(userID uint) ([]models.UserProgress, error) {
	entries := make([]models.UserProgress, 0)
	if err := repo.database.Where("user_id = ?", userID).Order("date ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (repo *ProgressRepository) Create(entry *models.UserProgress) error {
	return repo.database.Create(entry).Error
}

func (repo *ProgressRepository) Delete(userID uint, entryID uint) (bool, error) {
	result := repo.database.Where("id = ? AND user_id = ?", entryID, userID).Delete(&models.UserProgress{})
	return result.RowsAffected > 0, result.Error
}
