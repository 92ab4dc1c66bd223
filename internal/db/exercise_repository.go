package db

import (
	"github.com/terraincognita07/daybook/internal/models"
	"gorm.io/gorm"
)

type ExerciseRepository struct {
	database *gorm.DB
}

func NewExerciseRepository(database *gorm.DB) *ExerciseRepository {
	return &ExerciseRepository{database: database}
}

func (repo *ExerciseRepository) ListByUser(userID uint) ([]models.Exercise, error) {
	exercises := make([]models.Exercise, 0)
	if err := repo.database.Where("user_id = ?", userID).Order("name ASC, id ASC").Find(&exercises).Error; err != nil {
		return nil, err
	}
	return exercises, nil
}

func (repo *ExerciseRepository) ListByIDs(userID uint, exerciseIDs []uint) ([]models.Exercise, error) {
	exercises := make([]models.Exercise, 0, len(exerciseIDs))
	if len(exerciseIDs) == 0 {
		return exercises, nil
	}
	if err := repo.database.Where("user_id = ? AND id IN ?", userID, exerciseIDs).Find(&exercises).Error; err != nil {
		return nil, err
	}
	return exercises, nil
}

func (repo *ExerciseRepository) FindByIDForUser(userID uint, exerciseID uint) (models.Exercise, error) {
	var exercise models.Exercise
	if err := repo.database.Where("id = ? AND user_id = ?", exerciseID, userID).First(&exercise).Error; err != nil {
		return models.Exercise{}, err
	}
	return exercise, nil
}

func (repo *ExerciseRepository) Create(exercise *models.Exercise) error {
	return repo.database.Create(exercise).Error
}

func (repo *ExerciseRepository) Save(exercise *models.Exercise) error {
	return repo.database.Save(exercise).Error
}

func (repo *ExerciseRepository) UpdateLastWeight(userID uint, exerciseID uint, weight float64) error {
	return repo.database.Model(&models.Exercise{}).
		Where("id = ? AND user_id = ?", exerciseID, userID).
		Update("last_weight", weight).Error
}

func (repo *ExerciseRepository) Delete(userID uint, exerciseID uint) (bool, error) {
	var removed int64
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exercise_id = ? AND routine_id IN (?)",
			exerciseID,
			tx.Model(&models.Routine{}).Select("id").Where("user_id = ?", userID),
		).Delete(&models.RoutineExercise{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ? AND user_id = ?", exerciseID, userID).Delete(&models.Exercise{})
		removed = result.RowsAffected
		return result.Error
	})
	return removed > 0, err
}

// ListLogs returns every logged set of an exercise for the user, newest first
// unless ascending is requested.
func (repo *ExerciseRepository) ListLogs(userID uint, exerciseID uint, ascending bool) ([]models.WorkoutLog, error) {
	order := "workout_logs.created_at DESC, workout_logs.id DESC"
	if ascending {
		order = "workout_logs.created_at ASC, workout_logs.id ASC"
	}

	logs := make([]models.WorkoutLog, 0)
	if err := repo.database.
		Joins("JOIN workouts ON workouts.id = workout_logs.workout_id").
		Where("workouts.user_id = ? AND workout_logs.exercise_id = ?", userID, exerciseID).
		Order(order).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
