package db

import (
	"github.com/terraincognita07/daybook/internal/models"
	"gorm.io/gorm"
)

type RoutineRepository struct {
	database *gorm.DB
}

func NewRoutineRepository(database *gorm.DB) *RoutineRepository {
	return &RoutineRepository{database: database}
}

func (repo *RoutineRepository) ListByUser(userID uint) ([]models.Routine, error) {
	routines := make([]models.Routine, 0)
	if err := repo.database.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&routines).Error; err != nil {
		return nil, err
	}
	return routines, nil
}

// FindWithExercises loads a routine and its links in order_index order, each
// with the linked exercise.
func (repo *RoutineRepository) FindWithExercises(userID uint, routineID uint) (models.Routine, error) {
	var routine models.Routine
	err := repo.database.
		Where("id = ? AND user_id = ?", routineID, userID).
		Preload("Exercises", func(query *gorm.DB) *gorm.DB {
			return query.Order("order_index ASC, id ASC")
		}).
		Preload("Exercises.Exercise").
		First(&routine).Error
	if err != nil {
		return models.Routine{}, err
	}
	return routine, nil
}

// CreateWithExercises writes the routine header and all links in one
// transaction.
func (repo *RoutineRepository) CreateWithExercises(routine *models.Routine, links []models.RoutineExercise) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		header := models.Routine{UserID: routine.UserID, Name: routine.Name}
		if err := tx.Create(&header).Error; err != nil {
			return err
		}
		if err := insertRoutineLinks(tx, header.ID, links); err != nil {
			return err
		}
		routine.ID = header.ID
		routine.CreatedAt = header.CreatedAt
		return nil
	})
}

// ReplaceExercises renames the routine and swaps its links atomically.
func (repo *RoutineRepository) ReplaceExercises(userID uint, routineID uint, name string, links []models.RoutineExercise) (bool, error) {
	found := false
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Routine{}).Where("id = ? AND user_id = ?", routineID, userID).Update("name", name)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		found = true
		if err := tx.Where("routine_id = ?", routineID).Delete(&models.RoutineExercise{}).Error; err != nil {
			return err
		}
		return insertRoutineLinks(tx, routineID, links)
	})
	return found, err
}

func (repo *RoutineRepository) RemoveExercise(userID uint, linkID uint) (bool, error) {
	result := repo.database.
		Where("id = ? AND routine_id IN (?)", linkID, repo.database.Model(&models.Routine{}).Select("id").Where("user_id = ?", userID)).
		Delete(&models.RoutineExercise{})
	return result.RowsAffected > 0, result.Error
}

func (repo *RoutineRepository) Delete(userID uint, routineID uint) (bool, error) {
	var removed int64
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&models.Routine{}).Where("id = ? AND user_id = ?", routineID, userID).Count(&owned).Error; err != nil {
			return err
		}
		if owned == 0 {
			return nil
		}
		if err := tx.Where("routine_id = ?", routineID).Delete(&models.RoutineExercise{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ? AND user_id = ?", routineID, userID).Delete(&models.Routine{})
		removed = result.RowsAffected
		return result.Error
	})
	return removed > 0, err
}

func insertRoutineLinks(tx *gorm.DB, routineID uint, links []models.RoutineExercise) error {
	if len(links) == 0 {
		return nil
	}
	rows := make([]models.RoutineExercise, 0, len(links))
	for index, link := range links {
		rows = append(rows, models.RoutineExercise{
			RoutineID:  routineID,
			ExerciseID: link.ExerciseID,
			OrderIndex: index,
			Sets:       link.Sets,
			Reps:       link.Reps,
		})
	}
	return tx.Create(&rows).Error
}
