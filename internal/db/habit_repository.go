package db

import (
	"github.com/terraincognita07/daybook/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HabitRepository struct {
	database *gorm.DB
}

func NewHabitRepository(database *gorm.DB) *HabitRepository {
	return &HabitRepository{database: database}
}

func (repo *HabitRepository) ListByUser(userID uint) ([]models.Habit, error) {
	habits := make([]models.Habit, 0)
	if err := repo.database.Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&habits).Error; err != nil {
		return nil, err
	}
	return habits, nil
}

func (repo *HabitRepository) FindByIDForUser(userID uint, habitID uint) (models.Habit, error) {
	var habit models.Habit
	if err := repo.database.Where("id = ? AND user_id = ?", habitID, userID).First(&habit).Error; err != nil {
		return models.Habit{}, err
	}
	return habit, nil
}

func (repo *HabitRepository) Create(habit *models.Habit) error {
	return repo.database.Create(habit).Error
}

func (repo *HabitRepository) Update(userID uint, habitID uint, updates map[string]any) (bool, error) {
	result := repo.database.Model(&models.Habit{}).Where("id = ? AND user_id = ?", habitID, userID).Updates(updates)
	return result.RowsAffected > 0, result.Error
}

func (repo *HabitRepository) UpdateFrequency(userID uint, habitID uint, frequency []int) (bool, error) {
	result := repo.database.Model(&models.Habit{}).
		Where("id = ? AND user_id = ?", habitID, userID).
		Select("frequency").
		Updates(&models.Habit{Frequency: frequency})
	return result.RowsAffected > 0, result.Error
}

func (repo *HabitRepository) Delete(userID uint, habitID uint) (bool, error) {
	var removed int64
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("habit_id = ? AND user_id = ?", habitID, userID).Delete(&models.HabitLog{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ? AND user_id = ?", habitID, userID).Delete(&models.Habit{})
		removed = result.RowsAffected
		return result.Error
	})
	return removed > 0, err
}

func (repo *HabitRepository) ListLogsByUserRange(userID uint, from string, to string) ([]models.HabitLog, error) {
	logs := make([]models.HabitLog, 0)
	if err := repo.database.
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date ASC, id ASC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// InsertLog records a completion. A second insert for the same habit and day
// is a no-op.
func (repo *HabitRepository) InsertLog(entry *models.HabitLog) error {
	return repo.database.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "habit_id"}, {Name: "date"}},
		DoNothing: true,
	}).Create(entry).Error
}

func (repo *HabitRepository) DeleteLog(userID uint, habitID uint, date string) error {
	return repo.database.
		Where("user_id = ? AND habit_id = ? AND date = ?", userID, habitID, date).
		Delete(&models.HabitLog{}).Error
}

func (repo *HabitRepository) CountLogs(userID uint, habitID uint, date string) (int64, error) {
	var count int64
	err := repo.database.Model(&models.HabitLog{}).
		Where("user_id = ? AND habit_id = ? AND date = ?", userID, habitID, date).
		Count(&count).Error
	return count, err
}
