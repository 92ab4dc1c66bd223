package db

import (
	"errors"
	"time"

	"github.com/terraincognita07/daybook/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskRepository struct {
	database *gorm.DB
}

func NewTaskRepository(database *gorm.DB) *TaskRepository {
	return &TaskRepository{database: database}
}

func (repo *TaskRepository) ListByUserRange(userID uint, from string, to string) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	if err := repo.database.
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("created_at ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (repo *TaskRepository) Create(task *models.Task) error {
	return repo.database.Create(task).Error
}

func (repo *TaskRepository) SetCompleted(userID uint, taskID uint, completed bool) (bool, error) {
	result := repo.database.Model(&models.Task{}).
		Where("id = ? AND user_id = ?", taskID, userID).
		Update("completed", completed)
	return result.RowsAffected > 0, result.Error
}

func (repo *TaskRepository) Delete(userID uint, taskID uint) (bool, error) {
	result := repo.database.Where("id = ? AND user_id = ?", taskID, userID).Delete(&models.Task{})
	return result.RowsAffected > 0, result.Error
}

type NoteRepository struct {
	database *gorm.DB
}

func NewNoteRepository(database *gorm.DB) *NoteRepository {
	return &NoteRepository{database: database}
}

func (repo *NoteRepository) ListByUserRange(userID uint, from string, to string) ([]models.DayNote, error) {
	notes := make([]models.DayNote, 0)
	if err := repo.database.
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date ASC").
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (repo *NoteRepository) FindByUserDate(userID uint, date string) (models.DayNote, bool, error) {
	var note models.DayNote
	err := repo.database.Where("user_id = ? AND date = ?", userID, date).First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DayNote{}, false, nil
	}
	if err != nil {
		return models.DayNote{}, false, err
	}
	return note, true, nil
}

// Upsert keeps one note per user and day; the latest content wins.
func (repo *NoteRepository) Upsert(note *models.DayNote) error {
	note.UpdatedAt = time.Now()
	return repo.database.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
	}).Create(note).Error
}
