package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/daybook/internal/models"
)

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrTaskTitleRequired = errors.New("task title required")
	ErrNoteSaveFailed    = errors.New("save note failed")
)

type TaskRepository interface {
	ListByUserRange(userID uint, from string, to string) ([]models.Task, error)
	Create(task *models.Task) error
	SetCompleted(userID uint, taskID uint, completed bool) (bool, error)
	Delete(userID uint, taskID uint) (bool, error)
}

type NoteRepository interface {
	ListByUserRange(userID uint, from string, to string) ([]models.DayNote, error)
	FindByUserDate(userID uint, date string) (models.DayNote, bool, error)
	Upsert(note *models.DayNote) error
}

type DailyService struct {
	tasks TaskRepository
	notes NoteRepository
}

func NewDailyService(tasks TaskRepository, notes NoteRepository) *DailyService {
	return &DailyService{tasks: tasks, notes: notes}
}

func (service *DailyService) TasksForDay(userID uint, dateKey string) ([]models.Task, error) {
	return service.tasks.ListByUserRange(userID, dateKey, dateKey)
}

func (service *DailyService) TasksRange(userID uint, window MonthWindow) ([]models.Task, error) {
	return service.tasks.ListByUserRange(userID, window.FromKey(), window.ToKey())
}

func (service *DailyService) CreateTask(userID uint, dateKey string, title string) (models.Task, error) {
	if _, err := ParseDateKey(dateKey, time.UTC); err != nil {
		return models.Task{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Task{}, ErrTaskTitleRequired
	}
	task := models.Task{UserID: userID, Title: title, Date: dateKey}
	if err := service.tasks.Create(&task); err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

func (service *DailyService) ToggleTask(userID uint, taskID uint, completed bool) error {
	updated, err := service.tasks.SetCompleted(userID, taskID, completed)
	if err != nil {
		return fmt.Errorf("toggle task: %w", err)
	}
	if !updated {
		return ErrTaskNotFound
	}
	return nil
}

func (service *DailyService) DeleteTask(userID uint, taskID uint) error {
	removed, err := service.tasks.Delete(userID, taskID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if !removed {
		return ErrTaskNotFound
	}
	return nil
}

// NoteForDay returns an empty string when no note exists for the day.
func (service *DailyService) NoteForDay(userID uint, dateKey string) (string, error) {
	note, found, err := service.notes.FindByUserDate(userID, dateKey)
	if err != nil {
		return "", err
	}
	if !found {
		return "", nil
	}
	return note.Content, nil
}

func (service *DailyService) NotesRange(userID uint, window MonthWindow) ([]models.DayNote, error) {
	return service.notes.ListByUserRange(userID, window.FromKey(), window.ToKey())
}

func (service *DailyService) SaveNote(userID uint, dateKey string, content string) (models.DayNote, error) {
	if _, err := ParseDateKey(dateKey, time.UTC); err != nil {
		return models.DayNote{}, err
	}
	note := models.DayNote{UserID: userID, Date: dateKey, Content: content}
	if err := service.notes.Upsert(&note); err != nil {
		return models.DayNote{}, fmt.Errorf("%w: %v", ErrNoteSaveFailed, err)
	}
	return note, nil
}
