package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/terraincognita07/daybook/internal/models"
	"gorm.io/gorm"
)

var (
	ErrHabitNotFound         = errors.New("habit not found")
	ErrHabitNameRequired     = errors.New("habit name required")
	ErrHabitFrequencyInvalid = errors.New("habit frequency invalid")
	ErrHabitFutureCompletion = errors.New("habit cannot be completed in the future")
	ErrHabitLogUpdateFailed  = errors.New("update habit log failed")
)

type HabitRepository interface {
	ListByUser(userID uint) ([]models.Habit, error)
	FindByIDForUser(userID uint, habitID uint) (models.Habit, error)
	Create(habit *models.Habit) error
	Update(userID uint, habitID uint, updates map[string]any) (bool, error)
	UpdateFrequency(userID uint, habitID uint, frequency []int) (bool, error)
	Delete(userID uint, habitID uint) (bool, error)
	ListLogsByUserRange(userID uint, from string, to string) ([]models.HabitLog, error)
	InsertLog(entry *models.HabitLog) error
	DeleteLog(userID uint, habitID uint, date string) error
}

type HabitService struct {
	habits   HabitRepository
	location *time.Location
}

func NewHabitService(habits HabitRepository, location *time.Location) *HabitService {
	return &HabitService{habits: habits, location: location}
}

func (service *HabitService) ListHabits(userID uint) ([]models.Habit, error) {
	return service.habits.ListByUser(userID)
}

func (service *HabitService) CreateHabit(userID uint, name string, frequency []int, color string) (models.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Habit{}, ErrHabitNameRequired
	}
	normalized, err := NormalizeFrequency(frequency)
	if err != nil {
		return models.Habit{}, err
	}

	habit := models.Habit{
		UserID:    userID,
		Name:      name,
		Frequency: normalized,
		Color:     strings.TrimSpace(color),
	}
	if err := service.habits.Create(&habit); err != nil {
		return models.Habit{}, fmt.Errorf("create habit: %w", err)
	}
	return habit, nil
}

func (service *HabitService) RenameHabit(userID uint, habitID uint, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrHabitNameRequired
	}
	updated, err := service.habits.Update(userID, habitID, map[string]any{"name": name})
	if err != nil {
		return fmt.Errorf("rename habit: %w", err)
	}
	if !updated {
		return ErrHabitNotFound
	}
	return nil
}

func (service *HabitService) UpdateFrequency(userID uint, habitID uint, frequency []int) error {
	normalized, err := NormalizeFrequency(frequency)
	if err != nil {
		return err
	}
	updated, err := service.habits.UpdateFrequency(userID, habitID, normalized)
	if err != nil {
		return fmt.Errorf("update habit frequency: %w", err)
	}
	if !updated {
		return ErrHabitNotFound
	}
	return nil
}

func (service *HabitService) DeleteHabit(userID uint, habitID uint) error {
	removed, err := service.habits.Delete(userID, habitID)
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	if !removed {
		return ErrHabitNotFound
	}
	return nil
}

func (service *HabitService) RangeLogs(userID uint, window MonthWindow) ([]models.HabitLog, error) {
	return service.habits.ListLogsByUserRange(userID, window.FromKey(), window.ToKey())
}

// DayLogs returns the ids of habits completed on dateKey.
func (service *HabitService) DayLogs(userID uint, dateKey string) ([]uint, error) {
	logs, err := service.habits.ListLogsByUserRange(userID, dateKey, dateKey)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(logs))
	for _, entry := range logs {
		ids = append(ids, entry.HabitID)
	}
	return ids, nil
}

// ToggleLog inserts a completion log when completed is true and deletes the
// matching one otherwise.
func (service *HabitService) ToggleLog(userID uint, habitID uint, dateKey string, completed bool, now time.Time) error {
	day, err := ParseDateKey(dateKey, service.location)
	if err != nil {
		return err
	}
	if completed && DateKey(day, service.location) > DateKey(now, service.location) {
		return ErrHabitFutureCompletion
	}

	if _, err := service.habits.FindByIDForUser(userID, habitID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHabitNotFound
		}
		return fmt.Errorf("%w: %v", ErrHabitLogUpdateFailed, err)
	}

	if completed {
		err = service.habits.InsertLog(&models.HabitLog{HabitID: habitID, UserID: userID, Date: dateKey})
	} else {
		err = service.habits.DeleteLog(userID, habitID, dateKey)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHabitLogUpdateFailed, err)
	}
	return nil
}

// NormalizeFrequency validates weekday numbers and returns them sorted and
// without duplicates.
func NormalizeFrequency(frequency []int) ([]int, error) {
	seen := make(map[int]struct{}, len(frequency))
	normalized := make([]int, 0, len(frequency))
	for _, day := range frequency {
		if day < 1 || day > 7 {
			return nil, ErrHabitFrequencyInvalid
		}
		if _, duplicate := seen[day]; duplicate {
			continue
		}
		seen[day] = struct{}{}
		normalized = append(normalized, day)
	}
	if len(normalized) == 0 {
		return nil, ErrHabitFrequencyInvalid
	}
	sort.Ints(normalized)
	return normalized, nil
}
