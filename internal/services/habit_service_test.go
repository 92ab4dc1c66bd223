package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/terraincognita07/daybook/internal/models"
	"gorm.io/gorm"
)

type habitRepositoryStub struct {
	habits    map[uint]models.Habit
	logs      map[string]models.HabitLog
	nextID    uint
	insertErr error
}

func newHabitRepositoryStub() *habitRepositoryStub {
	return &habitRepositoryStub{
		habits: make(map[uint]models.Habit),
		logs:   make(map[string]models.HabitLog),
		nextID: 1,
	}
}

func habitLogKey(habitID uint, date string) string {
	return fmt.Sprintf("%d#%s", habitID, date)
}

func (stub *habitRepositoryStub) ListByUser(userID uint) ([]models.Habit, error) {
	habits := make([]models.Habit, 0)
	for id := uint(1); id < stub.nextID; id++ {
		if habit, ok := stub.habits[id]; ok && habit.UserID == userID {
			habits = append(habits, habit)
		}
	}
	return habits, nil
}

func (stub *habitRepositoryStub) FindByIDForUser(userID uint, habitID uint) (models.Habit, error) {
	habit, ok := stub.habits[habitID]
	if !ok || habit.UserID != userID {
		return models.Habit{}, gorm.ErrRecordNotFound
	}
	return habit, nil
}

func (stub *habitRepositoryStub) Create(habit *models.Habit) error {
	habit.ID = stub.nextID
	stub.nextID++
	stub.habits[habit.ID] = *habit
	return nil
}

func (stub *habitRepositoryStub) Update(userID uint, habitID uint, updates map[string]any) (bool, error) {
	habit, ok := stub.habits[habitID]
	if !ok || habit.UserID != userID {
		return false, nil
	}
	if name, ok := updates["name"].(string); ok {
		habit.Name = name
	}
	stub.habits[habitID] = habit
	return true, nil
}

func (stub *habitRepositoryStub) UpdateFrequency(userID uint, habitID uint, frequency []int) (bool, error) {
	habit, ok := stub.habits[habitID]
	if !ok || habit.UserID != userID {
		return false, nil
	}
	habit.Frequency = frequency
	stub.habits[habitID] = habit
	return true, nil
}

func (stub *habitRepositoryStub) Delete(userID uint, habitID uint) (bool, error) {
	habit, ok := stub.habits[habitID]
	if !ok || habit.UserID != userID {
		return false, nil
	}
	delete(stub.habits, habitID)
	return true, nil
}

func (stub *habitRepositoryStub) ListLogsByUserRange(userID uint, from string, to string) ([]models.HabitLog, error) {
	logs := make([]models.HabitLog, 0)
	for _, entry := range stub.logs {
		if entry.UserID == userID && entry.Date >= from && entry.Date <= to {
			logs = append(logs, entry)
		}
	}
	return logs, nil
}

func (stub *habitRepositoryStub) InsertLog(entry *models.HabitLog) error {
	if stub.insertErr != nil {
		return stub.insertErr
	}
	stub.logs[habitLogKey(entry.HabitID, entry.Date)] = *entry
	return nil
}

func (stub *habitRepositoryStub) DeleteLog(userID uint, habitID uint, date string) error {
	delete(stub.logs, habitLogKey(habitID, date))
	return nil
}

func TestHabitToggleCompleteThenIncompleteLeavesNoLogs(t *testing.T) {
	repo := newHabitRepositoryStub()
	service := NewHabitService(repo, time.UTC)
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	habit, err := service.CreateHabit(1, "Meditate", []int{1, 3}, "")
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}

	if err := service.ToggleLog(1, habit.ID, "2025-03-10", true, now); err != nil {
		t.Fatalf("complete habit: %v", err)
	}
	ids, err := service.DayLogs(1, "2025-03-10")
	if err != nil {
		t.Fatalf("day logs: %v", err)
	}
	if len(ids) != 1 || ids[0] != habit.ID {
		t.Fatalf("expected habit %d logged, got %v", habit.ID, ids)
	}

	if err := service.ToggleLog(1, habit.ID, "2025-03-10", false, now); err != nil {
		t.Fatalf("uncomplete habit: %v", err)
	}
	ids, err = service.DayLogs(1, "2025-03-10")
	if err != nil {
		t.Fatalf("day logs: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no logs after toggling back, got %v", ids)
	}
}

func TestHabitToggleRejectsFutureCompletion(t *testing.T) {
	repo := newHabitRepositoryStub()
	service := NewHabitService(repo, time.UTC)
	habit, _ := service.CreateHabit(1, "Walk", []int{1, 2, 3, 4, 5, 6, 7}, "")

	now := time.Date(2025, time.March, 10, 23, 59, 0, 0, time.UTC)
	err := service.ToggleLog(1, habit.ID, "2025-03-11", true, now)
	if !errors.Is(err, ErrHabitFutureCompletion) {
		t.Fatalf("expected ErrHabitFutureCompletion, got %v", err)
	}
	if err := service.ToggleLog(1, habit.ID, "2025-03-10", true, now); err != nil {
		t.Fatalf("expected completion for today to succeed, got %v", err)
	}
}

func TestHabitToggleUnknownHabit(t *testing.T) {
	service := NewHabitService(newHabitRepositoryStub(), time.UTC)
	err := service.ToggleLog(1, 99, "2025-03-10", true, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrHabitNotFound) {
		t.Fatalf("expected ErrHabitNotFound, got %v", err)
	}
}

func TestHabitToggleWrapsRepositoryFailure(t *testing.T) {
	repo := newHabitRepositoryStub()
	service := NewHabitService(repo, time.UTC)
	habit, _ := service.CreateHabit(1, "Journal", []int{1}, "")
	repo.insertErr = errors.New("disk full")

	err := service.ToggleLog(1, habit.ID, "2025-03-10", true, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrHabitLogUpdateFailed) {
		t.Fatalf("expected ErrHabitLogUpdateFailed, got %v", err)
	}
}

func TestCreateHabitValidation(t *testing.T) {
	service := NewHabitService(newHabitRepositoryStub(), time.UTC)

	if _, err := service.CreateHabit(1, "  ", []int{1}, ""); !errors.Is(err, ErrHabitNameRequired) {
		t.Fatalf("expected ErrHabitNameRequired, got %v", err)
	}
	if _, err := service.CreateHabit(1, "Swim", nil, ""); !errors.Is(err, ErrHabitFrequencyInvalid) {
		t.Fatalf("expected ErrHabitFrequencyInvalid for empty frequency, got %v", err)
	}
	if _, err := service.CreateHabit(1, "Swim", []int{0, 8}, ""); !errors.Is(err, ErrHabitFrequencyInvalid) {
		t.Fatalf("expected ErrHabitFrequencyInvalid for out of range days, got %v", err)
	}
}

func TestNormalizeFrequencySortsAndDeduplicates(t *testing.T) {
	got, err := NormalizeFrequency([]int{5, 1, 3, 5, 1})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	expected := []int{1, 3, 5}
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	for index := range expected {
		if got[index] != expected[index] {
			t.Fatalf("expected %v, got %v", expected, got)
		}
	}
}

func TestRenameAndDeleteHabitOfAnotherUser(t *testing.T) {
	repo := newHabitRepositoryStub()
	service := NewHabitService(repo, time.UTC)
	habit, _ := service.CreateHabit(1, "Read", []int{1}, "")

	if err := service.RenameHabit(2, habit.ID, "Hijack"); !errors.Is(err, ErrHabitNotFound) {
		t.Fatalf("expected ErrHabitNotFound on rename by other user, got %v", err)
	}
	if err := service.DeleteHabit(2, habit.ID); !errors.Is(err, ErrHabitNotFound) {
		t.Fatalf("expected ErrHabitNotFound on delete by other user, got %v", err)
	}
	if err := service.RenameHabit(1, habit.ID, "Read more"); err != nil {
		t.Fatalf("rename by owner: %v", err)
	}
	if repo.habits[habit.ID].Name != "Read more" {
		t.Fatalf("expected renamed habit, got %q", repo.habits[habit.ID].Name)
	}
}
