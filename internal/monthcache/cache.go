package monthcache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/terraincognita07/daybook/internal/metrics"
	"github.com/terraincognita07/daybook/internal/models"
	"github.com/terraincognita07/daybook/internal/services"
	"golang.org/x/sync/errgroup"
)

type HabitSource interface {
	ListHabits(userID uint) ([]models.Habit, error)
	RangeLogs(userID uint, window services.MonthWindow) ([]models.HabitLog, error)
	ToggleLog(userID uint, habitID uint, dateKey string, completed bool, now time.Time) error
}

type DailySource interface {
	TasksRange(userID uint, window services.MonthWindow) ([]models.Task, error)
	NotesRange(userID uint, window services.MonthWindow) ([]models.DayNote, error)
	ToggleTask(userID uint, taskID uint, completed bool) error
}

// EventSource returns no events and no error when the user has not
// connected a calendar.
type EventSource interface {
	EventsForUser(ctx context.Context, userID uint, window services.MonthWindow) ([]models.CalendarEvent, error)
}

type Sources struct {
	Habits HabitSource
	Daily  DailySource
	Events EventSource
}

// ErrMonthChanged is returned when another request moved the cache to a
// different month while a read was waiting on its batch.
var ErrMonthChanged = errors.New("month changed during load")

// Cache holds one committed month snapshot for a single user. A refresh
// that fails leaves the previous snapshot in place; a refresh that finishes
// after a newer one started is dropped.
//
// window is the month requested last. The committed month is always
// snapshot.Window, and the two differ until a batch for window succeeds.
type Cache struct {
	userID   uint
	sources  Sources
	location *time.Location
	logger   *log.Logger
	now      func() time.Time

	mu         sync.RWMutex
	window     services.MonthWindow
	snapshot   services.MonthSnapshot
	loaded     bool
	stale      bool
	generation uint64
}

func New(userID uint, sources Sources, location *time.Location, logger *log.Logger) *Cache {
	if location == nil {
		location = time.UTC
	}
	cache := &Cache{
		userID:   userID,
		sources:  sources,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
	cache.window = services.NewMonthWindow(cache.now(), location)
	return cache
}

// Window returns the requested month, which may not be committed yet.
func (cache *Cache) Window() services.MonthWindow {
	cache.mu.RLock()
	defer cache.mu.RUnlock()
	return cache.window
}

// readyLocked reports whether the committed snapshot is current for the
// requested month. Callers hold mu.
func (cache *Cache) readyLocked() bool {
	return cache.loaded && !cache.stale && cache.snapshot.Window.Key() == cache.window.Key()
}

// SetMonth moves the cache to the month containing day and refreshes unless
// that month is already committed and fresh.
func (cache *Cache) SetMonth(ctx context.Context, day time.Time) error {
	window := services.NewMonthWindow(day, cache.location)

	cache.mu.Lock()
	cache.window = window
	ready := cache.readyLocked()
	cache.mu.Unlock()

	if ready {
		return nil
	}
	return cache.Refresh(ctx)
}

// Invalidate forces the next read to run a fresh batch.
func (cache *Cache) Invalidate() {
	cache.mu.Lock()
	cache.stale = true
	cache.mu.Unlock()
}

// Refresh reads the requested month in one concurrent batch and commits it
// only when every read succeeded.
func (cache *Cache) Refresh(ctx context.Context) error {
	cache.mu.Lock()
	cache.generation++
	generation := cache.generation
	window := cache.window
	cache.mu.Unlock()

	started := cache.now()
	next, err := cache.load(ctx, window)
	elapsed := time.Since(started)
	if err != nil {
		metrics.ObserveMonthRefresh(metrics.ResultError, elapsed)
		cache.logger.Error("month refresh failed", "user_id", cache.userID, "month", window.Key(), "err", err)
		return err
	}

	cache.mu.Lock()
	defer cache.mu.Unlock()
	if generation != cache.generation {
		metrics.ObserveMonthRefresh(metrics.ResultSuperseded, elapsed)
		cache.logger.Debug("month refresh superseded", "user_id", cache.userID, "month", window.Key())
		return nil
	}
	cache.snapshot = next
	cache.loaded = true
	cache.stale = false
	metrics.ObserveMonthRefresh(metrics.ResultOK, elapsed)
	return nil
}

func (cache *Cache) load(ctx context.Context, window services.MonthWindow) (services.MonthSnapshot, error) {
	snapshot := services.MonthSnapshot{Window: window}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		habits, err := cache.sources.Habits.ListHabits(cache.userID)
		if err != nil {
			return fmt.Errorf("load habits: %w", err)
		}
		snapshot.Habits = habits
		return nil
	})
	group.Go(func() error {
		logs, err := cache.sources.Habits.RangeLogs(cache.userID, window)
		if err != nil {
			return fmt.Errorf("load habit logs: %w", err)
		}
		snapshot.Logs = logs
		return nil
	})
	group.Go(func() error {
		tasks, err := cache.sources.Daily.TasksRange(cache.userID, window)
		if err != nil {
			return fmt.Errorf("load tasks: %w", err)
		}
		snapshot.Tasks = tasks
		return nil
	})
	group.Go(func() error {
		notes, err := cache.sources.Daily.NotesRange(cache.userID, window)
		if err != nil {
			return fmt.Errorf("load notes: %w", err)
		}
		snapshot.Notes = notes
		return nil
	})
	if cache.sources.Events != nil {
		group.Go(func() error {
			events, err := cache.sources.Events.EventsForUser(groupCtx, cache.userID, window)
			if err != nil {
				return fmt.Errorf("load calendar events: %w", err)
			}
			snapshot.Events = events
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return services.MonthSnapshot{}, err
	}

	if snapshot.Events == nil {
		snapshot.Events = []models.CalendarEvent{}
	}
	snapshot.FetchedAt = cache.now()
	return snapshot, nil
}

// Snapshot returns the committed snapshot for the requested month, loading
// it first when the cache is empty, invalidated or holds another month.
func (cache *Cache) Snapshot(ctx context.Context) (services.MonthSnapshot, error) {
	cache.mu.RLock()
	ready := cache.readyLocked()
	snapshot := cache.snapshot
	cache.mu.RUnlock()
	if ready {
		return snapshot, nil
	}

	if err := cache.Refresh(ctx); err != nil {
		return services.MonthSnapshot{}, err
	}
	cache.mu.RLock()
	defer cache.mu.RUnlock()
	return cache.snapshot, nil
}

// SnapshotFor returns a committed snapshot whose window contains day.
func (cache *Cache) SnapshotFor(ctx context.Context, day time.Time) (services.MonthSnapshot, error) {
	key := services.DateKey(day, cache.location)
	cache.mu.Lock()
	if !cache.window.Contains(key) {
		cache.window = services.NewMonthWindow(day, cache.location)
	}
	cache.mu.Unlock()

	snapshot, err := cache.Snapshot(ctx)
	if err != nil {
		return services.MonthSnapshot{}, err
	}
	if !snapshot.Window.Contains(key) {
		return services.MonthSnapshot{}, ErrMonthChanged
	}
	return snapshot, nil
}

func (cache *Cache) DayView(ctx context.Context, day time.Time) (services.DayView, error) {
	snapshot, err := cache.SnapshotFor(ctx, day)
	if err != nil {
		return services.DayView{}, err
	}
	return services.BuildDayView(snapshot, day, cache.now(), cache.location), nil
}

func (cache *Cache) MonthGrid(ctx context.Context, month time.Time) ([]services.MonthGridDay, error) {
	snapshot, err := cache.SnapshotFor(ctx, month)
	if err != nil {
		return nil, err
	}
	return services.BuildMonthGrid(snapshot, cache.now(), cache.location), nil
}

// ToggleHabit applies the completion to the cached logs before writing it.
// When the write fails the overlay is reverted and a refresh is issued.
func (cache *Cache) ToggleHabit(ctx context.Context, habitID uint, dateKey string, completed bool) error {
	previous, applied := cache.overlayHabitLog(habitID, dateKey, completed)

	err := cache.sources.Habits.ToggleLog(cache.userID, habitID, dateKey, completed, cache.now())
	if err == nil {
		return nil
	}
	if applied {
		cache.mu.Lock()
		cache.snapshot.Logs = previous
		cache.mu.Unlock()
	}
	cache.reconcile(ctx)
	return err
}

func (cache *Cache) overlayHabitLog(habitID uint, dateKey string, completed bool) ([]models.HabitLog, bool) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if !cache.loaded || !cache.snapshot.Window.Contains(dateKey) {
		return nil, false
	}

	previous := cache.snapshot.Logs
	next := make([]models.HabitLog, 0, len(previous)+1)
	for _, entry := range previous {
		if entry.HabitID == habitID && entry.Date == dateKey {
			continue
		}
		next = append(next, entry)
	}
	if completed {
		next = append(next, models.HabitLog{HabitID: habitID, UserID: cache.userID, Date: dateKey})
	}
	cache.snapshot.Logs = next
	return previous, true
}

// ToggleTask flips the cached task before writing it, with the same revert
// policy as ToggleHabit.
func (cache *Cache) ToggleTask(ctx context.Context, taskID uint, completed bool) error {
	previous, applied := cache.overlayTask(taskID, completed)

	err := cache.sources.Daily.ToggleTask(cache.userID, taskID, completed)
	if err == nil {
		return nil
	}
	if applied {
		cache.mu.Lock()
		cache.snapshot.Tasks = previous
		cache.mu.Unlock()
	}
	cache.reconcile(ctx)
	return err
}

func (cache *Cache) overlayTask(taskID uint, completed bool) ([]models.Task, bool) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	index := slices.IndexFunc(cache.snapshot.Tasks, func(task models.Task) bool { return task.ID == taskID })
	if !cache.loaded || index < 0 {
		return nil, false
	}

	previous := cache.snapshot.Tasks
	next := slices.Clone(previous)
	next[index].Completed = completed
	cache.snapshot.Tasks = next
	return previous, true
}

func (cache *Cache) reconcile(ctx context.Context) {
	if err := cache.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cache.logger.Warn("reconcile refresh failed", "user_id", cache.userID, "err", err)
	}
}
