package services

import (
	"math"
	"sort"
	"time"

	"github.com/terraincognita07/daybook/internal/models"
)

const (
	ProgressComplete = "complete"
	ProgressPartial  = "partial"
	ProgressLow      = "low"
)

// MonthSnapshot is one committed batch of month data. Habits are not
// date-filtered; logs, tasks, notes and events cover Window only.
type MonthSnapshot struct {
	Window    MonthWindow
	Habits    []models.Habit
	Logs      []models.HabitLog
	Tasks     []models.Task
	Notes     []models.DayNote
	Events    []models.CalendarEvent
	FetchedAt time.Time
}

type DayView struct {
	Date              string                 `json:"date"`
	Weekday           int                    `json:"weekday"`
	IsToday           bool                   `json:"is_today"`
	IsFuture          bool                   `json:"is_future"`
	ActiveHabits      []models.Habit         `json:"active_habits"`
	CompletedHabitIDs []uint                 `json:"completed_habit_ids"`
	PendingTasks      []models.Task          `json:"pending_tasks"`
	CompletedTasks    []models.Task          `json:"completed_tasks"`
	Note              string                 `json:"note"`
	Events            []models.CalendarEvent `json:"events"`
	Completion        *int                   `json:"completion,omitempty"`
}

type MonthGridDay struct {
	Date       string `json:"date"`
	Day        int    `json:"day"`
	InMonth    bool   `json:"in_month"`
	IsToday    bool   `json:"is_today"`
	Completion *int   `json:"completion,omitempty"`
	Progress   string `json:"progress,omitempty"`
	EventCount int    `json:"event_count"`
	TaskCount  int    `json:"task_count"`
}

// IsHabitActive reports whether the habit recurs on day and already existed
// on that day. A zero CreatedAt counts as unknown and never excludes the day.
func IsHabitActive(habit models.Habit, day time.Time, location *time.Location) bool {
	weekday := NormalizedWeekday(DateAtLocation(day, location))
	recurs := false
	for _, value := range habit.Frequency {
		if value == weekday {
			recurs = true
			break
		}
	}
	if !recurs {
		return false
	}
	if habit.CreatedAt.IsZero() {
		return true
	}
	return DateKey(habit.CreatedAt, location) <= DateKey(day, location)
}

func ActiveHabits(habits []models.Habit, day time.Time, location *time.Location) []models.Habit {
	active := make([]models.Habit, 0, len(habits))
	for _, habit := range habits {
		if IsHabitActive(habit, day, location) {
			active = append(active, habit)
		}
	}
	return active
}

// CompletedHabitIDs returns the active habits with a log on dateKey, in
// active-habit order.
func CompletedHabitIDs(active []models.Habit, logs []models.HabitLog, dateKey string) []uint {
	logged := make(map[uint]struct{})
	for _, entry := range logs {
		if entry.Date == dateKey {
			logged[entry.HabitID] = struct{}{}
		}
	}

	completed := make([]uint, 0, len(logged))
	for _, habit := range active {
		if _, ok := logged[habit.ID]; ok {
			completed = append(completed, habit.ID)
		}
	}
	return completed
}

func PartitionTasks(tasks []models.Task, dateKey string) ([]models.Task, []models.Task) {
	pending := make([]models.Task, 0)
	completed := make([]models.Task, 0)
	for _, task := range tasks {
		if task.Date != dateKey {
			continue
		}
		if task.Completed {
			completed = append(completed, task)
		} else {
			pending = append(pending, task)
		}
	}
	return pending, completed
}

func NoteContent(notes []models.DayNote, dateKey string) string {
	for _, note := range notes {
		if note.Date == dateKey {
			return note.Content
		}
	}
	return ""
}

// EventsForDay filters events to dateKey, all-day entries first and timed
// entries by time of day.
func EventsForDay(events []models.CalendarEvent, dateKey string) []models.CalendarEvent {
	matched := make([]models.CalendarEvent, 0)
	for _, event := range events {
		if event.Date == dateKey {
			matched = append(matched, event)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].AllDay != matched[j].AllDay {
			return matched[i].AllDay
		}
		return matched[i].Time < matched[j].Time
	})
	return matched
}

// CompletionPercent is nil when the day is in the future or nothing is
// expected; otherwise round(100*completed/expected).
func CompletionPercent(expected int, completed int, isFuture bool) *int {
	if isFuture || expected <= 0 {
		return nil
	}
	if completed > expected {
		completed = expected
	}
	percent := int(math.Round(100 * float64(completed) / float64(expected)))
	return &percent
}

func ProgressLevel(percent *int) string {
	switch {
	case percent == nil:
		return ""
	case *percent >= 100:
		return ProgressComplete
	case *percent >= 50:
		return ProgressPartial
	default:
		return ProgressLow
	}
}

func BuildDayView(snapshot MonthSnapshot, day time.Time, now time.Time, location *time.Location) DayView {
	dateKey := DateKey(day, location)
	todayKey := DateKey(now, location)
	isFuture := dateKey > todayKey

	active := ActiveHabits(snapshot.Habits, day, location)
	completed := CompletedHabitIDs(active, snapshot.Logs, dateKey)
	pending, done := PartitionTasks(snapshot.Tasks, dateKey)

	return DayView{
		Date:              dateKey,
		Weekday:           NormalizedWeekday(DateAtLocation(day, location)),
		IsToday:           dateKey == todayKey,
		IsFuture:          isFuture,
		ActiveHabits:      active,
		CompletedHabitIDs: completed,
		PendingTasks:      pending,
		CompletedTasks:    done,
		Note:              NoteContent(snapshot.Notes, dateKey),
		Events:            EventsForDay(snapshot.Events, dateKey),
		Completion:        CompletionPercent(len(active), len(completed), isFuture),
	}
}

// BuildMonthGrid lays the window out in Monday-first weeks, padding with the
// neighbouring months' days. Padding days carry no completion.
func BuildMonthGrid(snapshot MonthSnapshot, now time.Time, location *time.Location) []MonthGridDay {
	window := snapshot.Window
	gridStart := window.Start.AddDate(0, 0, -(NormalizedWeekday(window.Start) - 1))
	gridEnd := window.End.AddDate(0, 0, 7-NormalizedWeekday(window.End))
	todayKey := DateKey(now, location)

	eventCounts := make(map[string]int)
	for _, event := range snapshot.Events {
		eventCounts[event.Date]++
	}
	taskCounts := make(map[string]int)
	for _, task := range snapshot.Tasks {
		taskCounts[task.Date]++
	}

	days := make([]MonthGridDay, 0, 42)
	for day := gridStart; !day.After(gridEnd); day = day.AddDate(0, 0, 1) {
		key := day.Format(models.DateLayout)
		cell := MonthGridDay{
			Date:       key,
			Day:        day.Day(),
			InMonth:    window.Contains(key),
			IsToday:    key == todayKey,
			EventCount: eventCounts[key],
			TaskCount:  taskCounts[key],
		}
		if cell.InMonth {
			active := ActiveHabits(snapshot.Habits, day, location)
			completed := CompletedHabitIDs(active, snapshot.Logs, key)
			cell.Completion = CompletionPercent(len(active), len(completed), key > todayKey)
			cell.Progress = ProgressLevel(cell.Completion)
		}
		days = append(days, cell)
	}
	return days
}
