package models

import "time"

// DateLayout is the day-granularity key shared by logs, tasks, notes and events.
const DateLayout = "2006-01-02"

type Habit struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"not null;index" json:"-"`
	Name   string `gorm:"not null" json:"name"`
	// Frequency holds weekday numbers, 1=Monday through 7=Sunday.
	Frequency []int     `gorm:"serializer:json;not null" json:"frequency"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type HabitLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	HabitID   uint      `gorm:"not null;uniqueIndex:uidx_habit_log_day" json:"habit_id"`
	UserID    uint      `gorm:"not null;index" json:"-"`
	Date      string    `gorm:"not null;uniqueIndex:uidx_habit_log_day" json:"date"`
	CreatedAt time.Time `json:"-"`
}
