package models

import "time"

type Task struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"-"`
	Title     string    `gorm:"not null" json:"title"`
	Date      string    `gorm:"not null;index" json:"date"`
	Completed bool      `gorm:"not null" json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

type DayNote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:uidx_day_note_user_date" json:"-"`
	Date      string    `gorm:"not null;uniqueIndex:uidx_day_note_user_date" json:"date"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}
